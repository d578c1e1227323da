// Package crypto exposes the primitives behind the wallet channel.
//
// Contents
//
//   - X25519 key generation from an injected random source (GenerateX25519)
//   - Shared-secret derivation between the dapp and the wallet (DeriveSharedSecret)
//   - The secure channel: NaCl box encryption of JSON payloads under a
//     precomputed shared secret, with a fresh 24-byte nonce per message (Channel)
//   - Base58 helpers for the deep-link wire format (EncodeBase58, DecodeBase58)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// The channel holds no session state; callers pass the shared secret on
// every call. Authentication failures surface as domain.ErrDecryption and are
// never mapped to an empty payload.
package crypto
