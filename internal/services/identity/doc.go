// Package identity owns the dapp's long-lived encryption key pair.
//
// The pair is loaded from (or generated into) secure storage once per
// process. Initialization runs asynchronously after Start; KeyPair blocks on
// a one-shot readiness signal so callers never observe a half-built pair.
// When storage is unavailable the service falls back to an ephemeral pair
// that only lives as long as the process.
package identity
