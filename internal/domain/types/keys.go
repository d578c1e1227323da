package types

import "fmt"

// X25519Public is a Curve25519 public key.
type X25519Public [32]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// IsZero reports whether the key is unset.
func (p X25519Public) IsZero() bool { return p == X25519Public{} }

// X25519Private is a Curve25519 private key.
type X25519Private [32]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }

// SharedSecret is the symmetric key precomputed from our secret key and the
// wallet's encryption public key.
type SharedSecret [32]byte

// IsZero reports whether the secret is unset.
func (s SharedSecret) IsZero() bool { return s == SharedSecret{} }

// KeyPair is the dapp's long-lived encryption identity.
//
// The JSON layout (two arrays of 32 numbers) is the one persisted in secure
// storage under IdentityStorageKey.
type KeyPair struct {
	Public X25519Public  `json:"publicKey"`
	Secret X25519Private `json:"secretKey"`
}

// X25519PublicFromBytes copies b into an X25519Public.
func X25519PublicFromBytes(b []byte) (X25519Public, error) {
	var out X25519Public
	if len(b) != len(out) {
		return out, fmt.Errorf("x25519 public: want %d bytes, got %d", len(out), len(b))
	}
	copy(out[:], b)
	return out, nil
}
