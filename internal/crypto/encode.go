package crypto

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"

	"lockfit/internal/domain"
)

// EncodeBase58 returns the Bitcoin-alphabet base58 encoding of b.
func EncodeBase58(b []byte) string { return base58.Encode(b) }

// DecodeBase58 decodes s, rejecting empty input.
func DecodeBase58(s string) ([]byte, error) {
	if s == "" {
		return nil, errors.New("empty base58 string")
	}
	return base58.Decode(s)
}

// DecodePublicKey decodes a base58 X25519 public key.
func DecodePublicKey(s string) (domain.X25519Public, error) {
	b, err := DecodeBase58(s)
	if err != nil {
		return domain.X25519Public{}, fmt.Errorf("%w: %v", domain.ErrInvalidPublicKey, err)
	}
	pub, err := domain.X25519PublicFromBytes(b)
	if err != nil {
		return domain.X25519Public{}, fmt.Errorf("%w: %v", domain.ErrInvalidPublicKey, err)
	}
	return pub, nil
}

// DecodeNonce decodes a base58 box nonce.
func DecodeNonce(s string) (domain.Nonce, error) {
	var n domain.Nonce
	b, err := DecodeBase58(s)
	if err != nil {
		return n, err
	}
	if len(b) != len(n) {
		return n, fmt.Errorf("nonce: want %d bytes, got %d", len(n), len(b))
	}
	copy(n[:], b)
	return n, nil
}
