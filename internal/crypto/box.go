package crypto

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"

	"lockfit/internal/domain"
	"lockfit/internal/util/memzero"
)

// DeriveSharedSecret precomputes the NaCl box key for (ownSecret, peer).
//
// The result is deterministic and symmetric: the wallet derives the same
// value from its secret and our public key. It fails only when peer is a
// low-order point.
func DeriveSharedSecret(ownSecret domain.X25519Private, peer domain.X25519Public) (domain.SharedSecret, error) {
	var out domain.SharedSecret

	dh, err := curve25519.X25519(ownSecret.Slice(), peer.Slice())
	if err != nil {
		return out, fmt.Errorf("%w: %v", domain.ErrInvalidPublicKey, err)
	}
	memzero.Zero(dh)

	priv := [32]byte(ownSecret)
	pub := [32]byte(peer)
	shared := (*[32]byte)(&out)
	box.Precompute(shared, &pub, &priv)
	memzero.Key(&priv)
	return out, nil
}

// Channel seals and opens payloads exchanged with the wallet.
type Channel struct {
	rand io.Reader
}

// NewChannel returns a Channel drawing nonces from rnd.
func NewChannel(rnd io.Reader) *Channel {
	return &Channel{rand: rnd}
}

// Encrypt serialises payload as JSON and seals it under secret with a fresh nonce.
func (c *Channel) Encrypt(payload any, secret domain.SharedSecret) (domain.Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("encode payload: %w", err)
	}
	defer memzero.Zero(raw)

	var env domain.Envelope
	if _, err := io.ReadFull(c.rand, env.Nonce[:]); err != nil {
		return domain.Envelope{}, fmt.Errorf("generate nonce: %w", err)
	}
	env.Ciphertext = box.SealAfterPrecomputation(nil, raw, (*[domain.NonceSize]byte)(&env.Nonce), (*[32]byte)(&secret))
	memzero.Key((*[32]byte)(&secret))
	return env, nil
}

// Decrypt opens env under secret.
func (c *Channel) Decrypt(env domain.Envelope, secret domain.SharedSecret) ([]byte, error) {
	defer memzero.Key((*[32]byte)(&secret))

	pt, ok := box.OpenAfterPrecomputation(nil, env.Ciphertext, (*[domain.NonceSize]byte)(&env.Nonce), (*[32]byte)(&secret))
	if !ok {
		return nil, domain.ErrDecryption
	}
	return pt, nil
}

// DecryptJSON opens env and decodes the plaintext into out.
func (c *Channel) DecryptJSON(env domain.Envelope, secret domain.SharedSecret, out any) error {
	pt, err := c.Decrypt(env, secret)
	if err != nil {
		return err
	}
	defer memzero.Zero(pt)
	if err := json.Unmarshal(pt, out); err != nil {
		return fmt.Errorf("%w: malformed payload", domain.ErrDecryption)
	}
	return nil
}
