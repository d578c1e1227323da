package crypto

import (
	"io"

	"golang.org/x/crypto/curve25519"

	"lockfit/internal/domain"
)

// GenerateX25519 returns a fresh Curve25519 key pair drawn from rnd.
// The private key is clamped per RFC 7748.
func GenerateX25519(rnd io.Reader) (kp domain.KeyPair, err error) {
	if _, err = io.ReadFull(rnd, kp.Secret[:]); err != nil {
		return domain.KeyPair{}, err
	}
	clamp(&kp.Secret)
	pub, err := PublicFromSecret(kp.Secret)
	if err != nil {
		return domain.KeyPair{}, err
	}
	kp.Public = pub
	return kp, nil
}

// PublicFromSecret recomputes the public half of an X25519 key.
func PublicFromSecret(priv domain.X25519Private) (pub domain.X25519Public, err error) {
	pb, err := curve25519.X25519(priv.Slice(), curve25519.Basepoint)
	if err != nil {
		return pub, err
	}
	copy(pub[:], pb)
	return pub, nil
}

// ValidKeyPair reports whether kp is a matching X25519 pair.
func ValidKeyPair(kp domain.KeyPair) bool {
	if kp.Public.IsZero() {
		return false
	}
	pub, err := PublicFromSecret(kp.Secret)
	return err == nil && pub == kp.Public
}

func clamp(k *domain.X25519Private) {
	kb := k[:]
	kb[0] &= 248
	kb[31] &= 127
	kb[31] |= 64
}
