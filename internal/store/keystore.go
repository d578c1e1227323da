package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"lockfit/internal/util/memzero"
)

const (
	// The current supported version of the sealed blob format stored at rest.
	keystoreFormatVersion = 1
)

var (
	// Returned when the passphrase is incorrect or the ciphertext has been modified / corrupted.
	errWrongPassphrase = errors.New("wrong passphrase or corrupted item")
)

// blob is the at-rest JSON structure holding the ciphertext and KDF parameters.
type blob struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// sealer encrypts secure-store values under a passphrase-derived key.
//
// Each item gets its own salt, so the zero nonce is never reused under one
// key. The item name is bound as associated data so blobs cannot be swapped
// between keys.
type sealer struct {
	passphrase string
	n, r, p    int
}

// Option tunes a secure store.
type Option func(*sealer)

// WithScrypt overrides the scrypt cost parameters used for new items.
func WithScrypt(n, r, p int) Option {
	return func(s *sealer) {
		s.n, s.r, s.p = n, r, p
	}
}

func newSealer(passphrase string, opts ...Option) sealer {
	n, r, p := scryptParamsDefault()
	s := sealer{passphrase: passphrase, n: n, r: r, p: p}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// seal derives a key from the passphrase and seals raw into a JSON blob.
func (s sealer) seal(name string, raw []byte) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:] /* #nosec G404 */); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(s.passphrase), salt[:], s.n, s.r, s.p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [12]byte // zero nonce; salt-bound key guarantees uniqueness
	ct := aead.Seal(nil, nonce[:], raw, associatedData(name, salt[:]))

	return json.Marshal(blob{
		V:      keystoreFormatVersion,
		Salt:   salt[:],
		N:      s.n,
		R:      s.r,
		P:      s.p,
		Cipher: ct,
	})
}

// open decrypts the JSON blob using a key derived from the passphrase.
func (s sealer) open(name string, b []byte) ([]byte, error) {
	var bl blob
	if err := json.Unmarshal(b, &bl); err != nil {
		return nil, err
	}
	if bl.V > keystoreFormatVersion {
		return nil, fmt.Errorf("unsupported keystore version %d", bl.V)
	}

	key, err := scrypt.Key([]byte(s.passphrase), bl.Salt, bl.N, bl.R, bl.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [12]byte
	pt, err := aead.Open(nil, nonce[:], bl.Cipher, associatedData(name, bl.Salt))
	if err != nil {
		return nil, errWrongPassphrase
	}
	return pt, nil
}

func associatedData(name string, salt []byte) []byte {
	ad := make([]byte, 0, len(name)+1+len(salt))
	ad = append(ad, name...)
	ad = append(ad, 0)
	return append(ad, salt...)
}

// Tunables for scrypt key derivation.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }
