package crypto

import (
	"encoding/hex"
	"hash"
)

// Fingerprint returns a short hex fingerprint of a public key.
//
// It hashes with newHash and truncates to 10 bytes (20 hex chars).
func Fingerprint(newHash func() hash.Hash, pub []byte) string {
	h := newHash()
	h.Write(pub)
	sum := h.Sum(nil)
	if len(sum) > 10 {
		sum = sum[:10]
	}
	return hex.EncodeToString(sum)
}
