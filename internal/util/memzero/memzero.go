// Package memzero wipes key material held in byte slices and arrays.
package memzero

import "crypto/subtle"

// Zero overwrites b with zeros in a constant-time friendly way.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
}

// Key zeroes each 32-byte key. Nil entries are skipped.
func Key(keys ...*[32]byte) {
	for _, k := range keys {
		if k != nil {
			Zero(k[:])
		}
	}
}
