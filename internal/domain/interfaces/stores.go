package interfaces

import domaintypes "lockfit/internal/domain/types"

// SecureStore is an opaque key/value store for sensitive blobs.
//
// Get reports ok=false for a missing key; that is not an error.
type SecureStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// IdentityStore persists the dapp's encryption key pair.
type IdentityStore interface {
	SaveKeyPair(kp domaintypes.KeyPair) error
	LoadKeyPair() (domaintypes.KeyPair, bool, error)
	DeleteKeyPair() error
}

// SessionStore persists the negotiated session across restarts.
type SessionStore interface {
	SaveSession(rec domaintypes.SessionRecord) error
	LoadSession() (domaintypes.SessionRecord, bool, error)
	ClearSession() error
}
