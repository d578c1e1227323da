package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"lockfit/internal/domain"
)

// SessionStorageKey is the fixed secure-store key of the session record.
const SessionStorageKey = "phantom_session"

// SessionStore persists the negotiated session record in a SecureStore.
type SessionStore struct {
	kv domain.SecureStore
}

// NewSessionStore returns a SessionStore backed by kv.
func NewSessionStore(kv domain.SecureStore) *SessionStore {
	return &SessionStore{kv: kv}
}

// SaveSession writes rec.
func (s *SessionStore) SaveSession(rec domain.SessionRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.kv.Set(SessionStorageKey, raw); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}

// LoadSession returns the stored record and whether one was present.
//
// A value that is not a JSON object is a bare token written by older
// builds; it is returned token-only and is not resumable.
func (s *SessionStore) LoadSession() (domain.SessionRecord, bool, error) {
	raw, ok, err := s.kv.Get(SessionStorageKey)
	if err != nil {
		return domain.SessionRecord{}, false, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	if !ok {
		return domain.SessionRecord{}, false, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return domain.SessionRecord{}, false, nil
	}
	if trimmed[0] != '{' {
		return domain.SessionRecord{Token: string(trimmed)}, true, nil
	}

	var rec domain.SessionRecord
	if err := json.Unmarshal(trimmed, &rec); err != nil || rec.Token == "" {
		return domain.SessionRecord{}, false, nil
	}
	return rec, true, nil
}

// ClearSession removes the stored record.
func (s *SessionStore) ClearSession() error {
	if err := s.kv.Delete(SessionStorageKey); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}

// Compile-time assertion that SessionStore implements domain.SessionStore.
var _ domain.SessionStore = (*SessionStore)(nil)
