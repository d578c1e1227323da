package types

// Session is an established channel with the wallet.
//
// A Session is replaced, never mutated. SharedSecret is never serialised.
type Session struct {
	Token                 string       `json:"session"`
	WalletPublicKey       string       `json:"public_key"`
	CounterpartyPublicKey X25519Public `json:"-"`
	SharedSecret          SharedSecret `json:"-"`
}

// Established reports whether the session can be used for requests.
func (s *Session) Established() bool {
	return s != nil && s.Token != "" && !s.SharedSecret.IsZero()
}

// SessionRecord is the persisted form of a Session.
//
// CounterpartyPublicKey is base58; it is empty for records written by older
// builds that only stored the bare token, and such records cannot be resumed.
type SessionRecord struct {
	Token                 string `json:"session"`
	CounterpartyPublicKey string `json:"phantom_encryption_public_key,omitempty"`
	WalletPublicKey       string `json:"public_key,omitempty"`
}

// Resumable reports whether the record carries enough to re-derive the
// shared secret without a handshake.
func (r SessionRecord) Resumable() bool {
	return r.Token != "" && r.CounterpartyPublicKey != ""
}
