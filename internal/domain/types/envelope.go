package types

// NonceSize is the length of a NaCl box nonce.
const NonceSize = 24

// Nonce is a per-message NaCl box nonce.
type Nonce [NonceSize]byte

// Envelope is the nonce and ciphertext pair carried over a deep link.
type Envelope struct {
	Nonce      Nonce
	Ciphertext []byte
}

// ConnectPayload is the decrypted body of a successful connect callback.
type ConnectPayload struct {
	PublicKey string `json:"public_key"`
	Session   string `json:"session"`
}

// SendOptions mirrors the wallet's optional sendOptions for signAndSendTransaction.
type SendOptions struct {
	SkipPreflight       bool   `json:"skipPreflight,omitempty"`
	PreflightCommitment string `json:"preflightCommitment,omitempty"`
	MaxRetries          *int   `json:"maxRetries,omitempty"`
}

// Response is the decoded answer to a dispatched request.
//
// Only the fields relevant to Kind are set. Err carries a RemoteError when
// the wallet rejected the request.
type Response struct {
	Kind         Kind
	Signature    string
	Transaction  []byte
	Transactions [][]byte
	Err          error
}
