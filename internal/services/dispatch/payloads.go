package dispatch

import "lockfit/internal/domain"

// Message display encodings accepted by the wallet.
const (
	DisplayUTF8 = "utf8"
	DisplayHex  = "hex"
)

type sessionPayload struct {
	Session string `json:"session"`
}

type transactionPayload struct {
	Session     string              `json:"session"`
	Transaction string              `json:"transaction"`
	SendOptions *domain.SendOptions `json:"sendOptions,omitempty"`
}

type transactionsPayload struct {
	Session      string   `json:"session"`
	Transactions []string `json:"transactions"`
}

type messagePayload struct {
	Session string `json:"session"`
	Message string `json:"message"`
	Display string `json:"display,omitempty"`
}
