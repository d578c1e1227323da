package domain

import (
	"errors"
	"fmt"
)

// Protocol and storage errors. Callers match them with errors.Is.
var (
	// ErrInitialization is logged when the identity key pair could not be
	// loaded or persisted and an ephemeral pair is used instead.
	ErrInitialization = errors.New("wallet: identity initialization failed")

	// ErrMissingCallbackFields is returned when a callback lacks the
	// counterparty key, data or nonce.
	ErrMissingCallbackFields = errors.New("wallet: connection not completed: callback is missing required fields")

	// ErrDecryption is returned when an envelope fails authentication.
	ErrDecryption = errors.New("wallet: secure channel error")

	// ErrNotConnected is returned when a request needs an established session.
	ErrNotConnected = errors.New("wallet: not connected")

	// ErrStorage wraps persisted read/write failures.
	ErrStorage = errors.New("wallet: secure storage unavailable")

	// ErrHandshakeInProgress is returned by a second connect while the first
	// is still awaiting the wallet.
	ErrHandshakeInProgress = errors.New("wallet: handshake already in progress")

	// ErrRequestInFlight is returned when a request of the same kind is
	// already pending.
	ErrRequestInFlight = errors.New("wallet: request of this kind already in flight")

	// ErrRequestExpired resolves a pending request that was abandoned.
	ErrRequestExpired = errors.New("wallet: pending request expired")

	// ErrUnknownCallback is returned for callback paths no handler owns.
	ErrUnknownCallback = errors.New("wallet: unknown callback path")

	// ErrInvalidPublicKey is returned for malformed or low-order X25519 keys.
	ErrInvalidPublicKey = errors.New("wallet: invalid counterparty public key")
)

// RemoteError is an explicit rejection returned by the wallet.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("wallet returned error %s", e.Code)
	}
	return fmt.Sprintf("wallet returned error %s: %s", e.Code, e.Message)
}
