package interfaces

import (
	"context"

	domaintypes "lockfit/internal/domain/types"
)

// IdentityProvider hands out the dapp key pair once it is ready.
type IdentityProvider interface {
	KeyPair(ctx context.Context) (domaintypes.KeyPair, error)
}

// LinkOpener hands an outbound deep link to the operating system. It does
// not wait for, or return, the wallet's answer.
type LinkOpener interface {
	Open(ctx context.Context, link string) error
}

// SessionSource exposes the currently established session, if any.
type SessionSource interface {
	Current() (domaintypes.Session, bool)
}
