package domain

import (
	interfaces "lockfit/internal/domain/interfaces"
	types "lockfit/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Fingerprint    = types.Fingerprint
	Kind           = types.Kind
	X25519Public   = types.X25519Public
	X25519Private  = types.X25519Private
	SharedSecret   = types.SharedSecret
	KeyPair        = types.KeyPair
	Session        = types.Session
	SessionRecord  = types.SessionRecord
	Nonce          = types.Nonce
	Envelope       = types.Envelope
	ConnectPayload = types.ConnectPayload
	SendOptions    = types.SendOptions
	Response       = types.Response
)

// NonceSize is the length of a NaCl box nonce.
const NonceSize = types.NonceSize

// Request kinds.
const (
	KindConnect                = types.KindConnect
	KindDisconnect             = types.KindDisconnect
	KindSignTransaction        = types.KindSignTransaction
	KindSignAllTransactions    = types.KindSignAllTransactions
	KindSignAndSendTransaction = types.KindSignAndSendTransaction
	KindSignMessage            = types.KindSignMessage
)

// Kinds lists every request kind.
var Kinds = types.Kinds

// X25519PublicFromBytes copies a 32-byte slice into an X25519Public.
var X25519PublicFromBytes = types.X25519PublicFromBytes

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	SecureStore      = interfaces.SecureStore
	IdentityStore    = interfaces.IdentityStore
	SessionStore     = interfaces.SessionStore
	IdentityProvider = interfaces.IdentityProvider
	LinkOpener       = interfaces.LinkOpener
	SessionSource    = interfaces.SessionSource
)
