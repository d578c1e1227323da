// Package negotiator drives the connect handshake with the wallet.
//
// # States
//
//	Idle ──InitiateConnect──▶ Awaiting ──HandleCallback(ok)──▶ Established
//	  ▲                          │
//	  └──────── any failure ─────┘
//
// InitiateConnect opens a connect link carrying the dapp public key. The
// wallet answers in a separate invocation; HandleCallback derives the shared
// secret from the wallet's encryption key, decrypts the session payload and
// persists the session record. A failed callback keeps no partial secret
// and returns to Idle, or to Established when a session was already held:
// a replacement handshake or a stray callback never drops a working session.
//
// Awaiting does not survive a restart, so HandleCallback also accepts a
// connect callback in Idle: the persisted identity key pair is enough to
// complete it.
//
// Resume re-enters Established from a persisted record without a handshake.
// The stored token is trusted as-is; revocation only shows up when the wallet
// rejects a later request.
package negotiator
