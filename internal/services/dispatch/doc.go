// Package dispatch turns sign and disconnect requests into encrypted wallet
// links.
//
// Every request needs an established session: its token is embedded in the
// payload and the payload is sealed under the session secret with a fresh
// nonce. Only one request of each kind may be outstanding; the returned
// ticket resolves when the matching callback is routed back.
//
// Disconnect drops the local session as soon as the link is opened. The
// wallet's acknowledgement only resolves the ticket.
package dispatch
