// Package router dispatches inbound wallet callbacks.
//
// Connect callbacks go to the negotiator. Every other kind is matched to its
// pending request: when nothing is waiting the callback is logged and
// dropped before anything is decrypted. Explicit wallet errors resolve the
// waiter with a RemoteError; otherwise the payload is opened with the
// current session secret and decoded into a typed response.
package router
