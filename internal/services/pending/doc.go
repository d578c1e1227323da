// Package pending tracks requests that are waiting for a wallet callback.
//
// The wallet threads no correlation id through its callbacks, so at most one
// request per kind may be outstanding. Begin enforces that; Resolve hands a
// routed callback to the ticket that is waiting for it.
package pending
