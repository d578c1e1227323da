// Package callback receives wallet callbacks over loopback HTTP.
//
// A desktop dapp cannot always register a custom URL scheme, so the wallet
// may instead be told to redirect to http://127.0.0.1:<port>/<callback>.
// Server answers those redirects and hands the full URL to the wallet
// session. When a custom scheme is registered, the OS launches
// "lockfit callback <url>" which uses Client to forward the URL to the
// running listener.
//
// HTTP API
//
//	GET /{callback}          onConnect, onSignMessage, ...; the wallet redirect
//	POST /forward {"url"}    deliver a callback URL received out of band
//	GET /health              liveness
//
// Responses to /forward are JSON Reply values. Every request is access
// logged with method, path, status and duration.
package callback
