// Package deeplink implements the wallet's v1 deep-link wire format.
//
// # Outbound
//
// Requests are URLs of the form
//
//	<wallet base>v1/<operation>?dapp_encryption_public_key=<base58>&...&redirect_link=<callback>
//
// where the wallet base is phantom:// or, with universal links,
// https://phantom.app/ul/. connect carries cluster and app_url in the clear;
// every other operation carries a base58 nonce and a base58 payload sealed
// under the session's shared secret.
//
// # Inbound
//
// The wallet answers by opening the redirect link with extra query
// parameters. The final path segment (onConnect, onSignMessage, ...) is the
// only thing that identifies which request is being answered.
package deeplink
