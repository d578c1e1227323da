// Package wallet owns a dapp's session with an external wallet.
//
// Service ties the identity key pair, the connect handshake, request
// dispatch and callback routing together. Construct one per process and
// feed every inbound callback URL to HandleURL.
//
// Lifecycle:
//
//	New ─▶ Start (identity init, resume) ─▶ Idle or Established
//	Connect ─▶ wallet ─▶ HandleURL(onConnect) ─▶ Established
//	Disconnect, Logout ─▶ Idle          Reset ─▶ Idle with a new identity
package wallet
