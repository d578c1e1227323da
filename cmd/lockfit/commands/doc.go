// Package commands defines the lockfit CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - init            Create the dapp key pair if needed
//   - fingerprint     Print the dapp key fingerprint
//   - reset           Forget the session and rotate the key pair
//   - connect         Open the wallet's connect screen and wait for approval
//   - callback <url>  Deliver a wallet callback (registered as the lockfit:// handler)
//   - listen          Run the loopback callback listener
//   - sign-message    Request a message signature
//   - sign-tx         Request a transaction signature
//   - sign-all        Request signatures for several transactions
//   - sign-send       Request sign-and-submit of a transaction
//   - disconnect      End the session with the wallet
//   - logout          Forget the session, keep the key pair
//   - status          Show session and identity state
//
// # Implementation
//
// The root command loads the YAML config, applies flag overrides, opens the
// secure store and starts the wallet session before any subcommand runs.
// Request commands run the callback listener in-process while they wait,
// so the wallet's redirect (or a forwarded lockfit:// URL) resolves the
// request that is still pending in memory.
package commands
