// Package app wires application dependencies for the CLI.
//
// It loads Config from YAML, opens the selected secure store and builds the
// identity and wallet services, exposing them via App for commands to use.
package app
