package main

import (
	"os"

	"lockfit/cmd/lockfit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
