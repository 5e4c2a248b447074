package main

import (
	"os"

	"setup-dotfiles/cmd"
)

// main delegates to cmd.Execute, which parses flags, detects the platform and runs
// the provisioning steps. Any error, including an aborted run, exits with status 1.
func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
