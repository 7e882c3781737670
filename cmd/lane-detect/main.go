// Command lane-detect runs the lane detector on image files from the shell.
package main

import (
	"os"

	"github.com/ironsheep/lane-tools-mcp/internal/logger"
)

// Version information - set by ldflags during build
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.WithError(err).Debug("command failed")
		os.Exit(1)
	}
}
