//go:build !windows

package mcp

import (
	"os"
	"syscall"
)

// shutdownSignals cancel a running command. On Unix this includes SIGTERM.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
