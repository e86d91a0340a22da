//go:build windows

package mcp

import "os"

// shutdownSignals cancel a running command. Windows only delivers os.Interrupt.
var shutdownSignals = []os.Signal{os.Interrupt}
