//go:build windows

package main

import "os"

// shutdownSignals cancel a running command. Windows only delivers os.Interrupt.
var shutdownSignals = []os.Signal{os.Interrupt}
