//go:build windows

package cli

import (
	"os"
	"syscall"
)

// shutdownSignals end the server cleanly.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
