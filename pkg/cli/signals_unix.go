//go:build !windows

package cli

import (
	"os"

	"golang.org/x/sys/unix"
)

// shutdownSignals end the server cleanly.
var shutdownSignals = []os.Signal{unix.SIGINT, unix.SIGTERM}
