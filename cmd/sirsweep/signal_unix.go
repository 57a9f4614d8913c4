//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals stops a sweep on Ctrl+C or a SIGTERM from a scheduler.
func shutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt, syscall.SIGTERM}
}
