//go:build !windows

package flash

import (
	"os"
	"syscall"
)

// interruptSignal is sent to the pipeline on cancel so make can remove
// half-written targets. The kill follows after waitDelay.
func interruptSignal() os.Signal {
	return syscall.SIGINT
}
