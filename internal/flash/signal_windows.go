package flash

import "os"

// Windows cannot deliver SIGINT to a child process.
func interruptSignal() os.Signal {
	return os.Kill
}
