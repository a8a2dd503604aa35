package flash

import "fmt"

// LaunchError means the pipeline could not be started at all: the binary is
// missing, the config is invalid or the remote host is unreachable.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %q: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// ExitError means the pipeline started but did not finish successfully.
type ExitError struct {
	Command  string
	ExitCode int    // -1 when the process was killed or the code is unknown
	Output   string // tail of combined stdout/stderr
	Err      error
}

func (e *ExitError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%q failed (exit code %d): %v: %s", e.Command, e.ExitCode, e.Err, e.Output)
	}
	return fmt.Sprintf("%q failed (exit code %d): %v", e.Command, e.ExitCode, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// StageError means the message file could not be prepared.
type StageError struct {
	Path string
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage message %s: %v", e.Path, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
