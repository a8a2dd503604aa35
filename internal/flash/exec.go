package flash

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// outputTail bounds how much process output is carried in an ExitError.
const outputTail = 512

// waitDelay is how long an interrupted pipeline may take to exit before
// it is killed.
const waitDelay = time.Second

// ExecLauncher runs the pipeline as a local child process.
type ExecLauncher struct {
	cfg    Config
	logger *zap.Logger
}

// NewExecLauncher creates a launcher for the local pipeline.
func NewExecLauncher(cfg Config, logger *zap.Logger) *ExecLauncher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecLauncher{cfg: cfg, logger: logger}
}

// Command returns the pipeline command line.
func (l *ExecLauncher) Command() string {
	return l.cfg.CommandLine()
}

// Launch stages message and starts the pipeline without waiting for it. The
// returned channel yields exactly one value, nil on success, and is then
// closed.
func (l *ExecLauncher) Launch(ctx context.Context, message string) (<-chan error, error) {
	command := l.Command()
	if err := l.cfg.Validate(); err != nil {
		return nil, &LaunchError{Command: command, Err: fmt.Errorf("invalid config: %w", err)}
	}

	path, err := Stage(l.cfg, message)
	if err != nil {
		return nil, &LaunchError{Command: command, Err: err}
	}
	l.logger.Debug("staged message", zap.String("path", path))

	cancel := context.CancelFunc(func() {})
	if l.cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
	}

	cmd := exec.CommandContext(ctx, l.cfg.Command[0], l.cfg.Command[1:]...)
	cmd.Dir = l.cfg.WorkDir
	cmd.Cancel = func() error {
		return cmd.Process.Signal(interruptSignal())
	}
	// Also bounds grandchildren holding the output pipe.
	cmd.WaitDelay = waitDelay

	output := &outputLog{logger: l.logger}
	cmd.Stdout = output
	cmd.Stderr = output

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, &LaunchError{Command: command, Err: err}
	}
	l.logger.Info("pipeline started", zap.String("command", command), zap.Int("pid", cmd.Process.Pid))

	done := make(chan error, 1)
	go func() {
		defer close(done)
		defer cancel()

		err := cmd.Wait()
		if err == nil {
			done <- nil
			return
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", err, ctxErr)
		}
		done <- &ExitError{
			Command:  command,
			ExitCode: exitCode(err),
			Output:   tail(output.String(), outputTail),
			Err:      err,
		}
	}()
	return done, nil
}

// CheckPrerequisites reports whether the pipeline binary resolves on PATH.
func (l *ExecLauncher) CheckPrerequisites() error {
	if len(l.cfg.Command) == 0 {
		return fmt.Errorf("pipeline command is required")
	}
	if _, err := exec.LookPath(l.cfg.Command[0]); err != nil {
		return fmt.Errorf("%s not found: %w", l.cfg.Command[0], err)
	}
	return nil
}

// outputLog collects combined process output and logs each complete line
// at debug level. exec serializes writes when Stdout and Stderr are the
// same writer.
type outputLog struct {
	buf     bytes.Buffer
	partial []byte
	logger  *zap.Logger
}

func (o *outputLog) Write(p []byte) (int, error) {
	o.buf.Write(p)
	o.partial = append(o.partial, p...)
	for {
		i := bytes.IndexByte(o.partial, '\n')
		if i < 0 {
			break
		}
		if line := strings.TrimRight(string(o.partial[:i]), "\r"); line != "" {
			o.logger.Debug("pipeline output", zap.String("line", line))
		}
		o.partial = o.partial[i+1:]
	}
	return len(p), nil
}

func (o *outputLog) String() string {
	return o.buf.String()
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	i := len(s) - n
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return "..." + s[i:]
}
