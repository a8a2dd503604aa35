package flash

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strconv"

	"go.uber.org/zap"

	"sm-kiosk/internal/ssh"
)

// SSHLauncher runs the pipeline on the host wired to the display programmer.
// The rendered message is streamed to the remote command's stdin.
type SSHLauncher struct {
	cfg    Config
	logger *zap.Logger
}

// NewSSHLauncher creates a launcher for the remote pipeline.
func NewSSHLauncher(cfg Config, logger *zap.Logger) *SSHLauncher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SSHLauncher{cfg: cfg, logger: logger}
}

// Command returns the remote shell command prefixed by its target.
func (l *SSHLauncher) Command() string {
	return fmt.Sprintf("ssh %s@%s %s", l.cfg.Remote.User, l.address(), l.cfg.RemoteCommand())
}

func (l *SSHLauncher) address() string {
	return net.JoinHostPort(l.cfg.Remote.Host, strconv.Itoa(l.cfg.Remote.Port))
}

// Launch renders message locally and connects to the remote host, then runs
// the remote command in the background. An unreachable host is a launch
// failure.
func (l *SSHLauncher) Launch(ctx context.Context, message string) (<-chan error, error) {
	command := l.Command()
	if err := l.cfg.Validate(); err != nil {
		return nil, &LaunchError{Command: command, Err: fmt.Errorf("invalid config: %w", err)}
	}

	payload, err := Render(l.cfg, message)
	if err != nil {
		return nil, &LaunchError{Command: command, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &LaunchError{Command: command, Err: err}
	}

	client, err := l.connect()
	if err != nil {
		return nil, &LaunchError{Command: command, Err: err}
	}

	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- l.run(ctx, client, command, payload)
	}()
	return done, nil
}

func (l *SSHLauncher) connect() (*ssh.Client, error) {
	return ssh.Connect(ssh.ConnectConfig{
		Host:     l.cfg.Remote.Host,
		Port:     l.cfg.Remote.Port,
		User:     l.cfg.Remote.User,
		KeyPath:  l.cfg.Remote.KeyPath,
		Password: l.cfg.Remote.Password,
	})
}

func (l *SSHLauncher) run(ctx context.Context, client *ssh.Client, command string, payload []byte) error {
	defer client.Close()
	l.logger.Info("remote pipeline started", zap.String("host", client.Host()))

	type result struct {
		out string
		err error
	}
	finished := make(chan result, 1)
	go func() {
		out, err := client.RunWithInput(l.cfg.RemoteCommand(), bytes.NewReader(payload))
		finished <- result{out, err}
	}()

	if l.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
		defer cancel()
	}

	select {
	case r := <-finished:
		if r.err == nil {
			return nil
		}
		code, ok := ssh.ExitStatus(r.err)
		if !ok {
			code = -1
		}
		return &ExitError{Command: command, ExitCode: code, Output: tail(r.out, outputTail), Err: r.err}
	case <-ctx.Done():
		// Closing the client unblocks the session.
		client.Close()
		return &ExitError{Command: command, ExitCode: -1, Err: ctx.Err()}
	}
}

// CheckPrerequisites connects and verifies that the first word of the
// pipeline resolves on the remote PATH.
func (l *SSHLauncher) CheckPrerequisites() error {
	if err := l.cfg.Validate(); err != nil {
		return err
	}
	client, err := l.connect()
	if err != nil {
		return err
	}
	defer client.Close()
	return client.CheckCommand(l.cfg.Command[0])
}
