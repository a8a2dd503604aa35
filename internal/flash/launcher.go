package flash

import (
	"context"

	"go.uber.org/zap"
)

// Launcher starts the pipeline for one message.
type Launcher interface {
	Launch(ctx context.Context, message string) (<-chan error, error)
	Command() string
	CheckPrerequisites() error
}

// NewLauncher returns an SSH launcher when a remote host is configured and a
// local one otherwise.
func NewLauncher(cfg Config, logger *zap.Logger) Launcher {
	if cfg.Remote.Host != "" {
		return NewSSHLauncher(cfg, logger)
	}
	return NewExecLauncher(cfg, logger)
}

// Run launches the pipeline and blocks until it finishes.
func Run(ctx context.Context, l Launcher, message string) error {
	done, err := l.Launch(ctx, message)
	if err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// The launcher observes ctx too; wait for it to report.
		return <-done
	}
}
