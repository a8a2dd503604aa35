// Package cli wires the kiosk front ends, the flash pipeline and the run
// history into the sm command.
package cli

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sm-kiosk/internal/config"
	"sm-kiosk/internal/export"
	"sm-kiosk/internal/flash"
	"sm-kiosk/internal/logging"
	"sm-kiosk/internal/model"
	"sm-kiosk/internal/version"
	"sm-kiosk/ui"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	logLevel   string
}

// Execute runs the sm command with os.Args. ctx is cancelled on SIGINT or
// SIGTERM by the caller.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "sm [message...]",
		Short: "Screen message kiosk",
		Long: `Shows a message as large as the screen allows and hands it to the
flash pipeline when Enter is pressed.

Without a subcommand the fullscreen GUI kiosk starts. The arguments become
the initial message.`,
		Args:          cobra.ArbitraryArgs,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Initialize(opts.logLevel)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(cmd.Context(), opts, args)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/sm/config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default $"+logging.LogLevelEnvVar+", silent)")

	root.AddCommand(
		newTermCmd(opts),
		newFlashCmd(opts),
		newCheckCmd(opts),
		newSnapshotCmd(opts),
		newHistoryCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

func (o *globalOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	logging.GetLogger().Debug("config loaded",
		zap.String("path", o.configPath),
		zap.String("mode", cfg.Pipeline.Mode),
		zap.Strings("command", cfg.Pipeline.Command))
	return cfg, nil
}

// launcher builds the pipeline launcher and the run recorder for cfg.
func launcher(cfg *config.Config) (flash.Launcher, func(model.Run)) {
	logger := logging.GetLogger()
	return flash.NewLauncher(cfg.Flash(), logger.Named("flash")),
		export.Recorder(cfg.Pipeline.History, logger.Named("history"))
}

func runGUI(ctx context.Context, opts *globalOptions, args []string) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	l, record := launcher(cfg)

	a := app.NewWithID(ui.AppID)
	k, err := ui.BuildKioskWindow(a, ui.Options{
		Config:      cfg,
		InitialText: cfg.InitialText(args),
		Launcher:    l,
		Logger:      logging.Named("ui"),
		OnRun:       record,
	})
	if err != nil {
		return err
	}

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(a.Quit)
		case <-stopped:
		}
	}()

	k.Window.ShowAndRun()
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sm %s\n", version.Full())
		},
	}
}
