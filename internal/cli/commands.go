package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sm-kiosk/internal/config"
	"sm-kiosk/internal/export"
	"sm-kiosk/internal/flash"
	"sm-kiosk/internal/format"
	"sm-kiosk/internal/logging"
	"sm-kiosk/internal/model"
	"sm-kiosk/internal/raster"
	"sm-kiosk/internal/term"
)

func newTermCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "term [message...]",
		Short: "Run the kiosk in the terminal",
		Long: `Runs the kiosk full-screen in the terminal. The message is drawn with
half-block characters, two pixels per cell.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			l, record := launcher(cfg)
			return term.Run(cmd.Context(), term.Options{
				Config:      cfg,
				InitialText: cfg.InitialText(args),
				Launcher:    l,
				Logger:      logging.Named("term"),
				OnRun:       record,
			})
		},
	}
}

func newFlashCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "flash message...",
		Short: "Run the flash pipeline once",
		Long: `Stages the message and runs the pipeline, waiting for it to finish.
The run summary is printed and appended to the history log if one is
configured. The exit status is non-zero when the pipeline fails.`,
		Example: `  sm flash Anna
  sm --config kiosk.yaml flash "Dr. Who"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			l, record := launcher(cfg)
			message := strings.Join(args, " ")
			logger := logging.Named("flash")

			run := model.Run{StartedAt: time.Now(), Command: l.Command(), Message: message}
			logger.Info("pipeline started", zap.String("command", run.Command))
			err = flash.Run(cmd.Context(), l, message)
			if err != nil {
				run.Fail(time.Now(), err)
			} else {
				run.Succeed(time.Now())
			}
			logger.Info("pipeline finished",
				zap.Duration("duration", run.Duration()),
				zap.Stringer("outcome", run.Outcome))
			if record != nil {
				record(run)
			}

			fmt.Fprintln(cmd.OutOrStdout(), format.FormatRun(&run))
			return err
		},
	}
}

func newCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the pipeline can be started",
		Long: `Checks that the pipeline binary is installed. With an SSH host configured
the host is contacted and the binary is looked up there.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			l, _ := launcher(cfg)
			if err := l.CheckPrerequisites(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pipeline ready: %s\n", l.Command())
			return nil
		},
	}
}

type snapshotOptions struct {
	output        string
	width, height int
	draft         bool
}

func newSnapshotCmd(opts *globalOptions) *cobra.Command {
	so := &snapshotOptions{}
	cmd := &cobra.Command{
		Use:   "snapshot [message...]",
		Short: "Render the fitted message to a PNG file",
		Long: `Fits the message to a canvas of the given size and renders it the way
the kiosk would, without opening a window.`,
		Example: `  sm snapshot -o anna.png Anna
  sm snapshot -W 296 -H 128 --draft -o - Anna > preview.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			img, err := raster.Snapshot(cfg.InitialText(args), raster.SnapshotOptions{
				Width:  so.width,
				Height: so.height,
				Font:   cfg.Font(),
				Draft:  so.draft,
				Logger: logging.Named("render"),
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), so.output, func(w io.Writer) error {
				return raster.WritePNG(w, img)
			})
		},
	}
	cmd.Flags().StringVarP(&so.output, "output", "o", "snapshot.png", `output file, "-" for stdout`)
	cmd.Flags().IntVarP(&so.width, "width", "W", 800, "canvas width in pixels")
	cmd.Flags().IntVarP(&so.height, "height", "H", 480, "canvas height in pixels")
	cmd.Flags().BoolVar(&so.draft, "draft", false, "render the unsmoothed first frame")
	return cmd
}

// writeOutput writes to stdout for "-" and to a new file otherwise.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(stdout)
	}
	if err := export.EnsureDir(path); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type historyOptions struct {
	date string
	txt  string
}

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	ho := &historyOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the pipeline run log",
		Long: `Prints the runs recorded in the history log set by pipeline.history.
For a log path containing {date}, --date picks the day (default today).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.Pipeline.History == "" {
				return errors.New("no history log configured (set pipeline.history)")
			}
			day := time.Now()
			if ho.date != "" {
				if day, err = time.ParseInLocation("2006-01-02", ho.date, time.Local); err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
			}

			runs, err := export.ReadRuns(export.ExpandDate(cfg.Pipeline.History, day))
			if err != nil {
				return err
			}
			if ho.txt != "" {
				if err := export.WriteTXT(ho.txt, runs); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d run(s) written to %s\n", len(runs), ho.txt)
				return nil
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().StringVar(&ho.date, "date", "", "day to show, YYYY-MM-DD")
	cmd.Flags().StringVar(&ho.txt, "txt", "", "write run summaries to this text file instead")
	return cmd
}

func printRuns(w io.Writer, runs []model.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	fmt.Fprintln(w, format.FormatRunHeader())
	failed := 0
	for i := range runs {
		fmt.Fprintln(w, format.FormatRunLine(&runs[i]))
		if runs[i].Outcome == model.OutcomeFailure {
			failed++
		}
	}
	fmt.Fprintf(w, "\n%d run(s), %d failed.\n", len(runs), failed)
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.path()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Default().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.path()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.AddCommand(initCmd, pathCmd)
	return cmd
}

func (o *globalOptions) path() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.GetConfigPath()
}
