package display

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sm-kiosk/internal/model"
)

// CommitState is the position of the commit pipeline's state machine.
type CommitState int

const (
	Idle CommitState = iota
	Uploading
	Finishing
)

func (s CommitState) String() string {
	switch s {
	case Uploading:
		return "uploading"
	case Finishing:
		return "finishing"
	default:
		return "idle"
	}
}

// Mode selects how the pipeline treats the external process after launch.
type Mode string

const (
	// ModeLegacy returns to Idle right after launch and only logs the
	// outcome. It is the default.
	ModeLegacy Mode = "legacy"
	// ModeObserve waits for the process to exit and shows its outcome.
	ModeObserve Mode = "observe"
)

// ParseMode converts a config value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLegacy, "":
		return ModeLegacy, nil
	case ModeObserve:
		return ModeObserve, nil
	}
	return "", fmt.Errorf("unknown pipeline mode %q (want observe or legacy)", s)
}

// Labels are the status texts shown while a commit runs.
type Labels struct {
	Uploading string
	Finishing string
	Done      string
	Failed    string
}

// DefaultLabels returns the built-in status texts.
func DefaultLabels() Labels {
	return Labels{
		Uploading: "uploading",
		Finishing: "almost done",
		Done:      "done",
		Failed:    "flash failed",
	}
}

// CommitOptions configures a CommitPipeline.
type CommitOptions struct {
	Editor     EditorBridge
	Launcher   PipelineLauncher
	Dispatcher Dispatcher
	Labels     Labels
	Mode       Mode
	Logger     *zap.Logger

	// OnStateChange, if set, is called on the UI thread after every transition.
	OnStateChange func(CommitState)
	// OnRunFinished, if set, receives every run as the pipeline returns to
	// Idle. Legacy runs arrive still pending.
	OnRunFinished func(model.Run)
}

// CommitPipeline sequences one message hand-off:
// Idle -> Uploading -> Finishing -> Idle. While not Idle every edit is
// dropped by the render loop.
type CommitPipeline struct {
	ctx      context.Context
	loop     *RenderLoop
	editor   EditorBridge
	launcher PipelineLauncher
	dispatch Dispatcher
	labels   Labels
	mode     Mode
	logger   *zap.Logger
	onState  func(CommitState)
	onRun    func(model.Run)
	now      func() time.Time

	state CommitState
	run   *model.Run
	last  *model.Run
}

// NewCommitPipeline creates a pipeline and attaches it to loop. ctx bounds
// every launched process.
func NewCommitPipeline(ctx context.Context, loop *RenderLoop, opts CommitOptions) *CommitPipeline {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Mode == "" {
		opts.Mode = ModeLegacy
	}
	if opts.Mode == ModeObserve && opts.Dispatcher == nil {
		opts.Logger.Warn("no dispatcher for observe mode, falling back to legacy")
		opts.Mode = ModeLegacy
	}
	p := &CommitPipeline{
		ctx:      ctx,
		loop:     loop,
		editor:   opts.Editor,
		launcher: opts.Launcher,
		dispatch: opts.Dispatcher,
		labels:   opts.Labels,
		mode:     opts.Mode,
		logger:   opts.Logger,
		onState:  opts.OnStateChange,
		onRun:    opts.OnRunFinished,
		now:      time.Now,
	}
	loop.commit = p
	return p
}

// State returns the current state.
func (p *CommitPipeline) State() CommitState {
	return p.state
}

// Mode returns the configured mode.
func (p *CommitPipeline) Mode() Mode {
	return p.mode
}

// Active returns the run in progress, or nil when Idle.
func (p *CommitPipeline) Active() *model.Run {
	return p.run
}

// LastRun returns the most recently completed run, or nil.
func (p *CommitPipeline) LastRun() *model.Run {
	return p.last
}

// Trigger starts a commit for text. It is a no-op unless Idle.
func (p *CommitPipeline) Trigger(text string) {
	if p.state != Idle {
		return
	}

	message := strings.TrimSpace(text)
	p.run = &model.Run{
		StartedAt: p.now(),
		Command:   p.launcher.Command(),
		Message:   message,
	}
	p.transition(Uploading)
	p.loop.ShowStatus(p.labels.Uploading)

	p.logger.Info("launching flash pipeline",
		zap.String("command", p.run.Command),
		zap.String("message", message),
		zap.String("mode", string(p.mode)),
	)
	done, err := p.launcher.Launch(p.ctx, message)

	p.transition(Finishing)
	if err != nil {
		p.logger.Error("flash pipeline launch failed", zap.Error(err))
		p.run.Fail(p.now(), err)
		p.showAndEcho(p.labels.Failed)
		p.finish()
		return
	}

	p.showAndEcho(p.labels.Finishing)

	if p.mode == ModeLegacy {
		go p.logExit(p.run.Command, done)
		p.finish()
		return
	}

	go func() {
		err := <-done
		p.dispatch.Do(func() { p.complete(err) })
	}()
}

// complete applies an observed outcome. It runs on the UI thread.
func (p *CommitPipeline) complete(err error) {
	if p.state != Finishing || p.run == nil {
		return
	}
	if err != nil {
		p.run.Fail(p.now(), err)
		p.logger.Error("flash pipeline failed",
			zap.String("command", p.run.Command),
			zap.Duration("duration", p.run.Duration()),
			zap.Error(err),
		)
		p.showAndEcho(p.labels.Failed)
	} else {
		p.run.Succeed(p.now())
		p.logger.Info("flash pipeline finished",
			zap.String("command", p.run.Command),
			zap.Duration("duration", p.run.Duration()),
		)
		p.showAndEcho(p.labels.Done)
	}
	p.finish()
}

func (p *CommitPipeline) showAndEcho(label string) {
	p.loop.ShowStatus(label)
	// The editor's change notification is dropped while not Idle.
	p.editor.SetText(label)
}

func (p *CommitPipeline) finish() {
	p.last = p.run
	p.run = nil
	if p.onRun != nil && p.last != nil {
		p.onRun(*p.last)
	}
	p.transition(Idle)
	p.loop.quality.RequestQuality(Draft, true)
}

func (p *CommitPipeline) transition(to CommitState) {
	p.logger.Debug("commit state", zap.Stringer("from", p.state), zap.Stringer("to", to))
	p.state = to
	if p.onState != nil {
		p.onState(to)
	}
}

// logExit records the exit of a process the legacy mode no longer tracks.
func (p *CommitPipeline) logExit(command string, done <-chan error) {
	if err := <-done; err != nil {
		p.logger.Error("flash pipeline failed (not observed)", zap.String("command", command), zap.Error(err))
		return
	}
	p.logger.Info("flash pipeline finished (not observed)", zap.String("command", command))
}
