package ui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"go.uber.org/zap"

	"sm-kiosk/internal/config"
	"sm-kiosk/internal/display"
	"sm-kiosk/internal/model"
	"sm-kiosk/internal/raster"
)

// Options configures the kiosk window.
type Options struct {
	Config      *config.Config
	InitialText string
	Launcher    display.PipelineLauncher
	Logger      *zap.Logger

	// OnRun receives every finished commit run.
	OnRun func(model.Run)
}

// Kiosk ties the fyne widgets to the render loop and commit pipeline.
type Kiosk struct {
	Window   fyne.Window
	Loop     *display.RenderLoop
	Pipeline *display.CommitPipeline

	entry   *messageEntry
	canvas  *textCanvas
	surface *pointerless
	engine  *raster.Engine
	cancel  context.CancelFunc
}

type fyneDispatcher struct{}

func (fyneDispatcher) Do(fn func()) { fyne.Do(fn) }

// BuildKioskWindow creates the fullscreen message window.
func BuildKioskWindow(app fyne.App, opts Options) (*Kiosk, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	engine, err := raster.NewEngine(cfg.Display.FontFamily)
	if err != nil {
		return nil, fmt.Errorf("font engine: %w", err)
	}
	engine.SetLogger(logger.Named("raster"))

	win := app.NewWindow("sm")
	win.Resize(NewWindowSize())
	win.SetPadded(false)

	minCanvas := cfg.MinCanvas()
	tc := newTextCanvas(engine, fyne.NewSize(float32(minCanvas.W), float32(minCanvas.H)))
	quality := display.NewQualityController(tc, tc)
	loop := display.NewRenderLoop(engine, engine, tc, quality, cfg.Font(), logger.Named("render"))
	tc.attach(loop)

	k := &Kiosk{
		Window: win,
		Loop:   loop,
		canvas: tc,
		engine: engine,
	}
	k.entry = newMessageEntry(app.Quit)

	ctx, cancel := context.WithCancel(context.Background())
	k.cancel = cancel
	k.Pipeline = display.NewCommitPipeline(ctx, loop, display.CommitOptions{
		Editor:     entryBridge{k.entry},
		Launcher:   opts.Launcher,
		Dispatcher: fyneDispatcher{},
		Labels:     cfg.CommitLabels(),
		Mode:       cfg.Mode(),
		Logger:     logger.Named("commit"),

		OnRunFinished: opts.OnRun,
	})

	k.entry.SetText(opts.InitialText)
	k.entry.OnChanged = loop.OnTextChanged
	loop.OnTextChanged(opts.InitialText)

	quit := NewFlatButton("Quit", app.Quit, Background, Foreground)
	bottom := container.NewBorder(nil, nil, nil, quit, k.entry)
	k.surface = newPointerless(container.NewStack(canvas.NewRectangle(Background), tc.raster))
	win.SetContent(container.NewBorder(nil, bottom, nil, nil, k.surface))

	win.Canvas().AddShortcut(quitShortcut, func(fyne.Shortcut) { app.Quit() })
	win.Canvas().Focus(k.entry)
	win.SetFullScreen(cfg.Display.Fullscreen)

	win.SetOnClosed(k.Close)
	return k, nil
}

// Close cancels any running pipeline and releases the font engine.
func (k *Kiosk) Close() {
	k.cancel()
	k.engine.Close()
}
