// Package term is the terminal front end of the kiosk. The canvas is drawn
// with half-block glyphs at two pixels per cell, and a one-line text area
// takes the place of the GUI entry.
package term

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"sm-kiosk/internal/config"
	"sm-kiosk/internal/display"
	"sm-kiosk/internal/model"
	"sm-kiosk/internal/raster"
)

// inputRows is the height of the text area plus the status line.
const inputRows = 2

// maxFrames bounds the frames rendered per update while the quality settles.
const maxFrames = 3

var statusStyle = lipgloss.NewStyle().Faint(true)

// Options configures the terminal kiosk.
type Options struct {
	Config      *config.Config
	InitialText string
	Launcher    display.PipelineLauncher
	Logger      *zap.Logger

	// OnRun receives every finished commit run.
	OnRun func(model.Run)
}

// dispatchMsg carries a pipeline callback onto the update goroutine.
type dispatchMsg struct{ fn func() }

type programDispatcher struct {
	send func(tea.Msg)
}

func (d *programDispatcher) Do(fn func()) {
	if d.send != nil {
		d.send(dispatchMsg{fn})
	}
}

// Model is the bubbletea model of the terminal kiosk.
type Model struct {
	input    textarea.Model
	help     help.Model
	keys     keyMap
	engine   *raster.Engine
	loop     *display.RenderLoop
	pipeline *display.CommitPipeline
	blocks   *blockRenderer
	dispatch *programDispatcher
	logger   *zap.Logger

	width, height int
	canvas        string
	dirty         bool
	painting      bool
}

func newModel(ctx context.Context, engine *raster.Engine, opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	input := textarea.New()
	input.Prompt = "> "
	input.ShowLineNumbers = false
	input.Placeholder = "type a message, Enter to flash"
	input.SetHeight(1)
	input.Focus()

	m := &Model{
		input:    input,
		help:     help.New(),
		keys:     defaultKeyMap(),
		engine:   engine,
		blocks:   newBlockRenderer(),
		dispatch: &programDispatcher{},
		logger:   logger,
	}

	quality := display.NewQualityController(m, m)
	m.loop = display.NewRenderLoop(engine, engine, m, quality, cfg.Font(), logger.Named("render"))
	m.pipeline = display.NewCommitPipeline(ctx, m.loop, display.CommitOptions{
		Editor:     textareaBridge{m},
		Launcher:   opts.Launcher,
		Dispatcher: m.dispatch,
		Labels:     cfg.CommitLabels(),
		Mode:       cfg.Mode(),
		Logger:     logger.Named("commit"),

		OnRunFinished: opts.OnRun,
	})

	m.input.SetValue(opts.InitialText)
	m.loop.OnTextChanged(opts.InitialText)
	return m
}

// RequestRepaint marks the canvas for redraw. Requests raised while a frame
// is being drawn are dropped.
func (m *Model) RequestRepaint() {
	if !m.painting {
		m.dirty = true
	}
}

// SetHigh switches the engine quality and schedules a frame under it.
func (m *Model) SetHigh(high bool) {
	m.engine.SetHigh(high)
	m.dirty = true
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.SetWidth(msg.Width)
		m.help.Width = msg.Width
		m.logger.Debug("terminal resized", zap.Int("cols", msg.Width), zap.Int("rows", msg.Height))
		m.loop.OnCanvasResize(m.canvasExtent())
		m.dirty = true

	case dispatchMsg:
		msg.fn()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.setInput("")
		default:
			before := m.input.Value()
			m.input, cmd = m.input.Update(msg)
			if after := m.input.Value(); after != before {
				m.loop.OnTextChanged(after)
			}
		}

	default:
		m.input, cmd = m.input.Update(msg)
	}

	m.renderFrames()
	return m, cmd
}

// setInput replaces the text area contents and reports the change the way
// a user edit would be reported.
func (m *Model) setInput(s string) {
	m.input.SetValue(s)
	m.loop.OnTextChanged(s)
}

func (m *Model) canvasExtent() display.Extent {
	rows := m.height - inputRows
	if rows < 0 {
		rows = 0
	}
	return display.Extent{W: m.width, H: rows * pixelsPerRow}
}

func (m *Model) renderFrames() {
	ext := m.canvasExtent()
	if !ext.Positive() {
		m.canvas = ""
		return
	}
	for i := 0; i < maxFrames && m.dirty; i++ {
		m.dirty = false
		m.painting = true
		high := m.engine.High()
		m.engine.BeginFrame(ext.W, ext.H)
		m.loop.OnRedrawRequest()
		frame := m.engine.EndFrame()
		m.painting = false
		m.canvas = m.blocks.render(frame, high)
	}
}

// View implements tea.Model
func (m *Model) View() string {
	status := fmt.Sprintf("%s  %s", m.pipeline.State(), m.help.ShortHelpView(m.keys.ShortHelp()))
	return lipgloss.JoinVertical(lipgloss.Left,
		m.canvas,
		m.input.View(),
		statusStyle.Render(status),
	)
}

// textareaBridge exposes the text area to the commit pipeline.
type textareaBridge struct{ m *Model }

func (b textareaBridge) Text() string        { return b.m.input.Value() }
func (b textareaBridge) SetText(text string) { b.m.setInput(text) }

// Run starts the terminal kiosk and blocks until the user quits or ctx is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	family := ""
	if opts.Config != nil {
		family = opts.Config.Display.FontFamily
	}
	engine, err := raster.NewEngine(family)
	if err != nil {
		return fmt.Errorf("font engine: %w", err)
	}
	defer engine.Close()
	engine.SetLogger(opts.Logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newModel(ctx, engine, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.dispatch.send = p.Send

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal kiosk: %w", err)
	}
	return nil
}
