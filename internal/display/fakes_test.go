package display

import (
	"context"
	"testing"
	"time"
	"unicode/utf8"

	"sm-kiosk/internal/model"
)

// linearMeasurer lays every rune out as a size x 2*size box.
type linearMeasurer struct {
	calls int
}

func (m *linearMeasurer) Measure(text string, font FontState) Extent {
	m.calls++
	if text == "" {
		return Extent{}
	}
	n := utf8.RuneCountInString(text)
	return Extent{W: n * font.PixelSize, H: 2 * font.PixelSize}
}

type paintCall struct {
	text string
	font FontState
	at   Point
}

type recordingSurface struct {
	paints []paintCall
}

func (s *recordingSurface) Paint(text string, font FontState, at Point) {
	s.paints = append(s.paints, paintCall{text, font, at})
}

type repaintCounter struct {
	n int
}

func (r *repaintCounter) RequestRepaint() { r.n++ }

type recordingQualityPort struct {
	calls []bool
}

func (p *recordingQualityPort) SetHigh(high bool) { p.calls = append(p.calls, high) }

// echoEditor forwards SetText to the loop the way a real widget fires its
// change notification.
type echoEditor struct {
	text string
	sets []string
	loop *RenderLoop
}

func (e *echoEditor) Text() string { return e.text }

func (e *echoEditor) SetText(text string) {
	e.text = text
	e.sets = append(e.sets, text)
	if e.loop != nil {
		e.loop.OnTextChanged(text)
	}
}

type fakeLauncher struct {
	messages []string
	err      error
	done     chan error
}

func (l *fakeLauncher) Launch(_ context.Context, message string) (<-chan error, error) {
	l.messages = append(l.messages, message)
	if l.err != nil {
		return nil, l.err
	}
	if l.done != nil {
		return l.done, nil
	}
	ch := make(chan error, 1)
	ch <- nil
	close(ch)
	return ch, nil
}

func (l *fakeLauncher) Command() string { return "make clear_eeprom textconvert eeflash" }

type chanDispatcher struct {
	fns chan func()
}

func newChanDispatcher() *chanDispatcher {
	return &chanDispatcher{fns: make(chan func(), 4)}
}

func (d *chanDispatcher) Do(fn func()) { d.fns <- fn }

func (d *chanDispatcher) runNext(t *testing.T) {
	t.Helper()
	select {
	case fn := <-d.fns:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatched completion")
	}
}

type harness struct {
	measurer *linearMeasurer
	surface  *recordingSurface
	repaint  *repaintCounter
	port     *recordingQualityPort
	quality  *QualityController
	loop     *RenderLoop
	editor   *echoEditor
	launcher *fakeLauncher
	dispatch *chanDispatcher
	pipeline *CommitPipeline
	states   []CommitState
	runs     []model.Run
}

func newHarness(mode Mode) *harness {
	h := &harness{
		measurer: &linearMeasurer{},
		surface:  &recordingSurface{},
		repaint:  &repaintCounter{},
		port:     &recordingQualityPort{},
		launcher: &fakeLauncher{},
		dispatch: newChanDispatcher(),
	}
	h.quality = NewQualityController(h.port, h.repaint)
	h.loop = NewRenderLoop(h.measurer, h.surface, h.repaint, h.quality,
		FontState{Family: "sans-serif", PixelSize: 60}, nil)
	h.editor = &echoEditor{loop: h.loop}
	h.pipeline = NewCommitPipeline(context.Background(), h.loop, CommitOptions{
		Editor:     h.editor,
		Launcher:   h.launcher,
		Dispatcher: h.dispatch,
		Labels:     DefaultLabels(),
		Mode:       mode,
		OnStateChange: func(s CommitState) {
			h.states = append(h.states, s)
		},
		OnRunFinished: func(r model.Run) {
			h.runs = append(h.runs, r)
		},
	})
	return h
}
