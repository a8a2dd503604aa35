package display

import (
	"strings"

	"go.uber.org/zap"
)

// maxRefineSteps bounds the per-fit correction applied when a font engine
// does not scale exactly linearly.
const maxRefineSteps = 64

// RenderLoop owns the display text, the font state and the last known canvas
// extent. All methods must be called from the UI thread.
type RenderLoop struct {
	measurer Measurer
	surface  Surface
	repaint  Repainter
	quality  *QualityController
	commit   *CommitPipeline
	logger   *zap.Logger

	text        string
	font        FontState
	canvas      Extent
	needsResize bool
}

// NewRenderLoop creates a loop showing text with the given initial font.
func NewRenderLoop(m Measurer, s Surface, r Repainter, q *QualityController, font FontState, logger *zap.Logger) *RenderLoop {
	if logger == nil {
		logger = zap.NewNop()
	}
	if font.PixelSize < MinPixelSize {
		font.PixelSize = MinPixelSize
	}
	return &RenderLoop{
		measurer:    m,
		surface:     s,
		repaint:     r,
		quality:     q,
		logger:      logger,
		font:        font,
		needsResize: true,
	}
}

// Text returns the current display text.
func (l *RenderLoop) Text() string { return l.text }

// Font returns the current font state.
func (l *RenderLoop) Font() FontState { return l.font }

// Canvas returns the last known canvas extent.
func (l *RenderLoop) Canvas() Extent { return l.canvas }

// NeedsResize reports whether the last fit was unresolved.
func (l *RenderLoop) NeedsResize() bool { return l.needsResize }

// Busy reports whether a commit is in progress.
func (l *RenderLoop) Busy() bool {
	return l.commit != nil && l.commit.State() != Idle
}

// OnCanvasResize records the new canvas extent and refits the text.
func (l *RenderLoop) OnCanvasResize(extent Extent) {
	l.canvas = extent
	l.fit()
}

// OnRedrawRequest paints the text centered on the canvas. Empty or
// unmeasurable text paints nothing.
func (l *RenderLoop) OnRedrawRequest() {
	if l.text == "" {
		return
	}
	ext := l.measure(l.font.PixelSize)
	if !ext.Positive() {
		return
	}
	at := Point{
		X: (l.canvas.W - ext.W) / 2,
		Y: (l.canvas.H - ext.H) / 2,
	}
	l.surface.Paint(l.text, l.font, at)
	l.quality.RequestQuality(High, true)
}

// OnTextChanged handles an edit from the input surface. Edits arriving while
// a commit runs are dropped. Text containing a line break triggers a commit.
func (l *RenderLoop) OnTextChanged(text string) {
	if l.Busy() {
		l.logger.Debug("edit dropped during commit", zap.String("text", text))
		return
	}
	l.logger.Debug("text changed", zap.String("text", text))

	if strings.ContainsAny(text, "\r\n") {
		if l.commit == nil {
			l.logger.Warn("commit requested but no pipeline is attached")
			return
		}
		l.commit.Trigger(text)
		return
	}

	l.text = text
	l.fit()
	l.quality.RequestQuality(Draft, true)
	l.repaint.RequestRepaint()
}

// ShowStatus replaces the display text, refits and queues a repaint. It is
// the path the commit pipeline uses for its status labels.
func (l *RenderLoop) ShowStatus(text string) {
	l.text = text
	l.fit()
	l.repaint.RequestRepaint()
}

func (l *RenderLoop) fit() {
	natural := l.measure(l.font.PixelSize)
	size, ok := Fit(natural, l.canvas, l.font.PixelSize)
	if !ok {
		l.needsResize = true
		return
	}
	size = l.refine(size)
	if size != l.font.PixelSize {
		l.logger.Debug("font resized",
			zap.Int("from", l.font.PixelSize),
			zap.Int("to", size),
			zap.Int("canvas_w", l.canvas.W),
			zap.Int("canvas_h", l.canvas.H),
		)
	}
	l.font.PixelSize = size
	l.needsResize = false
}

// refine corrects a ratio fit against the measurer: shrink while the text
// overflows, grow while one more pixel still fits.
func (l *RenderLoop) refine(size int) int {
	for i := 0; i < maxRefineSteps && size > MinPixelSize; i++ {
		if l.measure(size).Within(l.canvas) {
			break
		}
		size--
	}
	for i := 0; i < maxRefineSteps; i++ {
		if !l.measure(size + 1).Within(l.canvas) {
			break
		}
		size++
	}
	return size
}

func (l *RenderLoop) measure(size int) Extent {
	return l.measurer.Measure(l.text, FontState{Family: l.font.Family, PixelSize: size})
}
