package display

import "context"

// MinPixelSize is the degenerate lower bound for a resolved font size.
const MinPixelSize = 1

// Extent is a width/height pair in device pixels.
type Extent struct {
	W, H int
}

// Positive reports whether both axes are non-zero.
func (e Extent) Positive() bool {
	return e.W > 0 && e.H > 0
}

// Within reports whether e fits inside outer on both axes.
func (e Extent) Within(outer Extent) bool {
	return e.W <= outer.W && e.H <= outer.H
}

// Point is a canvas position in device pixels, origin top-left.
type Point struct {
	X, Y int
}

// FontState is the face the display text is laid out with.
type FontState struct {
	Family    string
	PixelSize int
}

// Measurer lays out text and reports its natural pixel footprint.
type Measurer interface {
	Measure(text string, font FontState) Extent
}

// Surface paints laid-out text onto the canvas. at is the top-left corner
// of the text's extent.
type Surface interface {
	Paint(text string, font FontState, at Point)
}

// Repainter queues a redraw of the canvas.
type Repainter interface {
	RequestRepaint()
}

// RenderingQualityPort is the process-wide antialiasing knob. Only
// QualityController calls it.
type RenderingQualityPort interface {
	SetHigh(high bool)
}

// EditorBridge is the text input surface.
type EditorBridge interface {
	Text() string
	SetText(text string)
}

// Dispatcher runs fn on the UI thread.
type Dispatcher interface {
	Do(fn func())
}

// PipelineLauncher starts the external conversion-and-flash command for a
// message. A nil error means the process was launched; the returned channel
// then yields exactly one value (nil on success) when it exits and is closed.
type PipelineLauncher interface {
	Launch(ctx context.Context, message string) (<-chan error, error)
	Command() string
}
