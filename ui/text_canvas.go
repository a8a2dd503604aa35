package ui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"sm-kiosk/internal/display"
	"sm-kiosk/internal/raster"
)

// textCanvas is the kiosk's drawing surface. It feeds raster frames to a
// canvas.Raster and adapts the render loop's repaint and quality requests
// to fyne refreshes.
type textCanvas struct {
	engine *raster.Engine
	loop   *display.RenderLoop
	raster *canvas.Raster

	size     display.Extent
	painting bool
	refresh  func()       // refreshes the raster now
	later    func(func()) // runs fn on the UI thread after the current frame
}

func newTextCanvas(engine *raster.Engine, minSize fyne.Size) *textCanvas {
	c := &textCanvas{engine: engine}
	c.raster = canvas.NewRaster(c.generate)
	c.raster.ScaleMode = canvas.ImageScalePixels
	c.raster.SetMinSize(minSize)
	c.refresh = c.raster.Refresh
	c.later = func(fn func()) { go fyne.Do(fn) }
	return c
}

// attach connects the loop driving this canvas. It must be called before
// the first frame.
func (c *textCanvas) attach(loop *display.RenderLoop) {
	c.loop = loop
}

// RequestRepaint refreshes the raster. Requests raised while a frame is
// being generated are dropped; the frame in progress already reflects them.
func (c *textCanvas) RequestRepaint() {
	if c.painting {
		return
	}
	c.refresh()
}

// SetHigh switches the engine quality. A switch during a frame needs one
// more frame, queued behind the current one.
func (c *textCanvas) SetHigh(high bool) {
	c.engine.SetHigh(high)
	if c.painting {
		c.later(c.refresh)
		return
	}
	c.refresh()
}

func (c *textCanvas) generate(w, h int) image.Image {
	c.painting = true
	defer func() { c.painting = false }()

	if size := (display.Extent{W: w, H: h}); size != c.size {
		c.size = size
		if c.loop != nil {
			c.loop.OnCanvasResize(size)
		}
	}

	c.engine.BeginFrame(w, h)
	if c.loop != nil {
		c.loop.OnRedrawRequest()
	}
	return c.engine.EndFrame()
}

// pointerless shows its content with the mouse pointer hidden, so nothing
// but the message is visible on the kiosk screen.
type pointerless struct {
	widget.BaseWidget
	content fyne.CanvasObject
}

func newPointerless(content fyne.CanvasObject) *pointerless {
	p := &pointerless{content: content}
	p.ExtendBaseWidget(p)
	return p
}

func (p *pointerless) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.content)
}

// Cursor implements desktop.Cursorable
func (p *pointerless) Cursor() desktop.Cursor {
	return desktop.HiddenCursor
}
