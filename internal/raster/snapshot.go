package raster

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"go.uber.org/zap"

	"sm-kiosk/internal/display"
)

// maxFrames bounds how many frames a snapshot renders while the quality
// settles.
const maxFrames = 3

// SnapshotOptions configures a headless render.
type SnapshotOptions struct {
	Width, Height int
	Font          display.FontState
	Draft         bool // return the first, unsmoothed frame
	Logger        *zap.Logger
}

type frameRequests struct{ n int }

func (f *frameRequests) RequestRepaint() { f.n++ }

// Snapshot fits s to the canvas and renders it the way the kiosk would,
// returning the settled frame.
func Snapshot(s string, opts SnapshotOptions) (*image.RGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("snapshot size must be positive, got %dx%d", opts.Width, opts.Height)
	}

	engine, err := NewEngine(opts.Font.Family)
	if err != nil {
		return nil, err
	}
	defer engine.Close()
	engine.SetLogger(opts.Logger)

	requests := &frameRequests{}
	quality := display.NewQualityController(engine, requests)
	loop := display.NewRenderLoop(engine, engine, requests, quality, opts.Font, opts.Logger)

	// A line break would commit; a snapshot only shows text.
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	loop.OnCanvasResize(display.Extent{W: opts.Width, H: opts.Height})
	loop.OnTextChanged(s)

	var frame *image.RGBA
	for i := 0; i < maxFrames; i++ {
		engine.BeginFrame(opts.Width, opts.Height)
		loop.OnRedrawRequest()
		frame = engine.EndFrame()
		if opts.Draft || !engine.TakeDirty() {
			break
		}
	}
	return frame, nil
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
