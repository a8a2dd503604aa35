// Package raster renders the display text through gg's software rasterizer.
// An Engine measures text, paints it into frames and carries the
// antialiasing toggle for every front end.
package raster

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"os"
	"strings"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"go.uber.org/zap"

	"sm-kiosk/internal/display"
)

// threshold is the luminance at or above which a draft pixel turns white.
const threshold = 128

var builtinFonts = map[string][]byte{
	"":           goregular.TTF,
	"sans":       goregular.TTF,
	"sans-serif": goregular.TTF,
	"go":         goregular.TTF,
	"bold":       gobold.TTF,
	"sans-bold":  gobold.TTF,
	"mono":       gomono.TTF,
	"monospace":  gomono.TTF,
}

type faceKey struct {
	size int
	high bool
}

// Engine implements display.Measurer, display.Surface and
// display.RenderingQualityPort over a gg context. It is not safe for
// concurrent use.
type Engine struct {
	source *text.FontSource
	family string
	faces  map[faceKey]text.Face

	high  bool
	dirty bool

	ctx       *gg.Context
	frameHigh bool // quality the current frame was started with

	logger *zap.Logger
}

// gpuFlusher is the part of gg.Context EndFrame needs before reading pixels.
type gpuFlusher interface {
	FlushGPU() error
}

// SetLogger sets the logger for frame errors. A nil logger discards them.
func (e *Engine) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e.logger = logger
}

// NewEngine loads the font for family. Family is a builtin name or a path
// to a TrueType file; unknown names fall back to the regular Go font.
func NewEngine(family string) (*Engine, error) {
	data, err := fontData(family)
	if err != nil {
		return nil, err
	}
	source, err := text.NewFontSource(data)
	if err != nil {
		return nil, fmt.Errorf("load font %q: %w", family, err)
	}
	return &Engine{
		source: source,
		family: family,
		faces:  make(map[faceKey]text.Face),
		logger: zap.NewNop(),
	}, nil
}

func fontData(family string) ([]byte, error) {
	if data, ok := builtinFonts[strings.ToLower(strings.TrimSpace(family))]; ok {
		return data, nil
	}
	if strings.HasSuffix(strings.ToLower(family), ".ttf") || strings.HasSuffix(strings.ToLower(family), ".otf") {
		data, err := os.ReadFile(family)
		if err != nil {
			return nil, fmt.Errorf("read font file: %w", err)
		}
		return data, nil
	}
	return goregular.TTF, nil
}

// Close releases the font source.
func (e *Engine) Close() error {
	e.faces = nil
	return e.source.Close()
}

func (e *Engine) face(size int, high bool) text.Face {
	key := faceKey{size, high}
	if f, ok := e.faces[key]; ok {
		return f
	}
	hinting := text.HintingFull
	if high {
		hinting = text.HintingNone
	}
	f := e.source.Face(float64(size), text.WithHinting(hinting))
	e.faces[key] = f
	return f
}

// Measure returns the pixel extent of s at the font's size. Measurement
// ignores the quality toggle so fitting does not change with it.
func (e *Engine) Measure(s string, font display.FontState) display.Extent {
	if s == "" || font.PixelSize < display.MinPixelSize {
		return display.Extent{}
	}
	w, h := text.Measure(s, e.face(font.PixelSize, true))
	return display.Extent{W: int(math.Ceil(w)), H: int(math.Ceil(h))}
}

// SetHigh toggles antialiasing for subsequent frames. A frame in progress
// keeps the quality it started with.
func (e *Engine) SetHigh(high bool) {
	if e.high != high {
		e.high = high
		e.dirty = true
	}
}

// High reports the current quality.
func (e *Engine) High() bool { return e.high }

// TakeDirty reports whether the quality changed since the last call.
func (e *Engine) TakeDirty() bool {
	d := e.dirty
	e.dirty = false
	return d
}

// BeginFrame starts a white frame of the given size.
func (e *Engine) BeginFrame(w, h int) {
	if e.ctx != nil {
		e.ctx.Close()
	}
	e.ctx = gg.NewContext(w, h)
	e.ctx.ClearWithColor(gg.White)
	e.frameHigh = e.high
}

// Paint draws s with its top-left corner at origin. Calls outside a frame
// are ignored.
func (e *Engine) Paint(s string, font display.FontState, origin display.Point) {
	if e.ctx == nil || s == "" {
		return
	}
	face := e.face(font.PixelSize, e.frameHigh)
	e.ctx.SetFont(face)
	e.ctx.SetRGB(0, 0, 0)
	e.ctx.DrawString(s, float64(origin.X), float64(origin.Y)+face.Metrics().Ascent)
}

// EndFrame finishes the frame and returns it. Draft frames are reduced to
// pure black and white.
func (e *Engine) EndFrame() *image.RGBA {
	if e.ctx == nil {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	e.flush(e.ctx)
	src := e.ctx.Image()
	frame := image.NewRGBA(src.Bounds())
	draw.Draw(frame, frame.Bounds(), src, src.Bounds().Min, draw.Src)
	e.ctx.Close()
	e.ctx = nil

	if !e.frameHigh {
		binarize(frame)
	}
	return frame
}

// flush completes pending GPU work. The pixels read afterwards are still
// the CPU rasterizer's, so a failure only costs accelerated shapes and is
// logged rather than returned.
func (e *Engine) flush(f gpuFlusher) {
	if err := f.FlushGPU(); err != nil {
		e.logger.Warn("gpu flush failed", zap.Error(err))
	}
}

func binarize(img *image.RGBA) {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		v := uint8(255)
		if luminance(img.Pix[i], img.Pix[i+1], img.Pix[i+2]) < threshold {
			v = 0
		}
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
	}
}

func luminance(r, g, b uint8) int {
	return (299*int(r) + 587*int(g) + 114*int(b)) / 1000
}
