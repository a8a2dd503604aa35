package display

import "testing"

func TestRenderLoopStartsUnresolved(t *testing.T) {
	h := newHarness(ModeLegacy)
	h.loop.OnCanvasResize(Extent{400, 300})

	if !h.loop.NeedsResize() {
		t.Error("empty text should leave the fit unresolved")
	}
	if got := h.loop.Font().PixelSize; got != 60 {
		t.Errorf("PixelSize = %d, want unchanged 60", got)
	}
}

func TestRenderLoopTextChangedFits(t *testing.T) {
	h := newHarness(ModeLegacy)
	h.loop.OnCanvasResize(Extent{400, 300})
	h.loop.OnTextChanged("Hi")

	if h.loop.Text() != "Hi" {
		t.Errorf("Text() = %q, want Hi", h.loop.Text())
	}
	if h.loop.NeedsResize() {
		t.Error("fit should be settled")
	}
	// 60*min(400/120, 300/120) = 150
	if got := h.loop.Font().PixelSize; got != 150 {
		t.Errorf("PixelSize = %d, want 150", got)
	}
	if h.quality.State() != Draft {
		t.Errorf("quality = %v, want draft while typing", h.quality.State())
	}
	if len(h.port.calls) != 0 {
		t.Errorf("quality port touched without a state change: %v", h.port.calls)
	}
	if h.repaint.n != 2 {
		t.Errorf("repaints = %d, want 2 (forced draft + text change)", h.repaint.n)
	}
}

func TestRenderLoopResizeRefits(t *testing.T) {
	h := newHarness(ModeLegacy)
	h.loop.OnTextChanged("hello")
	if !h.loop.NeedsResize() {
		t.Fatal("zero canvas should leave the fit unresolved")
	}

	h.loop.OnCanvasResize(Extent{500, 100})
	if h.loop.NeedsResize() {
		t.Fatal("fit should resolve once the canvas is known")
	}
	// width 5*s <= 500, height 2*s <= 100
	if got := h.loop.Font().PixelSize; got != 50 {
		t.Errorf("PixelSize = %d, want 50", got)
	}

	h.loop.OnCanvasResize(Extent{1000, 1000})
	if got := h.loop.Font().PixelSize; got != 200 {
		t.Errorf("PixelSize after grow = %d, want 200", got)
	}
}

func TestRenderLoopFitProperty(t *testing.T) {
	for _, text := range []string{"a", "Hi", ";-)", "screen message"} {
		for w := 20; w <= 1200; w += 97 {
			for hgt := 20; hgt <= 900; hgt += 61 {
				h := newHarness(ModeLegacy)
				h.loop.OnTextChanged(text)
				canvas := Extent{w, hgt}
				h.loop.OnCanvasResize(canvas)

				size := h.loop.Font().PixelSize
				at := h.measurer.Measure(text, FontState{PixelSize: size})
				if !at.Within(canvas) {
					if size > MinPixelSize {
						t.Fatalf("%q on %v: size %d overflows (%v)", text, canvas, size, at)
					}
					continue
				}
				if h.measurer.Measure(text, FontState{PixelSize: size + 1}).Within(canvas) {
					t.Fatalf("%q on %v: size %d is not extremal", text, canvas, size)
				}
			}
		}
	}
}

func TestRenderLoopRedrawCentersAndSettles(t *testing.T) {
	h := newHarness(ModeLegacy)
	h.loop.OnCanvasResize(Extent{400, 300})
	h.loop.OnTextChanged("Hi")
	repaints := h.repaint.n

	h.loop.OnRedrawRequest()

	if len(h.surface.paints) != 1 {
		t.Fatalf("paints = %d, want 1", len(h.surface.paints))
	}
	p := h.surface.paints[0]
	if p.text != "Hi" || p.font.PixelSize != 150 {
		t.Errorf("painted %q at size %d, want Hi at 150", p.text, p.font.PixelSize)
	}
	if p.at != (Point{X: 50, Y: 0}) {
		t.Errorf("painted at %v, want {50 0}", p.at)
	}
	if h.quality.State() != High {
		t.Errorf("quality = %v, want high after a settled paint", h.quality.State())
	}
	if len(h.port.calls) != 1 || !h.port.calls[0] {
		t.Errorf("port calls = %v, want [true]", h.port.calls)
	}
	if h.repaint.n != repaints {
		t.Errorf("state change should not queue a repaint, got %d extra", h.repaint.n-repaints)
	}
}

func TestRenderLoopRedrawIdempotent(t *testing.T) {
	h := newHarness(ModeLegacy)
	h.loop.OnCanvasResize(Extent{640, 480})
	h.loop.OnTextChanged("idempotent")

	h.loop.OnRedrawRequest()
	font := h.loop.Font()
	calls := len(h.port.calls)

	h.loop.OnRedrawRequest()

	if h.loop.Font() != font {
		t.Errorf("font changed between redraws: %v -> %v", font, h.loop.Font())
	}
	if len(h.port.calls) != calls {
		t.Errorf("second redraw toggled quality: %v", h.port.calls)
	}
	if len(h.surface.paints) != 2 || h.surface.paints[0] != h.surface.paints[1] {
		t.Errorf("redraws differ: %+v", h.surface.paints)
	}
}

func TestRenderLoopRedrawEmptyText(t *testing.T) {
	h := newHarness(ModeLegacy)
	h.loop.OnCanvasResize(Extent{400, 300})

	h.loop.OnRedrawRequest()

	if len(h.surface.paints) != 0 {
		t.Errorf("empty text painted %d times", len(h.surface.paints))
	}
	if len(h.port.calls) != 0 {
		t.Errorf("empty redraw touched quality: %v", h.port.calls)
	}
}

func TestRenderLoopClearingTextKeepsFont(t *testing.T) {
	h := newHarness(ModeLegacy)
	h.loop.OnCanvasResize(Extent{400, 300})
	h.loop.OnTextChanged("Hi")
	size := h.loop.Font().PixelSize

	h.loop.OnTextChanged("")

	if !h.loop.NeedsResize() {
		t.Error("empty text should mark the fit unresolved")
	}
	if h.loop.Font().PixelSize != size {
		t.Errorf("PixelSize = %d, want %d kept", h.loop.Font().PixelSize, size)
	}

	h.loop.OnTextChanged("Hello")
	if h.loop.NeedsResize() {
		t.Error("next text change should resolve the pending fit")
	}
}
