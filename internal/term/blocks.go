package term

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Each terminal cell shows two vertically stacked pixels.
const pixelsPerRow = 2

const (
	blockUpper = "▀"
	blockLower = "▄"
	blockFull  = "█"
	blockEmpty = " "
)

// greyLevels quantizes high-quality shading so styles can be reused.
const greyLevels = 16

var paperStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#000000")).
	Background(lipgloss.Color("#ffffff"))

// blockRenderer turns raster frames into terminal text.
type blockRenderer struct {
	styles map[[2]uint8]lipgloss.Style
}

func newBlockRenderer() *blockRenderer {
	return &blockRenderer{styles: make(map[[2]uint8]lipgloss.Style)}
}

// render draws img as rows of half blocks. Draft frames use pure black and
// white glyphs; high quality frames shade each half with a grey level.
func (r *blockRenderer) render(img *image.RGBA, high bool) string {
	b := img.Bounds()
	rows := (b.Dy() + pixelsPerRow - 1) / pixelsPerRow
	lines := make([]string, 0, rows)
	for row := 0; row < rows; row++ {
		top := b.Min.Y + row*pixelsPerRow
		if high {
			lines = append(lines, r.shadedLine(img, top))
		} else {
			lines = append(lines, paperStyle.Render(binaryLine(img, top)))
		}
	}
	return strings.Join(lines, "\n")
}

func binaryLine(img *image.RGBA, top int) string {
	b := img.Bounds()
	var sb strings.Builder
	for x := b.Min.X; x < b.Max.X; x++ {
		upper := grey(img, x, top) < 128
		lower := grey(img, x, top+1) < 128
		switch {
		case upper && lower:
			sb.WriteString(blockFull)
		case upper:
			sb.WriteString(blockUpper)
		case lower:
			sb.WriteString(blockLower)
		default:
			sb.WriteString(blockEmpty)
		}
	}
	return sb.String()
}

func (r *blockRenderer) shadedLine(img *image.RGBA, top int) string {
	b := img.Bounds()
	var sb strings.Builder
	for x := b.Min.X; x < b.Max.X; x++ {
		key := [2]uint8{quantize(grey(img, x, top)), quantize(grey(img, x, top+1))}
		sb.WriteString(r.style(key).Render(blockUpper))
	}
	return sb.String()
}

func (r *blockRenderer) style(key [2]uint8) lipgloss.Style {
	if s, ok := r.styles[key]; ok {
		return s
	}
	s := lipgloss.NewStyle().
		Foreground(hexGrey(key[0])).
		Background(hexGrey(key[1]))
	r.styles[key] = s
	return s
}

// grey returns the luminance at (x, y); pixels outside the image are white.
func grey(img *image.RGBA, x, y int) uint8 {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return 255
	}
	i := img.PixOffset(x, y)
	return uint8((299*int(img.Pix[i]) + 587*int(img.Pix[i+1]) + 114*int(img.Pix[i+2])) / 1000)
}

func quantize(v uint8) uint8 {
	step := 256 / greyLevels
	return uint8(int(v) / step)
}

func hexGrey(level uint8) lipgloss.Color {
	v := int(level) * 255 / (greyLevels - 1)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", v, v, v))
}
