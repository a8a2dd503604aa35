package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// FlatButton is a borderless button drawn in fixed colors so it blends into
// the kiosk's white surface regardless of the system theme.
type FlatButton struct {
	widget.Button
	bgColor  color.Color
	txtColor color.Color
}

// NewFlatButton creates a button with custom colors.
func NewFlatButton(label string, tapped func(), bgColor, txtColor color.Color) *FlatButton {
	btn := &FlatButton{
		bgColor:  bgColor,
		txtColor: txtColor,
	}
	btn.Text = label
	btn.OnTapped = tapped
	btn.ExtendBaseWidget(btn)
	return btn
}

// CreateRenderer returns a custom renderer.
func (b *FlatButton) CreateRenderer() fyne.WidgetRenderer {
	b.ExtendBaseWidget(b)

	bg := canvas.NewRectangle(b.bgColor)
	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = b.txtColor
	border.StrokeWidth = 1

	label := canvas.NewText(b.Text, b.txtColor)
	label.Alignment = fyne.TextAlignCenter

	return &flatBtnRenderer{
		btn:     b,
		bg:      bg,
		border:  border,
		label:   label,
		objects: []fyne.CanvasObject{bg, border, label},
	}
}

type flatBtnRenderer struct {
	btn     *FlatButton
	bg      *canvas.Rectangle
	border  *canvas.Rectangle
	label   *canvas.Text
	objects []fyne.CanvasObject
}

func (r *flatBtnRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.border.Resize(size)
	labelMin := r.label.MinSize()
	r.label.Move(fyne.NewPos(
		(size.Width-labelMin.Width)/2,
		(size.Height-labelMin.Height)/2,
	))
	r.label.Resize(labelMin)
}

func (r *flatBtnRenderer) MinSize() fyne.Size {
	labelMin := r.label.MinSize()
	pad := theme.InnerPadding()
	return fyne.NewSize(labelMin.Width+pad*4, labelMin.Height+pad*2)
}

func (r *flatBtnRenderer) Refresh() {
	r.label.Text = r.btn.Text
	r.bg.FillColor = r.btn.bgColor
	r.label.Color = r.btn.txtColor
	r.border.StrokeColor = r.btn.txtColor

	r.bg.Refresh()
	r.border.Refresh()
	r.label.Refresh()
}

func (r *flatBtnRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *flatBtnRenderer) Destroy()                     {}
