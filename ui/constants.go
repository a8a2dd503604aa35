package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
)

// AppID identifies the kiosk to fyne's preferences store.
const AppID = "com.sm-kiosk.display"

// Window dimensions when not fullscreen
const (
	WindowWidth  = 800
	WindowHeight = 480
)

// Kiosk colors
var (
	Background = color.White
	Foreground = color.Black
)

// NewWindowSize returns the default window size
func NewWindowSize() fyne.Size {
	return fyne.NewSize(WindowWidth, WindowHeight)
}
