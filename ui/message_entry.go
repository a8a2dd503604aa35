package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// messageEntry is the kiosk's input line. Enter inserts a line break, which
// the render loop treats as a commit. Escape clears the text and Ctrl+Q
// quits even while the entry holds focus.
type messageEntry struct {
	widget.Entry
	onQuit func()
}

func newMessageEntry(onQuit func()) *messageEntry {
	e := &messageEntry{onQuit: onQuit}
	e.MultiLine = true
	e.Wrapping = fyne.TextWrapOff
	e.SetPlaceHolder("type a message, Enter to flash")
	e.ExtendBaseWidget(e)
	return e
}

// TypedKey clears on Escape and forwards everything else.
func (e *messageEntry) TypedKey(ev *fyne.KeyEvent) {
	if ev.Name == fyne.KeyEscape {
		e.SetText("")
		return
	}
	e.Entry.TypedKey(ev)
}

// TypedShortcut handles the quit shortcut before the entry's own bindings.
func (e *messageEntry) TypedShortcut(s fyne.Shortcut) {
	if isQuitShortcut(s) {
		if e.onQuit != nil {
			e.onQuit()
		}
		return
	}
	e.Entry.TypedShortcut(s)
}

// entryBridge exposes the entry to the commit pipeline.
type entryBridge struct {
	entry *messageEntry
}

func (b entryBridge) Text() string        { return b.entry.Text }
func (b entryBridge) SetText(text string) { b.entry.SetText(text) }

var quitShortcut = &desktop.CustomShortcut{KeyName: fyne.KeyQ, Modifier: fyne.KeyModifierControl}

func isQuitShortcut(s fyne.Shortcut) bool {
	cs, ok := s.(*desktop.CustomShortcut)
	return ok && cs.KeyName == quitShortcut.KeyName && cs.Modifier == quitShortcut.Modifier
}
