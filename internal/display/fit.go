package display

// Fit returns the largest font size that scales a text of the given natural
// extent (measured at current) into canvas without overflow on either axis.
// The scale is uniform; the tighter axis binds.
//
// The second result is false when the fit cannot be resolved because the text
// or the canvas has no measurable extent. current is returned unchanged in
// that case and the caller should retry on its next layout pass.
func Fit(natural, canvas Extent, current int) (int, bool) {
	if !natural.Positive() || !canvas.Positive() || current <= 0 {
		return current, false
	}

	// Integer division keeps the floor exact.
	byW := current * canvas.W / natural.W
	byH := current * canvas.H / natural.H

	size := min(byW, byH)
	if size < MinPixelSize {
		size = MinPixelSize
	}
	return size, true
}
