package display

// Quality is the rendering quality level.
type Quality int

const (
	Draft Quality = iota
	High
)

func (q Quality) String() string {
	if q == High {
		return "high"
	}
	return "draft"
}

// QualityController owns the antialiasing toggle. Flipping the toggle is
// expensive, so the port is only touched on an actual state change; a forced
// request under the current state only queues a repaint.
type QualityController struct {
	port    RenderingQualityPort
	repaint Repainter
	state   Quality
}

// NewQualityController returns a controller in the Draft state.
func NewQualityController(port RenderingQualityPort, repaint Repainter) *QualityController {
	return &QualityController{
		port:    port,
		repaint: repaint,
		state:   Draft,
	}
}

// RequestQuality switches to q, or repaints under the current quality when
// q is already active and force is set.
func (c *QualityController) RequestQuality(q Quality, force bool) {
	if q != c.state {
		c.port.SetHigh(q == High)
		c.state = q
		return
	}
	if force {
		c.repaint.RequestRepaint()
	}
}

// State returns the current quality. It is only meaningful once the first
// render pass has completed.
func (c *QualityController) State() Quality {
	return c.state
}
