// Package edge manages the thin hover strip placed at a screen edge while a
// panel is hidden.
package edge

import (
	"log/slog"

	"github.com/1broseidon/dockvis/internal/platform"
)

const (
	thicknessComposited = 6
	thicknessPlain      = 2
)

// Thickness returns the strip depth in pixels.
func Thickness(compositing bool) int {
	if compositing {
		return thicknessComposited
	}
	return thicknessPlain
}

// Geometry computes the strip for a panel anchored to edge of screen. The
// strip is centered on the panel, at least a quarter of the screen long and
// one pixel short of the full length.
func Geometry(screen, panel platform.Rect, edge platform.Edge, thickness int) platform.Rect {
	if screen.Empty() {
		return platform.Rect{}
	}
	if thickness < 1 {
		thickness = 1
	}
	if edge.Horizontal() {
		length := stripLength(panel.Width, screen.Width)
		cx, _ := panel.Center()
		x := clampStart(cx-length/2, length, screen.X, screen.Right())
		y := screen.Y
		if edge == platform.EdgeBottom {
			y = screen.Bottom() - thickness
		}
		return platform.Rect{X: x, Y: y, Width: length, Height: thickness}
	}

	length := stripLength(panel.Height, screen.Height)
	_, cy := panel.Center()
	y := clampStart(cy-length/2, length, screen.Y, screen.Bottom())
	x := screen.X
	if edge == platform.EdgeRight {
		x = screen.Right() - thickness
	}
	return platform.Rect{X: x, Y: y, Width: thickness, Height: length}
}

func stripLength(panelLen, screenLen int) int {
	l := min(panelLen, screenLen-1)
	return max(l, screenLen/4)
}

func clampStart(start, length, lo, hi int) int {
	if start+length > hi {
		start = hi - length
	}
	if start < lo {
		start = lo
	}
	return start
}

// Config configures a RevealWindow.
type Config struct {
	Factory platform.StripFactory
	// OnEnter is called when the pointer reaches the strip.
	OnEnter func()
	Logger  *slog.Logger
}

// RevealWindow owns at most one strip. It is not safe for concurrent use;
// call it from the control loop.
type RevealWindow struct {
	factory platform.StripFactory
	onEnter func()
	logger  *slog.Logger

	screen  platform.Rect
	panel   platform.Rect
	edge    platform.Edge
	enabled bool

	strip platform.Strip
	geom  platform.Rect
	gen   uint64
}

// New returns an enabled reveal window with no strip.
func New(cfg Config) *RevealWindow {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RevealWindow{
		factory: cfg.Factory,
		onEnter: cfg.OnEnter,
		logger:  logger,
		enabled: true,
	}
}

// SetPanel updates the anchoring geometry and moves a live strip.
func (r *RevealWindow) SetPanel(screen, panel platform.Rect, edge platform.Edge) {
	r.screen, r.panel, r.edge = screen, panel, edge
	if r.strip == nil {
		return
	}
	geom := r.compute()
	if geom.Empty() {
		r.Hide()
		return
	}
	if geom != r.geom {
		r.geom = geom
		r.strip.Move(geom)
	}
}

// SetEnabled toggles whether Show creates a strip at all.
func (r *RevealWindow) SetEnabled(on bool) {
	r.enabled = on
	if !on {
		r.Hide()
	}
}

// Show creates the strip. It is a no-op while one exists.
func (r *RevealWindow) Show() {
	if r.strip != nil || !r.enabled || r.factory == nil {
		return
	}
	geom := r.compute()
	if geom.Empty() {
		r.logger.Debug("edge: no geometry for reveal strip", "screen", r.screen, "panel", r.panel)
		return
	}
	r.gen++
	gen := r.gen
	strip, err := r.factory.CreateStrip(geom, func() { r.entered(gen) })
	if err != nil {
		r.logger.Warn("edge: failed to create reveal strip", "error", err)
		return
	}
	r.strip = strip
	r.geom = geom
	r.logger.Debug("edge: reveal strip shown", "geometry", geom.String(), "edge", r.edge.String())
}

// Hide destroys the strip if present.
func (r *RevealWindow) Hide() {
	if r.strip == nil {
		return
	}
	r.strip.Destroy()
	r.strip = nil
	r.geom = platform.Rect{}
	r.gen++
	r.logger.Debug("edge: reveal strip hidden")
}

// Visible reports whether a strip exists.
func (r *RevealWindow) Visible() bool { return r.strip != nil }

// Geometry returns the live strip's rectangle, or the zero Rect.
func (r *RevealWindow) Geometry() platform.Rect { return r.geom }

func (r *RevealWindow) compute() platform.Rect {
	thickness := thicknessPlain
	if r.factory != nil {
		thickness = Thickness(r.factory.Compositing())
	}
	return Geometry(r.screen, r.panel, r.edge, thickness)
}

func (r *RevealWindow) entered(gen uint64) {
	if gen != r.gen || r.strip == nil {
		return
	}
	if r.onEnter != nil {
		r.onEnter()
	}
}
