// Package shell attaches visibility engines to real panel windows and
// carries out their decisions.
package shell

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/dockvis/internal/edge"
	"github.com/1broseidon/dockvis/internal/eventloop"
	"github.com/1broseidon/dockvis/internal/platform"
	"github.com/1broseidon/dockvis/internal/tracker"
	"github.com/1broseidon/dockvis/internal/visibility"
)

// PanelSpec is the resolved configuration of one managed panel.
type PanelSpec struct {
	Name       string
	MatchClass string
	MatchName  string
	Edge       platform.Edge

	Policy                visibility.Policy
	ShowDelay             time.Duration
	HideDelay             time.Duration
	RecheckInterval       time.Duration
	RaiseOnDesktopChange  bool
	RaiseOnActivityChange bool
	DockWindowType        bool
	EdgeReveal            bool
	AllDesktops           bool
}

// sameWindow reports whether two specs manage the same window the same way,
// so that only tunables differ.
func (s PanelSpec) sameWindow(o PanelSpec) bool {
	return s.MatchClass == o.MatchClass && s.MatchName == o.MatchName &&
		s.Edge == o.Edge && s.DockWindowType == o.DockWindowType && s.AllDesktops == o.AllDesktops
}

func (s PanelSpec) options() visibility.Options {
	return visibility.Options{
		Policy:                s.Policy,
		ShowDelay:             s.ShowDelay,
		HideDelay:             s.HideDelay,
		RecheckInterval:       s.RecheckInterval,
		RaiseOnDesktopChange:  s.RaiseOnDesktopChange,
		RaiseOnActivityChange: s.RaiseOnActivityChange,
		DockWindowType:        s.DockWindowType,
	}
}

// panelDeps are shared by every panel of a manager.
type panelDeps struct {
	host    platform.PanelHost
	strips  platform.StripFactory
	tracker *tracker.Tracker
	caps    platform.Capabilities
	clock   eventloop.Clock
	post    eventloop.Poster
	logger  *slog.Logger
}

// Panel is one attached panel window. It implements visibility.Signals by
// restacking the window.
type Panel struct {
	spec   PanelSpec
	id     platform.WindowID
	dock   platform.DockInterface
	view   *tracker.View
	engine *visibility.Engine
	reveal *edge.RevealWindow
	deps   panelDeps
	logger *slog.Logger

	cancelWatch func()
	onGone      func()

	hovered  bool
	raises   int
	lowers   int
	attached time.Time
	closed   bool
}

var _ visibility.Signals = (*Panel)(nil)

// attach finds the panel window and starts managing it.
func attach(spec PanelSpec, deps panelDeps, onGone func()) (*Panel, error) {
	id, err := deps.host.FindPanel(spec.MatchClass, spec.MatchName)
	if err != nil {
		return nil, fmt.Errorf("panel %s: %w", spec.Name, err)
	}
	dock := deps.host.Dock(id)
	if dock == nil {
		return nil, fmt.Errorf("panel %s: window %d vanished", spec.Name, id)
	}

	logger := deps.logger.With("panel", spec.Name, "window", id)
	p := &Panel{
		spec:     spec,
		id:       id,
		dock:     dock,
		deps:     deps,
		logger:   logger,
		onGone:   onGone,
		attached: deps.clock.Now(),
	}

	deps.tracker.Ignore(id)
	geom := p.geometry()
	p.view = deps.tracker.NewScreenView(geom)

	p.reveal = edge.New(edge.Config{
		Factory: deps.strips,
		OnEnter: p.onEdgeEntered,
		Logger:  logger,
	})
	p.reveal.SetPanel(geom.Screen, geom.Panel, geom.Edge)
	p.reveal.SetEnabled(spec.EdgeReveal)

	p.dock.SetDockDefaultFlags(spec.DockWindowType)
	if spec.AllDesktops {
		p.dock.SetDockToAllDesktops()
	}

	p.engine = visibility.New(dock, p.view, p, spec.options(), visibility.Deps{
		Clock:        deps.clock,
		Post:         deps.post,
		Logger:       logger,
		Capabilities: deps.caps,
		Reveal:       p.reveal,
	})

	cancel, err := deps.host.WatchPanel(id, platform.PanelHandlers{
		Enter:  func() { p.engine.SetContainsMouse(true) },
		Leave:  func() { p.engine.SetContainsMouse(false) },
		Moved:  p.Relocate,
		Closed: p.gone,
	})
	if err != nil {
		// Without pointer events hover falls back to the reveal strip.
		logger.Warn("shell: cannot watch panel window", "error", err)
	} else {
		p.cancelWatch = cancel
	}

	logger.Info("shell: panel attached", "policy", spec.Policy.String(), "edge", spec.Edge.String(), "geometry", geom.Panel.String())
	return p, nil
}

func (p *Panel) Name() string                 { return p.spec.Name }
func (p *Panel) Spec() PanelSpec              { return p.spec }
func (p *Panel) Window() platform.WindowID    { return p.id }
func (p *Panel) Engine() *visibility.Engine   { return p.engine }
func (p *Panel) Reveal() *edge.RevealWindow   { return p.reveal }
func (p *Panel) View() *tracker.View          { return p.view }
func (p *Panel) Dock() platform.DockInterface { return p.dock }

// MustBeRaised puts the panel above application windows.
func (p *Panel) MustBeRaised() {
	p.raises++
	p.dock.ShowDockOnTop()
}

// MustBeRaisedImmediately is a raise triggered by the reveal strip.
func (p *Panel) MustBeRaisedImmediately() {
	p.raises++
	p.dock.ShowDockOnTop()
}

// MustBeLowered stacks the panel below application windows.
func (p *Panel) MustBeLowered() {
	p.lowers++
	p.dock.ShowDockOnBottom()
}

func (p *Panel) PanelVisibilityChanged(policy visibility.Policy) {
	p.logger.Info("shell: visibility policy changed", "policy", policy.String())
}

func (p *Panel) IsHoveredChanged(hovered bool) { p.hovered = hovered }

// update applies new tunables to an attached panel.
func (p *Panel) update(spec PanelSpec) {
	p.spec = spec
	p.engine.SetDelays(spec.ShowDelay, spec.HideDelay)
	p.engine.SetRaiseOnChange(spec.RaiseOnDesktopChange, spec.RaiseOnActivityChange)
	p.reveal.SetEnabled(spec.EdgeReveal)
	p.engine.SetPolicy(spec.Policy)
}

// SetPolicy switches the panel's policy at runtime.
func (p *Panel) SetPolicy(policy visibility.Policy) {
	p.spec.Policy = policy
	p.engine.SetPolicy(policy)
}

// Relocate recomputes the panel's screen and geometry after it moved or the
// displays changed.
func (p *Panel) Relocate() {
	if p.closed {
		return
	}
	geom := p.geometry()
	p.view.SetPanel(geom)
	p.reveal.SetPanel(geom.Screen, geom.Panel, geom.Edge)
}

// Converge restacks the panel if the window manager moved it away from the
// layer the engine last asked for.
func (p *Panel) Converge() {
	if p.closed || p.spec.DockWindowType {
		return
	}
	wantTop := !p.engine.Hidden() && p.engine.Policy() != visibility.WindowsAlwaysCover
	switch {
	case wantTop && !p.dock.DockIsOnTop():
		p.logger.Debug("shell: panel drifted below, raising again")
		p.dock.ShowDockOnTop()
	case !wantTop && !p.dock.DockIsBelow():
		p.logger.Debug("shell: panel drifted above, lowering again")
		p.dock.ShowDockOnBottom()
	}
}

// Close stops the engine and hands the window back in the normal layer.
func (p *Panel) Close() {
	if p.closed {
		return
	}
	p.closed = true
	if p.cancelWatch != nil {
		p.cancelWatch()
		p.cancelWatch = nil
	}
	p.engine.Close()
	p.view.Close()
	p.reveal.Hide()
	p.deps.tracker.Unignore(p.id)
	p.dock.ShowDockAsNormal()
	p.logger.Info("shell: panel detached")
}

// gone handles the panel window being destroyed.
func (p *Panel) gone() {
	if p.closed {
		return
	}
	p.closed = true
	if p.cancelWatch != nil {
		p.cancelWatch()
		p.cancelWatch = nil
	}
	p.engine.Close()
	p.view.Close()
	p.reveal.Hide()
	p.deps.tracker.Unignore(p.id)
	p.logger.Info("shell: panel window closed")
	if p.onGone != nil {
		p.onGone()
	}
}

func (p *Panel) onEdgeEntered() {
	if p.engine != nil {
		p.engine.OnEdgeEntered()
	}
}

// geometry locates the panel on the display containing its center, falling
// back to the display it overlaps most.
func (p *Panel) geometry() tracker.PanelGeometry {
	r := p.dock.Geometry()
	g := tracker.PanelGeometry{Screen: r, Available: r, Panel: r, Edge: p.spec.Edge}

	cx, cy := r.Center()
	best := -1
	for _, d := range p.deps.tracker.Displays() {
		if d.Bounds.Contains(cx, cy) {
			g.Screen, g.Available = d.Bounds, d.Usable
			return g
		}
		isect := d.Bounds.Intersect(r)
		if area := isect.Width * isect.Height; area > best && area > 0 {
			best = area
			g.Screen, g.Available = d.Bounds, d.Usable
		}
	}
	return g
}
