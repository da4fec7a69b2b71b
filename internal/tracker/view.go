package tracker

import (
	"strings"

	"github.com/1broseidon/dockvis/internal/platform"
)

// Scope selects which windows a view considers.
type Scope int

const (
	ScopeCurrentScreen Scope = iota
	ScopeAllScreens
)

func (s Scope) String() string {
	if s == ScopeAllScreens {
		return "all-screens"
	}
	return "current-screen"
}

// PanelGeometry locates a panel. Screen is the full display rectangle and
// Available the part not reserved by struts.
type PanelGeometry struct {
	Screen    platform.Rect
	Available platform.Rect
	Panel     platform.Rect
	Edge      platform.Edge
}

// Summary is the set of derived booleans a view maintains.
type Summary struct {
	ActiveWindow       platform.WindowID
	ExistsActive       bool
	ActiveMaximized    bool
	ActiveTouching     bool
	ActiveIntersecting bool
	ExistsMaximized    bool
	ExistsTouching     bool
	ExistsIntersecting bool
	ActiveScheme       string
	TouchingScheme     string
}

// Change is a bit set describing which parts of a summary moved.
type Change uint16

const (
	ChangeActive Change = 1 << iota
	ChangeMaximized
	ChangeTouching
	ChangeIntersecting
	ChangeScheme
	ChangeAttention
	ChangeDesktop
	ChangeActivity
)

func (c Change) Has(o Change) bool { return c&o != 0 }

func (c Change) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	for _, n := range []struct {
		bit  Change
		name string
	}{
		{ChangeActive, "active"},
		{ChangeMaximized, "maximized"},
		{ChangeTouching, "touching"},
		{ChangeIntersecting, "intersecting"},
		{ChangeScheme, "scheme"},
		{ChangeAttention, "attention"},
		{ChangeDesktop, "desktop"},
		{ChangeActivity, "activity"},
	} {
		if c.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// View exposes one scope of the tracker's summaries. Reads after Close
// return the zero summary.
type View struct {
	tracker   *Tracker
	scope     Scope
	panel     PanelGeometry
	summary   Summary
	listeners []listener
	nextID    int
	closed    bool
}

type listener struct {
	id int
	fn func(Change)
}

func (v *View) Scope() Scope { return v.scope }

// Panel returns the geometry the view was last given.
func (v *View) Panel() PanelGeometry { return v.panel }

// SetPanel moves the view to new panel geometry and recomputes it.
func (v *View) SetPanel(geom PanelGeometry) {
	if v.closed || v.panel == geom {
		return
	}
	v.panel = geom
	prev := v.summary
	v.summary = v.tracker.summarize(v, groupAll, prev)
	v.notify(diff(prev, v.summary))
}

// OnChange registers fn for summary changes.
func (v *View) OnChange(fn func(Change)) (cancel func()) {
	if v.closed {
		return func() {}
	}
	id := v.nextID
	v.nextID++
	v.listeners = append(v.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range v.listeners {
			if l.id == id {
				v.listeners = append(v.listeners[:i], v.listeners[i+1:]...)
				return
			}
		}
	}
}

// Close detaches the view from its tracker.
func (v *View) Close() {
	if v.closed {
		return
	}
	if v.tracker != nil && v.scope == ScopeCurrentScreen {
		v.tracker.removeView(v)
	}
	v.detach()
}

func (v *View) detach() {
	v.closed = true
	v.listeners = nil
	v.summary = Summary{}
}

// Closed reports whether the view was detached.
func (v *View) Closed() bool { return v.closed }

// Summary returns a copy of the current summary.
func (v *View) Summary() Summary { return v.summary }

func (v *View) ExistsWindowActive() bool     { return v.summary.ExistsActive }
func (v *View) ExistsWindowMaximized() bool  { return v.summary.ExistsMaximized }
func (v *View) ExistsWindowTouching() bool   { return v.summary.ExistsTouching }
func (v *View) ActiveWindowMaximized() bool  { return v.summary.ActiveMaximized }
func (v *View) ActiveWindowTouching() bool   { return v.summary.ActiveTouching }
func (v *View) ActiveWindowIntersects() bool { return v.summary.ActiveIntersecting }
func (v *View) ExistsWindowIntersecting() bool {
	return v.summary.ExistsIntersecting
}
func (v *View) ActiveWindowScheme() string   { return v.summary.ActiveScheme }
func (v *View) TouchingWindowScheme() string { return v.summary.TouchingScheme }

// WindowInAttention reports whether some window demands attention.
func (v *View) WindowInAttention() bool {
	return !v.closed && len(v.tracker.attention) > 0
}

// ExistsWindowTouchingEdge reports whether a window in scope is flush with
// edge. On the panel's own edge that means touching the panel; otherwise the
// window must sit against that edge of its screen's available area.
func (v *View) ExistsWindowTouchingEdge(edge platform.Edge) bool {
	if v.closed {
		return false
	}
	t := v.tracker
	for _, id := range t.sortedIDs() {
		info := t.windows[id]
		if !v.relevant(info) {
			continue
		}
		if v.scope == ScopeCurrentScreen && edge == v.panel.Edge && !v.panel.Panel.Empty() {
			if TouchesPanelEdge(info.Geometry, v.panel.Panel, edge) {
				return true
			}
			continue
		}
		area := v.panel.Available
		if v.scope == ScopeAllScreens {
			d, ok := t.displayFor(info.Geometry)
			if !ok {
				continue
			}
			area = d.Usable
		}
		if TouchesScreenEdge(info.Geometry, area, edge) {
			return true
		}
	}
	return false
}

func (v *View) notify(c Change) {
	if c == 0 || v.closed {
		return
	}
	for _, l := range append([]listener(nil), v.listeners...) {
		if v.closed {
			return
		}
		l.fn(c)
	}
}
