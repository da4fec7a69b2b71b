package tracker

import "github.com/1broseidon/dockvis/internal/platform"

type group uint8

const (
	groupActive group = 1 << iota
	groupMaximized
	groupTouching
	groupIntersecting

	groupAll = groupActive | groupMaximized | groupTouching | groupIntersecting
)

// groupsFor maps changed window fields to the summaries they can affect.
func groupsFor(fields platform.Field) group {
	var g group
	if fields.Has(platform.FieldActive) {
		g |= groupActive
	}
	if fields.Has(platform.FieldMaximized) {
		g |= groupActive | groupMaximized
	}
	if fields.Has(platform.FieldFullscreen) {
		g |= groupActive | groupIntersecting
	}
	if fields.Has(platform.FieldGeometry | platform.FieldMinimized | platform.FieldDesktop | platform.FieldState) {
		g = groupAll
	}
	return g
}

func diff(a, b Summary) Change {
	var c Change
	if a.ActiveWindow != b.ActiveWindow || a.ExistsActive != b.ExistsActive ||
		a.ActiveMaximized != b.ActiveMaximized || a.ActiveTouching != b.ActiveTouching ||
		a.ActiveIntersecting != b.ActiveIntersecting {
		c |= ChangeActive
	}
	if a.ExistsMaximized != b.ExistsMaximized {
		c |= ChangeMaximized
	}
	if a.ExistsTouching != b.ExistsTouching {
		c |= ChangeTouching
	}
	if a.ExistsIntersecting != b.ExistsIntersecting {
		c |= ChangeIntersecting
	}
	if a.ActiveScheme != b.ActiveScheme || a.TouchingScheme != b.TouchingScheme {
		c |= ChangeScheme
	}
	return c
}

// relevant filters records to the ones a view may count.
func (v *View) relevant(info platform.WindowInfo) bool {
	if !info.Valid || info.Minimized || info.Desktop {
		return false
	}
	if !info.OnCurrentDesktop || !info.OnCurrentActivity {
		return false
	}
	if _, ignored := v.tracker.ignored[info.ID]; ignored {
		return false
	}
	if v.scope == ScopeCurrentScreen {
		return info.Fullscreen || info.Geometry.Intersects(v.panel.Screen)
	}
	return true
}

func (t *Tracker) summarize(v *View, groups group, prev Summary) Summary {
	s := prev
	if groups&groupActive != 0 {
		s.ActiveWindow = t.active
		s.ExistsActive, s.ActiveMaximized, s.ActiveTouching, s.ActiveIntersecting = false, false, false, false
		s.ActiveScheme = ""
		if info, ok := t.windows[t.active]; ok && info.Active && v.relevant(info) {
			s.ExistsActive = true
			s.ActiveMaximized = t.maximizedInScreen(v, info)
			s.ActiveTouching = t.touching(v, info)
			s.ActiveIntersecting = t.intersecting(v, info)
			s.ActiveScheme = t.scheme(info.ID)
		}
	}
	if groups&(groupMaximized|groupTouching|groupIntersecting) == 0 {
		return s
	}

	var maximized, touching, intersecting bool
	var touchingID platform.WindowID
	for _, id := range t.sortedIDs() {
		info, ok := t.windows[id]
		if !ok {
			continue
		}
		// The panel scan doubles as cleanup for records the sweep has not
		// reached yet.
		if v.scope == ScopeCurrentScreen && groups&groupIntersecting != 0 && faulty(info) {
			t.evict(id)
			continue
		}
		if !v.relevant(info) {
			continue
		}
		if groups&groupMaximized != 0 && !maximized {
			maximized = t.maximizedInScreen(v, info)
		}
		if groups&groupTouching != 0 && t.touching(v, info) {
			if !touching || id == t.active {
				touchingID = id
			}
			touching = true
		}
		if groups&groupIntersecting != 0 && !intersecting {
			intersecting = t.intersecting(v, info)
		}
	}
	if groups&groupMaximized != 0 {
		s.ExistsMaximized = maximized
	}
	if groups&groupTouching != 0 {
		s.ExistsTouching = touching
		s.TouchingScheme = t.scheme(touchingID)
	}
	if groups&groupIntersecting != 0 {
		s.ExistsIntersecting = intersecting
	}
	return s
}

func (t *Tracker) available(v *View, info platform.WindowInfo) (platform.Rect, bool) {
	if v.scope == ScopeCurrentScreen {
		if v.panel.Available.Empty() {
			return v.panel.Screen, !v.panel.Screen.Empty()
		}
		return v.panel.Available, true
	}
	d, ok := t.displayFor(info.Geometry)
	if !ok {
		return platform.Rect{}, false
	}
	if d.Usable.Empty() {
		return d.Bounds, true
	}
	return d.Usable, true
}

func (t *Tracker) maximizedInScreen(v *View, info platform.WindowInfo) bool {
	area, ok := t.available(v, info)
	if !ok {
		return false
	}
	return IsMaximizedIn(info, area)
}

func (t *Tracker) touching(v *View, info platform.WindowInfo) bool {
	if v.scope != ScopeCurrentScreen || v.panel.Panel.Empty() {
		return false
	}
	return TouchesPanelEdge(info.Geometry, v.panel.Panel, v.panel.Edge)
}

func (t *Tracker) intersecting(v *View, info platform.WindowInfo) bool {
	if v.scope != ScopeCurrentScreen || v.panel.Panel.Empty() {
		return false
	}
	return Intersects(info, v.panel.Panel)
}

// Intersects reports whether a window overlaps the panel. Minimized and
// shaded windows never do; a fullscreen window covers its whole screen.
func Intersects(info platform.WindowInfo, panel platform.Rect) bool {
	if info.Minimized || info.Shaded {
		return false
	}
	if info.Fullscreen {
		return true
	}
	return info.Geometry.Intersects(panel)
}

// IsMaximizedIn reports whether the window is maximized on the screen whose
// available area is area. Windows whose geometry fills the area in both axes
// count as maximized even without the hint.
func IsMaximizedIn(info platform.WindowInfo, area platform.Rect) bool {
	if info.Minimized || !info.Geometry.Intersects(area) {
		return false
	}
	cx, cy := info.Geometry.Center()
	if !area.Contains(cx, cy) {
		return false
	}
	if info.Maximized {
		return true
	}
	g := info.Geometry
	if info.MaxVertical && info.MaxHorizontal {
		return true
	}
	return g.Width >= area.Width && g.Height >= area.Height
}

// TouchesPanelEdge reports whether window's near edge is flush with the
// panel's far edge for a panel anchored on edge.
func TouchesPanelEdge(window, panel platform.Rect, edge platform.Edge) bool {
	if window.Empty() {
		return false
	}
	switch edge {
	case platform.EdgeBottom:
		return window.Bottom() == panel.Y && overlapsX(window, panel)
	case platform.EdgeTop:
		return window.Y == panel.Bottom() && overlapsX(window, panel)
	case platform.EdgeLeft:
		return window.X == panel.Right() && overlapsY(window, panel)
	case platform.EdgeRight:
		return window.Right() == panel.X && overlapsY(window, panel)
	}
	return false
}

// TouchesScreenEdge reports whether window sits against edge of area.
func TouchesScreenEdge(window, area platform.Rect, edge platform.Edge) bool {
	if window.Empty() || !window.Intersects(area) {
		return false
	}
	switch edge {
	case platform.EdgeBottom:
		return window.Bottom() == area.Bottom()
	case platform.EdgeTop:
		return window.Y == area.Y
	case platform.EdgeLeft:
		return window.X == area.X
	case platform.EdgeRight:
		return window.Right() == area.Right()
	}
	return false
}

func overlapsX(a, b platform.Rect) bool {
	return min(a.Right(), b.Right()) > max(a.X, b.X)
}

func overlapsY(a, b platform.Rect) bool {
	return min(a.Bottom(), b.Bottom()) > max(a.Y, b.Y)
}
