//go:build linux

package platform

import (
	"github.com/1broseidon/dockvis/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

type dockLayer int

const (
	dockLayerNormal dockLayer = iota
	dockLayerBelow
	dockLayerAbove
)

// x11Dock implements DockInterface for one panel window.
type x11Dock struct {
	b     *X11Backend
	win   xproto.Window
	geom  Rect
	layer dockLayer
}

var _ DockInterface = (*x11Dock)(nil)

func (d *x11Dock) conn() *x11.Connection { return d.b.conn }

func (d *x11Dock) DesktopIsActive() bool {
	if d.conn().ShowingDesktop() {
		return true
	}
	return d.b.active != 0 && d.conn().Type(d.b.active).Desktop
}

func (d *x11Dock) ActiveIsDialog() bool {
	return d.b.active != 0 && d.conn().Type(d.b.active).Dialog
}

func (d *x11Dock) ActiveIsMaximized() bool {
	if d.b.active == 0 {
		return false
	}
	st, err := d.conn().State(d.b.active)
	return err == nil && st.MaximizedVert && st.MaximizedHorz
}

func (d *x11Dock) DockIntersectsActiveWindow() bool {
	if d.b.active == 0 {
		return false
	}
	info := d.b.RequestInfo(WindowID(d.b.active))
	if !info.Valid || info.Minimized || !info.OnCurrentDesktop {
		return false
	}
	return info.Geometry.Intersects(d.Geometry())
}

// DockIsCovered reports whether a window stacked above the panel overlaps it,
// or fully contains it when totally is set.
func (d *x11Dock) DockIsCovered(totally bool) bool {
	order, ok := d.stacking()
	if !ok {
		return false
	}
	geom := d.Geometry()
	above := false
	for _, win := range order {
		if win == d.win {
			above = true
			continue
		}
		if !above {
			continue
		}
		g, ok := d.candidate(win)
		if !ok {
			continue
		}
		if totally && g.ContainsRect(geom) {
			return true
		}
		if !totally && g.Intersects(geom) {
			return true
		}
	}
	return false
}

// DockIsCovering reports whether the panel sits above a window it overlaps.
func (d *x11Dock) DockIsCovering() bool {
	order, ok := d.stacking()
	if !ok {
		return false
	}
	geom := d.Geometry()
	for _, win := range order {
		if win == d.win {
			return false
		}
		if g, ok := d.candidate(win); ok && g.Intersects(geom) {
			return true
		}
	}
	return false
}

// stacking returns the managed stacking order bottom to top when it
// contains the panel.
func (d *x11Dock) stacking() ([]xproto.Window, bool) {
	order, err := d.conn().StackingOrder()
	if err != nil {
		d.b.logger.Debug("x11 dock: stacking order unavailable", "error", err)
		return nil, false
	}
	for _, win := range order {
		if win == d.win {
			return order, true
		}
	}
	return nil, false
}

func (d *x11Dock) candidate(win xproto.Window) (Rect, bool) {
	if _, tracked := d.b.clients[win]; !tracked {
		return Rect{}, false
	}
	info := d.b.RequestInfo(WindowID(win))
	if !info.Valid || info.Desktop || info.Minimized || !info.OnCurrentDesktop {
		return Rect{}, false
	}
	return info.Geometry, true
}

func (d *x11Dock) state() (x11.WindowState, bool) {
	st, err := d.conn().State(d.win)
	if err != nil || !(st.Above || st.Below) {
		return st, false
	}
	return st, true
}

// Layer queries prefer the window manager's view and fall back to the last
// command for unmanaged panels.
func (d *x11Dock) DockIsOnTop() bool {
	if st, ok := d.state(); ok {
		return st.Above
	}
	return d.layer == dockLayerAbove
}

func (d *x11Dock) DockIsBelow() bool {
	if st, ok := d.state(); ok {
		return st.Below
	}
	return d.layer == dockLayerBelow
}

func (d *x11Dock) DockInNormalState() bool {
	if _, ok := d.state(); ok {
		return false
	}
	return d.layer == dockLayerNormal
}

func (d *x11Dock) SetDockDefaultFlags(dock bool) {
	if err := d.conn().SetDockType(d.win, dock); err != nil {
		d.b.logger.Warn("x11 dock: failed to set window type", "window", d.win, "error", err)
	}
	if err := d.conn().RequestState(d.win, x11.StateAdd, "_NET_WM_STATE_SKIP_TASKBAR", "_NET_WM_STATE_SKIP_PAGER"); err != nil {
		d.b.logger.Debug("x11 dock: failed to request skip states", "window", d.win, "error", err)
	}
}

func (d *x11Dock) SetDockToAllDesktops() {
	if err := d.conn().SetSticky(d.win); err != nil {
		d.b.logger.Warn("x11 dock: failed to make panel sticky", "window", d.win, "error", err)
	}
}

func (d *x11Dock) ShowDockAsNormal() {
	d.layer = dockLayerNormal
	d.request(x11.StateRemove, "_NET_WM_STATE_ABOVE", "_NET_WM_STATE_BELOW")
}

func (d *x11Dock) ShowDockOnBottom() {
	d.layer = dockLayerBelow
	d.request(x11.StateRemove, "_NET_WM_STATE_ABOVE")
	d.request(x11.StateAdd, "_NET_WM_STATE_BELOW")
	d.conn().Restack(d.win, false)
}

func (d *x11Dock) ShowDockOnTop() {
	d.layer = dockLayerAbove
	d.request(x11.StateRemove, "_NET_WM_STATE_BELOW")
	d.request(x11.StateAdd, "_NET_WM_STATE_ABOVE")
	d.conn().Restack(d.win, true)
}

func (d *x11Dock) request(action int, first string, second ...string) {
	if err := d.conn().RequestState(d.win, action, first, second...); err != nil {
		d.b.logger.Debug("x11 dock: state request failed", "window", d.win, "state", first, "error", err)
	}
}

// Geometry returns the panel rectangle, or the last known one if the query
// fails.
func (d *x11Dock) Geometry() Rect {
	x, y, w, h, err := d.conn().Geometry(d.win)
	if err != nil {
		return d.geom
	}
	d.geom = Rect{X: x, Y: y, Width: w, Height: h}
	return d.geom
}

func (d *x11Dock) PointerInside() bool {
	x, y, err := d.conn().Pointer()
	if err != nil {
		return false
	}
	return d.Geometry().Contains(x, y)
}
