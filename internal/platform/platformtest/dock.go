package platformtest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/1broseidon/dockvis/internal/platform"
)

// Dock is a simulated panel window implementing platform.DockInterface.
type Dock struct {
	wm       *WM
	id       platform.WindowID
	geom     platform.Rect
	layer    layer
	dockType bool
	sticky   bool
	class    string
	title    string
	watch    *platform.PanelHandlers

	// Commands records every command issued, in order.
	Commands []string
}

var _ platform.DockInterface = (*Dock)(nil)

// AddDock maps a panel window with the given geometry in the normal layer.
func (w *WM) AddDock(id platform.WindowID, geom platform.Rect) *Dock {
	d := &Dock{wm: w, id: id, geom: geom, layer: layerNormal}
	w.docks[id] = d
	w.Add(platform.WindowInfo{ID: id, Geometry: geom})
	return d
}

// ID returns the panel window id.
func (d *Dock) ID() platform.WindowID { return d.id }

func (d *Dock) Geometry() platform.Rect { return d.geom }

// SetGeometry resizes the panel.
func (d *Dock) SetGeometry(r platform.Rect) {
	d.geom = r
	if info, ok := d.wm.windows[d.id]; ok {
		info.Geometry = r
	}
}

// Sticky reports whether SetDockToAllDesktops was issued.
func (d *Dock) Sticky() bool { return d.sticky }

// DockType reports the last SetDockDefaultFlags argument.
func (d *Dock) DockType() bool { return d.dockType }

// LastCommand returns the most recent command or "".
func (d *Dock) LastCommand() string {
	if len(d.Commands) == 0 {
		return ""
	}
	return d.Commands[len(d.Commands)-1]
}

func (d *Dock) DesktopIsActive() bool {
	if d.wm.showingDesktop {
		return true
	}
	info, ok := d.wm.windows[d.wm.active]
	return ok && info.Desktop
}

func (d *Dock) ActiveIsDialog() bool {
	info, ok := d.wm.windows[d.wm.active]
	return ok && info.Dialog
}

func (d *Dock) ActiveIsMaximized() bool {
	info, ok := d.wm.windows[d.wm.active]
	return ok && info.Maximized
}

func (d *Dock) DockIntersectsActiveWindow() bool {
	info, ok := d.wm.windows[d.wm.active]
	if !ok || info.Minimized || !info.OnCurrentDesktop {
		return false
	}
	return info.Geometry.Intersects(d.geom)
}

func (d *Dock) DockIsCovered(totally bool) bool {
	above := false
	for _, id := range d.wm.effectiveOrder() {
		if id == d.id {
			above = true
			continue
		}
		if !above || !d.candidate(id) {
			continue
		}
		g := d.wm.windows[id].Geometry
		if totally && g.ContainsRect(d.geom) {
			return true
		}
		if !totally && g.Intersects(d.geom) {
			return true
		}
	}
	return false
}

func (d *Dock) DockIsCovering() bool {
	for _, id := range d.wm.effectiveOrder() {
		if id == d.id {
			return false
		}
		if d.candidate(id) && d.wm.windows[id].Geometry.Intersects(d.geom) {
			return true
		}
	}
	return false
}

func (d *Dock) candidate(id platform.WindowID) bool {
	info, ok := d.wm.windows[id]
	if !ok || info.Desktop || info.Minimized || !info.OnCurrentDesktop {
		return false
	}
	_, isDock := d.wm.docks[id]
	return !isDock
}

func (d *Dock) DockIsOnTop() bool       { return d.layer == layerAbove }
func (d *Dock) DockInNormalState() bool { return d.layer == layerNormal }
func (d *Dock) DockIsBelow() bool       { return d.layer == layerBelow }

func (d *Dock) SetDockDefaultFlags(dock bool) {
	d.dockType = dock
	d.Commands = append(d.Commands, "default-flags")
}

func (d *Dock) SetDockToAllDesktops() {
	d.sticky = true
	d.Commands = append(d.Commands, "all-desktops")
}

func (d *Dock) ShowDockAsNormal() {
	d.layer = layerNormal
	d.Commands = append(d.Commands, "normal")
}

func (d *Dock) ShowDockOnBottom() {
	d.layer = layerBelow
	d.Commands = append(d.Commands, "bottom")
}

func (d *Dock) ShowDockOnTop() {
	d.layer = layerAbove
	d.wm.raise(d.id)
	d.Commands = append(d.Commands, "top")
}

func (d *Dock) PointerInside() bool {
	return d.geom.Contains(d.wm.pointerX, d.wm.pointerY)
}

// Name sets the WM_CLASS and title FindPanel matches against.
func (d *Dock) Name(class, title string) *Dock {
	d.class, d.title = class, title
	return d
}

// Watched reports whether WatchPanel handlers are installed.
func (d *Dock) Watched() bool { return d.watch != nil }

// Enter simulates the pointer entering the panel.
func (d *Dock) Enter() {
	d.wm.pointerX, d.wm.pointerY = d.geom.Center()
	if d.watch != nil && d.watch.Enter != nil {
		d.watch.Enter()
	}
}

// Leave simulates the pointer leaving the panel.
func (d *Dock) Leave() {
	d.wm.pointerX, d.wm.pointerY = -1, -1
	if d.watch != nil && d.watch.Leave != nil {
		d.watch.Leave()
	}
}

// MoveTo resizes the panel and reports the move to watchers.
func (d *Dock) MoveTo(r platform.Rect) {
	d.SetGeometry(r)
	if d.watch != nil && d.watch.Moved != nil {
		d.watch.Moved()
	}
}

// Destroy removes the panel window and reports it to watchers.
func (d *Dock) Destroy() {
	watch := d.watch
	delete(d.wm.docks, d.id)
	d.wm.Remove(d.id)
	if watch != nil && watch.Closed != nil {
		watch.Closed()
	}
}

var _ platform.PanelHost = (*WM)(nil)

// FindPanel matches docks by class (case-insensitive) and title substring.
func (w *WM) FindPanel(class, title string) (platform.WindowID, error) {
	ids := make([]platform.WindowID, 0, len(w.docks))
	for id := range w.docks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		d := w.docks[id]
		if class != "" && !strings.EqualFold(d.class, class) {
			continue
		}
		if title != "" && !strings.Contains(d.title, title) {
			continue
		}
		return id, nil
	}
	return 0, fmt.Errorf("no window matches class %q title %q", class, title)
}

// Dock returns the simulated dock for id, or nil.
func (w *WM) Dock(id platform.WindowID) platform.DockInterface {
	d, ok := w.docks[id]
	if !ok {
		return nil
	}
	return d
}

// WatchPanel installs handlers on a dock.
func (w *WM) WatchPanel(id platform.WindowID, h platform.PanelHandlers) (func(), error) {
	d, ok := w.docks[id]
	if !ok {
		return nil, fmt.Errorf("window %d is gone", id)
	}
	d.watch = &h
	return func() {
		if d.watch == &h {
			d.watch = nil
		}
	}, nil
}
