// Package platformtest provides an in-memory window manager implementing the
// platform contracts for tests.
package platformtest

import (
	"errors"
	"sort"

	"github.com/1broseidon/dockvis/internal/platform"
)

type layer int

const (
	layerBelow layer = iota
	layerNormal
	layerAbove
)

// WM is a deterministic stand-in for an EWMH window manager. Events are
// delivered synchronously to subscribers.
type WM struct {
	windows        map[platform.WindowID]*platform.WindowInfo
	stack          []platform.WindowID // bottom to top
	active         platform.WindowID
	displays       []platform.Display
	handlers       map[int]platform.EventHandler
	nextHandler    int
	caps           platform.Capabilities
	showingDesktop bool
	broken         map[platform.WindowID]bool
	displaysErr    error

	pointerX, pointerY int
	docks              map[platform.WindowID]*Dock
}

var _ platform.WindowSystem = (*WM)(nil)

// New returns an empty window manager with the given displays.
func New(displays ...platform.Display) *WM {
	return &WM{
		windows:  make(map[platform.WindowID]*platform.WindowInfo),
		displays: displays,
		handlers: make(map[int]platform.EventHandler),
		broken:   make(map[platform.WindowID]bool),
		docks:    make(map[platform.WindowID]*Dock),
		pointerX: -1,
		pointerY: -1,
	}
}

// SingleScreen is a 1920x1080 display at the origin.
func SingleScreen() platform.Display {
	r := platform.Rect{Width: 1920, Height: 1080}
	return platform.Display{ID: 0, Name: "DP-1", Bounds: r, Usable: r}
}

func (w *WM) Windows() []platform.WindowID {
	ids := make([]platform.WindowID, 0, len(w.windows))
	for id := range w.windows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (w *WM) RequestInfo(id platform.WindowID) platform.WindowInfo {
	info, ok := w.windows[id]
	if !ok || w.broken[id] {
		return platform.WindowInfo{ID: id}
	}
	out := *info
	out.Active = id == w.active
	return out
}

func (w *WM) ActiveWindow() platform.WindowID { return w.active }

func (w *WM) Displays() ([]platform.Display, error) {
	if w.displaysErr != nil {
		return nil, w.displaysErr
	}
	return append([]platform.Display(nil), w.displays...), nil
}

func (w *WM) Subscribe(fn platform.EventHandler) func() {
	id := w.nextHandler
	w.nextHandler++
	w.handlers[id] = fn
	return func() { delete(w.handlers, id) }
}

func (w *WM) Capabilities() platform.Capabilities { return w.caps }

// SetCapabilities overrides the advertised capabilities.
func (w *WM) SetCapabilities(c platform.Capabilities) { w.caps = c }

// Subscribers returns the number of live subscriptions.
func (w *WM) Subscribers() int { return len(w.handlers) }

// FailDisplays makes Displays return an error.
func (w *WM) FailDisplays() { w.displaysErr = errors.New("displays unavailable") }

// Add maps a new window on top of the stack. Zero-valued visibility flags
// default to a valid window on the current desktop and activity.
func (w *WM) Add(info platform.WindowInfo) {
	info.Valid = true
	if !info.OnCurrentDesktop && !info.OnCurrentActivity {
		info.OnCurrentDesktop = true
		info.OnCurrentActivity = true
	}
	cp := info
	w.windows[info.ID] = &cp
	w.stack = append(w.stack, info.ID)
	w.emit(platform.Event{Kind: platform.EventWindowAdded, Window: info.ID})
}

// AddSilently inserts a window without notifying subscribers, modelling a
// window that appeared before the tracker subscribed.
func (w *WM) AddSilently(info platform.WindowInfo) {
	info.Valid = true
	if !info.OnCurrentDesktop && !info.OnCurrentActivity {
		info.OnCurrentDesktop = true
		info.OnCurrentActivity = true
	}
	cp := info
	w.windows[info.ID] = &cp
	w.stack = append(w.stack, info.ID)
}

// Remove unmaps a window.
func (w *WM) Remove(id platform.WindowID) {
	w.drop(id)
	w.emit(platform.Event{Kind: platform.EventWindowRemoved, Window: id})
}

// Vanish drops a window without a removal notification.
func (w *WM) Vanish(id platform.WindowID) {
	w.drop(id)
}

func (w *WM) drop(id platform.WindowID) {
	delete(w.windows, id)
	for i, sid := range w.stack {
		if sid == id {
			w.stack = append(w.stack[:i], w.stack[i+1:]...)
			break
		}
	}
	if w.active == id {
		w.active = 0
	}
}

// Break makes RequestInfo report the window as invalid.
func (w *WM) Break(id platform.WindowID) { w.broken[id] = true }

// Update mutates a window and emits a change event for fields.
func (w *WM) Update(id platform.WindowID, fields platform.Field, fn func(*platform.WindowInfo)) {
	info, ok := w.windows[id]
	if !ok {
		return
	}
	fn(info)
	w.emit(platform.Event{Kind: platform.EventWindowChanged, Window: id, Fields: fields})
}

// Move changes a window's geometry.
func (w *WM) Move(id platform.WindowID, geom platform.Rect) {
	w.Update(id, platform.FieldGeometry, func(i *platform.WindowInfo) { i.Geometry = geom })
}

// Activate focuses id and raises it to the top of its layer.
func (w *WM) Activate(id platform.WindowID) {
	prev := w.active
	w.active = id
	w.raise(id)
	w.emit(platform.Event{Kind: platform.EventActiveWindowChanged, Window: id})
	if prev != 0 && prev != id {
		w.emit(platform.Event{Kind: platform.EventWindowChanged, Window: prev, Fields: platform.FieldActive})
	}
	if id != 0 {
		w.emit(platform.Event{Kind: platform.EventWindowChanged, Window: id, Fields: platform.FieldActive})
	}
}

// ShowDesktop toggles the showing-desktop mode.
func (w *WM) ShowDesktop(on bool) {
	w.showingDesktop = on
	w.emit(platform.Event{Kind: platform.EventActiveWindowChanged, Window: w.active})
}

// SwitchDesktop marks every non-sticky window as off the current desktop
// unless it is listed in keep.
func (w *WM) SwitchDesktop(keep ...platform.WindowID) {
	kept := make(map[platform.WindowID]bool, len(keep))
	for _, id := range keep {
		kept[id] = true
	}
	for id, info := range w.windows {
		info.OnCurrentDesktop = kept[id]
	}
	w.emit(platform.Event{Kind: platform.EventDesktopChanged})
}

// SwitchActivity emits an activity change.
func (w *WM) SwitchActivity() {
	w.emit(platform.Event{Kind: platform.EventActivityChanged})
}

// Attention raises or clears the demands-attention hint.
func (w *WM) Attention(id platform.WindowID, on bool) {
	w.emit(platform.Event{Kind: platform.EventWindowInAttention, Window: id, Attention: on})
}

// MovePointer places the pointer at x,y.
func (w *WM) MovePointer(x, y int) {
	w.pointerX, w.pointerY = x, y
}

func (w *WM) emit(ev platform.Event) {
	keys := make([]int, 0, len(w.handlers))
	for k := range w.handlers {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		if h, ok := w.handlers[k]; ok {
			h(ev)
		}
	}
}

func (w *WM) raise(id platform.WindowID) {
	for i, sid := range w.stack {
		if sid == id {
			w.stack = append(w.stack[:i], w.stack[i+1:]...)
			w.stack = append(w.stack, id)
			return
		}
	}
}

func (w *WM) layerOf(id platform.WindowID) layer {
	if d, ok := w.docks[id]; ok {
		return d.layer
	}
	info := w.windows[id]
	switch {
	case info == nil:
		return layerNormal
	case info.Desktop:
		return layerBelow
	case info.KeepAbove:
		return layerAbove
	default:
		return layerNormal
	}
}

// effectiveOrder returns ids sorted bottom to top, honouring layers.
func (w *WM) effectiveOrder() []platform.WindowID {
	order := append([]platform.WindowID(nil), w.stack...)
	pos := make(map[platform.WindowID]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		li, lj := w.layerOf(order[i]), w.layerOf(order[j])
		if li != lj {
			return li < lj
		}
		return pos[order[i]] < pos[order[j]]
	})
	return order
}
