//go:build linux

package platform

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/1broseidon/dockvis/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// X11Backend wraps an X11 connection behind WindowSystem and StripFactory.
// X event callbacks are posted onto the control loop; every other method
// must be called from the loop.
type X11Backend struct {
	conn   *x11.Connection
	post   func(func()) bool
	logger *slog.Logger

	clients   map[xproto.Window]struct{}
	attention map[xproto.Window]bool
	panels    map[xproto.Window]struct{}
	active    xproto.Window

	handlers    map[int]EventHandler
	nextHandler int

	displaysChanged func()
}

var (
	_ WindowSystem = (*X11Backend)(nil)
	_ StripFactory = (*X11Backend)(nil)
	_ PanelHost    = (*X11Backend)(nil)
)

// NewX11Backend creates a backend on an open connection. post queues work on
// the control loop.
func NewX11Backend(conn *x11.Connection, post func(func()) bool, logger *slog.Logger) *X11Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &X11Backend{
		conn:      conn,
		post:      post,
		logger:    logger,
		clients:   make(map[xproto.Window]struct{}),
		attention: make(map[xproto.Window]bool),
		panels:    make(map[xproto.Window]struct{}),
		handlers:  make(map[int]EventHandler),
	}
}

// Start selects root events and seeds the client list. Call it before the X
// event loop runs.
func (b *X11Backend) Start() error {
	if err := b.conn.ListenRoot(); err != nil {
		return err
	}
	if active, err := b.conn.ActiveWindow(); err == nil {
		b.active = active
	}
	clients, err := b.conn.ClientList()
	if err != nil {
		return fmt.Errorf("failed to read client list: %w", err)
	}
	for _, win := range clients {
		b.track(win)
	}
	b.conn.OnRootProperty(func(name string) {
		b.post(func() { b.onRootProperty(name) })
	})
	b.logger.Debug("x11 backend: started", "clients", len(b.clients))
	return nil
}

// OnDisplaysChanged registers fn to run on the loop when the work area or
// desktop geometry changes.
func (b *X11Backend) OnDisplaysChanged(fn func()) { b.displaysChanged = fn }

func (b *X11Backend) Windows() []WindowID {
	ids := make([]WindowID, 0, len(b.clients))
	for win := range b.clients {
		ids = append(ids, WindowID(win))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (b *X11Backend) ActiveWindow() WindowID { return WindowID(b.active) }

func (b *X11Backend) Capabilities() Capabilities {
	return Capabilities{PointerPolling: true}
}

func (b *X11Backend) Subscribe(fn EventHandler) (cancel func()) {
	id := b.nextHandler
	b.nextHandler++
	b.handlers[id] = fn
	return func() { delete(b.handlers, id) }
}

// Displays returns all active monitors with their usable areas.
func (b *X11Backend) Displays() ([]Display, error) {
	monitors, err := b.conn.Monitors()
	if err != nil {
		return nil, err
	}
	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}
	sort.Slice(displays, func(i, j int) bool { return displays[i].ID < displays[j].ID })
	return displays, nil
}

// RequestInfo snapshots one window. Any query failure yields an invalid
// record.
func (b *X11Backend) RequestInfo(id WindowID) WindowInfo {
	win := xproto.Window(id)
	x, y, w, h, err := b.conn.Geometry(win)
	if err != nil {
		b.logger.Debug("x11 backend: geometry unavailable", "window", id, "error", err)
		return WindowInfo{ID: id}
	}
	st, err := b.conn.State(win)
	if err != nil {
		b.logger.Debug("x11 backend: state unavailable", "window", id, "error", err)
		return WindowInfo{ID: id}
	}
	typ := b.conn.Type(win)

	onCurrent := true
	if desk, err := b.conn.WindowDesktop(win); err == nil && desk >= 0 {
		if cur, err := b.conn.CurrentDesktop(); err == nil {
			onCurrent = desk == cur
		}
	}

	return WindowInfo{
		ID:                id,
		Valid:             true,
		Active:            win == b.active,
		Minimized:         st.Hidden,
		Maximized:         st.MaximizedVert && st.MaximizedHorz,
		MaxVertical:       st.MaximizedVert,
		MaxHorizontal:     st.MaximizedHorz,
		Fullscreen:        st.Fullscreen,
		Shaded:            st.Shaded,
		KeepAbove:         st.Above,
		OnCurrentDesktop:  onCurrent,
		OnCurrentActivity: true,
		Desktop:           typ.Desktop,
		Dialog:            typ.Dialog,
		Geometry:          Rect{X: x, Y: y, Width: w, Height: h},
	}
}

// FindPanel locates a panel window by WM_CLASS and title.
func (b *X11Backend) FindPanel(class, title string) (WindowID, error) {
	win, err := b.conn.FindWindow(class, title)
	if err != nil {
		return 0, err
	}
	return WindowID(win), nil
}

// WatchPanel subscribes to pointer crossings and geometry changes of a panel.
// The returned cancel stops delivery.
func (b *X11Backend) WatchPanel(id WindowID, h PanelHandlers) (cancel func(), err error) {
	win := xproto.Window(id)
	live := true
	guard := func(fn func()) func() {
		return func() {
			if fn == nil {
				return
			}
			b.post(func() {
				if live {
					fn()
				}
			})
		}
	}
	if err := b.conn.WatchPointer(win, guard(h.Enter), guard(h.Leave)); err != nil {
		return nil, fmt.Errorf("failed to watch panel %d: %w", id, err)
	}
	if err := b.conn.WatchClient(win, x11.ClientHandlers{
		Configure: guard(h.Moved),
		Destroy:   guard(h.Closed),
	}); err != nil {
		b.conn.Unwatch(win)
		return nil, fmt.Errorf("failed to watch panel %d: %w", id, err)
	}
	b.panels[win] = struct{}{}
	return func() {
		if !live {
			return
		}
		live = false
		delete(b.panels, win)
		b.conn.Unwatch(win)
		if _, ok := b.clients[win]; ok {
			// Keep client tracking alive for a managed panel.
			b.watchClient(win)
		}
	}, nil
}

// Dock binds the dock operations to one panel window.
func (b *X11Backend) Dock(id WindowID) DockInterface {
	return &x11Dock{b: b, win: xproto.Window(id)}
}

// CreateStrip maps an input-only hover strip. onEnter runs on the loop.
func (b *X11Backend) CreateStrip(geom Rect, onEnter func()) (Strip, error) {
	s, err := b.conn.CreateStrip(geom.X, geom.Y, geom.Width, geom.Height, func() {
		b.post(onEnter)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create reveal strip: %w", err)
	}
	return x11Strip{s}, nil
}

func (b *X11Backend) Compositing() bool { return b.conn.Compositing() }

// Scheme resolves a window's color scheme name for the tracker.
func (b *X11Backend) Scheme(id WindowID) string {
	return b.conn.ColorScheme(xproto.Window(id))
}

type x11Strip struct{ s *x11.Strip }

func (s x11Strip) Move(r Rect) { s.s.MoveResize(r.X, r.Y, r.Width, r.Height) }
func (s x11Strip) Destroy()    { s.s.Destroy() }

func (b *X11Backend) emit(ev Event) {
	ids := make([]int, 0, len(b.handlers))
	for id := range b.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := b.handlers[id]; ok {
			fn(ev)
		}
	}
}

func (b *X11Backend) onRootProperty(name string) {
	switch name {
	case "_NET_CLIENT_LIST":
		b.syncClients()
	case "_NET_ACTIVE_WINDOW":
		active, err := b.conn.ActiveWindow()
		if err != nil || active == b.active {
			return
		}
		b.active = active
		b.emit(Event{Kind: EventActiveWindowChanged, Window: WindowID(active)})
	case "_NET_SHOWING_DESKTOP":
		b.emit(Event{Kind: EventActiveWindowChanged, Window: WindowID(b.active)})
	case "_NET_CURRENT_DESKTOP":
		b.emit(Event{Kind: EventDesktopChanged})
	case "_NET_WORKAREA", "_NET_DESKTOP_GEOMETRY":
		if b.displaysChanged != nil {
			b.displaysChanged()
		}
	}
}

func (b *X11Backend) syncClients() {
	clients, err := b.conn.ClientList()
	if err != nil {
		b.logger.Debug("x11 backend: client list unavailable", "error", err)
		return
	}
	current := make(map[xproto.Window]struct{}, len(clients))
	for _, win := range clients {
		current[win] = struct{}{}
		if _, ok := b.clients[win]; ok {
			continue
		}
		if b.track(win) {
			b.emit(Event{Kind: EventWindowAdded, Window: WindowID(win)})
		}
	}
	for win := range b.clients {
		if _, ok := current[win]; !ok {
			b.untrack(win)
		}
	}
}

// track starts following an application window. Other panels and transient
// popups are skipped.
func (b *X11Backend) track(win xproto.Window) bool {
	typ := b.conn.Type(win)
	if typ.Dock || typ.Other {
		return false
	}
	b.clients[win] = struct{}{}
	if st, err := b.conn.State(win); err == nil && st.DemandsAttention {
		b.attention[win] = true
	}
	b.watchClient(win)
	return true
}

func (b *X11Backend) untrack(win xproto.Window) {
	if _, ok := b.clients[win]; !ok {
		return
	}
	delete(b.clients, win)
	if _, isPanel := b.panels[win]; !isPanel {
		b.conn.Unwatch(win)
	}
	if b.attention[win] {
		delete(b.attention, win)
		b.emit(Event{Kind: EventWindowInAttention, Window: WindowID(win), Attention: false})
	}
	if win == b.active {
		b.active = 0
	}
	b.emit(Event{Kind: EventWindowRemoved, Window: WindowID(win)})
}

func (b *X11Backend) watchClient(win xproto.Window) {
	err := b.conn.WatchClient(win, x11.ClientHandlers{
		Property: func(name string) {
			b.post(func() { b.onClientProperty(win, name) })
		},
		Configure: func() {
			b.post(func() { b.changed(win, FieldGeometry) })
		},
		Destroy: func() {
			b.post(func() { b.untrack(win) })
		},
	})
	if err != nil {
		b.logger.Debug("x11 backend: cannot watch window", "window", win, "error", err)
	}
}

func (b *X11Backend) onClientProperty(win xproto.Window, name string) {
	switch name {
	case "_NET_WM_STATE":
		b.changed(win, FieldState|FieldMinimized|FieldMaximized|FieldFullscreen)
		st, err := b.conn.State(win)
		if err != nil {
			return
		}
		if st.DemandsAttention != b.attention[win] {
			if st.DemandsAttention {
				b.attention[win] = true
			} else {
				delete(b.attention, win)
			}
			b.emit(Event{Kind: EventWindowInAttention, Window: WindowID(win), Attention: st.DemandsAttention})
		}
	case "_NET_WM_DESKTOP":
		b.changed(win, FieldDesktop)
	case "_NET_WM_WINDOW_TYPE":
		b.changed(win, FieldState)
	case "_NET_FRAME_EXTENTS":
		b.changed(win, FieldGeometry)
	case "_KDE_NET_WM_COLOR_SCHEME":
		b.changed(win, FieldState)
	}
}

func (b *X11Backend) changed(win xproto.Window, fields Field) {
	if _, ok := b.clients[win]; !ok {
		return
	}
	b.emit(Event{Kind: EventWindowChanged, Window: WindowID(win), Fields: fields})
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:     m.ID,
		Name:   m.Name,
		Bounds: Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
		Usable: Rect{X: m.Usable.X, Y: m.Usable.Y, Width: m.Usable.Width, Height: m.Usable.Height},
	}
}
