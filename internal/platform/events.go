package platform

import "strings"

// EventKind identifies a window-system notification.
type EventKind int

const (
	EventWindowAdded EventKind = iota
	EventWindowRemoved
	EventWindowChanged
	EventActiveWindowChanged
	EventWindowInAttention
	EventDesktopChanged
	EventActivityChanged
)

func (k EventKind) String() string {
	switch k {
	case EventWindowAdded:
		return "window-added"
	case EventWindowRemoved:
		return "window-removed"
	case EventWindowChanged:
		return "window-changed"
	case EventActiveWindowChanged:
		return "active-window-changed"
	case EventWindowInAttention:
		return "window-in-attention"
	case EventDesktopChanged:
		return "desktop-changed"
	case EventActivityChanged:
		return "activity-changed"
	default:
		return "unknown"
	}
}

// Field is a bit set naming which properties of a window changed.
type Field uint16

const (
	FieldActive Field = 1 << iota
	FieldMinimized
	FieldMaximized
	FieldFullscreen
	FieldGeometry
	FieldDesktop
	FieldState

	FieldAll = FieldActive | FieldMinimized | FieldMaximized | FieldFullscreen |
		FieldGeometry | FieldDesktop | FieldState
)

// Has reports whether any bit of f2 is set in f.
func (f Field) Has(f2 Field) bool { return f&f2 != 0 }

func (f Field) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	names := []struct {
		bit  Field
		name string
	}{
		{FieldActive, "active"},
		{FieldMinimized, "minimized"},
		{FieldMaximized, "maximized"},
		{FieldFullscreen, "fullscreen"},
		{FieldGeometry, "geometry"},
		{FieldDesktop, "desktop"},
		{FieldState, "state"},
	}
	for _, n := range names {
		if f.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Event is delivered to subscribers on the control loop.
type Event struct {
	Kind      EventKind
	Window    WindowID
	Fields    Field
	Attention bool
}

// EventHandler receives window-system events.
type EventHandler func(Event)
