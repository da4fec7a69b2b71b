package platform

import (
	"fmt"
	"strings"
)

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates. Right and Bottom
// are exclusive.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Degenerate reports the 0x0-at-origin geometry left behind by windows that
// vanished without a removal notification.
func (r Rect) Degenerate() bool { return r == Rect{} }

// Center returns the center point of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// ContainsRect reports whether o lies fully inside r.
func (r Rect) ContainsRect(o Rect) bool {
	if o.Empty() {
		return false
	}
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Intersect returns the overlapping area of r and o (zero Rect if none).
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.Right(), o.Right())
	y2 := min(r.Bottom(), o.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Intersects reports axis-aligned overlap with a non-zero area.
func (r Rect) Intersects(o Rect) bool {
	return !r.Intersect(o).Empty()
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Edge is the screen edge a panel is anchored to.
type Edge int

const (
	EdgeBottom Edge = iota
	EdgeTop
	EdgeLeft
	EdgeRight
)

func (e Edge) String() string {
	switch e {
	case EdgeBottom:
		return "bottom"
	case EdgeTop:
		return "top"
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	default:
		return fmt.Sprintf("edge(%d)", int(e))
	}
}

// Horizontal reports whether panels on this edge span the screen width.
func (e Edge) Horizontal() bool { return e == EdgeBottom || e == EdgeTop }

// ParseEdge parses a location name as used in the config file.
func ParseEdge(s string) (Edge, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bottom", "":
		return EdgeBottom, nil
	case "top":
		return EdgeTop, nil
	case "left":
		return EdgeLeft, nil
	case "right":
		return EdgeRight, nil
	default:
		return EdgeBottom, fmt.Errorf("unknown edge %q", s)
	}
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// WindowInfo is a snapshot of one top-level window's state.
type WindowInfo struct {
	ID                WindowID
	Valid             bool
	Active            bool
	Minimized         bool
	Maximized         bool
	MaxVertical       bool
	MaxHorizontal     bool
	Fullscreen        bool
	Shaded            bool
	KeepAbove         bool
	OnCurrentDesktop  bool
	OnCurrentActivity bool
	Desktop           bool
	Dialog            bool
	Geometry          Rect
}

// Capabilities advertises optional backend behaviour.
type Capabilities struct {
	// PointerPolling means the backend can answer PointerInside and the hide
	// timer should confirm the pointer left before lowering.
	PointerPolling bool
	// DockTypeRaise means dock-typed windows can be restacked temporarily
	// without remapping.
	DockTypeRaise bool
}

// WindowSystem is the window-manager facing contract the tracker consumes.
type WindowSystem interface {
	Windows() []WindowID
	RequestInfo(id WindowID) WindowInfo
	ActiveWindow() WindowID
	Displays() ([]Display, error)
	Subscribe(fn EventHandler) (cancel func())
	Capabilities() Capabilities
}

// DockInterface is bound to one panel window. Queries answer false when the
// backend cannot determine the answer; commands are fire-and-forget.
type DockInterface interface {
	DesktopIsActive() bool
	ActiveIsDialog() bool
	ActiveIsMaximized() bool
	DockIntersectsActiveWindow() bool
	DockIsCovered(totally bool) bool
	DockIsCovering() bool
	DockIsOnTop() bool
	DockInNormalState() bool
	DockIsBelow() bool

	SetDockDefaultFlags(dock bool)
	SetDockToAllDesktops()
	ShowDockAsNormal()
	ShowDockOnBottom()
	ShowDockOnTop()

	Geometry() Rect
	PointerInside() bool
}

// Strip is an input-only window used as a hover target while a panel is
// hidden.
type Strip interface {
	Move(r Rect)
	Destroy()
}

// StripFactory creates hover strips. onEnter runs on the control loop.
type StripFactory interface {
	CreateStrip(geom Rect, onEnter func()) (Strip, error)
	Compositing() bool
}

// PanelHandlers are called on the control loop for events on a panel window.
type PanelHandlers struct {
	Enter  func()
	Leave  func()
	Moved  func()
	Closed func()
}

// PanelHost finds panel windows and binds dock operations to them.
type PanelHost interface {
	FindPanel(class, title string) (WindowID, error)
	Dock(id WindowID) DockInterface
	WatchPanel(id WindowID, h PanelHandlers) (cancel func(), err error)
}
