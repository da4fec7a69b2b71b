package x11

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
)

// _NET_WM_STATE actions.
const (
	StateRemove = 0
	StateAdd    = 1
	StateToggle = 2
)

// WindowState is the decoded _NET_WM_STATE of a window.
type WindowState struct {
	Hidden           bool
	MaximizedVert    bool
	MaximizedHorz    bool
	Fullscreen       bool
	Shaded           bool
	Above            bool
	Below            bool
	Sticky           bool
	DemandsAttention bool
}

// ParseState decodes _NET_WM_STATE atom names.
func ParseState(names []string) WindowState {
	var s WindowState
	for _, name := range names {
		switch name {
		case "_NET_WM_STATE_HIDDEN":
			s.Hidden = true
		case "_NET_WM_STATE_MAXIMIZED_VERT":
			s.MaximizedVert = true
		case "_NET_WM_STATE_MAXIMIZED_HORZ":
			s.MaximizedHorz = true
		case "_NET_WM_STATE_FULLSCREEN":
			s.Fullscreen = true
		case "_NET_WM_STATE_SHADED":
			s.Shaded = true
		case "_NET_WM_STATE_ABOVE":
			s.Above = true
		case "_NET_WM_STATE_BELOW":
			s.Below = true
		case "_NET_WM_STATE_STICKY":
			s.Sticky = true
		case "_NET_WM_STATE_DEMANDS_ATTENTION":
			s.DemandsAttention = true
		}
	}
	return s
}

// State returns the window's _NET_WM_STATE. A window without the property
// has the zero state.
func (c *Connection) State(windowID xproto.Window) (WindowState, error) {
	names, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		// Missing property is common for freshly mapped windows.
		if _, gerr := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply(); gerr != nil {
			return WindowState{}, fmt.Errorf("window %d is gone: %w", windowID, gerr)
		}
		return WindowState{}, nil
	}
	return ParseState(names), nil
}

// RequestState asks the window manager to add, remove or toggle up to two
// states on a window.
func (c *Connection) RequestState(windowID xproto.Window, action int, first string, second ...string) error {
	a1, err := c.Atom(first)
	if err != nil {
		return err
	}
	var a2 xproto.Atom
	if len(second) > 0 {
		if a2, err = c.Atom(second[0]); err != nil {
			return err
		}
	}
	const sourceIndication = 2 // pager/direct action
	return c.sendClientMessage(windowID, "_NET_WM_STATE", uint32(action), uint32(a1), uint32(a2), sourceIndication)
}

// WindowType flags derived from _NET_WM_WINDOW_TYPE.
type WindowType struct {
	Normal  bool
	Desktop bool
	Dock    bool
	Dialog  bool
	Other   bool
}

// ParseWindowType decodes _NET_WM_WINDOW_TYPE atom names. A window with no
// type is a normal window.
func ParseWindowType(names []string) WindowType {
	var t WindowType
	for _, name := range names {
		switch name {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			t.Normal = true
		case "_NET_WM_WINDOW_TYPE_DESKTOP":
			t.Desktop = true
		case "_NET_WM_WINDOW_TYPE_DOCK":
			t.Dock = true
		case "_NET_WM_WINDOW_TYPE_DIALOG":
			t.Dialog = true
		case "_NET_WM_WINDOW_TYPE_SPLASH", "_NET_WM_WINDOW_TYPE_NOTIFICATION",
			"_NET_WM_WINDOW_TYPE_TOOLTIP", "_NET_WM_WINDOW_TYPE_MENU",
			"_NET_WM_WINDOW_TYPE_DROPDOWN_MENU", "_NET_WM_WINDOW_TYPE_POPUP_MENU":
			t.Other = true
		}
	}
	if len(names) == 0 {
		t.Normal = true
	}
	return t
}

// Type returns the window's decoded type. Errors yield a normal window.
func (c *Connection) Type(windowID xproto.Window) WindowType {
	names, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return WindowType{Normal: true}
	}
	return ParseWindowType(names)
}

// SetDockType sets _NET_WM_WINDOW_TYPE to DOCK, or back to NORMAL.
func (c *Connection) SetDockType(windowID xproto.Window, dock bool) error {
	t := "_NET_WM_WINDOW_TYPE_NORMAL"
	if dock {
		t = "_NET_WM_WINDOW_TYPE_DOCK"
	}
	return ewmh.WmWindowTypeSet(c.XUtil, windowID, []string{t})
}

// Geometry returns the window's root-relative rectangle including frame
// decorations when the window manager publishes _NET_FRAME_EXTENTS.
func (c *Connection) Geometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	x, y = int(translate.DstX), int(translate.DstY)
	width, height = int(geom.Width), int(geom.Height)

	left, right, top, bottom := c.FrameExtents(windowID)
	return x - left, y - top, width + left + right, height + top + bottom, nil
}

// FrameExtents returns the window decoration sizes (zero if unavailable)
func (c *Connection) FrameExtents(windowID xproto.Window) (left, right, top, bottom int) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return 0, 0, 0, 0
	}
	return int(extents.Left), int(extents.Right), int(extents.Top), int(extents.Bottom)
}

// ActiveWindow returns _NET_ACTIVE_WINDOW (0 if none).
func (c *Connection) ActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// ClientList returns _NET_CLIENT_LIST.
func (c *Connection) ClientList() ([]xproto.Window, error) {
	return ewmh.ClientListGet(c.XUtil)
}

// StackingOrder returns managed windows bottom to top.
func (c *Connection) StackingOrder() ([]xproto.Window, error) {
	return ewmh.ClientListStackingGet(c.XUtil)
}

// Restack raises or lowers a window directly, for windows the window
// manager does not restack on state requests.
func (c *Connection) Restack(windowID xproto.Window, above bool) {
	mode := uint32(xproto.StackModeBelow)
	if above {
		mode = xproto.StackModeAbove
	}
	xproto.ConfigureWindow(c.XUtil.Conn(), windowID, xproto.ConfigWindowStackMode, []uint32{mode})
}

// Pointer returns the pointer position in root coordinates.
func (c *Connection) Pointer() (x, y int, err error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, err
	}
	return int(reply.RootX), int(reply.RootY), nil
}

// ColorScheme returns the name of the color scheme KWin applied to the
// window through _KDE_NET_WM_COLOR_SCHEME, or "" when none is set.
func (c *Connection) ColorScheme(windowID xproto.Window) string {
	raw, err := xprop.PropValStr(xprop.GetProperty(c.XUtil, windowID, "_KDE_NET_WM_COLOR_SCHEME"))
	if err != nil {
		return ""
	}
	return SchemeName(raw)
}

// SchemeName reduces a color scheme file path to the scheme's name.
func SchemeName(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return strings.TrimSuffix(filepath.Base(raw), ".colors")
}
