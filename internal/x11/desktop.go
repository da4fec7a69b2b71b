package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// AllDesktops is the _NET_WM_DESKTOP value of sticky windows.
const AllDesktops = 0xFFFFFFFF

// CurrentDesktop returns the current virtual desktop number (0-indexed).
// Uses _NET_CURRENT_DESKTOP atom.
func (c *Connection) CurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// WindowDesktop returns the desktop number a window is on.
// Returns -1 for "sticky" windows (visible on all desktops).
func (c *Connection) WindowDesktop(windowID xproto.Window) (int, error) {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, windowID)
	if err != nil {
		return 0, fmt.Errorf("failed to get window desktop: %w", err)
	}
	if desktop == AllDesktops {
		return -1, nil
	}
	return int(desktop), nil
}

// ShowingDesktop reports the _NET_SHOWING_DESKTOP mode.
func (c *Connection) ShowingDesktop() bool {
	on, err := ewmh.ShowingDesktopGet(c.XUtil)
	return err == nil && on
}

// SetSticky puts a window on all desktops by sending a _NET_WM_DESKTOP
// client message per EWMH spec.
func (c *Connection) SetSticky(windowID xproto.Window) error {
	const sourceIndication = 2 // pager/direct action
	return c.sendClientMessage(windowID, "_NET_WM_DESKTOP", AllDesktops, sourceIndication)
}

// WindowClass returns the WM_CLASS class and instance of a window.
func (c *Connection) WindowClass(windowID xproto.Window) (class, instance string) {
	wc, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil || wc == nil {
		return "", ""
	}
	return wc.Class, wc.Instance
}

// WindowName returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) WindowName(windowID xproto.Window) string {
	if name, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil && name != "" {
		return name
	}
	name, _ := icccm.WmNameGet(c.XUtil, windowID)
	return name
}

// FindWindow searches the EWMH client list, then the root's direct
// children, for the first window whose WM_CLASS class or instance equals
// class (case-insensitive) and whose title contains title. Empty criteria
// match everything. Unmanaged bars only show up in the second pass.
func (c *Connection) FindWindow(class, title string) (xproto.Window, error) {
	if class == "" && title == "" {
		return 0, fmt.Errorf("no match criteria given")
	}
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get client list: %w", err)
	}
	if tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		clients = append(clients, tree.Children...)
	}
	for _, win := range clients {
		cls, inst := c.WindowClass(win)
		if matchWindow(cls, inst, c.WindowName(win), class, title) {
			return win, nil
		}
	}
	return 0, fmt.Errorf("no window matches class %q title %q", class, title)
}

func matchWindow(cls, inst, name, class, title string) bool {
	if class != "" && !strings.EqualFold(cls, class) && !strings.EqualFold(inst, class) {
		return false
	}
	return title == "" || strings.Contains(name, title)
}
