package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// OnRootProperty calls fn with the atom name of every property change on the
// root window. ListenRoot must have been called.
func (c *Connection) OnRootProperty(fn func(name string)) {
	xevent.PropertyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := c.AtomName(ev.Atom)
		if err != nil {
			return
		}
		fn(name)
	}).Connect(c.XUtil, c.Root)
}

// ClientHandlers are the callbacks WatchClient installs. Nil entries are
// skipped. All run on the X event goroutine.
type ClientHandlers struct {
	Property  func(name string)
	Configure func()
	Destroy   func()
}

// WatchClient selects property and structure events on a managed window.
func (c *Connection) WatchClient(windowID xproto.Window, h ClientHandlers) error {
	if err := c.Listen(windowID, xproto.EventMaskPropertyChange, xproto.EventMaskStructureNotify); err != nil {
		return err
	}
	if h.Property != nil {
		xevent.PropertyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
			name, err := c.AtomName(ev.Atom)
			if err != nil {
				return
			}
			h.Property(name)
		}).Connect(c.XUtil, windowID)
	}
	if h.Configure != nil {
		xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, _ xevent.ConfigureNotifyEvent) {
			h.Configure()
		}).Connect(c.XUtil, windowID)
	}
	if h.Destroy != nil {
		xevent.DestroyNotifyFun(func(_ *xgbutil.XUtil, _ xevent.DestroyNotifyEvent) {
			h.Destroy()
		}).Connect(c.XUtil, windowID)
	}
	return nil
}

// WatchPointer reports the pointer entering and leaving windowID. Crossings
// between the window and its own children are not reported.
func (c *Connection) WatchPointer(windowID xproto.Window, onEnter, onLeave func()) error {
	if err := c.Listen(windowID, xproto.EventMaskEnterWindow, xproto.EventMaskLeaveWindow); err != nil {
		return err
	}
	xevent.EnterNotifyFun(func(_ *xgbutil.XUtil, ev xevent.EnterNotifyEvent) {
		if ev.Detail == xproto.NotifyDetailInferior {
			return
		}
		onEnter()
	}).Connect(c.XUtil, windowID)
	xevent.LeaveNotifyFun(func(_ *xgbutil.XUtil, ev xevent.LeaveNotifyEvent) {
		if ev.Detail == xproto.NotifyDetailInferior {
			return
		}
		onLeave()
	}).Connect(c.XUtil, windowID)
	return nil
}

// Unwatch drops every handler attached to windowID.
func (c *Connection) Unwatch(windowID xproto.Window) {
	xevent.Detach(c.XUtil, windowID)
	c.forgetMasks(windowID)
}
