package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Strip is an invisible input-only window that reports pointer entry.
type Strip struct {
	conn   *Connection
	Window xproto.Window
}

// CreateStrip maps an override-redirect InputOnly window at the given
// geometry and calls onEnter from the X event goroutine whenever the pointer
// enters it.
func (c *Connection) CreateStrip(x, y, width, height int, onEnter func()) (*Strip, error) {
	conn := c.XUtil.Conn()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}

	// Value list order follows the bit positions of the mask (low to high):
	// CwOverrideRedirect comes before CwEventMask.
	err = xproto.CreateWindowChecked(
		conn,
		0, // depth: copy from parent (required for InputOnly)
		wid,
		c.Root,
		int16(x), int16(y),
		uint16(max(width, 1)), uint16(max(height, 1)),
		0,
		xproto.WindowClassInputOnly,
		0, // visual: copy from parent
		xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{1, xproto.EventMaskEnterWindow},
	).Check()
	if err != nil {
		return nil, err
	}

	xevent.EnterNotifyFun(func(_ *xgbutil.XUtil, _ xevent.EnterNotifyEvent) {
		onEnter()
	}).Connect(c.XUtil, wid)

	xproto.MapWindow(conn, wid)
	xproto.ConfigureWindow(conn, wid, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})

	return &Strip{conn: c, Window: wid}, nil
}

// MoveResize repositions the strip and keeps it on top.
func (s *Strip) MoveResize(x, y, width, height int) {
	xproto.ConfigureWindow(
		s.conn.XUtil.Conn(),
		s.Window,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(x),
			uint32(y),
			uint32(max(width, 1)),
			uint32(max(height, 1)),
			xproto.StackModeAbove,
		},
	)
}

// Destroy detaches the enter handler and destroys the window.
func (s *Strip) Destroy() {
	if s.Window == 0 {
		return
	}
	xevent.Detach(s.conn.XUtil, s.Window)
	xproto.DestroyWindow(s.conn.XUtil.Conn(), s.Window)
	s.Window = 0
}
