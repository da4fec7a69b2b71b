package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	atomMu sync.Mutex
	atoms  map[string]xproto.Atom

	maskMu sync.Mutex
	masks  map[xproto.Window]int
}

// NewConnection establishes a connection to the X11 server
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
		atoms: make(map[string]xproto.Atom),
		masks: make(map[xproto.Window]int),
	}, nil
}

// EventLoop starts the main X11 event loop (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit makes EventLoop return after the current event.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// ListenRoot selects property and substructure events on the root window so
// client list, active window and desktop changes are delivered.
func (c *Connection) ListenRoot() error {
	root := xwindow.New(c.XUtil, c.Root)
	if err := root.Listen(xproto.EventMaskPropertyChange, xproto.EventMaskSubstructureNotify); err != nil {
		return fmt.Errorf("failed to select root events: %w", err)
	}
	return nil
}

// Listen adds masks to the events selected on a client window. Selections
// accumulate per window until Unwatch. Errors are returned when the window is
// already gone.
func (c *Connection) Listen(windowID xproto.Window, masks ...int) error {
	c.maskMu.Lock()
	merged := c.masks[windowID]
	for _, m := range masks {
		merged |= m
	}
	c.masks[windowID] = merged
	c.maskMu.Unlock()
	return xwindow.New(c.XUtil, windowID).Listen(merged)
}

func (c *Connection) forgetMasks(windowID xproto.Window) {
	c.maskMu.Lock()
	delete(c.masks, windowID)
	c.maskMu.Unlock()
}

// Atom interns name once and caches the result.
func (c *Connection) Atom(name string) (xproto.Atom, error) {
	c.atomMu.Lock()
	defer c.atomMu.Unlock()
	if a, ok := c.atoms[name]; ok {
		return a, nil
	}
	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	c.atoms[name] = reply.Atom
	return reply.Atom, nil
}

// AtomName resolves an atom to its name.
func (c *Connection) AtomName(atom xproto.Atom) (string, error) {
	reply, err := xproto.GetAtomName(c.XUtil.Conn(), atom).Reply()
	if err != nil {
		return "", err
	}
	return reply.Name, nil
}

// Compositing reports whether a compositing manager owns the
// _NET_WM_CM_Sn selection for the default screen.
func (c *Connection) Compositing() bool {
	name := fmt.Sprintf("_NET_WM_CM_S%d", c.XUtil.Conn().DefaultScreen)
	atom, err := c.Atom(name)
	if err != nil {
		return false
	}
	reply, err := xproto.GetSelectionOwner(c.XUtil.Conn(), atom).Reply()
	if err != nil {
		return false
	}
	return reply.Owner != xproto.WindowNone
}

// sendClientMessage delivers an EWMH client message to the root window.
// The message is built manually because some xgbutil ewmh request helpers
// panic on this library version (uint vs int type assertion).
func (c *Connection) sendClientMessage(windowID xproto.Window, atomName string, data ...uint32) error {
	atom, err := c.Atom(atomName)
	if err != nil {
		return err
	}
	payload := make([]uint32, 5)
	copy(payload, data)

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New(payload),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}
