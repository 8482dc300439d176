package x11

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
)

// ErrOtherWM means another client already holds SubstructureRedirect on
// the root window.
var ErrOtherWM = errors.New("another window manager is already running")

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	randrReady bool

	atomMu sync.Mutex
	atoms  map[string]xproto.Atom
}

// NewConnection establishes a connection to the X11 server and initializes required extensions
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	// Keycode and modifier maps for key grabs.
	keybind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
		atoms: make(map[string]xproto.Atom),
	}, nil
}

// Atom interns name, caching the result for the connection lifetime.
func (c *Connection) Atom(name string) (xproto.Atom, error) {
	c.atomMu.Lock()
	defer c.atomMu.Unlock()
	if a, ok := c.atoms[name]; ok {
		return a, nil
	}
	reply, err := xproto.InternAtom(c.Conn(), false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	c.atoms[name] = reply.Atom
	return reply.Atom, nil
}

func (c *Connection) Conn() *xgb.Conn {
	return c.XUtil.Conn()
}

// TakeOver registers as the window manager by selecting redirection on the
// root window. Only one client may do so.
func (c *Connection) TakeOver() error {
	mask := uint32(xproto.EventMaskSubstructureRedirect |
		xproto.EventMaskSubstructureNotify |
		xproto.EventMaskStructureNotify |
		xproto.EventMaskPropertyChange |
		xproto.EventMaskEnterWindow)
	err := xproto.ChangeWindowAttributesChecked(c.Conn(), c.Root, xproto.CwEventMask, []uint32{mask}).Check()
	if err != nil {
		if _, ok := err.(xproto.AccessError); ok {
			return ErrOtherWM
		}
		return fmt.Errorf("failed to select root events: %w", err)
	}
	return nil
}

// WaitForEvent blocks for the next event or asynchronous error. Both
// results are nil once the connection is closed.
func (c *Connection) WaitForEvent() (xgb.Event, xgb.Error) {
	return c.Conn().WaitForEvent()
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
