package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const stateFullscreen = "_NET_WM_STATE_FULLSCREEN"

var supported = []string{
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_WM_NAME",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_DESKTOP_NAMES",
	"_NET_CURRENT_DESKTOP",
	"_NET_CLIENT_LIST",
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_DESKTOP",
	"_NET_WM_STATE",
	stateFullscreen,
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_WINDOW_TYPE_DIALOG",
	"_NET_WM_WINDOW_TYPE_UTILITY",
	"_NET_WM_WINDOW_TYPE_DOCK",
}

// Announce creates the _NET_SUPPORTING_WM_CHECK window and advertises the
// supported hints. It returns the check window so it can be destroyed on exit.
func (c *Connection) Announce(name string) (xproto.Window, error) {
	win, err := xwindow.Create(c.XUtil, c.Root)
	if err != nil {
		return 0, fmt.Errorf("failed to create check window: %w", err)
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.Root, win.Id); err != nil {
		return win.Id, err
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, win.Id, win.Id); err != nil {
		return win.Id, err
	}
	if err := ewmh.WmNameSet(c.XUtil, win.Id, name); err != nil {
		return win.Id, err
	}
	if err := ewmh.SupportedSet(c.XUtil, supported); err != nil {
		return win.Id, err
	}
	return win.Id, nil
}

// SetDesktops publishes the tag labels as EWMH desktops.
func (c *Connection) SetDesktops(names []string, current int) error {
	if err := ewmh.NumberOfDesktopsSet(c.XUtil, uint(len(names))); err != nil {
		return err
	}
	if err := ewmh.DesktopNamesSet(c.XUtil, names); err != nil {
		return err
	}
	return ewmh.CurrentDesktopSet(c.XUtil, uint(current))
}

func (c *Connection) SetClientList(clients []xproto.Window) error {
	return ewmh.ClientListSet(c.XUtil, clients)
}

// SetActiveWindow records win as active; zero clears it.
func (c *Connection) SetActiveWindow(win xproto.Window) error {
	return ewmh.ActiveWindowSet(c.XUtil, win)
}

func (c *Connection) SetWindowDesktop(win xproto.Window, desktop int) error {
	return ewmh.WmDesktopSet(c.XUtil, win, uint(desktop))
}

// SetFullscreenState adds or removes _NET_WM_STATE_FULLSCREEN, keeping the
// window's other states.
func (c *Connection) SetFullscreenState(win xproto.Window, on bool) error {
	states, _ := ewmh.WmStateGet(c.XUtil, win)
	out := make([]string, 0, len(states)+1)
	for _, s := range states {
		if s != stateFullscreen {
			out = append(out, s)
		}
	}
	if on {
		out = append(out, stateFullscreen)
	}
	return ewmh.WmStateSet(c.XUtil, win, out)
}

// IsFullscreenAtom reports whether atom names the fullscreen state. Used
// to decode _NET_WM_STATE client messages.
func (c *Connection) IsFullscreenAtom(atom uint32) bool {
	a, err := c.Atom(stateFullscreen)
	return err == nil && uint32(a) == atom
}

// Forget clears the EWMH root properties owned by the manager.
func (c *Connection) Forget(check xproto.Window) {
	for _, name := range []string{"_NET_SUPPORTING_WM_CHECK", "_NET_CLIENT_LIST", "_NET_ACTIVE_WINDOW"} {
		if a, err := c.Atom(name); err == nil {
			xproto.DeleteProperty(c.Conn(), c.Root, a)
		}
	}
	if check != 0 {
		xproto.DestroyWindow(c.Conn(), check)
	}
}
