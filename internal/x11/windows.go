package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// Attributes is the raw window state the manage filter looks at.
type Attributes struct {
	OverrideRedirect bool
	Viewable         bool
	Types            []string // _NET_WM_WINDOW_TYPE
	States           []string // _NET_WM_STATE
	Transient        bool
	FixedSize        bool
	X, Y             int
	Width, Height    int
	Desktop          int
}

// Inspect reads attributes, geometry and hints of win. Only a failure to
// read the core attributes is an error; missing hints are normal.
func (c *Connection) Inspect(win xproto.Window) (Attributes, error) {
	attrs, err := xproto.GetWindowAttributes(c.Conn(), win).Reply()
	if err != nil {
		return Attributes{}, fmt.Errorf("failed to get attributes of window %d: %w", win, err)
	}
	out := Attributes{
		OverrideRedirect: attrs.OverrideRedirect,
		Viewable:         attrs.MapState == xproto.MapStateViewable,
		Desktop:          -1,
	}

	if geom, err := xproto.GetGeometry(c.Conn(), xproto.Drawable(win)).Reply(); err == nil {
		out.X, out.Y = int(geom.X), int(geom.Y)
		out.Width, out.Height = int(geom.Width), int(geom.Height)
	}
	if types, err := ewmh.WmWindowTypeGet(c.XUtil, win); err == nil {
		out.Types = types
	}
	if states, err := ewmh.WmStateGet(c.XUtil, win); err == nil {
		out.States = states
	}
	if parent, err := icccm.WmTransientForGet(c.XUtil, win); err == nil && parent != 0 {
		out.Transient = true
	}
	if hints, err := icccm.WmNormalHintsGet(c.XUtil, win); err == nil {
		const both = icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
		if hints.Flags&both == both && hints.MinWidth > 0 && hints.MinHeight > 0 &&
			hints.MinWidth == hints.MaxWidth && hints.MinHeight == hints.MaxHeight {
			out.FixedSize = true
		}
	}
	// 0xFFFFFFFF means the window is on all desktops (sticky)
	if desktop, err := ewmh.WmDesktopGet(c.XUtil, win); err == nil && desktop != 0xFFFFFFFF {
		out.Desktop = int(desktop)
	}
	return out, nil
}

// Children lists the top-level windows in stacking order. The server is
// grabbed so the tree cannot change while it is read.
func (c *Connection) Children() ([]xproto.Window, error) {
	if err := xproto.GrabServerChecked(c.Conn()).Check(); err != nil {
		return nil, fmt.Errorf("failed to grab server: %w", err)
	}
	defer xproto.UngrabServer(c.Conn())

	tree, err := xproto.QueryTree(c.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query tree: %w", err)
	}
	return tree.Children, nil
}

// Title returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) Title(win xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, win)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, win)
	if err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// Status returns the root window name, where status producers such as
// xsetroot write their text.
func (c *Connection) Status() string {
	status, err := icccm.WmNameGet(c.XUtil, c.Root)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(status)
}

// Manage subscribes to the client's events, marks it as normal per ICCCM
// and maps it.
func (c *Connection) Manage(win xproto.Window) error {
	mask := uint32(xproto.EventMaskEnterWindow |
		xproto.EventMaskPropertyChange |
		xproto.EventMaskStructureNotify)
	if err := xproto.ChangeWindowAttributesChecked(c.Conn(), win, xproto.CwEventMask, []uint32{mask}).Check(); err != nil {
		return err
	}
	if err := icccm.WmStateSet(c.XUtil, win, &icccm.WmState{State: icccm.StateNormal}); err != nil {
		return err
	}
	return xproto.MapWindowChecked(c.Conn(), win).Check()
}

// Map maps a window the manager leaves unmanaged, such as a dock.
func (c *Connection) Map(win xproto.Window) error {
	return xproto.MapWindowChecked(c.Conn(), win).Check()
}

// MoveResize places the window's outer corner at x, y with the given inner
// size and border.
func (c *Connection) MoveResize(win xproto.Window, x, y, width, height, border int) {
	xproto.ConfigureWindow(c.Conn(), win,
		xproto.ConfigWindowX|xproto.ConfigWindowY|
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|
			xproto.ConfigWindowBorderWidth,
		[]uint32{uint32(int32(x)), uint32(int32(y)), uint32(width), uint32(height), uint32(border)})
}

// ConfigureRaw forwards a configure request unchanged. values must follow
// the bit order of mask.
func (c *Connection) ConfigureRaw(win xproto.Window, mask uint16, values []uint32) {
	xproto.ConfigureWindow(c.Conn(), win, mask, values)
}

// SendConfigureNotify tells a client its geometry without changing it, so
// a refused configure request still gets an answer.
func (c *Connection) SendConfigureNotify(win xproto.Window, x, y, width, height, border int) error {
	ev := xproto.ConfigureNotifyEvent{
		Event:            win,
		Window:           win,
		AboveSibling:     0,
		X:                int16(x),
		Y:                int16(y),
		Width:            uint16(width),
		Height:           uint16(height),
		BorderWidth:      uint16(border),
		OverrideRedirect: false,
	}
	return xproto.SendEventChecked(c.Conn(), false, win,
		xproto.EventMaskStructureNotify, string(ev.Bytes())).Check()
}

func (c *Connection) SetBorderColor(win xproto.Window, pixel uint32) {
	xproto.ChangeWindowAttributes(c.Conn(), win, xproto.CwBorderPixel, []uint32{pixel})
}

// Focus gives input focus to win, or back to the root when win is zero.
// Clients that take part in WM_TAKE_FOCUS also get the protocol message.
func (c *Connection) Focus(win xproto.Window) error {
	if win == 0 {
		return xproto.SetInputFocusChecked(c.Conn(), xproto.InputFocusPointerRoot,
			c.Root, xproto.TimeCurrentTime).Check()
	}

	acceptsInput := true
	if hints, err := icccm.WmHintsGet(c.XUtil, win); err == nil && hints.Flags&icccm.HintInput != 0 {
		acceptsInput = hints.Input == 1
	}
	if acceptsInput {
		if err := xproto.SetInputFocusChecked(c.Conn(), xproto.InputFocusPointerRoot,
			win, xproto.TimeCurrentTime).Check(); err != nil {
			return err
		}
	}
	if c.supportsProtocol(win, "WM_TAKE_FOCUS") {
		return c.sendProtocol(win, "WM_TAKE_FOCUS")
	}
	return nil
}

// Raise stacks the windows bottom to top.
func (c *Connection) Raise(bottomToTop []xproto.Window) {
	for _, win := range bottomToTop {
		xproto.ConfigureWindow(c.Conn(), win, xproto.ConfigWindowStackMode,
			[]uint32{xproto.StackModeAbove})
	}
}

// Sync waits for a round trip and returns the sequence number of the
// request used for it. Every event caused by earlier requests carries a
// smaller number.
func (c *Connection) Sync() (uint16, error) {
	cookie := xproto.GetInputFocus(c.Conn())
	if _, err := cookie.Reply(); err != nil {
		return 0, err
	}
	return cookie.Sequence, nil
}

// CloseWindow requests graceful close via WM_DELETE_WINDOW and kills the
// client when it does not take part in that protocol.
func (c *Connection) CloseWindow(win xproto.Window) error {
	if c.supportsProtocol(win, "WM_DELETE_WINDOW") {
		return c.sendProtocol(win, "WM_DELETE_WINDOW")
	}
	return xproto.KillClientChecked(c.Conn(), uint32(win)).Check()
}

func (c *Connection) supportsProtocol(win xproto.Window, name string) bool {
	protocols, err := icccm.WmProtocolsGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, p := range protocols {
		if p == name {
			return true
		}
	}
	return false
}

func (c *Connection) sendProtocol(win xproto.Window, name string) error {
	protocol, err := c.Atom(name)
	if err != nil {
		return err
	}
	protocols, err := c.Atom("WM_PROTOCOLS")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   protocols,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(protocol), xproto.TimeCurrentTime, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.Conn(),
		false,
		win,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}
