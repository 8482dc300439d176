package platform

import (
	"github.com/1broseidon/tagwm/internal/hotkeys"
	"github.com/1broseidon/tagwm/internal/tiling"
)

// Event is a server notification the manager reacts to. The set of
// variants is closed: only types in this file implement it.
type Event interface {
	isEvent()
}

// MapRequest asks to show a window that is not yet visible.
type MapRequest struct {
	Window Window
}

// Unmap reports a window that was withdrawn or destroyed.
type Unmap struct {
	Window    Window
	Destroyed bool
}

// ConfigMask says which fields of a ConfigureRequest were set by the client.
// Bit values match the X core protocol.
type ConfigMask uint16

const (
	ConfigX ConfigMask = 1 << iota
	ConfigY
	ConfigWidth
	ConfigHeight
	ConfigBorder
	ConfigSibling
	ConfigStackMode
)

// ConfigureRequest is a client asking for new geometry.
type ConfigureRequest struct {
	Window    Window
	Mask      ConfigMask
	Geometry  tiling.Rect
	Border    int
	Sibling   Window
	StackMode uint8
}

// Serial numbers requests on the display connection. It wraps at 16 bits,
// so compare with Before.
type Serial uint16

// Before reports whether s was issued earlier than o.
func (s Serial) Before(o Serial) bool {
	return int16(s-o) < 0
}

// PointerEnter reports the pointer crossing into a window, at root
// coordinates X, Y. Serial is the last request the server had processed
// when the crossing happened.
type PointerEnter struct {
	Window Window
	X, Y   int
	Serial Serial
}

// KeyPress carries a grabbed chord.
type KeyPress struct {
	Chord hotkeys.Chord
}

// OutputChange reports a change of the monitor topology.
type OutputChange struct{}

// KeymapChange reports a new keyboard or modifier mapping; key grabs must
// be renewed.
type KeymapChange struct{}

// BarExposed asks for the bar of monitor ID to be painted again.
type BarExposed struct {
	ID int
}

type PropertyKind int

const (
	PropertyTitle  PropertyKind = iota // window name changed
	PropertyStatus                     // root window name changed
	PropertyHints                      // size or transient hints changed
	PropertyIcon                       // _NET_WM_ICON changed
)

// PropertyChange reports a property update. Window is zero for PropertyStatus.
type PropertyChange struct {
	Window Window
	Kind   PropertyKind
}

type StateMode int

const (
	StateRemove StateMode = iota
	StateAdd
	StateToggle
)

// FullscreenRequest is an EWMH _NET_WM_STATE request for the fullscreen state.
type FullscreenRequest struct {
	Window Window
	Mode   StateMode
}

func (MapRequest) isEvent()        {}
func (Unmap) isEvent()             {}
func (ConfigureRequest) isEvent()  {}
func (PointerEnter) isEvent()      {}
func (KeyPress) isEvent()          {}
func (OutputChange) isEvent()      {}
func (KeymapChange) isEvent()      {}
func (BarExposed) isEvent()        {}
func (PropertyChange) isEvent()    {}
func (FullscreenRequest) isEvent() {}
