package platform

import (
	"image"

	"github.com/1broseidon/tagwm/internal/hotkeys"
	"github.com/1broseidon/tagwm/internal/tiling"
)

// Window is a server-assigned window identifier.
type Window uint32

// Output is a physical display.
type Output struct {
	Name string
	Rect tiling.Rect
}

// WindowType is the EWMH window type relevant to management decisions.
type WindowType int

const (
	TypeNormal WindowType = iota
	TypeDialog
	TypeUtility
	TypeSplash
	TypeDock
	TypeDesktop
	TypeNotification
)

// WindowInfo is what the manage filter needs to know about a window.
type WindowInfo struct {
	Window           Window
	OverrideRedirect bool
	Viewable         bool
	Type             WindowType
	Transient        bool // WM_TRANSIENT_FOR is set
	FixedSize        bool // min size equals max size
	Fullscreen       bool // _NET_WM_STATE_FULLSCREEN already set
	Geometry         tiling.Rect
	Desktop          int // _NET_WM_DESKTOP, -1 when absent or sticky
	Title            string
}

// DesktopState is the EWMH view of the manager state published on the root
// window after every change.
type DesktopState struct {
	Names    []string
	Current  int
	Clients  []Window // registration order
	Active   Window
	Desktops map[Window]int
}

// Backend abstracts the window system. All methods are called from the
// event loop goroutine; Events may be read concurrently.
type Backend interface {
	Events() <-chan Event

	Outputs() ([]Output, error)
	Screen() tiling.Rect
	Pointer() (x, y int, ok bool)
	Windows() ([]Window, error)
	Inspect(w Window) (WindowInfo, error)
	Title(w Window) string
	Icon(w Window, size int) image.Image // nil when the window has none
	Status() string

	Manage(w Window) error
	Map(w Window) error // maps without managing
	Configure(w Window, r tiling.Rect, border int) error
	NotifyGeometry(w Window, r tiling.Rect, border int) error
	Passthrough(req ConfigureRequest) error
	SetBorder(w Window, pixel uint32) error
	Focus(w Window) error // zero focuses the root
	Restack(bottomToTop []Window) error
	// Settle waits until the server has processed every request sent so
	// far and returns the serial of the last one. Crossing events with an
	// earlier serial were caused by those requests.
	Settle() (Serial, error)
	SetFullscreen(w Window, on bool) error
	Close(w Window) error

	GrabKeys(chords []hotkeys.Chord) error
	RefreshKeymap()
	Publish(state DesktopState) error
	DrawBar(id int, at tiling.Rect, img *image.RGBA) error
	HideBar(id int) error

	Shutdown()
}
