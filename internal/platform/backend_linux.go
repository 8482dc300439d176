//go:build linux

package platform

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/tagwm/internal/hotkeys"
	"github.com/1broseidon/tagwm/internal/tiling"
	"github.com/1broseidon/tagwm/internal/x11"
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend drives an X server through an x11.Connection. A reader
// goroutine turns protocol events into Events; everything else runs on the
// caller's goroutine.
type LinuxBackend struct {
	conn   *x11.Connection
	logger *slog.Logger

	events chan Event
	done   chan struct{}
	once   sync.Once
	lost   atomic.Bool // the server went away; no more requests

	check      xproto.Window
	ignoreMods uint16
	barColor   uint32
	netWmName  xproto.Atom
	netWmState xproto.Atom
	netWmIcon  xproto.Atom

	mu   sync.Mutex
	keys map[x11.KeyID]hotkeys.Chord
	bars map[int]*bar

	published *DesktopState
}

type bar struct {
	win *x11.BarWindow
}

var _ Backend = (*LinuxBackend)(nil)

// OpenLinuxBackend connects to the display named by $DISPLAY and becomes
// its window manager. It fails with x11.ErrOtherWM when another manager
// is running.
func OpenLinuxBackend(logger *slog.Logger, barColor uint32) (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	if err := conn.TakeOver(); err != nil {
		conn.Close()
		return nil, err
	}

	b := &LinuxBackend{
		conn:     conn,
		logger:   logger,
		events:   make(chan Event, 64),
		done:     make(chan struct{}),
		barColor: barColor,
		keys:     make(map[x11.KeyID]hotkeys.Chord),
		bars:     make(map[int]*bar),
	}

	if b.netWmName, err = conn.Atom("_NET_WM_NAME"); err != nil {
		conn.Close()
		return nil, err
	}
	if b.netWmState, err = conn.Atom("_NET_WM_STATE"); err != nil {
		conn.Close()
		return nil, err
	}
	if b.netWmIcon, err = conn.Atom("_NET_WM_ICON"); err != nil {
		conn.Close()
		return nil, err
	}
	if b.check, err = conn.Announce("tagwm"); err != nil {
		logger.Warn("failed to announce EWMH support", "error", err)
	}
	if err := conn.SelectScreenChanges(); err != nil {
		logger.Warn("output hotplug notifications unavailable", "error", err)
	}
	b.ignoreMods = conn.ConfigureIgnoreMods()

	go b.read()
	return b, nil
}

func (b *LinuxBackend) Events() <-chan Event {
	return b.events
}

func (b *LinuxBackend) read() {
	defer close(b.events)
	for {
		ev, xerr := b.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			b.lost.Store(true)
			return
		}
		if xerr != nil {
			if !ignoreGone(xerr) {
				b.logger.Warn("x11 error", "error", xerr)
			}
			continue
		}
		out, ok := b.translate(ev)
		if !ok {
			continue
		}
		select {
		case b.events <- out:
		case <-b.done:
			return
		}
	}
}

func (b *LinuxBackend) translate(ev xgb.Event) (Event, bool) {
	root := b.conn.Root
	switch e := ev.(type) {
	case xproto.MapRequestEvent:
		return MapRequest{Window: Window(e.Window)}, true

	// Both notifications arrive twice, once through the root's
	// SubstructureNotify and once on the client; only the root copy counts.
	case xproto.UnmapNotifyEvent:
		if e.Event != root {
			return nil, false
		}
		return Unmap{Window: Window(e.Window)}, true
	case xproto.DestroyNotifyEvent:
		if e.Event != root {
			return nil, false
		}
		return Unmap{Window: Window(e.Window), Destroyed: true}, true

	case xproto.ConfigureRequestEvent:
		return ConfigureRequest{
			Window: Window(e.Window),
			Mask:   ConfigMask(e.ValueMask),
			Geometry: tiling.Rect{
				X: int(e.X), Y: int(e.Y),
				Width: int(e.Width), Height: int(e.Height),
			},
			Border:    int(e.BorderWidth),
			Sibling:   Window(e.Sibling),
			StackMode: e.StackMode,
		}, true

	case xproto.ConfigureNotifyEvent:
		if e.Window == root {
			return OutputChange{}, true
		}
	case randr.ScreenChangeNotifyEvent:
		return OutputChange{}, true
	case randr.NotifyEvent:
		return OutputChange{}, true

	case xproto.EnterNotifyEvent:
		if e.Mode != xproto.NotifyModeNormal || e.Detail == xproto.NotifyDetailInferior {
			return nil, false
		}
		return PointerEnter{
			Window: Window(e.Event),
			X:      int(e.RootX), Y: int(e.RootY),
			Serial: Serial(e.Sequence),
		}, true

	case xproto.KeyPressEvent:
		id := x11.KeyID{Mods: e.State &^ b.ignoreMods & uint16(hotkeys.ModMask), Code: e.Detail}
		b.mu.Lock()
		chord, ok := b.keys[id]
		b.mu.Unlock()
		if !ok {
			return nil, false
		}
		return KeyPress{Chord: chord}, true

	case xproto.MappingNotifyEvent:
		if e.Request == xproto.MappingKeyboard || e.Request == xproto.MappingModifier {
			return KeymapChange{}, true
		}

	case xproto.PropertyNotifyEvent:
		switch {
		case e.Window == root && e.Atom == xproto.AtomWmName:
			return PropertyChange{Kind: PropertyStatus}, true
		case e.Window == root:
		case e.Atom == xproto.AtomWmName || e.Atom == b.netWmName:
			return PropertyChange{Window: Window(e.Window), Kind: PropertyTitle}, true
		case e.Atom == xproto.AtomWmNormalHints || e.Atom == xproto.AtomWmTransientFor:
			return PropertyChange{Window: Window(e.Window), Kind: PropertyHints}, true
		case e.Atom == b.netWmIcon:
			return PropertyChange{Window: Window(e.Window), Kind: PropertyIcon}, true
		}

	case xproto.ClientMessageEvent:
		if e.Type != b.netWmState || e.Format != 32 {
			return nil, false
		}
		data := e.Data.Data32
		if b.conn.IsFullscreenAtom(data[1]) || b.conn.IsFullscreenAtom(data[2]) {
			return FullscreenRequest{Window: Window(e.Window), Mode: StateMode(data[0])}, true
		}

	case xproto.ExposeEvent:
		if e.Count != 0 {
			return nil, false
		}
		if id, ok := b.barID(e.Window); ok {
			return BarExposed{ID: id}, true
		}
	}
	return nil, false
}

var errConnectionLost = errors.New("connection to the X server lost")

// ignoreGone reports errors caused by requests racing a window's
// destruction.
func ignoreGone(err xgb.Error) bool {
	switch err.(type) {
	case xproto.WindowError, xproto.DrawableError, xproto.MatchError:
		return true
	}
	return false
}

// quiet drops errors about windows that no longer exist.
func quiet(err error) error {
	var xerr xgb.Error
	if errors.As(err, &xerr) && ignoreGone(xerr) {
		return nil
	}
	return err
}

func (b *LinuxBackend) Outputs() ([]Output, error) {
	monitors, err := b.conn.Monitors()
	if err != nil {
		return nil, err
	}
	outputs := make([]Output, 0, len(monitors))
	for _, m := range monitors {
		outputs = append(outputs, Output{
			Name: m.Name,
			Rect: tiling.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
		})
	}
	return outputs, nil
}

func (b *LinuxBackend) Screen() tiling.Rect {
	x, y, w, h := b.conn.RootGeometry()
	return tiling.Rect{X: x, Y: y, Width: w, Height: h}
}

func (b *LinuxBackend) Pointer() (int, int, bool) {
	x, y, err := b.conn.Pointer()
	return x, y, err == nil
}

func (b *LinuxBackend) Windows() ([]Window, error) {
	children, err := b.conn.Children()
	if err != nil {
		return nil, err
	}
	out := make([]Window, 0, len(children))
	for _, w := range children {
		if w == b.check || b.isBar(w) {
			continue
		}
		out = append(out, Window(w))
	}
	return out, nil
}

func (b *LinuxBackend) Inspect(w Window) (WindowInfo, error) {
	attrs, err := b.conn.Inspect(xproto.Window(w))
	if err != nil {
		return WindowInfo{}, err
	}
	return WindowInfo{
		Window:           w,
		OverrideRedirect: attrs.OverrideRedirect,
		Viewable:         attrs.Viewable,
		Type:             classify(attrs.Types),
		Transient:        attrs.Transient,
		FixedSize:        attrs.FixedSize,
		Fullscreen:       slices.Contains(attrs.States, "_NET_WM_STATE_FULLSCREEN"),
		Geometry:         tiling.Rect{X: attrs.X, Y: attrs.Y, Width: attrs.Width, Height: attrs.Height},
		Desktop:          attrs.Desktop,
		Title:            b.conn.Title(xproto.Window(w)),
	}, nil
}

// classify maps _NET_WM_WINDOW_TYPE to the types the manager treats
// specially. The first recognised entry wins; none means normal.
func classify(types []string) WindowType {
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return TypeNormal
		case "_NET_WM_WINDOW_TYPE_DIALOG":
			return TypeDialog
		case "_NET_WM_WINDOW_TYPE_UTILITY", "_NET_WM_WINDOW_TYPE_TOOLBAR", "_NET_WM_WINDOW_TYPE_MENU":
			return TypeUtility
		case "_NET_WM_WINDOW_TYPE_SPLASH":
			return TypeSplash
		case "_NET_WM_WINDOW_TYPE_DOCK":
			return TypeDock
		case "_NET_WM_WINDOW_TYPE_DESKTOP":
			return TypeDesktop
		case "_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return TypeNotification
		}
	}
	return TypeNormal
}

func (b *LinuxBackend) Title(w Window) string {
	return b.conn.Title(xproto.Window(w))
}

func (b *LinuxBackend) Icon(w Window, size int) image.Image {
	img, err := b.conn.Icon(xproto.Window(w), size)
	if err != nil || img == nil {
		return nil
	}
	return img
}

func (b *LinuxBackend) Status() string {
	return b.conn.Status()
}

func (b *LinuxBackend) Manage(w Window) error {
	return quiet(b.conn.Manage(xproto.Window(w)))
}

func (b *LinuxBackend) Map(w Window) error {
	return quiet(b.conn.Map(xproto.Window(w)))
}

func (b *LinuxBackend) Configure(w Window, r tiling.Rect, border int) error {
	if b.lost.Load() {
		return errConnectionLost
	}
	b.conn.MoveResize(xproto.Window(w), r.X, r.Y, r.Width, r.Height, border)
	return nil
}

func (b *LinuxBackend) NotifyGeometry(w Window, r tiling.Rect, border int) error {
	return quiet(b.conn.SendConfigureNotify(xproto.Window(w), r.X, r.Y, r.Width, r.Height, border))
}

// Passthrough applies a configure request of a window we do not manage.
func (b *LinuxBackend) Passthrough(req ConfigureRequest) error {
	var values []uint32
	if req.Mask&ConfigX != 0 {
		values = append(values, uint32(int32(req.Geometry.X)))
	}
	if req.Mask&ConfigY != 0 {
		values = append(values, uint32(int32(req.Geometry.Y)))
	}
	if req.Mask&ConfigWidth != 0 {
		values = append(values, uint32(req.Geometry.Width))
	}
	if req.Mask&ConfigHeight != 0 {
		values = append(values, uint32(req.Geometry.Height))
	}
	if req.Mask&ConfigBorder != 0 {
		values = append(values, uint32(req.Border))
	}
	if req.Mask&ConfigSibling != 0 {
		values = append(values, uint32(req.Sibling))
	}
	if req.Mask&ConfigStackMode != 0 {
		values = append(values, uint32(req.StackMode))
	}
	b.conn.ConfigureRaw(xproto.Window(req.Window), uint16(req.Mask), values)
	return nil
}

func (b *LinuxBackend) SetBorder(w Window, pixel uint32) error {
	b.conn.SetBorderColor(xproto.Window(w), pixel)
	return nil
}

func (b *LinuxBackend) Focus(w Window) error {
	return quiet(b.conn.Focus(xproto.Window(w)))
}

func (b *LinuxBackend) Restack(bottomToTop []Window) error {
	wins := make([]xproto.Window, len(bottomToTop))
	for i, w := range bottomToTop {
		wins[i] = xproto.Window(w)
	}
	b.conn.Raise(wins)
	return nil
}

func (b *LinuxBackend) Settle() (Serial, error) {
	seq, err := b.conn.Sync()
	return Serial(seq), err
}

func (b *LinuxBackend) SetFullscreen(w Window, on bool) error {
	return quiet(b.conn.SetFullscreenState(xproto.Window(w), on))
}

func (b *LinuxBackend) Close(w Window) error {
	return quiet(b.conn.CloseWindow(xproto.Window(w)))
}

// RefreshKeymap reloads the keycode tables after a mapping change.
func (b *LinuxBackend) RefreshKeymap() {
	b.conn.RefreshKeymap()
}

// GrabKeys replaces every key grab with chords. Chords that have no
// keycode on this keyboard are reported and skipped.
func (b *LinuxBackend) GrabKeys(chords []hotkeys.Chord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.conn.UngrabKeys()
	b.keys = make(map[x11.KeyID]hotkeys.Chord, len(chords))

	var errs []error
	for _, chord := range chords {
		ids, err := b.conn.GrabKey(chord.String())
		for _, id := range ids {
			b.keys[id] = chord
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Publish writes the EWMH root properties that differ from the last call.
func (b *LinuxBackend) Publish(s DesktopState) error {
	prev := b.published
	var errs []error
	if prev == nil || !slices.Equal(prev.Names, s.Names) || prev.Current != s.Current {
		errs = append(errs, b.conn.SetDesktops(s.Names, s.Current))
	}
	if prev == nil || !slices.Equal(prev.Clients, s.Clients) {
		wins := make([]xproto.Window, len(s.Clients))
		for i, w := range s.Clients {
			wins[i] = xproto.Window(w)
		}
		errs = append(errs, b.conn.SetClientList(wins))
	}
	if prev == nil || prev.Active != s.Active {
		errs = append(errs, b.conn.SetActiveWindow(xproto.Window(s.Active)))
	}
	for w, d := range s.Desktops {
		if prev != nil {
			if old, ok := prev.Desktops[w]; ok && old == d {
				continue
			}
		}
		errs = append(errs, quiet(b.conn.SetWindowDesktop(xproto.Window(w), d)))
	}

	snapshot := s
	snapshot.Names = slices.Clone(s.Names)
	snapshot.Clients = slices.Clone(s.Clients)
	snapshot.Desktops = maps.Clone(s.Desktops)
	b.published = &snapshot
	return errors.Join(errs...)
}

// DrawBar shows img in the bar window for monitor id, creating or moving
// the window as needed.
func (b *LinuxBackend) DrawBar(id int, at tiling.Rect, img *image.RGBA) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.bars[id]
	if !ok {
		win, err := b.conn.CreateBar(at.X, at.Y, at.Width, at.Height, b.barColor)
		if err != nil {
			return err
		}
		entry = &bar{win: win}
		b.bars[id] = entry
	} else {
		b.conn.MoveBar(entry.win, at.X, at.Y, at.Width, at.Height)
	}
	b.conn.PutRGBA(entry.win, img)
	return nil
}

func (b *LinuxBackend) HideBar(id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if entry, ok := b.bars[id]; ok {
		b.conn.DestroyBar(entry.win)
		delete(b.bars, id)
	}
	return nil
}

func (b *LinuxBackend) barID(win xproto.Window) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, entry := range b.bars {
		if entry.win.ID == win {
			return id, true
		}
	}
	return 0, false
}

func (b *LinuxBackend) isBar(win xproto.Window) bool {
	_, ok := b.barID(win)
	return ok
}

// Shutdown releases grabs, bars and EWMH properties and closes the
// connection. Safe to call more than once.
func (b *LinuxBackend) Shutdown() {
	b.once.Do(func() {
		close(b.done)
		if b.lost.Load() {
			return
		}
		b.mu.Lock()
		b.conn.UngrabKeys()
		for id, entry := range b.bars {
			b.conn.DestroyBar(entry.win)
			delete(b.bars, id)
		}
		b.mu.Unlock()
		b.conn.Forget(b.check)
		if err := b.conn.Focus(0); err != nil {
			b.logger.Debug("failed to reset focus", "error", err)
		}
		b.conn.Close()
	})
}
