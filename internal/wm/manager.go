package wm

import (
	"image"
	"log/slog"

	"github.com/1broseidon/tagwm/internal/bar"
	"github.com/1broseidon/tagwm/internal/hotkeys"
	"github.com/1broseidon/tagwm/internal/launch"
	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/tiling"
)

// Outcome tells the event loop whether to keep going.
type Outcome int

const (
	Running Outcome = iota
	Quit
	Restart
)

func (o Outcome) String() string {
	switch o {
	case Quit:
		return "quit"
	case Restart:
		return "restart"
	}
	return "running"
}

// Launcher starts user commands.
type Launcher interface {
	Launch(cmd launch.Command) error
}

// Manager applies window system events to the State and pushes the result
// back to the backend. It is not safe for concurrent use; the event loop
// owns it.
type Manager struct {
	state    *State
	backend  platform.Backend
	launcher Launcher
	keys     *hotkeys.Table
	renderer *bar.Renderer // nil when the bar is disabled
	logger   *slog.Logger

	outcome Outcome
	status  string
	pending []launch.Command

	// moved is set when a request may have slid a window under the
	// pointer; crossing events older than settled are then ignored.
	moved    bool
	settling bool
	settled  platform.Serial

	// Last values handed to the backend.
	inputFocus platform.Window
	stacking   []platform.Window
	bars       map[int]bar.Model
	barRects   map[int]tiling.Rect
}

func NewManager(opts Options, backend platform.Backend, launcher Launcher, keys *hotkeys.Table, renderer *bar.Renderer, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if renderer != nil {
		opts.BarHeight = renderer.Height()
	} else {
		opts.BarHeight = 0
	}
	return &Manager{
		state:    NewState(opts),
		backend:  backend,
		launcher: launcher,
		keys:     keys,
		renderer: renderer,
		logger:   logger,
		bars:     make(map[int]bar.Model),
		barRects: make(map[int]tiling.Rect),
	}
}

func (m *Manager) State() *State    { return m.state }
func (m *Manager) Outcome() Outcome { return m.outcome }

// Start builds the monitor set, grabs the key table and adopts the windows
// that are already mapped, restoring their tags from _NET_WM_DESKTOP.
func (m *Manager) Start() error {
	m.refreshMonitors()

	m.grabKeys()
	m.status = m.backend.Status()

	wins, err := m.backend.Windows()
	if err != nil {
		return err
	}
	for _, w := range wins {
		info, err := m.backend.Inspect(w)
		if err != nil || !info.Viewable {
			continue
		}
		mon := m.state.monitors.MonitorAt(info.Geometry.Center())
		c, ok := m.state.Manage(info, mon)
		if !ok {
			continue
		}
		if err := m.backend.Manage(w); err != nil {
			m.state.Unmanage(w)
			continue
		}
		m.logger.Debug("adopted window", "window", w, "title", c.Title, "tags", uint32(c.Tags))
	}
	m.logger.Info("started", "monitors", m.state.monitors.Len(), "clients", m.state.clients.Len())
	m.commit()
	return nil
}

func (m *Manager) grabKeys() {
	if m.keys == nil {
		return
	}
	if err := m.backend.GrabKeys(m.keys.Chords()); err != nil {
		m.logger.Warn("some key bindings could not be grabbed", "error", err)
	}
}

// Handle applies one event and brings the window system in line with the
// resulting state.
func (m *Manager) Handle(ev platform.Event) {
	switch e := ev.(type) {
	case platform.MapRequest:
		m.onMapRequest(e)
	case platform.Unmap:
		m.onUnmap(e)
	case platform.ConfigureRequest:
		m.onConfigureRequest(e)
	case platform.PointerEnter:
		m.onPointerEnter(e)
	case platform.KeyPress:
		if m.keys == nil {
			break
		}
		if a, ok := m.keys.Lookup(e.Chord); ok {
			m.run(a)
		}
	case platform.OutputChange:
		m.refreshMonitors()
	case platform.KeymapChange:
		m.backend.RefreshKeymap()
		m.grabKeys()
	case platform.BarExposed:
		delete(m.bars, e.ID)
	case platform.PropertyChange:
		m.onPropertyChange(e)
	case platform.FullscreenRequest:
		m.onFullscreenRequest(e)
	default:
		m.logger.Debug("unhandled event", "event", ev)
		return
	}
	m.commit()
	m.flushLaunches()
}

func (m *Manager) onMapRequest(e platform.MapRequest) {
	if _, ok := m.state.clients.Lookup(e.Window); ok {
		return
	}
	info, err := m.backend.Inspect(e.Window)
	if err != nil {
		m.logger.Debug("map request for vanished window", "window", e.Window, "error", err)
		return
	}
	if ok, _ := Manageable(info); !ok {
		if err := m.backend.Map(e.Window); err != nil {
			m.logger.Debug("failed to map unmanaged window", "window", e.Window, "error", err)
		}
		return
	}

	mon := m.state.monitors.Selected()
	if x, y, ok := m.backend.Pointer(); ok {
		mon = m.state.monitors.MonitorAt(x, y)
	}
	c, ok := m.state.Manage(info, mon)
	if !ok {
		return
	}
	if err := m.backend.Manage(e.Window); err != nil {
		m.logger.Debug("window vanished while managing", "window", e.Window, "error", err)
		m.state.Unmanage(e.Window)
		return
	}
	m.moved = true
	if m.state.Visible(c) {
		m.state.Focus(c)
	}
	m.logger.Debug("managed window", "window", c.Window, "title", c.Title, "floating", c.Floating)
}

func (m *Manager) onUnmap(e platform.Unmap) {
	if _, ok := m.state.Unmanage(e.Window); ok {
		m.logger.Debug("unmanaged window", "window", e.Window, "destroyed", e.Destroyed)
	}
}

func (m *Manager) onConfigureRequest(e platform.ConfigureRequest) {
	c, ok := m.state.clients.Lookup(e.Window)
	if !ok {
		if err := m.backend.Passthrough(e); err != nil {
			m.logger.Debug("configure passthrough failed", "window", e.Window, "error", err)
		}
		return
	}

	if c.Floating && !c.Fullscreen {
		r := c.Float
		b := c.Border
		if e.Mask&platform.ConfigX != 0 {
			r.X = e.Geometry.X
		}
		if e.Mask&platform.ConfigY != 0 {
			r.Y = e.Geometry.Y
		}
		if e.Mask&platform.ConfigWidth != 0 {
			r.Width = e.Geometry.Width + 2*b
		}
		if e.Mask&platform.ConfigHeight != 0 {
			r.Height = e.Geometry.Height + 2*b
		}
		if mon := m.state.monitors.ByID(c.Monitor); mon != nil {
			r = tiling.ClampInto(r, m.state.usable(mon))
		}
		c.Float = r
		if !m.state.Visible(c) {
			return
		}
		if err := m.backend.NotifyGeometry(c.Window, tiling.Shrink(r, b), b); err != nil {
			m.logger.Debug("configure notify failed", "window", c.Window, "error", err)
		}
		return
	}

	// Tiled and fullscreen clients keep their slot; tell them where it is.
	if c.applied.Width == 0 {
		return
	}
	if err := m.backend.NotifyGeometry(c.Window, c.applied, c.appliedBorder); err != nil {
		m.logger.Debug("configure notify failed", "window", c.Window, "error", err)
	}
}

func (m *Manager) onPointerEnter(e platform.PointerEnter) {
	if !m.state.opts.FocusFollowsPointer {
		return
	}
	if m.settling {
		if e.Serial.Before(m.settled) {
			m.logger.Debug("ignoring crossing caused by a layout change", "window", e.Window)
			return
		}
		m.settling = false
	}
	if c, ok := m.state.clients.Lookup(e.Window); ok {
		if m.state.Visible(c) {
			m.state.Focus(c)
		}
		return
	}
	m.state.monitors.Select(m.state.monitors.MonitorAt(e.X, e.Y))
}

func (m *Manager) onPropertyChange(e platform.PropertyChange) {
	switch e.Kind {
	case platform.PropertyStatus:
		m.status = m.backend.Status()
	case platform.PropertyTitle:
		if c, ok := m.state.clients.Lookup(e.Window); ok {
			c.Title = m.backend.Title(e.Window)
		}
	case platform.PropertyHints:
		c, ok := m.state.clients.Lookup(e.Window)
		if !ok || c.Floating {
			return
		}
		info, err := m.backend.Inspect(e.Window)
		if err != nil {
			return
		}
		if _, floating := Manageable(info); floating {
			m.state.SetFloating(c, true)
		}
	case platform.PropertyIcon:
		if c, ok := m.state.clients.Lookup(e.Window); ok {
			c.icon, c.iconLoaded = nil, false
		}
	}
}

// iconFor fetches the icon of c once and keeps it until the client
// changes it.
func (m *Manager) iconFor(c *Client) image.Image {
	if !c.iconLoaded {
		c.icon = m.backend.Icon(c.Window, m.renderer.IconSize())
		c.iconLoaded = true
	}
	return c.icon
}

func (m *Manager) onFullscreenRequest(e platform.FullscreenRequest) {
	c, ok := m.state.clients.Lookup(e.Window)
	if !ok {
		return
	}
	on := c.Fullscreen
	switch e.Mode {
	case platform.StateAdd:
		on = true
	case platform.StateRemove:
		on = false
	case platform.StateToggle:
		on = !on
	}
	m.setFullscreen(c, on)
}

func (m *Manager) setFullscreen(c *Client, on bool) {
	if !m.state.SetFullscreen(c, on) {
		return
	}
	if err := m.backend.SetFullscreen(c.Window, on); err != nil {
		m.logger.Debug("failed to set fullscreen state", "window", c.Window, "error", err)
	}
}

// refreshMonitors re-reads the outputs and drops the bars of monitors that
// went away.
func (m *Manager) refreshMonitors() {
	outputs, err := m.backend.Outputs()
	if err != nil {
		m.logger.Warn("failed to query outputs, using the whole screen", "error", err)
		outputs = nil
	}
	for _, id := range m.state.Reconcile(outputs, m.backend.Screen()) {
		m.logger.Info("monitor removed", "monitor", id)
		delete(m.bars, id)
		delete(m.barRects, id)
		if err := m.backend.HideBar(id); err != nil {
			m.logger.Debug("failed to hide bar", "monitor", id, "error", err)
		}
	}
}

func (m *Manager) flushLaunches() {
	if len(m.pending) == 0 {
		return
	}
	pending := m.pending
	m.pending = nil
	for _, cmd := range pending {
		if m.launcher == nil {
			continue
		}
		if err := m.launcher.Launch(cmd); err != nil {
			m.logger.Warn("failed to launch command", "command", cmd.Name, "error", err)
		}
	}
}

// Shutdown brings parked clients back on screen, so the next window
// manager finds them, and releases the window system.
func (m *Manager) Shutdown() {
	for _, c := range m.state.clients.Clients() {
		if !c.hidden {
			continue
		}
		if err := m.backend.Configure(c.Window, c.applied, c.appliedBorder); err != nil {
			m.logger.Debug("configure failed", "window", c.Window, "error", err)
		}
		c.hidden = false
	}
	m.backend.Shutdown()
}

// Sweep drops clients whose windows no longer exist on the server, in case
// a destroy notification was missed. It returns how many were dropped.
func (m *Manager) Sweep() int {
	wins, err := m.backend.Windows()
	if err != nil {
		m.logger.Warn("failed to list windows", "error", err)
		return 0
	}
	live := make(map[platform.Window]bool, len(wins))
	for _, w := range wins {
		live[w] = true
	}
	n := 0
	for _, c := range m.state.clients.Clients() {
		if live[c.Window] {
			continue
		}
		m.state.Unmanage(c.Window)
		n++
	}
	if n > 0 {
		m.commit()
	}
	return n
}
