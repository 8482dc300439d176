package wm

import (
	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/tiling"
)

// Options are the configuration values the manager state depends on.
type Options struct {
	Tags                []string
	Ratio               float64
	RatioStep           float64
	RatioMin            float64
	RatioMax            float64
	Masters             int
	Gap                 int
	Border              int
	FocusFollowsPointer bool
	BarHeight           int // zero when the bar is disabled
	Palette             config.Palette
}

// OptionsFromConfig derives Options from a validated configuration.
func OptionsFromConfig(cfg *config.Config, barHeight int) Options {
	return Options{
		Tags:                cfg.Tags,
		Ratio:               cfg.Layout.Ratio,
		RatioStep:           cfg.Layout.RatioStep,
		RatioMin:            cfg.Layout.RatioMin,
		RatioMax:            cfg.Layout.RatioMax,
		Masters:             cfg.Layout.MasterCount,
		Gap:                 cfg.Layout.Gap,
		Border:              cfg.Layout.Border,
		FocusFollowsPointer: cfg.FocusFollowsPointer,
		BarHeight:           barHeight,
		Palette:             cfg.Palette(),
	}
}

// State is the manager's model: clients, monitors and focus history. It
// never talks to the window system.
type State struct {
	opts     Options
	clients  *Registry
	monitors *MonitorSet
	ordinal  uint64
}

func NewState(opts Options) *State {
	return &State{
		opts:     opts,
		clients:  NewRegistry(),
		monitors: NewMonitorSet(len(opts.Tags), opts.Ratio, opts.RatioMin, opts.RatioMax, opts.Masters),
	}
}

func (s *State) Clients() *Registry    { return s.clients }
func (s *State) Monitors() *MonitorSet { return s.monitors }

// Manageable decides whether a window is managed at all and whether it
// starts floating.
func Manageable(info platform.WindowInfo) (manage, floating bool) {
	if info.OverrideRedirect {
		return false, false
	}
	switch info.Type {
	case platform.TypeDock, platform.TypeDesktop, platform.TypeNotification:
		return false, false
	case platform.TypeDialog, platform.TypeUtility, platform.TypeSplash:
		return true, true
	}
	return true, info.Transient || info.FixedSize
}

// usable is the monitor area left for clients once the bar is reserved.
func (s *State) usable(m *Monitor) tiling.Rect {
	r := m.Geom
	h := s.opts.BarHeight
	if h >= r.Height {
		return r
	}
	r.Y += h
	r.Height -= h
	return r
}

// Manage registers a window on m. Tags come from the window's desktop hint
// when it names a valid tag, otherwise from the monitor's view.
func (s *State) Manage(info platform.WindowInfo, m *Monitor) (*Client, bool) {
	ok, floating := Manageable(info)
	if !ok || m == nil {
		return nil, false
	}

	tags := m.Active
	if info.Desktop >= 0 && info.Desktop < len(s.opts.Tags) {
		tags = TagBit(info.Desktop)
	}

	border := s.opts.Border
	outer := info.Geometry
	outer.Width += 2 * border
	outer.Height += 2 * border
	area := s.usable(m)
	if floating && outer.X == 0 && outer.Y == 0 {
		cx, cy := area.Center()
		outer.X = cx - outer.Width/2
		outer.Y = cy - outer.Height/2
	}
	outer = tiling.ClampInto(outer, area)

	c, ok := s.clients.Register(Client{
		Window:     info.Window,
		Title:      info.Title,
		Tags:       tags,
		Floating:   floating,
		Fullscreen: info.Fullscreen,
		Float:      outer,
		Border:     border,
		Monitor:    m.ID,
	})
	if !ok {
		return nil, false
	}
	m.stack = append(m.stack, c.Window)
	return c, true
}

// Unmanage forgets a window. Focus transfer happens in ensureFocus.
func (s *State) Unmanage(w platform.Window) (*Client, bool) {
	c, ok := s.clients.Unregister(w)
	if !ok {
		return nil, false
	}
	if m := s.monitors.ByID(c.Monitor); m != nil {
		m.remove(w)
	}
	return c, true
}

// SetTags retags c. Bits beyond the tag count are dropped and an empty
// result is refused.
func (s *State) SetTags(c *Client, mask TagMask) bool {
	mask &= AllTags(len(s.opts.Tags))
	if mask == 0 || mask == c.Tags {
		return false
	}
	c.Tags = mask
	return true
}

// SetFloating toggles c between the layout and free placement. A client
// leaving the layout keeps the geometry it had there.
func (s *State) SetFloating(c *Client, on bool) bool {
	if c.Floating == on {
		return false
	}
	if on && c.applied.Width > 0 && !c.hidden {
		c.Float = c.Outer()
	}
	c.Floating = on
	return true
}

func (s *State) SetFullscreen(c *Client, on bool) bool {
	if c.Fullscreen == on {
		return false
	}
	c.Fullscreen = on
	return true
}

// Reconcile applies an output change and moves clients off vanished
// monitors. It returns the IDs of the monitors that went away.
func (s *State) Reconcile(outputs []platform.Output, fallback tiling.Rect) []int {
	moved, vanished := s.monitors.Reconcile(outputs, fallback)
	if len(moved) == 0 {
		return vanished
	}
	for _, c := range s.clients.Clients() {
		if to, ok := moved[c.Monitor]; ok {
			c.Monitor = to
		}
	}
	return vanished
}

// Visible reports whether c is shown on its monitor.
func (s *State) Visible(c *Client) bool {
	m := s.monitors.ByID(c.Monitor)
	return m != nil && c.Tags.Intersects(m.Active)
}
