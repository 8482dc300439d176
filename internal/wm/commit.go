package wm

import (
	"cmp"
	"slices"

	"github.com/1broseidon/tagwm/internal/bar"
	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/tiling"
)

// commit pushes the state to the window system. Every step compares with
// what was last sent so a no-op event costs no requests.
func (m *Manager) commit() {
	for _, mon := range m.state.monitors.monitors {
		m.state.ensureFocus(mon)
	}
	m.arrange()
	m.applyFocus()
	m.restack()
	m.settle()
	m.publish()
	m.drawBars()
}

// settle marks the crossing events caused by this commit's moves so
// focus-follows-pointer does not act on them.
func (m *Manager) settle() {
	if !m.moved {
		return
	}
	m.moved = false
	serial, err := m.backend.Settle()
	if err != nil {
		m.logger.Debug("failed to sync with the server", "error", err)
		return
	}
	m.settled, m.settling = serial, true
}

func (m *Manager) arrange() {
	st := m.state
	for _, mon := range st.monitors.monitors {
		area := st.usable(mon)
		tiled := st.tiled(mon)
		rects := tiling.MasterStack(area, mon.Ratio(), mon.NMaster, len(tiled), st.opts.Gap)
		for i, c := range tiled {
			m.place(c, tiling.Shrink(rects[i], c.Border), c.Border)
		}
		for _, c := range st.visible(mon) {
			switch {
			case c.Fullscreen:
				m.place(c, mon.Geom, 0)
			case c.Floating:
				c.Float = tiling.ClampInto(c.Float, area)
				m.place(c, tiling.Shrink(c.Float, c.Border), c.Border)
			}
		}
	}
	for _, c := range st.clients.Clients() {
		if !st.Visible(c) {
			m.hide(c)
		}
	}
}

func (m *Manager) place(c *Client, r tiling.Rect, border int) {
	if !c.hidden && c.applied == r && c.appliedBorder == border {
		return
	}
	if err := m.backend.Configure(c.Window, r, border); err != nil {
		m.logger.Debug("configure failed", "window", c.Window, "error", err)
	}
	m.moved = true
	c.applied, c.appliedBorder, c.hidden = r, border, false
}

// hide parks c off-screen to the left, twice its width away.
func (m *Manager) hide(c *Client) {
	if c.hidden {
		return
	}
	r, border := c.applied, c.appliedBorder
	if r.Width == 0 {
		r, border = tiling.Shrink(c.Float, c.Border), c.Border
	}
	off := r
	off.X = -2 * (r.Width + 2*border)
	if err := m.backend.Configure(c.Window, off, border); err != nil {
		m.logger.Debug("configure failed", "window", c.Window, "error", err)
	}
	m.moved = true
	c.applied, c.appliedBorder, c.hidden = r, border, true
}

func (m *Manager) applyFocus() {
	st := m.state
	var target platform.Window
	if sel := st.monitors.Selected(); sel != nil {
		target = sel.focused
	}
	pal := st.opts.Palette
	for _, c := range st.clients.Clients() {
		px := pal.BorderNormal
		if c.Window == target {
			px = pal.BorderFocused
		}
		if c.borderSet && c.borderPixel == px {
			continue
		}
		if err := m.backend.SetBorder(c.Window, px); err != nil {
			m.logger.Debug("failed to set border", "window", c.Window, "error", err)
		}
		c.borderPixel, c.borderSet = px, true
	}
	if target == m.inputFocus {
		return
	}
	if err := m.backend.Focus(target); err != nil {
		m.logger.Debug("failed to focus", "window", target, "error", err)
	}
	m.inputFocus = target
}

// stackingOrder lists visible clients bottom to top: tiled, the focused
// tiled client, floating by focus recency, then fullscreen.
func (m *Manager) stackingOrder() []platform.Window {
	st := m.state
	var order []platform.Window
	for _, mon := range st.monitors.monitors {
		var tiled, floating, full []*Client
		var focused *Client
		for _, c := range st.visible(mon) {
			switch {
			case c.Fullscreen:
				full = append(full, c)
			case c.Floating:
				floating = append(floating, c)
			case c.Window == mon.focused:
				focused = c
			default:
				tiled = append(tiled, c)
			}
		}
		if focused != nil {
			tiled = append(tiled, focused)
		}
		slices.SortStableFunc(floating, func(a, b *Client) int {
			return cmp.Compare(a.LastFocus, b.LastFocus)
		})
		for _, group := range [][]*Client{tiled, floating, full} {
			for _, c := range group {
				order = append(order, c.Window)
			}
		}
	}
	return order
}

func (m *Manager) restack() {
	order := m.stackingOrder()
	if slices.Equal(order, m.stacking) {
		return
	}
	if err := m.backend.Restack(order); err != nil {
		m.logger.Debug("restack failed", "error", err)
	}
	m.moved = true
	m.stacking = order
}

func (m *Manager) publish() {
	st := m.state
	sel := st.monitors.Selected()
	if sel == nil {
		return
	}
	ds := platform.DesktopState{
		Names:    slices.Clone(st.opts.Tags),
		Current:  sel.Active.Lowest(),
		Clients:  st.clients.Windows(),
		Active:   sel.focused,
		Desktops: make(map[platform.Window]int, st.clients.Len()),
	}
	for _, c := range st.clients.Clients() {
		ds.Desktops[c.Window] = c.Tags.Lowest()
	}
	if err := m.backend.Publish(ds); err != nil {
		m.logger.Debug("failed to publish desktop state", "error", err)
	}
}

// BarModel is what the bar of mon shows for the current state.
func (m *Manager) BarModel(mon *Monitor) bar.Model {
	st := m.state
	var occupied TagMask
	for _, w := range mon.stack {
		if c, ok := st.clients.Lookup(w); ok {
			occupied |= c.Tags
		}
	}
	focused, _ := st.clients.Lookup(mon.focused)

	model := bar.Model{Tags: make([]bar.TagCell, len(st.opts.Tags))}
	for i, label := range st.opts.Tags {
		model.Tags[i] = bar.TagCell{
			Label:    label,
			Active:   mon.Active.Has(i),
			Occupied: occupied.Has(i),
			Focused:  focused != nil && focused.Tags.Has(i),
		}
	}
	if focused != nil {
		model.Title = focused.Title
		if m.renderer != nil {
			model.Icon = m.iconFor(focused)
		}
	}
	if sel := st.monitors.Selected(); sel != nil && sel.ID == mon.ID {
		model.Status = m.status
	}
	return model
}

func (m *Manager) drawBars() {
	if m.renderer == nil {
		return
	}
	h := m.state.opts.BarHeight
	for _, mon := range m.state.monitors.monitors {
		model := m.BarModel(mon)
		rect := tiling.Rect{X: mon.Geom.X, Y: mon.Geom.Y, Width: mon.Geom.Width, Height: h}
		if prev, ok := m.bars[mon.ID]; ok && prev.Equal(model) && m.barRects[mon.ID] == rect {
			continue
		}
		img := m.renderer.Render(model, rect.Width)
		if err := m.backend.DrawBar(mon.ID, rect, img); err != nil {
			m.logger.Debug("failed to draw bar", "monitor", mon.ID, "error", err)
			continue
		}
		m.bars[mon.ID] = model
		m.barRects[mon.ID] = rect
	}
}
