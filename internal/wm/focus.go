package wm

import "slices"

// visible returns the clients shown on m in stack order.
func (s *State) visible(m *Monitor) []*Client {
	var out []*Client
	for _, w := range m.stack {
		if c, ok := s.clients.Lookup(w); ok && c.Tags.Intersects(m.Active) {
			out = append(out, c)
		}
	}
	return out
}

func (s *State) tiled(m *Monitor) []*Client {
	var out []*Client
	for _, c := range s.visible(m) {
		if c.Tiled() {
			out = append(out, c)
		}
	}
	return out
}

// Focus gives c its monitor's focus and selects that monitor.
func (s *State) Focus(c *Client) {
	m := s.monitors.ByID(c.Monitor)
	if m == nil {
		return
	}
	s.ordinal++
	c.LastFocus = s.ordinal
	m.focused = c.Window
	s.monitors.Select(m)
}

// FocusNext moves focus dir steps through the visible clients of m,
// wrapping at either end.
func (s *State) FocusNext(m *Monitor, dir int) bool {
	vis := s.visible(m)
	if len(vis) == 0 {
		return false
	}
	i := slices.IndexFunc(vis, func(c *Client) bool { return c.Window == m.focused })
	if i < 0 {
		s.Focus(vis[0])
		return true
	}
	n := len(vis)
	next := vis[((i+dir)%n+n)%n]
	if next.Window == m.focused {
		return false
	}
	s.Focus(next)
	return true
}

// SwapWithMaster exchanges c with the first tiled client of its monitor.
// When c already is the master it trades places with the second one.
func (s *State) SwapWithMaster(c *Client) bool {
	m := s.monitors.ByID(c.Monitor)
	if m == nil {
		return false
	}
	tiled := s.tiled(m)
	if len(tiled) < 2 {
		return false
	}
	other := tiled[0]
	if other == c {
		other = tiled[1]
	} else if !slices.Contains(tiled, c) {
		return false
	}
	i := slices.Index(m.stack, c.Window)
	j := slices.Index(m.stack, other.Window)
	m.stack[i], m.stack[j] = m.stack[j], m.stack[i]
	return true
}

// ensureFocus keeps the focus of m on a visible client. When the holder
// is gone or hidden, the most recently focused visible client takes over,
// ties going to the earliest registered.
func (s *State) ensureFocus(m *Monitor) {
	if m.focused != 0 {
		if c, ok := s.clients.Lookup(m.focused); ok && c.Monitor == m.ID && c.Tags.Intersects(m.Active) {
			return
		}
	}
	var best *Client
	for _, c := range s.visible(m) {
		if best == nil || c.LastFocus > best.LastFocus ||
			(c.LastFocus == best.LastFocus && c.seq < best.seq) {
			best = c
		}
	}
	m.focused = 0
	if best != nil {
		m.focused = best.Window
	}
}

// Focused returns the client focused on the selected monitor.
func (s *State) Focused() (*Client, bool) {
	m := s.monitors.Selected()
	if m == nil || m.focused == 0 {
		return nil, false
	}
	return s.clients.Lookup(m.focused)
}
