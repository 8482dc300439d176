package wm

import (
	"slices"

	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/tiling"
)

// Monitor is one output with its own tag view, layout parameters, client
// stack and focus.
type Monitor struct {
	ID      int
	Name    string
	Geom    tiling.Rect
	Active  TagMask
	NMaster int

	ratios  []float64 // per tag
	stack   []platform.Window
	focused platform.Window
	// Focus last held under a given view, restored when the view returns.
	remembered map[TagMask]platform.Window
}

// Ratio is the master ratio of the lowest active tag.
func (m *Monitor) Ratio() float64 {
	i := m.Active.Lowest()
	if i < 0 || i >= len(m.ratios) {
		return 0.5
	}
	return m.ratios[i]
}

// Focused is the window holding this monitor's focus, or zero.
func (m *Monitor) Focused() platform.Window {
	return m.focused
}

// Stack returns the monitor's clients in layout order, master first.
func (m *Monitor) Stack() []platform.Window {
	return slices.Clone(m.stack)
}

func (m *Monitor) remove(w platform.Window) {
	if i := slices.Index(m.stack, w); i >= 0 {
		m.stack = slices.Delete(m.stack, i, i+1)
	}
	if m.focused == w {
		m.focused = 0
	}
	for mask, f := range m.remembered {
		if f == w {
			delete(m.remembered, mask)
		}
	}
}

// MonitorSet holds the monitors in output order.
type MonitorSet struct {
	monitors []*Monitor
	nextID   int
	selected int

	tagCount       int
	ratio          float64
	ratioMin       float64
	ratioMax       float64
	defaultMasters int
}

func NewMonitorSet(tagCount int, ratio, ratioMin, ratioMax float64, masters int) *MonitorSet {
	return &MonitorSet{
		nextID:         1,
		tagCount:       tagCount,
		ratio:          ratio,
		ratioMin:       ratioMin,
		ratioMax:       ratioMax,
		defaultMasters: masters,
	}
}

func (s *MonitorSet) newMonitor(out platform.Output) *Monitor {
	m := &Monitor{
		ID:         s.nextID,
		Name:       out.Name,
		Geom:       out.Rect,
		Active:     TagBit(0),
		NMaster:    s.defaultMasters,
		ratios:     make([]float64, s.tagCount),
		remembered: make(map[TagMask]platform.Window),
	}
	for i := range m.ratios {
		m.ratios[i] = s.ratio
	}
	s.nextID++
	return m
}

// All returns the monitors in output order.
func (s *MonitorSet) All() []*Monitor {
	return slices.Clone(s.monitors)
}

func (s *MonitorSet) Len() int {
	return len(s.monitors)
}

func (s *MonitorSet) ByID(id int) *Monitor {
	for _, m := range s.monitors {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// Selected is the monitor keyboard actions apply to.
func (s *MonitorSet) Selected() *Monitor {
	if m := s.ByID(s.selected); m != nil {
		return m
	}
	if len(s.monitors) > 0 {
		return s.monitors[0]
	}
	return nil
}

func (s *MonitorSet) Select(m *Monitor) {
	if m != nil {
		s.selected = m.ID
	}
}

// MonitorAt returns the monitor containing the point, or the first monitor.
func (s *MonitorSet) MonitorAt(x, y int) *Monitor {
	for _, m := range s.monitors {
		if m.Geom.Contains(x, y) {
			return m
		}
	}
	if len(s.monitors) > 0 {
		return s.monitors[0]
	}
	return nil
}

// Reconcile makes the set match outputs. Existing monitors are matched by
// name, or by position when the output has no name, and keep their tags,
// ratios and clients. New outputs become monitors viewing the first tag.
// The stack of each vanished monitor is appended to the remaining monitor
// whose center is nearest; the returned map gives the new owner for every
// vanished monitor ID. An empty output list is treated as a single output
// covering fallback.
func (s *MonitorSet) Reconcile(outputs []platform.Output, fallback tiling.Rect) (moved map[int]int, vanished []int) {
	if len(outputs) == 0 {
		name := ""
		if len(s.monitors) > 0 {
			name = s.monitors[0].Name
		}
		outputs = []platform.Output{{Name: name, Rect: fallback}}
	}

	old := s.monitors
	matched := make([]bool, len(old))
	next := make([]*Monitor, 0, len(outputs))
	for i, out := range outputs {
		idx := -1
		for j, m := range old {
			if matched[j] {
				continue
			}
			if out.Name != "" && m.Name == out.Name {
				idx = j
				break
			}
		}
		if idx < 0 && out.Name == "" && i < len(old) && !matched[i] && old[i].Name == "" {
			idx = i
		}

		var m *Monitor
		if idx >= 0 {
			matched[idx] = true
			m = old[idx]
			m.Name = out.Name
			m.Geom = out.Rect
		} else {
			m = s.newMonitor(out)
		}
		next = append(next, m)
	}
	s.monitors = next

	moved = make(map[int]int)
	for j, m := range old {
		if matched[j] {
			continue
		}
		target := s.nearest(m.Geom.Center())
		target.stack = append(target.stack, m.stack...)
		moved[m.ID] = target.ID
		vanished = append(vanished, m.ID)
		if s.selected == m.ID {
			s.selected = target.ID
		}
	}
	if s.ByID(s.selected) == nil {
		s.selected = s.monitors[0].ID
	}
	return moved, vanished
}

// nearest picks the monitor whose center is closest to p, ties going to
// the earlier monitor.
func (s *MonitorSet) nearest(x, y int) *Monitor {
	best := s.monitors[0]
	bestDist := -1
	for _, m := range s.monitors {
		cx, cy := m.Geom.Center()
		dx, dy := cx-x, cy-y
		d := dx*dx + dy*dy
		if bestDist < 0 || d < bestDist {
			best, bestDist = m, d
		}
	}
	return best
}

// AdjustRatio moves the ratio of tag on m by delta, clamped to the
// configured band.
func (s *MonitorSet) AdjustRatio(m *Monitor, tag int, delta float64) bool {
	if tag < 0 || tag >= len(m.ratios) {
		return false
	}
	r := m.ratios[tag] + delta
	if r < s.ratioMin {
		r = s.ratioMin
	}
	if r > s.ratioMax {
		r = s.ratioMax
	}
	if r == m.ratios[tag] {
		return false
	}
	m.ratios[tag] = r
	return true
}

// SetActiveTags switches the view of m. Bits beyond the tag count are
// dropped and an empty result is refused.
func (s *MonitorSet) SetActiveTags(m *Monitor, mask TagMask) bool {
	mask &= AllTags(s.tagCount)
	if mask == 0 || mask == m.Active {
		return false
	}
	if m.focused != 0 {
		m.remembered[m.Active] = m.focused
	}
	m.Active = mask
	m.focused = m.remembered[mask]
	return true
}

// AdjustMasters changes the master count of m, never below zero.
func (s *MonitorSet) AdjustMasters(m *Monitor, delta int) bool {
	n := m.NMaster + delta
	if n < 0 {
		n = 0
	}
	if n == m.NMaster {
		return false
	}
	m.NMaster = n
	return true
}
