package bar

import "image"

// TagCell is one tag indicator.
type TagCell struct {
	Label    string
	Active   bool // shown on this monitor
	Occupied bool // at least one client carries the tag
	Focused  bool // the focused client carries the tag
}

// Model is everything a bar displays. The manager rebuilds it after every
// event and redraws only when it changed.
type Model struct {
	Tags   []TagCell
	Icon   image.Image // focused window's icon, any size; nil for none
	Title  string
	Status string
}

// Equal compares icons by identity; callers cache icon images per window.
func (m Model) Equal(o Model) bool {
	if m.Title != o.Title || m.Status != o.Status || len(m.Tags) != len(o.Tags) {
		return false
	}
	if m.Icon != o.Icon {
		return false
	}
	for i := range m.Tags {
		if m.Tags[i] != o.Tags[i] {
			return false
		}
	}
	return true
}
