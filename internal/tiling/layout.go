package tiling

// Rect represents a window position and size
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Area returns width × height, or 0 for degenerate rectangles.
func (r Rect) Area() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Contains reports whether the point lies inside r (right/bottom edges exclusive).
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Intersects reports whether r and o share any area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Inset shrinks the rectangle by n on every side, never below 1x1.
func (r Rect) Inset(n int) Rect {
	out := Rect{
		X:      r.X + n,
		Y:      r.Y + n,
		Width:  r.Width - 2*n,
		Height: r.Height - 2*n,
	}
	if out.Width < 1 {
		out.Width = 1
	}
	if out.Height < 1 {
		out.Height = 1
	}
	return out
}

// MasterStack computes one tile per window for the master-stack layout.
//
// The gap is applied once around area and once between neighbouring tiles.
// The first `masters` tiles share the left column, whose width is ratio of
// the width left after the column gap; the remaining tiles share the right
// column. Within a column tiles split the height evenly and the last tile
// absorbs the integer remainder, so heights always sum to the column height.
// A single window, or a layout where one of the columns would be empty,
// uses the full width.
func MasterStack(area Rect, ratio float64, masters, n, gap int) []Rect {
	if n <= 0 {
		return nil
	}
	if gap < 0 {
		gap = 0
	}
	usable := area.Inset(gap)

	if masters < 0 {
		masters = 0
	}
	if masters > n {
		masters = n
	}
	stackCount := n - masters
	if masters == 0 || stackCount == 0 {
		return column(usable, n, gap)
	}

	// Width available to the two columns once the separating gap is removed.
	avail := usable.Width - gap
	masterWidth := int(ratio * float64(avail))
	if masterWidth < 1 {
		masterWidth = 1
	}
	if masterWidth > avail-1 {
		masterWidth = avail - 1
	}
	if masterWidth < 1 {
		// Too narrow to split; stack everything.
		return column(usable, n, gap)
	}

	left := Rect{X: usable.X, Y: usable.Y, Width: masterWidth, Height: usable.Height}
	right := Rect{
		X:      usable.X + masterWidth + gap,
		Y:      usable.Y,
		Width:  avail - masterWidth,
		Height: usable.Height,
	}

	positions := make([]Rect, 0, n)
	positions = append(positions, column(left, masters, gap)...)
	positions = append(positions, column(right, stackCount, gap)...)
	return positions
}

// column splits area vertically into k tiles separated by gap.
func column(area Rect, k, gap int) []Rect {
	avail := area.Height - gap*(k-1)
	each := avail / k
	remainder := avail - each*k
	if each < 1 {
		each, remainder = 1, 0
	}

	positions := make([]Rect, k)
	y := area.Y
	for i := 0; i < k; i++ {
		h := each
		if i == k-1 {
			h += remainder
		}
		positions[i] = Rect{X: area.X, Y: y, Width: area.Width, Height: h}
		y += h + gap
	}
	return positions
}

// Shrink converts an outer tile into the inner geometry of a window with
// the given border width. Width and height never drop below 1.
func Shrink(r Rect, border int) Rect {
	if border < 0 {
		border = 0
	}
	r.Width -= 2 * border
	r.Height -= 2 * border
	if r.Width < 1 {
		r.Width = 1
	}
	if r.Height < 1 {
		r.Height = 1
	}
	return r
}

// ClampInto keeps r inside area. Oversized rectangles are shrunk to fit and
// the position is shifted so no edge leaves area.
func ClampInto(r, area Rect) Rect {
	if r.Width > area.Width {
		r.Width = area.Width
	}
	if r.Height > area.Height {
		r.Height = area.Height
	}
	if r.Width < 1 {
		r.Width = 1
	}
	if r.Height < 1 {
		r.Height = 1
	}
	if r.X+r.Width > area.X+area.Width {
		r.X = area.X + area.Width - r.Width
	}
	if r.Y+r.Height > area.Y+area.Height {
		r.Y = area.Y + area.Height - r.Height
	}
	if r.X < area.X {
		r.X = area.X
	}
	if r.Y < area.Y {
		r.Y = area.Y
	}
	return r
}
