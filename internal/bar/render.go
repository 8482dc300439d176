package bar

import (
	"image"
	"image/color"

	"github.com/mattn/go-runewidth"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// TitleCells bounds the focused title in display cells.
const TitleCells = 50

// Renderer rasterizes a Model. It holds no per-monitor state.
type Renderer struct {
	face   font.Face
	bg, fg color.RGBA
	height int
	ascent int
	pad    int
	icon   int // icon edge, the text height
}

// NewRenderer builds a renderer for face with 0xRRGGBB colours. A nil face
// selects the built-in font.
func NewRenderer(face font.Face, background, foreground uint32) *Renderer {
	if face == nil {
		face = basicfont.Face7x13
	}
	m := face.Metrics()
	textHeight := (m.Ascent + m.Descent).Ceil()
	if h := m.Height.Ceil(); h > textHeight {
		textHeight = h
	}
	height := textHeight * 3 / 2
	return &Renderer{
		face:   face,
		bg:     rgba(background),
		fg:     rgba(foreground),
		height: height,
		ascent: (height-(m.Ascent+m.Descent).Ceil())/2 + m.Ascent.Ceil(),
		pad:    height / 2,
		icon:   textHeight,
	}
}

func rgba(px uint32) color.RGBA {
	return color.RGBA{R: uint8(px >> 16), G: uint8(px >> 8), B: uint8(px), A: 0xff}
}

// Height is the bar height in pixels.
func (r *Renderer) Height() int { return r.height }

// IconSize is the edge of the square the window icon is scaled into.
func (r *Renderer) IconSize() int { return r.icon }

// Render draws m into a width×Height image: tag cells on the left, then the
// focused window's icon and title, then the status text right-aligned.
func (r *Renderer) Render(m Model, width int) *image.RGBA {
	if width < 1 {
		width = 1
	}
	h := r.height
	img := image.NewRGBA(image.Rect(0, 0, width, h))
	fill(img, img.Bounds(), r.bg)

	x := 0
	for _, cell := range m.Tags {
		w := r.textWidth(cell.Label) + r.pad
		if w < h {
			w = h
		}
		box := image.Rect(x, 0, x+w, h)
		text := r.fg
		if cell.Active {
			fill(img, box, r.fg)
			text = r.bg
		}
		if cell.Occupied {
			r.marker(img, x, text, cell.Focused)
		}
		r.text(img, cell.Label, x+(w-r.textWidth(cell.Label))/2, text)
		x += w
	}

	x += r.pad
	if m.Icon != nil && !m.Icon.Bounds().Empty() {
		top := (h - r.icon) / 2
		box := image.Rect(x, top, x+r.icon, top+r.icon)
		draw.ApproxBiLinear.Scale(img, box, m.Icon, m.Icon.Bounds(), draw.Over, nil)
		x += r.icon + r.pad/2
	}
	if m.Title != "" {
		r.text(img, Truncate(m.Title, TitleCells), x, r.fg)
	}

	if m.Status != "" {
		sw := r.textWidth(m.Status)
		sx := width - sw - r.pad
		if sx < x {
			sx = x
		}
		fill(img, image.Rect(sx-r.pad/2, 0, width, h), r.bg)
		r.text(img, m.Status, sx, r.fg)
	}
	return img
}

// marker draws the occupied indicator in the top-left corner of a cell;
// solid when the focused client carries the tag.
func (r *Renderer) marker(img *image.RGBA, x int, c color.RGBA, solid bool) {
	off, size := r.height/7, r.height/6
	if size < 2 {
		size = 2
	}
	box := image.Rect(x+off, off, x+off+size, off+size)
	if solid {
		fill(img, box, c)
		return
	}
	for px := box.Min.X; px < box.Max.X; px++ {
		img.SetRGBA(px, box.Min.Y, c)
		img.SetRGBA(px, box.Max.Y-1, c)
	}
	for py := box.Min.Y; py < box.Max.Y; py++ {
		img.SetRGBA(box.Min.X, py, c)
		img.SetRGBA(box.Max.X-1, py, c)
	}
}

func (r *Renderer) text(img *image.RGBA, s string, x int, c color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot:  fixed.P(x, r.ascent),
	}
	d.DrawString(s)
}

func (r *Renderer) textWidth(s string) int {
	return font.MeasureString(r.face, s).Ceil()
}

func fill(img *image.RGBA, rect image.Rectangle, c color.RGBA) {
	draw.Draw(img, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// Truncate shortens s to at most cells display cells, marking the cut with
// an ellipsis.
func Truncate(s string, cells int) string {
	if runewidth.StringWidth(s) <= cells {
		return s
	}
	return runewidth.Truncate(s, cells, "…")
}
