package bar

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	testBG = 0x11111b
	testFG = 0x74c7ec
)

var (
	bgPixel = color.RGBA{R: 0x11, G: 0x11, B: 0x1b, A: 0xff}
	fgPixel = color.RGBA{R: 0x74, G: 0xc7, B: 0xec, A: 0xff}
)

func TestRenderer_HeightFromFontMetrics(t *testing.T) {
	r := NewRenderer(basicfont.Face7x13, testBG, testFG)
	if r.Height() != 19 {
		t.Fatalf("expected height 19 for the 7x13 face, got %d", r.Height())
	}
	img := r.Render(Model{}, 300)
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 19 {
		t.Fatalf("unexpected bounds %v", b)
	}
	if got := img.RGBAAt(150, 10); got != bgPixel {
		t.Fatalf("empty bar should be background, got %v", got)
	}
}

func TestRender_TagCells(t *testing.T) {
	r := NewRenderer(nil, testBG, testFG)
	h := r.Height()
	img := r.Render(Model{Tags: []TagCell{
		{Label: "1", Active: true},
		{Label: "2", Occupied: true},
		{Label: "3", Occupied: true, Focused: true},
		{Label: "4"},
	}}, 400)

	if got := img.RGBAAt(0, h-1); got != fgPixel {
		t.Fatalf("active cell should be inverted, got %v", got)
	}
	if got := img.RGBAAt(h, h-1); got != bgPixel {
		t.Fatalf("inactive cell should use the background, got %v", got)
	}

	off := h / 7
	// Occupied: outlined marker, hollow centre.
	if got := img.RGBAAt(h+off, off); got != fgPixel {
		t.Fatalf("expected marker outline, got %v", got)
	}
	if got := img.RGBAAt(h+off+1, off+1); got != bgPixel {
		t.Fatalf("expected hollow marker, got %v", got)
	}
	// Occupied by the focused client: solid marker.
	if got := img.RGBAAt(2*h+off+1, off+1); got != fgPixel {
		t.Fatalf("expected solid marker, got %v", got)
	}
	// Empty cell: no marker.
	if got := img.RGBAAt(3*h+off, off); got != bgPixel {
		t.Fatalf("empty tag should have no marker, got %v", got)
	}
}

func TestRender_StatusIsRightAligned(t *testing.T) {
	r := NewRenderer(nil, testBG, testFG)
	const width = 400
	img := r.Render(Model{Status: "ok"}, width)

	sw := r.textWidth("ok")
	lo, hi := width-sw-r.pad, width-r.pad
	found := false
	for x := lo; x < hi && !found; x++ {
		for y := 0; y < r.Height(); y++ {
			if img.RGBAAt(x, y) == fgPixel {
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatalf("expected status glyphs in [%d, %d)", lo, hi)
	}
	for x := 0; x < lo-r.pad; x++ {
		for y := 0; y < r.Height(); y++ {
			if img.RGBAAt(x, y) != bgPixel {
				t.Fatalf("unexpected ink at (%d, %d)", x, y)
			}
		}
	}
}

func solidIcon(size int, c color.Color) *image.NRGBA {
	icon := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			icon.Set(x, y, c)
		}
	}
	return icon
}

func TestRender_IconBeforeTitle(t *testing.T) {
	r := NewRenderer(nil, testBG, testFG)
	red := color.NRGBA{R: 0xff, A: 0xff}
	img := r.Render(Model{Icon: solidIcon(48, red)}, 300)

	top := (r.Height() - r.IconSize()) / 2
	cx, cy := r.pad+r.IconSize()/2, top+r.IconSize()/2
	if got := img.RGBAAt(cx, cy); got.R < 0xf0 || got.G > 0x10 || got.B > 0x10 {
		t.Fatalf("icon centre = %v, want red", got)
	}
	if got := img.RGBAAt(r.pad/2, cy); got != bgPixel {
		t.Fatalf("left of the icon = %v, want background", got)
	}
	if got := img.RGBAAt(r.pad+r.IconSize()+1, cy); got != bgPixel {
		t.Fatalf("right of the icon = %v, want background", got)
	}
}

func TestTruncate(t *testing.T) {
	short := "terminal"
	if got := Truncate(short, TitleCells); got != short {
		t.Fatalf("short title changed: %q", got)
	}

	long := strings.Repeat("abcdef", 20)
	got := Truncate(long, TitleCells)
	if runewidth.StringWidth(got) > TitleCells || !strings.HasSuffix(got, "…") {
		t.Fatalf("unexpected truncation %q", got)
	}

	wide := strings.Repeat("世界", 30)
	if w := runewidth.StringWidth(Truncate(wide, TitleCells)); w > TitleCells {
		t.Fatalf("wide title exceeds %d cells: %d", TitleCells, w)
	}
}

func TestLoadFace(t *testing.T) {
	face, err := LoadFace("", 12)
	if err != nil || face != basicfont.Face7x13 {
		t.Fatalf("empty path should select the built-in face, got %v %v", face, err)
	}

	face, err = LoadFace(filepath.Join(t.TempDir(), "missing.ttf"), 12)
	if err == nil {
		t.Fatalf("expected error for missing font")
	}
	if face != basicfont.Face7x13 {
		t.Fatalf("missing font should fall back to the built-in face")
	}

	bogus := filepath.Join(t.TempDir(), "bogus.ttf")
	if err := os.WriteFile(bogus, []byte("not a font"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if face, err := LoadFace(bogus, 12); err == nil || face != basicfont.Face7x13 {
		t.Fatalf("expected fallback for unparsable font, got %v %v", face, err)
	}

	path := filepath.Join(t.TempDir(), "goregular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	face, err = LoadFace(path, 16)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	r := NewRenderer(face, testBG, testFG)
	if r.Height() <= 16 {
		t.Fatalf("expected a bar taller than the point size, got %d", r.Height())
	}
	if img := r.Render(Model{Title: "hello"}, 200); img.Bounds().Dy() != r.Height() {
		t.Fatalf("unexpected raster height %d", img.Bounds().Dy())
	}
}

func TestModelEqual(t *testing.T) {
	a := Model{Tags: []TagCell{{Label: "1", Active: true}}, Title: "x"}
	b := Model{Tags: []TagCell{{Label: "1", Active: true}}, Title: "x"}
	if !a.Equal(b) {
		t.Fatalf("expected equal models")
	}
	b.Tags[0].Occupied = true
	if a.Equal(b) {
		t.Fatalf("expected tag change to be detected")
	}
	if a.Equal(Model{Title: "x"}) {
		t.Fatalf("expected tag count change to be detected")
	}

	icon := solidIcon(2, color.White)
	c := Model{Title: "x", Icon: icon}
	if !c.Equal(Model{Title: "x", Icon: icon}) {
		t.Fatalf("expected the same icon to compare equal")
	}
	if c.Equal(Model{Title: "x", Icon: solidIcon(2, color.White)}) {
		t.Fatalf("expected a new icon image to force a redraw")
	}
}
