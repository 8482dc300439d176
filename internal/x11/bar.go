package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
)

// BarWindow is an override-redirect window the manager paints itself.
type BarWindow struct {
	ID     xproto.Window
	gc     xproto.Gcontext
	X, Y   int
	Width  int
	Height int
}

// CreateBar creates and maps a bar window at the given geometry.
func (c *Connection) CreateBar(x, y, width, height int, background uint32) (*BarWindow, error) {
	conn := c.Conn()
	screen := c.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	// override_redirect keeps the bar out of our own MapRequest handling.
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		c.Root,
		int16(x), int16(y),
		uint16(width), uint16(height),
		0, // border_width
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{background, 1, xproto.EventMaskExposure},
	).Check()
	if err != nil {
		return nil, fmt.Errorf("failed to create bar window: %w", err)
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.DestroyWindow(conn, wid)
		return nil, err
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(wid), xproto.GcGraphicsExposures, []uint32{0}).Check(); err != nil {
		xproto.DestroyWindow(conn, wid)
		return nil, fmt.Errorf("failed to create bar gc: %w", err)
	}

	xproto.MapWindow(conn, wid)
	return &BarWindow{ID: wid, gc: gc, X: x, Y: y, Width: width, Height: height}, nil
}

// MoveBar updates the geometry of a bar after an output change.
func (c *Connection) MoveBar(b *BarWindow, x, y, width, height int) {
	if b.X == x && b.Y == y && b.Width == width && b.Height == height {
		return
	}
	b.X, b.Y, b.Width, b.Height = x, y, width, height
	xproto.ConfigureWindow(c.Conn(), b.ID,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(int32(x)), uint32(int32(y)), uint32(width), uint32(height)})
	xproto.ConfigureWindow(c.Conn(), b.ID, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
}

// DestroyBar frees the bar's server resources.
func (c *Connection) DestroyBar(b *BarWindow) {
	xproto.FreeGC(c.Conn(), b.gc)
	xproto.DestroyWindow(c.Conn(), b.ID)
}

// PutRGBA uploads img as a 24/32-bit ZPixmap, split into as many requests
// as the server's maximum request length needs.
func (c *Connection) PutRGBA(b *BarWindow, img *image.RGBA) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return
	}

	// Request header is 24 bytes; the length limit is in 4-byte units.
	maxBytes := int(xproto.Setup(c.Conn()).MaximumRequestLength)*4 - 24
	rows := maxBytes / (w * 4)
	if rows < 1 {
		rows = 1
	}

	depth := c.XUtil.Screen().RootDepth
	for y0 := 0; y0 < h; y0 += rows {
		n := rows
		if y0+n > h {
			n = h - y0
		}
		data := make([]byte, 0, w*n*4)
		for y := y0; y < y0+n; y++ {
			for x := 0; x < w; x++ {
				px := img.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
				// Little-endian BGRX.
				data = append(data, px.B, px.G, px.R, 0)
			}
		}
		xproto.PutImage(c.Conn(), xproto.ImageFormatZPixmap, xproto.Drawable(b.ID), b.gc,
			uint16(w), uint16(n), 0, int16(y0), 0, depth, data)
	}
}
