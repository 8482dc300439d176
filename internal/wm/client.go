package wm

import (
	"image"

	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/tiling"
)

// Client is a managed window.
type Client struct {
	Window     platform.Window
	Title      string
	Tags       TagMask
	Floating   bool
	Fullscreen bool
	Float      tiling.Rect // outer geometry used while floating
	Border     int
	Monitor    int // ID of the owning monitor
	LastFocus  uint64

	seq uint64

	// What the server was last told. A zero rect means never configured.
	applied       tiling.Rect
	appliedBorder int
	borderPixel   uint32
	borderSet     bool
	hidden        bool

	icon       image.Image
	iconLoaded bool
}

// Tiled reports whether the client takes part in the layout.
func (c *Client) Tiled() bool {
	return !c.Floating && !c.Fullscreen
}

// Outer is the last applied geometry including the border, falling back
// to the floating geometry for clients never placed.
func (c *Client) Outer() tiling.Rect {
	if c.applied.Width == 0 {
		return c.Float
	}
	r := c.applied
	r.Width += 2 * c.appliedBorder
	r.Height += 2 * c.appliedBorder
	return r
}
