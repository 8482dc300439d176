package x11

import (
	"image"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Icon returns the _NET_WM_ICON entry best suited to a size-pixel square,
// or nil when the window has none.
func (c *Connection) Icon(win xproto.Window, size int) (*image.NRGBA, error) {
	icons, err := ewmh.WmIconGet(c.XUtil, win)
	if err != nil {
		return nil, err
	}
	return iconImage(icons, size), nil
}

// iconImage picks the smallest icon at least size wide, or the largest one
// when all are smaller, and converts its ARGB words.
func iconImage(icons []ewmh.WmIcon, size int) *image.NRGBA {
	var best *ewmh.WmIcon
	for i := range icons {
		ic := &icons[i]
		if ic.Width == 0 || ic.Height == 0 || uint(len(ic.Data)) < ic.Width*ic.Height {
			continue
		}
		switch {
		case best == nil:
			best = ic
		case int(best.Width) < size:
			if ic.Width > best.Width {
				best = ic
			}
		case int(ic.Width) >= size && ic.Width < best.Width:
			best = ic
		}
	}
	if best == nil {
		return nil
	}

	w, h := int(best.Width), int(best.Height)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, argb := range best.Data[:w*h] {
		img.Pix[4*i] = uint8(argb >> 16)
		img.Pix[4*i+1] = uint8(argb >> 8)
		img.Pix[4*i+2] = uint8(argb)
		img.Pix[4*i+3] = uint8(argb >> 24)
	}
	return img
}
