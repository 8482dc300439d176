package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// KeyID identifies a grabbed key by its clean modifier state and keycode.
type KeyID struct {
	Mods uint16
	Code xproto.Keycode
}

// ConfigureIgnoreMods makes grabs fire regardless of CapsLock, NumLock and
// ScrollLock, and returns the union of those masks so key press states
// can be cleaned before lookup.
func (c *Connection) ConfigureIgnoreMods() uint16 {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := c.modMaskForKeysym("Num_Lock")
	scrollLock := c.modMaskForKeysym("Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	ignore := []uint16{0}
	var union uint16
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		ignore = append(ignore, mask)
		union |= mask
	}

	xevent.IgnoreMods = ignore
	return union
}

func (c *Connection) modMaskForKeysym(keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(c.XUtil, keysym) {
		if mask := keybind.ModGet(c.XUtil, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}

// GrabKey grabs every keycode producing spec ("Mod4-Shift-Return") on the
// root window and returns the ids a matching key press will carry.
func (c *Connection) GrabKey(spec string) ([]KeyID, error) {
	mods, codes, err := keybind.ParseString(c.XUtil, spec)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no keycode for %q", spec)
	}
	ids := make([]KeyID, 0, len(codes))
	for _, code := range codes {
		if err := keybind.GrabChecked(c.XUtil, c.Root, mods, code); err != nil {
			return ids, fmt.Errorf("failed to grab %s: %w", spec, err)
		}
		ids = append(ids, KeyID{Mods: mods, Code: code})
	}
	return ids, nil
}

// UngrabKeys releases every key grab on the root window.
func (c *Connection) UngrabKeys() {
	xproto.UngrabKey(c.Conn(), xproto.GrabAny, c.Root, xproto.ModMaskAny)
}

// RefreshKeymap reloads the keycode and modifier maps after a
// MappingNotify. Grabs must be renewed afterwards.
func (c *Connection) RefreshKeymap() {
	keybind.Initialize(c.XUtil)
}
