package hotkeys

import (
	"fmt"
	"strings"
)

// Mod is a set of keyboard modifiers. The bit values match the X core
// protocol modifier masks so a backend can translate with a plain cast.
type Mod uint16

const (
	ModShift   Mod = 1 << 0
	ModControl Mod = 1 << 2
	ModAlt     Mod = 1 << 3 // Mod1
	Mod2       Mod = 1 << 4
	Mod3       Mod = 1 << 5
	ModSuper   Mod = 1 << 6 // Mod4
	Mod5       Mod = 1 << 7

	ModMask = ModShift | ModControl | ModAlt | Mod2 | Mod3 | ModSuper | Mod5
)

// Wildcard is the key token that matches any tag numeral.
const Wildcard = "#"

var modNames = map[string]Mod{
	"shift":   ModShift,
	"control": ModControl,
	"ctrl":    ModControl,
	"alt":     ModAlt,
	"mod1":    ModAlt,
	"mod2":    Mod2,
	"mod3":    Mod3,
	"super":   ModSuper,
	"mod4":    ModSuper,
	"mod5":    Mod5,
}

// ParseMod resolves a modifier name such as "Mod4", "Super" or "ctrl".
func ParseMod(name string) (Mod, error) {
	m, ok := modNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown modifier %q", name)
	}
	return m, nil
}

// String renders the set in the "Mod4-Shift" form understood by xgbutil's
// keybind parser.
func (m Mod) String() string {
	var parts []string
	for _, p := range []struct {
		bit  Mod
		name string
	}{
		{ModShift, "Shift"},
		{ModControl, "Control"},
		{ModAlt, "Mod1"},
		{Mod2, "Mod2"},
		{Mod3, "Mod3"},
		{ModSuper, "Mod4"},
		{Mod5, "Mod5"},
	} {
		if m&p.bit != 0 {
			parts = append(parts, p.name)
		}
	}
	return strings.Join(parts, "-")
}

// Chord is a modifier set plus an X keysym name.
type Chord struct {
	Mods Mod
	Key  string
}

// String renders the chord as "Shift-Mod4-Return".
func (c Chord) String() string {
	if c.Mods == 0 {
		return c.Key
	}
	return c.Mods.String() + "-" + c.Key
}

// ParseChord parses a key spec such as "MOD+SHIFT+Return". The token MOD
// stands for modifier; the final token is the keysym name and may be the
// numeral Wildcard.
func ParseChord(spec, modifier string) (Chord, error) {
	tokens := strings.Split(strings.TrimSpace(spec), "+")
	if len(tokens) == 0 || strings.TrimSpace(spec) == "" {
		return Chord{}, fmt.Errorf("empty key spec")
	}

	var chord Chord
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return Chord{}, fmt.Errorf("key spec %q has an empty token", spec)
		}
		if i == len(tokens)-1 {
			chord.Key = tok
			break
		}
		if strings.EqualFold(tok, "MOD") {
			tok = modifier
		}
		m, err := ParseMod(tok)
		if err != nil {
			return Chord{}, fmt.Errorf("key spec %q: %w", spec, err)
		}
		chord.Mods |= m
	}
	return chord, nil
}
