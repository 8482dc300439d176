package hotkeys

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/1broseidon/tagwm/internal/config"
)

// Kind identifies what a binding does.
type Kind string

const (
	Spawn          Kind = "spawn"
	Close          Kind = "close"
	FocusNext      Kind = "focus_next"
	FocusPrev      Kind = "focus_prev"
	SwapMaster     Kind = "swap_master"
	Ratio          Kind = "ratio"
	View           Kind = "view"
	MoveToTag      Kind = "move_to_tag"
	NextTag        Kind = "next_tag"
	PrevTag        Kind = "prev_tag"
	ToggleFloating Kind = "toggle_floating"
	Masters        Kind = "masters"
	Fullscreen     Kind = "fullscreen"
	Quit           Kind = "quit"
	Restart        Kind = "restart"
)

var kinds = map[Kind]bool{
	Spawn: true, Close: true, FocusNext: true, FocusPrev: true, SwapMaster: true,
	Ratio: true, View: true, MoveToTag: true, NextTag: true, PrevTag: true,
	ToggleFloating: true, Masters: true, Fullscreen: true, Quit: true, Restart: true,
}

// tagged reports whether the kind takes a tag index.
func (k Kind) tagged() bool {
	return k == View || k == MoveToTag
}

// Action is the resolved effect of a chord.
type Action struct {
	Kind    Kind
	Command string  // spawn: shell line
	Name    string  // spawn: command name, for logs
	Delta   float64 // ratio and masters step; 0 means the default step
	Tag     int     // view and move_to_tag: zero-based tag index
}

// Table maps chords to actions. Built once from configuration.
type Table struct {
	exact    map[Chord]Action
	wildcard map[Mod]Action
	tagCount int
}

// Build resolves bindings against the configured modifier and command set.
// Invalid entries are skipped and reported; for duplicate chords the last
// binding wins.
func Build(bindings []config.Binding, modifier string, commands map[string]string, tagCount int) (*Table, []error) {
	t := &Table{
		exact:    make(map[Chord]Action),
		wildcard: make(map[Mod]Action),
		tagCount: tagCount,
	}
	var errs []error
	for i, b := range bindings {
		path := fmt.Sprintf("keybindings[%d]", i)
		chord, err := ParseChord(b.Keys, modifier)
		if err != nil {
			errs = append(errs, &config.ValidationError{Path: path, Err: err})
			continue
		}
		action, err := resolve(b, commands)
		if err != nil {
			errs = append(errs, &config.ValidationError{Path: path, Err: err})
			continue
		}
		if chord.Key == Wildcard {
			if !action.Kind.tagged() {
				errs = append(errs, &config.ValidationError{Path: path, Err: fmt.Errorf("%q only applies to view and move_to_tag", Wildcard)})
				continue
			}
			t.wildcard[chord.Mods] = action
			continue
		}
		if action.Kind.tagged() {
			errs = append(errs, &config.ValidationError{Path: path, Err: fmt.Errorf("%s needs the %q key", action.Kind, Wildcard)})
			continue
		}
		t.exact[chord] = action
	}
	return t, errs
}

func resolve(b config.Binding, commands map[string]string) (Action, error) {
	kind := Kind(strings.TrimSpace(b.Action))
	if !kinds[kind] {
		return Action{}, fmt.Errorf("unknown action %q", b.Action)
	}
	a := Action{Kind: kind, Delta: b.Delta}
	if kind != Spawn {
		return a, nil
	}

	name := strings.TrimSpace(b.Command)
	if line, ok := commands[name]; ok {
		a.Command, a.Name = line, name
	} else {
		a.Command = name
		if fields := strings.Fields(name); len(fields) > 0 {
			a.Name = fields[0]
		}
	}
	if strings.TrimSpace(a.Command) == "" {
		return Action{}, fmt.Errorf("spawn requires a command")
	}
	return a, nil
}

// Lookup returns the action bound to chord. Exact bindings take precedence
// over the numeral wildcard.
func (t *Table) Lookup(c Chord) (Action, bool) {
	if t == nil {
		return Action{}, false
	}
	if a, ok := t.exact[c]; ok {
		return a, true
	}
	n, ok := numeral(c.Key)
	if !ok || n > t.tagCount {
		return Action{}, false
	}
	a, ok := t.wildcard[c.Mods]
	if !ok {
		return Action{}, false
	}
	a.Tag = n - 1
	return a, true
}

// Chords lists every concrete chord the table responds to, with wildcards
// expanded to the configured tag numerals, in a stable order.
func (t *Table) Chords() []Chord {
	if t == nil {
		return nil
	}
	seen := make(map[Chord]bool)
	for c := range t.exact {
		seen[c] = true
	}
	for mods := range t.wildcard {
		for n := 1; n <= t.tagCount && n <= 9; n++ {
			seen[Chord{Mods: mods, Key: strconv.Itoa(n)}] = true
		}
	}
	out := make([]Chord, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mods != out[j].Mods {
			return out[i].Mods < out[j].Mods
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Len reports the number of bindings, counting a wildcard once.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.exact) + len(t.wildcard)
}

func numeral(key string) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	return int(key[0] - '0'), true
}
