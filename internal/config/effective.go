package config

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig overlays raw onto the defaults. A value that fails
// validation is dropped in favour of its default and reported in the
// returned warnings; the resulting config always validates.
func BuildEffectiveConfig(raw RawConfig, sources map[string]Source) (*Config, []error) {
	cfg := DefaultConfig()
	var warnings []error
	reject := func(path string, err error) {
		warnings = append(warnings, &ValidationError{Path: path, Source: sources[path], Err: err})
	}

	if raw.Modifier != nil {
		if err := validateModifier(*raw.Modifier); err != nil {
			reject("modifier", err)
		} else {
			cfg.Modifier = strings.TrimSpace(*raw.Modifier)
		}
	}
	if raw.Tags != nil {
		if err := validateTags(*raw.Tags); err != nil {
			reject("tags", err)
		} else {
			cfg.Tags = append([]string(nil), (*raw.Tags)...)
		}
	}
	if raw.FocusFollowsPointer != nil {
		cfg.FocusFollowsPointer = *raw.FocusFollowsPointer
	}
	if raw.RestartOnConfigChange != nil {
		cfg.RestartOnConfigChange = *raw.RestartOnConfigChange
	}
	if raw.LogLevel != nil {
		if err := validateLogLevel(*raw.LogLevel); err != nil {
			reject("log_level", err)
		} else {
			cfg.LogLevel = *raw.LogLevel
		}
	}

	if l := raw.Layout; l != nil {
		applyLayout(&cfg.Layout, l, reject)
	}

	if c := raw.Colors; c != nil {
		applyColor(&cfg.Colors.Background, c.Background, "colors.background", reject)
		applyColor(&cfg.Colors.Foreground, c.Foreground, "colors.foreground", reject)
		applyColor(&cfg.Colors.BorderFocused, c.BorderFocused, "colors.border_focused", reject)
		applyColor(&cfg.Colors.BorderNormal, c.BorderNormal, "colors.border_normal", reject)
	}

	if b := raw.Bar; b != nil {
		if b.Enabled != nil {
			cfg.Bar.Enabled = *b.Enabled
		}
		if b.Font != nil {
			cfg.Bar.Font = strings.TrimSpace(*b.Font)
		}
		if b.FontSize != nil {
			if err := validateFontSize(*b.FontSize); err != nil {
				reject("bar.font_size", err)
			} else {
				cfg.Bar.FontSize = *b.FontSize
			}
		}
	}

	// User commands extend (and override) the stock ones.
	names := make([]string, 0, len(raw.Commands))
	for name := range raw.Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := raw.Commands[name]
		if err := validateCommand(name, cmd); err != nil {
			reject("commands."+name, err)
			continue
		}
		cfg.Commands[name] = cmd
	}

	// A keybindings list replaces the stock table; bad entries are skipped.
	if raw.Keybindings != nil {
		bindings := make([]Binding, 0, len(*raw.Keybindings))
		for i, b := range *raw.Keybindings {
			if err := validateBinding(b); err != nil {
				reject(fmt.Sprintf("keybindings[%d]", i), err)
				continue
			}
			bindings = append(bindings, b)
		}
		cfg.Keybindings = bindings
	}

	return cfg, warnings
}

func applyLayout(dst *LayoutConfig, l *RawLayout, reject func(string, error)) {
	if l.RatioMin != nil || l.RatioMax != nil {
		lo, hi := dst.RatioMin, dst.RatioMax
		if l.RatioMin != nil {
			lo = *l.RatioMin
		}
		if l.RatioMax != nil {
			hi = *l.RatioMax
		}
		if err := validateRatioBand(lo, hi); err != nil {
			reject("layout.ratio_min", err)
		} else {
			dst.RatioMin, dst.RatioMax = lo, hi
		}
	}
	if l.Ratio != nil {
		if math.IsNaN(*l.Ratio) {
			reject("layout.ratio", fmt.Errorf("ratio must be a number"))
		} else {
			dst.Ratio = *l.Ratio
		}
	}
	if dst.Ratio < dst.RatioMin || dst.Ratio > dst.RatioMax {
		if l.Ratio != nil {
			reject("layout.ratio", fmt.Errorf("ratio %.2f outside [%.2f, %.2f], clamped", dst.Ratio, dst.RatioMin, dst.RatioMax))
		}
		dst.Ratio = clamp(dst.Ratio, dst.RatioMin, dst.RatioMax)
	}
	if l.RatioStep != nil {
		if !validRatioStep(*l.RatioStep) {
			reject("layout.ratio_step", fmt.Errorf("ratio_step must be in (0, 0.5]"))
		} else {
			dst.RatioStep = *l.RatioStep
		}
	}
	if l.MasterCount != nil {
		if *l.MasterCount < 0 || *l.MasterCount > 16 {
			reject("layout.master_count", fmt.Errorf("master_count must be between 0 and 16"))
		} else {
			dst.MasterCount = *l.MasterCount
		}
	}
	if l.Gap != nil {
		if *l.Gap < 0 || *l.Gap > 1000 {
			reject("layout.gap", fmt.Errorf("gap must be between 0 and 1000"))
		} else {
			dst.Gap = *l.Gap
		}
	}
	if l.Border != nil {
		if *l.Border < 0 || *l.Border > 100 {
			reject("layout.border", fmt.Errorf("border must be between 0 and 100"))
		} else {
			dst.Border = *l.Border
		}
	}
}

func applyColor(dst *string, value *string, path string, reject func(string, error)) {
	if value == nil {
		return
	}
	if _, err := ParseColor(*value); err != nil {
		reject(path, err)
		return
	}
	*dst = strings.TrimSpace(*value)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
