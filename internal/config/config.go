package config

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// MaxTags is the largest number of tags a configuration may declare.
const MaxTags = 32

// LayoutConfig holds the master-stack tuning parameters.
type LayoutConfig struct {
	Ratio       float64 `yaml:"ratio" toml:"ratio"`               // Initial master share of the usable width.
	RatioStep   float64 `yaml:"ratio_step" toml:"ratio_step"`     // Default delta for ratio bindings without one.
	RatioMin    float64 `yaml:"ratio_min" toml:"ratio_min"`       // Lower clamp, strictly above 0.
	RatioMax    float64 `yaml:"ratio_max" toml:"ratio_max"`       // Upper clamp, strictly below 1.
	MasterCount int     `yaml:"master_count" toml:"master_count"` // Windows in the master column.
	Gap         int     `yaml:"gap" toml:"gap"`
	Border      int     `yaml:"border" toml:"border"`
}

// Colors are hex strings such as "#11111b".
type Colors struct {
	Background    string `yaml:"background" toml:"background"`
	Foreground    string `yaml:"foreground" toml:"foreground"`
	BorderFocused string `yaml:"border_focused" toml:"border_focused"`
	BorderNormal  string `yaml:"border_normal" toml:"border_normal"`
}

// BarConfig configures the status bar.
type BarConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`
	// Font is a path to a TrueType/OpenType file. Empty selects the built-in font.
	Font     string  `yaml:"font" toml:"font"`
	FontSize float64 `yaml:"font_size" toml:"font_size"`
}

// Binding maps a key chord to an action.
//
//	keys: "MOD+SHIFT+#"   # '#' matches any tag numeral
//	action: move_to_tag
type Binding struct {
	Keys    string  `yaml:"keys" toml:"keys"`
	Action  string  `yaml:"action" toml:"action"`
	Command string  `yaml:"command,omitempty" toml:"command,omitempty"` // spawn: a name from commands or a literal shell line
	Delta   float64 `yaml:"delta,omitempty" toml:"delta,omitempty"`     // ratio, focus, tag and master steps
}

// Config is the effective, validated configuration snapshot.
type Config struct {
	Modifier              string            `yaml:"modifier" toml:"modifier"`
	Tags                  []string          `yaml:"tags" toml:"tags"`
	FocusFollowsPointer   bool              `yaml:"focus_follows_pointer" toml:"focus_follows_pointer"`
	RestartOnConfigChange bool              `yaml:"restart_on_config_change" toml:"restart_on_config_change"`
	LogLevel              string            `yaml:"log_level" toml:"log_level"`
	Layout                LayoutConfig      `yaml:"layout" toml:"layout"`
	Colors                Colors            `yaml:"colors" toml:"colors"`
	Bar                   BarConfig         `yaml:"bar" toml:"bar"`
	Commands              map[string]string `yaml:"commands" toml:"commands"`
	Keybindings           []Binding         `yaml:"keybindings" toml:"keybindings"`
}

// Palette holds the configured colours as 0xRRGGBB pixels.
type Palette struct {
	Background    uint32
	Foreground    uint32
	BorderFocused uint32
	BorderNormal  uint32
}

func DefaultConfig() *Config {
	return &Config{
		Modifier:              "Mod4",
		Tags:                  []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"},
		FocusFollowsPointer:   true,
		RestartOnConfigChange: false,
		LogLevel:              "info",
		Layout: LayoutConfig{
			Ratio:       0.5,
			RatioStep:   0.05,
			RatioMin:    0.15,
			RatioMax:    0.85,
			MasterCount: 1,
			Gap:         10,
			Border:      1,
		},
		Colors: Colors{
			Background:    "#11111b",
			Foreground:    "#74c7ec",
			BorderFocused: "#74c7ec",
			BorderNormal:  "#11111b",
		},
		Bar: BarConfig{
			Enabled:  true,
			Font:     "",
			FontSize: 12,
		},
		Commands: map[string]string{
			"terminal":        "alacritty",
			"browser":         "librewolf",
			"launcher":        "rofi -show drun",
			"screenshot":      "maim --select | xclip -selection clipboard -t image/png",
			"volume_up":       "pactl set-sink-volume @DEFAULT_SINK@ +5%",
			"volume_down":     "pactl set-sink-volume @DEFAULT_SINK@ -5%",
			"volume_mute":     "pactl set-sink-mute @DEFAULT_SINK@ toggle",
			"brightness_up":   "light -A 5",
			"brightness_down": "light -U 5",
		},
		Keybindings: DefaultKeybindings(),
	}
}

// DefaultKeybindings returns the stock key table.
func DefaultKeybindings() []Binding {
	return []Binding{
		{Keys: "MOD+CONTROL+Return", Action: "spawn", Command: "terminal"},
		{Keys: "MOD+CONTROL+l", Action: "spawn", Command: "browser"},
		{Keys: "MOD+c", Action: "spawn", Command: "launcher"},
		{Keys: "MOD+u", Action: "spawn", Command: "screenshot"},
		{Keys: "MOD+q", Action: "close"},
		{Keys: "MOD+CONTROL+q", Action: "quit"},
		{Keys: "MOD+CONTROL+r", Action: "restart"},
		{Keys: "MOD+h", Action: "ratio", Delta: -0.05},
		{Keys: "MOD+j", Action: "ratio", Delta: 0.05},
		{Keys: "MOD+k", Action: "focus_next"},
		{Keys: "MOD+l", Action: "focus_prev"},
		{Keys: "MOD+i", Action: "masters", Delta: 1},
		{Keys: "MOD+d", Action: "masters", Delta: -1},
		{Keys: "MOD+Return", Action: "swap_master"},
		{Keys: "MOD+space", Action: "toggle_floating"},
		{Keys: "MOD+f", Action: "fullscreen"},
		{Keys: "MOD+Left", Action: "prev_tag"},
		{Keys: "MOD+Right", Action: "next_tag"},
		{Keys: "MOD+#", Action: "view"},
		{Keys: "MOD+SHIFT+#", Action: "move_to_tag"},
		{Keys: "XF86AudioRaiseVolume", Action: "spawn", Command: "volume_up"},
		{Keys: "XF86AudioLowerVolume", Action: "spawn", Command: "volume_down"},
		{Keys: "XF86AudioMute", Action: "spawn", Command: "volume_mute"},
		{Keys: "XF86MonBrightnessUp", Action: "spawn", Command: "brightness_up"},
		{Keys: "XF86MonBrightnessDown", Action: "spawn", Command: "brightness_down"},
	}
}

// Palette parses the configured colours. Validated configs never fail here;
// unparsable values fall back to the default colour.
func (c *Config) Palette() Palette {
	def := DefaultConfig().Colors
	pick := func(value, fallback string) uint32 {
		if px, err := ParseColor(value); err == nil {
			return px
		}
		px, _ := ParseColor(fallback)
		return px
	}
	return Palette{
		Background:    pick(c.Colors.Background, def.Background),
		Foreground:    pick(c.Colors.Foreground, def.Foreground),
		BorderFocused: pick(c.Colors.BorderFocused, def.BorderFocused),
		BorderNormal:  pick(c.Colors.BorderNormal, def.BorderNormal),
	}
}

// ParseColor converts "#rrggbb" (or "#rgb") into a 0xRRGGBB pixel value.
func ParseColor(s string) (uint32, error) {
	col, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	r, g, b := col.RGB255()
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b), nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if err := validateModifier(c.Modifier); err != nil {
		return &ValidationError{Path: "modifier", Err: err}
	}
	if err := validateTags(c.Tags); err != nil {
		return &ValidationError{Path: "tags", Err: err}
	}
	if err := validateLogLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	if err := validateLayout(c.Layout); err != nil {
		return err
	}
	for path, value := range map[string]string{
		"colors.background":     c.Colors.Background,
		"colors.foreground":     c.Colors.Foreground,
		"colors.border_focused": c.Colors.BorderFocused,
		"colors.border_normal":  c.Colors.BorderNormal,
	} {
		if _, err := ParseColor(value); err != nil {
			return &ValidationError{Path: path, Err: err}
		}
	}
	if err := validateFontSize(c.Bar.FontSize); err != nil {
		return &ValidationError{Path: "bar.font_size", Err: err}
	}
	for name, cmd := range c.Commands {
		if err := validateCommand(name, cmd); err != nil {
			return &ValidationError{Path: "commands." + name, Err: err}
		}
	}
	for i, b := range c.Keybindings {
		if err := validateBinding(b); err != nil {
			return &ValidationError{Path: fmt.Sprintf("keybindings[%d]", i), Err: err}
		}
	}
	return nil
}

var validModifiers = map[string]bool{
	"mod1": true, "mod2": true, "mod3": true, "mod4": true, "mod5": true,
	"alt": true, "super": true, "control": true, "ctrl": true, "shift": true,
}

func validateModifier(mod string) error {
	if !validModifiers[strings.ToLower(strings.TrimSpace(mod))] {
		return fmt.Errorf("modifier must be one of: Mod1-Mod5, Alt, Super, Control, Shift")
	}
	return nil
}

func validateTags(tags []string) error {
	if len(tags) == 0 || len(tags) > MaxTags {
		return fmt.Errorf("tags must list between 1 and %d labels", MaxTags)
	}
	for i, label := range tags {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("tag %d has an empty label", i+1)
		}
	}
	return nil
}

func validateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warning", "warn", "error":
		return nil
	}
	return fmt.Errorf("log_level must be one of: debug, info, warning, error")
}

// inOpenUnit reports whether v lies in (0, 1). NaN never does.
func inOpenUnit(v float64) bool {
	return v > 0 && v < 1
}

func validateRatioBand(lo, hi float64) error {
	if !inOpenUnit(lo) {
		return fmt.Errorf("ratio_min must be in (0, 1)")
	}
	if !inOpenUnit(hi) {
		return fmt.Errorf("ratio_max must be in (0, 1)")
	}
	if !(lo < hi) {
		return fmt.Errorf("ratio_min must be below ratio_max")
	}
	return nil
}

func validateLayout(l LayoutConfig) error {
	if err := validateRatioBand(l.RatioMin, l.RatioMax); err != nil {
		return &ValidationError{Path: "layout", Err: err}
	}
	if !(l.Ratio >= l.RatioMin && l.Ratio <= l.RatioMax) {
		return &ValidationError{Path: "layout.ratio", Err: fmt.Errorf("ratio must be within [%.2f, %.2f]", l.RatioMin, l.RatioMax)}
	}
	if !validRatioStep(l.RatioStep) {
		return &ValidationError{Path: "layout.ratio_step", Err: fmt.Errorf("ratio_step must be in (0, 0.5]")}
	}
	if l.MasterCount < 0 || l.MasterCount > 16 {
		return &ValidationError{Path: "layout.master_count", Err: fmt.Errorf("master_count must be between 0 and 16")}
	}
	if l.Gap < 0 || l.Gap > 1000 {
		return &ValidationError{Path: "layout.gap", Err: fmt.Errorf("gap must be between 0 and 1000")}
	}
	if l.Border < 0 || l.Border > 100 {
		return &ValidationError{Path: "layout.border", Err: fmt.Errorf("border must be between 0 and 100")}
	}
	return nil
}

func validRatioStep(step float64) bool {
	return step > 0 && step <= 0.5
}

func validateFontSize(size float64) error {
	if !(size > 0 && size <= 200) {
		return fmt.Errorf("font_size must be in (0, 200]")
	}
	return nil
}

func validateCommand(name, cmd string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("command name must not be empty")
	}
	if strings.TrimSpace(cmd) == "" {
		return fmt.Errorf("command must not be empty")
	}
	return nil
}

func validateBinding(b Binding) error {
	if strings.TrimSpace(b.Keys) == "" {
		return fmt.Errorf("keys is required")
	}
	if strings.TrimSpace(b.Action) == "" {
		return fmt.Errorf("action is required")
	}
	if b.Action == "spawn" && strings.TrimSpace(b.Command) == "" {
		return fmt.Errorf("spawn requires a command")
	}
	return nil
}
