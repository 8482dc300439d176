package config

// RawLayout mirrors LayoutConfig with every field optional.
type RawLayout struct {
	Ratio       *float64 `yaml:"ratio" toml:"ratio"`
	RatioStep   *float64 `yaml:"ratio_step" toml:"ratio_step"`
	RatioMin    *float64 `yaml:"ratio_min" toml:"ratio_min"`
	RatioMax    *float64 `yaml:"ratio_max" toml:"ratio_max"`
	MasterCount *int     `yaml:"master_count" toml:"master_count"`
	Gap         *int     `yaml:"gap" toml:"gap"`
	Border      *int     `yaml:"border" toml:"border"`
}

type RawColors struct {
	Background    *string `yaml:"background" toml:"background"`
	Foreground    *string `yaml:"foreground" toml:"foreground"`
	BorderFocused *string `yaml:"border_focused" toml:"border_focused"`
	BorderNormal  *string `yaml:"border_normal" toml:"border_normal"`
}

type RawBar struct {
	Enabled  *bool    `yaml:"enabled" toml:"enabled"`
	Font     *string  `yaml:"font" toml:"font"`
	FontSize *float64 `yaml:"font_size" toml:"font_size"`
}

// RawConfig is the document as written on disk. A nil field means the key
// was absent and the default applies.
type RawConfig struct {
	Modifier              *string           `yaml:"modifier" toml:"modifier"`
	Tags                  *[]string         `yaml:"tags" toml:"tags"`
	FocusFollowsPointer   *bool             `yaml:"focus_follows_pointer" toml:"focus_follows_pointer"`
	RestartOnConfigChange *bool             `yaml:"restart_on_config_change" toml:"restart_on_config_change"`
	LogLevel              *string           `yaml:"log_level" toml:"log_level"`
	Layout                *RawLayout        `yaml:"layout" toml:"layout"`
	Colors                *RawColors        `yaml:"colors" toml:"colors"`
	Bar                   *RawBar           `yaml:"bar" toml:"bar"`
	Commands              map[string]string `yaml:"commands" toml:"commands"`
	Keybindings           *[]Binding        `yaml:"keybindings" toml:"keybindings"`
}
