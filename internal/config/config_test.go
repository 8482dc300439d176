package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if len(cfg.Tags) != 9 {
		t.Fatalf("expected 9 default tags, got %d", len(cfg.Tags))
	}
	for _, b := range cfg.Keybindings {
		if b.Action == "spawn" {
			if _, ok := cfg.Commands[b.Command]; !ok {
				t.Fatalf("default binding %q refers to unknown command %q", b.Keys, b.Command)
			}
		}
	}
}

func TestLoadFromPath_MissingFileMaterializesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.Created {
		t.Fatalf("expected default document to be created")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}

	again, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(again.Warnings) != 0 {
		t.Fatalf("expected written defaults to load cleanly, got %v", again.Warnings)
	}
	if diff := cmp.Diff(DefaultConfig(), again.Config); diff != "" {
		t.Fatalf("round-tripped defaults differ (-want +got):\n%s", diff)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Created {
		t.Fatalf("existing file must not be rewritten")
	}
	if diff := cmp.Diff(DefaultConfig(), res.Config); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoadFromPath_PartialOverrides(t *testing.T) {
	path := writeConfig(t, "config.yaml", strings.Join([]string{
		"modifier: Mod1",
		"tags: [web, code, chat]",
		"layout:",
		"  ratio: 0.6",
		"  gap: 0",
		"commands:",
		"  terminal: kitty",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	cfg := res.Config
	if cfg.Modifier != "Mod1" {
		t.Fatalf("expected modifier Mod1, got %q", cfg.Modifier)
	}
	if diff := cmp.Diff([]string{"web", "code", "chat"}, cfg.Tags); diff != "" {
		t.Fatalf("tags (-want +got):\n%s", diff)
	}
	if cfg.Layout.Ratio != 0.6 || cfg.Layout.Gap != 0 {
		t.Fatalf("expected ratio 0.6 gap 0, got %v %d", cfg.Layout.Ratio, cfg.Layout.Gap)
	}
	if cfg.Layout.Border != 1 {
		t.Fatalf("expected default border 1, got %d", cfg.Layout.Border)
	}
	if cfg.Commands["terminal"] != "kitty" || cfg.Commands["browser"] != "librewolf" {
		t.Fatalf("expected commands to merge with defaults, got %v", cfg.Commands)
	}
}

func TestLoadFromPath_InvalidValuesFallBackWithSource(t *testing.T) {
	path := writeConfig(t, "config.yaml", strings.Join([]string{
		"modifier: Hyper",
		"colors:",
		"  background: \"#zzzzzz\"",
		"layout:",
		"  border: -4",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := res.Config.Validate(); err != nil {
		t.Fatalf("effective config must validate, got %v", err)
	}
	if res.Config.Modifier != "Mod4" {
		t.Fatalf("expected default modifier, got %q", res.Config.Modifier)
	}
	if res.Config.Colors.Background != "#11111b" {
		t.Fatalf("expected default background, got %q", res.Config.Colors.Background)
	}
	if res.Config.Layout.Border != 1 {
		t.Fatalf("expected default border, got %d", res.Config.Layout.Border)
	}
	if len(res.Warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %d: %v", len(res.Warnings), res.Warnings)
	}

	var verr *ValidationError
	if !errors.As(res.Warnings[0], &verr) {
		t.Fatalf("expected *ValidationError, got %T", res.Warnings[0])
	}
	if verr.Path != "modifier" || verr.Source.Line != 1 {
		t.Fatalf("expected modifier at line 1, got %s line %d", verr.Path, verr.Source.Line)
	}
	if !strings.Contains(verr.Error(), path+":1:") {
		t.Fatalf("expected file position in %q", verr.Error())
	}
}

func TestLoadFromPath_RatioOutsideBandIsClamped(t *testing.T) {
	path := writeConfig(t, "config.yaml", "layout:\n  ratio: 0.99\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Layout.Ratio != 0.85 {
		t.Fatalf("expected ratio clamped to 0.85, got %v", res.Config.Layout.Ratio)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", res.Warnings)
	}
}

func TestLoadFromPath_NaNFallsBackToDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml",
		"layout:\n  ratio_min: .nan\n  ratio: .nan\n  ratio_step: .nan\nbar:\n  font_size: .nan\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := DefaultConfig()
	if diff := cmp.Diff(def.Layout, res.Config.Layout); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
	if res.Config.Bar.FontSize != def.Bar.FontSize {
		t.Fatalf("font_size = %v, want %v", res.Config.Bar.FontSize, def.Bar.FontSize)
	}
	if len(res.Warnings) != 4 {
		t.Fatalf("expected 4 warnings, got %d: %v", len(res.Warnings), res.Warnings)
	}
	if err := res.Config.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidate_RejectsNaNBand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layout.RatioMin = math.NaN()
	if err := cfg.Validate(); err == nil {
		t.Fatal("NaN ratio_min accepted")
	}

	cfg = DefaultConfig()
	cfg.Layout.Ratio = math.NaN()
	if err := cfg.Validate(); err == nil {
		t.Fatal("NaN ratio accepted")
	}
}

func TestLoadFromPath_UnknownKeyKeepsOtherValues(t *testing.T) {
	path := writeConfig(t, "config.yaml", "no_such_key: 1\nfocus_follows_pointer: false\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.FocusFollowsPointer {
		t.Fatalf("expected focus_follows_pointer false")
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0].Error(), "no_such_key") {
		t.Fatalf("expected unknown key warning, got %v", res.Warnings)
	}
}

func TestLoadFromPath_TypeMismatchDropsOnlyThatField(t *testing.T) {
	path := writeConfig(t, "config.yaml", "layout:\n  gap: wide\n  border: 3\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Layout.Gap != 10 {
		t.Fatalf("expected default gap, got %d", res.Config.Layout.Gap)
	}
	if res.Config.Layout.Border != 3 {
		t.Fatalf("expected border 3, got %d", res.Config.Layout.Border)
	}
	if len(res.Warnings) == 0 {
		t.Fatalf("expected a warning for the malformed gap")
	}
}

func TestLoadFromPath_GarbageUsesDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", "layout: [unterminated\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), res.Config); diff != "" {
		t.Fatalf("expected defaults (-want +got):\n%s", diff)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one parse warning, got %v", res.Warnings)
	}
}

func TestLoadFromPath_KeybindingsReplaceDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", strings.Join([]string{
		"keybindings:",
		"  - keys: MOD+Return",
		"    action: spawn",
		"    command: terminal",
		"  - keys: MOD+x",
		"    action: spawn",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Config.Keybindings) != 1 {
		t.Fatalf("expected the invalid binding to be dropped, got %+v", res.Config.Keybindings)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", res.Warnings)
	}
	var verr *ValidationError
	if !errors.As(res.Warnings[0], &verr) || verr.Path != "keybindings[1]" {
		t.Fatalf("expected keybindings[1] warning, got %v", res.Warnings[0])
	}
}

func TestLoadFromPath_TOMLDocument(t *testing.T) {
	path := writeConfig(t, "config.toml", strings.Join([]string{
		`modifier = "Mod1"`,
		`[layout]`,
		`ratio = 0.7`,
		`[colors]`,
		`foreground = "#ffffff"`,
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	if res.Config.Modifier != "Mod1" || res.Config.Layout.Ratio != 0.7 {
		t.Fatalf("unexpected config: %+v", res.Config)
	}
	if res.Config.Palette().Foreground != 0xffffff {
		t.Fatalf("expected white foreground, got %06x", res.Config.Palette().Foreground)
	}
}

func TestWriteDefault_TOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.Created {
		t.Fatalf("expected toml defaults to be written")
	}
	again, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(again.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", again.Warnings)
	}
	if diff := cmp.Diff(DefaultConfig(), again.Config); diff != "" {
		t.Fatalf("round-tripped defaults differ (-want +got):\n%s", diff)
	}
}

func TestExplain_ReportsFileAndDefaultSources(t *testing.T) {
	path := writeConfig(t, "config.yaml", "layout:\n  gap: 4\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "layout.gap")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 4 {
		t.Fatalf("expected 4, got %v", val)
	}
	if src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("expected file source at line 2, got %+v", src)
	}

	val, src, err = Explain(res, "layout.border")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 1 || src.Kind != SourceDefault {
		t.Fatalf("expected default border 1, got %v from %+v", val, src)
	}

	if _, _, err := Explain(res, "layout.nope"); err == nil {
		t.Fatalf("expected error for unknown path")
	}
}

func TestParseColor(t *testing.T) {
	px, err := ParseColor("#74c7ec")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if px != 0x74c7ec {
		t.Fatalf("expected 74c7ec, got %06x", px)
	}
	if _, err := ParseColor("blue"); err == nil {
		t.Fatalf("expected error for non-hex colour")
	}
}

func TestDiff(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	if d := Diff(a, b); d != "" {
		t.Fatalf("expected no diff, got %s", d)
	}
	b.Layout.Gap = 2
	if d := Diff(a, b); !strings.Contains(d, "Gap") {
		t.Fatalf("expected diff to mention Gap, got %s", d)
	}
}
