package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

type Source struct {
	Kind   SourceKind
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config   *Config
	Sources  map[string]Source // YAML-path -> position in the file
	Warnings []error           // rejected values, replaced by defaults
	Path     string
	Created  bool // the file was missing and a default document was written
}

const defaultHeader = "# tagwm configuration. Delete a key to fall back to its default.\n"

// DefaultConfigPath honours XDG_CONFIG_HOME and falls back to ~/.config.
func DefaultConfigPath() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); dir != "" {
		return filepath.Join(dir, "tagwm", "config.yaml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "tagwm", "config.yaml"), nil
}

// Load reads the configuration from the standard location.
func Load() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates the document at path.
//
// Only unreadable files produce an error. A missing file is materialized
// with the defaults, and anything that does not parse or validate falls
// back to the defaults with a warning.
func LoadFromPath(path string) (*LoadResult, error) {
	res := &LoadResult{Path: path, Sources: map[string]Source{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		res.Config = DefaultConfig()
		if werr := WriteDefault(path); werr != nil {
			res.Warnings = append(res.Warnings, werr)
		} else {
			res.Created = true
		}
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var raw RawConfig
	if isTOML(path) {
		raw, res.Warnings = decodeTOML(data, path)
	} else {
		raw, res.Sources, res.Warnings = decodeYAML(data, path)
	}

	cfg, warnings := BuildEffectiveConfig(raw, res.Sources)
	res.Config = cfg
	res.Warnings = append(res.Warnings, warnings...)
	return res, nil
}

// WriteDefault writes the default document to path, creating parent
// directories. The format follows the file extension.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(defaultHeader)
	if isTOML(path) {
		if err := toml.NewEncoder(&buf).Encode(DefaultConfig()); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
	} else {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(DefaultConfig()); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// decodeYAML decodes strictly first so unknown keys are reported, then
// retries leniently. Type mismatches leave the affected fields unset.
func decodeYAML(data []byte, file string) (RawConfig, map[string]Source, []error) {
	var warnings []error

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, map[string]Source{}, []error{fmt.Errorf("%s: parse error, using defaults: %w", file, err)}
	}
	sources := collectSources(&doc, file)

	var raw RawConfig
	err := decodeStrictYAML(data, &raw)
	if err == nil {
		return raw, sources, nil
	}

	raw = RawConfig{}
	lenient := yaml.Unmarshal(data, &raw)
	var typeErr *yaml.TypeError
	switch {
	case lenient == nil:
		// The strict pass only failed on unknown keys.
		warnings = append(warnings, fmt.Errorf("%s: %w", file, err))
	case errors.As(lenient, &typeErr):
		for _, msg := range typeErr.Errors {
			warnings = append(warnings, fmt.Errorf("%s: %s", file, msg))
		}
	default:
		return RawConfig{}, sources, []error{fmt.Errorf("%s: %w", file, lenient)}
	}
	return raw, sources, warnings
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}

func decodeTOML(data []byte, file string) (RawConfig, []error) {
	var raw RawConfig
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return RawConfig{}, []error{fmt.Errorf("%s: parse error, using defaults: %w", file, err)}
	}
	var warnings []error
	for _, key := range md.Undecoded() {
		warnings = append(warnings, fmt.Errorf("%s: unknown key %q ignored", file, key.String()))
	}
	return raw, warnings
}

func collectSources(doc *yaml.Node, file string) map[string]Source {
	out := make(map[string]Source)
	if doc == nil {
		return out
	}
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	collectSourcesRec(node, file, "", out)
	return out
}

func collectSourcesRec(node *yaml.Node, file string, prefix string, out map[string]Source) {
	if node == nil {
		return
	}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]
			path := keyNode.Value
			if prefix != "" {
				path = prefix + "." + keyNode.Value
			}
			out[path] = Source{
				Kind:   SourceFile,
				File:   file,
				Line:   valNode.Line,
				Column: valNode.Column,
			}
			collectSourcesRec(valNode, file, path, out)
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			path := fmt.Sprintf("%s[%d]", prefix, i)
			out[path] = Source{
				Kind:   SourceFile,
				File:   file,
				Line:   item.Line,
				Column: item.Column,
			}
		}
	}
}
