package config

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

// Explain returns the effective value at a dotted YAML path (for example
// "layout.ratio" or "commands.terminal") and where it came from.
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	var doc yaml.Node
	if err := doc.Encode(res.Config); err != nil {
		return nil, Source{}, fmt.Errorf("failed to encode config: %w", err)
	}

	node := &doc
	for _, part := range strings.Split(path, ".") {
		node = mappingValue(node, part)
		if node == nil {
			return nil, Source{}, fmt.Errorf("unknown path: %s", path)
		}
	}

	var value any
	if err := node.Decode(&value); err != nil {
		return nil, Source{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if src, ok := res.Sources[path]; ok && !rejected(res, path) {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func rejected(res *LoadResult, path string) bool {
	for _, w := range res.Warnings {
		if verr, ok := w.(*ValidationError); ok && verr.Path == path {
			return true
		}
	}
	return false
}

// Diff reports the differences between two effective configurations, or
// "" when they are equal.
func Diff(previous, current *Config) string {
	return cmp.Diff(previous, current)
}
