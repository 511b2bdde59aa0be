package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// toMap renders cfg as its generic JSON tree.
func toMap(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// GetByPath retrieves a config value by dot-notation path (e.g. "search.maxResults").
// Intermediate sections are returned as maps.
func GetByPath(cfg *Config, path string) (any, error) {
	m, err := toMap(cfg)
	if err != nil {
		return nil, err
	}
	var current any = m
	for _, key := range strings.Split(path, ".") {
		section, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("cannot traverse into %T at %s", current, key)
		}
		current, ok = section[key]
		if !ok {
			return nil, fmt.Errorf("key not found: %s", path)
		}
	}
	return current, nil
}

// SetByPath assigns a leaf setting. The path must name an existing leaf (see
// ListPaths); string values are coerced to the leaf's current JSON type.
// The caller validates the result.
func SetByPath(cfg *Config, path string, value any) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	m, err := toMap(cfg)
	if err != nil {
		return err
	}

	parts := strings.Split(path, ".")
	parent := m
	for i, key := range parts[:len(parts)-1] {
		child, ok := parent[key]
		if !ok {
			return fmt.Errorf("unknown config path: %s", strings.Join(parts[:i+1], "."))
		}
		section, ok := child.(map[string]any)
		if !ok {
			return fmt.Errorf("%s is a %s setting, not a section", strings.Join(parts[:i+1], "."), jsonKind(child))
		}
		parent = section
	}

	leaf := parts[len(parts)-1]
	current, ok := parent[leaf]
	if !ok {
		return fmt.Errorf("unknown config path: %s", path)
	}
	if _, isSection := current.(map[string]any); isSection {
		return fmt.Errorf("%s is a section; set one of its fields instead", path)
	}

	coerced, err := coerce(current, value)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	parent[leaf] = coerced

	newData, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(newData, cfg); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// coerce converts a string value to the JSON kind of current. Non-string
// values pass through and are checked by the final unmarshal.
func coerce(current, value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	switch current.(type) {
	case bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("expected true or false, got %q", s)
		}
		return b, nil
	case float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("expected a number, got %q", s)
		}
		return f, nil
	case string:
		return s, nil
	default:
		return nil, fmt.Errorf("cannot set a %s setting from the command line", jsonKind(current))
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "list"
	case map[string]any:
		return "section"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// ListPaths returns all settable config paths with their current values.
func ListPaths(cfg *Config) map[string]any {
	m, err := toMap(cfg)
	if err != nil {
		return nil
	}
	result := make(map[string]any)
	flattenMap("", m, result)
	return result
}

func flattenMap(prefix string, m map[string]any, result map[string]any) {
	for k, v := range m {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if section, ok := v.(map[string]any); ok {
			flattenMap(path, section, result)
			continue
		}
		result[path] = v
	}
}
