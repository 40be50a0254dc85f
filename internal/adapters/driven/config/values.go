package config

import (
	"fmt"
	"maps"
	"math"

	"github.com/custodia-labs/enlogic/internal/core/domain"
)

// Values is a flat dotted-key view of a settings file.
type Values map[string]any

// Flatten turns nested TOML tables into dotted keys.
func Flatten(nested map[string]any) Values {
	out := make(Values)
	flattenInto(out, nested, "")
	return out
}

func flattenInto(out Values, nested map[string]any, prefix string) {
	for key, value := range nested {
		if prefix != "" {
			key = prefix + "." + key
		}
		if table, ok := value.(map[string]any); ok {
			flattenInto(out, table, key)
			continue
		}
		out[key] = value
	}
}

// String returns the value at key when it is a string.
func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// Int returns the value at key when it holds a whole number. TOML decodes
// integers as int64, JSON as float64.
func (v Values) Int(key string) int {
	switch n := v[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == math.Trunc(n) {
			return int(n)
		}
	}
	return 0
}

// With returns a copy of v with key set to value, after checking that the
// result still decodes onto domain.Settings.
func (v Values) With(key string, value any) (Values, error) {
	next := maps.Clone(v)
	if next == nil {
		next = make(Values)
	}
	next[key] = value
	if _, err := Overlay(domain.DefaultSettings(), next); err != nil {
		return v, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	return next, nil
}
