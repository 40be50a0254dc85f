package schema

import (
	"encoding/json"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"
)

// Sanitize repairs null values in instance against s and returns the result.
//
// For each declared property whose value is null: required properties
// receive DefaultFor their schema, optional ones are removed. Objects
// are then recursed into when the property declares nested properties,
// and arrays whose items schema is object-typed have null elements
// dropped and object elements recursed into. Arrays of arrays are left
// alone.
//
// The input is not modified. Keys absent from the instance are never
// added, and Sanitize(s, Sanitize(s, v)) equals Sanitize(s, v).
func Sanitize(s *jsonschema.Schema, instance any) any {
	obj, ok := instance.(map[string]any)
	if s == nil || !ok {
		return instance
	}
	return sanitizeObject(s, obj)
}

func sanitizeObject(s *jsonschema.Schema, obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}

	for key, prop := range s.Properties {
		value, present := out[key]
		if !present {
			continue
		}
		if value == nil {
			if !slices.Contains(s.Required, key) {
				delete(out, key)
				continue
			}
			value = DefaultFor(prop)
			out[key] = value
		}
		if prop == nil {
			continue
		}

		switch v := value.(type) {
		case map[string]any:
			if len(prop.Properties) > 0 {
				out[key] = sanitizeObject(prop, v)
			}
		case []any:
			if isObjectSchema(prop.Items) {
				out[key] = sanitizeItems(prop.Items, v)
			}
		}
	}
	return out
}

func sanitizeItems(items *jsonschema.Schema, values []any) []any {
	out := make([]any, 0, len(values))
	for _, item := range values {
		switch v := item.(type) {
		case nil:
			continue
		case map[string]any:
			out = append(out, sanitizeObject(items, v))
		default:
			out = append(out, item)
		}
	}
	return out
}

func isObjectSchema(s *jsonschema.Schema) bool {
	if s == nil {
		return false
	}
	return s.Type == "object" || slices.Contains(s.Types, "object") || len(s.Properties) > 0
}

// DefaultFor returns the canonical value for a required property that
// came back null: the schema's own default, else a zero value of its
// declared type. A type list resolves to its first non-null member.
// Unknown or missing types yield "".
func DefaultFor(s *jsonschema.Schema) any {
	if s == nil {
		return ""
	}
	if len(s.Default) > 0 {
		var v any
		if err := json.Unmarshal(s.Default, &v); err == nil {
			return v
		}
	}

	switch declaredType(s) {
	case "string":
		return ""
	case "number", "integer":
		return float64(0)
	case "boolean":
		return false
	case "array":
		return []any{}
	case "object":
		return map[string]any{}
	default:
		return ""
	}
}

func declaredType(s *jsonschema.Schema) string {
	if s.Type != "" {
		return s.Type
	}
	for _, t := range s.Types {
		if t != "null" {
			return t
		}
	}
	return ""
}
