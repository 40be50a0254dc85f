package schema

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/custodia-labs/enlogic/internal/core/domain"
)

// Compiled is a parsed and resolved JSON Schema.
type Compiled struct {
	raw      json.RawMessage
	schema   *jsonschema.Schema
	resolved *jsonschema.Resolved
}

// Compile parses and resolves raw. A $schema keyword is ignored and
// Draft-07 keywords are read with their Draft-07 meaning.
func Compile(raw []byte) (*Compiled, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty schema")
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	upgradeDraft07(tree)
	upgraded, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	var s jsonschema.Schema
	if err := json.Unmarshal(upgraded, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	s.Schema = ""

	resolved, err := s.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve schema: %w", err)
	}
	return &Compiled{raw: append(json.RawMessage(nil), raw...), schema: &s, resolved: resolved}, nil
}

// CompileObject compiles a schema already decoded into a map.
func CompileObject(obj map[string]any) (*Compiled, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	return Compile(raw)
}

// Schema returns the parsed schema tree.
func (c *Compiled) Schema() *jsonschema.Schema {
	return c.schema
}

// Raw returns the schema as supplied.
func (c *Compiled) Raw() json.RawMessage {
	return c.raw
}

// Validate checks instance against the schema.
// Failures wrap domain.ErrSchemaValidation.
func (c *Compiled) Validate(instance any) error {
	if err := c.resolved.Validate(instance); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSchemaValidation, err)
	}
	return nil
}

// SanitizeAndValidate repairs nulls in instance, then validates it.
func (c *Compiled) SanitizeAndValidate(instance map[string]any) (map[string]any, error) {
	repaired, _ := Sanitize(c.schema, instance).(map[string]any)
	if err := c.Validate(repaired); err != nil {
		return nil, err
	}
	return repaired, nil
}
