// Package schema repairs, validates and decodes LLM output against JSON Schemas.
//
// Three contracts live here:
//
//   - DecodeObject: two-phase tolerant JSON decoding of model text
//   - Sanitize: deterministic repair of null values before validation
//   - Compile/Validate: JSON Schema validation of the repaired instance
//
// Schemas are parsed with github.com/google/jsonschema-go, which implements
// draft 2020-12. Draft-07 input is accepted by dropping its $schema keyword
// and rewriting the keywords 2020-12 renamed: tuple "items" and
// "additionalItems" become "prefixItems" and "items", and "dependencies"
// becomes "dependentRequired" or "dependentSchemas".
package schema
