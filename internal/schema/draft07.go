package schema

// Keywords whose values are schemas, lists of schemas, or maps of schemas.
var (
	schemaKeywords = []string{
		"items", "additionalItems", "additionalProperties", "contains", "propertyNames",
		"not", "if", "then", "else", "unevaluatedItems", "unevaluatedProperties",
	}
	schemaListKeywords = []string{"items", "prefixItems", "allOf", "anyOf", "oneOf"}
	schemaMapKeywords  = []string{
		"properties", "patternProperties", "definitions", "$defs", "dependentSchemas", "dependencies",
	}
)

// upgradeDraft07 rewrites the Draft-07 keywords that 2020-12 renamed, in
// place and through every subschema:
//
//   - "items": [...] becomes "prefixItems", and "additionalItems" becomes "items"
//   - "additionalItems" next to a single "items" schema is dropped, as Draft-07 ignores it
//   - "dependencies" splits into "dependentRequired" (array values) and
//     "dependentSchemas" (schema values)
//
// Values under enum, const, default and examples are data and are not visited.
func upgradeDraft07(node any) {
	s, ok := node.(map[string]any)
	if !ok {
		return
	}

	for _, key := range schemaMapKeywords {
		if m, ok := s[key].(map[string]any); ok {
			for _, sub := range m {
				upgradeDraft07(sub)
			}
		}
	}
	for _, key := range schemaListKeywords {
		if list, ok := s[key].([]any); ok {
			for _, sub := range list {
				upgradeDraft07(sub)
			}
		}
	}
	for _, key := range schemaKeywords {
		upgradeDraft07(s[key])
	}

	if tuple, ok := s["items"].([]any); ok {
		delete(s, "items")
		s["prefixItems"] = tuple
		if rest, ok := s["additionalItems"]; ok {
			s["items"] = rest
		}
	}
	delete(s, "additionalItems")

	deps, ok := s["dependencies"].(map[string]any)
	if !ok {
		return
	}
	delete(s, "dependencies")
	required := keywordMap(s, "dependentRequired")
	schemas := keywordMap(s, "dependentSchemas")
	for name, dep := range deps {
		if _, isList := dep.([]any); isList {
			required[name] = dep
		} else {
			schemas[name] = dep
		}
	}
	for key, m := range map[string]map[string]any{"dependentRequired": required, "dependentSchemas": schemas} {
		if len(m) > 0 {
			s[key] = m
		}
	}
}

// keywordMap returns the existing map under key, or a new empty one.
func keywordMap(s map[string]any, key string) map[string]any {
	if m, ok := s[key].(map[string]any); ok {
		return m
	}
	return make(map[string]any)
}
