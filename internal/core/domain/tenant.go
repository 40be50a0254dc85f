package domain

import "strings"

// DefaultNamespace is used when a tenant identifier sanitises to nothing.
const DefaultNamespace = "default"

// Namespace maps an opaque tenant identifier to the token used by every
// store. Characters outside [A-Za-z0-9_] become '_', edge underscores are
// trimmed, and an empty result falls back to DefaultNamespace.
//
// All stores must derive their names from this function; a divergent
// rule in any one of them silently breaks cross-store joins by tenant.
func Namespace(tenantID string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(tenantID))
	ns := strings.Trim(mapped, "_")
	if ns == "" {
		return DefaultNamespace
	}
	return ns
}

// SchemaName returns the relational schema (or table prefix) for a tenant.
func SchemaName(tenantID string) string {
	return "tenant_" + Namespace(tenantID)
}

// CollectionName returns the vector collection for a tenant.
func CollectionName(tenantID string) string {
	return "tenant_" + Namespace(tenantID)
}

// GraphLabel returns the node label applied to every graph node of a tenant.
func GraphLabel(tenantID string) string {
	return "Tenant_" + Namespace(tenantID)
}
