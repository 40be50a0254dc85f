// Package domain defines the core business entities for enlogic.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: a persisted extraction row with provenance
//   - Agent: a tenant-defined, versioned extraction schema
//   - Extraction: the tagged union of fixed and custom LLM output
//   - EngineeringLogic: the built-in extraction schema
//   - IfcComponent: a typed building-model element with property sets
//
// Tenant identifiers are mapped to store namespaces only through
// Namespace and the helpers built on it.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
