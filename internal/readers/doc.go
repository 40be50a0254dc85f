// Package readers provides FormatReader implementations for the input
// formats the ingestion pipeline accepts, and the registry that selects
// one by source type.
//
// Readers are registered with the Registry at startup; NewDefaultRegistry
// wires the built-in set.
package readers
