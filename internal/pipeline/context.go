// Package pipeline provides the per-request extraction context and the
// sequential step executor that threads it through parse, extract and persist.
package pipeline

import "github.com/custodia-labs/enlogic/internal/core/domain"

// Context carries one ingestion request through the pipeline.
//
// It is a value: each step receives a copy and returns the updated copy.
// The pipeline run owns it exclusively; nothing is shared between runs.
type Context struct {
	// Input. Exactly one of Text or FilePath is expected.

	// TenantID selects the store namespaces.
	TenantID string

	// Text is inline input.
	Text string

	// FileName is the original upload name, used for titles and provenance.
	FileName string

	// FilePath is the stored input location.
	FilePath string

	// SourceType overrides the type derived from the file suffix.
	SourceType string

	// Provider and Model select the language model. Empty values use defaults.
	Provider string
	Model    string

	// AgentID selects a custom extraction schema.
	AgentID string

	// Outputs, in the order steps fill them.

	// RawText is the reader output: plain text, or markdown for PDF.
	RawText string

	// Components is the IFC side-list used to enrich the graph.
	Components []domain.IfcComponent

	// Agent is the resolved agent when AgentID is set.
	Agent *domain.Agent

	// Extraction is the structured LLM output.
	Extraction domain.Extraction

	// Document is the persisted row.
	Document *domain.Document

	// StorageResult records which stores accepted the document.
	StorageResult domain.StorageResult
}

// HasFile reports whether the request carries a stored input.
func (c Context) HasFile() bool {
	return c.FilePath != ""
}

// HasText reports whether the request carries inline text.
func (c Context) HasText() bool {
	return c.Text != ""
}
