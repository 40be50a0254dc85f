package mcp

import (
	"github.com/custodia-labs/enlogic/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Document lists, reads and deletes stored documents.
	Document driving.DocumentService

	// Ingestion runs extraction on inline text.
	Ingestion driving.IngestionService

	// Agent exposes the agent catalog.
	Agent driving.AgentService

	// Knowledge answers questions.
	Knowledge driving.KnowledgeService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	// The remaining ports are optional; their tools report errUnavailable.
	return nil
}
