// Package mcp provides an MCP (Model Context Protocol) server adapter for enlogic.
// It lets AI assistants ingest text, browse stored extractions and ask
// questions of a tenant's knowledge base.
package mcp

import "errors"

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("mcp: document service is required")

// errUnavailable is returned by tools whose service is not wired.
var errUnavailable = errors.New("mcp: service not configured")
