package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for enlogic resources.
	uriScheme = "enlogic://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Template for the newest documents of a tenant.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "tenants/{tenant}/documents",
		Name:        "tenant-documents",
		Description: "Newest documents stored for a tenant",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	// Template for one document's extraction.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "tenants/{tenant}/documents/{documentId}",
		Name:        "document-extraction",
		Description: "Structured extraction stored for a document",
		MIMEType:    "application/json",
	}, s.handleDocumentResource)
}

// handleDocumentsResource returns the document list of a tenant.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	tenant, docID, ok := parseDocumentURI(req.Params.URI)
	if !ok || docID != "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Document.List(ctx, tenant, 0)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	// Build simplified document list.
	type docInfo struct {
		ID         int64  `json:"id"`
		DocumentID string `json:"document_id"`
		Title      string `json:"document_title"`
		URI        string `json:"uri"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{
			ID:         docs[i].RowID,
			DocumentID: docs[i].DocumentID,
			Title:      docs[i].DocumentTitle,
			URI:        documentURI(tenant, docs[i].DocumentID),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return jsonResource(req.Params.URI, data), nil
}

// handleDocumentResource returns the stored extraction of a document.
func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	tenant, docID, ok := parseDocumentURI(req.Params.URI)
	if !ok || docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Document.Get(ctx, tenant, docID)
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	data := []byte(doc.RawJSON)
	if len(data) == 0 {
		data = []byte("{}")
	}
	return jsonResource(req.Params.URI, data), nil
}

func jsonResource(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// documentURI builds enlogic://tenants/{tenant}/documents/{documentId}.
func documentURI(tenant, docID string) string {
	return uriScheme + "tenants/" + tenant + "/documents/" + docID
}

// parseDocumentURI splits enlogic://tenants/{tenant}/documents[/{documentId}].
// docID is empty for the list form.
func parseDocumentURI(uri string) (tenant, docID string, ok bool) {
	const prefix = uriScheme + "tenants/"

	rest, found := strings.CutPrefix(uri, prefix)
	if !found {
		return "", "", false
	}

	tenant, rest, found = strings.Cut(rest, "/documents")
	if !found || tenant == "" || strings.Contains(tenant, "/") {
		return "", "", false
	}

	switch {
	case rest == "":
		return tenant, "", true
	case strings.HasPrefix(rest, "/") && len(rest) > 1 && !strings.Contains(rest[1:], "/"):
		return tenant, rest[1:], true
	default:
		return "", "", false
	}
}
