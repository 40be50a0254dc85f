package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driving"
	"github.com/custodia-labs/enlogic/internal/pipeline"
)

// ==================== Inputs ====================

// IngestTextInput is the input schema for the ingest_text tool.
type IngestTextInput struct {
	Tenant   string `json:"tenant,omitempty" jsonschema:"tenant namespace (default: default)"`
	Text     string `json:"text" jsonschema:"document text to extract engineering logic from"`
	AgentID  string `json:"agent_id,omitempty" jsonschema:"agent whose schema drives extraction"`
	Provider string `json:"provider,omitempty" jsonschema:"LLM provider: ollama, deepseek or openai"`
	Model    string `json:"model,omitempty" jsonschema:"LLM model override"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	Tenant string `json:"tenant,omitempty" jsonschema:"tenant namespace (default: default)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of documents to return (default 20)"`
}

// DocumentInput identifies one document.
type DocumentInput struct {
	Tenant     string `json:"tenant,omitempty" jsonschema:"tenant namespace (default: default)"`
	DocumentID string `json:"document_id" jsonschema:"the document id"`
}

// ListAgentsInput is the input schema for the list_agents tool.
type ListAgentsInput struct {
	Tenant          string `json:"tenant,omitempty" jsonschema:"tenant namespace (default: default)"`
	IncludeInactive bool   `json:"include_inactive,omitempty" jsonschema:"include deactivated agents"`
}

// AgentInput identifies one agent.
type AgentInput struct {
	Tenant  string `json:"tenant,omitempty" jsonschema:"tenant namespace (default: default)"`
	AgentID string `json:"agent_id" jsonschema:"the agent id"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Tenant   string `json:"tenant,omitempty" jsonschema:"tenant namespace (default: default)"`
	Question string `json:"question" jsonschema:"the question to answer from stored knowledge"`
	Language string `json:"language,omitempty" jsonschema:"answer language"`
	Provider string `json:"provider,omitempty" jsonschema:"LLM provider: ollama, deepseek or openai"`
	Model    string `json:"model,omitempty" jsonschema:"LLM model override"`
}

// ==================== Outputs ====================

// DocumentOutput is one stored document.
type DocumentOutput struct {
	RowID        int64  `json:"id"`
	DocumentID   string `json:"document_id"`
	Title        string `json:"document_title"`
	DocumentType string `json:"document_type,omitempty"`
	Summary      string `json:"summary,omitempty"`
	RiskLevel    string `json:"risk_level,omitempty"`
	Source       string `json:"source,omitempty"`
	SourceType   string `json:"source_type,omitempty"`
	CreatedAt    string `json:"created_at"`
	Extraction   any    `json:"extraction,omitempty"`
}

// IngestTextOutput is the output schema for the ingest_text tool.
type IngestTextOutput struct {
	Document      DocumentOutput `json:"document"`
	DocumentStore bool           `json:"document_store"`
	VectorStore   bool           `json:"vector_store"`
	GraphStore    bool           `json:"graph_store"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DeleteDocumentOutput is the output schema for the delete_document tool.
type DeleteDocumentOutput struct {
	DocumentID    string `json:"document_id"`
	DocumentStore bool   `json:"document_store"`
	VectorStore   bool   `json:"vector_store"`
	GraphStore    bool   `json:"graph_store"`
	BlobRemoved   bool   `json:"blob_removed"`
	State         string `json:"state"`
}

// AgentOutput is one agent.
type AgentOutput struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Prompt         string `json:"prompt"`
	OutputLanguage string `json:"output_language"`
	Version        int    `json:"version"`
	ParentID       string `json:"parent_id,omitempty"`
	IsActive       bool   `json:"is_active"`
	Visibility     string `json:"visibility"`
	CreatedAt      string `json:"created_at"`
	Schema         any    `json:"schema,omitempty"`
}

// ListAgentsOutput is the output schema for the list_agents tool.
type ListAgentsOutput struct {
	Agents []AgentOutput `json:"agents"`
	Count  int           `json:"count"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string `json:"answer"`
	Context string `json:"context"`
}

func (s *Server) registerTools() {
	addTool(s, "ingest_text", "Extract engineering logic from text and store it", s.handleIngestText)
	addTool(s, "list_documents", "List the newest stored documents of a tenant", s.handleListDocuments)
	addTool(s, "get_document", "Get a stored document with its full extraction", s.handleGetDocument)
	addTool(s, "delete_document", "Delete a document from every store", s.handleDeleteDocument)
	addTool(s, "list_agents", "List extraction agents of a tenant", s.handleListAgents)
	addTool(s, "get_agent", "Get an extraction agent with its schema", s.handleGetAgent)
	addTool(s, "ask", "Answer a question from the tenant's documents, vectors and graph", s.handleAsk)
}

// addTool registers h and records it in the server's catalogue.
func addTool[In, Out any](s *Server, name, description string, h mcp.ToolHandlerFor[In, Out]) {
	mcp.AddTool(s.server, &mcp.Tool{Name: name, Description: description}, h)
	s.tools = append(s.tools, ToolInfo{Name: name, Description: description})
}

func (s *Server) handleIngestText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestTextInput,
) (*mcp.CallToolResult, IngestTextOutput, error) {
	if s.ports.Ingestion == nil {
		return nil, IngestTextOutput{}, errUnavailable
	}

	out, err := s.ports.Ingestion.Ingest(ctx, pipeline.Context{
		TenantID: input.Tenant,
		Text:     input.Text,
		AgentID:  input.AgentID,
		Provider: input.Provider,
		Model:    input.Model,
	})
	if err != nil {
		return nil, IngestTextOutput{}, err
	}
	if out.Document == nil {
		return nil, IngestTextOutput{}, errors.New("ingest returned no document")
	}

	return nil, IngestTextOutput{
		Document:      documentOutput(out.Document, true),
		DocumentStore: out.StorageResult.DocumentStore,
		VectorStore:   out.StorageResult.VectorStore,
		GraphStore:    out.StorageResult.GraphStore,
	}, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx, input.Tenant, input.Limit)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = documentOutput(&docs[i], false)
	}
	return nil, output, nil
}

func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	doc, err := s.ports.Document.Get(ctx, input.Tenant, input.DocumentID)
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	return nil, documentOutput(doc, true), nil
}

func (s *Server) handleDeleteDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	result, err := s.ports.Document.Delete(ctx, input.Tenant, input.DocumentID)
	if err != nil {
		return nil, DeleteDocumentOutput{}, err
	}
	return nil, DeleteDocumentOutput{
		DocumentID:    result.DocumentID,
		DocumentStore: result.DocumentStore,
		VectorStore:   result.VectorStore,
		GraphStore:    result.GraphStore,
		BlobRemoved:   result.BlobRemoved,
		State:         string(result.State),
	}, nil
}

func (s *Server) handleListAgents(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListAgentsInput,
) (*mcp.CallToolResult, ListAgentsOutput, error) {
	if s.ports.Agent == nil {
		return nil, ListAgentsOutput{}, errUnavailable
	}

	agents, err := s.ports.Agent.List(ctx, input.Tenant, input.IncludeInactive)
	if err != nil {
		return nil, ListAgentsOutput{}, err
	}

	output := ListAgentsOutput{
		Agents: make([]AgentOutput, len(agents)),
		Count:  len(agents),
	}
	for i := range agents {
		output.Agents[i] = agentOutput(&agents[i], false)
	}
	return nil, output, nil
}

func (s *Server) handleGetAgent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AgentInput,
) (*mcp.CallToolResult, AgentOutput, error) {
	if s.ports.Agent == nil {
		return nil, AgentOutput{}, errUnavailable
	}

	agent, err := s.ports.Agent.Get(ctx, input.Tenant, input.AgentID)
	if err != nil {
		return nil, AgentOutput{}, err
	}
	return nil, agentOutput(agent, true), nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Knowledge == nil {
		return nil, AskOutput{}, errUnavailable
	}

	answer, err := s.ports.Knowledge.Ask(ctx, driving.AskRequest{
		TenantID: input.Tenant,
		Question: input.Question,
		Language: input.Language,
		Provider: input.Provider,
		Model:    input.Model,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{Answer: answer.Answer, Context: answer.Context}, nil
}

func documentOutput(doc *domain.Document, withExtraction bool) DocumentOutput {
	out := DocumentOutput{
		RowID:        doc.RowID,
		DocumentID:   doc.DocumentID,
		Title:        doc.DocumentTitle,
		DocumentType: doc.DocumentType,
		Summary:      doc.Summary,
		Source:       doc.Source,
		SourceType:   doc.SourceType,
		CreatedAt:    doc.CreatedAt.UTC().Format(time.RFC3339),
	}
	if doc.RiskLevel != nil {
		out.RiskLevel = string(*doc.RiskLevel)
	}
	if withExtraction {
		out.Extraction = decodeRaw(doc.RawJSON)
	}
	return out
}

func agentOutput(a *domain.Agent, withSchema bool) AgentOutput {
	out := AgentOutput{
		ID:             a.ID,
		Name:           a.Name,
		Description:    a.Description,
		Prompt:         a.Prompt,
		OutputLanguage: a.OutputLanguage,
		Version:        a.Version,
		IsActive:       a.IsActive,
		Visibility:     a.Visibility,
		CreatedAt:      a.CreatedAt.UTC().Format(time.RFC3339),
	}
	if a.ParentID != nil {
		out.ParentID = *a.ParentID
	}
	if withSchema {
		out.Schema = decodeRaw(a.Schema)
	}
	return out
}

// decodeRaw returns stored JSON as a generic value, nil when absent or invalid.
func decodeRaw(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}
