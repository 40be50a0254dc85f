package mcp

import (
	"context"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driving"
	"github.com/custodia-labs/enlogic/internal/pipeline"
)

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	deleted   *domain.DeleteResult
	err       error

	lastTenant string
	lastLimit  int
}

func (m *mockDocumentService) List(_ context.Context, tenantID string, limit int) ([]domain.Document, error) {
	m.lastTenant = tenantID
	m.lastLimit = limit
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, tenantID, _ string) (*domain.Document, error) {
	m.lastTenant = tenantID
	return m.document, m.err
}

func (m *mockDocumentService) GetByRow(_ context.Context, _ string, _ int64) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _, _ string) (*domain.DeleteResult, error) {
	return m.deleted, m.err
}

func (m *mockDocumentService) DeleteByRow(_ context.Context, _ string, _ int64) (*domain.DeleteResult, error) {
	return m.deleted, m.err
}

func (m *mockDocumentService) Tenants(_ context.Context) ([]string, error) {
	return []string{domain.DefaultNamespace}, m.err
}

func (m *mockDocumentService) SourcePath(_ context.Context, _, _ string) (string, error) {
	if m.document == nil {
		return "", m.err
	}
	return m.document.SourcePath, m.err
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	result pipeline.Context
	err    error
	last   pipeline.Context
}

func (m *mockIngestionService) Ingest(_ context.Context, req pipeline.Context) (pipeline.Context, error) {
	m.last = req
	return m.result, m.err
}

func (m *mockIngestionService) IngestBatch(ctx context.Context, reqs []pipeline.Context, _ int) []driving.IngestResult {
	out := make([]driving.IngestResult, len(reqs))
	for i := range reqs {
		res, err := m.Ingest(ctx, reqs[i])
		out[i] = driving.IngestResult{Context: res, Err: err}
	}
	return out
}

func (m *mockIngestionService) Upload(_ context.Context, filename string, _ []byte) (string, error) {
	return "/uploads/" + filename, m.err
}

func (m *mockIngestionService) Discard(_ context.Context, _ string) error {
	return nil
}

// mockAgentService is a mock implementation of driving.AgentService.
type mockAgentService struct {
	agents []domain.Agent
	agent  *domain.Agent
	err    error

	includeInactive bool
}

func (m *mockAgentService) Create(_ context.Context, _ driving.CreateAgentRequest) (*domain.Agent, error) {
	return m.agent, m.err
}

func (m *mockAgentService) List(_ context.Context, _ string, includeInactive bool) ([]domain.Agent, error) {
	m.includeInactive = includeInactive
	return m.agents, m.err
}

func (m *mockAgentService) Get(_ context.Context, _, _ string) (*domain.Agent, error) {
	return m.agent, m.err
}

func (m *mockAgentService) Deactivate(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockAgentService) Delete(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockAgentService) Lineage(_ context.Context, _, _ string) ([]domain.Agent, error) {
	return m.agents, m.err
}

// mockKnowledgeService is a mock implementation of driving.KnowledgeService.
type mockKnowledgeService struct {
	answer *driving.Answer
	err    error
	last   driving.AskRequest
}

func (m *mockKnowledgeService) Ask(_ context.Context, req driving.AskRequest) (*driving.Answer, error) {
	m.last = req
	return m.answer, m.err
}

func (m *mockKnowledgeService) Note(_ context.Context, _ driving.NoteRequest) (string, error) {
	if m.answer == nil {
		return "", m.err
	}
	return m.answer.Answer, m.err
}
