package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
	"github.com/custodia-labs/enlogic/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService provides read and delete access to stored documents.
type DocumentService struct {
	docStore  driven.DocumentStore
	persister *Persister
}

// NewDocumentService creates a new document service.
// Deletes are delegated to persister so every store is cleaned up.
func NewDocumentService(docStore driven.DocumentStore, persister *Persister) *DocumentService {
	return &DocumentService{
		docStore:  docStore,
		persister: persister,
	}
}

// List returns the newest documents first.
func (s *DocumentService) List(ctx context.Context, tenantID string, limit int) ([]domain.Document, error) {
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}
	if limit <= 0 {
		limit = driving.DefaultDocumentListLimit
	}
	if err := s.docStore.EnsureNamespace(ctx, tenantID); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDocumentStore, err)
	}
	return s.docStore.List(ctx, tenantID, limit)
}

// Get returns the latest row for a document id.
func (s *DocumentService) Get(ctx context.Context, tenantID, documentID string) (*domain.Document, error) {
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.docStore.Get(ctx, tenantID, documentID)
}

// Tenants lists the tenant namespaces known to the document store.
func (s *DocumentService) Tenants(ctx context.Context) ([]string, error) {
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}
	tenants, err := s.docStore.Tenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDocumentStore, err)
	}
	return tenants, nil
}

// GetByRow returns a row by its surrogate key.
func (s *DocumentService) GetByRow(ctx context.Context, tenantID string, rowID int64) (*domain.Document, error) {
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.docStore.GetByRow(ctx, tenantID, rowID)
}

// Delete removes a document from every store and its stored input.
func (s *DocumentService) Delete(ctx context.Context, tenantID, documentID string) (*domain.DeleteResult, error) {
	if s.persister == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.persister.Delete(ctx, tenantID, documentID)
}

// DeleteByRow removes one row and the index entries of its document id.
func (s *DocumentService) DeleteByRow(ctx context.Context, tenantID string, rowID int64) (*domain.DeleteResult, error) {
	if s.persister == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.persister.DeleteByRow(ctx, tenantID, rowID)
}

// SourcePath returns the stored input of a document.
// Documents ingested from inline text have none and return ErrNotFound.
func (s *DocumentService) SourcePath(ctx context.Context, tenantID, documentID string) (string, error) {
	doc, err := s.Get(ctx, tenantID, documentID)
	if err != nil {
		return "", err
	}
	if doc.SourcePath == "" {
		return "", fmt.Errorf("%w: document %s has no stored file", domain.ErrNotFound, documentID)
	}
	return doc.SourcePath, nil
}
