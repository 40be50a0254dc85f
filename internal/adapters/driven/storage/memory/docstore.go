package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Rows are kept per tenant namespace in insertion order.
type DocumentStore struct {
	mu      sync.RWMutex
	nextRow int64
	rows    map[string][]domain.Document
	now     func() time.Time
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		rows: make(map[string][]domain.Document),
		now:  time.Now,
	}
}

// EnsureNamespace creates the tenant namespace if it does not exist.
func (s *DocumentStore) EnsureNamespace(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns := domain.SchemaName(tenantID)
	if _, ok := s.rows[ns]; !ok {
		s.rows[ns] = nil
	}
	return nil
}

// Insert appends a row and assigns its row id and creation time.
func (s *DocumentStore) Insert(_ context.Context, tenantID string, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRow++
	doc.RowID = s.nextRow
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = s.now().UTC()
	}
	ns := domain.SchemaName(tenantID)
	s.rows[ns] = append(s.rows[ns], *doc)
	return nil
}

// Get returns the most recently inserted row with documentID.
func (s *DocumentStore) Get(_ context.Context, tenantID, documentID string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.rows[domain.SchemaName(tenantID)]
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].DocumentID == documentID {
			doc := rows[i]
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetByRow returns the row with rowID.
func (s *DocumentStore) GetByRow(_ context.Context, tenantID string, rowID int64) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, row := range s.rows[domain.SchemaName(tenantID)] {
		if row.RowID == rowID {
			return &row, nil
		}
	}
	return nil, domain.ErrNotFound
}

// List returns the newest rows first.
func (s *DocumentStore) List(_ context.Context, tenantID string, limit int) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.rows[domain.SchemaName(tenantID)]
	result := make([]domain.Document, 0, min(len(rows), max(limit, 0)))
	for i := len(rows) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, rows[i])
	}
	return result, nil
}

// Delete removes every row with documentID.
func (s *DocumentStore) Delete(_ context.Context, tenantID, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns := domain.SchemaName(tenantID)
	kept := s.rows[ns][:0]
	for _, row := range s.rows[ns] {
		if row.DocumentID != documentID {
			kept = append(kept, row)
		}
	}
	s.rows[ns] = kept
	return nil
}

// DeleteByRow removes the row with rowID.
func (s *DocumentStore) DeleteByRow(_ context.Context, tenantID string, rowID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns := domain.SchemaName(tenantID)
	kept := s.rows[ns][:0]
	for _, row := range s.rows[ns] {
		if row.RowID != rowID {
			kept = append(kept, row)
		}
	}
	s.rows[ns] = kept
	return nil
}

// Tenants returns the namespaces with tables, sorted.
func (s *DocumentStore) Tenants(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.rows))
	for schema := range s.rows {
		out = append(out, strings.TrimPrefix(schema, "tenant_"))
	}
	sort.Strings(out)
	return out, nil
}
