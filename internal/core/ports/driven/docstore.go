package driven

import (
	"context"

	"github.com/custodia-labs/enlogic/internal/core/domain"
)

// DocumentStore is the authoritative relational store of documents.
// Each tenant lives in its own namespace (domain.SchemaName).
type DocumentStore interface {
	// EnsureNamespace creates the tenant namespace if it does not exist.
	// It is safe to call concurrently.
	EnsureNamespace(ctx context.Context, tenantID string) error

	// Insert stores a new row and sets doc.RowID and doc.CreatedAt.
	// document_id is not unique; repeated inserts create new rows.
	Insert(ctx context.Context, tenantID string, doc *domain.Document) error

	// Get returns the most recent row with the given document_id.
	Get(ctx context.Context, tenantID, documentID string) (*domain.Document, error)

	// GetByRow returns the row with the given surrogate key.
	GetByRow(ctx context.Context, tenantID string, rowID int64) (*domain.Document, error)

	// List returns the newest rows first, at most limit.
	List(ctx context.Context, tenantID string, limit int) ([]domain.Document, error)

	// Delete removes every row with the given document_id.
	Delete(ctx context.Context, tenantID, documentID string) error

	// DeleteByRow removes one row by surrogate key.
	DeleteByRow(ctx context.Context, tenantID string, rowID int64) error

	// Tenants returns the namespaces created so far, sorted.
	Tenants(ctx context.Context) ([]string, error)
}
