package driving

import (
	"context"

	"github.com/custodia-labs/enlogic/internal/core/domain"
)

// DefaultDocumentListLimit is used when List is called with a limit <= 0.
const DefaultDocumentListLimit = 20

// DocumentService provides access to stored documents.
type DocumentService interface {
	// List returns the newest documents first.
	List(ctx context.Context, tenantID string, limit int) ([]domain.Document, error)

	// Get returns the latest row for a document id.
	Get(ctx context.Context, tenantID, documentID string) (*domain.Document, error)

	// GetByRow returns a row by its surrogate key.
	GetByRow(ctx context.Context, tenantID string, rowID int64) (*domain.Document, error)

	// Delete removes a document from every store and its stored input.
	Delete(ctx context.Context, tenantID, documentID string) (*domain.DeleteResult, error)

	// DeleteByRow removes one row and its index entries.
	DeleteByRow(ctx context.Context, tenantID string, rowID int64) (*domain.DeleteResult, error)

	// SourcePath returns the stored input of a document for download.
	SourcePath(ctx context.Context, tenantID, documentID string) (string, error)

	// Tenants lists the tenant namespaces known to the document store.
	Tenants(ctx context.Context) ([]string, error)
}
