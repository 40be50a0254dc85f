package driven

import "context"

// VectorChunk is one embedded unit written to the vector store.
type VectorChunk struct {
	// ID is a UUID unique to this chunk.
	ID string

	// Text is the flattened representation that was embedded.
	Text string

	// Embedding is the vector for Text.
	Embedding []float32

	// Metadata is stored alongside and can be filtered on.
	Metadata map[string]string
}

// VectorStore is the tenant-partitioned semantic index.
type VectorStore interface {
	// Upsert writes chunks into the tenant collection, creating it if needed.
	Upsert(ctx context.Context, tenantID string, chunks []VectorChunk) error

	// DeleteByField removes every chunk whose metadata field equals value.
	DeleteByField(ctx context.Context, tenantID, field, value string) error

	// Search finds the k nearest chunks to the query vector.
	Search(ctx context.Context, tenantID string, query []float32, k int) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	ID       string
	Text     string
	Score    float64
	Metadata map[string]string
}
