package driving

import (
	"context"

	"github.com/custodia-labs/enlogic/internal/pipeline"
)

// IngestionService runs the parse, extract and persist pipeline.
type IngestionService interface {
	// Ingest runs one request to completion and returns the final Context.
	// The returned Context carries the stored Document and StorageResult.
	Ingest(ctx context.Context, req pipeline.Context) (pipeline.Context, error)

	// IngestBatch runs independent requests concurrently on at most
	// workers goroutines. Results are returned in input order.
	IngestBatch(ctx context.Context, reqs []pipeline.Context, workers int) []IngestResult

	// Upload stores a file for a later Ingest and returns its stored path.
	Upload(ctx context.Context, filename string, data []byte) (string, error)

	// Discard removes a stored upload whose ingest did not complete.
	Discard(ctx context.Context, path string) error
}

// IngestResult is the outcome of one request in a batch.
type IngestResult struct {
	Context pipeline.Context
	Err     error
}
