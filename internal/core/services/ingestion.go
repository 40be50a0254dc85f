package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
	"github.com/custodia-labs/enlogic/internal/core/ports/driving"
	"github.com/custodia-labs/enlogic/internal/logger"
	"github.com/custodia-labs/enlogic/internal/pipeline"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// DefaultWorkers is the batch concurrency when none is configured.
const DefaultWorkers = 4

// NewIngestionPipeline chains the default parse, extract and persist steps.
func NewIngestionPipeline(dispatcher *Dispatcher, extractor *Extractor, persister *Persister) *pipeline.Pipeline {
	return pipeline.NewPipeline(dispatcher, extractor, persister)
}

// IngestionService runs ingestion requests through a pipeline.
type IngestionService struct {
	pipeline *pipeline.Pipeline
	blobs    driven.BlobStore
	workers  int
}

// NewIngestionService creates a new ingestion service.
// workers <= 0 uses DefaultWorkers for batches.
func NewIngestionService(p *pipeline.Pipeline, blobs driven.BlobStore, workers int) *IngestionService {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if p != nil {
		logger.Debug("ingestion steps: %s", strings.Join(p.Names(), " -> "))
	}
	return &IngestionService{
		pipeline: p,
		blobs:    blobs,
		workers:  workers,
	}
}

// Ingest runs one request through every step.
func (s *IngestionService) Ingest(ctx context.Context, req pipeline.Context) (pipeline.Context, error) {
	if s.pipeline == nil {
		return req, domain.ErrNotImplemented
	}
	logger.Section("Ingest")
	logger.Debug("tenant=%s file=%s source_type=%s agent=%s", req.TenantID, req.FileName, req.SourceType, req.AgentID)

	out, err := s.pipeline.Run(ctx, req)
	if err != nil {
		logger.With(logger.Fields{"tenant": req.TenantID, "file": req.FileName}).WithError(err).Error("ingest failed")
		return out, err
	}
	return out, nil
}

// IngestBatch runs independent requests on a bounded worker pool.
// Each request gets its own Context; results keep the input order.
func (s *IngestionService) IngestBatch(ctx context.Context, reqs []pipeline.Context, workers int) []driving.IngestResult {
	results := make([]driving.IngestResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}
	if workers <= 0 {
		workers = s.workers
	}
	workers = min(workers, len(reqs))

	run := func(i int) {
		out, err := s.Ingest(ctx, reqs[i])
		results[i] = driving.IngestResult{Context: out, Err: err}
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		logger.Warn("worker pool unavailable, ingesting sequentially: %v", err)
		for i := range reqs {
			run(i)
		}
		return results
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range reqs {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			run(i)
		}); err != nil {
			wg.Done()
			results[i] = driving.IngestResult{Context: reqs[i], Err: fmt.Errorf("submit ingest: %w", err)}
		}
	}
	wg.Wait()
	return results
}

// Upload stores a file for a later Ingest and returns its stored path.
func (s *IngestionService) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	if s.blobs == nil {
		return "", domain.ErrNotImplemented
	}
	path, err := s.blobs.Save(ctx, filename, data)
	if err != nil {
		return "", fmt.Errorf("%w: store upload: %w", domain.ErrInput, err)
	}
	return path, nil
}

// Discard removes an upload returned by Upload.
func (s *IngestionService) Discard(ctx context.Context, path string) error {
	if s.blobs == nil || path == "" {
		return nil
	}
	if err := s.blobs.Remove(ctx, path); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBlobCleanup, err)
	}
	return nil
}
