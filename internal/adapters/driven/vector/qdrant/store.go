// Package qdrant provides the vector store over a Qdrant server.
// Each tenant has one collection named by domain.CollectionName.
package qdrant

import (
	"context"
	"fmt"
	"sync"

	"github.com/qdrant/go-client/qdrant"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

// textKey is the payload key holding the embedded text.
const textKey = "text"

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Config holds the Qdrant gRPC endpoint.
type Config struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

// Store writes and searches tenant collections.
type Store struct {
	client *qdrant.Client

	mu    sync.Mutex
	known map[string]bool
}

// NewStore connects to Qdrant.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: connect: %w", err)
	}
	return &Store{client: client, known: make(map[string]bool)}, nil
}

// Ping checks the server answers.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant: health check: %w", err)
	}
	return nil
}

// Upsert writes chunks, creating the collection sized to the first vector.
func (s *Store) Upsert(ctx context.Context, tenantID string, chunks []driven.VectorChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	collection := domain.CollectionName(tenantID)
	if err := s.ensureCollection(ctx, collection, uint64(len(chunks[0].Embedding))); err != nil {
		return err
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           &wait,
		Points:         buildPoints(chunks),
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert into %s: %w", collection, err)
	}
	return nil
}

// DeleteByField removes every point whose payload field equals value.
func (s *Store) DeleteByField(ctx context.Context, tenantID, field, value string) error {
	collection := domain.CollectionName(tenantID)
	exists, err := s.exists(ctx, collection)
	if err != nil || !exists {
		return err
	}

	wait := true
	_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Wait:           &wait,
		Points:         qdrant.NewPointsSelectorFilter(fieldFilter(field, value)),
	})
	if err != nil {
		return fmt.Errorf("qdrant: delete from %s: %w", collection, err)
	}
	return nil
}

// Search returns the k nearest points. A missing collection yields no hits.
func (s *Store) Search(ctx context.Context, tenantID string, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	collection := domain.CollectionName(tenantID)
	exists, err := s.exists(ctx, collection)
	if err != nil || !exists {
		return nil, err
	}

	limit := uint64(k)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: query %s: %w", collection, err)
	}
	return hitsFromPoints(points), nil
}

// Close releases the gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) exists(ctx context.Context, collection string) (bool, error) {
	s.mu.Lock()
	known := s.known[collection]
	s.mu.Unlock()
	if known {
		return true, nil
	}
	ok, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("qdrant: check collection %s: %w", collection, err)
	}
	if ok {
		s.mu.Lock()
		s.known[collection] = true
		s.mu.Unlock()
	}
	return ok, nil
}

func (s *Store) ensureCollection(ctx context.Context, collection string, size uint64) error {
	ok, err := s.exists(ctx, collection)
	if err != nil || ok {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.known[collection] {
		return nil
	}
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     size,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		// Another process may have created it first.
		if exists, checkErr := s.client.CollectionExists(ctx, collection); checkErr != nil || !exists {
			return fmt.Errorf("qdrant: create collection %s: %w", collection, err)
		}
	}
	s.known[collection] = true
	return nil
}

func buildPoints(chunks []driven.VectorChunk) []*qdrant.PointStruct {
	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		payload := make(map[string]any, len(chunk.Metadata)+1)
		for k, v := range chunk.Metadata {
			payload[k] = v
		}
		payload[textKey] = chunk.Text

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ID),
			Vectors: qdrant.NewVectors(chunk.Embedding...),
			Payload: qdrant.NewValueMap(payload),
		}
	}
	return points
}

func fieldFilter(field, value string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch(field, value)},
	}
}

func hitsFromPoints(points []*qdrant.ScoredPoint) []driven.VectorHit {
	hits := make([]driven.VectorHit, 0, len(points))
	for _, p := range points {
		hit := driven.VectorHit{
			ID:       p.GetId().GetUuid(),
			Score:    float64(p.GetScore()),
			Metadata: make(map[string]string, len(p.GetPayload())),
		}
		for k, v := range p.GetPayload() {
			if k == textKey {
				hit.Text = v.GetStringValue()
				continue
			}
			hit.Metadata[k] = v.GetStringValue()
		}
		hits = append(hits, hit)
	}
	return hits
}
