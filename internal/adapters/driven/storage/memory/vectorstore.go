package memory

import (
	"context"
	"maps"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// It uses brute force cosine similarity.
type VectorStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]driven.VectorChunk
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		collections: make(map[string]map[string]driven.VectorChunk),
	}
}

// Upsert stores chunks, replacing any with the same ID.
func (s *VectorStore) Upsert(_ context.Context, tenantID string, chunks []driven.VectorChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := domain.CollectionName(tenantID)
	coll := s.collections[name]
	if coll == nil {
		coll = make(map[string]driven.VectorChunk)
		s.collections[name] = coll
	}
	for _, c := range chunks {
		c.Embedding = append([]float32(nil), c.Embedding...)
		c.Metadata = maps.Clone(c.Metadata)
		coll[c.ID] = c
	}
	return nil
}

// DeleteByField removes chunks whose metadata field equals value.
func (s *VectorStore) DeleteByField(_ context.Context, tenantID, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.collections[domain.CollectionName(tenantID)]
	for id, c := range coll {
		if c.Metadata[field] == value {
			delete(coll, id)
		}
	}
	return nil
}

// Search returns the k most similar chunks.
func (s *VectorStore) Search(_ context.Context, tenantID string, query []float32, k int) ([]driven.VectorHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll := s.collections[domain.CollectionName(tenantID)]
	if k <= 0 || len(coll) == 0 {
		return nil, nil
	}

	hits := make([]driven.VectorHit, 0, len(coll))
	for _, c := range coll {
		hits = append(hits, driven.VectorHit{
			ID:       c.ID,
			Text:     c.Text,
			Score:    cosineSimilarity(query, c.Embedding),
			Metadata: maps.Clone(c.Metadata),
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of chunks in the tenant collection.
func (s *VectorStore) Count(tenantID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[domain.CollectionName(tenantID)])
}

// Close is a no-op.
func (s *VectorStore) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
