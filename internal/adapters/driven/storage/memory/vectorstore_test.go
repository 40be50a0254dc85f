package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

func TestVectorStore_SearchOrdersBySimilarity(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "t", []driven.VectorChunk{
		{ID: "x", Text: "x axis", Embedding: []float32{1, 0}, Metadata: map[string]string{"document_id": "D1"}},
		{ID: "y", Text: "y axis", Embedding: []float32{0, 1}, Metadata: map[string]string{"document_id": "D2"}},
		{ID: "xy", Text: "diagonal", Embedding: []float32{1, 1}, Metadata: map[string]string{"document_id": "D3"}},
	}))

	hits, err := store.Search(ctx, "t", []float32{1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "x", hits[0].ID)
	assert.Equal(t, "xy", hits[1].ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
	assert.Equal(t, "D1", hits[0].Metadata["document_id"])
}

func TestVectorStore_UpsertReplaces(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "t", []driven.VectorChunk{{ID: "c", Text: "old", Embedding: []float32{1}}}))
	require.NoError(t, store.Upsert(ctx, "t", []driven.VectorChunk{{ID: "c", Text: "new", Embedding: []float32{1}}}))

	assert.Equal(t, 1, store.Count("t"))
	hits, err := store.Search(ctx, "t", []float32{1}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "new", hits[0].Text)
}

func TestVectorStore_DeleteByField(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "t", []driven.VectorChunk{
		{ID: "1", Metadata: map[string]string{"document_id": "D1"}},
		{ID: "2", Metadata: map[string]string{"document_id": "D1"}},
		{ID: "3", Metadata: map[string]string{"document_id": "D2"}},
	}))

	require.NoError(t, store.DeleteByField(ctx, "t", "document_id", "D1"))
	assert.Equal(t, 1, store.Count("t"))
}

func TestVectorStore_TenantIsolation(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "acme", []driven.VectorChunk{{ID: "1", Embedding: []float32{1}}}))

	hits, err := store.Search(ctx, "globex", []float32{1}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{2, 0}, []float32{5, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}
