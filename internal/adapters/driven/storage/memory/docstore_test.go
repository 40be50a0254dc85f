package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/enlogic/internal/core/domain"
)

func TestNewDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.rows)
}

func TestDocumentStore_Insert_AssignsRowAndTime(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := &domain.Document{DocumentID: "ECN-001", DocumentTitle: "Bolt change"}
	require.NoError(t, store.Insert(ctx, "acme", doc))

	assert.Equal(t, int64(1), doc.RowID)
	assert.False(t, doc.CreatedAt.IsZero())

	got, err := store.Get(ctx, "acme", "ECN-001")
	require.NoError(t, err)
	assert.Equal(t, "Bolt change", got.DocumentTitle)
}

func TestDocumentStore_Get_NotFound(t *testing.T) {
	store := NewDocumentStore()

	_, err := store.Get(context.Background(), "acme", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.GetByRow(context.Background(), "acme", 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_Get_LatestDuplicate(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, "acme", &domain.Document{DocumentID: "D1", DocumentTitle: "first"}))
	require.NoError(t, store.Insert(ctx, "acme", &domain.Document{DocumentID: "D1", DocumentTitle: "second"}))

	got, err := store.Get(ctx, "acme", "D1")
	require.NoError(t, err)
	assert.Equal(t, "second", got.DocumentTitle)

	first, err := store.GetByRow(ctx, "acme", 1)
	require.NoError(t, err)
	assert.Equal(t, "first", first.DocumentTitle)
}

func TestDocumentStore_TenantIsolation(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, "acme", &domain.Document{DocumentID: "D1"}))

	_, err := store.Get(ctx, "globex", "D1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Tenants that normalise to the same namespace share rows.
	got, err := store.Get(ctx, " acme ", "D1")
	require.NoError(t, err)
	assert.Equal(t, "D1", got.DocumentID)
}

func TestDocumentStore_List_NewestFirst(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Insert(ctx, "t", &domain.Document{DocumentID: id}))
	}

	docs, err := store.List(ctx, "t", 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "c", docs[0].DocumentID)
	assert.Equal(t, "b", docs[1].DocumentID)

	empty, err := store.List(ctx, "other", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDocumentStore_Delete_RemovesDuplicates(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, "t", &domain.Document{DocumentID: "D1"}))
	require.NoError(t, store.Insert(ctx, "t", &domain.Document{DocumentID: "D2"}))
	require.NoError(t, store.Insert(ctx, "t", &domain.Document{DocumentID: "D1"}))

	require.NoError(t, store.Delete(ctx, "t", "D1"))

	_, err := store.Get(ctx, "t", "D1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	docs, err := store.List(ctx, "t", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "D2", docs[0].DocumentID)
}

func TestDocumentStore_DeleteByRow(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	first := &domain.Document{DocumentID: "D1"}
	second := &domain.Document{DocumentID: "D1"}
	require.NoError(t, store.Insert(ctx, "t", first))
	require.NoError(t, store.Insert(ctx, "t", second))

	require.NoError(t, store.DeleteByRow(ctx, "t", second.RowID))

	got, err := store.Get(ctx, "t", "D1")
	require.NoError(t, err)
	assert.Equal(t, first.RowID, got.RowID)
}

func TestDocumentStore_EnsureNamespace(t *testing.T) {
	store := NewDocumentStore()
	require.NoError(t, store.EnsureNamespace(context.Background(), "acme"))
	require.NoError(t, store.EnsureNamespace(context.Background(), "acme"))
	_, ok := store.rows["tenant_acme"]
	assert.True(t, ok)
}

func TestDocumentStore_ConcurrentInsert(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Insert(ctx, "t", &domain.Document{DocumentID: "D"})
		}()
	}
	wg.Wait()

	docs, err := store.List(ctx, "t", 100)
	require.NoError(t, err)
	assert.Len(t, docs, 20)
}

func TestDocumentStore_Tenants(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	tenants, err := store.Tenants(ctx)
	require.NoError(t, err)
	assert.Empty(t, tenants)

	require.NoError(t, store.Insert(ctx, "zeta", &domain.Document{DocumentID: "A"}))
	require.NoError(t, store.EnsureNamespace(ctx, "Acme Corp"))

	tenants, err = store.Tenants(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.Namespace("Acme Corp"), "zeta"}, tenants)
}
