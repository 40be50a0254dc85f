package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/enlogic/internal/core/domain"
)

func newAgent(id string, created time.Time, active bool) *domain.Agent {
	return &domain.Agent{
		ID:        id,
		Name:      "agent " + id,
		Prompt:    "extract",
		Version:   1,
		IsActive:  active,
		CreatedAt: created,
	}
}

func TestAgentStore_SaveAndGet(t *testing.T) {
	store := NewAgentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveAgent(ctx, "acme", newAgent("a1", time.Now(), true)))

	got, err := store.GetAgent(ctx, "acme", "a1")
	require.NoError(t, err)
	assert.Equal(t, "agent a1", got.Name)

	_, err = store.GetAgent(ctx, "globex", "a1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAgentStore_List_OrderAndFilter(t *testing.T) {
	store := NewAgentStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveAgent(ctx, "t", newAgent("old", base, true)))
	require.NoError(t, store.SaveAgent(ctx, "t", newAgent("new", base.Add(time.Hour), true)))
	require.NoError(t, store.SaveAgent(ctx, "t", newAgent("off", base.Add(2*time.Hour), false)))
	// Same timestamp as "new"; saved later so listed first.
	require.NoError(t, store.SaveAgent(ctx, "t", newAgent("tie", base.Add(time.Hour), true)))

	active, err := store.ListAgents(ctx, "t", false)
	require.NoError(t, err)
	ids := make([]string, len(active))
	for i, a := range active {
		ids[i] = a.ID
	}
	assert.Equal(t, []string{"tie", "new", "old"}, ids)

	all, err := store.ListAgents(ctx, "t", true)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "off", all[0].ID)
}

func TestAgentStore_Deactivate(t *testing.T) {
	store := NewAgentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveAgent(ctx, "t", newAgent("a1", time.Now(), true)))
	require.NoError(t, store.DeactivateAgent(ctx, "t", "a1"))

	got, err := store.GetAgent(ctx, "t", "a1")
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, store.DeactivateAgent(ctx, "t", "missing"), domain.ErrNotFound)
}

func TestAgentStore_Delete(t *testing.T) {
	store := NewAgentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveAgent(ctx, "t", newAgent("a1", time.Now(), true)))
	require.NoError(t, store.DeleteAgent(ctx, "t", "a1"))

	_, err := store.GetAgent(ctx, "t", "a1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.DeleteAgent(ctx, "t", "a1"), domain.ErrNotFound)
}

func TestAgentStore_GetReturnsCopy(t *testing.T) {
	store := NewAgentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveAgent(ctx, "t", newAgent("a1", time.Now(), true)))
	got, err := store.GetAgent(ctx, "t", "a1")
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := store.GetAgent(ctx, "t", "a1")
	require.NoError(t, err)
	assert.Equal(t, "agent a1", again.Name)
}
