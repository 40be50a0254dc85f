package postgres

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/enlogic/internal/core/domain"
)

func TestTable_QuotesSchemaQualifiedName(t *testing.T) {
	assert.Equal(t, `"tenant_acme_co"."documents"`, table("acme-co", "documents"))
	assert.Equal(t, `"tenant_default"."agents"`, table("  ", "agents"))
}

func TestEnsureDDL_TargetsTenantSchema(t *testing.T) {
	stmts := ensureDDL("acme")

	require.NotEmpty(t, stmts)
	assert.Equal(t, `CREATE SCHEMA IF NOT EXISTS "tenant_acme"`, stmts[0])
	for _, stmt := range stmts[1:] {
		assert.Contains(t, stmt, `"tenant_acme".`)
	}
}

func TestNewStore_RequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// The remaining tests need a live server: ENLOGIC_TEST_POSTGRES_DSN.
func setupTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dsn := os.Getenv("ENLOGIC_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ENLOGIC_TEST_POSTGRES_DSN not set")
	}
	store, err := NewStore(context.Background(), dsn)
	require.NoError(t, err)

	tenant := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	t.Cleanup(func() {
		_, _ = store.pool.Exec(context.Background(),
			`DROP SCHEMA IF EXISTS `+`"`+domain.SchemaName(tenant)+`"`+` CASCADE`)
		_ = store.Close()
	})
	return store, tenant
}

func TestDocumentStore_RoundTrip(t *testing.T) {
	store, tenant := setupTestStore(t)
	ctx := context.Background()
	docs := store.DocumentStore()

	risk := domain.RiskMedium
	first := &domain.Document{DocumentID: "ECN-1", DocumentTitle: "first", RiskLevel: &risk,
		RawJSON: json.RawMessage(`{"a":1}`)}
	second := &domain.Document{DocumentID: "ECN-1", DocumentTitle: "second"}
	require.NoError(t, docs.Insert(ctx, tenant, first))
	require.NoError(t, docs.Insert(ctx, tenant, second))

	got, err := docs.Get(ctx, tenant, "ECN-1")
	require.NoError(t, err)
	assert.Equal(t, "second", got.DocumentTitle)

	byRow, err := docs.GetByRow(ctx, tenant, first.RowID)
	require.NoError(t, err)
	require.NotNil(t, byRow.RiskLevel)
	assert.Equal(t, domain.RiskMedium, *byRow.RiskLevel)
	assert.JSONEq(t, `{"a":1}`, string(byRow.RawJSON))

	require.NoError(t, docs.Delete(ctx, tenant, "ECN-1"))
	_, err = docs.Get(ctx, tenant, "ECN-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAgentStore_RoundTrip(t *testing.T) {
	store, tenant := setupTestStore(t)
	ctx := context.Background()
	agents := store.AgentStore()

	agent := &domain.Agent{
		ID:             uuid.NewString(),
		Name:           "ECN",
		Prompt:         "Extract",
		Schema:         json.RawMessage(`{"type":"object"}`),
		OutputLanguage: "en",
		Version:        1,
		IsActive:       true,
		Visibility:     domain.DefaultVisibility,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, agents.SaveAgent(ctx, tenant, agent))
	require.NoError(t, agents.DeactivateAgent(ctx, tenant, agent.ID))

	active, err := agents.ListAgents(ctx, tenant, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	got, err := agents.GetAgent(ctx, tenant, agent.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Nil(t, got.ParentID)

	require.NoError(t, agents.DeleteAgent(ctx, tenant, agent.ID))
	assert.ErrorIs(t, agents.DeleteAgent(ctx, tenant, agent.ID), domain.ErrNotFound)
}
