// Package postgres provides the server relational store for documents and agents.
//
// Each tenant gets its own schema named by domain.SchemaName holding a
// documents table and an agents table. Schemas are created on first use.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

// Store is a Postgres connection pool shared by the document and agent stores.
type Store struct {
	pool *pgxpool.Pool

	mu      sync.Mutex
	ensured map[string]bool
}

// NewStore connects to dsn and verifies the connection.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", domain.ErrInvalidInput)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Store{pool: pool, ensured: make(map[string]bool)}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// AgentStore returns an AgentStore interface backed by this store.
func (s *Store) AgentStore() driven.AgentStore {
	return &agentStore{store: s}
}

// table returns the sanitized, schema-qualified name of a tenant table.
func table(tenantID, name string) string {
	return pgx.Identifier{domain.SchemaName(tenantID), name}.Sanitize()
}

// ensureDDL creates a tenant schema and its tables. The ALTERs keep
// older schemas in step with the current columns.
func ensureDDL(tenantID string) []string {
	schema := pgx.Identifier{domain.SchemaName(tenantID)}.Sanitize()
	docs := table(tenantID, "documents")
	agents := table(tenantID, "agents")
	return []string{
		"CREATE SCHEMA IF NOT EXISTS " + schema,
		`CREATE TABLE IF NOT EXISTS ` + docs + ` (
			id BIGSERIAL PRIMARY KEY,
			document_id TEXT NOT NULL,
			document_title TEXT NOT NULL,
			document_type TEXT,
			summary TEXT,
			risk_level TEXT,
			source TEXT,
			source_path TEXT,
			source_type TEXT,
			raw_json JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		"ALTER TABLE " + docs + " ADD COLUMN IF NOT EXISTS source_path TEXT",
		"ALTER TABLE " + docs + " ADD COLUMN IF NOT EXISTS source_type TEXT",
		"CREATE INDEX IF NOT EXISTS documents_document_id_idx ON " + docs + " (document_id)",
		`CREATE TABLE IF NOT EXISTS ` + agents + ` (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			prompt TEXT NOT NULL,
			requirement TEXT,
			schema_json JSONB NOT NULL,
			output_language TEXT NOT NULL DEFAULT 'zh',
			version INT NOT NULL DEFAULT 1,
			parent_id TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			visibility TEXT NOT NULL DEFAULT 'private',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		"ALTER TABLE " + agents + " ADD COLUMN IF NOT EXISTS requirement TEXT",
	}
}

// ensure creates the tenant schema once per process.
// Concurrent CREATE ... IF NOT EXISTS can race in Postgres, so the
// DDL runs under the store lock.
func (s *Store) ensure(ctx context.Context, tenantID string) error {
	ns := domain.Namespace(tenantID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured[ns] {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range ensureDDL(tenantID) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: ensure schema: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit schema: %w", err)
	}
	s.ensured[ns] = true
	return nil
}

// ==================== Document Store ====================

type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, document_id, document_title, COALESCE(document_type, ''), COALESCE(summary, ''),
	risk_level, COALESCE(source, ''), COALESCE(source_path, ''), COALESCE(source_type, ''), raw_json, created_at`

func (s *documentStore) EnsureNamespace(ctx context.Context, tenantID string) error {
	return s.store.ensure(ctx, tenantID)
}

func (s *documentStore) Insert(ctx context.Context, tenantID string, doc *domain.Document) error {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return err
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	var risk *string
	if doc.RiskLevel != nil {
		r := string(*doc.RiskLevel)
		risk = &r
	}
	var raw *string
	if len(doc.RawJSON) > 0 {
		r := string(doc.RawJSON)
		raw = &r
	}

	err := s.store.pool.QueryRow(ctx,
		`INSERT INTO `+table(tenantID, "documents")+`
		 (document_id, document_title, document_type, summary, risk_level, source, source_path, source_type, raw_json, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10)
		 RETURNING id`,
		doc.DocumentID, doc.DocumentTitle, doc.DocumentType, doc.Summary, risk,
		doc.Source, doc.SourcePath, doc.SourceType, raw, doc.CreatedAt,
	).Scan(&doc.RowID)
	if err != nil {
		return fmt.Errorf("postgres: insert document: %w", err)
	}
	return nil
}

func (s *documentStore) Get(ctx context.Context, tenantID, documentID string) (*domain.Document, error) {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	row := s.store.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM `+table(tenantID, "documents")+`
		 WHERE document_id = $1 ORDER BY id DESC LIMIT 1`, documentID)
	return scanDocument(row)
}

func (s *documentStore) GetByRow(ctx context.Context, tenantID string, rowID int64) (*domain.Document, error) {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	row := s.store.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM `+table(tenantID, "documents")+` WHERE id = $1`, rowID)
	return scanDocument(row)
}

func (s *documentStore) List(ctx context.Context, tenantID string, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		return []domain.Document{}, nil
	}
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	rows, err := s.store.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM `+table(tenantID, "documents")+`
		 ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0, limit)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate documents: %w", err)
	}
	return out, nil
}

func (s *documentStore) Delete(ctx context.Context, tenantID, documentID string) error {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return err
	}
	if _, err := s.store.pool.Exec(ctx,
		`DELETE FROM `+table(tenantID, "documents")+` WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("postgres: delete document: %w", err)
	}
	return nil
}

func (s *documentStore) DeleteByRow(ctx context.Context, tenantID string, rowID int64) error {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return err
	}
	if _, err := s.store.pool.Exec(ctx,
		`DELETE FROM `+table(tenantID, "documents")+` WHERE id = $1`, rowID); err != nil {
		return fmt.Errorf("postgres: delete document row: %w", err)
	}
	return nil
}

// Tenants lists the tenant schemas present in the database.
func (s *documentStore) Tenants(ctx context.Context) ([]string, error) {
	rows, err := s.store.pool.Query(ctx,
		`SELECT schema_name FROM information_schema.schemata
		 WHERE schema_name LIKE 'tenant\_%' ORDER BY schema_name`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list tenants: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var schema string
		if err := rows.Scan(&schema); err != nil {
			return nil, fmt.Errorf("postgres: scan tenant: %w", err)
		}
		out = append(out, strings.TrimPrefix(schema, "tenant_"))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate tenants: %w", err)
	}
	return out, nil
}

// ==================== Agent Store ====================

type agentStore struct {
	store *Store
}

var _ driven.AgentStore = (*agentStore)(nil)

const agentColumns = `id, name, COALESCE(description, ''), prompt, COALESCE(requirement, ''), schema_json,
	output_language, version, parent_id, is_active, visibility, created_at`

func (s *agentStore) EnsureNamespace(ctx context.Context, tenantID string) error {
	return s.store.ensure(ctx, tenantID)
}

func (s *agentStore) SaveAgent(ctx context.Context, tenantID string, agent *domain.Agent) error {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return err
	}
	if agent.CreatedAt.IsZero() {
		agent.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.pool.Exec(ctx,
		`INSERT INTO `+table(tenantID, "agents")+`
		 (id, name, description, prompt, requirement, schema_json, output_language, version, parent_id,
		  is_active, visibility, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10, $11, $12)`,
		agent.ID, agent.Name, agent.Description, agent.Prompt, agent.Requirement,
		string(agent.Schema), agent.OutputLanguage, agent.Version, agent.ParentID,
		agent.IsActive, agent.Visibility, agent.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: save agent: %w", err)
	}
	return nil
}

func (s *agentStore) GetAgent(ctx context.Context, tenantID, id string) (*domain.Agent, error) {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	row := s.store.pool.QueryRow(ctx,
		`SELECT `+agentColumns+` FROM `+table(tenantID, "agents")+` WHERE id = $1`, id)
	return scanAgent(row)
}

func (s *agentStore) ListAgents(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Agent, error) {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	query := `SELECT ` + agentColumns + ` FROM ` + table(tenantID, "agents")
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.store.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list agents: %w", err)
	}
	defer rows.Close()

	out := []domain.Agent{}
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *agent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate agents: %w", err)
	}
	return out, nil
}

func (s *agentStore) DeactivateAgent(ctx context.Context, tenantID, id string) error {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return err
	}
	tag, err := s.store.pool.Exec(ctx,
		`UPDATE `+table(tenantID, "agents")+` SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deactivate agent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *agentStore) DeleteAgent(ctx context.Context, tenantID, id string) error {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return err
	}
	tag, err := s.store.pool.Exec(ctx, `DELETE FROM `+table(tenantID, "agents")+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete agent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ==================== Helpers ====================

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var doc domain.Document
	var risk *string
	var raw []byte
	err := row.Scan(&doc.RowID, &doc.DocumentID, &doc.DocumentTitle, &doc.DocumentType, &doc.Summary,
		&risk, &doc.Source, &doc.SourcePath, &doc.SourceType, &raw, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: scan document: %w", err)
	}
	if risk != nil {
		level := domain.RiskLevel(*risk)
		doc.RiskLevel = &level
	}
	if raw != nil {
		doc.RawJSON = json.RawMessage(raw)
	}
	doc.CreatedAt = doc.CreatedAt.UTC()
	return &doc, nil
}

func scanAgent(row pgx.Row) (*domain.Agent, error) {
	var agent domain.Agent
	var schema []byte
	err := row.Scan(&agent.ID, &agent.Name, &agent.Description, &agent.Prompt, &agent.Requirement, &schema,
		&agent.OutputLanguage, &agent.Version, &agent.ParentID, &agent.IsActive, &agent.Visibility, &agent.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: scan agent: %w", err)
	}
	agent.Schema = json.RawMessage(schema)
	agent.CreatedAt = agent.CreatedAt.UTC()
	return &agent, nil
}
