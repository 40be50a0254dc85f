package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/enlogic/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

// timeLayout is fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is a SQLite database holding every tenant's documents and agents.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time

	// ensured caches namespaces whose tables exist.
	ensured sync.Map
}

// NewStore creates a new SQLite store in the specified data directory.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("%w: data directory is required", domain.ErrInvalidInput)
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "enlogic.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// AgentStore returns an AgentStore interface backed by this store.
func (s *Store) AgentStore() driven.AgentStore {
	return &agentStore{store: s}
}

// Tenants lists namespaces that have tables, sorted.
func (s *Store) Tenants(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT namespace FROM tenants ORDER BY namespace")
	if err != nil {
		return nil, fmt.Errorf("querying tenants: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, fmt.Errorf("scanning tenant: %w", err)
		}
		out = append(out, ns)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tenants: %w", err)
	}
	return out, nil
}

// migrate applies every NNN_name.up.sql above the database's user_version,
// lowest first. Each file runs in its own transaction together with the
// version bump.
func (s *Store) migrate(fsys fs.FS) error {
	var current int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	steps, err := pendingMigrations(fsys, current)
	if err != nil {
		return err
	}
	for _, step := range steps {
		body, err := fs.ReadFile(fsys, step.file)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", step.file, err)
		}
		if err := s.applyMigration(step.version, string(body)); err != nil {
			return fmt.Errorf("migration %s: %w", step.file, err)
		}
	}
	return nil
}

type migration struct {
	version int
	file    string
}

func pendingMigrations(fsys fs.FS, after int) ([]migration, error) {
	files, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}

	var out []migration
	for _, file := range files {
		prefix, _, ok := strings.Cut(file, "_")
		if !ok {
			return nil, fmt.Errorf("migration %s: missing version prefix", file)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration %s: bad version: %w", file, err)
		}
		if version > after {
			out = append(out, migration{version: version, file: file})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func (s *Store) applyMigration(version int, body string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(body); err != nil {
		return err
	}
	// PRAGMA does not take bound parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return err
	}
	return tx.Commit()
}

// tables returns the quoted document and agent table names of a tenant.
// Namespace only yields [A-Za-z0-9_], so quoting is sufficient.
func tables(tenantID string) (docs, agents string) {
	schema := domain.SchemaName(tenantID)
	return `"` + schema + `_documents"`, `"` + schema + `_agents"`
}

// ensure creates the tenant tables once per process.
func (s *Store) ensure(ctx context.Context, tenantID string) error {
	ns := domain.Namespace(tenantID)
	if _, ok := s.ensured.Load(ns); ok {
		return nil
	}

	docs, agents := tables(tenantID)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + docs + ` (
			row_id INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id TEXT NOT NULL,
			document_title TEXT NOT NULL,
			document_type TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			risk_level TEXT,
			source TEXT NOT NULL DEFAULT '',
			source_path TEXT NOT NULL DEFAULT '',
			source_type TEXT NOT NULL DEFAULT '',
			raw_json TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS "` + domain.SchemaName(tenantID) + `_documents_document_id" ON ` +
			docs + ` (document_id)`,
		`CREATE TABLE IF NOT EXISTS ` + agents + ` (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			prompt TEXT NOT NULL,
			requirement TEXT NOT NULL DEFAULT '',
			schema_json TEXT NOT NULL,
			output_language TEXT NOT NULL,
			version INTEGER NOT NULL,
			parent_id TEXT,
			is_active INTEGER NOT NULL DEFAULT 1,
			visibility TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating tenant tables: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO tenants (namespace, created_at) VALUES (?, ?) ON CONFLICT(namespace) DO NOTHING",
		ns, formatTime(s.now())); err != nil {
		return fmt.Errorf("registering tenant: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.ensured.Store(ns, struct{}{})
	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `row_id, document_id, document_title, document_type, summary, risk_level,
	source, source_path, source_type, raw_json, created_at`

// EnsureNamespace creates the tenant tables if they do not exist.
func (s *documentStore) EnsureNamespace(ctx context.Context, tenantID string) error {
	return s.store.ensure(ctx, tenantID)
}

// Insert stores a new row and assigns its row id.
func (s *documentStore) Insert(ctx context.Context, tenantID string, doc *domain.Document) error {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return err
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = s.store.now().UTC()
	}

	var risk sql.NullString
	if doc.RiskLevel != nil {
		risk = sql.NullString{String: string(*doc.RiskLevel), Valid: true}
	}
	var raw sql.NullString
	if len(doc.RawJSON) > 0 {
		raw = sql.NullString{String: string(doc.RawJSON), Valid: true}
	}

	docs, _ := tables(tenantID)
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO `+docs+` (document_id, document_title, document_type, summary, risk_level,
			source, source_path, source_type, raw_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.DocumentID, doc.DocumentTitle, doc.DocumentType, doc.Summary, risk,
		doc.Source, doc.SourcePath, doc.SourceType, raw, formatTime(doc.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading row id: %w", err)
	}
	doc.RowID = id
	return nil
}

// Get returns the most recent row with documentID.
func (s *documentStore) Get(ctx context.Context, tenantID, documentID string) (*domain.Document, error) {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	docs, _ := tables(tenantID)
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+` FROM `+docs+`
		WHERE document_id = ? ORDER BY row_id DESC LIMIT 1
	`, documentID)
	return scanDocument(row)
}

// GetByRow returns the row with rowID.
func (s *documentStore) GetByRow(ctx context.Context, tenantID string, rowID int64) (*domain.Document, error) {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	docs, _ := tables(tenantID)
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+` FROM `+docs+` WHERE row_id = ?
	`, rowID)
	return scanDocument(row)
}

// List returns the newest rows first.
func (s *documentStore) List(ctx context.Context, tenantID string, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		return []domain.Document{}, nil
	}
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	docs, _ := tables(tenantID)
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+documentColumns+` FROM `+docs+` ORDER BY row_id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
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
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return out, nil
}

// Delete removes every row with documentID.
func (s *documentStore) Delete(ctx context.Context, tenantID, documentID string) error {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return err
	}
	docs, _ := tables(tenantID)
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM "+docs+" WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// DeleteByRow removes one row.
func (s *documentStore) DeleteByRow(ctx context.Context, tenantID string, rowID int64) error {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return err
	}
	docs, _ := tables(tenantID)
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM "+docs+" WHERE row_id = ?", rowID); err != nil {
		return fmt.Errorf("deleting document row: %w", err)
	}
	return nil
}

func (s *documentStore) Tenants(ctx context.Context) ([]string, error) {
	return s.store.Tenants(ctx)
}

// ==================== Agent Store ====================

// agentStore implements driven.AgentStore.
type agentStore struct {
	store *Store
}

var _ driven.AgentStore = (*agentStore)(nil)

const agentColumns = `id, name, description, prompt, requirement, schema_json, output_language,
	version, parent_id, is_active, visibility, created_at`

// EnsureNamespace creates the tenant tables if they do not exist.
func (s *agentStore) EnsureNamespace(ctx context.Context, tenantID string) error {
	return s.store.ensure(ctx, tenantID)
}

// SaveAgent inserts a new agent record.
func (s *agentStore) SaveAgent(ctx context.Context, tenantID string, agent *domain.Agent) error {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return err
	}
	if agent.CreatedAt.IsZero() {
		agent.CreatedAt = s.store.now().UTC()
	}

	var parent sql.NullString
	if agent.ParentID != nil {
		parent = sql.NullString{String: *agent.ParentID, Valid: true}
	}

	_, agents := tables(tenantID)
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO `+agents+` (`+agentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, agent.ID, agent.Name, agent.Description, agent.Prompt, agent.Requirement,
		string(agent.Schema), agent.OutputLanguage, agent.Version, parent,
		agent.IsActive, agent.Visibility, formatTime(agent.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving agent: %w", err)
	}
	return nil
}

// GetAgent retrieves an agent by ID.
func (s *agentStore) GetAgent(ctx context.Context, tenantID, id string) (*domain.Agent, error) {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	_, agents := tables(tenantID)
	row := s.store.db.QueryRowContext(ctx, "SELECT "+agentColumns+" FROM "+agents+" WHERE id = ?", id)
	return scanAgent(row)
}

// ListAgents returns agents newest first.
func (s *agentStore) ListAgents(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Agent, error) {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	_, agents := tables(tenantID)
	query := "SELECT " + agentColumns + " FROM " + agents
	if !includeInactive {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := s.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying agents: %w", err)
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
		return nil, fmt.Errorf("iterating agents: %w", err)
	}
	return out, nil
}

// DeactivateAgent sets is_active to false.
func (s *agentStore) DeactivateAgent(ctx context.Context, tenantID, id string) error {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return err
	}
	_, agents := tables(tenantID)
	res, err := s.store.db.ExecContext(ctx, "UPDATE "+agents+" SET is_active = 0 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deactivating agent: %w", err)
	}
	return requireAffected(res)
}

// DeleteAgent removes the record.
func (s *agentStore) DeleteAgent(ctx context.Context, tenantID, id string) error {
	if err := s.store.ensure(ctx, tenantID); err != nil {
		return err
	}
	_, agents := tables(tenantID)
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM "+agents+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting agent: %w", err)
	}
	return requireAffected(res)
}

// ==================== Helpers ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*domain.Document, error) {
	var doc domain.Document
	var risk, raw sql.NullString
	var createdAt string
	if err := row.Scan(&doc.RowID, &doc.DocumentID, &doc.DocumentTitle, &doc.DocumentType,
		&doc.Summary, &risk, &doc.Source, &doc.SourcePath, &doc.SourceType, &raw, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if risk.Valid {
		level := domain.RiskLevel(risk.String)
		doc.RiskLevel = &level
	}
	if raw.Valid {
		doc.RawJSON = json.RawMessage(raw.String)
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	doc.CreatedAt = t
	return &doc, nil
}

func scanAgent(row scanner) (*domain.Agent, error) {
	var agent domain.Agent
	var schema, createdAt string
	var parent sql.NullString
	if err := row.Scan(&agent.ID, &agent.Name, &agent.Description, &agent.Prompt, &agent.Requirement,
		&schema, &agent.OutputLanguage, &agent.Version, &parent, &agent.IsActive,
		&agent.Visibility, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning agent: %w", err)
	}

	agent.Schema = json.RawMessage(schema)
	if parent.Valid {
		agent.ParentID = &parent.String
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	agent.CreatedAt = t
	return &agent, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
