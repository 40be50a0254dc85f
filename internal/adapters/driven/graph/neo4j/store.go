// Package neo4j provides the graph store over a Neo4j server.
//
// Every node carries the tenant label from domain.GraphLabel alongside
// its kind label, and reads match on both.
package neo4j

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.GraphStore = (*Store)(nil)

// identifier matches names that may be spliced into Cypher.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config holds the Neo4j connection settings.
type Config struct {
	URI      string
	User     string
	Password string
	Database string
}

// Store writes tenant nodes and edges.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewStore connects to Neo4j and verifies connectivity.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j: create driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: verify connectivity: %w", err)
	}
	return &Store{driver: driver, database: cfg.Database}, nil
}

// UpsertNode merges a node on its key and sets props.
func (s *Store) UpsertNode(ctx context.Context, tenantID string, node driven.NodeRef, props map[string]any) error {
	query, err := upsertNodeQuery(tenantID, node)
	if err != nil {
		return err
	}
	return s.write(ctx, query, map[string]any{
		"key":   node.Key,
		"props": nonNil(props),
		"label": domain.GraphLabel(tenantID),
	})
}

// UpsertEdge merges both endpoints and the edge between them.
func (s *Store) UpsertEdge(ctx context.Context, tenantID string, from, to driven.NodeRef, edge driven.Edge) error {
	query, params, err := upsertEdgeQuery(tenantID, from, to, edge)
	if err != nil {
		return err
	}
	return s.write(ctx, query, params)
}

// DeleteNode detaches and deletes the node.
func (s *Store) DeleteNode(ctx context.Context, tenantID string, node driven.NodeRef) error {
	pattern, err := nodePattern("n", tenantID, node, "key")
	if err != nil {
		return err
	}
	return s.write(ctx, "MATCH "+pattern+" DETACH DELETE n", map[string]any{"key": node.Key})
}

// Relations returns up to limit edges leaving Document nodes.
func (s *Store) Relations(ctx context.Context, tenantID string, limit int) ([]driven.GraphRelation, error) {
	if limit <= 0 {
		return nil, nil
	}
	result, err := neo4j.ExecuteQuery(ctx, s.driver, relationsQuery(tenantID),
		map[string]any{"limit": limit},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
		neo4j.ExecuteQueryWithReadersRouting(),
	)
	if err != nil {
		return nil, fmt.Errorf("neo4j: query relations: %w", err)
	}

	out := make([]driven.GraphRelation, 0, len(result.Records))
	for _, rec := range result.Records {
		out = append(out, driven.GraphRelation{
			DocumentID: stringValue(rec, "document_id"),
			Title:      stringValue(rec, "title"),
			Type:       stringValue(rec, "type"),
			Target:     stringValue(rec, "target"),
		})
	}
	return out, nil
}

// Close releases the driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Store) write(ctx context.Context, query string, params map[string]any) error {
	_, err := neo4j.ExecuteQuery(ctx, s.driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
	)
	if err != nil {
		return fmt.Errorf("neo4j: write: %w", err)
	}
	return nil
}

// ==================== Cypher ====================

func checkIdentifier(kind, name string) error {
	if !identifier.MatchString(name) {
		return fmt.Errorf("%w: invalid graph %s %q", domain.ErrInvalidInput, kind, name)
	}
	return nil
}

// nodePattern renders (v:Label:Tenant {field: $param}).
func nodePattern(v, tenantID string, node driven.NodeRef, param string) (string, error) {
	if err := checkIdentifier("label", node.Label); err != nil {
		return "", err
	}
	if err := checkIdentifier("key field", node.KeyField); err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s:%s:%s {%s: $%s})",
		v, node.Label, domain.GraphLabel(tenantID), node.KeyField, param), nil
}

func upsertNodeQuery(tenantID string, node driven.NodeRef) (string, error) {
	pattern, err := nodePattern("n", tenantID, node, "key")
	if err != nil {
		return "", err
	}
	return "MERGE " + pattern + " SET n += $props, n.tenant_label = $label", nil
}

func upsertEdgeQuery(
	tenantID string,
	from, to driven.NodeRef,
	edge driven.Edge,
) (string, map[string]any, error) {
	if err := checkIdentifier("edge type", edge.Type); err != nil {
		return "", nil, err
	}
	left, err := nodePattern("a", tenantID, from, "from")
	if err != nil {
		return "", nil, err
	}
	right, err := nodePattern("b", tenantID, to, "to")
	if err != nil {
		return "", nil, err
	}

	label := domain.GraphLabel(tenantID)
	params := map[string]any{
		"from":  from.Key,
		"to":    to.Key,
		"props": nonNil(edge.Props),
		"label": label,
	}

	keys := make([]string, 0, len(edge.Match))
	for k := range edge.Match {
		if err := checkIdentifier("edge property", k); err != nil {
			return "", nil, err
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var match string
	if len(keys) > 0 {
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: $m_%s", k, k)
			params["m_"+k] = edge.Match[k]
		}
		match = " {" + strings.Join(parts, ", ") + "}"
	}

	var b strings.Builder
	b.WriteString("MERGE " + left + " SET a.tenant_label = $label\n")
	b.WriteString("MERGE " + right + " SET b.tenant_label = $label\n")
	fmt.Fprintf(&b, "MERGE (a)-[r:%s%s]->(b)\n", edge.Type, match)
	b.WriteString("SET r += $props")
	return b.String(), params, nil
}

func relationsQuery(tenantID string) string {
	label := domain.GraphLabel(tenantID)
	return fmt.Sprintf(`MATCH (d:%s:%s)-[r]->(t:%s)
RETURN d.document_id AS document_id, d.title AS title, type(r) AS type,
       coalesce(t.name, t.component_id, t.global_id, t.document_id, '') AS target
LIMIT $limit`, driven.LabelDocument, label, label)
}

func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func stringValue(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
