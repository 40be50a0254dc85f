package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

// Ensure GraphStore implements the interface.
var _ driven.GraphStore = (*GraphStore)(nil)

type nodeKey struct {
	tenant string
	label  string
	field  string
	key    string
}

type graphEdge struct {
	from  nodeKey
	to    nodeKey
	typ   string
	match map[string]any
	props map[string]any
	seq   int
}

// GraphStore is an in-memory implementation of driven.GraphStore.
// Nodes are partitioned by the tenant graph label.
type GraphStore struct {
	mu    sync.RWMutex
	seq   int
	nodes map[nodeKey]map[string]any
	edges []*graphEdge
}

// NewGraphStore creates a new in-memory graph store.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		nodes: make(map[nodeKey]map[string]any),
	}
}

func keyOf(tenantID string, ref driven.NodeRef) nodeKey {
	return nodeKey{
		tenant: domain.GraphLabel(tenantID),
		label:  ref.Label,
		field:  ref.KeyField,
		key:    ref.Key,
	}
}

// merge creates the node if missing (caller must hold lock).
func (s *GraphStore) merge(k nodeKey) map[string]any {
	props, ok := s.nodes[k]
	if !ok {
		props = map[string]any{k.field: k.key}
		s.nodes[k] = props
	}
	return props
}

// UpsertNode merges a node and sets props.
func (s *GraphStore) UpsertNode(_ context.Context, tenantID string, node driven.NodeRef, props map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.merge(keyOf(tenantID, node)), props)
	return nil
}

// UpsertEdge merges both endpoints and the edge between them.
func (s *GraphStore) UpsertEdge(_ context.Context, tenantID string, from, to driven.NodeRef, edge driven.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fk, tk := keyOf(tenantID, from), keyOf(tenantID, to)
	s.merge(fk)
	s.merge(tk)

	for _, e := range s.edges {
		if e.from == fk && e.to == tk && e.typ == edge.Type && sameMatch(e.match, edge.Match) {
			maps.Copy(e.props, edge.Props)
			return nil
		}
	}
	s.seq++
	props := maps.Clone(edge.Match)
	if props == nil {
		props = make(map[string]any)
	}
	maps.Copy(props, edge.Props)
	s.edges = append(s.edges, &graphEdge{
		from:  fk,
		to:    tk,
		typ:   edge.Type,
		match: maps.Clone(edge.Match),
		props: props,
		seq:   s.seq,
	})
	return nil
}

func sameMatch(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if fmt.Sprint(b[k]) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

// DeleteNode detaches and deletes the node.
func (s *GraphStore) DeleteNode(_ context.Context, tenantID string, node driven.NodeRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := keyOf(tenantID, node)
	delete(s.nodes, k)
	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.from != k && e.to != k {
			kept = append(kept, e)
		}
	}
	s.edges = kept
	return nil
}

// Relations returns edges leaving Document nodes, oldest first.
func (s *GraphStore) Relations(_ context.Context, tenantID string, limit int) ([]driven.GraphRelation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	label := domain.GraphLabel(tenantID)

	edges := make([]*graphEdge, 0)
	for _, e := range s.edges {
		if e.from.tenant == label && e.from.label == driven.LabelDocument {
			edges = append(edges, e)
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].seq < edges[j].seq })

	result := make([]driven.GraphRelation, 0, min(len(edges), max(limit, 0)))
	for _, e := range edges {
		if len(result) >= limit {
			break
		}
		doc := s.nodes[e.from]
		target := s.nodes[e.to]
		result = append(result, driven.GraphRelation{
			DocumentID: e.from.key,
			Title:      fmt.Sprint(doc["title"]),
			Type:       e.typ,
			Target:     targetName(e.to, target),
		})
	}
	return result, nil
}

func targetName(k nodeKey, props map[string]any) string {
	if name, ok := props["name"].(string); ok && strings.TrimSpace(name) != "" {
		return name
	}
	return k.key
}

// Node returns a copy of the node properties, if present.
func (s *GraphStore) Node(tenantID string, node driven.NodeRef) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	props, ok := s.nodes[keyOf(tenantID, node)]
	return maps.Clone(props), ok
}

// EdgeCount returns the number of edges of type typ in the tenant.
// An empty typ counts all edges.
func (s *GraphStore) EdgeCount(tenantID, typ string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	label := domain.GraphLabel(tenantID)
	n := 0
	for _, e := range s.edges {
		if e.from.tenant == label && (typ == "" || e.typ == typ) {
			n++
		}
	}
	return n
}

// Close is a no-op.
func (s *GraphStore) Close(_ context.Context) error {
	return nil
}
