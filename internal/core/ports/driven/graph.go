package driven

import "context"

// Graph labels and edge types written by the persistence coordinator.
const (
	LabelDocument     = "Document"
	LabelEntity       = "Entity"
	LabelComponent    = "Component"
	LabelIfcComponent = "IfcComponent"

	EdgeMentions        = "MENTIONS"
	EdgeImpacts         = "IMPACTS"
	EdgeHasIfcComponent = "HAS_IFC_COMPONENT"
	EdgeRelation        = "RELATION"
)

// NodeRef identifies a node by label and one key property.
type NodeRef struct {
	Label    string
	KeyField string
	Key      string
}

// Edge describes a directed relationship to merge.
type Edge struct {
	// Type is the relationship type.
	Type string

	// Match holds the properties that identify the edge when merging.
	// Nil means at most one edge of Type between the two nodes.
	Match map[string]any

	// Props are set on the edge after merging.
	Props map[string]any
}

// GraphRelation is one Document-rooted edge, used for answer context.
type GraphRelation struct {
	DocumentID string
	Title      string
	Type       string
	Target     string
}

// GraphStore is the tenant-labelled entity/relation index.
// Every node written carries the tenant label (domain.GraphLabel).
type GraphStore interface {
	// UpsertNode merges a node on its key and sets props.
	UpsertNode(ctx context.Context, tenantID string, node NodeRef, props map[string]any) error

	// UpsertEdge merges both endpoint nodes and the edge between them.
	UpsertEdge(ctx context.Context, tenantID string, from, to NodeRef, edge Edge) error

	// DeleteNode detaches and deletes the node.
	DeleteNode(ctx context.Context, tenantID string, node NodeRef) error

	// Relations returns up to limit edges leaving Document nodes.
	Relations(ctx context.Context, tenantID string, limit int) ([]GraphRelation, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
