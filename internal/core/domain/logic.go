package domain

// RiskLevel grades the overall risk a document describes.
type RiskLevel string

// Recognised risk levels. A nil *RiskLevel means the source gave none.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// IsValid returns true if the risk level is recognised.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	default:
		return false
	}
}

// RelationType is the closed set of causal relation kinds.
type RelationType string

// Allowed causal relation types.
const (
	RelationAffects       RelationType = "AFFECTS"
	RelationFollows       RelationType = "FOLLOWS"
	RelationConflictsWith RelationType = "CONFLICTS_WITH"
	RelationCauses        RelationType = "CAUSES"
	RelationDependsOn     RelationType = "DEPENDS_ON"
	RelationImpacts       RelationType = "IMPACTS"
)

// AllRelationTypes returns every allowed relation type.
func AllRelationTypes() []RelationType {
	return []RelationType{
		RelationAffects,
		RelationFollows,
		RelationConflictsWith,
		RelationCauses,
		RelationDependsOn,
		RelationImpacts,
	}
}

// IsValid returns true if the relation type is in the allowed set.
func (t RelationType) IsValid() bool {
	for _, allowed := range AllRelationTypes() {
		if t == allowed {
			return true
		}
	}
	return false
}

// DocumentMetadata identifies the source document of an extraction.
type DocumentMetadata struct {
	// DocumentID is the caller or model supplied identifier (e.g. ECN-001).
	DocumentID string `json:"document_id"`

	// DocumentTitle is the human-readable title.
	DocumentTitle string `json:"document_title"`

	// DocumentType classifies the document, e.g. ECN, spec, meeting.
	DocumentType *string `json:"document_type"`

	Vendor         *string `json:"vendor"`
	ProductOrTopic *string `json:"product_or_topic"`
	Version        *string `json:"version"`

	// Source is the originating file name or system.
	Source *string `json:"source"`
}

// Entity is a named thing mentioned by a document.
type Entity struct {
	Name        string  `json:"name"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
}

// CausalRelation is a typed edge between two entity names.
type CausalRelation struct {
	RelationType RelationType `json:"relation_type"`
	Source       string       `json:"source"`
	Target       string       `json:"target"`
	Evidence     *string      `json:"evidence"`
}

// EngineeringLogic is the fixed extraction schema used when no agent is selected.
type EngineeringLogic struct {
	DocumentMetadata   DocumentMetadata `json:"document_metadata"`
	Summary            string           `json:"summary"`
	DecisionBackground []string         `json:"decision_background"`
	KeyClauses         []string         `json:"key_clauses"`
	Risks              []string         `json:"risks"`
	RiskLevel          *RiskLevel       `json:"risk_level"`
	Entities           []Entity         `json:"entities"`
	CausalRelations    []CausalRelation `json:"causal_relations"`
	AffectedComponents []string         `json:"affected_components"`
	SourceReference    *string          `json:"source_reference"`
}

// Normalise replaces nil lists with empty ones so callers and
// serialised output never distinguish "missing" from "empty".
func (l EngineeringLogic) Normalise() EngineeringLogic {
	if l.DecisionBackground == nil {
		l.DecisionBackground = []string{}
	}
	if l.KeyClauses == nil {
		l.KeyClauses = []string{}
	}
	if l.Risks == nil {
		l.Risks = []string{}
	}
	if l.Entities == nil {
		l.Entities = []Entity{}
	}
	if l.CausalRelations == nil {
		l.CausalRelations = []CausalRelation{}
	}
	if l.AffectedComponents == nil {
		l.AffectedComponents = []string{}
	}
	return l
}
