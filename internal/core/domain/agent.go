package domain

import (
	"encoding/json"
	"time"
)

// Default agent field values.
const (
	DefaultVisibility     = "private"
	DefaultOutputLanguage = "zh"
)

// Agent is a tenant-defined, versioned extraction schema with its prompt.
// Agents form a lineage tree through ParentID.
type Agent struct {
	// ID is a generated UUID.
	ID string `json:"id"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Prompt is the natural-language extraction instruction.
	Prompt string `json:"prompt"`

	// Requirement is the text the schema was authored from.
	Requirement string `json:"requirement,omitempty"`

	// Schema is the JSON Schema extraction output must satisfy.
	Schema json.RawMessage `json:"schema_json"`

	// OutputLanguage is the language the model is asked to answer in.
	OutputLanguage string `json:"output_language"`

	// Version is parent.Version+1 when derived, else 1.
	Version int `json:"version"`

	// ParentID is the base agent this one was derived from.
	// It may point at an agent that has since been hard-deleted.
	ParentID *string `json:"parent_id"`

	// IsActive is false once the agent is deactivated.
	// Inactive agents are kept for lineage.
	IsActive bool `json:"is_active"`

	Visibility string    `json:"visibility"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsDerived returns true if the agent has a base agent.
func (a *Agent) IsDerived() bool {
	return a.ParentID != nil && *a.ParentID != ""
}
