package driving

import (
	"context"

	"github.com/custodia-labs/enlogic/internal/core/domain"
)

// CreateAgentRequest describes a new agent or a new version of one.
type CreateAgentRequest struct {
	TenantID    string
	Name        string
	Description string
	Prompt      string

	// Requirement is the text the schema is authored from.
	// Empty uses Prompt.
	Requirement string

	// OutputLanguage defaults to domain.DefaultOutputLanguage.
	OutputLanguage string

	// BaseAgentID derives a new version from an existing agent.
	BaseAgentID string

	// Visibility defaults to domain.DefaultVisibility.
	Visibility string

	// Provider and Model select the model that authors the schema.
	Provider string
	Model    string
}

// AgentService manages the tenant agent catalog.
type AgentService interface {
	// Create authors a schema from the requirement and stores a new agent.
	Create(ctx context.Context, req CreateAgentRequest) (*domain.Agent, error)

	// List returns agents newest first.
	List(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Agent, error)

	// Get returns one agent, active or not.
	Get(ctx context.Context, tenantID, id string) (*domain.Agent, error)

	// Deactivate soft-deletes an agent.
	Deactivate(ctx context.Context, tenantID, id string) error

	// Delete hard-removes an agent. Derived agents keep their parent id.
	Delete(ctx context.Context, tenantID, id string) error

	// Lineage returns the agent followed by its ancestors up to the root,
	// stopping early if a parent no longer exists.
	Lineage(ctx context.Context, tenantID, id string) ([]domain.Agent, error)
}
