package driven

import (
	"context"

	"github.com/custodia-labs/enlogic/internal/core/domain"
)

// AgentStore persists the tenant agent catalog.
type AgentStore interface {
	// EnsureNamespace creates the tenant namespace if it does not exist.
	EnsureNamespace(ctx context.Context, tenantID string) error

	// SaveAgent inserts a new agent record.
	SaveAgent(ctx context.Context, tenantID string, agent *domain.Agent) error

	// GetAgent retrieves an agent by ID, active or not.
	GetAgent(ctx context.Context, tenantID, id string) (*domain.Agent, error)

	// ListAgents returns agents newest first, excluding inactive ones
	// unless includeInactive is set.
	ListAgents(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Agent, error)

	// DeactivateAgent sets is_active to false.
	DeactivateAgent(ctx context.Context, tenantID, id string) error

	// DeleteAgent removes the record. Derived agents are left untouched.
	DeleteAgent(ctx context.Context, tenantID, id string) error
}
