package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
	"github.com/custodia-labs/enlogic/internal/core/ports/driving"
	"github.com/custodia-labs/enlogic/internal/logger"
	"github.com/custodia-labs/enlogic/internal/schema"
)

// Ensure AgentService implements the interfaces.
var (
	_ driving.AgentService    = (*AgentService)(nil)
	_ driven.PromptStoreAware = (*AgentService)(nil)
)

// schemaOptions are used when authoring agent schemas.
var schemaOptions = driven.ChatOptions{Temperature: 0, JSONMode: true}

// AgentService manages the versioned agent catalog.
type AgentService struct {
	promptSource

	store driven.AgentStore
	llms  driven.LLMProvider
	now   func() time.Time
}

// NewAgentService creates a new agent service.
func NewAgentService(store driven.AgentStore, llms driven.LLMProvider) *AgentService {
	return &AgentService{
		store: store,
		llms:  llms,
		now:   time.Now,
	}
}

// Create authors a schema from the requirement and stores a new agent.
// With a base agent the new record is the next version of its lineage.
func (s *AgentService) Create(ctx context.Context, req driving.CreateAgentRequest) (*domain.Agent, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: name and prompt are required", domain.ErrInvalidInput)
	}
	if err := s.store.EnsureNamespace(ctx, req.TenantID); err != nil {
		return nil, err
	}

	version := 1
	var parentID *string
	if req.BaseAgentID != "" {
		base, err := s.store.GetAgent(ctx, req.TenantID, req.BaseAgentID)
		if err != nil {
			return nil, fmt.Errorf("base agent %s: %w", req.BaseAgentID, err)
		}
		version = base.Version + 1
		id := base.ID
		parentID = &id
	}

	requirement := req.Requirement
	if strings.TrimSpace(requirement) == "" {
		requirement = req.Prompt
	}
	language := req.OutputLanguage
	if language == "" {
		language = domain.DefaultOutputLanguage
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = domain.DefaultVisibility
	}

	compiled, err := s.authorSchema(ctx, req.Provider, req.Model, requirement, language)
	if err != nil {
		return nil, err
	}

	agent := &domain.Agent{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Description:    req.Description,
		Prompt:         req.Prompt,
		Requirement:    requirement,
		Schema:         compiled.Raw(),
		OutputLanguage: language,
		Version:        version,
		ParentID:       parentID,
		IsActive:       true,
		Visibility:     visibility,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.store.SaveAgent(ctx, req.TenantID, agent); err != nil {
		return nil, fmt.Errorf("save agent: %w", err)
	}
	logger.Info("created agent %s %q v%d", agent.ID, agent.Name, agent.Version)
	return agent, nil
}

// authorSchema asks the model for a JSON Schema and checks it compiles.
func (s *AgentService) authorSchema(ctx context.Context, provider, model, requirement, language string) (*schema.Compiled, error) {
	if s.llms == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSchemaGeneration, domain.ErrLLMUnavailable)
	}
	llm, err := s.llms.LLM(ctx, provider, model)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSchemaGeneration, err)
	}
	defer llm.Close()

	reply, err := driven.Invoke(ctx, llm,
		s.render(driven.PromptSchemaSystem),
		s.render(driven.PromptSchemaUser, language, requirement),
		schemaOptions,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSchemaGeneration, err)
	}

	obj, err := schema.DecodeObject(reply)
	if err != nil {
		// Keep the cause text but not the extraction kind.
		return nil, fmt.Errorf("%w: %v", domain.ErrSchemaGeneration, err)
	}
	compiled, err := schema.CompileObject(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSchemaGeneration, err)
	}
	return compiled, nil
}

// List returns agents newest first.
func (s *AgentService) List(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Agent, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if err := s.store.EnsureNamespace(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.store.ListAgents(ctx, tenantID, includeInactive)
}

// Get returns one agent, active or not.
func (s *AgentService) Get(ctx context.Context, tenantID, id string) (*domain.Agent, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.store.GetAgent(ctx, tenantID, id)
}

// Deactivate soft-deletes an agent.
func (s *AgentService) Deactivate(ctx context.Context, tenantID, id string) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	return s.store.DeactivateAgent(ctx, tenantID, id)
}

// Delete hard-removes an agent. Derived agents keep their parent id.
func (s *AgentService) Delete(ctx context.Context, tenantID, id string) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	return s.store.DeleteAgent(ctx, tenantID, id)
}

// Lineage returns the agent and its ancestors, nearest first.
func (s *AgentService) Lineage(ctx context.Context, tenantID, id string) ([]domain.Agent, error) {
	agent, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	chain := []domain.Agent{*agent}
	seen := map[string]bool{agent.ID: true}
	for agent.IsDerived() {
		parentID := *agent.ParentID
		if seen[parentID] {
			return nil, fmt.Errorf("%w: lineage cycle at agent %s", domain.ErrInvalidInput, parentID)
		}
		parent, err := s.store.GetAgent(ctx, tenantID, parentID)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("agent %s: parent %s no longer exists", agent.ID, parentID)
			break
		}
		if err != nil {
			return nil, err
		}
		seen[parent.ID] = true
		chain = append(chain, *parent)
		agent = parent
	}
	return chain, nil
}
