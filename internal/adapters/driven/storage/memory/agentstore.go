package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

// Ensure AgentStore implements the interface.
var _ driven.AgentStore = (*AgentStore)(nil)

type agentRow struct {
	agent domain.Agent
	seq   int
}

// AgentStore is an in-memory implementation of driven.AgentStore.
type AgentStore struct {
	mu     sync.RWMutex
	seq    int
	agents map[string]map[string]agentRow
}

// NewAgentStore creates a new in-memory agent store.
func NewAgentStore() *AgentStore {
	return &AgentStore{
		agents: make(map[string]map[string]agentRow),
	}
}

// EnsureNamespace creates the tenant namespace if it does not exist.
func (s *AgentStore) EnsureNamespace(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.namespace(tenantID)
	return nil
}

// namespace returns the tenant map, creating it (caller must hold lock).
func (s *AgentStore) namespace(tenantID string) map[string]agentRow {
	ns := domain.SchemaName(tenantID)
	if s.agents[ns] == nil {
		s.agents[ns] = make(map[string]agentRow)
	}
	return s.agents[ns]
}

// SaveAgent inserts an agent record.
func (s *AgentStore) SaveAgent(_ context.Context, tenantID string, agent *domain.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.namespace(tenantID)[agent.ID] = agentRow{agent: *agent, seq: s.seq}
	return nil
}

// GetAgent retrieves an agent by ID.
func (s *AgentStore) GetAgent(_ context.Context, tenantID, id string) (*domain.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.agents[domain.SchemaName(tenantID)][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	agent := row.agent
	return &agent, nil
}

// ListAgents returns agents newest first.
func (s *AgentStore) ListAgents(_ context.Context, tenantID string, includeInactive bool) ([]domain.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]agentRow, 0, len(s.agents[domain.SchemaName(tenantID)]))
	for _, row := range s.agents[domain.SchemaName(tenantID)] {
		if includeInactive || row.agent.IsActive {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].agent.CreatedAt.Equal(rows[j].agent.CreatedAt) {
			return rows[i].agent.CreatedAt.After(rows[j].agent.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	result := make([]domain.Agent, len(rows))
	for i, row := range rows {
		result[i] = row.agent
	}
	return result, nil
}

// DeactivateAgent marks an agent inactive.
func (s *AgentStore) DeactivateAgent(_ context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns := s.agents[domain.SchemaName(tenantID)]
	row, ok := ns[id]
	if !ok {
		return domain.ErrNotFound
	}
	row.agent.IsActive = false
	ns[id] = row
	return nil
}

// DeleteAgent removes an agent record.
func (s *AgentStore) DeleteAgent(_ context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns := s.agents[domain.SchemaName(tenantID)]
	if _, ok := ns[id]; !ok {
		return domain.ErrNotFound
	}
	delete(ns, id)
	return nil
}
