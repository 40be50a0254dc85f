package memory

import (
	"sync"

	"github.com/custodia-labs/enlogic/internal/adapters/driven/config"
	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore holds settings for the life of the process. It applies the
// same type checks as the file store but never reads the environment.
type ConfigStore struct {
	mu     sync.RWMutex
	values config.Values
}

func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: config.Values{}}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) GetString(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.String(key)
}

func (s *ConfigStore) GetInt(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Int(key)
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.values.With(key, value)
	if err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *ConfigStore) Settings() (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return config.Overlay(domain.DefaultSettings(), s.values)
}

func (s *ConfigStore) Path() string {
	return ":memory:"
}
