package services

import (
	"fmt"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
	"github.com/custodia-labs/enlogic/internal/core/ports/driving"
)

// Ensure ConfigService implements the interface.
var _ driving.ConfigService = (*ConfigService)(nil)

// ConfigService exposes the configuration store to driving adapters.
type ConfigService struct {
	configStore driven.ConfigStore
}

// NewConfigService creates a new config service.
func NewConfigService(configStore driven.ConfigStore) *ConfigService {
	return &ConfigService{configStore: configStore}
}

// Settings returns the effective settings.
func (s *ConfigService) Settings() (domain.Settings, error) {
	if s.configStore == nil {
		return domain.DefaultSettings(), nil
	}
	return s.configStore.Settings()
}

// Get returns a raw value by dotted key.
func (s *ConfigService) Get(key string) (any, bool) {
	if s.configStore == nil {
		return nil, false
	}
	return s.configStore.Get(key)
}

// Set validates and persists a value by dotted key.
func (s *ConfigService) Set(key string, value any) error {
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}
	if err := validateSetting(key, value); err != nil {
		return err
	}
	return s.configStore.Set(key, value)
}

// Path returns the configuration file location.
func (s *ConfigService) Path() string {
	if s.configStore == nil {
		return ""
	}
	return s.configStore.Path()
}

func validateSetting(key string, value any) error {
	switch key {
	case "llm.provider", "embedding.provider":
		str, ok := value.(string)
		if !ok || !domain.AIProvider(str).IsValid() {
			return fmt.Errorf("%w: %s: unknown provider %v", domain.ErrInvalidInput, key, value)
		}
	case "document_store.driver":
		if value != domain.DriverSQLite && value != domain.DriverPostgres && value != domain.DriverMemory {
			return fmt.Errorf("%w: %s: unknown driver %v", domain.ErrInvalidInput, key, value)
		}
	case "vector_store.driver":
		if value != domain.DriverQdrant && value != domain.DriverMemory && value != domain.DriverNone {
			return fmt.Errorf("%w: %s: unknown driver %v", domain.ErrInvalidInput, key, value)
		}
	case "graph_store.driver":
		if value != domain.DriverNeo4j && value != domain.DriverMemory && value != domain.DriverNone {
			return fmt.Errorf("%w: %s: unknown driver %v", domain.ErrInvalidInput, key, value)
		}
	}
	return nil
}
