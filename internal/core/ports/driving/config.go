package driving

import "github.com/custodia-labs/enlogic/internal/core/domain"

// ConfigService exposes the effective configuration to driving adapters.
type ConfigService interface {
	// Settings returns the merged file, environment and default settings.
	Settings() (domain.Settings, error)

	// Get returns a raw value by dotted key, e.g. "llm.provider".
	Get(key string) (any, bool)

	// Set persists a value by dotted key.
	Set(key string, value any) error

	// Path returns the configuration file location.
	Path() string
}
