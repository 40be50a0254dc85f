package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/enlogic/internal/adapters/driven/config"
	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in <dir>/config.toml. Keys are dotted paths in
// memory and nested tables on disk.
type ConfigStore struct {
	mu     sync.RWMutex
	path   string
	values config.Values
	lookup config.LookupFunc
}

// DefaultDir returns ~/.enlogic.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".enlogic"), nil
}

// NewConfigStore opens dir/config.toml, creating dir if needed. An empty dir
// means DefaultDir. A missing file is an empty configuration.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(dir, "config.toml"), lookup: os.LookupEnv}
	values, err := s.read()
	if err != nil {
		return nil, err
	}
	s.values = values
	return s, nil
}

func (s *ConfigStore) read() (config.Values, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Values{}, nil
	}
	if err != nil {
		return nil, err
	}

	var nested map[string]any
	if err := toml.Unmarshal(data, &nested); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return config.Flatten(nested), nil
}

// LoadDotEnv loads environment variables from the given .env files.
// Missing files are skipped; variables already set are kept.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
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

// Set writes the file with key changed. Nothing changes in memory or on
// disk when the value does not decode onto the settings or the write fails.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.values.With(key, value)
	if err != nil {
		return err
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

// write replaces the file through a rename in the same directory so a
// crash never leaves a truncated config behind.
func (s *ConfigStore) write(values config.Values) error {
	data, err := toml.Marshal(config.Nest(values))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Settings returns defaults overlaid with the file, then the environment.
func (s *ConfigStore) Settings() (domain.Settings, error) {
	s.mu.RLock()
	settings, err := config.Overlay(domain.DefaultSettings(), s.values)
	s.mu.RUnlock()
	if err != nil {
		return settings, fmt.Errorf("%s: %w", s.path, err)
	}
	if err := config.ApplyEnv(&settings, s.lookup); err != nil {
		return settings, err
	}
	return settings, nil
}

func (s *ConfigStore) Path() string {
	return s.path
}
