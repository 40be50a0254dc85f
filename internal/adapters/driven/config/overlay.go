// Package config holds the settings overlay shared by the config stores:
// flat dotted keys and environment variables applied onto domain.Settings.
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/enlogic/internal/core/domain"
)

// Overlay decodes flat dotted keys (e.g. "llm.deepseek.api_key") onto base.
// Keys absent from values keep their base value.
func Overlay(base domain.Settings, values map[string]any) (domain.Settings, error) {
	if len(values) == 0 {
		return base, nil
	}
	data, err := toml.Marshal(Nest(values))
	if err != nil {
		return base, fmt.Errorf("encode settings: %w", err)
	}
	if err := toml.Unmarshal(data, &base); err != nil {
		return base, fmt.Errorf("decode settings: %w", err)
	}
	return base, nil
}

// Nest turns flat dotted keys into nested maps.
// A scalar that collides with a table prefix is dropped.
func Nest(values map[string]any) map[string]any {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	// Longer keys first so tables win over colliding scalars.
	sort.Slice(keys, func(i, j int) bool {
		return strings.Count(keys[i], ".") > strings.Count(keys[j], ".")
	})

	root := make(map[string]any)
	for _, key := range keys {
		parts := strings.Split(key, ".")
		node := root
		ok := true
		for _, part := range parts[:len(parts)-1] {
			child, exists := node[part]
			if !exists {
				next := make(map[string]any)
				node[part] = next
				node = next
				continue
			}
			next, isMap := child.(map[string]any)
			if !isMap {
				ok = false
				break
			}
			node = next
		}
		leaf := parts[len(parts)-1]
		if _, isMap := node[leaf].(map[string]any); ok && !isMap {
			node[leaf] = values[key]
		}
	}
	return root
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type envBinding struct {
	name  string
	apply func(s *domain.Settings, v string) error
}

func str(target func(s *domain.Settings) *string) func(*domain.Settings, string) error {
	return func(s *domain.Settings, v string) error {
		*target(s) = v
		return nil
	}
}

func integer(target func(s *domain.Settings) *int) func(*domain.Settings, string) error {
	return func(s *domain.Settings, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*target(s) = n
		return nil
	}
}

var envBindings = []envBinding{
	{"DATA_DIR", str(func(s *domain.Settings) *string { return &s.DataDir })},
	{"WORKERS", integer(func(s *domain.Settings) *int { return &s.Workers })},
	{"LLM_PROVIDER", func(s *domain.Settings, v string) error {
		s.LLM.Provider = domain.AIProvider(strings.ToLower(strings.TrimSpace(v)))
		return nil
	}},
	{"LLM_TIMEOUT", integer(func(s *domain.Settings) *int { return &s.LLM.TimeoutSeconds })},
	{"OLLAMA_BASE_URL", str(func(s *domain.Settings) *string { return &s.LLM.Ollama.BaseURL })},
	{"OLLAMA_MODEL", str(func(s *domain.Settings) *string { return &s.LLM.Ollama.Model })},
	{"DEEPSEEK_API_KEY", str(func(s *domain.Settings) *string { return &s.LLM.DeepSeek.APIKey })},
	{"DEEPSEEK_BASE_URL", str(func(s *domain.Settings) *string { return &s.LLM.DeepSeek.BaseURL })},
	{"DEEPSEEK_MODEL", str(func(s *domain.Settings) *string { return &s.LLM.DeepSeek.Model })},
	{"OPENAI_API_KEY", str(func(s *domain.Settings) *string { return &s.LLM.OpenAI.APIKey })},
	{"OPENAI_BASE_URL", str(func(s *domain.Settings) *string { return &s.LLM.OpenAI.BaseURL })},
	{"OPENAI_MODEL", str(func(s *domain.Settings) *string { return &s.LLM.OpenAI.Model })},
	{"EMBEDDINGS_PROVIDER", func(s *domain.Settings, v string) error {
		s.Embedding.Provider = domain.AIProvider(strings.ToLower(strings.TrimSpace(v)))
		return nil
	}},
	{"EMBEDDINGS_MODEL", str(func(s *domain.Settings) *string { return &s.Embedding.Model })},
	{"EMBEDDINGS_BASE_URL", str(func(s *domain.Settings) *string { return &s.Embedding.BaseURL })},
	{"EMBEDDINGS_API_KEY", str(func(s *domain.Settings) *string { return &s.Embedding.APIKey })},
	{"POSTGRES_DSN", func(s *domain.Settings, v string) error {
		s.DocumentStore.Driver = domain.DriverPostgres
		s.DocumentStore.DSN = v
		return nil
	}},
	{"QDRANT_HOST", str(func(s *domain.Settings) *string { return &s.VectorStore.Host })},
	{"QDRANT_PORT", integer(func(s *domain.Settings) *int { return &s.VectorStore.Port })},
	{"QDRANT_API_KEY", str(func(s *domain.Settings) *string { return &s.VectorStore.APIKey })},
	{"NEO4J_URI", str(func(s *domain.Settings) *string { return &s.GraphStore.URI })},
	{"NEO4J_USER", str(func(s *domain.Settings) *string { return &s.GraphStore.User })},
	{"NEO4J_PASSWORD", str(func(s *domain.Settings) *string { return &s.GraphStore.Password })},
	{"NEO4J_DATABASE", str(func(s *domain.Settings) *string { return &s.GraphStore.Database })},
	{"LOG_LEVEL", str(func(s *domain.Settings) *string { return &s.Log.Level })},
	{"LOG_FORMAT", str(func(s *domain.Settings) *string { return &s.Log.Format })},
}

// ApplyEnv overrides settings from environment variables.
// Empty values are ignored.
func ApplyEnv(s *domain.Settings, lookup LookupFunc) error {
	for _, b := range envBindings {
		v, ok := lookup(b.name)
		if !ok || v == "" {
			continue
		}
		if err := b.apply(s, v); err != nil {
			return fmt.Errorf("env %s: %w", b.name, err)
		}
	}
	return nil
}

// EnvNames lists the recognised environment variables.
func EnvNames() []string {
	names := make([]string, len(envBindings))
	for i, b := range envBindings {
		names[i] = b.name
	}
	return names
}
