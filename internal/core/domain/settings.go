package domain

import "time"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderDeepSeek is the DeepSeek cloud API.
	AIProviderDeepSeek AIProvider = "deepseek"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderDisabled turns a capability off.
	AIProviderDisabled AIProvider = "disabled"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderDeepSeek, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderDeepSeek || p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// ProviderSettings holds the endpoint of one LLM provider.
type ProviderSettings struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the default provider. Empty means auto-detect.
	Provider AIProvider `toml:"provider"`

	// TimeoutSeconds bounds each model call. Zero uses the adapter default.
	TimeoutSeconds int `toml:"timeout_seconds"`

	Ollama   ProviderSettings `toml:"ollama"`
	DeepSeek ProviderSettings `toml:"deepseek"`
	OpenAI   ProviderSettings `toml:"openai"`
}

// ResolveProvider picks the provider for a call: the requested one,
// else the configured default, else DeepSeek when it has a key, else Ollama.
func (s LLMSettings) ResolveProvider(requested string) AIProvider {
	if requested != "" {
		return AIProvider(requested)
	}
	if s.Provider != "" {
		return s.Provider
	}
	if s.DeepSeek.APIKey != "" {
		return AIProviderDeepSeek
	}
	return AIProviderOllama
}

// Timeout returns the configured call timeout, zero if unset.
func (s LLMSettings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// For returns the endpoint settings of a provider.
func (s LLMSettings) For(p AIProvider) (ProviderSettings, bool) {
	switch p {
	case AIProviderOllama:
		return s.Ollama, true
	case AIProviderDeepSeek:
		return s.DeepSeek, true
	case AIProviderOpenAI:
		return s.OpenAI, true
	default:
		return ProviderSettings{}, false
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider, or "disabled".
	Provider AIProvider `toml:"provider"`

	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`

	// Dimensions overrides the model's default vector size.
	Dimensions int `toml:"dimensions"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderDeepSeek {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// Store driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverQdrant   = "qdrant"
	DriverNeo4j    = "neo4j"
	DriverMemory   = "memory"
	DriverNone     = "none"
)

// DocumentStoreSettings selects the relational store.
type DocumentStoreSettings struct {
	// Driver is sqlite, postgres or memory.
	Driver string `toml:"driver"`

	// DSN is the Postgres connection string.
	DSN string `toml:"dsn"`
}

// VectorStoreSettings selects the vector store.
type VectorStoreSettings struct {
	// Driver is qdrant, memory or none.
	Driver string `toml:"driver"`

	Host   string `toml:"host"`
	Port   int    `toml:"port"`
	APIKey string `toml:"api_key"`
	UseTLS bool   `toml:"use_tls"`
}

// GraphStoreSettings selects the graph store.
type GraphStoreSettings struct {
	// Driver is neo4j, memory or none.
	Driver string `toml:"driver"`

	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// LogSettings configures the process logger.
type LogSettings struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level"`

	// Format is text or json.
	Format string `toml:"format"`
}

// Settings is the complete process configuration.
type Settings struct {
	// DataDir holds uploads and the embedded database.
	DataDir string `toml:"data_dir"`

	// Workers bounds concurrent runs in batch ingestion.
	Workers int `toml:"workers"`

	LLM           LLMSettings           `toml:"llm"`
	Embedding     EmbeddingSettings     `toml:"embedding"`
	DocumentStore DocumentStoreSettings `toml:"document_store"`
	VectorStore   VectorStoreSettings   `toml:"vector_store"`
	GraphStore    GraphStoreSettings    `toml:"graph_store"`
	Log           LogSettings           `toml:"log"`
}

// DefaultSettings returns settings that work against local services.
func DefaultSettings() Settings {
	return Settings{
		DataDir: "./data",
		Workers: 4,
		LLM: LLMSettings{
			Ollama:   ProviderSettings{BaseURL: "http://localhost:11434", Model: "qwen3:8b"},
			DeepSeek: ProviderSettings{BaseURL: "https://api.deepseek.com/v1", Model: "deepseek-chat"},
			OpenAI:   ProviderSettings{BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini"},
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},
		DocumentStore: DocumentStoreSettings{Driver: DriverSQLite},
		VectorStore:   VectorStoreSettings{Driver: DriverQdrant, Host: "localhost", Port: 6334},
		GraphStore: GraphStoreSettings{
			Driver:   DriverNeo4j,
			URI:      "bolt://localhost:7687",
			User:     "neo4j",
			Database: "neo4j",
		},
		Log: LogSettings{Level: "info", Format: "text"},
	}
}
