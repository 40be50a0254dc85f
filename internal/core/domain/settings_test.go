package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLLMSettings_ResolveProvider(t *testing.T) {
	tests := []struct {
		name      string
		settings  LLMSettings
		requested string
		want      AIProvider
	}{
		{"explicit wins", LLMSettings{Provider: AIProviderDeepSeek}, "ollama", AIProviderOllama},
		{"configured default", LLMSettings{Provider: AIProviderOpenAI}, "", AIProviderOpenAI},
		{"deepseek when keyed", LLMSettings{DeepSeek: ProviderSettings{APIKey: "k"}}, "", AIProviderDeepSeek},
		{"ollama fallback", LLMSettings{}, "", AIProviderOllama},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.settings.ResolveProvider(tt.requested))
		})
	}
}

func TestLLMSettings_For(t *testing.T) {
	s := DefaultSettings().LLM

	ollama, ok := s.For(AIProviderOllama)
	assert.True(t, ok)
	assert.Equal(t, "qwen3:8b", ollama.Model)

	_, ok = s.For(AIProvider("bard"))
	assert.False(t, ok)
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	assert.True(t, EmbeddingSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "k"}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderDisabled}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderDeepSeek, APIKey: "k"}.IsConfigured())
}
