// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService provides language model operations for extraction and schema authoring.
//
// Implementations may include:
//   - OpenAI (GPT-4o)
//   - DeepSeek (OpenAI-compatible endpoint)
//   - Ollama (local models)
//
// Structured output is requested by embedding schema and format
// instructions in the prompt; no native structured-output mode is assumed.
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat conducts a multi-turn conversation.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// LLMProvider resolves a per-request provider/model selection.
// Empty provider and model select the configured defaults.
type LLMProvider interface {
	LLM(ctx context.Context, provider, model string) (LLMService, error)
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	// Adapters send it even when zero.
	Temperature float64

	// JSONMode asks the provider for a JSON object response when it supports one.
	JSONMode bool
}

// Invoke sends one system and one user message and returns the reply text.
func Invoke(ctx context.Context, llm LLMService, systemPrompt, userPrompt string, opts ChatOptions) (string, error) {
	return llm.Chat(ctx, []ChatMessage{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: userPrompt},
	}, opts)
}
