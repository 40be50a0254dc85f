// Package langchain adapts a langchaingo model to driven.LLMService.
// It backs the OpenAI and DeepSeek providers through langchaingo's OpenAI
// client; Config defaults target DeepSeek.
package langchain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.deepseek.com/v1"
	DefaultLLMModel   = "deepseek-chat"
	DefaultLLMTimeout = 120 * time.Second
)

// Config holds configuration for an OpenAI-compatible endpoint.
type Config struct {
	// APIKey is the bearer token (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.deepseek.com/v1).
	BaseURL string

	// Model is the chat model (default: deepseek-chat).
	Model string

	// Timeout bounds each call (default: 120s).
	Timeout time.Duration
}

// LLMService wraps an llms.Model.
type LLMService struct {
	model   llms.Model
	name    string
	timeout time.Duration
}

// New wraps model. name is reported by ModelName.
func New(model llms.Model, name string, timeout time.Duration) *LLMService {
	return &LLMService{model: model, name: name, timeout: timeout}
}

// NewOpenAICompatible creates a service for an OpenAI-compatible endpoint.
func NewOpenAICompatible(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("langchain: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("langchain: create client: %w", err)
	}
	return New(client, cfg.Model, cfg.Timeout), nil
}

func (s *LLMService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	callOpts := []llms.CallOption{llms.WithTemperature(opts.Temperature)}
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}
	if len(opts.StopWords) > 0 {
		callOpts = append(callOpts, llms.WithStopWords(opts.StopWords))
	}
	return s.generate(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, callOpts)
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.TextParts(messageType(msg.Role), msg.Content))
	}

	callOpts := []llms.CallOption{llms.WithTemperature(opts.Temperature)}
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}
	if opts.JSONMode {
		callOpts = append(callOpts, llms.WithJSONMode())
	}
	return s.generate(ctx, content, callOpts)
}

func (s *LLMService) generate(ctx context.Context, content []llms.MessageContent, opts []llms.CallOption) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.model.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("%s: generate: %w", s.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no response choices returned", s.name)
	}
	return resp.Choices[0].Content, nil
}

func messageType(role string) llms.ChatMessageType {
	switch role {
	case driven.RoleSystem:
		return llms.ChatMessageTypeSystem
	case driven.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.name
}

// Ping sends a one-token request.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.Generate(ctx, "ping", driven.GenerateOptions{MaxTokens: 1})
	return err
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
