// Package ollama talks to a local Ollama daemon over its chat API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "qwen3:8b"
	DefaultLLMTimeout = 120 * time.Second
)

// thinkBlock matches the reasoning preamble emitted by qwen3 and deepseek-r1.
var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// LLMConfig configures the daemon endpoint. Zero values take the defaults.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService sends every request to /api/chat with streaming off.
type LLMService struct {
	http    *http.Client
	baseURL string
	model   string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// params maps onto Ollama's runtime options. Temperature is a pointer so a
// zero value is still sent.
type params struct {
	Temperature *float64 `json:"temperature"`
	NumPredict  int      `json:"num_predict,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type chatBody struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
	Format   string    `json:"format,omitempty"`
	Options  params    `json:"options"`
}

type chatReply struct {
	Message message `json:"message"`
	Error   string  `json:"error,omitempty"`
}

// NewLLMService returns a client for cfg.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	return &LLMService{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
}

// Generate runs prompt as a single user turn.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	temp := opts.Temperature
	return s.chat(ctx, []message{{Role: driven.RoleUser, Content: prompt}}, "", params{
		Temperature: &temp,
		NumPredict:  opts.MaxTokens,
		Stop:        opts.StopWords,
	})
}

// Chat sends the conversation. JSONMode constrains the reply to a JSON value.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	turns := make([]message, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, message{Role: m.Role, Content: m.Content})
	}

	format := ""
	if opts.JSONMode {
		format = "json"
	}
	temp := opts.Temperature
	return s.chat(ctx, turns, format, params{Temperature: &temp, NumPredict: opts.MaxTokens})
}

func (s *LLMService) chat(ctx context.Context, turns []message, format string, p params) (string, error) {
	payload, err := json.Marshal(chatBody{
		Model:    s.model,
		Messages: turns,
		Format:   format,
		Options:  p,
	})
	if err != nil {
		return "", fmt.Errorf("ollama: encode chat: %w", err)
	}

	var reply chatReply
	if err := s.do(ctx, http.MethodPost, "/api/chat", payload, &reply); err != nil {
		return "", err
	}
	if reply.Error != "" {
		return "", fmt.Errorf("ollama: %s", reply.Error)
	}
	return stripThinking(reply.Message.Content), nil
}

// stripThinking drops <think> blocks so callers see only the answer.
func stripThinking(content string) string {
	if !strings.Contains(content, "<think>") {
		return content
	}
	return strings.TrimSpace(thinkBlock.ReplaceAllString(content, ""))
}

// do issues one request and decodes a 200 body into out. Non-200 replies are
// reported with Ollama's error field when it has one.
func (s *LLMService) do(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("ollama: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ollama: decode %s: %w", path, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var reply chatReply
	if json.Unmarshal(raw, &reply) == nil && reply.Error != "" {
		return fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, reply.Error)
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, msg)
}

func (s *LLMService) ModelName() string {
	return s.model
}

// ErrModelMissing is returned by Ping when the daemon is up but the model
// has not been pulled.
var ErrModelMissing = errors.New("ollama: model not pulled")

// Ping checks that the daemon answers and that the model is installed.
func (s *LLMService) Ping(ctx context.Context) error {
	var tags struct {
		Models []struct {
			Name  string `json:"name"`
			Model string `json:"model"`
		} `json:"models"`
	}
	if err := s.do(ctx, http.MethodGet, "/api/tags", nil, &tags); err != nil {
		return err
	}
	for _, m := range tags.Models {
		if sameModel(m.Name, s.model) || sameModel(m.Model, s.model) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrModelMissing, s.model)
}

// sameModel compares names treating a missing tag as "latest".
func sameModel(installed, want string) bool {
	withTag := func(name string) string {
		if name != "" && !strings.Contains(name, ":") {
			return name + ":latest"
		}
		return name
	}
	return installed != "" && withTag(installed) == withTag(want)
}

func (s *LLMService) Close() error {
	return nil
}
