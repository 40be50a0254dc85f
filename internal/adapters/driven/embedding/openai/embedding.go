// Package openai embeds text through langchaingo's OpenAI client.
package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms/openai"

	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second
)

// nativeDimensions is the vector size each model returns unshortened.
var nativeDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config describes the endpoint. Dimensions below the model's native size
// shortens each vector to that many values and renormalizes it.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int
}

// embedder is the part of *openai.LLM this adapter needs.
type embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

type EmbeddingService struct {
	client     embedder
	model      string
	dimensions int
}

func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	dims := cfg.Dimensions
	if dims == 0 {
		dims = nativeDimensions[cfg.Model]
	}
	if dims == 0 {
		dims = 1536
	}

	client, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithEmbeddingModel(cfg.Model),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("openai: create client: %w", err)
	}
	return &EmbeddingService{client: client, model: cfg.Model, dimensions: dims}, nil
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one request and fits every vector to
// Dimensions.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vecs, err := s.client.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("openai: embed: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("openai: got %d embeddings for %d inputs", len(vecs), len(texts))
	}

	for i, vec := range vecs {
		fitted, err := s.fit(vec)
		if err != nil {
			return nil, fmt.Errorf("openai: input %d: %w", i, err)
		}
		vecs[i] = fitted
	}
	return vecs, nil
}

func (s *EmbeddingService) fit(vec []float32) ([]float32, error) {
	switch {
	case len(vec) == s.dimensions:
		return vec, nil
	case len(vec) < s.dimensions:
		return nil, fmt.Errorf("model returned %d values, want %d", len(vec), s.dimensions)
	}
	return normalize(vec[:s.dimensions]), nil
}

// normalize scales vec to unit length in place.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping embeds a short test string, which checks the key, the model and the
// vector size together.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.Embed(ctx, "ping"); err != nil {
		return fmt.Errorf("openai: ping: %w", err)
	}
	return nil
}

func (s *EmbeddingService) Close() error {
	return nil
}
