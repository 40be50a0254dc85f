package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/enlogic/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

// mockLLM replays canned replies in order; the last reply repeats.
type mockLLM struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   [][]driven.ChatMessage
	opts    []driven.ChatOptions
}

func newMockLLM(replies ...string) *mockLLM {
	return &mockLLM{replies: replies}
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	return m.Chat(ctx, []driven.ChatMessage{{Role: driven.RoleUser, Content: prompt}}, driven.ChatOptions{})
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, messages)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "", errors.New("no reply configured")
	}
	idx := min(len(m.calls)-1, len(m.replies)-1)
	return m.replies[idx], nil
}

func (m *mockLLM) ModelName() string            { return "mock" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockLLM) lastUserPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return ""
	}
	msgs := m.calls[len(m.calls)-1]
	return msgs[len(msgs)-1].Content
}

// mockProvider hands out one mockLLM and records selections.
type mockProvider struct {
	mu        sync.Mutex
	llm       *mockLLM
	err       error
	providers []string
	models    []string
}

func (p *mockProvider) LLM(_ context.Context, provider, model string) (driven.LLMService, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.providers = append(p.providers, provider)
	p.models = append(p.models, model)
	if p.err != nil {
		return nil, p.err
	}
	return p.llm, nil
}

// mockEmbedder produces small deterministic vectors.
type mockEmbedder struct {
	err error
}

func (e *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{1, float32(len(text) % 7), 0.5}, nil
}

func (e *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *mockEmbedder) Dimensions() int              { return 3 }
func (e *mockEmbedder) ModelName() string            { return "mock-embed" }
func (e *mockEmbedder) Ping(_ context.Context) error { return nil }
func (e *mockEmbedder) Close() error                 { return nil }

// failingVectorStore rejects writes.
type failingVectorStore struct {
	*memory.VectorStore
}

func (s failingVectorStore) Upsert(_ context.Context, _ string, _ []driven.VectorChunk) error {
	return errors.New("qdrant unavailable")
}

// failingGraphStore rejects writes and deletes.
type failingGraphStore struct {
	*memory.GraphStore
}

func (s failingGraphStore) UpsertNode(_ context.Context, _ string, _ driven.NodeRef, _ map[string]any) error {
	return errors.New("neo4j unavailable")
}

func (s failingGraphStore) DeleteNode(_ context.Context, _ string, _ driven.NodeRef) error {
	return errors.New("neo4j unavailable")
}

// recordingBlobs tracks removed paths.
type recordingBlobs struct {
	mu      sync.Mutex
	saved   map[string][]byte
	removed []string
	err     error
}

func (b *recordingBlobs) Save(_ context.Context, filename string, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return "", b.err
	}
	if b.saved == nil {
		b.saved = make(map[string][]byte)
	}
	path := "/uploads/" + filename
	b.saved[path] = data
	return path, nil
}

func (b *recordingBlobs) Remove(_ context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.removed = append(b.removed, path)
	return nil
}

// boltReply is a complete EngineeringLogic response for an ECN.
const boltReply = `{
  "document_metadata": {"document_id": "ECN-001", "document_title": "Bolt material change", "document_type": "ECN", "source": null},
  "summary": "Replace A36 bolts with A325 on the bracket.",
  "decision_background": ["Fatigue failures observed"],
  "key_clauses": ["Use A325 for all bracket bolts"],
  "risks": ["Supply delay"],
  "risk_level": "medium",
  "entities": [
    {"name": "A325", "type": "material", "description": "High strength bolt"},
    {"name": "bracket", "type": "component", "description": null}
  ],
  "causal_relations": [
    {"relation_type": "IMPACTS", "source": "A325", "target": "bracket", "evidence": "clause 2"}
  ],
  "affected_components": ["bracket assembly"],
  "source_reference": null
}`

// stores bundles in-memory adapters for one test.
type stores struct {
	docs    *memory.DocumentStore
	agents  *memory.AgentStore
	vectors *memory.VectorStore
	graph   *memory.GraphStore
	blobs   *recordingBlobs
}

func newStores() *stores {
	return &stores{
		docs:    memory.NewDocumentStore(),
		agents:  memory.NewAgentStore(),
		vectors: memory.NewVectorStore(),
		graph:   memory.NewGraphStore(),
		blobs:   &recordingBlobs{},
	}
}

func (s *stores) persister() *Persister {
	return NewPersister(s.docs,
		WithVectorStore(s.vectors, &mockEmbedder{}),
		WithGraphStore(s.graph),
		WithBlobStore(s.blobs),
	)
}
