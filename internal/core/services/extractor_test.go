package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/enlogic/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/pipeline"
)

const statusSchema = `{
  "type": "object",
  "required": ["status"],
  "properties": {
    "status": {"type": "string", "enum": ["open", "closed"]},
    "owner": {"type": ["string", "null"]}
  }
}`

func saveAgent(t *testing.T, store *memory.AgentStore, tenant string, active bool) *domain.Agent {
	t.Helper()
	agent := &domain.Agent{
		ID:             "agent-1",
		Name:           "status",
		Prompt:         "Extract the ticket status.",
		Schema:         json.RawMessage(statusSchema),
		OutputLanguage: "en",
		Version:        2,
		IsActive:       active,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, store.SaveAgent(context.Background(), tenant, agent))
	return agent
}

func TestExtractor_Fixed(t *testing.T) {
	llm := newMockLLM(boltReply)
	e := NewExtractor(&mockProvider{llm: llm}, nil)

	out, err := e.Run(context.Background(), pipeline.Context{
		RawText:  "ECN-001 bolt change",
		FileName: "ecn.pdf",
		FilePath: "/data/uploads/ab_ecn.pdf",
		Provider: "ollama",
		Model:    "qwen3:8b",
	})

	require.NoError(t, err)
	fixed, ok := out.Extraction.(domain.FixedExtraction)
	require.True(t, ok)
	assert.Equal(t, "ECN-001", fixed.Logic.DocumentMetadata.DocumentID)
	require.NotNil(t, fixed.Logic.DocumentMetadata.Source)
	assert.Equal(t, "ecn.pdf", *fixed.Logic.DocumentMetadata.Source)
	assert.Nil(t, out.Agent)

	require.Equal(t, 1, llm.callCount())
	assert.Zero(t, llm.opts[0].Temperature)
	assert.True(t, llm.opts[0].JSONMode)
	assert.Contains(t, llm.lastUserPrompt(), "ECN-001 bolt change")
	assert.Contains(t, llm.lastUserPrompt(), "causal_relations")
}

func TestExtractor_FixedTextHasNoSource(t *testing.T) {
	e := NewExtractor(&mockProvider{llm: newMockLLM(boltReply)}, nil)

	out, err := e.Run(context.Background(), pipeline.Context{Text: "x", RawText: "x"})

	require.NoError(t, err)
	assert.Nil(t, out.Extraction.(domain.FixedExtraction).Logic.DocumentMetadata.Source)
}

func TestExtractor_FixedWrappedReply(t *testing.T) {
	e := NewExtractor(&mockProvider{llm: newMockLLM("Here you go:\n```json\n" + boltReply + "\n```")}, nil)

	out, err := e.Run(context.Background(), pipeline.Context{RawText: "x"})

	require.NoError(t, err)
	assert.Equal(t, domain.ExtractionFixed, out.Extraction.Kind())
}

func TestExtractor_NothingToExtract(t *testing.T) {
	e := NewExtractor(&mockProvider{llm: newMockLLM(boltReply)}, nil)

	_, err := e.Run(context.Background(), pipeline.Context{})

	assert.ErrorIs(t, err, domain.ErrInput)
}

func TestExtractor_NoProvider(t *testing.T) {
	e := NewExtractor(nil, nil)

	_, err := e.Run(context.Background(), pipeline.Context{RawText: "x"})

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestExtractor_LLMErrorIsExtraction(t *testing.T) {
	llm := newMockLLM()
	llm.err = errors.New("connection refused")
	e := NewExtractor(&mockProvider{llm: llm}, nil)

	_, err := e.Run(context.Background(), pipeline.Context{RawText: "x"})

	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtractor_UndecodableReply(t *testing.T) {
	e := NewExtractor(&mockProvider{llm: newMockLLM("I cannot help with that.")}, nil)

	_, err := e.Run(context.Background(), pipeline.Context{RawText: "x"})

	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtractor_InvalidRelationType(t *testing.T) {
	reply := `{"document_metadata": {"document_id": "X", "document_title": "T"}, "summary": "s",
	  "causal_relations": [{"relation_type": "BREAKS", "source": "a", "target": "b"}]}`
	e := NewExtractor(&mockProvider{llm: newMockLLM(reply)}, nil)

	_, err := e.Run(context.Background(), pipeline.Context{RawText: "x"})

	assert.ErrorIs(t, err, domain.ErrSchemaValidation)
}

func TestExtractor_Agent(t *testing.T) {
	agents := memory.NewAgentStore()
	saveAgent(t, agents, "acme", true)
	llm := newMockLLM(`{"status": "open", "owner": null}`)
	e := NewExtractor(&mockProvider{llm: llm}, agents)

	out, err := e.Run(context.Background(), pipeline.Context{TenantID: "acme", RawText: "ticket is open", AgentID: "agent-1"})

	require.NoError(t, err)
	custom, ok := out.Extraction.(domain.CustomExtraction)
	require.True(t, ok)
	assert.Equal(t, "agent-1", custom.AgentID)
	assert.Equal(t, 2, custom.AgentVersion)
	assert.Equal(t, "open", custom.Payload["status"])
	assert.NotContains(t, custom.Payload, "owner", "optional nulls are dropped")
	require.NotNil(t, out.Agent)
	assert.Contains(t, llm.lastUserPrompt(), "Extract the ticket status.")
	assert.Contains(t, llm.lastUserPrompt(), `"enum"`)
}

func TestExtractor_AgentEnumViolation(t *testing.T) {
	agents := memory.NewAgentStore()
	saveAgent(t, agents, "acme", true)
	e := NewExtractor(&mockProvider{llm: newMockLLM(`{"status": "pending"}`)}, agents)

	_, err := e.Run(context.Background(), pipeline.Context{TenantID: "acme", RawText: "x", AgentID: "agent-1"})

	assert.ErrorIs(t, err, domain.ErrSchemaValidation)
}

func TestExtractor_InactiveAgentStillUsed(t *testing.T) {
	agents := memory.NewAgentStore()
	saveAgent(t, agents, "acme", false)
	e := NewExtractor(&mockProvider{llm: newMockLLM(`{"status": "closed"}`)}, agents)

	out, err := e.Run(context.Background(), pipeline.Context{TenantID: "acme", RawText: "x", AgentID: "agent-1"})

	require.NoError(t, err)
	assert.Equal(t, "closed", out.Extraction.(domain.CustomExtraction).Payload["status"])
}

func TestExtractor_MissingAgent(t *testing.T) {
	llm := newMockLLM(`{"status": "open"}`)
	e := NewExtractor(&mockProvider{llm: llm}, memory.NewAgentStore())

	_, err := e.Run(context.Background(), pipeline.Context{TenantID: "acme", RawText: "x", AgentID: "nope"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, llm.callCount())
}

func TestExtractor_AgentWrongTenant(t *testing.T) {
	agents := memory.NewAgentStore()
	saveAgent(t, agents, "acme", true)
	e := NewExtractor(&mockProvider{llm: newMockLLM(`{"status": "open"}`)}, agents)

	_, err := e.Run(context.Background(), pipeline.Context{TenantID: "globex", RawText: "x", AgentID: "agent-1"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExtractor_AgentBrokenSchema(t *testing.T) {
	agents := memory.NewAgentStore()
	require.NoError(t, agents.SaveAgent(context.Background(), "acme", &domain.Agent{
		ID: "bad", Name: "bad", Prompt: "p", Schema: json.RawMessage(`[1, 2]`), IsActive: true,
	}))
	e := NewExtractor(&mockProvider{llm: newMockLLM(`{}`)}, agents)

	_, err := e.Run(context.Background(), pipeline.Context{TenantID: "acme", RawText: "x", AgentID: "bad"})

	assert.ErrorIs(t, err, domain.ErrSchemaValidation)
}

type staticPrompts map[string]string

func (p staticPrompts) Load(name string) (string, error) {
	if v, ok := p[name]; ok {
		return v, nil
	}
	return "", domain.ErrNotFound
}

func TestExtractor_PromptStoreOverride(t *testing.T) {
	llm := newMockLLM(boltReply)
	e := NewExtractor(&mockProvider{llm: llm}, nil)
	e.SetPromptStore(staticPrompts{"extraction_user": "CUSTOM %s | %s"})

	_, err := e.Run(context.Background(), pipeline.Context{RawText: "body"})

	require.NoError(t, err)
	assert.Contains(t, llm.lastUserPrompt(), "CUSTOM body |")
}
