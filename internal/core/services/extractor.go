package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
	"github.com/custodia-labs/enlogic/internal/logger"
	"github.com/custodia-labs/enlogic/internal/pipeline"
	"github.com/custodia-labs/enlogic/internal/schema"
)

// Ensure Extractor implements the interfaces.
var (
	_ pipeline.Step           = (*Extractor)(nil)
	_ driven.PromptStoreAware = (*Extractor)(nil)
)

// extractionOptions are used for every extraction call.
var extractionOptions = driven.ChatOptions{Temperature: 0, JSONMode: true}

// Extractor asks a language model for structured output, either against
// the built-in EngineeringLogic schema or against an agent's schema.
type Extractor struct {
	promptSource

	llms   driven.LLMProvider
	agents driven.AgentStore
}

// NewExtractor creates an extract step.
// agents may be nil, in which case agent extraction is unavailable.
func NewExtractor(llms driven.LLMProvider, agents driven.AgentStore) *Extractor {
	return &Extractor{llms: llms, agents: agents}
}

// Name returns the step name.
func (e *Extractor) Name() string { return StepExtract }

// Run fills Extraction and, for agent requests, Agent.
func (e *Extractor) Run(ctx context.Context, pc pipeline.Context) (pipeline.Context, error) {
	if pc.RawText == "" && len(pc.Components) == 0 {
		return pc, fmt.Errorf("%w: nothing to extract", domain.ErrInput)
	}

	var agent *domain.Agent
	if pc.AgentID != "" {
		resolved, err := e.resolveAgent(ctx, pc.TenantID, pc.AgentID)
		if err != nil {
			return pc, err
		}
		agent = resolved
	}

	if e.llms == nil {
		return pc, fmt.Errorf("%w: no language model configured", domain.ErrLLMUnavailable)
	}
	llm, err := e.llms.LLM(ctx, pc.Provider, pc.Model)
	if err != nil {
		return pc, err
	}
	defer llm.Close()

	if agent == nil {
		logic, err := e.extractFixed(ctx, llm, pc.RawText)
		if err != nil {
			return pc, err
		}
		if logic.DocumentMetadata.Source == nil && pc.HasFile() {
			source := sourceName(pc)
			logic.DocumentMetadata.Source = &source
		}
		pc.Extraction = domain.FixedExtraction{Logic: logic}
		return pc, nil
	}

	payload, err := e.extractCustom(ctx, llm, agent, pc.RawText)
	if err != nil {
		return pc, err
	}
	pc.Agent = agent
	pc.Extraction = domain.CustomExtraction{
		AgentID:      agent.ID,
		AgentVersion: agent.Version,
		Payload:      payload,
	}
	return pc, nil
}

func (e *Extractor) resolveAgent(ctx context.Context, tenantID, agentID string) (*domain.Agent, error) {
	if e.agents == nil {
		return nil, fmt.Errorf("resolve agent %s: %w", agentID, domain.ErrNotImplemented)
	}
	agent, err := e.agents.GetAgent(ctx, tenantID, agentID)
	if err != nil {
		return nil, fmt.Errorf("resolve agent %s: %w", agentID, err)
	}
	if !agent.IsActive {
		logger.Warn("agent %s (v%d) is inactive; extracting anyway", agent.ID, agent.Version)
	}
	return agent, nil
}

func (e *Extractor) extractFixed(ctx context.Context, llm driven.LLMService, content string) (domain.EngineeringLogic, error) {
	reply, err := driven.Invoke(ctx, llm,
		e.render(driven.PromptExtractionSystem),
		e.render(driven.PromptExtractionUser, content, string(schema.EngineeringLogicSchema())),
		extractionOptions,
	)
	if err != nil {
		return domain.EngineeringLogic{}, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}

	obj, err := schema.DecodeObject(reply)
	if err != nil {
		return domain.EngineeringLogic{}, err
	}
	return schema.BindEngineeringLogic(obj)
}

func (e *Extractor) extractCustom(
	ctx context.Context,
	llm driven.LLMService,
	agent *domain.Agent,
	content string,
) (map[string]any, error) {
	compiled, err := schema.Compile(agent.Schema)
	if err != nil {
		return nil, fmt.Errorf("%w: agent %s schema: %w", domain.ErrSchemaValidation, agent.ID, err)
	}

	reply, err := driven.Invoke(ctx, llm,
		e.render(driven.PromptExtractionSystem),
		e.render(driven.PromptAgentExtractionUser,
			agent.Prompt,
			NormalizeLanguage(agent.OutputLanguage),
			string(agent.Schema),
			content,
		),
		extractionOptions,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}

	obj, err := schema.DecodeObject(reply)
	if err != nil {
		return nil, err
	}
	return compiled.SanitizeAndValidate(obj)
}

// sourceName is the file name a request was uploaded as.
func sourceName(pc pipeline.Context) string {
	if pc.FileName != "" {
		return pc.FileName
	}
	return filepath.Base(pc.FilePath)
}
