package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
	"github.com/custodia-labs/enlogic/internal/core/ports/driving"
	"github.com/custodia-labs/enlogic/internal/logger"
)

// Ensure KnowledgeService implements the interfaces.
var (
	_ driving.KnowledgeService = (*KnowledgeService)(nil)
	_ driven.PromptStoreAware  = (*KnowledgeService)(nil)
)

// Context sizes gathered per question.
const (
	answerVectorHits = 4
	answerDocuments  = 5
	answerRelations  = 20
)

// noteTemperature leaves the note some freedom of wording.
const noteTemperature = 0.4

// KnowledgeService answers questions with context from all three stores.
// Each context source is optional and best-effort.
type KnowledgeService struct {
	promptSource

	llms     driven.LLMProvider
	docs     driven.DocumentStore
	vectors  driven.VectorStore
	embedder driven.EmbeddingService
	graph    driven.GraphStore
}

// NewKnowledgeService creates a knowledge service.
// Any store may be nil; its context section is then omitted.
func NewKnowledgeService(
	llms driven.LLMProvider,
	docs driven.DocumentStore,
	vectors driven.VectorStore,
	embedder driven.EmbeddingService,
	graph driven.GraphStore,
) *KnowledgeService {
	return &KnowledgeService{
		llms:     llms,
		docs:     docs,
		vectors:  vectors,
		embedder: embedder,
		graph:    graph,
	}
}

// Ask gathers context for the question and asks the model to answer it.
func (s *KnowledgeService) Ask(ctx context.Context, req driving.AskRequest) (*driving.Answer, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	if s.llms == nil {
		return nil, domain.ErrLLMUnavailable
	}

	knowledge := s.BuildContext(ctx, req.TenantID, req.Question)

	llm, err := s.llms.LLM(ctx, req.Provider, req.Model)
	if err != nil {
		return nil, err
	}
	defer llm.Close()

	reply, err := driven.Invoke(ctx, llm,
		s.render(driven.PromptAnswerSystem),
		s.render(driven.PromptAnswerUser, req.Question, knowledge, NormalizeLanguage(req.Language)),
		driven.ChatOptions{Temperature: 0},
	)
	if err != nil {
		return nil, fmt.Errorf("answer: %w", err)
	}
	return &driving.Answer{Answer: strings.TrimSpace(reply), Context: knowledge}, nil
}

// Note summarizes req.Text, or the stored extraction of req.DocumentID,
// into a few plain lines.
func (s *KnowledgeService) Note(ctx context.Context, req driving.NoteRequest) (string, error) {
	content := strings.TrimSpace(req.Text)
	if content == "" {
		if req.DocumentID == "" {
			return "", fmt.Errorf("%w: text or document id is required", domain.ErrInvalidInput)
		}
		if s.docs == nil {
			return "", fmt.Errorf("%w: no document store", domain.ErrNotFound)
		}
		doc, err := s.docs.Get(ctx, req.TenantID, req.DocumentID)
		if err != nil {
			return "", fmt.Errorf("load document %s: %w", req.DocumentID, err)
		}
		content = noteContent(doc)
	}
	if s.llms == nil {
		return "", domain.ErrLLMUnavailable
	}

	llm, err := s.llms.LLM(ctx, req.Provider, req.Model)
	if err != nil {
		return "", err
	}
	defer llm.Close()

	reply, err := driven.Invoke(ctx, llm,
		s.render(driven.PromptNoteSystem),
		s.render(driven.PromptNoteUser, NormalizeLanguage(req.Language), content),
		driven.ChatOptions{Temperature: noteTemperature},
	)
	if err != nil {
		return "", fmt.Errorf("note: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// noteContent is the stored payload, or the title and summary for rows
// without one.
func noteContent(doc *domain.Document) string {
	if len(doc.RawJSON) > 0 {
		return string(doc.RawJSON)
	}
	return strings.TrimSpace(doc.DocumentTitle + "\n" + doc.Summary)
}

// BuildContext renders the [Vector], [Documents] and [Graph] sections
// that have content, separated by blank lines.
func (s *KnowledgeService) BuildContext(ctx context.Context, tenantID, question string) string {
	var parts []string
	if section := s.vectorContext(ctx, tenantID, question); section != "" {
		parts = append(parts, "[Vector]\n"+section)
	}
	if section := s.documentContext(ctx, tenantID); section != "" {
		parts = append(parts, "[Documents]\n"+section)
	}
	if section := s.graphContext(ctx, tenantID); section != "" {
		parts = append(parts, "[Graph]\n"+section)
	}
	return strings.Join(parts, "\n\n")
}

func (s *KnowledgeService) vectorContext(ctx context.Context, tenantID, question string) string {
	if s.vectors == nil || s.embedder == nil {
		return ""
	}
	query, err := s.embedder.Embed(ctx, question)
	if err != nil {
		logger.Warn("answer context: embed question: %v", err)
		return ""
	}
	hits, err := s.vectors.Search(ctx, tenantID, query, answerVectorHits)
	if err != nil {
		logger.Warn("answer context: vector search: %v", err)
		return ""
	}
	chunks := make([]string, 0, len(hits))
	for _, hit := range hits {
		chunks = append(chunks, hit.Text)
	}
	return strings.Join(chunks, "\n\n")
}

func (s *KnowledgeService) documentContext(ctx context.Context, tenantID string) string {
	if s.docs == nil {
		return ""
	}
	docs, err := s.docs.List(ctx, tenantID, answerDocuments)
	if err != nil {
		logger.Warn("answer context: list documents: %v", err)
		return ""
	}
	lines := make([]string, 0, len(docs))
	for i := range docs {
		lines = append(lines, fmt.Sprintf("%s | %s | %s", docs[i].DocumentID, docs[i].DocumentTitle, docs[i].Summary))
	}
	return strings.Join(lines, "\n")
}

func (s *KnowledgeService) graphContext(ctx context.Context, tenantID string) string {
	if s.graph == nil {
		return ""
	}
	relations, err := s.graph.Relations(ctx, tenantID, answerRelations)
	if err != nil {
		logger.Warn("answer context: graph relations: %v", err)
		return ""
	}
	lines := make([]string, 0, len(relations))
	for _, r := range relations {
		lines = append(lines, fmt.Sprintf("Doc %s (%s): %s -> %s", r.DocumentID, r.Title, r.Type, r.Target))
	}
	return strings.Join(lines, "\n")
}
