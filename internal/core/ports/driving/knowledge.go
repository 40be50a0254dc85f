package driving

import "context"

// AskRequest is a question against a tenant's knowledge base.
type AskRequest struct {
	TenantID string
	Question string

	// Language is the answer language. Chinese variants answer in
	// Traditional Chinese.
	Language string

	Provider string
	Model    string
}

// Answer is the model reply and the context it was given.
type Answer struct {
	Answer  string `json:"answer"`
	Context string `json:"context"`
}

// NoteRequest asks for a short note on one document or on free text.
// Text wins over DocumentID when both are set.
type NoteRequest struct {
	TenantID   string
	DocumentID string
	Text       string

	Language string
	Provider string
	Model    string
}

// KnowledgeService answers questions from the three stores.
type KnowledgeService interface {
	Ask(ctx context.Context, req AskRequest) (*Answer, error)

	// Note summarizes a stored document's extraction, or the given text,
	// into a few plain lines.
	Note(ctx context.Context, req NoteRequest) (string, error)
}
