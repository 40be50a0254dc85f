package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load from files, embedded defaults, or other sources.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Falls back to DefaultPrompts when no custom prompt exists.
	Load(name string) (string, error)
}

// Prompt names, also used as file names in a prompt directory.
const (
	// PromptExtractionSystem is the system prompt for every extraction call.
	PromptExtractionSystem = "extraction_system"

	// PromptExtractionUser frames source content for the built-in schema.
	// Placeholders: source content, JSON schema.
	PromptExtractionUser = "extraction_user"

	// PromptAgentExtractionUser frames source content for an agent schema.
	// Placeholders: agent prompt, output language, JSON schema, source content.
	PromptAgentExtractionUser = "agent_extraction_user"

	// PromptSchemaSystem is the system prompt for authoring agent schemas.
	PromptSchemaSystem = "schema_system"

	// PromptSchemaUser carries the requirement.
	// Placeholders: language, requirement.
	PromptSchemaUser = "schema_user"

	// PromptAnswerSystem is the system prompt for knowledge answers.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser carries the question and gathered context.
	// Placeholders: question, context, language.
	PromptAnswerUser = "answer_user"

	// PromptNoteSystem is the system prompt for short document notes.
	PromptNoteSystem = "note_system"

	// PromptNoteUser carries the content to summarize.
	// Placeholders: language, content.
	PromptNoteUser = "note_user"
)

// DefaultPrompts are the built-in templates.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var DefaultPrompts = map[string]string{
	PromptExtractionSystem: `You are an expert knowledge extraction agent for construction and manufacturing.
Given layout-aware markdown or structured text, extract the decision logic and
return ONLY a JSON object matching the provided schema.

Rules:
- Use specific, concrete wording from the source.
- Prefer concise lists over paragraphs.
- Use relation types from the allowed enum.
- If a field is unknown, return an empty list or null, not a guess.`,

	PromptExtractionUser: `Source content:

%s

JSON Schema:
%s

Return ONLY JSON that matches the schema.`,

	PromptAgentExtractionUser: `User agent prompt:
%s

Output language (use Traditional Chinese if Chinese is requested): %s

JSON Schema:
%s

Source content:
%s

Return ONLY JSON that matches the schema.`,

	PromptSchemaSystem: `You are a data architect for construction/manufacturing documents.
Given a user requirement, design a concise JSON Schema (Draft 7) for structured extraction.
Rules:
- Output ONLY valid JSON (no code fences).
- Use type: object with properties.
- Keep fields minimal and practical.
- Use string/number/boolean/array/object types.`,

	PromptSchemaUser: `Requirement (language=%s):
%s

Return JSON schema:`,

	PromptAnswerSystem: `You are a helpful industrial knowledge assistant. Use the provided context from
vector search, documents, and graph relations to answer the question.
If you are unsure, say you need more documents.`,

	PromptAnswerUser: `Question:
%s

Context:
%s

Answer in the requested language: %s. Use Traditional Chinese when Chinese is requested.`,

	PromptNoteSystem: `You are a friendly technical assistant. Summarize the input into a short, concise note.`,

	PromptNoteUser: `Summarize into 4-6 short lines of 10-20 words each, key points only.
Write in the requested language: %s. Use Traditional Chinese when Chinese is requested.
No Markdown or special symbols; separate lines with newlines.

Content:
%s`,
}

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompts customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	SetPromptStore(store PromptStore)
}
