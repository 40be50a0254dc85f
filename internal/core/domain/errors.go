package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Vector indexing is skipped without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Pipeline Errors.

	// ErrInput indicates neither a file nor inline text was supplied,
	// or the reader produced nothing to extract from.
	ErrInput = errors.New("input error")

	// ErrUnsupportedFormat indicates an unrecognised file suffix or source type.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtraction indicates the LLM output could not be decoded as JSON,
	// even after bounded recovery.
	ErrExtraction = errors.New("extraction error")

	// ErrSchemaValidation indicates a sanitised instance still violates its schema.
	ErrSchemaValidation = errors.New("schema validation error")

	// ErrSchemaGeneration indicates the agent-authoring call yielded no usable schema.
	ErrSchemaGeneration = errors.New("schema generation error")

	// Store Errors.

	// ErrDocumentStore indicates the authoritative document write failed.
	ErrDocumentStore = errors.New("document store error")

	// ErrVectorStore indicates a vector upsert or delete failed.
	ErrVectorStore = errors.New("vector store error")

	// ErrGraphStore indicates a graph upsert or delete failed.
	ErrGraphStore = errors.New("graph store error")

	// ErrBlobCleanup indicates a stored source file could not be removed.
	ErrBlobCleanup = errors.New("blob cleanup error")
)
