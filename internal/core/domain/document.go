package domain

import (
	"encoding/json"
	"time"
)

// UntitledDocument is the title used when no other title can be derived.
const UntitledDocument = "Untitled document"

// Document is the authoritative relational record of one ingested source.
type Document struct {
	// RowID is the store-assigned surrogate key.
	RowID int64 `json:"id"`

	// DocumentID is the caller or LLM supplied identifier, or a generated one.
	// It is not unique: repeated ingests may store several rows with one id.
	DocumentID string `json:"document_id"`

	// DocumentTitle is never empty once persisted.
	DocumentTitle string `json:"document_title"`

	DocumentType string     `json:"document_type,omitempty"`
	Summary      string     `json:"summary,omitempty"`
	RiskLevel    *RiskLevel `json:"risk_level"`

	// Source is the originating file name or system.
	Source string `json:"source,omitempty"`

	// SourcePath is the stored blob path, empty for inline text.
	SourcePath string `json:"source_path,omitempty"`

	// SourceType is the resolved format, e.g. pdf, docx, text.
	SourceType string `json:"source_type,omitempty"`

	// RawJSON is the full extraction payload as stored.
	RawJSON json.RawMessage `json:"raw_json,omitempty"`

	// State is the lifecycle position of the document.
	State LifecycleState `json:"state,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// LifecycleState tracks a document across the tri-store write and delete.
type LifecycleState string

// Lifecycle states in order. Deleted is terminal.
const (
	StateCreated LifecycleState = "created"
	StateIndexed LifecycleState = "indexed"
	StateActive  LifecycleState = "active"
	StateDeleted LifecycleState = "deleted"
)

// CanTransition reports whether moving from s to next is allowed.
func (s LifecycleState) CanTransition(next LifecycleState) bool {
	switch s {
	case "":
		return next == StateCreated
	case StateCreated:
		return next == StateIndexed || next == StateDeleted
	case StateIndexed:
		return next == StateActive || next == StateDeleted
	case StateActive:
		return next == StateDeleted
	default:
		return false
	}
}

// StorageResult records which stores accepted a document.
type StorageResult struct {
	DocumentStore bool `json:"document_store"`
	VectorStore   bool `json:"vector_store"`
	GraphStore    bool `json:"graph_store"`
}

// DeleteResult records which stores removed a document.
// Flags for best-effort stores are false when the delete failed
// and the entry may have been left behind.
type DeleteResult struct {
	DocumentID    string `json:"document_id"`
	DocumentStore bool   `json:"document_store"`
	VectorStore   bool   `json:"vector_store"`
	GraphStore    bool   `json:"graph_store"`
	BlobRemoved   bool   `json:"blob_removed"`
	SourcePath    string `json:"source_path,omitempty"`

	// State is the lifecycle state the document ended in.
	State LifecycleState `json:"state"`
}
