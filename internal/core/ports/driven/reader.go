package driven

import (
	"context"

	"github.com/custodia-labs/enlogic/internal/core/domain"
)

// FormatReader extracts text from one family of stored inputs.
type FormatReader interface {
	// SourceTypes returns the lower-cased source types this reader handles.
	SourceTypes() []string

	// Read returns the text of the file at path and, for building
	// models, the typed components found in it.
	Read(ctx context.Context, path string) (*ReadResult, error)
}

// ReadResult is the output of a FormatReader.
type ReadResult struct {
	// Text is plain text, or markdown for layout-aware formats.
	Text string

	// Components is the IFC side-list. Nil for other formats.
	Components []domain.IfcComponent
}

// FormatReaderRegistry selects a reader by source type.
type FormatReaderRegistry interface {
	// Reader returns the reader for sourceType or domain.ErrUnsupportedFormat.
	Reader(sourceType string) (FormatReader, error)

	// Register adds a reader for all of its source types.
	Register(reader FormatReader)

	// SourceTypes returns every registered source type.
	SourceTypes() []string
}

// BlobStore durably stores uploaded inputs for byte-oriented formats.
type BlobStore interface {
	// Save copies the named upload into storage and returns its path.
	Save(ctx context.Context, filename string, data []byte) (string, error)

	// Remove deletes a stored path. Missing files are not an error.
	Remove(ctx context.Context, path string) error
}
