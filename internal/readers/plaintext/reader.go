// Package plaintext reads UTF-8 text inputs: plain text, markdown and
// speech transcripts produced upstream.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.FormatReader = (*Reader)(nil)

const utf8BOM = "\uFEFF"

// Reader handles plain text documents.
type Reader struct{}

// New creates a new plain text reader.
func New() *Reader {
	return &Reader{}
}

// SourceTypes returns the source types this reader handles.
func (r *Reader) SourceTypes() []string {
	return []string{"txt", "text", "md", "markdown", "transcript"}
}

// Read returns the file content with invalid UTF-8 sequences dropped.
func (r *Reader) Read(_ context.Context, path string) (*driven.ReadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrInput, path, err)
	}
	return &driven.ReadResult{Text: Decode(data)}, nil
}

// Decode converts bytes to text, dropping a leading BOM and any
// invalid UTF-8 sequences.
func Decode(data []byte) string {
	text := strings.ToValidUTF8(string(data), "")
	return strings.TrimPrefix(text, utf8BOM)
}
