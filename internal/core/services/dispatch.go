package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
	"github.com/custodia-labs/enlogic/internal/logger"
	"github.com/custodia-labs/enlogic/internal/pipeline"
)

// Pipeline step names.
const (
	StepParse   = "parse"
	StepExtract = "extract"
	StepPersist = "persist"
)

// SourceTypeText is the source type of inline text input.
const SourceTypeText = "text"

// Ensure Dispatcher implements the interface.
var _ pipeline.Step = (*Dispatcher)(nil)

// Dispatcher turns the request input into raw text by routing stored
// files to the format reader for their source type.
type Dispatcher struct {
	readers driven.FormatReaderRegistry
}

// NewDispatcher creates a parse step over the given reader registry.
func NewDispatcher(readers driven.FormatReaderRegistry) *Dispatcher {
	return &Dispatcher{readers: readers}
}

// Name returns the step name.
func (d *Dispatcher) Name() string { return StepParse }

// Run fills RawText, SourceType and, for building models, Components.
// Inline text takes precedence over a stored file.
func (d *Dispatcher) Run(ctx context.Context, pc pipeline.Context) (pipeline.Context, error) {
	if pc.HasText() {
		pc.RawText = pc.Text
		pc.SourceType = strings.ToLower(pc.SourceType)
		if pc.SourceType == "" {
			pc.SourceType = SourceTypeText
		}
		return pc, nil
	}
	if !pc.HasFile() {
		return pc, fmt.Errorf("%w: no text or file provided", domain.ErrInput)
	}

	sourceType := ResolveSourceType(pc)
	if d.readers == nil {
		return pc, fmt.Errorf("%w: %q: no readers configured", domain.ErrUnsupportedFormat, sourceType)
	}
	reader, err := d.readers.Reader(sourceType)
	if err != nil {
		return pc, err
	}

	logger.Debug("parse %s as %s", pc.FilePath, sourceType)
	result, err := reader.Read(ctx, pc.FilePath)
	if err != nil {
		return pc, fmt.Errorf("read %s: %w", sourceType, err)
	}
	if strings.TrimSpace(result.Text) == "" && len(result.Components) == 0 {
		return pc, fmt.Errorf("%w: no content extracted from %s", domain.ErrInput, filepath.Base(pc.FilePath))
	}

	pc.SourceType = sourceType
	pc.RawText = result.Text
	pc.Components = result.Components
	return pc, nil
}

// ResolveSourceType returns the lower-cased override, else the suffix of
// the original file name, else the suffix of the stored path.
func ResolveSourceType(pc pipeline.Context) string {
	if pc.SourceType != "" {
		return strings.ToLower(pc.SourceType)
	}
	name := pc.FileName
	if name == "" {
		name = pc.FilePath
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}
