package readers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.FormatReaderRegistry = (*Registry)(nil)

// Registry maps source types to readers.
// A later registration for the same type replaces the earlier one.
type Registry struct {
	mu      sync.RWMutex
	readers map[string]driven.FormatReader
}

// NewRegistry creates an empty reader registry.
func NewRegistry() *Registry {
	return &Registry{
		readers: make(map[string]driven.FormatReader),
	}
}

// Register adds a reader for all of its source types.
func (r *Registry) Register(reader driven.FormatReader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range reader.SourceTypes() {
		r.readers[strings.ToLower(t)] = reader
	}
}

// Reader returns the reader for sourceType.
func (r *Registry) Reader(sourceType string) (driven.FormatReader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reader, ok := r.readers[strings.ToLower(sourceType)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, sourceType)
	}
	return reader, nil
}

// SourceTypes returns all registered source types, sorted.
func (r *Registry) SourceTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.readers))
	for t := range r.readers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
