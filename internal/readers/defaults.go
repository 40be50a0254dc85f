package readers

import (
	"github.com/custodia-labs/enlogic/internal/readers/docx"
	"github.com/custodia-labs/enlogic/internal/readers/ifc"
	"github.com/custodia-labs/enlogic/internal/readers/pdf"
	"github.com/custodia-labs/enlogic/internal/readers/plaintext"
)

// NewDefaultRegistry returns a registry with every built-in reader.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// RegisterDefaults registers all built-in readers with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(plaintext.New())
	r.Register(docx.New())
	r.Register(pdf.New())
	r.Register(ifc.New())
}
