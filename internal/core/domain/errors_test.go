package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrInput", ErrInput},
		{"ErrUnsupportedFormat", ErrUnsupportedFormat},
		{"ErrExtraction", ErrExtraction},
		{"ErrSchemaValidation", ErrSchemaValidation},
		{"ErrSchemaGeneration", ErrSchemaGeneration},
		{"ErrDocumentStore", ErrDocumentStore},
		{"ErrVectorStore", ErrVectorStore},
		{"ErrGraphStore", ErrGraphStore},
		{"ErrBlobCleanup", ErrBlobCleanup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_WrappedKindAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("%w: %w", ErrDocumentStore, cause)

	assert.True(t, errors.Is(err, ErrDocumentStore))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrVectorStore))
}
