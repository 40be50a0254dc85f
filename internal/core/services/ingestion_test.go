package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/pipeline"
	"github.com/custodia-labs/enlogic/internal/readers"
)

func newIngestion(s *stores, llm *mockLLM) *IngestionService {
	p := NewIngestionPipeline(
		NewDispatcher(readers.NewDefaultRegistry()),
		NewExtractor(&mockProvider{llm: llm}, s.agents),
		s.persister(),
	)
	return NewIngestionService(p, s.blobs, 2)
}

func TestNewIngestionPipeline_StepOrder(t *testing.T) {
	p := NewIngestionPipeline(NewDispatcher(nil), NewExtractor(nil, nil), NewPersister(nil))

	assert.Equal(t, []string{StepParse, StepExtract, StepPersist}, p.Names())
}

func TestIngestionService_IngestText(t *testing.T) {
	s := newStores()
	svc := newIngestion(s, newMockLLM(boltReply))

	out, err := svc.Ingest(context.Background(), pipeline.Context{TenantID: "acme", Text: "ECN-001: replace bolts"})

	require.NoError(t, err)
	assert.Equal(t, "ECN-001", out.Document.DocumentID)
	assert.Equal(t, SourceTypeText, out.Document.SourceType)
	assert.Equal(t, domain.StorageResult{DocumentStore: true, VectorStore: true, GraphStore: true}, out.StorageResult)
}

// untitledReply leaves every metadata field null.
const untitledReply = `{
  "document_metadata": {"document_id": null, "document_title": null, "document_type": null, "source": null},
  "summary": "Bracket bolts change from A36 to A325.",
  "risk_level": null,
  "entities": [{"name": "A325", "type": "material", "description": null}],
  "affected_components": []
}`

func TestIngestionService_IngestTextWithoutTitle(t *testing.T) {
	s := newStores()
	svc := newIngestion(s, newMockLLM(untitledReply))
	docs := NewDocumentService(s.docs, s.persister())
	ctx := context.Background()

	out, err := svc.Ingest(ctx, pipeline.Context{
		TenantID: "acme",
		Text:     "Spec update: replace bolt type A36 with A325 in bracket assembly",
	})

	require.NoError(t, err)
	logic := out.Extraction.(domain.FixedExtraction).Logic
	assert.Equal(t, "Spec update: replace bolt type A36 with", logic.DocumentMetadata.DocumentTitle)
	assert.Len(t, logic.DocumentMetadata.DocumentID, 36)
	assert.Nil(t, logic.RiskLevel)
	assert.NotNil(t, logic.AffectedComponents)
	assert.Empty(t, logic.AffectedComponents)

	got, err := docs.Get(ctx, "acme", logic.DocumentMetadata.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, out.Document.RowID, got.RowID)
	assert.Equal(t, "Spec update: replace bolt type A36 with", got.DocumentTitle)
	assert.Equal(t, SourceTypeText, got.SourceType)
}

func TestIngestionService_IngestFile(t *testing.T) {
	s := newStores()
	svc := newIngestion(s, newMockLLM(boltReply))
	path := filepath.Join(t.TempDir(), "ab12_ecn.md")
	require.NoError(t, os.WriteFile(path, []byte("# ECN-001\nReplace bolts."), 0o600))

	out, err := svc.Ingest(context.Background(), pipeline.Context{TenantID: "acme", FileName: "ecn.md", FilePath: path})

	require.NoError(t, err)
	assert.Equal(t, "md", out.Document.SourceType)
	assert.Equal(t, path, out.Document.SourcePath)
	assert.Equal(t, "ecn.md", out.Document.Source)
}

func TestIngestionService_StepErrorNamed(t *testing.T) {
	s := newStores()
	llm := newMockLLM()
	llm.err = errors.New("boom")
	svc := newIngestion(s, llm)

	_, err := svc.Ingest(context.Background(), pipeline.Context{TenantID: "acme", Text: "x"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Contains(t, err.Error(), "step extract")
	docs, listErr := s.docs.List(context.Background(), "acme", 10)
	require.NoError(t, listErr)
	assert.Empty(t, docs, "nothing is stored when extraction fails")
}

func TestIngestionService_NoPipeline(t *testing.T) {
	svc := NewIngestionService(nil, nil, 0)

	_, err := svc.Ingest(context.Background(), pipeline.Context{Text: "x"})

	assert.ErrorIs(t, err, domain.ErrNotImplemented)
	assert.Equal(t, DefaultWorkers, svc.workers)
}

func TestIngestionService_IngestBatchKeepsOrder(t *testing.T) {
	s := newStores()
	svc := newIngestion(s, newMockLLM(boltReply))

	reqs := make([]pipeline.Context, 6)
	for i := range reqs {
		reqs[i] = pipeline.Context{TenantID: "acme", Text: fmt.Sprintf("doc %d", i)}
	}
	reqs[3] = pipeline.Context{TenantID: "acme"}

	results := svc.IngestBatch(context.Background(), reqs, 3)

	require.Len(t, results, 6)
	for i, r := range results {
		if i == 3 {
			assert.ErrorIs(t, r.Err, domain.ErrInput)
			continue
		}
		require.NoError(t, r.Err, "request %d", i)
		assert.Equal(t, fmt.Sprintf("doc %d", i), r.Context.Text)
	}
	docs, err := s.docs.List(context.Background(), "acme", 10)
	require.NoError(t, err)
	assert.Len(t, docs, 5)
}

func TestIngestionService_IngestBatchEmpty(t *testing.T) {
	svc := newIngestion(newStores(), newMockLLM(boltReply))

	assert.Empty(t, svc.IngestBatch(context.Background(), nil, 4))
}

func TestIngestionService_Upload(t *testing.T) {
	s := newStores()
	svc := newIngestion(s, newMockLLM(boltReply))

	path, err := svc.Upload(context.Background(), "plan.pdf", []byte("%PDF"))

	require.NoError(t, err)
	assert.Equal(t, "/uploads/plan.pdf", path)
	assert.Equal(t, []byte("%PDF"), s.blobs.saved[path])
}

func TestIngestionService_Discard(t *testing.T) {
	s := newStores()
	svc := newIngestion(s, newMockLLM(boltReply))
	ctx := context.Background()

	require.NoError(t, svc.Discard(ctx, "/uploads/ecn.pdf"))
	require.NoError(t, svc.Discard(ctx, ""))
	assert.Equal(t, []string{"/uploads/ecn.pdf"}, s.blobs.removed)

	s.blobs.err = errors.New("disk gone")
	assert.ErrorIs(t, svc.Discard(ctx, "/uploads/x.pdf"), domain.ErrBlobCleanup)

	assert.NoError(t, NewIngestionService(nil, nil, 1).Discard(ctx, "/uploads/x.pdf"))
}

func TestIngestionService_UploadFailure(t *testing.T) {
	s := newStores()
	s.blobs.err = errors.New("disk full")
	svc := newIngestion(s, newMockLLM(boltReply))

	_, err := svc.Upload(context.Background(), "plan.pdf", nil)

	assert.ErrorIs(t, err, domain.ErrInput)
}
