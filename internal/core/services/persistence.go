package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
	"github.com/custodia-labs/enlogic/internal/logger"
	"github.com/custodia-labs/enlogic/internal/pipeline"
)

// Ensure Persister implements the interface.
var _ pipeline.Step = (*Persister)(nil)

// SourceTypeCustom is the document type of agent extractions that name none.
const SourceTypeCustom = "custom"

// errNotConfigured marks a best-effort store that was never wired.
var errNotConfigured = errors.New("not configured")

// Persister writes an extraction to the document, vector and graph stores.
//
// The document store is authoritative and its failure aborts the write.
// The vector and graph stores are best-effort: failures are logged and
// reported through StorageResult. Nothing is rolled back.
type Persister struct {
	docs     driven.DocumentStore
	vectors  driven.VectorStore
	embedder driven.EmbeddingService
	graph    driven.GraphStore
	blobs    driven.BlobStore
}

// PersisterOption configures a Persister.
type PersisterOption func(*Persister)

// WithVectorStore enables semantic indexing.
func WithVectorStore(store driven.VectorStore, embedder driven.EmbeddingService) PersisterOption {
	return func(p *Persister) {
		p.vectors = store
		p.embedder = embedder
	}
}

// WithGraphStore enables the entity/relation index.
func WithGraphStore(store driven.GraphStore) PersisterOption {
	return func(p *Persister) {
		p.graph = store
	}
}

// WithBlobStore enables removal of stored inputs on delete.
func WithBlobStore(store driven.BlobStore) PersisterOption {
	return func(p *Persister) {
		p.blobs = store
	}
}

// NewPersister creates a persist step over docs and the optional stores.
func NewPersister(docs driven.DocumentStore, opts ...PersisterOption) *Persister {
	p := &Persister{docs: docs}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the step name.
func (p *Persister) Name() string { return StepPersist }

// Run stores pc.Extraction and fills Document and StorageResult.
// The extraction is replaced by the copy carrying resolved metadata.
func (p *Persister) Run(ctx context.Context, pc pipeline.Context) (pipeline.Context, error) {
	if pc.Extraction == nil {
		return pc, fmt.Errorf("%w: no extraction result to store", domain.ErrInvalidInput)
	}
	if p.docs == nil {
		return pc, fmt.Errorf("%w: %w", domain.ErrDocumentStore, domain.ErrNotImplemented)
	}

	record, err := resolveRecord(pc)
	if err != nil {
		return pc, err
	}
	doc := record.Document

	if err := p.docs.EnsureNamespace(ctx, pc.TenantID); err != nil {
		return pc, fmt.Errorf("%w: %w", domain.ErrDocumentStore, err)
	}
	if err := p.docs.Insert(ctx, pc.TenantID, doc); err != nil {
		return pc, fmt.Errorf("%w: %w", domain.ErrDocumentStore, err)
	}
	advance(doc, domain.StateCreated)

	result := domain.StorageResult{DocumentStore: true}
	log := logger.With(logger.Fields{"tenant": pc.TenantID, "document_id": doc.DocumentID})

	result.VectorStore = skipped(log, "vector", p.storeVector(ctx, pc.TenantID, record.view))
	result.GraphStore = skipped(log, "graph", p.storeGraph(ctx, pc.TenantID, record, pc.Components))

	advance(doc, domain.StateIndexed)
	if result.VectorStore && result.GraphStore {
		advance(doc, domain.StateActive)
	}
	log.WithField("state", doc.State).Info("document stored")

	pc.Extraction = record.Extraction
	pc.Document = doc
	pc.StorageResult = result
	return pc, nil
}

// skipped logs a best-effort store failure and reports success.
func skipped(log *logrus.Entry, store string, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, errNotConfigured):
		log.Debugf("%s store not configured", store)
	default:
		log.WithError(err).Warnf("%s store skipped", store)
	}
	return false
}

// Delete removes every row with documentID, then its vector chunks,
// graph node and stored input. Only the row delete is fatal.
func (p *Persister) Delete(ctx context.Context, tenantID, documentID string) (*domain.DeleteResult, error) {
	if p.docs == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDocumentStore, domain.ErrNotImplemented)
	}
	doc, err := p.docs.Get(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if err := p.docs.Delete(ctx, tenantID, documentID); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDocumentStore, err)
	}
	return p.cleanup(ctx, tenantID, doc), nil
}

// DeleteByRow removes one row, then the index entries of its document id
// and its stored input. Other rows with the same document id are kept.
func (p *Persister) DeleteByRow(ctx context.Context, tenantID string, rowID int64) (*domain.DeleteResult, error) {
	if p.docs == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDocumentStore, domain.ErrNotImplemented)
	}
	doc, err := p.docs.GetByRow(ctx, tenantID, rowID)
	if err != nil {
		return nil, err
	}
	if err := p.docs.DeleteByRow(ctx, tenantID, rowID); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDocumentStore, err)
	}
	return p.cleanup(ctx, tenantID, doc), nil
}

func (p *Persister) cleanup(ctx context.Context, tenantID string, doc *domain.Document) *domain.DeleteResult {
	result := &domain.DeleteResult{
		DocumentID:    doc.DocumentID,
		DocumentStore: true,
		SourcePath:    doc.SourcePath,
	}
	log := logger.With(logger.Fields{"tenant": tenantID, "document_id": doc.DocumentID})

	if doc.DocumentID != "" {
		if p.vectors != nil {
			if err := p.vectors.DeleteByField(ctx, tenantID, "document_id", doc.DocumentID); err != nil {
				log.WithError(fmt.Errorf("%w: %w", domain.ErrVectorStore, err)).Warn("vector delete failed")
			} else {
				result.VectorStore = true
			}
		}
		if p.graph != nil {
			node := driven.NodeRef{Label: driven.LabelDocument, KeyField: "document_id", Key: doc.DocumentID}
			if err := p.graph.DeleteNode(ctx, tenantID, node); err != nil {
				log.WithError(fmt.Errorf("%w: %w", domain.ErrGraphStore, err)).Warn("graph delete failed")
			} else {
				result.GraphStore = true
			}
		}
	}

	if doc.SourcePath != "" && p.blobs != nil {
		if err := p.blobs.Remove(ctx, doc.SourcePath); err != nil {
			log.WithError(fmt.Errorf("%w: %w", domain.ErrBlobCleanup, err)).Warn("stored input not removed")
		} else {
			result.BlobRemoved = true
		}
	}

	// Rows read back from a store carry no state; they were created.
	if doc.State == "" {
		doc.State = domain.StateCreated
	}
	advance(doc, domain.StateDeleted)
	result.State = doc.State
	return result
}

// advance moves doc to next when the lifecycle allows it and leaves it
// where it is otherwise.
func advance(doc *domain.Document, next domain.LifecycleState) bool {
	if !doc.State.CanTransition(next) {
		logger.Warn("document %s: lifecycle %s -> %s not allowed", doc.DocumentID, doc.State, next)
		return false
	}
	doc.State = next
	return true
}

func (p *Persister) storeVector(ctx context.Context, tenantID string, view indexView) error {
	if p.vectors == nil || p.embedder == nil {
		return fmt.Errorf("%w: %w", domain.ErrVectorStore, errNotConfigured)
	}
	text := view.Text()
	embedding, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("%w: embed: %w", domain.ErrVectorStore, err)
	}
	chunk := driven.VectorChunk{
		ID:        uuid.NewString(),
		Text:      text,
		Embedding: embedding,
		Metadata:  view.Metadata(),
	}
	if err := p.vectors.Upsert(ctx, tenantID, []driven.VectorChunk{chunk}); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrVectorStore, err)
	}
	return nil
}

func (p *Persister) storeGraph(ctx context.Context, tenantID string, rec *record, components []domain.IfcComponent) error {
	if p.graph == nil {
		return fmt.Errorf("%w: %w", domain.ErrGraphStore, errNotConfigured)
	}
	var err error
	switch ext := rec.Extraction.(type) {
	case domain.FixedExtraction:
		err = p.graphFixed(ctx, tenantID, ext.Logic, components)
	case domain.CustomExtraction:
		err = p.graphCustom(ctx, tenantID, rec.Document)
	default:
		err = fmt.Errorf("unknown extraction %T", ext)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrGraphStore, err)
	}
	return nil
}

func (p *Persister) graphFixed(ctx context.Context, tenantID string, logic domain.EngineeringLogic, components []domain.IfcComponent) error {
	meta := logic.DocumentMetadata
	docRef := driven.NodeRef{Label: driven.LabelDocument, KeyField: "document_id", Key: meta.DocumentID}
	if err := p.graph.UpsertNode(ctx, tenantID, docRef, map[string]any{
		"title":         meta.DocumentTitle,
		"document_type": deref(meta.DocumentType),
	}); err != nil {
		return fmt.Errorf("document node: %w", err)
	}

	for _, entity := range logic.Entities {
		if entity.Name == "" {
			continue
		}
		node := driven.NodeRef{Label: driven.LabelEntity, KeyField: "name", Key: entity.Name}
		if err := p.graph.UpsertNode(ctx, tenantID, node, map[string]any{
			"type":        deref(entity.Type),
			"description": deref(entity.Description),
		}); err != nil {
			return fmt.Errorf("entity %q: %w", entity.Name, err)
		}
		if err := p.graph.UpsertEdge(ctx, tenantID, docRef, node, driven.Edge{Type: driven.EdgeMentions}); err != nil {
			return fmt.Errorf("mention %q: %w", entity.Name, err)
		}
	}

	for _, component := range logic.AffectedComponents {
		if component == "" {
			continue
		}
		node := driven.NodeRef{Label: driven.LabelComponent, KeyField: "component_id", Key: component}
		if err := p.graph.UpsertEdge(ctx, tenantID, docRef, node, driven.Edge{Type: driven.EdgeImpacts}); err != nil {
			return fmt.Errorf("component %q: %w", component, err)
		}
	}

	for _, component := range components {
		if component.GlobalID == "" {
			continue
		}
		psets, err := json.Marshal(component.PropertySets)
		if err != nil {
			return fmt.Errorf("ifc component %s psets: %w", component.GlobalID, err)
		}
		node := driven.NodeRef{Label: driven.LabelIfcComponent, KeyField: "global_id", Key: component.GlobalID}
		if err := p.graph.UpsertNode(ctx, tenantID, node, map[string]any{
			"name":  component.Name,
			"type":  component.Type,
			"psets": string(psets),
		}); err != nil {
			return fmt.Errorf("ifc component %s: %w", component.GlobalID, err)
		}
		if err := p.graph.UpsertEdge(ctx, tenantID, docRef, node, driven.Edge{Type: driven.EdgeHasIfcComponent}); err != nil {
			return fmt.Errorf("ifc link %s: %w", component.GlobalID, err)
		}
	}

	for _, rel := range logic.CausalRelations {
		if rel.Source == "" || rel.Target == "" {
			continue
		}
		from := driven.NodeRef{Label: driven.LabelEntity, KeyField: "name", Key: rel.Source}
		to := driven.NodeRef{Label: driven.LabelEntity, KeyField: "name", Key: rel.Target}
		edge := driven.Edge{
			Type:  driven.EdgeRelation,
			Match: map[string]any{"type": string(rel.RelationType)},
			Props: map[string]any{"evidence": deref(rel.Evidence)},
		}
		if err := p.graph.UpsertEdge(ctx, tenantID, from, to, edge); err != nil {
			return fmt.Errorf("relation %s %s %s: %w", rel.Source, rel.RelationType, rel.Target, err)
		}
	}
	return nil
}

func (p *Persister) graphCustom(ctx context.Context, tenantID string, doc *domain.Document) error {
	node := driven.NodeRef{Label: driven.LabelDocument, KeyField: "document_id", Key: doc.DocumentID}
	return p.graph.UpsertNode(ctx, tenantID, node, map[string]any{
		"title":    doc.DocumentTitle,
		"summary":  doc.Summary,
		"raw_json": string(doc.RawJSON),
	})
}

// record is an extraction with its resolved relational row.
type record struct {
	Document   *domain.Document
	Extraction domain.Extraction
	view       indexView
}

func resolveRecord(pc pipeline.Context) (*record, error) {
	switch ext := pc.Extraction.(type) {
	case domain.FixedExtraction:
		return resolveFixed(pc, ext)
	case domain.CustomExtraction:
		return resolveCustom(pc, ext)
	default:
		return nil, fmt.Errorf("%w: unknown extraction %T", domain.ErrInvalidInput, ext)
	}
}

func resolveFixed(pc pipeline.Context, ext domain.FixedExtraction) (*record, error) {
	logic := ext.Logic
	meta := &logic.DocumentMetadata
	if IsPlaceholder(meta.DocumentID) {
		meta.DocumentID = uuid.NewString()
	}
	if IsPlaceholder(meta.DocumentTitle) {
		meta.DocumentTitle = FallbackTitle(pc)
	}

	raw, err := json.Marshal(logic)
	if err != nil {
		return nil, fmt.Errorf("%w: encode extraction: %w", domain.ErrDocumentStore, err)
	}

	doc := &domain.Document{
		DocumentID:    meta.DocumentID,
		DocumentTitle: meta.DocumentTitle,
		DocumentType:  deref(meta.DocumentType),
		Summary:       logic.Summary,
		RiskLevel:     logic.RiskLevel,
		Source:        deref(meta.Source),
		SourcePath:    pc.FilePath,
		SourceType:    pc.SourceType,
		RawJSON:       raw,
	}

	entities := make([]string, 0, len(logic.Entities))
	for _, e := range logic.Entities {
		entities = append(entities, entityLine(e.Name, deref(e.Type)))
	}

	return &record{
		Document:   doc,
		Extraction: domain.FixedExtraction{Logic: logic},
		view: indexView{
			DocumentID:         doc.DocumentID,
			Title:              doc.DocumentTitle,
			Type:               doc.DocumentType,
			SourceType:         pc.SourceType,
			Summary:            logic.Summary,
			DecisionBackground: logic.DecisionBackground,
			KeyClauses:         logic.KeyClauses,
			Risks:              logic.Risks,
			AffectedComponents: logic.AffectedComponents,
			Entities:           entities,
		},
	}, nil
}

func resolveCustom(pc pipeline.Context, ext domain.CustomExtraction) (*record, error) {
	payload := maps.Clone(ext.Payload)
	if payload == nil {
		payload = map[string]any{}
	}

	id := firstValue(payload, "document_id", "id")
	if IsPlaceholder(id) {
		id = uuid.NewString()
	}
	title := firstValue(payload, "document_title", "title")
	if IsPlaceholder(title) {
		title = FallbackTitle(pc)
	}
	docType := firstValue(payload, "document_type")
	if docType == "" {
		docType = pc.SourceType
	}
	if docType == "" {
		docType = SourceTypeCustom
	}
	payload["document_id"] = id
	payload["document_title"] = title
	payload["document_type"] = docType

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode extraction: %w", domain.ErrDocumentStore, err)
	}

	summary := firstValue(payload, "summary")
	doc := &domain.Document{
		DocumentID:    id,
		DocumentTitle: title,
		DocumentType:  docType,
		Summary:       summary,
		SourcePath:    pc.FilePath,
		SourceType:    pc.SourceType,
		RawJSON:       raw,
	}
	if level := domain.RiskLevel(firstValue(payload, "risk_level")); level.IsValid() {
		doc.RiskLevel = &level
	}
	if pc.HasFile() {
		doc.Source = sourceName(pc)
	}

	var entities []string
	if list, ok := payload["entities"].([]any); ok {
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				entities = append(entities, entityLine(firstValue(m, "name"), firstValue(m, "type")))
			}
		}
	}

	ext.Payload = payload
	return &record{
		Document:   doc,
		Extraction: ext,
		view: indexView{
			DocumentID:         id,
			Title:              title,
			Type:               docType,
			SourceType:         pc.SourceType,
			Summary:            summary,
			DecisionBackground: stringList(payload["decision_background"]),
			KeyClauses:         stringList(payload["key_clauses"]),
			Risks:              stringList(payload["risks"]),
			AffectedComponents: stringList(payload["affected_components"]),
			Entities:           entities,
		},
	}, nil
}

// IsPlaceholder reports whether s is empty or a stand-in such as "N/A".
func IsPlaceholder(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "n/a", "-":
		return true
	}
	return false
}

// FallbackTitle derives a title from the request when the extraction has
// none: the upload name or stored path without extension, else the first
// line of inline text, else domain.UntitledDocument.
func FallbackTitle(pc pipeline.Context) string {
	const maxTextTitle = 40

	if pc.FileName != "" {
		return trimExt(filepath.Base(pc.FileName))
	}
	if pc.FilePath != "" {
		return trimExt(filepath.Base(pc.FilePath))
	}
	if text := strings.TrimSpace(pc.Text); text != "" {
		line, _, _ := strings.Cut(text, "\n")
		runes := []rune(strings.TrimSpace(line))
		if len(runes) > maxTextTitle {
			runes = runes[:maxTextTitle]
		}
		return strings.TrimSpace(string(runes))
	}
	return domain.UntitledDocument
}

func trimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// firstValue returns the first of keys holding a non-empty scalar, as text.
func firstValue(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := scalarString(m[key]); s != "" {
			return s
		}
	}
	return ""
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	}
	return ""
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		switch t := item.(type) {
		case nil:
		case string:
			out = append(out, t)
		default:
			if s := scalarString(t); s != "" {
				out = append(out, s)
			} else if data, err := json.Marshal(t); err == nil {
				out = append(out, string(data))
			}
		}
	}
	return out
}

func entityLine(name, kind string) string {
	if kind == "" {
		return name
	}
	return name + " (" + kind + ")"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// indexView is the flattened form of an extraction written to the vector store.
type indexView struct {
	DocumentID string
	Title      string
	Type       string
	SourceType string
	Summary    string

	DecisionBackground []string
	KeyClauses         []string
	Risks              []string
	AffectedComponents []string
	Entities           []string
}

// Text renders the embedded representation. Empty lines are omitted.
func (v indexView) Text() string {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, label+value)
		}
	}
	section := func(heading string, items []string) {
		var body []string
		for _, item := range items {
			if item != "" {
				body = append(body, "- "+item)
			}
		}
		if len(body) > 0 {
			lines = append(lines, heading)
			lines = append(lines, body...)
		}
	}

	add("Title: ", v.Title)
	add("Type: ", v.Type)
	add("Summary: ", v.Summary)
	section("Decision Background:", v.DecisionBackground)
	section("Key Clauses:", v.KeyClauses)
	section("Risks:", v.Risks)
	section("Affected Components:", v.AffectedComponents)
	section("Entities:", v.Entities)
	return strings.Join(lines, "\n")
}

// Metadata returns the filterable chunk metadata without empty values.
func (v indexView) Metadata() map[string]string {
	meta := map[string]string{
		"document_id":    v.DocumentID,
		"document_title": v.Title,
		"document_type":  v.Type,
		"source_type":    v.SourceType,
	}
	maps.DeleteFunc(meta, func(_, value string) bool { return value == "" })
	return meta
}
