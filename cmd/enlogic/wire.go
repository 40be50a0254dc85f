package main

import (
	"context"
	"fmt"

	"github.com/custodia-labs/enlogic/internal/adapters/driven/ai"
	"github.com/custodia-labs/enlogic/internal/adapters/driven/blob/filesystem"
	"github.com/custodia-labs/enlogic/internal/adapters/driven/graph/neo4j"
	"github.com/custodia-labs/enlogic/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/enlogic/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/enlogic/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/enlogic/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/enlogic/internal/adapters/driving/cli"
	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
	"github.com/custodia-labs/enlogic/internal/core/services"
	"github.com/custodia-labs/enlogic/internal/logger"
	"github.com/custodia-labs/enlogic/internal/readers"
)

// app holds the wired services and the resources to release on exit.
type app struct {
	services cli.Services
	closers  []func() error
}

func (a *app) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("close: %v", err)
		}
	}
}

// buildApp connects the configured stores and wires every service.
// The document store is required; the vector index, graph and embeddings
// degrade to disabled with a warning when unreachable.
func buildApp(ctx context.Context, settings domain.Settings, config driven.ConfigStore, prompts driven.PromptStore) (*app, error) {
	a := &app{}

	docs, agents, err := openRelational(ctx, a, settings)
	if err != nil {
		a.Close()
		return nil, err
	}

	embedder := openEmbedder(ctx, a, settings.Embedding)
	vectors, err := openVectorStore(ctx, a, settings.VectorStore, embedder)
	if err != nil {
		a.Close()
		return nil, err
	}
	graph, err := openGraphStore(ctx, a, settings.GraphStore)
	if err != nil {
		a.Close()
		return nil, err
	}

	blobs, err := filesystem.NewStore(settings.DataDir)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open upload store: %w", err)
	}

	llms := ai.NewProvider(settings.LLM)

	opts := []services.PersisterOption{services.WithBlobStore(blobs)}
	if vectors != nil {
		opts = append(opts, services.WithVectorStore(vectors, embedder))
	}
	if graph != nil {
		opts = append(opts, services.WithGraphStore(graph))
	}
	persister := services.NewPersister(docs, opts...)

	extractor := services.NewExtractor(llms, agents)
	agentService := services.NewAgentService(agents, llms)
	knowledge := services.NewKnowledgeService(llms, docs, vectors, embedder, graph)
	if prompts != nil {
		extractor.SetPromptStore(prompts)
		agentService.SetPromptStore(prompts)
		knowledge.SetPromptStore(prompts)
	}

	pipeline := services.NewIngestionPipeline(
		services.NewDispatcher(readers.NewDefaultRegistry()),
		extractor,
		persister,
	)

	a.services = cli.Services{
		Ingestion: services.NewIngestionService(pipeline, blobs, settings.Workers),
		Agent:     agentService,
		Document:  services.NewDocumentService(docs, persister),
		Knowledge: knowledge,
		Config:    services.NewConfigService(config),
	}
	return a, nil
}

func openRelational(ctx context.Context, a *app, settings domain.Settings) (driven.DocumentStore, driven.AgentStore, error) {
	switch settings.DocumentStore.Driver {
	case domain.DriverSQLite, "":
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.onClose(store.Close)
		logger.Debug("document store: sqlite at %s", store.Path())
		return store.DocumentStore(), store.AgentStore(), nil

	case domain.DriverPostgres:
		store, err := postgres.NewStore(ctx, settings.DocumentStore.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		a.onClose(store.Close)
		logger.Debug("document store: postgres")
		return store.DocumentStore(), store.AgentStore(), nil

	case domain.DriverMemory:
		logger.Warn("document store is in memory; nothing survives exit")
		return memory.NewDocumentStore(), memory.NewAgentStore(), nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown document store driver %q", domain.ErrInvalidInput, settings.DocumentStore.Driver)
	}
}

// openEmbedder returns nil when embeddings are disabled or unreachable.
func openEmbedder(ctx context.Context, a *app, settings domain.EmbeddingSettings) driven.EmbeddingService {
	embedder, err := ai.CreateAndValidateEmbeddingService(ctx, &settings)
	if err != nil {
		logger.Warn("embeddings disabled: %v", err)
		return nil
	}
	if embedder == nil {
		return nil
	}
	a.onClose(embedder.Close)
	return embedder
}

// openVectorStore returns nil when the index is disabled, unreachable or
// has no embedder to feed it.
func openVectorStore(
	ctx context.Context,
	a *app,
	settings domain.VectorStoreSettings,
	embedder driven.EmbeddingService,
) (driven.VectorStore, error) {
	switch settings.Driver {
	case domain.DriverNone, "":
		return nil, nil
	case domain.DriverMemory, domain.DriverQdrant:
	default:
		return nil, fmt.Errorf("%w: unknown vector store driver %q", domain.ErrInvalidInput, settings.Driver)
	}

	if embedder == nil {
		logger.Warn("vector store disabled: no embedding service")
		return nil, nil
	}
	if settings.Driver == domain.DriverMemory {
		return memory.NewVectorStore(), nil
	}

	store, err := qdrant.NewStore(qdrant.Config{
		Host:   settings.Host,
		Port:   settings.Port,
		APIKey: settings.APIKey,
		UseTLS: settings.UseTLS,
	})
	if err != nil {
		logger.Warn("vector store disabled: %v", err)
		return nil, nil
	}
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		logger.Warn("vector store disabled: %v", err)
		return nil, nil
	}
	a.onClose(store.Close)
	return store, nil
}

// openGraphStore returns nil when the graph is disabled or unreachable.
func openGraphStore(ctx context.Context, a *app, settings domain.GraphStoreSettings) (driven.GraphStore, error) {
	switch settings.Driver {
	case domain.DriverNone, "":
		return nil, nil
	case domain.DriverMemory:
		return memory.NewGraphStore(), nil
	case domain.DriverNeo4j:
	default:
		return nil, fmt.Errorf("%w: unknown graph store driver %q", domain.ErrInvalidInput, settings.Driver)
	}

	store, err := neo4j.NewStore(ctx, neo4j.Config{
		URI:      settings.URI,
		User:     settings.User,
		Password: settings.Password,
		Database: settings.Database,
	})
	if err != nil {
		logger.Warn("graph store disabled: %v", err)
		return nil, nil
	}
	a.onClose(func() error {
		return store.Close(context.Background())
	})
	return store, nil
}
