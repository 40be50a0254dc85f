// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - LLMService: Language model calls for extraction and schema authoring
//   - LLMProvider: Resolves a provider/model selection to an LLMService
//   - FormatReader: Turns a stored input into raw text and side-entities
//   - FormatReaderRegistry: Selects a reader by source type
//   - BlobStore: Durable storage for uploaded inputs
//   - DocumentStore: Authoritative document persistence (SQLite, Postgres)
//   - AgentStore: Agent catalog persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - persistence reports the store as not written:
//
//   - VectorStore: Semantic index (Qdrant). Requires EmbeddingService.
//   - EmbeddingService: Generates vector embeddings for VectorStore.
//   - GraphStore: Entity/relation index (Neo4j).
//
// Every method that touches a store takes the raw tenant identifier.
// Adapters derive their namespace with domain.Namespace and its helpers.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or reader package
package driven
