// Package sqlite provides the embedded relational store for documents and agents.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. One database file holds every tenant; each tenant gets its own pair
// of tables named from domain.SchemaName:
//
//   - tenant_<ns>_documents: DocumentStore rows
//   - tenant_<ns>_agents: AgentStore records
//
// Tenant tables are created on first use and recorded in the tenants table.
//
// # Schema
//
// Shared tables are managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The database is stored at <data_dir>/enlogic.db.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
