// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The ingestion services double as pipeline steps: Dispatcher (parse),
// Extractor (extract) and Persister (persist) each implement
// pipeline.Step and are chained by IngestionService.
//
// Services are pure Go with no CGO.
package services
