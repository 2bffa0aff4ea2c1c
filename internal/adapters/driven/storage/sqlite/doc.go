// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - DocumentStore: Document persistence and status patching
//   - ChunkStore: Chunk persistence and vector similarity search
//   - JobStore: Durable queue persistence
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// Chunk embeddings are stored as little-endian float32 blobs. Similarity
// search loads the candidate set (chunks of published documents) and ranks
// by cosine similarity in Go; SQLite has no native vector index.
//
// # Data Location
//
// By default, the database is stored at ~/.asistentelegal/data/legal.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
