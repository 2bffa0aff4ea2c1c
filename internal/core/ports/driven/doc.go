// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - DocumentStore: Document persistence with partial-field patching
//   - ChunkStore: Chunk persistence and vector similarity search
//   - EmbeddingService: Generates vector embeddings
//   - JobQueue: Durable at-least-once job delivery
//   - SourceFetcher: Bounded download of source content
//   - TextExtractor: Text extraction from fetched bytes
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
