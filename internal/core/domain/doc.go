// Package domain defines the core business entities for the legal search pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A legal text unit moving through the processing pipeline
//   - Chunk: A retrievable passage of a document's text
//   - Job: A unit of queued pipeline work (extraction or embedding)
//   - SearchResult: A ranked query hit
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
