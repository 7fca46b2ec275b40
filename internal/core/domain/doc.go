// Package domain defines the core business entities for docmind.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: Decoded text submitted for processing or ingestion
//   - PipelineResult: Summary, facts and questions derived from a document
//   - MemoryChunk: A retrievable span of a document with its embedding
//   - QueryResult: A synthesised answer with its ranked sources
//   - ProviderDescriptor: An inference backend known to the registry
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
