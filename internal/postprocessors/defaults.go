// Package postprocessors builds the text processors used before embedding.
package postprocessors

import (
	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/postprocessors/chunker"
)

// NewChunker creates the document chunker from memory settings.
// Non-positive sizes fall back to the chunker defaults.
func NewChunker(cfg domain.MemorySettings) driven.Chunker {
	var opts []chunker.Option

	if cfg.ChunkSize > 0 {
		opts = append(opts, chunker.WithChunkSize(cfg.ChunkSize))
	}
	if cfg.ChunkOverlap >= 0 {
		opts = append(opts, chunker.WithOverlap(cfg.ChunkOverlap))
	}

	return chunker.New(opts...)
}
