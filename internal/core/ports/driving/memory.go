package driving

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// MemoryService is the semantic memory store.
type MemoryService interface {
	// Ingest chunks, embeds and stores a document.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestReport, error)

	// Query returns the topK chunks most similar to text, best first.
	Query(ctx context.Context, text string, topK int) ([]domain.ScoredChunk, error)

	// Stats returns the chunk count and the most recent samples.
	Stats(ctx context.Context) (*domain.MemoryStats, error)

	// Clear removes every chunk atomically.
	Clear(ctx context.Context) error
}
