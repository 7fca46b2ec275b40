package driven

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// MemoryRepository persists memory chunks so they survive restarts.
// The in-process arena remains the query path; the repository is written
// on every commit and read once at startup.
type MemoryRepository interface {
	// EnsureCollection creates the collection if missing and returns the
	// dimensions it was created with. A collection whose chunks were all
	// cleared adopts the requested dimensions.
	EnsureCollection(ctx context.Context, name string, dimensions int) (int, error)

	// Append stores chunks atomically: all or none become durable.
	Append(ctx context.Context, collection string, chunks []domain.MemoryChunk) error

	// LoadAll returns every chunk of the collection in ingestion order.
	LoadAll(ctx context.Context, collection string) ([]domain.MemoryChunk, error)

	// Clear removes every chunk of the collection.
	Clear(ctx context.Context, collection string) error

	// Close releases resources.
	Close() error
}
