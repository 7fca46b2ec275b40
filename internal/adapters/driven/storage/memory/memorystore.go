package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// Ensure MemoryStore implements the interface.
var _ driven.MemoryRepository = (*MemoryStore)(nil)

type collection struct {
	dimensions int
	chunks     []domain.MemoryChunk
}

// MemoryStore is an in-memory implementation of driven.MemoryRepository.
// It backs the memory service when persistence is disabled, and in tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
	closed      bool
}

// NewMemoryStore creates a new in-memory chunk repository.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*collection),
	}
}

// EnsureCollection creates the collection if missing and returns its dimensions.
func (s *MemoryStore) EnsureCollection(_ context.Context, name string, dimensions int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, domain.ErrStoreUnavailable
	}

	c, ok := s.collections[name]
	if !ok {
		s.collections[name] = &collection{dimensions: dimensions}
		return dimensions, nil
	}
	if len(c.chunks) == 0 {
		c.dimensions = dimensions
	}
	return c.dimensions, nil
}

// Append stores chunks in order.
func (s *MemoryStore) Append(_ context.Context, name string, chunks []domain.MemoryChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStoreUnavailable
	}

	c, ok := s.collections[name]
	if !ok {
		c = &collection{}
		s.collections[name] = c
	}
	for _, chunk := range chunks {
		c.chunks = append(c.chunks, cloneChunk(chunk))
	}
	return nil
}

// LoadAll returns a copy of every chunk in ingestion order.
func (s *MemoryStore) LoadAll(_ context.Context, name string) ([]domain.MemoryChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrStoreUnavailable
	}

	c, ok := s.collections[name]
	if !ok {
		return nil, nil
	}
	out := make([]domain.MemoryChunk, len(c.chunks))
	for i, chunk := range c.chunks {
		out[i] = cloneChunk(chunk)
	}
	return out, nil
}

// Clear removes every chunk of the collection.
func (s *MemoryStore) Clear(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStoreUnavailable
	}
	if c, ok := s.collections[name]; ok {
		c.chunks = nil
	}
	return nil
}

// Close marks the store closed. Subsequent calls fail.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func cloneChunk(c domain.MemoryChunk) domain.MemoryChunk {
	c.Embedding = append([]float32(nil), c.Embedding...)
	c.Metadata.Facts = append([]string(nil), c.Metadata.Facts...)
	c.Metadata.Questions = append([]domain.Question(nil), c.Metadata.Questions...)
	return c
}
