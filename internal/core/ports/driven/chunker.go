package driven

import "github.com/custodia-labs/docmind/internal/core/domain"

// Chunker splits document text into bounded, possibly overlapping spans.
type Chunker interface {
	// Chunk returns the spans of text in document order.
	// Empty or whitespace-only text yields no spans.
	Chunk(text string) []domain.TextSpan
}
