// Package chunker splits document text into overlapping spans.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits text into chunks of at most chunkSize bytes.
// Cuts prefer sentence ends, then whitespace, and never split a rune.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Chunk splits text into ordered spans. Whitespace-only text yields none.
func (p *Processor) Chunk(text string) []domain.TextSpan {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	n := len(text)
	spans := make([]domain.TextSpan, 0, n/(p.chunkSize-p.overlap)+1)
	start := 0

	for start < n {
		end := n
		if start+p.chunkSize < n {
			end = p.cutPoint(text, start, start+p.chunkSize)
		}

		if span, ok := trimmedSpan(text, start, end); ok {
			span.Position = len(spans)
			spans = append(spans, span)
		}
		if end >= n {
			break
		}

		next := p.overlapStart(text, start, end)
		if next <= start {
			next = end
		}
		start = next
	}

	return spans
}

// cutPoint picks where a chunk starting at start should end, given the
// hard limit. It searches the second half of the window for a paragraph
// break, then a sentence end, then whitespace, and otherwise cuts at the
// last rune boundary.
func (p *Processor) cutPoint(text string, start, limit int) int {
	limit = runeFloor(text, limit)
	floor := start + p.chunkSize/2

	for i := limit; i > floor+1; i-- {
		if text[i-1] == '\n' && text[i-2] == '\n' {
			return i
		}
	}
	for i := limit; i > floor; i-- {
		if isSentenceEnd(text, i) {
			return i
		}
	}
	for i := limit; i > floor; i-- {
		if text[i-1] == ' ' || text[i-1] == '\n' || text[i-1] == '\t' {
			return i
		}
	}
	if limit <= start {
		// A single rune wider than the window.
		_, size := utf8.DecodeRuneInString(text[start:])
		return start + size
	}
	return limit
}

// overlapStart returns where the next chunk begins: overlap bytes before
// end, moved forward to the next word so no chunk starts mid-word.
func (p *Processor) overlapStart(text string, start, end int) int {
	if p.overlap == 0 {
		return end
	}
	next := end - p.overlap
	if next <= start {
		return end
	}
	next = runeFloor(text, next)
	for next < end {
		r, size := utf8.DecodeRuneInString(text[next:])
		next += size
		if unicode.IsSpace(r) {
			break
		}
	}
	return next
}

// isSentenceEnd reports whether a sentence ends just before index i.
func isSentenceEnd(text string, i int) bool {
	if i <= 0 || i > len(text) {
		return false
	}
	switch text[i-1] {
	case '\n':
		return true
	case ' ':
		return i >= 2 && strings.ContainsRune(".!?", rune(text[i-2]))
	default:
		return false
	}
}

// runeFloor moves i back to the start of the rune containing it.
func runeFloor(text string, i int) int {
	if i >= len(text) {
		return len(text)
	}
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

func trimmedSpan(text string, start, end int) (domain.TextSpan, bool) {
	raw := text[start:end]
	lead := len(raw) - len(strings.TrimLeftFunc(raw, unicode.IsSpace))
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.TextSpan{}, false
	}
	return domain.TextSpan{
		Text:  trimmed,
		Start: start + lead,
		End:   start + lead + len(trimmed),
	}, true
}
