package domain

import "time"

// DefaultCollection is the name of the memory collection.
const DefaultCollection = "document_memory"

// ChunkKind distinguishes stored document spans from stored summaries.
type ChunkKind string

// Chunk kinds.
const (
	ChunkKindContent ChunkKind = "content"
	ChunkKindSummary ChunkKind = "summary"
)

// TextSpan is a bounded region of a document's text produced by chunking.
type TextSpan struct {
	// Position is the ordinal of the span within the document.
	Position int

	// Text is the span content.
	Text string

	// Start is the byte offset of the span in the document text.
	Start int

	// End is the byte offset one past the span.
	End int
}

// ChunkMetadata is stored alongside each chunk.
type ChunkMetadata struct {
	// Preview is the truncated chunk text shown in stats.
	Preview string `json:"preview"`

	// Timestamp is when the owning document was ingested.
	Timestamp time.Time `json:"timestamp"`

	// Summary is the pipeline summary of the owning document, if any.
	Summary string `json:"summary,omitempty"`

	// Source is the originating filename, if any.
	Source string `json:"source,omitempty"`

	// Facts are the pipeline facts of the owning document, if any.
	Facts []string `json:"facts,omitempty"`

	// Questions are the pipeline questions of the owning document, if any.
	Questions []Question `json:"questions,omitempty"`

	// DocLength is the length of the owning document in bytes.
	DocLength int `json:"doc_length"`
}

// MemoryChunk is one retrievable unit of memory.
// Chunks are immutable and only removed by a full clear.
type MemoryChunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Kind is content or summary.
	Kind ChunkKind

	// Position is the ordinal position within the document.
	Position int

	// Text is the chunk content.
	Text string

	// Embedding is the chunk vector. Its length equals the collection dimensions.
	Embedding []float32

	// Metadata holds preview, timestamp and pipeline output.
	Metadata ChunkMetadata
}

// ScoredChunk is a chunk ranked by similarity to a query.
type ScoredChunk struct {
	// Chunk is the matched chunk.
	Chunk MemoryChunk

	// Score is the relevance score in [0,1].
	Score float64
}

// IngestRequest describes a document to store in memory.
type IngestRequest struct {
	// Text is the document content (required).
	Text string

	// Source is the optional originating filename.
	Source string

	// Summary is the optional pipeline summary.
	// When set, it is stored as an additional retrievable chunk.
	Summary string

	// Facts are optional pipeline facts kept as metadata.
	Facts []string

	// Questions are optional pipeline questions kept as metadata.
	Questions []Question
}

// IngestReport describes the outcome of an ingestion.
type IngestReport struct {
	// DocumentID is the generated document identifier.
	DocumentID string `json:"document_id"`

	// ChunkIDs lists the stored chunks in document order.
	ChunkIDs []string `json:"chunk_ids"`

	// Failures lists spans that could not be stored.
	Failures []ChunkFailure `json:"failures,omitempty"`
}

// MemorySample is a preview of a stored chunk.
type MemorySample struct {
	ChunkID   string    `json:"chunk_id"`
	Preview   string    `json:"preview"`
	Summary   string    `json:"summary,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// MemoryStats summarises memory contents. It is derived on demand.
type MemoryStats struct {
	// TotalChunks is the number of stored chunks.
	TotalChunks int `json:"total_chunks"`

	// Collection is the collection identifier.
	Collection string `json:"collection"`

	// Dimensions is the vector size of the collection.
	Dimensions int `json:"dimensions"`

	// Samples are the most recently stored chunks, newest first.
	Samples []MemorySample `json:"samples"`
}

// Source is a retrieved chunk cited by an answer.
type Source struct {
	ChunkID    string    `json:"chunk_id"`
	DocumentID string    `json:"document_id"`
	Score      float64   `json:"relevance_score"`
	Text       string    `json:"text"`
	Summary    string    `json:"summary,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// QueryResult is a synthesised answer with its ranked sources.
type QueryResult struct {
	// Answer is the synthesised answer text.
	Answer string `json:"answer"`

	// Sources are the retrieved chunks, highest score first.
	Sources []Source `json:"sources"`

	// Grounded is false when no stored context was available.
	Grounded bool `json:"grounded"`
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
