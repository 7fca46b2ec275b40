package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
	"github.com/custodia-labs/docmind/internal/logger"
)

// Ensure MemoryService implements the interface.
var _ driving.MemoryService = (*MemoryService)(nil)

// Memory defaults.
const (
	DefaultTopK        = 5
	DefaultSampleSize  = 5
	DefaultWorkers     = 4
	previewLength      = 200
	summaryPreviewSize = 100
)

// MemoryConfig configures the memory store.
type MemoryConfig struct {
	// Collection is the collection identifier (default: document_memory).
	Collection string

	// TopK is the default number of query results (default: 5).
	TopK int

	// SampleSize is the number of recent chunks reported by Stats (default: 5).
	SampleSize int

	// Workers bounds concurrent embedding calls per ingestion (default: 4).
	Workers int
}

// storedChunk is an arena entry. seq orders chunks by commit.
type storedChunk struct {
	chunk domain.MemoryChunk
	seq   uint64
}

// arena is one generation of the memory collection. Entries are append-only;
// each commit publishes a new view so readers never see a partial write.
type arena struct {
	generation uint64
	view       atomic.Pointer[[]storedChunk]
}

func newArena(generation uint64, initial []storedChunk) *arena {
	a := &arena{generation: generation}
	a.view.Store(&initial)
	return a
}

func (a *arena) snapshot() []storedChunk {
	return *a.view.Load()
}

// MemoryService is the semantic memory store.
//
// Readers load the current arena and its published view without locking.
// Commits and clears serialise on commitMu, which is never held while
// embedding.
type MemoryService struct {
	embedder driven.EmbeddingService
	repo     driven.MemoryRepository
	chunker  driven.Chunker
	cfg      MemoryConfig
	dims     int

	current  atomic.Pointer[arena]
	commitMu sync.Mutex
	seq      uint64
}

// NewMemoryService creates the memory store and loads persisted chunks.
// repo may be nil for a purely in-process store.
func NewMemoryService(
	ctx context.Context,
	embedder driven.EmbeddingService,
	chunker driven.Chunker,
	repo driven.MemoryRepository,
	cfg MemoryConfig,
) (*MemoryService, error) {
	if embedder == nil {
		return nil, errors.New("memory: embedding service is required")
	}
	if chunker == nil {
		return nil, errors.New("memory: chunker is required")
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = DefaultSampleSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}

	s := &MemoryService{
		embedder: embedder,
		repo:     repo,
		chunker:  chunker,
		cfg:      cfg,
		dims:     embedder.Dimensions(),
	}

	var initial []storedChunk
	if repo != nil {
		dims, err := repo.EnsureCollection(ctx, cfg.Collection, s.dims)
		if err != nil {
			return nil, storeError("open collection", err)
		}
		if dims != s.dims {
			return nil, fmt.Errorf("%w: collection %q holds %d-dimension vectors but %s produces %d; "+
				"run 'docmind memory clear' or switch back the embedding model",
				domain.ErrDimensionMismatch, cfg.Collection, dims, embedder.ModelName(), s.dims)
		}

		chunks, err := repo.LoadAll(ctx, cfg.Collection)
		if err != nil {
			return nil, storeError("load memory", err)
		}
		initial = make([]storedChunk, 0, len(chunks))
		for _, c := range chunks {
			if len(c.Embedding) != s.dims {
				logger.Warn("Skipping chunk %s: %d dimensions, want %d", c.ID, len(c.Embedding), s.dims)
				continue
			}
			s.seq++
			initial = append(initial, storedChunk{chunk: c, seq: s.seq})
		}
		logger.Debug("Loaded %d chunks from collection %q", len(initial), cfg.Collection)
	}

	s.current.Store(newArena(1, initial))
	return s, nil
}

// Dimensions returns the fixed vector size of the collection.
func (s *MemoryService) Dimensions() int {
	return s.dims
}

// embedOutcome is the result of embedding one span.
type embedOutcome struct {
	vector []float32
	err    error
}

// Ingest chunks, embeds and stores a document.
//
// Each span embeds independently; failures are reported per span in the
// IngestReport. Only when every span fails does Ingest return an
// *domain.IngestionError. All stored chunks of the document become visible
// in a single commit.
func (s *MemoryService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestReport, error) {
	if err := domain.ValidateText("document text", req.Text); err != nil {
		return nil, err
	}

	logger.Section("Memory Ingest")
	doc := domain.Document{
		ID:         uuid.New().String(),
		Text:       req.Text,
		Source:     req.Source,
		IngestedAt: time.Now().UTC(),
	}

	spans := s.chunker.Chunk(doc.Text)
	if req.Summary != "" {
		spans = append(spans, domain.TextSpan{Position: len(spans), Text: req.Summary})
	}
	logger.Debug("Document %s: %d spans", doc.ID, len(spans))

	outcomes := s.embedSpans(ctx, spans)

	report := &domain.IngestReport{DocumentID: doc.ID, ChunkIDs: []string{}}
	chunks := make([]domain.MemoryChunk, 0, len(spans))
	for i, span := range spans {
		out := outcomes[i]
		if out.err == nil && len(out.vector) != s.dims {
			out.err = fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(out.vector), s.dims)
		}
		if out.err != nil {
			report.Failures = append(report.Failures, domain.ChunkFailure{
				Position: span.Position,
				Preview:  domain.Truncate(span.Text, 60),
				Reason:   out.err.Error(),
			})
			continue
		}
		chunks = append(chunks, s.newChunk(doc, req, span, i == len(spans)-1 && req.Summary != "", out.vector))
	}

	if len(chunks) == 0 {
		err := &domain.IngestionError{DocumentID: doc.ID, Total: len(spans), Failures: report.Failures}
		logger.Warn("Ingest failed: %v", err)
		return report, err
	}

	if err := s.commit(ctx, chunks); err != nil {
		return nil, err
	}

	for _, c := range chunks {
		report.ChunkIDs = append(report.ChunkIDs, c.ID)
	}
	if len(report.Failures) > 0 {
		logger.Warn("Ingested %d of %d spans for %s", len(chunks), len(spans), doc.ID)
	} else {
		logger.Info("Ingested %d chunks for %s", len(chunks), doc.ID)
	}
	return report, nil
}

// embedSpans embeds every span with bounded parallelism.
func (s *MemoryService) embedSpans(ctx context.Context, spans []domain.TextSpan) []embedOutcome {
	outcomes := make([]embedOutcome, len(spans))
	sem := make(chan struct{}, s.cfg.Workers)

	var wg sync.WaitGroup
	for i := range spans {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				outcomes[i].err = ctx.Err()
				return
			}
			outcomes[i].vector, outcomes[i].err = s.embedder.Embed(ctx, spans[i].Text)
		}(i)
	}
	wg.Wait()
	return outcomes
}

func (s *MemoryService) newChunk(
	doc domain.Document, req domain.IngestRequest, span domain.TextSpan, isSummary bool, vector []float32,
) domain.MemoryChunk {
	chunk := domain.MemoryChunk{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		Kind:       domain.ChunkKindContent,
		Position:   span.Position,
		Text:       span.Text,
		Embedding:  vector,
		Metadata: domain.ChunkMetadata{
			Preview:   domain.Truncate(span.Text, previewLength),
			Timestamp: doc.IngestedAt,
			Summary:   req.Summary,
			Source:    doc.Source,
			Facts:     req.Facts,
			Questions: req.Questions,
			DocLength: len(doc.Text),
		},
	}
	if isSummary {
		chunk.ID = doc.ID + "_summary"
		chunk.Kind = domain.ChunkKindSummary
	}
	return chunk
}

// commit persists chunks and publishes them in the current arena.
func (s *MemoryService) commit(ctx context.Context, chunks []domain.MemoryChunk) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if s.repo != nil {
		if err := s.repo.Append(ctx, s.cfg.Collection, chunks); err != nil {
			return storeError("append chunks", err)
		}
	}

	a := s.current.Load()
	old := a.snapshot()
	next := make([]storedChunk, len(old), len(old)+len(chunks))
	copy(next, old)
	for _, c := range chunks {
		s.seq++
		next = append(next, storedChunk{chunk: c, seq: s.seq})
	}
	a.view.Store(&next)
	return nil
}

// Query returns the topK chunks most similar to text.
// Results are ordered by score, then most recent ingestion first.
// An empty store yields an empty slice without calling the embedder.
func (s *MemoryService) Query(ctx context.Context, text string, topK int) ([]domain.ScoredChunk, error) {
	if err := domain.ValidateText("query", text); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	if len(s.current.Load().snapshot()) == 0 {
		logger.Debug("Memory empty, skipping retrieval")
		return []domain.ScoredChunk{}, nil
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", asProviderError(s.embedder.ModelName(), err))
	}
	if len(vector) != s.dims {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, want %d",
			domain.ErrDimensionMismatch, len(vector), s.dims)
	}

	// Snapshot after embedding so results reflect the latest committed state.
	entries := s.current.Load().snapshot()
	type ranked struct {
		entry *storedChunk
		score float64
	}
	scored := make([]ranked, len(entries))
	for i := range entries {
		scored[i] = ranked{entry: &entries[i], score: relevance(vector, entries[i].chunk.Embedding)}
	}

	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.score != b.score {
			return a.score > b.score
		}
		ta, tb := a.entry.chunk.Metadata.Timestamp, b.entry.chunk.Metadata.Timestamp
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		return a.entry.seq > b.entry.seq
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	results := make([]domain.ScoredChunk, topK)
	for i := 0; i < topK; i++ {
		results[i] = domain.ScoredChunk{Chunk: scored[i].entry.chunk, Score: scored[i].score}
	}
	logger.Debug("Query matched %d of %d chunks", len(results), len(entries))
	return results, nil
}

// Stats reports the chunk count and the most recent samples.
// It reads only the arena length and tail.
func (s *MemoryService) Stats(_ context.Context) (*domain.MemoryStats, error) {
	entries := s.current.Load().snapshot()

	n := s.cfg.SampleSize
	if n > len(entries) {
		n = len(entries)
	}
	samples := make([]domain.MemorySample, 0, n)
	for i := len(entries) - 1; i >= len(entries)-n; i-- {
		c := entries[i].chunk
		samples = append(samples, domain.MemorySample{
			ChunkID:   c.ID,
			Preview:   domain.Truncate(c.Text, previewLength),
			Summary:   domain.Truncate(c.Metadata.Summary, summaryPreviewSize),
			Timestamp: c.Metadata.Timestamp,
		})
	}

	return &domain.MemoryStats{
		TotalChunks: len(entries),
		Collection:  s.cfg.Collection,
		Dimensions:  s.dims,
		Samples:     samples,
	}, nil
}

// Clear removes every chunk. The repository is cleared first and the
// current arena is then replaced, so readers see either the old contents
// or an empty store.
func (s *MemoryService) Clear(ctx context.Context) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if s.repo != nil {
		if err := s.repo.Clear(ctx, s.cfg.Collection); err != nil {
			return storeError("clear memory", err)
		}
	}

	prev := s.current.Load()
	s.current.Store(newArena(prev.generation+1, nil))
	logger.Info("Memory cleared (generation %d)", prev.generation+1)
	return nil
}

// relevance maps cosine similarity onto [0,1], treating opposed vectors as irrelevant.
func relevance(a, b []float32) float64 {
	sim := cosineSimilarity(a, b)
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}

// asProviderError tags embedding failures that are not yet classified.
func asProviderError(model string, err error) error {
	var callErr *domain.ProviderCallError
	if errors.As(err, &callErr) {
		return err
	}
	cause := domain.CauseTransport
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		cause = domain.CauseTimeout
	case errors.Is(err, context.Canceled):
		cause = domain.CauseCanceled
	}
	return domain.NewProviderError(model, cause, 0, err)
}
