package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmind/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/docmind/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/postprocessors/chunker"
)

func newKeywordMemory(t *testing.T, emb *keywordEmbedder, repo *memory.MemoryStore) *MemoryService {
	t.Helper()
	var svc *MemoryService
	var err error
	if repo == nil {
		svc, err = NewMemoryService(context.Background(), emb, sentenceChunker{}, nil, MemoryConfig{})
	} else {
		svc, err = NewMemoryService(context.Background(), emb, sentenceChunker{}, repo, MemoryConfig{})
	}
	require.NoError(t, err)
	return svc
}

func TestMemoryService_CatsScenario(t *testing.T) {
	ctx := context.Background()
	svc, err := NewMemoryService(ctx,
		hashing.NewEmbeddingService(hashing.Config{}),
		chunker.New(),
		memory.NewMemoryStore(),
		MemoryConfig{})
	require.NoError(t, err)

	_, err = svc.Ingest(ctx, domain.IngestRequest{Text: "Dogs bark loudly at strangers."})
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, domain.IngestRequest{Text: catsDoc})
	require.NoError(t, err)

	hits, err := svc.Query(ctx, "What sound do cats make?", 5)

	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Contains(t, hits[0].Chunk.Text, "purr")
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[0].Score, hits[i].Score)
	}
}

func TestMemoryService_IngestReport(t *testing.T) {
	svc := newKeywordMemory(t, newKeywordEmbedder("alpha", "beta"), nil)

	report, err := svc.Ingest(context.Background(), domain.IngestRequest{
		Text:      "Alpha one. Beta two.",
		Source:    "notes.txt",
		Summary:   "alpha and beta",
		Facts:     []string{"fact"},
		Questions: []domain.Question{{Type: domain.QuestionFactual, Text: "q?"}},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, report.DocumentID)
	require.Len(t, report.ChunkIDs, 3, "two sentences plus the summary")
	assert.Equal(t, report.DocumentID+"_summary", report.ChunkIDs[2])
	assert.Empty(t, report.Failures)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalChunks)
	assert.Equal(t, domain.DefaultCollection, stats.Collection)
	assert.Equal(t, 2, stats.Dimensions)

	hits, err := svc.Query(context.Background(), "alpha beta", 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	for _, h := range hits {
		assert.Equal(t, report.DocumentID, h.Chunk.DocumentID)
		assert.Equal(t, "notes.txt", h.Chunk.Metadata.Source)
		assert.Equal(t, "alpha and beta", h.Chunk.Metadata.Summary)
		assert.Equal(t, []string{"fact"}, h.Chunk.Metadata.Facts)
		assert.Equal(t, len("Alpha one. Beta two."), h.Chunk.Metadata.DocLength)
	}
	assert.Equal(t, domain.ChunkKindSummary, hits[0].Chunk.Kind, "summary holds both keywords")
}

func TestMemoryService_Ingest_EmptyText(t *testing.T) {
	emb := newKeywordEmbedder("alpha")
	svc := newKeywordMemory(t, emb, nil)

	_, err := svc.Ingest(context.Background(), domain.IngestRequest{Text: "  \n"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, emb.calls.Load())
}

func TestMemoryService_Query_EmptyStoreSkipsEmbedding(t *testing.T) {
	emb := newKeywordEmbedder("alpha")
	svc := newKeywordMemory(t, emb, nil)

	hits, err := svc.Query(context.Background(), "alpha", 5)

	require.NoError(t, err)
	require.NotNil(t, hits)
	assert.Empty(t, hits)
	assert.Zero(t, emb.calls.Load())
}

func TestMemoryService_Query_EmptyText(t *testing.T) {
	svc := newKeywordMemory(t, newKeywordEmbedder("alpha"), nil)

	_, err := svc.Query(context.Background(), " ", 5)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMemoryService_Query_RanksAndLimits(t *testing.T) {
	ctx := context.Background()
	svc := newKeywordMemory(t, newKeywordEmbedder("alpha", "beta", "gamma"), nil)

	_, err := svc.Ingest(ctx, domain.IngestRequest{Text: "alpha alpha alpha. beta. gamma gamma. alpha beta."})
	require.NoError(t, err)

	hits, err := svc.Query(ctx, "gamma", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "gamma gamma.", hits[0].Chunk.Text)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.InDelta(t, 0.0, hits[1].Score, 1e-6)

	all, err := svc.Query(ctx, "alpha", 100)
	require.NoError(t, err)
	assert.Len(t, all, 4, "topK larger than the store returns everything")
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].Score, all[i].Score)
	}
	for _, h := range all {
		assert.GreaterOrEqual(t, h.Score, 0.0)
		assert.LessOrEqual(t, h.Score, 1.0)
	}
}

func TestMemoryService_Query_DefaultTopK(t *testing.T) {
	ctx := context.Background()
	svc := newKeywordMemory(t, newKeywordEmbedder("alpha"), nil)
	_, err := svc.Ingest(ctx, domain.IngestRequest{Text: strings.Repeat("alpha. ", 8)})
	require.NoError(t, err)

	hits, err := svc.Query(ctx, "alpha", 0)

	require.NoError(t, err)
	assert.Len(t, hits, DefaultTopK)
}

func TestMemoryService_Query_TiesPreferMostRecent(t *testing.T) {
	ctx := context.Background()
	svc := newKeywordMemory(t, newKeywordEmbedder("alpha"), nil)

	first, err := svc.Ingest(ctx, domain.IngestRequest{Text: "alpha."})
	require.NoError(t, err)
	second, err := svc.Ingest(ctx, domain.IngestRequest{Text: "alpha."})
	require.NoError(t, err)

	hits, err := svc.Query(ctx, "alpha", 2)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, hits[0].Score, hits[1].Score)
	assert.Equal(t, second.DocumentID, hits[0].Chunk.DocumentID)
	assert.Equal(t, first.DocumentID, hits[1].Chunk.DocumentID)
}

func TestMemoryService_Query_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc := newKeywordMemory(t, newKeywordEmbedder("alpha", "beta"), nil)
	_, err := svc.Ingest(ctx, domain.IngestRequest{Text: "alpha. beta. alpha beta. beta beta."})
	require.NoError(t, err)

	first, err := svc.Query(ctx, "beta", 3)
	require.NoError(t, err)
	second, err := svc.Query(ctx, "beta", 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMemoryService_Ingest_PartialFailure(t *testing.T) {
	ctx := context.Background()
	emb := newKeywordEmbedder("alpha")
	emb.failOn = "broken"
	svc := newKeywordMemory(t, emb, nil)

	report, err := svc.Ingest(ctx, domain.IngestRequest{Text: "alpha one. broken two. alpha three."})

	require.NoError(t, err)
	assert.Len(t, report.ChunkIDs, 2)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, 1, report.Failures[0].Position)
	assert.Equal(t, "broken two.", report.Failures[0].Preview)
	assert.Contains(t, report.Failures[0].Reason, "embedding backend down")

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalChunks)
}

func TestMemoryService_Ingest_AllSpansFail(t *testing.T) {
	ctx := context.Background()
	emb := newKeywordEmbedder("alpha")
	emb.failOn = "broken"
	svc := newKeywordMemory(t, emb, nil)

	report, err := svc.Ingest(ctx, domain.IngestRequest{Text: "broken one. broken two."})

	var ingestErr *domain.IngestionError
	require.ErrorAs(t, err, &ingestErr)
	assert.ErrorIs(t, err, domain.ErrIngestion)
	assert.Equal(t, domain.KindIngestionError, domain.KindOf(err))
	assert.Equal(t, 2, ingestErr.Total)
	assert.Len(t, ingestErr.Failures, 2)
	require.NotNil(t, report)
	assert.Empty(t, report.ChunkIDs)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalChunks)
}

func TestMemoryService_Ingest_StoreFailure(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryStore()
	svc := newKeywordMemory(t, newKeywordEmbedder("alpha"), repo)
	require.NoError(t, repo.Close())

	_, err := svc.Ingest(ctx, domain.IngestRequest{Text: "alpha."})

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, domain.KindStoreUnavailable, domain.KindOf(err))
	stats, statsErr := svc.Stats(ctx)
	require.NoError(t, statsErr)
	assert.Zero(t, stats.TotalChunks, "nothing becomes visible when the commit fails")
}

func TestMemoryService_Clear(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryStore()
	svc := newKeywordMemory(t, newKeywordEmbedder("alpha"), repo)
	_, err := svc.Ingest(ctx, domain.IngestRequest{Text: "alpha. alpha."})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalChunks)
	assert.Empty(t, stats.Samples)

	hits, err := svc.Query(ctx, "alpha", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	persisted, err := repo.LoadAll(ctx, domain.DefaultCollection)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestMemoryService_Clear_StoreFailure(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryStore()
	svc := newKeywordMemory(t, newKeywordEmbedder("alpha"), repo)
	_, err := svc.Ingest(ctx, domain.IngestRequest{Text: "alpha."})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	err = svc.Clear(ctx)

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	stats, _ := svc.Stats(ctx)
	assert.Equal(t, 1, stats.TotalChunks, "a failed clear leaves memory intact")
}

func TestMemoryService_Stats_SamplesNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newKeywordMemory(t, newKeywordEmbedder("alpha"), nil)
	for i := 0; i < 7; i++ {
		_, err := svc.Ingest(ctx, domain.IngestRequest{Text: fmt.Sprintf("alpha %d.", i)})
		require.NoError(t, err)
	}

	stats, err := svc.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalChunks)
	require.Len(t, stats.Samples, DefaultSampleSize)
	assert.Equal(t, "alpha 6.", stats.Samples[0].Preview)
	assert.Equal(t, "alpha 2.", stats.Samples[4].Preview)
}

func TestMemoryService_ReloadsPersistedChunks(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryStore()
	emb := newKeywordEmbedder("alpha", "beta")
	first := newKeywordMemory(t, emb, repo)
	_, err := first.Ingest(ctx, domain.IngestRequest{Text: "alpha. beta."})
	require.NoError(t, err)

	second := newKeywordMemory(t, emb, repo)

	stats, err := second.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalChunks)
	hits, err := second.Query(ctx, "beta", 1)
	require.NoError(t, err)
	assert.Equal(t, "beta.", hits[0].Chunk.Text)
}

func TestMemoryService_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryStore()
	first := newKeywordMemory(t, newKeywordEmbedder("alpha", "beta"), repo)
	_, err := first.Ingest(ctx, domain.IngestRequest{Text: "alpha."})
	require.NoError(t, err)

	_, err = NewMemoryService(ctx, newKeywordEmbedder("alpha", "beta", "gamma"), sentenceChunker{}, repo, MemoryConfig{})

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	// After a clear the collection adopts the new size.
	require.NoError(t, first.Clear(ctx))
	_, err = NewMemoryService(ctx, newKeywordEmbedder("alpha", "beta", "gamma"), sentenceChunker{}, repo, MemoryConfig{})
	assert.NoError(t, err)
}

func TestMemoryService_ConcurrentIngestAndQuery(t *testing.T) {
	ctx := context.Background()
	svc := newKeywordMemory(t, newKeywordEmbedder("alpha", "beta"), memory.NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Ingest(ctx, domain.IngestRequest{Text: "alpha one. beta two. alpha beta three."})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			hits, err := svc.Query(ctx, "alpha", 5)
			assert.NoError(t, err)
			// A document's chunks are published together: a reader sees
			// a multiple of three chunks in total.
			stats, _ := svc.Stats(ctx)
			assert.Zero(t, stats.TotalChunks%3)
			assert.LessOrEqual(t, len(hits), 5)
		}()
	}
	wg.Wait()

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, stats.TotalChunks)
}

func TestMemoryService_ConcurrentClear(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryStore()
	svc := newKeywordMemory(t, newKeywordEmbedder("alpha", "beta"), repo)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, err := svc.Ingest(ctx, domain.IngestRequest{Text: "alpha one. beta two. alpha beta three."})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.Clear(ctx))
		}()
		go func() {
			defer wg.Done()
			stats, err := svc.Stats(ctx)
			assert.NoError(t, err)
			assert.Zero(t, stats.TotalChunks%3, "a clear never exposes part of a document")
			hits, err := svc.Query(ctx, "alpha", 5)
			assert.NoError(t, err)
			assert.LessOrEqual(t, len(hits), 5)
		}()
	}
	wg.Wait()

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalChunks%3)
	persisted, err := repo.LoadAll(ctx, domain.DefaultCollection)
	require.NoError(t, err)
	assert.Len(t, persisted, stats.TotalChunks, "memory and the store agree after racing clears")
}

func TestRelevance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2}, []float32{1, 2}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposed clamps to zero", []float32{1, 0}, []float32{-1, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, relevance(tt.a, tt.b), 1e-9)
		})
	}
}
