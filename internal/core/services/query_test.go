package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmind/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/docmind/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/postprocessors/chunker"
)

func TestQueryService_CatsScenario(t *testing.T) {
	ctx := context.Background()
	mem, err := NewMemoryService(ctx,
		hashing.NewEmbeddingService(hashing.Config{}),
		chunker.New(),
		memory.NewMemoryStore(),
		MemoryConfig{})
	require.NoError(t, err)
	_, err = mem.Ingest(ctx, domain.IngestRequest{Text: catsDoc})
	require.NoError(t, err)

	svc := &mockLLMService{responses: []string{"Cats make a purring sound."}}
	query := NewQueryService(newTestGateway(svc), mem, nil, domain.AIProviderGroq, 5)

	result, err := query.Answer(ctx, "What sound do cats make?", "")

	require.NoError(t, err)
	assert.Contains(t, result.Answer, "purr")
	assert.True(t, result.Grounded)
	require.NotEmpty(t, result.Sources)
	assert.Contains(t, result.Sources[0].Text, "purr")
	for i := 1; i < len(result.Sources); i++ {
		assert.GreaterOrEqual(t, result.Sources[0].Score, result.Sources[i].Score)
	}
	assert.Contains(t, svc.Prompt(0), "Cats purr")
	assert.Contains(t, svc.Prompt(0), "What sound do cats make?")
}

func TestQueryService_EmptyMemoryStillAnswers(t *testing.T) {
	svc := &mockLLMService{responses: []string{"I have no stored documents about that."}}
	mem := &mockMemory{}
	query := NewQueryService(newTestGateway(svc), mem, nil, domain.AIProviderGroq, 5)

	result, err := query.Answer(context.Background(), "What is the capital of France?", "")

	require.NoError(t, err)
	assert.False(t, result.Grounded)
	require.NotNil(t, result.Sources)
	assert.Empty(t, result.Sources)
	assert.Equal(t, "I have no stored documents about that.", result.Answer)
	assert.Contains(t, svc.Prompt(0), "No stored document matched")
}

func TestQueryService_SourcesMirrorHits(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mem := &mockMemory{hits: []domain.ScoredChunk{
		{Chunk: domain.MemoryChunk{
			ID: "c1", DocumentID: "d1", Kind: domain.ChunkKindContent, Text: "first",
			Metadata: domain.ChunkMetadata{Summary: "doc summary", Timestamp: ts},
		}, Score: 0.9},
		{Chunk: domain.MemoryChunk{ID: "d1_summary", DocumentID: "d1", Kind: domain.ChunkKindSummary, Text: "doc summary"}, Score: 0.5},
	}}
	svc := &mockLLMService{}
	query := NewQueryService(newTestGateway(svc), mem, nil, domain.AIProviderGroq, 5)

	result, err := query.Answer(context.Background(), "question?", domain.AIProviderGroq)

	require.NoError(t, err)
	require.Len(t, result.Sources, 2)
	assert.Equal(t, domain.Source{
		ChunkID: "c1", DocumentID: "d1", Score: 0.9, Text: "first", Summary: "doc summary", Timestamp: ts,
	}, result.Sources[0])
	assert.Equal(t, "d1_summary", result.Sources[1].ChunkID)
	assert.Contains(t, svc.Prompt(0), "[1] first\nDocument summary: doc summary")
	assert.Contains(t, svc.Prompt(0), "[2] doc summary")
}

func TestQueryService_UsesConfiguredTopK(t *testing.T) {
	hits := make([]domain.ScoredChunk, 6)
	for i := range hits {
		hits[i] = domain.ScoredChunk{Chunk: domain.MemoryChunk{ID: "c", Text: "t"}, Score: 0.1}
	}
	mem := &mockMemory{hits: hits}
	query := NewQueryService(newTestGateway(&mockLLMService{}), mem, nil, domain.AIProviderGroq, 2)

	result, err := query.Answer(context.Background(), "q", "")

	require.NoError(t, err)
	assert.Len(t, result.Sources, 2)
}

func TestQueryService_ChecksProviderBeforeRetrieval(t *testing.T) {
	svc := &mockLLMService{}
	mem := &mockMemory{}
	query := NewQueryService(newTestGateway(svc), mem, nil, domain.AIProviderGroq, 5)

	_, err := query.Answer(context.Background(), "question", domain.AIProviderAnthropic)

	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.Zero(t, mem.queries)
	assert.Zero(t, svc.Calls())
}

func TestQueryService_SetDefaultProvider(t *testing.T) {
	svc := &mockLLMService{}
	mem := &mockMemory{}
	query := NewQueryService(newTestGateway(svc), mem, nil, domain.AIProviderGroq, 5)

	query.SetDefaultProvider(domain.AIProviderAnthropic)
	_, err := query.Answer(context.Background(), "question", "")

	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.Zero(t, mem.queries)
	assert.Zero(t, svc.Calls())
}

func TestQueryService_EmptyQuestion(t *testing.T) {
	svc := &mockLLMService{}
	mem := &mockMemory{}
	query := NewQueryService(newTestGateway(svc), mem, nil, domain.AIProviderGroq, 5)

	_, err := query.Answer(context.Background(), "   ", "")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, mem.queries)
	assert.Zero(t, svc.Calls())
}

func TestQueryService_RetrievalFailure(t *testing.T) {
	svc := &mockLLMService{}
	mem := &mockMemory{queryErr: fmt.Errorf("%w: disk gone", domain.ErrStoreUnavailable)}
	query := NewQueryService(newTestGateway(svc), mem, nil, domain.AIProviderGroq, 5)

	_, err := query.Answer(context.Background(), "question", "")

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Zero(t, svc.Calls())
}

func TestQueryService_SynthesisFailure(t *testing.T) {
	svc := &mockLLMService{errs: map[int]error{1: errors.New("connection reset")}}
	query := NewQueryService(newTestGateway(svc), &mockMemory{}, nil, domain.AIProviderGroq, 5)

	_, err := query.Answer(context.Background(), "question", "")

	assert.ErrorIs(t, err, domain.ErrProviderError)
	assert.Equal(t, domain.KindProviderError, domain.KindOf(err))
}
