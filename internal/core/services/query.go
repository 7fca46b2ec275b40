package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
	"github.com/custodia-labs/docmind/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

const answerTemperature = 0.3

// QueryService answers questions by retrieving from memory and synthesising
// with a chat provider.
type QueryService struct {
	gateway         driving.InferenceGateway
	memory          driving.MemoryService
	prompts         *promptLoader
	defaultProvider *providerChoice
	topK            int
}

// NewQueryService creates a query engine.
// promptStore may be nil, in which case built-in prompts are used.
func NewQueryService(
	gateway driving.InferenceGateway,
	memory driving.MemoryService,
	promptStore driven.PromptStore,
	defaultProvider domain.AIProvider,
	topK int,
) *QueryService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &QueryService{
		gateway:         gateway,
		memory:          memory,
		prompts:         newPromptLoader(promptStore),
		defaultProvider: newProviderChoice(defaultProvider),
		topK:            topK,
	}
}

// SetDefaultProvider changes the provider used when a call names none.
// Calls already running keep the provider they started with.
func (s *QueryService) SetDefaultProvider(provider domain.AIProvider) {
	s.defaultProvider.set(provider)
}

// Answer retrieves the most relevant chunks and synthesises an answer.
// When nothing is retrieved the answer is still synthesised, marked as not
// grounded, with an empty source list.
func (s *QueryService) Answer(
	ctx context.Context, question string, provider domain.AIProvider,
) (*domain.QueryResult, error) {
	if err := domain.ValidateText("question", question); err != nil {
		return nil, err
	}
	if provider == "" {
		provider = s.defaultProvider.get()
	}
	if err := s.gateway.RequireConfigured(provider); err != nil {
		return nil, err
	}

	logger.Section("Query")
	hits, err := s.memory.Query(ctx, question, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	sources := make([]domain.Source, len(hits))
	for i, h := range hits {
		sources[i] = domain.Source{
			ChunkID:    h.Chunk.ID,
			DocumentID: h.Chunk.DocumentID,
			Score:      h.Score,
			Text:       h.Chunk.Text,
			Summary:    h.Chunk.Metadata.Summary,
			Timestamp:  h.Chunk.Metadata.Timestamp,
		}
	}

	var prompt string
	if len(hits) == 0 {
		prompt = s.prompts.format(driven.PromptAnswerNoContext, question)
	} else {
		prompt = s.prompts.format(driven.PromptAnswer, buildContext(hits), question)
	}
	logger.Debug("Answering with %d sources via %s", len(sources), provider)

	answer, err := s.gateway.Invoke(ctx, provider, domain.InferenceRequest{
		Prompt:      prompt,
		Temperature: answerTemperature,
	})
	if err != nil {
		return nil, err
	}

	return &domain.QueryResult{
		Answer:   answer,
		Sources:  sources,
		Grounded: len(hits) > 0,
	}, nil
}

// buildContext joins retrieved chunks, best first, into the prompt context.
func buildContext(hits []domain.ScoredChunk) string {
	var b strings.Builder
	for i, h := range hits {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s", i+1, h.Chunk.Text)
		if h.Chunk.Kind == domain.ChunkKindContent && h.Chunk.Metadata.Summary != "" {
			fmt.Fprintf(&b, "\nDocument summary: %s", h.Chunk.Metadata.Summary)
		}
	}
	return b.String()
}
