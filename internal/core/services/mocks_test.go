package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockLLMService implements driven.LLMService, answering from a script.
// Call n (1-based) returns responses[n-1], or errs[n] when set.
type mockLLMService struct {
	mu        sync.Mutex
	responses []string
	errs      map[int]error
	prompts   []string
	systems   []string
	opts      []driven.GenerateOptions
	block     bool
	pingErr   error
}

func (m *mockLLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.opts = append(m.opts, opts)
	m.mu.Unlock()
	return m.call(ctx, "", prompt)
}

func (m *mockLLMService) Chat(ctx context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	var system, user string
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			system = msg.Content
		case "user":
			user = msg.Content
		}
	}
	return m.call(ctx, system, user)
}

func (m *mockLLMService) call(ctx context.Context, system, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.systems = append(m.systems, system)
	n := len(m.prompts)
	block := m.block
	err := m.errs[n]
	var resp string
	if n-1 < len(m.responses) {
		resp = m.responses[n-1]
	} else {
		resp = "ok"
	}
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return resp, nil
}

func (m *mockLLMService) ModelName() string { return "mock-model" }

func (m *mockLLMService) Ping(context.Context) error { return m.pingErr }

func (m *mockLLMService) Close() error { return nil }

func (m *mockLLMService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *mockLLMService) Prompt(i int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prompts[i]
}

// newTestGateway registers groq backed by svc, and openai and anthropic
// as known but unconfigured.
func newTestGateway(svc driven.LLMService) *Gateway {
	return NewGateway([]driven.LLMBackend{
		{
			Descriptor: domain.ProviderDescriptor{
				Name:         domain.AIProviderGroq,
				Configured:   true,
				Model:        "mock-model",
				Capabilities: []domain.Capability{domain.CapabilityChat},
			},
			Service: svc,
		},
		{
			Descriptor: domain.ProviderDescriptor{
				Name:         domain.AIProviderOpenAI,
				Model:        "gpt-3.5-turbo",
				Capabilities: []domain.Capability{domain.CapabilityChat, domain.CapabilityEmbedding},
			},
		},
		{
			Descriptor: domain.ProviderDescriptor{
				Name:         domain.AIProviderAnthropic,
				Model:        "claude-3-haiku-20240307",
				Capabilities: []domain.Capability{domain.CapabilityChat},
			},
		},
	})
}

// keywordEmbedder implements driven.EmbeddingService with one dimension
// per keyword, so tests control similarity exactly.
// Text containing failOn fails to embed.
type keywordEmbedder struct {
	keywords []string
	failOn   string
	calls    atomic.Int32
}

func newKeywordEmbedder(keywords ...string) *keywordEmbedder {
	return &keywordEmbedder{keywords: keywords}
}

func (e *keywordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.failOn != "" && strings.Contains(text, e.failOn) {
		return nil, domain.NewProviderError("keyword", domain.CauseBadStatus, 500, errors.New("embedding backend down"))
	}
	lower := strings.ToLower(text)
	vec := make([]float32, len(e.keywords))
	for i, kw := range e.keywords {
		vec[i] = float32(strings.Count(lower, kw))
	}
	return vec, nil
}

func (e *keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *keywordEmbedder) Dimensions() int { return len(e.keywords) }

func (e *keywordEmbedder) ModelName() string { return "keyword" }

func (e *keywordEmbedder) Ping(context.Context) error { return nil }

func (e *keywordEmbedder) Close() error { return nil }

// sentenceChunker implements driven.Chunker, one span per sentence.
type sentenceChunker struct{}

func (sentenceChunker) Chunk(text string) []domain.TextSpan {
	var spans []domain.TextSpan
	for _, part := range strings.SplitAfter(text, ".") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		spans = append(spans, domain.TextSpan{Position: len(spans), Text: part})
	}
	return spans
}

// mockMemory implements driving.MemoryService with canned results.
type mockMemory struct {
	mu        sync.Mutex
	hits      []domain.ScoredChunk
	queryErr  error
	ingestErr error
	ingested  []domain.IngestRequest
	queries   int
}

func (m *mockMemory) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ingestErr != nil {
		return nil, m.ingestErr
	}
	m.ingested = append(m.ingested, req)
	return &domain.IngestReport{DocumentID: "doc-1", ChunkIDs: []string{"c-1"}}, nil
}

func (m *mockMemory) Query(_ context.Context, _ string, topK int) ([]domain.ScoredChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if topK < len(m.hits) {
		return m.hits[:topK], nil
	}
	return m.hits, nil
}

func (m *mockMemory) Stats(context.Context) (*domain.MemoryStats, error) {
	return &domain.MemoryStats{Collection: domain.DefaultCollection}, nil
}

func (m *mockMemory) Clear(context.Context) error { return nil }

// mockAIConfigValidator implements driven.AIConfigValidator for testing.
type mockAIConfigValidator struct {
	llmErr       error
	embeddingErr error
	llmCalls     int
}

func (m *mockAIConfigValidator) ValidateEmbedding(context.Context, *domain.EmbeddingSettings) error {
	return m.embeddingErr
}

func (m *mockAIConfigValidator) ValidateLLM(context.Context, *domain.ProviderSettings) error {
	m.llmCalls++
	return m.llmErr
}
