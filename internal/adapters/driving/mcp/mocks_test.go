package mcp

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	resp *driving.ProcessResponse
	err  error
	req  driving.ProcessRequest
}

func (m *mockDocumentService) ProcessDocument(_ context.Context, req driving.ProcessRequest) (*driving.ProcessResponse, error) {
	m.req = req
	return m.resp, m.err
}

// mockMemoryService is a mock implementation of driving.MemoryService.
type mockMemoryService struct {
	report   *domain.IngestReport
	hits     []domain.ScoredChunk
	stats    *domain.MemoryStats
	err      error
	cleared  bool
	lastTopK int
	lastReq  domain.IngestRequest
}

func (m *mockMemoryService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestReport, error) {
	m.lastReq = req
	return m.report, m.err
}

func (m *mockMemoryService) Query(_ context.Context, _ string, topK int) ([]domain.ScoredChunk, error) {
	m.lastTopK = topK
	return m.hits, m.err
}

func (m *mockMemoryService) Stats(_ context.Context) (*domain.MemoryStats, error) {
	return m.stats, m.err
}

func (m *mockMemoryService) Clear(_ context.Context) error {
	if m.err == nil {
		m.cleared = true
	}
	return m.err
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	result *domain.QueryResult
	err    error
}

func (m *mockQueryService) Answer(_ context.Context, _ string, _ domain.AIProvider) (*domain.QueryResult, error) {
	return m.result, m.err
}

// mockGateway is a mock implementation of driving.InferenceGateway.
type mockGateway struct {
	providers map[domain.AIProvider]domain.ProviderDescriptor
}

func (m *mockGateway) ListProviders() map[domain.AIProvider]domain.ProviderDescriptor {
	return m.providers
}

func (m *mockGateway) Describe(p domain.AIProvider) (domain.ProviderDescriptor, error) {
	return m.providers[p], nil
}

func (m *mockGateway) RequireConfigured(domain.AIProvider) error { return nil }

func (m *mockGateway) Invoke(context.Context, domain.AIProvider, domain.InferenceRequest) (string, error) {
	return "", nil
}

func (m *mockGateway) Reload([]driven.LLMBackend) {}

// testPorts returns a fully populated Ports value with empty mocks.
func testPorts() *Ports {
	return &Ports{
		Document: &mockDocumentService{},
		Memory:   &mockMemoryService{},
		Query:    &mockQueryService{},
		Gateway:  &mockGateway{},
	}
}
