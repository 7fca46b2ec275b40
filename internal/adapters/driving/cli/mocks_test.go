package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

type mockDocumentService struct {
	resp *driving.ProcessResponse
	err  error
	req  driving.ProcessRequest
}

func (m *mockDocumentService) ProcessDocument(_ context.Context, req driving.ProcessRequest) (*driving.ProcessResponse, error) {
	m.req = req
	return m.resp, m.err
}

type mockMemoryService struct {
	report   *domain.IngestReport
	hits     []domain.ScoredChunk
	stats    *domain.MemoryStats
	err      error
	cleared  bool
	lastReq  domain.IngestRequest
	lastTopK int
}

func (m *mockMemoryService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestReport, error) {
	m.lastReq = req
	return m.report, m.err
}

func (m *mockMemoryService) Query(_ context.Context, _ string, topK int) ([]domain.ScoredChunk, error) {
	m.lastTopK = topK
	return m.hits, m.err
}

func (m *mockMemoryService) Stats(context.Context) (*domain.MemoryStats, error) {
	return m.stats, m.err
}

func (m *mockMemoryService) Clear(context.Context) error {
	if m.err == nil {
		m.cleared = true
	}
	return m.err
}

type mockQueryService struct {
	result   *domain.QueryResult
	err      error
	question string
	provider domain.AIProvider
}

func (m *mockQueryService) Answer(_ context.Context, q string, p domain.AIProvider) (*domain.QueryResult, error) {
	m.question, m.provider = q, p
	return m.result, m.err
}

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

type mockSettingsService struct {
	settings    *domain.AppSettings
	setErr      error
	validateErr map[domain.AIProvider]error
	embedErr    error
	set         map[string]string
	apiKeys     map[domain.AIProvider]string
	defaultP    domain.AIProvider
	validated   []domain.AIProvider
}

func newMockSettings() *mockSettingsService {
	s := domain.DefaultAppSettings()
	s.Embedding.Model = "hashing-v1"
	return &mockSettingsService{
		settings:    &s,
		validateErr: map[domain.AIProvider]error{},
		set:         map[string]string{},
		apiKeys:     map[domain.AIProvider]string{},
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) { return m.settings, nil }

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) SetAPIKey(p domain.AIProvider, key string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.apiKeys[p] = strings.TrimSpace(key)
	return nil
}

func (m *mockSettingsService) SetDefaultProvider(p domain.AIProvider) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.defaultP = p
	return nil
}

func (m *mockSettingsService) ValidateProvider(_ context.Context, p domain.AIProvider) error {
	m.validated = append(m.validated, p)
	return m.validateErr[p]
}

func (m *mockSettingsService) ValidateEmbedding(context.Context) error { return m.embedErr }

func (m *mockSettingsService) ConfigPath() string { return "/tmp/docmind/config.toml" }

// useServices installs s for the duration of the test.
func useServices(t *testing.T, s Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() { SetServices(Services{}) })
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the root command with args and stdin, returning its output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}
