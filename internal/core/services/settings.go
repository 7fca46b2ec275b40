package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDefaultProvider = "llm.default_provider"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDimensions = "embedding.dimensions"
	keyMemCollection   = "memory.collection"
	keyMemTopK         = "memory.top_k"
	keyMemChunkSize    = "memory.chunk_size"
	keyMemChunkOverlap = "memory.chunk_overlap"
	keyMemWorkers      = "memory.workers"
	keyMemPersist      = "memory.persist"

	// Per-provider key suffixes, under "llm.<provider>.".
	providerAPIKey   = "api_key"
	providerModel    = "model"
	providerBaseURL  = "base_url"
	providerTimeout  = "timeout_seconds"
	providerRequests = "requests_per_second"

	envOllamaHost = "OLLAMA_HOST"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
	kindProvider
)

// fixedKeys are the settable keys outside the per-provider tables.
var fixedKeys = map[string]keyKind{
	keyDefaultProvider: kindProvider,
	keyEmbedProvider:   kindProvider,
	keyEmbedModel:      kindString,
	keyEmbedBaseURL:    kindString,
	keyEmbedAPIKey:     kindString,
	keyEmbedDimensions: kindInt,
	keyMemCollection:   kindString,
	keyMemTopK:         kindInt,
	keyMemChunkSize:    kindInt,
	keyMemChunkOverlap: kindInt,
	keyMemWorkers:      kindInt,
	keyMemPersist:      kindBool,
}

var providerKeys = map[string]keyKind{
	providerAPIKey:   kindString,
	providerModel:    kindString,
	providerBaseURL:  kindString,
	providerTimeout:  kindInt,
	providerRequests: kindFloat,
}

// SettingsService manages application settings.
// Environment variables (GROQ_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY,
// OLLAMA_HOST) take precedence over the config file.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		DefaultProvider: s.getProvider(keyDefaultProvider, defaults.DefaultProvider),
		Providers:       make(map[domain.AIProvider]domain.ProviderSettings, len(defaults.Providers)),
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.configStore.GetInt(keyEmbedDimensions),
		},
		Memory: domain.MemorySettings{
			Collection:   s.getString(keyMemCollection, defaults.Memory.Collection),
			TopK:         s.getInt(keyMemTopK, defaults.Memory.TopK),
			ChunkSize:    s.getInt(keyMemChunkSize, defaults.Memory.ChunkSize),
			ChunkOverlap: s.getInt(keyMemChunkOverlap, defaults.Memory.ChunkOverlap),
			Workers:      s.getInt(keyMemWorkers, defaults.Memory.Workers),
			Persist:      s.getBool(keyMemPersist, defaults.Memory.Persist),
		},
	}

	for _, p := range domain.AllLLMProviders() {
		def := defaults.Providers[p]
		prefix := "llm." + p.String() + "."
		ps := domain.ProviderSettings{
			Provider:          p,
			Model:             s.getString(prefix+providerModel, def.Model),
			BaseURL:           s.configStore.GetString(prefix + providerBaseURL),
			APIKey:            s.configStore.GetString(prefix + providerAPIKey),
			Timeout:           def.Timeout,
			RequestsPerSecond: s.configStore.GetFloat(prefix + providerRequests),
		}
		if secs := s.configStore.GetInt(prefix + providerTimeout); secs > 0 {
			ps.Timeout = time.Duration(secs) * time.Second
		}
		if env := p.APIKeyEnv(); env != "" {
			if key, ok := s.lookupEnv(env); ok && key != "" {
				ps.APIKey = key
			}
		}
		if p == domain.AIProviderOllama {
			if host, ok := s.lookupEnv(envOllamaHost); ok && host != "" {
				ps.BaseURL = normaliseHost(host)
			}
		}
		settings.Providers[p] = ps
	}

	emb := &settings.Embedding
	emb.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[emb.Provider])
	switch emb.Provider {
	case domain.AIProviderOpenAI:
		if emb.APIKey == "" {
			emb.APIKey = settings.Providers[domain.AIProviderOpenAI].APIKey
		}
	case domain.AIProviderOllama:
		if emb.BaseURL == "" {
			emb.BaseURL = settings.Providers[domain.AIProviderOllama].BaseURL
		}
	case domain.AIProviderHashing:
		if emb.Dimensions <= 0 {
			emb.Dimensions = defaults.Embedding.Dimensions
		}
	}
	if emb.Dimensions <= 0 {
		emb.Dimensions = domain.EmbeddingDimensions()[emb.Model]
	}

	return settings, nil
}

// Set stores a single configuration value by dotted key.
// The value is parsed according to the key's type.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := lookupKeyKind(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindString:
		parsed = value
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	case kindProvider:
		p := domain.AIProvider(value)
		if err := validateProviderFor(key, p); err != nil {
			return err
		}
		parsed = p.String()
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetAPIKey stores the API key of a chat provider.
func (s *SettingsService) SetAPIKey(provider domain.AIProvider, apiKey string) error {
	if !isLLMProvider(provider) {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
	}
	if !provider.RequiresAPIKey() {
		return fmt.Errorf("%w: %s does not use an API key", domain.ErrInvalidInput, provider)
	}
	if strings.TrimSpace(apiKey) == "" {
		return fmt.Errorf("%w: API key must not be empty", domain.ErrInvalidInput)
	}
	key := "llm." + provider.String() + "." + providerAPIKey
	if err := s.configStore.Set(key, strings.TrimSpace(apiKey)); err != nil {
		return fmt.Errorf("save %s api_key: %w", provider, err)
	}
	return nil
}

// SetDefaultProvider selects the provider used when none is named.
func (s *SettingsService) SetDefaultProvider(provider domain.AIProvider) error {
	return s.Set(keyDefaultProvider, provider.String())
}

// ValidateProvider pings a chat provider using the current settings.
func (s *SettingsService) ValidateProvider(ctx context.Context, provider domain.AIProvider) error {
	if !isLLMProvider(provider) {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	ps := settings.Providers[provider]
	if !ps.IsConfigured() {
		return fmt.Errorf("%w: %s is not configured", domain.ErrProviderUnavailable, provider)
	}
	if s.aiValidator == nil {
		return nil
	}
	return s.aiValidator.ValidateLLM(ctx, &ps)
}

// ValidateEmbedding pings the configured embedding provider.
func (s *SettingsService) ValidateEmbedding(ctx context.Context) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s is not configured",
			domain.ErrProviderUnavailable, settings.Embedding.Provider)
	}
	if s.aiValidator == nil {
		return nil
	}
	return s.aiValidator.ValidateEmbedding(ctx, &settings.Embedding)
}

// ConfigPath returns the configuration file location.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if validateProviderFor(key, provider) != nil {
		return defaultVal
	}
	return provider
}

func lookupKeyKind(key string) (keyKind, bool) {
	if kind, ok := fixedKeys[key]; ok {
		return kind, true
	}
	rest, ok := strings.CutPrefix(key, "llm.")
	if !ok {
		return 0, false
	}
	name, field, ok := strings.Cut(rest, ".")
	if !ok || !isLLMProvider(domain.AIProvider(name)) {
		return 0, false
	}
	kind, ok := providerKeys[field]
	return kind, ok
}

func validateProviderFor(key string, p domain.AIProvider) error {
	valid := domain.AllLLMProviders()
	if key == keyEmbedProvider {
		valid = domain.AllEmbeddingProviders()
	}
	for _, v := range valid {
		if v == p {
			return nil
		}
	}
	return fmt.Errorf("%w: %q is not a valid provider for %s", domain.ErrInvalidInput, p, key)
}

func isLLMProvider(p domain.AIProvider) bool {
	for _, v := range domain.AllLLMProviders() {
		if v == p {
			return true
		}
	}
	return false
}

// normaliseHost accepts OLLAMA_HOST values with or without a scheme.
func normaliseHost(host string) string {
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return strings.TrimRight(host, "/")
	}
	return "http://" + strings.TrimRight(host, "/")
}
