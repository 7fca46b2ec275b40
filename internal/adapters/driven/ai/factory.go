// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docmind/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/docmind/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docmind/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/docmind/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/docmind/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docmind/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the AI services built from settings.
type InitResult struct {
	Backends         []driven.LLMBackend
	EmbeddingService driven.EmbeddingService
	Warnings         []string // Non-fatal issues, e.g. a provider that failed to build.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	for _, b := range r.Backends {
		if b.Service != nil {
			b.Service.Close()
		}
	}
}

// Initialise builds every chat backend and the embedding service.
// Chat providers that cannot be built are reported unconfigured with a
// warning. A missing embedding service is an error since memory needs one.
func Initialise(settings *domain.AppSettings) (*InitResult, error) {
	backends, warnings := CreateLLMBackends(settings)
	result := &InitResult{Backends: backends, Warnings: warnings}

	emb, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.Close()
		return nil, fmt.Errorf("%w: embedding: %w", domain.ErrProviderUnavailable, err)
	}
	if emb == nil {
		result.Close()
		return nil, fmt.Errorf("%w: embedding provider %s is not configured",
			domain.ErrProviderUnavailable, settings.Embedding.Provider)
	}
	result.EmbeddingService = emb
	return result, nil
}

// CreateLLMBackends builds one backend per chat provider, configured or not.
func CreateLLMBackends(settings *domain.AppSettings) ([]driven.LLMBackend, []string) {
	var warnings []string
	backends := make([]driven.LLMBackend, 0, len(domain.AllLLMProviders()))

	for _, p := range domain.AllLLMProviders() {
		ps, ok := settings.Providers[p]
		if !ok {
			ps = domain.ProviderSettings{Provider: p, Model: domain.DefaultLLMModels()[p]}
		}
		ps.Provider = p

		backend := driven.LLMBackend{
			Descriptor: domain.ProviderDescriptor{
				Name:         p,
				Configured:   ps.IsConfigured(),
				Model:        ps.Model,
				Capabilities: capabilities(p),
			},
			Timeout:           ps.Timeout,
			RequestsPerSecond: ps.RequestsPerSecond,
		}

		if backend.Descriptor.Configured {
			svc, err := CreateLLMService(&ps)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("%s: %v", p, err))
				backend.Descriptor.Configured = false
			} else {
				backend.Service = svc
			}
		}
		backends = append(backends, backend)
	}
	return backends, warnings
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates a chat provider configuration by creating a service and pinging it.
func ValidateLLMConfig(ctx context.Context, settings *domain.ProviderSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderHashing:
		return hashing.NewEmbeddingService(hashing.Config{Dimensions: settings.Dimensions}), nil

	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderAnthropic, domain.AIProviderGroq:
		return nil, fmt.Errorf("%s does not support embeddings, use hashing, ollama or openai", settings.Provider)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate chat service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.ProviderSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGroq:
		baseURL := settings.BaseURL
		if baseURL == "" {
			baseURL = openaillm.GroqBaseURL
		}
		return openaillm.NewLLMService(openaillm.LLMConfig{
			Name:    domain.AIProviderGroq.String(),
			APIKey:  settings.APIKey,
			BaseURL: baseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

func capabilities(p domain.AIProvider) []domain.Capability {
	caps := []domain.Capability{domain.CapabilityChat}
	for _, e := range domain.AllEmbeddingProviders() {
		if e == p {
			caps = append(caps, domain.CapabilityEmbedding)
		}
	}
	return caps
}

func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
}
