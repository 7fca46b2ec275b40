package domain

import (
	"sort"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an inference backend for chat or embeddings.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGroq is the Groq cloud API (OpenAI-compatible).
	AIProviderGroq AIProvider = "groq"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderHashing is the offline feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGroq, AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama, AIProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGroq || p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing
}

// APIKeyEnv returns the environment variable holding the provider's API key.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderGroq:
		return "GROQ_API_KEY"
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGroq:
		return "Groq (cloud)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderHashing:
		return "Feature hashing (offline)"
	default:
		return unknownDescription
	}
}

// Capability tags what a provider can be used for.
type Capability string

// Provider capabilities.
const (
	CapabilityChat      Capability = "chat"
	CapabilityEmbedding Capability = "embedding"
)

// ProviderDescriptor describes a provider known to the registry.
// Descriptors are immutable once the registry is built.
type ProviderDescriptor struct {
	// Name identifies the provider.
	Name AIProvider `json:"name"`

	// Configured is true when credentials or endpoints are present.
	Configured bool `json:"configured"`

	// Model is the model identifier used for calls.
	Model string `json:"model"`

	// Capabilities lists what the provider can do.
	Capabilities []Capability `json:"capabilities"`
}

// Has returns true if the descriptor carries the capability.
func (d ProviderDescriptor) Has(c Capability) bool {
	for _, have := range d.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// ProviderSettings holds configuration for one chat provider.
type ProviderSettings struct {
	// Provider is the chat provider.
	Provider AIProvider

	// Model is the model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (cloud providers only).
	APIKey string

	// Timeout bounds every call to the provider.
	Timeout time.Duration

	// RequestsPerSecond throttles outbound calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the provider is callable.
func (s ProviderSettings) IsConfigured() bool {
	if !s.Provider.IsValid() || s.Provider == AIProviderHashing {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the vector size.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	switch e.Provider {
	case AIProviderHashing, AIProviderOllama:
		return true
	case AIProviderOpenAI:
		return e.APIKey != ""
	default:
		return false
	}
}

// MemorySettings holds memory store configuration.
type MemorySettings struct {
	// Collection is the memory collection name.
	Collection string

	// TopK is the default number of chunks retrieved per query.
	TopK int

	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the target overlap between chunks in characters.
	ChunkOverlap int

	// Workers bounds concurrent embedding calls during ingestion.
	Workers int

	// Persist stores memory on disk when true.
	Persist bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	// DefaultProvider is used when a request names no provider.
	DefaultProvider AIProvider

	// Providers holds per-provider chat settings.
	Providers map[AIProvider]ProviderSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Memory holds memory store settings.
	Memory MemorySettings
}

// DefaultProviderTimeout bounds a provider call when none is configured.
const DefaultProviderTimeout = 60 * time.Second

// DefaultAppSettings returns settings with sensible defaults.
// Cloud providers stay unconfigured until an API key is supplied.
func DefaultAppSettings() AppSettings {
	providers := make(map[AIProvider]ProviderSettings)
	for _, p := range AllLLMProviders() {
		providers[p] = ProviderSettings{
			Provider: p,
			Model:    DefaultLLMModels()[p],
			Timeout:  DefaultProviderTimeout,
		}
	}
	return AppSettings{
		DefaultProvider: AIProviderGroq,
		Providers:       providers,
		Embedding: EmbeddingSettings{
			Provider:   AIProviderHashing,
			Dimensions: 384,
		},
		Memory: MemorySettings{
			Collection:   DefaultCollection,
			TopK:         5,
			ChunkSize:    1000,
			ChunkOverlap: 200,
			Workers:      4,
			Persist:      true,
		},
	}
}

// AllLLMProviders returns providers that support chat, in display order.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGroq,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderOllama,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderHashing,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultLLMModels returns default models for each chat provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGroq:      "llama-3.1-8b-instant",
		AIProviderOpenAI:    "gpt-3.5-turbo",
		AIProviderAnthropic: "claude-3-haiku-20240307",
		AIProviderOllama:    "llama3.2",
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderHashing: "hashing-v1",
		AIProviderOllama:  "nomic-embed-text",
		AIProviderOpenAI:  "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// SortedProviders returns the keys of m in a stable order.
func SortedProviders[V any](m map[AIProvider]V) []AIProvider {
	names := make([]AIProvider, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
