package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// LLMService provides chat/completion calls against a single backend.
//
// Implementations include:
//   - OpenAI-compatible APIs (OpenAI, Groq)
//   - Anthropic (Claude)
//   - Ollama (local models)
//
// Implementations report backend failures as *domain.ProviderCallError so
// callers can distinguish rate limiting, bad statuses and malformed payloads.
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat conducts a multi-turn conversation.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// LLMBackend pairs a provider descriptor with the service that answers for it.
// Service is nil when the provider is not configured.
type LLMBackend struct {
	// Descriptor is what the registry reports for the provider.
	Descriptor domain.ProviderDescriptor

	// Service performs the calls. Nil for unconfigured providers.
	Service LLMService

	// Timeout bounds each call. Zero selects domain.DefaultProviderTimeout.
	Timeout time.Duration

	// RequestsPerSecond throttles outbound calls. Zero disables throttling.
	RequestsPerSecond float64
}
