package driving

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// InferenceGateway is the provider registry plus a uniform call contract.
type InferenceGateway interface {
	// ListProviders returns every known provider. It performs no I/O.
	ListProviders() map[domain.AIProvider]domain.ProviderDescriptor

	// Describe returns a single provider descriptor.
	// Fails with domain.ErrInvalidInput for unknown names.
	Describe(provider domain.AIProvider) (domain.ProviderDescriptor, error)

	// RequireConfigured fails with domain.ErrProviderUnavailable when the
	// provider cannot be called. It performs no I/O.
	RequireConfigured(provider domain.AIProvider) error

	// Invoke sends the request to the named provider and returns its text.
	Invoke(ctx context.Context, provider domain.AIProvider, req domain.InferenceRequest) (string, error)

	// Reload atomically replaces the registry contents.
	Reload(backends []driven.LLMBackend)
}
