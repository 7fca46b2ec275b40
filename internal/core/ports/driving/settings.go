package driving

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, including environment overrides.
	Get() (*domain.AppSettings, error)

	// Set stores a single configuration value by dotted key.
	Set(key, value string) error

	// SetAPIKey stores the API key of a chat provider.
	SetAPIKey(provider domain.AIProvider, apiKey string) error

	// SetDefaultProvider selects the provider used when none is named.
	SetDefaultProvider(provider domain.AIProvider) error

	// ValidateProvider pings a configured chat provider.
	ValidateProvider(ctx context.Context, provider domain.AIProvider) error

	// ValidateEmbedding pings the configured embedding provider.
	ValidateEmbedding(ctx context.Context) error

	// ConfigPath returns the configuration file location.
	ConfigPath() string
}
