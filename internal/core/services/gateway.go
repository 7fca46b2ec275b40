package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
	"github.com/custodia-labs/docmind/internal/logger"
)

// Ensure Gateway implements the interface.
var _ driving.InferenceGateway = (*Gateway)(nil)

// Default generation parameters applied when a request leaves them unset.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
)

// providerChoice holds the provider used when a request names none. It is
// swapped when the config is reloaded.
type providerChoice struct {
	v atomic.Value
}

func newProviderChoice(p domain.AIProvider) *providerChoice {
	c := &providerChoice{}
	c.set(p)
	return c
}

func (c *providerChoice) get() domain.AIProvider {
	return c.v.Load().(domain.AIProvider)
}

func (c *providerChoice) set(p domain.AIProvider) {
	c.v.Store(p)
}

// gatewayEntry is one registered provider.
type gatewayEntry struct {
	descriptor domain.ProviderDescriptor
	service    driven.LLMService
	timeout    time.Duration
	limiter    *rate.Limiter
}

// Gateway is the provider registry and inference gateway.
// The registry is read-mostly: lookups take a read lock and Reload swaps
// the whole map.
type Gateway struct {
	mu      sync.RWMutex
	entries map[domain.AIProvider]*gatewayEntry
}

// NewGateway creates a gateway over the given backends.
func NewGateway(backends []driven.LLMBackend) *Gateway {
	g := &Gateway{}
	g.Reload(backends)
	return g
}

// Reload atomically replaces the registered providers.
// Services of the replaced registry are not closed; callers own them.
func (g *Gateway) Reload(backends []driven.LLMBackend) {
	entries := make(map[domain.AIProvider]*gatewayEntry, len(backends))
	for _, b := range backends {
		desc := b.Descriptor
		desc.Capabilities = append([]domain.Capability(nil), desc.Capabilities...)
		// A descriptor without a service cannot be called, whatever it claims.
		desc.Configured = desc.Configured && b.Service != nil

		entry := &gatewayEntry{
			descriptor: desc,
			service:    b.Service,
			timeout:    b.Timeout,
		}
		if entry.timeout <= 0 {
			entry.timeout = domain.DefaultProviderTimeout
		}
		if b.RequestsPerSecond > 0 {
			burst := int(b.RequestsPerSecond)
			if burst < 1 {
				burst = 1
			}
			entry.limiter = rate.NewLimiter(rate.Limit(b.RequestsPerSecond), burst)
		}
		entries[desc.Name] = entry
	}

	g.mu.Lock()
	g.entries = entries
	g.mu.Unlock()

	logger.Debug("Provider registry loaded: %d providers", len(entries))
}

// ListProviders returns every known provider. It performs no I/O.
func (g *Gateway) ListProviders() map[domain.AIProvider]domain.ProviderDescriptor {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make(map[domain.AIProvider]domain.ProviderDescriptor, len(g.entries))
	for name, e := range g.entries {
		out[name] = e.describe()
	}
	return out
}

// Describe returns the descriptor of a single provider.
func (g *Gateway) Describe(provider domain.AIProvider) (domain.ProviderDescriptor, error) {
	e, err := g.lookup(provider)
	if err != nil {
		return domain.ProviderDescriptor{}, err
	}
	return e.describe(), nil
}

// describe returns a copy of the descriptor that callers may modify.
func (e *gatewayEntry) describe() domain.ProviderDescriptor {
	desc := e.descriptor
	desc.Capabilities = append([]domain.Capability(nil), desc.Capabilities...)
	return desc
}

// RequireConfigured fails with ErrProviderUnavailable when provider cannot be called.
func (g *Gateway) RequireConfigured(provider domain.AIProvider) error {
	e, err := g.lookup(provider)
	if err != nil {
		return err
	}
	return requireConfigured(e)
}

// Invoke sends req to the named provider.
// Unknown and unconfigured providers fail before any network interaction.
// No retry is performed.
func (g *Gateway) Invoke(
	ctx context.Context, provider domain.AIProvider, req domain.InferenceRequest,
) (string, error) {
	e, err := g.lookup(provider)
	if err != nil {
		return "", err
	}
	if err := requireConfigured(e); err != nil {
		return "", err
	}
	if err := domain.ValidateText("prompt", req.Prompt); err != nil {
		return "", err
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", domain.NewProviderError(provider.String(), causeFromContext(ctx, err), 0,
				fmt.Errorf("waiting for rate limiter: %w", err))
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	temperature := req.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	logger.Debug("Invoking %s (%s): prompt=%d chars, temperature=%.1f",
		provider, e.descriptor.Model, len(req.Prompt), temperature)

	start := time.Now()
	var text string
	if req.System != "" {
		text, err = e.service.Chat(callCtx, []driven.ChatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		}, driven.ChatOptions{MaxTokens: maxTokens, Temperature: temperature})
	} else {
		text, err = e.service.Generate(callCtx, req.Prompt, driven.GenerateOptions{
			MaxTokens:   maxTokens,
			Temperature: temperature,
		})
	}
	if err != nil {
		classified := classifyProviderError(callCtx, provider, err)
		logger.Warn("Provider %s failed after %s: %v", provider, time.Since(start).Round(time.Millisecond), classified)
		return "", classified
	}

	logger.Debug("Provider %s answered in %s (%d chars)", provider, time.Since(start).Round(time.Millisecond), len(text))
	return strings.TrimSpace(text), nil
}

// lookup returns the entry for provider or an InvalidInput error.
func (g *Gateway) lookup(provider domain.AIProvider) (*gatewayEntry, error) {
	g.mu.RLock()
	e, ok := g.entries[provider]
	g.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
	}
	return e, nil
}

func requireConfigured(e *gatewayEntry) error {
	if !e.descriptor.Configured || e.service == nil {
		hint := ""
		if env := e.descriptor.Name.APIKeyEnv(); env != "" {
			hint = fmt.Sprintf(" (set %s or run 'docmind settings set-key %s')", env, e.descriptor.Name)
		}
		return fmt.Errorf("%w: %s is not configured%s", domain.ErrProviderUnavailable, e.descriptor.Name, hint)
	}
	return nil
}

// classifyProviderError turns any adapter failure into a *ProviderCallError.
func classifyProviderError(ctx context.Context, provider domain.AIProvider, err error) error {
	var callErr *domain.ProviderCallError
	if errors.As(err, &callErr) {
		return callErr
	}

	cause := domain.CauseTransport
	var netErr net.Error
	switch {
	case ctx.Err() != nil:
		cause = causeFromContext(ctx, err)
	case errors.Is(err, context.DeadlineExceeded):
		cause = domain.CauseTimeout
	case errors.Is(err, context.Canceled):
		cause = domain.CauseCanceled
	case errors.As(err, &netErr) && netErr.Timeout():
		cause = domain.CauseTimeout
	}
	return domain.NewProviderError(provider.String(), cause, 0, err)
}

// causeFromContext distinguishes a deadline from a caller cancellation.
func causeFromContext(ctx context.Context, err error) domain.ProviderErrorCause {
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return domain.CauseCanceled
	}
	return domain.CauseTimeout
}
