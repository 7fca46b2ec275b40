// Package httpjson is the JSON-over-HTTP transport shared by the LLM and
// embedding adapters. Every failure it returns is a *domain.ProviderCallError
// tagged with the provider name, except request construction errors.
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// maxErrorBody caps how much of a non-2xx body is read for the error message.
const maxErrorBody = 4096

// Client posts JSON to one provider's API.
type Client struct {
	provider string
	baseURL  string
	header   http.Header
	http     *http.Client
}

// New creates a client for provider rooted at baseURL. The header is sent
// with every request; timeout bounds each request end to end.
func New(provider, baseURL string, timeout time.Duration, header http.Header) *Client {
	if header == nil {
		header = http.Header{}
	}
	return &Client{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		header:   header,
		http:     &http.Client{Timeout: timeout},
	}
}

// Provider returns the provider name used in errors.
func (c *Client) Provider() string {
	return c.provider
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Post sends in as a JSON body to path and decodes a 200 response into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.Malformed("decode response: %w", err)
	}
	return nil
}

// Probe issues a GET to path and succeeds on a 200. Adapters use it for
// Ping against a listing endpoint so that no inference is run.
func (c *Client) Probe(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create ping request: %w", c.provider, err)
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// Malformed reports a 200 response whose payload could not be used.
func (c *Client) Malformed(format string, args ...any) error {
	return domain.NewProviderError(c.provider, domain.CauseMalformedResponse, http.StatusOK, fmt.Errorf(format, args...))
}

// Rejected reports an error object carried inside a 200 response.
func (c *Client) Rejected(message string) error {
	return domain.NewProviderError(c.provider, domain.CauseBadStatus, http.StatusOK, errors.New(message))
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	for k, v := range c.header {
		req.Header[k] = v
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.NewProviderError(c.provider, TransportCause(ctx, err), 0, fmt.Errorf("send request: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, domain.NewStatusError(c.provider, resp.StatusCode, string(body))
	}
	return resp, nil
}

// TransportCause tags a failed round trip. Caller cancellation wins over a
// deadline, and a client-side timeout counts as a timeout.
func TransportCause(ctx context.Context, err error) domain.ProviderErrorCause {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return domain.CauseCanceled
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return domain.CauseTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.CauseTimeout
	}
	return domain.CauseTransport
}
