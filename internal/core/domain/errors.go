package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// Every error surfaced by the core wraps exactly one of these, so callers
// can branch with errors.Is and report a stable kind via KindOf.
var (
	// ErrInvalidInput indicates an empty or malformed request.
	// Retrying the same request will not help.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable indicates the selected provider is not configured.
	// It is detected locally, before any network call.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrProviderError indicates a configured provider failed to answer.
	// The accompanying ProviderCallError carries the cause.
	ErrProviderError = errors.New("provider error")

	// ErrIngestion indicates no chunk of a document could be embedded.
	ErrIngestion = errors.New("ingestion failed")

	// ErrStoreUnavailable indicates the memory persistence layer failed.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrDimensionMismatch indicates a vector does not match the collection dimensions.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// ErrorKind is the stable, user-visible classification of an error.
type ErrorKind string

// Error kinds reported to callers.
const (
	KindInvalidInput        ErrorKind = "invalid_input"
	KindProviderUnavailable ErrorKind = "provider_unavailable"
	KindProviderError       ErrorKind = "provider_error"
	KindIngestionError      ErrorKind = "ingestion_error"
	KindStoreUnavailable    ErrorKind = "store_unavailable"
	KindInternal            ErrorKind = "internal"
)

// KindOf classifies err into one of the stable error kinds.
// A nil error has no kind and returns the empty string.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrDimensionMismatch):
		return KindInvalidInput
	case errors.Is(err, ErrProviderUnavailable):
		return KindProviderUnavailable
	case errors.Is(err, ErrProviderError):
		return KindProviderError
	case errors.Is(err, ErrIngestion):
		return KindIngestionError
	case errors.Is(err, ErrStoreUnavailable):
		return KindStoreUnavailable
	default:
		return KindInternal
	}
}

// ProviderErrorCause tags why a provider call failed.
type ProviderErrorCause string

// Provider failure causes.
const (
	CauseTimeout           ProviderErrorCause = "timeout"
	CauseRateLimited       ProviderErrorCause = "rate_limited"
	CauseBadStatus         ProviderErrorCause = "bad_status"
	CauseMalformedResponse ProviderErrorCause = "malformed_response"
	CauseTransport         ProviderErrorCause = "transport"
	CauseCanceled          ProviderErrorCause = "canceled"
)

// ProviderCallError describes a failed call to a configured provider.
type ProviderCallError struct {
	// Provider is the backend that failed (e.g. "groq", "ollama").
	Provider string

	// Cause tags the failure for callers deciding on retry.
	Cause ProviderErrorCause

	// StatusCode is the HTTP status, when the backend answered at all.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// NewProviderError builds a ProviderCallError.
func NewProviderError(provider string, cause ProviderErrorCause, status int, err error) *ProviderCallError {
	return &ProviderCallError{Provider: provider, Cause: cause, StatusCode: status, Err: err}
}

// NewStatusError builds a ProviderCallError for a non-2xx HTTP answer.
// 429 is tagged rate_limited; every other status is bad_status.
func NewStatusError(provider string, status int, body string) *ProviderCallError {
	cause := CauseBadStatus
	if status == 429 {
		cause = CauseRateLimited
	}
	body = Truncate(strings.TrimSpace(body), 300)
	var err error
	if body != "" {
		err = errors.New(body)
	}
	return NewProviderError(provider, cause, status, err)
}

// Error implements the error interface.
func (e *ProviderCallError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Provider, e.Cause)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the ErrProviderError sentinel and the underlying error.
func (e *ProviderCallError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrProviderError}
	}
	return []error{ErrProviderError, e.Err}
}

// IsRetryable reports whether resubmitting the request may succeed.
func (e *ProviderCallError) IsRetryable() bool {
	switch e.Cause {
	case CauseTimeout, CauseRateLimited, CauseTransport:
		return true
	case CauseBadStatus:
		return e.StatusCode >= 500
	default:
		return false
	}
}

// StageError reports the pipeline stage at which processing stopped.
type StageError struct {
	// Stage is the stage that failed.
	Stage PipelineStage

	// Err is the stage failure.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the stage failure.
func (e *StageError) Unwrap() error {
	return e.Err
}

// ChunkFailure records a span that could not be embedded or stored.
type ChunkFailure struct {
	// Position is the ordinal of the span within the document.
	Position int

	// Preview is the beginning of the failed span.
	Preview string

	// Reason is the human-readable failure cause.
	Reason string
}

// IngestionError aggregates chunk failures when nothing could be stored.
type IngestionError struct {
	// DocumentID is the document that failed to ingest.
	DocumentID string

	// Total is the number of spans attempted.
	Total int

	// Failures lists every failed span.
	Failures []ChunkFailure
}

// Error implements the error interface.
func (e *IngestionError) Error() string {
	msg := fmt.Sprintf("%d of %d chunks failed for document %s", len(e.Failures), e.Total, e.DocumentID)
	if len(e.Failures) > 0 {
		msg += ": " + e.Failures[0].Reason
	}
	return msg
}

// Unwrap returns ErrIngestion.
func (e *IngestionError) Unwrap() error {
	return ErrIngestion
}
