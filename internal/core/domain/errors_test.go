package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors_Uniqueness(t *testing.T) {
	all := []error{
		ErrInvalidInput,
		ErrProviderUnavailable,
		ErrProviderError,
		ErrIngestion,
		ErrStoreUnavailable,
		ErrDimensionMismatch,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"invalid input", fmt.Errorf("%w: empty", ErrInvalidInput), KindInvalidInput},
		{"dimension mismatch", fmt.Errorf("load: %w", ErrDimensionMismatch), KindInvalidInput},
		{"provider unavailable", ErrProviderUnavailable, KindProviderUnavailable},
		{"provider call", NewProviderError("groq", CauseTimeout, 0, nil), KindProviderError},
		{"stage wrapping provider call", &StageError{Stage: StageSummarize, Err: NewStatusError("groq", 500, "")}, KindProviderError},
		{"ingestion", &IngestionError{DocumentID: "d", Total: 1}, KindIngestionError},
		{"store", fmt.Errorf("%w: disk", ErrStoreUnavailable), KindStoreUnavailable},
		{"anything else", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestProviderCallError_Error(t *testing.T) {
	err := NewProviderError("ollama", CauseBadStatus, 404, errors.New("model not found"))

	assert.Equal(t, "ollama: bad_status (status 404): model not found", err.Error())
	assert.Equal(t, "groq: timeout", NewProviderError("groq", CauseTimeout, 0, nil).Error())
}

func TestProviderCallError_Unwrap(t *testing.T) {
	err := NewProviderError("groq", CauseCanceled, 0, context.Canceled)

	assert.ErrorIs(t, err, ErrProviderError)
	assert.ErrorIs(t, err, context.Canceled)

	wrapped := fmt.Errorf("invoke: %w", err)
	var callErr *ProviderCallError
	require.ErrorAs(t, wrapped, &callErr)
	assert.Equal(t, "groq", callErr.Provider)
}

func TestProviderCallError_IsRetryable(t *testing.T) {
	tests := []struct {
		cause  ProviderErrorCause
		status int
		want   bool
	}{
		{CauseTimeout, 0, true},
		{CauseRateLimited, 429, true},
		{CauseTransport, 0, true},
		{CauseBadStatus, 503, true},
		{CauseBadStatus, 400, false},
		{CauseMalformedResponse, 200, false},
		{CauseCanceled, 0, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%d", tt.cause, tt.status), func(t *testing.T) {
			err := NewProviderError("p", tt.cause, tt.status, nil)
			assert.Equal(t, tt.want, err.IsRetryable())
		})
	}
}

func TestNewStatusError(t *testing.T) {
	limited := NewStatusError("groq", 429, "slow down")
	assert.Equal(t, CauseRateLimited, limited.Cause)
	assert.Equal(t, 429, limited.StatusCode)
	assert.Contains(t, limited.Error(), "slow down")

	bad := NewStatusError("openai", 500, strings.Repeat("x", 1000))
	assert.Equal(t, CauseBadStatus, bad.Cause)
	assert.Less(t, len(bad.Error()), 400)

	accented := NewStatusError("anthropic", 500, "x"+strings.Repeat("é", 400))
	assert.True(t, utf8.ValidString(accented.Error()))
	assert.True(t, strings.HasSuffix(accented.Error(), "é..."))

	empty := NewStatusError("openai", 502, "  ")
	assert.Nil(t, empty.Err)
	assert.Equal(t, "openai: bad_status (status 502)", empty.Error())
}

func TestStageError(t *testing.T) {
	cause := NewStatusError("groq", 500, "oops")
	err := &StageError{Stage: StageExtractFacts, Err: cause}

	assert.Equal(t, "pipeline failed at extract_facts: groq: bad_status (status 500): oops", err.Error())
	assert.ErrorIs(t, err, ErrProviderError)
	var callErr *ProviderCallError
	assert.ErrorAs(t, err, &callErr)
}

func TestIngestionError(t *testing.T) {
	err := &IngestionError{
		DocumentID: "doc-1",
		Total:      2,
		Failures: []ChunkFailure{
			{Position: 0, Reason: "backend down"},
			{Position: 1, Reason: "backend down"},
		},
	}

	assert.Equal(t, "2 of 2 chunks failed for document doc-1: backend down", err.Error())
	assert.ErrorIs(t, err, ErrIngestion)
}
