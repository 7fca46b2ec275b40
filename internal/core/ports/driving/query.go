package driving

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// QueryService answers questions from memory.
type QueryService interface {
	// Answer retrieves relevant chunks and synthesises a grounded answer.
	Answer(ctx context.Context, question string, provider domain.AIProvider) (*domain.QueryResult, error)
}
