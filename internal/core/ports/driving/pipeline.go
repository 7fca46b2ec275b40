package driving

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// PipelineService runs the summarize, extract facts and generate questions
// stages over a document.
type PipelineService interface {
	// Process returns the full result or a *domain.StageError. Never a partial result.
	Process(ctx context.Context, text string, provider domain.AIProvider) (*domain.PipelineResult, error)
}
