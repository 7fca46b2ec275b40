package driving

import (
	"context"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// DocumentService processes a document and optionally remembers it.
type DocumentService interface {
	// ProcessDocument runs the pipeline and, when requested, ingests the result.
	ProcessDocument(ctx context.Context, req ProcessRequest) (*ProcessResponse, error)
}

// ProcessRequest describes a document to process.
type ProcessRequest struct {
	// Text is the decoded document content.
	Text string

	// Source is the optional originating filename.
	Source string

	// Provider selects the chat provider. Empty selects the default.
	Provider domain.AIProvider

	// Remember ingests the document into memory after processing.
	Remember bool
}

// ProcessResponse is the outcome of ProcessDocument.
type ProcessResponse struct {
	// Result is the pipeline output.
	Result *domain.PipelineResult

	// Memory is the ingestion report, nil when Remember was false
	// or ingestion failed.
	Memory *domain.IngestReport

	// MemoryErr is the ingestion failure, if any. The pipeline result
	// is still valid when it is set.
	MemoryErr error
}
