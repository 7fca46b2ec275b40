package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
	"github.com/custodia-labs/docmind/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService processes documents and stores them in memory.
type DocumentService struct {
	pipeline driving.PipelineService
	memory   driving.MemoryService
}

// NewDocumentService creates a new document service.
// memory may be nil, in which case Remember is ignored.
func NewDocumentService(pipeline driving.PipelineService, memory driving.MemoryService) *DocumentService {
	return &DocumentService{
		pipeline: pipeline,
		memory:   memory,
	}
}

// ProcessDocument runs the pipeline and, when requested, ingests the
// document together with its summary, facts and questions.
// A pipeline failure fails the call. A memory failure does not: the
// response carries it in MemoryErr alongside the pipeline result.
func (s *DocumentService) ProcessDocument(
	ctx context.Context, req driving.ProcessRequest,
) (*driving.ProcessResponse, error) {
	if err := domain.ValidateText("document text", req.Text); err != nil {
		return nil, err
	}

	result, err := s.pipeline.Process(ctx, req.Text, req.Provider)
	if err != nil {
		return nil, err
	}

	resp := &driving.ProcessResponse{Result: result}
	if !req.Remember {
		return resp, nil
	}
	if s.memory == nil {
		resp.MemoryErr = errors.New("memory is not enabled")
		return resp, nil
	}

	report, err := s.memory.Ingest(ctx, domain.IngestRequest{
		Text:      req.Text,
		Source:    req.Source,
		Summary:   result.Summary,
		Facts:     result.Facts,
		Questions: result.Questions,
	})
	if err != nil {
		logger.Warn("Document processed but not stored: %v", err)
		resp.MemoryErr = err
		return resp, nil
	}
	resp.Memory = report
	return resp, nil
}
