package mcp

import (
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Document runs the pipeline and optionally remembers the result.
	Document driving.DocumentService

	// Memory is the semantic memory store.
	Memory driving.MemoryService

	// Query answers questions from memory.
	Query driving.QueryService

	// Gateway lists providers and their configuration state.
	Gateway driving.InferenceGateway
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	switch {
	case p.Document == nil:
		return ErrMissingDocumentService
	case p.Memory == nil:
		return ErrMissingMemoryService
	case p.Query == nil:
		return ErrMissingQueryService
	case p.Gateway == nil:
		return ErrMissingGateway
	}
	return nil
}
