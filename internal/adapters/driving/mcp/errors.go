// Package mcp provides an MCP (Model Context Protocol) server adapter for docmind.
// It lets AI assistants process documents, store them in memory and ask
// questions answered from that memory.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// Errors returned when the server is built without a required service.
var (
	ErrMissingDocumentService = errors.New("mcp: document service is required")
	ErrMissingMemoryService   = errors.New("mcp: memory service is required")
	ErrMissingQueryService    = errors.New("mcp: query service is required")
	ErrMissingGateway         = errors.New("mcp: inference gateway is required")
)

// ToolError is a core failure reported to the client as a tool result.
// Its text starts with the stable error kind so callers can branch on it.
type ToolError struct {
	Kind domain.ErrorKind
	Err  error
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *ToolError) Unwrap() error {
	return e.Err
}

// toolError classifies err for the client. A nil error stays nil.
func toolError(err error) error {
	if err == nil {
		return nil
	}
	return &ToolError{Kind: domain.KindOf(err), Err: err}
}
