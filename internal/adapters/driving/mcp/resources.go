package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for docmind resources.
	uriScheme = "docmind://"

	statsURI     = uriScheme + "memory/stats"
	providersURI = uriScheme + "providers"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         statsURI,
		Name:        "memory-stats",
		Description: "Number of stored chunks and the most recent ones",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         providersURI,
		Name:        "providers",
		Description: "Inference providers and their configuration state",
		MIMEType:    "application/json",
	}, s.handleProvidersResource)
}

// handleStatsResource returns memory statistics as JSON.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Memory.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading memory stats: %w", err)
	}
	return jsonResource(req.Params.URI, statsOutput(stats))
}

// handleProvidersResource returns the provider registry as JSON.
func (s *Server) handleProvidersResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, providersOutput(s.ports.Gateway.ListProviders()).Providers)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
