package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

// ProcessInput is the input schema for the process_document tool.
type ProcessInput struct {
	Text     string `json:"text" jsonschema:"the decoded document text"`
	Source   string `json:"source,omitempty" jsonschema:"optional originating filename"`
	Provider string `json:"provider,omitempty" jsonschema:"chat provider (groq, openai, anthropic, ollama); default when empty"`
	Remember bool   `json:"remember,omitempty" jsonschema:"also store the document in memory"`
}

// QuestionOutput is a generated question.
type QuestionOutput struct {
	Type     string `json:"type"`
	Question string `json:"question"`
}

// ProcessOutput is the output schema for the process_document tool.
type ProcessOutput struct {
	Summary      string           `json:"summary"`
	Facts        []string         `json:"facts"`
	Questions    []QuestionOutput `json:"questions"`
	DocumentID   string           `json:"document_id,omitempty"`
	ChunksStored int              `json:"chunks_stored"`
	MemoryError  string           `json:"memory_error,omitempty"`
}

// IngestInput is the input schema for the ingest_document tool.
type IngestInput struct {
	Text   string `json:"text" jsonschema:"the decoded document text"`
	Source string `json:"source,omitempty" jsonschema:"optional originating filename"`
}

// IngestOutput is the output schema for the ingest_document tool.
type IngestOutput struct {
	DocumentID   string `json:"document_id"`
	ChunksStored int    `json:"chunks_stored"`
	ChunksFailed int    `json:"chunks_failed"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"natural-language question about remembered documents"`
	Provider string `json:"provider,omitempty" jsonschema:"chat provider; default when empty"`
}

// SourceOutput is a chunk cited by an answer.
type SourceOutput struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"relevance_score"`
	Text       string  `json:"text"`
	Summary    string  `json:"summary,omitempty"`
	Timestamp  string  `json:"timestamp"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string         `json:"answer"`
	Grounded bool           `json:"grounded"`
	Sources  []SourceOutput `json:"sources"`
}

// SearchInput is the input schema for the search_memory tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to find similar stored chunks for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (default 5)"`
}

// SearchOutput is the output schema for the search_memory tool.
type SearchOutput struct {
	Results []SourceOutput `json:"results"`
	Count   int            `json:"count"`
}

// SampleOutput previews a stored chunk.
type SampleOutput struct {
	ChunkID   string `json:"chunk_id"`
	Preview   string `json:"preview"`
	Summary   string `json:"summary,omitempty"`
	Timestamp string `json:"timestamp"`
}

// StatsOutput is the output schema for the memory_stats tool.
type StatsOutput struct {
	TotalChunks int            `json:"total_chunks"`
	Collection  string         `json:"collection"`
	Dimensions  int            `json:"dimensions"`
	Samples     []SampleOutput `json:"samples"`
}

// ClearOutput is the output schema for the clear_memory tool.
type ClearOutput struct {
	Cleared bool `json:"cleared"`
}

// ProviderOutput describes a provider.
type ProviderOutput struct {
	Name         string   `json:"name"`
	Configured   bool     `json:"configured"`
	Model        string   `json:"model"`
	Capabilities []string `json:"capabilities"`
}

// ProvidersOutput is the output schema for the list_providers tool.
type ProvidersOutput struct {
	Providers []ProviderOutput `json:"providers"`
}

// EmptyInput is the input schema of tools that take no arguments.
type EmptyInput struct{}

// defaultTopK is used by search_memory when top_k is not given.
const defaultTopK = 5

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "process_document",
		Description: "Summarize a document, extract facts and generate questions",
	}, s.handleProcess)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Store a document in semantic memory without processing it",
	}, s.handleIngest)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from remembered documents",
	}, s.handleAsk)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_memory",
		Description: "Find the stored chunks most similar to a query",
	}, s.handleSearch)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "memory_stats",
		Description: "Report how many chunks are stored and show recent ones",
	}, s.handleStats)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_memory",
		Description: "Remove every stored chunk",
	}, s.handleClear)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_providers",
		Description: "List inference providers and whether they are configured",
	}, s.handleListProviders)
}

func (s *Server) handleProcess(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProcessInput,
) (*mcp.CallToolResult, ProcessOutput, error) {
	resp, err := s.ports.Document.ProcessDocument(ctx, driving.ProcessRequest{
		Text:     input.Text,
		Source:   input.Source,
		Provider: domain.AIProvider(input.Provider),
		Remember: input.Remember,
	})
	if err != nil {
		return nil, ProcessOutput{}, toolError(err)
	}

	output := ProcessOutput{
		Summary:   resp.Result.Summary,
		Facts:     resp.Result.Facts,
		Questions: make([]QuestionOutput, len(resp.Result.Questions)),
	}
	for i, q := range resp.Result.Questions {
		output.Questions[i] = QuestionOutput{Type: string(q.Type), Question: q.Text}
	}
	if resp.Memory != nil {
		output.DocumentID = resp.Memory.DocumentID
		output.ChunksStored = len(resp.Memory.ChunkIDs)
	}
	if resp.MemoryErr != nil {
		output.MemoryError = toolError(resp.MemoryErr).Error()
	}
	return nil, output, nil
}

func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	report, err := s.ports.Memory.Ingest(ctx, domain.IngestRequest{Text: input.Text, Source: input.Source})
	if err != nil {
		return nil, IngestOutput{}, toolError(err)
	}
	return nil, IngestOutput{
		DocumentID:   report.DocumentID,
		ChunksStored: len(report.ChunkIDs),
		ChunksFailed: len(report.Failures),
	}, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	result, err := s.ports.Query.Answer(ctx, input.Question, domain.AIProvider(input.Provider))
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	output := AskOutput{
		Answer:   result.Answer,
		Grounded: result.Grounded,
		Sources:  make([]SourceOutput, len(result.Sources)),
	}
	for i, src := range result.Sources {
		output.Sources[i] = SourceOutput{
			ChunkID:    src.ChunkID,
			DocumentID: src.DocumentID,
			Score:      src.Score,
			Text:       src.Text,
			Summary:    src.Summary,
			Timestamp:  formatTime(src.Timestamp),
		}
	}
	return nil, output, nil
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	hits, err := s.ports.Memory.Query(ctx, input.Query, topK)
	if err != nil {
		return nil, SearchOutput{}, toolError(err)
	}

	output := SearchOutput{
		Results: make([]SourceOutput, len(hits)),
		Count:   len(hits),
	}
	for i, hit := range hits {
		output.Results[i] = SourceOutput{
			ChunkID:    hit.Chunk.ID,
			DocumentID: hit.Chunk.DocumentID,
			Score:      hit.Score,
			Text:       hit.Chunk.Text,
			Summary:    hit.Chunk.Metadata.Summary,
			Timestamp:  formatTime(hit.Chunk.Metadata.Timestamp),
		}
	}
	return nil, output, nil
}

func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Memory.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, toolError(err)
	}
	return nil, statsOutput(stats), nil
}

func (s *Server) handleClear(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, ClearOutput, error) {
	if err := s.ports.Memory.Clear(ctx); err != nil {
		return nil, ClearOutput{}, toolError(err)
	}
	return nil, ClearOutput{Cleared: true}, nil
}

func (s *Server) handleListProviders(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, ProvidersOutput, error) {
	return nil, providersOutput(s.ports.Gateway.ListProviders()), nil
}

func statsOutput(stats *domain.MemoryStats) StatsOutput {
	output := StatsOutput{
		TotalChunks: stats.TotalChunks,
		Collection:  stats.Collection,
		Dimensions:  stats.Dimensions,
		Samples:     make([]SampleOutput, len(stats.Samples)),
	}
	for i, sample := range stats.Samples {
		output.Samples[i] = SampleOutput{
			ChunkID:   sample.ChunkID,
			Preview:   sample.Preview,
			Summary:   sample.Summary,
			Timestamp: formatTime(sample.Timestamp),
		}
	}
	return output
}

func providersOutput(providers map[domain.AIProvider]domain.ProviderDescriptor) ProvidersOutput {
	output := ProvidersOutput{Providers: make([]ProviderOutput, 0, len(providers))}
	for _, name := range domain.SortedProviders(providers) {
		d := providers[name]
		caps := make([]string, len(d.Capabilities))
		for i, c := range d.Capabilities {
			caps[i] = string(c)
		}
		output.Providers = append(output.Providers, ProviderOutput{
			Name:         string(d.Name),
			Configured:   d.Configured,
			Model:        d.Model,
			Capabilities: caps,
		})
	}
	return output
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
