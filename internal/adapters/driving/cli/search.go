package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

var (
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find stored chunks similar to a query",
	Long: `Ranks stored chunks by semantic similarity to the query. No chat
provider is called. Equal scores list the most recently stored chunk first.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 5, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

// searchHit is the JSON shape of one search result.
type searchHit struct {
	ChunkID    string           `json:"chunk_id"`
	DocumentID string           `json:"document_id"`
	Kind       domain.ChunkKind `json:"kind"`
	Score      float64          `json:"relevance_score"`
	Text       string           `json:"text"`
	Source     string           `json:"source,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	if memoryService == nil {
		return errNotConfigured("memory")
	}
	if searchTopK <= 0 {
		return errUsage("--top-k must be positive")
	}

	hits, err := memoryService.Query(cmd.Context(), args[0], searchTopK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if searchJSON {
		results := make([]searchHit, len(hits))
		for i, h := range hits {
			results[i] = searchHit{
				ChunkID:    h.Chunk.ID,
				DocumentID: h.Chunk.DocumentID,
				Kind:       h.Chunk.Kind,
				Score:      h.Score,
				Text:       h.Chunk.Text,
				Source:     h.Chunk.Metadata.Source,
			}
		}
		return writeJSON(out, results)
	}

	if len(hits) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	fmt.Fprintln(out, titleStyle.Render("Results"))
	for i, h := range hits {
		fmt.Fprintf(out, "  [%d] %s %s\n", i+1,
			headingStyle.Render(fmt.Sprintf("(%.2f)", h.Score)),
			domain.Truncate(strings.Join(strings.Fields(h.Chunk.Text), " "), 120))
		if h.Chunk.Metadata.Source != "" {
			fmt.Fprintf(out, "      %s\n", mutedStyle.Render("Source: "+h.Chunk.Metadata.Source))
		}
	}
	return nil
}
