package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

var ingestSource string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Store a document in memory without processing it",
	Long: `Chunks, embeds and stores a UTF-8 text document so later questions can
draw on it. No chat provider is called.

The document is read from the file argument, or from stdin when no file
(or "-") is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "source name recorded with the document")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if memoryService == nil {
		return errNotConfigured("memory")
	}

	text, source, err := readDocument(cmd, args)
	if err != nil {
		return err
	}
	if ingestSource != "" {
		source = ingestSource
	}

	report, err := memoryService.Ingest(cmd.Context(), domain.IngestRequest{Text: text, Source: source})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s (%d chunks)\n",
		successStyle.Render("Stored"), report.DocumentID, len(report.ChunkIDs))
	for _, f := range report.Failures {
		fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("  chunk %d skipped: %s", f.Position, f.Reason)))
	}
	return nil
}
