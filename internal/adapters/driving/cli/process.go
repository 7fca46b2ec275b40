package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

var (
	processProvider string
	processNoMemory bool
	processJSON     bool
)

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Summarize a document, extract facts and generate questions",
	Long: `Runs the three-stage pipeline over a UTF-8 text document: a summary,
the facts it states and comprehension questions about it.

The document is read from the file argument, or from stdin when no file
(or "-") is given. Unless --no-memory is set, the document and its results
are also stored in memory for later questions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processProvider, "provider", "p", "", "chat provider (default from settings)")
	processCmd.Flags().BoolVar(&processNoMemory, "no-memory", false, "do not store the document in memory")
	processCmd.Flags().BoolVar(&processJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(processCmd)
}

// processOutput is the JSON shape of the process command.
type processOutput struct {
	*domain.PipelineResult
	Memory      *domain.IngestReport `json:"memory,omitempty"`
	MemoryError string               `json:"memory_error,omitempty"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	text, source, err := readDocument(cmd, args)
	if err != nil {
		return err
	}

	resp, err := documentService.ProcessDocument(cmd.Context(), driving.ProcessRequest{
		Text:     text,
		Source:   source,
		Provider: domain.AIProvider(processProvider),
		Remember: !processNoMemory,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if processJSON {
		output := processOutput{PipelineResult: resp.Result, Memory: resp.Memory}
		if resp.MemoryErr != nil {
			output.MemoryError = FormatError(resp.MemoryErr)
		}
		return writeJSON(out, output)
	}

	printPipelineResult(out, resp.Result)
	switch {
	case resp.MemoryErr != nil:
		fmt.Fprintln(out, warningStyle.Render("Not stored in memory: "+FormatError(resp.MemoryErr)))
	case resp.Memory != nil:
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("Stored as %s (%d chunks)",
			resp.Memory.DocumentID, len(resp.Memory.ChunkIDs))))
	}
	return nil
}

func printPipelineResult(w io.Writer, result *domain.PipelineResult) {
	fmt.Fprintln(w, titleStyle.Render("Summary"))
	fmt.Fprintln(w, result.Summary)
	fmt.Fprintln(w)

	fmt.Fprintln(w, titleStyle.Render("Facts"))
	if len(result.Facts) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  (none extracted)"))
	}
	for i, fact := range result.Facts {
		fmt.Fprintf(w, "  %d. %s\n", i+1, fact)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, titleStyle.Render("Questions"))
	if len(result.Questions) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  (none generated)"))
	}
	for i, q := range result.Questions {
		fmt.Fprintf(w, "  %d. %s %s\n", i+1, headingStyle.Render("["+string(q.Type)+"]"), q.Text)
	}
	fmt.Fprintln(w)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
