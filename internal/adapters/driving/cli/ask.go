package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

var (
	askProvider string
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from remembered documents",
	Long: `Retrieves the stored chunks most relevant to the question and asks the
chat provider to answer from them. When memory holds nothing relevant the
provider still answers, and the answer is marked as not grounded.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askProvider, "provider", "p", "", "chat provider (default from settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errNotConfigured("query")
	}

	question := strings.Join(args, " ")
	result, err := queryService.Answer(cmd.Context(), question, domain.AIProvider(askProvider))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if askJSON {
		return writeJSON(out, result)
	}

	fmt.Fprintln(out, titleStyle.Render("Answer"))
	fmt.Fprintln(out, result.Answer)
	fmt.Fprintln(out)

	if !result.Grounded {
		fmt.Fprintln(out, mutedStyle.Render("No stored documents matched; this answer is not grounded in memory."))
		return nil
	}

	fmt.Fprintln(out, titleStyle.Render("Sources"))
	for i, src := range result.Sources {
		fmt.Fprintf(out, "  [%d] %s %s\n", i+1,
			headingStyle.Render(fmt.Sprintf("(%.2f)", src.Score)),
			domain.Truncate(strings.Join(strings.Fields(src.Text), " "), 120))
		if src.Summary != "" {
			fmt.Fprintf(out, "      %s\n", mutedStyle.Render("Summary: "+domain.Truncate(src.Summary, 100)))
		}
	}
	return nil
}
