package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	memoryJSON     bool
	memoryClearYes bool
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect or clear semantic memory",
}

var memoryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many chunks are stored",
	Args:  cobra.NoArgs,
	RunE:  runMemoryStats,
}

var memoryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every stored chunk",
	Long: `Removes every chunk from memory in one step. Queries running at the same
time see either all chunks or none.`,
	Args: cobra.NoArgs,
	RunE: runMemoryClear,
}

func init() {
	memoryStatsCmd.Flags().BoolVar(&memoryJSON, "json", false, "output stats as JSON")
	memoryClearCmd.Flags().BoolVarP(&memoryClearYes, "yes", "y", false, "do not ask for confirmation")
	memoryCmd.AddCommand(memoryStatsCmd)
	memoryCmd.AddCommand(memoryClearCmd)
	rootCmd.AddCommand(memoryCmd)
}

func runMemoryStats(cmd *cobra.Command, _ []string) error {
	if memoryService == nil {
		return errNotConfigured("memory")
	}

	stats, err := memoryService.Stats(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if memoryJSON {
		return writeJSON(out, stats)
	}

	fmt.Fprintln(out, titleStyle.Render("Memory"))
	fmt.Fprintf(out, "  Collection: %s\n", stats.Collection)
	fmt.Fprintf(out, "  Chunks: %d\n", stats.TotalChunks)
	fmt.Fprintf(out, "  Dimensions: %d\n", stats.Dimensions)
	if len(stats.Samples) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, headingStyle.Render("Recent chunks"))
	for _, s := range stats.Samples {
		fmt.Fprintf(out, "  %s %s\n",
			mutedStyle.Render(s.Timestamp.Local().Format("2006-01-02 15:04")),
			strings.Join(strings.Fields(s.Preview), " "))
	}
	return nil
}

func runMemoryClear(cmd *cobra.Command, _ []string) error {
	if memoryService == nil {
		return errNotConfigured("memory")
	}

	out := cmd.OutOrStdout()
	if !memoryClearYes {
		fmt.Fprint(out, "Remove every stored chunk? [y/N]: ")
		answer := readLine(bufio.NewReader(cmd.InOrStdin()))
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	if err := memoryService.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(out, successStyle.Render("Memory cleared."))
	return nil
}
