package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure providers, embeddings and memory.

Settings live in ~/.docmind/config.toml (or $DOCMIND_HOME/config.toml).
API keys from GROQ_API_KEY, OPENAI_API_KEY and ANTHROPIC_API_KEY, and the
OLLAMA_HOST endpoint, take precedence over the file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a single configuration value by dotted key.

Keys:
  llm.default_provider
  llm.<provider>.api_key | model | base_url | timeout_seconds | requests_per_second
  embedding.provider | model | base_url | api_key | dimensions
  memory.collection | top_k | chunk_size | chunk_overlap | workers | persist`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key [provider]",
	Short: "Store a provider API key",
	Long:  `Prompts for the API key without echoing it and stores it in the config file.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsSetKey,
}

var settingsDefaultCmd = &cobra.Command{
	Use:   "default [provider]",
	Short: "Select the default chat provider",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsDefault,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	settingsCmd.AddCommand(settingsDefaultCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("Current Settings"))
	fmt.Fprintf(out, "  Config file: %s\n", settingsService.ConfigPath())
	fmt.Fprintf(out, "  Default provider: %s\n", settings.DefaultProvider)
	fmt.Fprintln(out)

	fmt.Fprintln(out, headingStyle.Render("[LLM]"))
	for _, p := range domain.AllLLMProviders() {
		ps := settings.Providers[p]
		fmt.Fprintf(out, "  %s: %s\n", p.Description(), statusText(ps.IsConfigured()))
		fmt.Fprintf(out, "    Model: %s\n", ps.Model)
		if ps.BaseURL != "" {
			fmt.Fprintf(out, "    Base URL: %s\n", ps.BaseURL)
		}
		if p.RequiresAPIKey() {
			if ps.APIKey != "" {
				fmt.Fprintf(out, "    API Key: %s\n", maskAPIKey(ps.APIKey))
			} else {
				fmt.Fprintf(out, "    API Key: (not set)\n")
			}
		}
		fmt.Fprintf(out, "    Timeout: %s\n", ps.Timeout)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, headingStyle.Render("[Embedding]"))
	fmt.Fprintf(out, "  Provider: %s\n", settings.Embedding.Provider.Description())
	fmt.Fprintf(out, "  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Dimensions > 0 {
		fmt.Fprintf(out, "  Dimensions: %d\n", settings.Embedding.Dimensions)
	}
	if settings.Embedding.BaseURL != "" {
		fmt.Fprintf(out, "  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	fmt.Fprintf(out, "  Status: %s\n", statusText(settings.Embedding.IsConfigured()))
	fmt.Fprintln(out)

	fmt.Fprintln(out, headingStyle.Render("[Memory]"))
	fmt.Fprintf(out, "  Collection: %s\n", settings.Memory.Collection)
	fmt.Fprintf(out, "  Top K: %d\n", settings.Memory.TopK)
	fmt.Fprintf(out, "  Chunk size: %d (overlap %d)\n", settings.Memory.ChunkSize, settings.Memory.ChunkOverlap)
	fmt.Fprintf(out, "  Workers: %d\n", settings.Memory.Workers)
	fmt.Fprintf(out, "  Persist: %t\n", settings.Memory.Persist)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	value := args[1]
	if strings.HasSuffix(args[0], "api_key") {
		value = maskAPIKey(value)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], value)
	return nil
}

func runSettingsSetKey(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	provider := domain.AIProvider(strings.ToLower(args[0]))
	if !provider.RequiresAPIKey() {
		return errUsage("%s does not use an API key", args[0])
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Enter %s API key: ", provider)
	apiKey := readPassword(cmd.InOrStdin())
	fmt.Fprintln(out)

	if err := settingsService.SetAPIKey(provider, apiKey); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s API key stored (%s)\n", provider.Description(), maskAPIKey(strings.TrimSpace(apiKey)))
	return nil
}

func runSettingsDefault(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	provider := domain.AIProvider(strings.ToLower(args[0]))
	if err := settingsService.SetDefaultProvider(provider); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Default provider set to: %s\n", provider.Description())
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// readPassword reads a secret without echo when in is a terminal.
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(bufio.NewReader(in))
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
