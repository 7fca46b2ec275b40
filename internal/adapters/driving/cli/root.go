// Package cli provides the docmind command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
	"github.com/custodia-labs/docmind/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services wired by main. Commands report a configuration error when the
// service they need is missing.
var (
	documentService driving.DocumentService
	memoryService   driving.MemoryService
	queryService    driving.QueryService
	gatewayService  driving.InferenceGateway
	settingsService driving.SettingsService

	// reloadProviders rebuilds the provider registry from configuration.
	reloadProviders func() error
)

// Services holds the core services the CLI drives.
type Services struct {
	Document driving.DocumentService
	Memory   driving.MemoryService
	Query    driving.QueryService
	Gateway  driving.InferenceGateway
	Settings driving.SettingsService

	// Reload re-reads configuration and rebuilds the provider registry.
	// Optional; without it mcp serve does not hot-reload.
	Reload func() error
}

// SetServices injects the core services.
func SetServices(s Services) {
	documentService = s.Document
	memoryService = s.Memory
	queryService = s.Query
	gatewayService = s.Gateway
	settingsService = s.Settings
	reloadProviders = s.Reload
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docmind",
	Short: "Document intelligence from the command line",
	Long: `docmind summarizes documents, extracts facts, generates questions and
remembers what it has read so that later questions are answered from it.

Providers (Groq, OpenAI, Anthropic, Ollama) are configured in
~/.docmind/config.toml or through GROQ_API_KEY, OPENAI_API_KEY,
ANTHROPIC_API_KEY and OLLAMA_HOST.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print diagnostic output to stderr")
}

// Execute runs the root command. Failures are printed to stderr as
// "error [kind]: message" and returned.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// FormatError renders err with its stable kind.
func FormatError(err error) string {
	return fmt.Sprintf("error [%s]: %v", domain.KindOf(err), err)
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render(FormatError(err)))
}

// errNotConfigured reports a service main did not wire.
func errNotConfigured(name string) error {
	return fmt.Errorf("%s service not configured", name)
}

// errUsage marks a user mistake so it is reported as invalid input.
func errUsage(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}
