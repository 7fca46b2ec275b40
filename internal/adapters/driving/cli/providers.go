package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

var providersJSON bool

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List and check inference providers",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List providers and whether they are configured",
	Args:  cobra.NoArgs,
	RunE:  runProvidersList,
}

var providersCheckCmd = &cobra.Command{
	Use:   "check [provider]",
	Short: "Ping configured providers",
	Long: `Sends a connectivity probe to the named chat provider, or to every
configured chat provider and the embedding provider when none is named.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProvidersCheck,
}

func init() {
	providersListCmd.Flags().BoolVar(&providersJSON, "json", false, "output providers as JSON")
	providersCmd.AddCommand(providersListCmd)
	providersCmd.AddCommand(providersCheckCmd)
	rootCmd.AddCommand(providersCmd)
}

func runProvidersList(cmd *cobra.Command, _ []string) error {
	if gatewayService == nil {
		return errNotConfigured("inference")
	}

	providers := gatewayService.ListProviders()
	names := domain.SortedProviders(providers)
	out := cmd.OutOrStdout()

	if providersJSON {
		list := make([]domain.ProviderDescriptor, len(names))
		for i, name := range names {
			list[i] = providers[name]
		}
		return writeJSON(out, list)
	}

	fmt.Fprintln(out, titleStyle.Render("Providers"))
	for _, name := range names {
		d := providers[name]
		caps := make([]string, len(d.Capabilities))
		for i, c := range d.Capabilities {
			caps[i] = string(c)
		}
		fmt.Fprintf(out, "  %-10s %-28s %s %s\n", name, d.Model, statusText(d.Configured),
			mutedStyle.Render("("+strings.Join(caps, ", ")+")"))
		if !d.Configured && name.RequiresAPIKey() {
			fmt.Fprintf(out, "  %-10s %s\n", "", mutedStyle.Render("set "+name.APIKeyEnv()+" or run 'docmind settings set-key "+string(name)+"'"))
		}
	}
	return nil
}

func runProvidersCheck(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if len(args) == 1 {
		provider := domain.AIProvider(strings.ToLower(args[0]))
		fmt.Fprintf(out, "Checking %s... ", provider)
		if err := settingsService.ValidateProvider(ctx, provider); err != nil {
			fmt.Fprintln(out, errorStyle.Render("FAILED"))
			return err
		}
		fmt.Fprintln(out, successStyle.Render("OK"))
		return nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	var failed int
	for _, p := range domain.AllLLMProviders() {
		if !settings.Providers[p].IsConfigured() {
			fmt.Fprintf(out, "  %-10s %s\n", p, mutedStyle.Render("skipped (not configured)"))
			continue
		}
		if err := settingsService.ValidateProvider(ctx, p); err != nil {
			failed++
			fmt.Fprintf(out, "  %-10s %s %v\n", p, errorStyle.Render("FAILED"), err)
			continue
		}
		fmt.Fprintf(out, "  %-10s %s\n", p, successStyle.Render("OK"))
	}

	embedding := "embedding (" + string(settings.Embedding.Provider) + ")"
	if err := settingsService.ValidateEmbedding(ctx); err != nil {
		failed++
		fmt.Fprintf(out, "  %s %s %v\n", embedding, errorStyle.Render("FAILED"), err)
	} else {
		fmt.Fprintf(out, "  %s %s\n", embedding, successStyle.Render("OK"))
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d provider check(s) failed", domain.ErrProviderError, failed)
	}
	return nil
}
