package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmind/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docmind/internal/adapters/driving/mcp"
	"github.com/custodia-labs/docmind/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC. Use --port to
serve streamable HTTP instead.

While serving, edits to config.toml are picked up without a restart: the
provider registry is rebuilt, a changed default provider applies to the next
request, and requests already in flight finish on the providers they started
with. Embedding and memory settings need a restart.

Examples:
  # Stdio mode (default)
  docmind mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  docmind mcp serve --port 8080

Desktop assistant configuration:
  {
    "mcpServers": {
      "docmind": {
        "command": "/path/to/docmind",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("watch", true, "reload providers when config.toml changes")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("getting watch flag: %w", err)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Document: documentService,
		Memory:   memoryService,
		Query:    queryService,
		Gateway:  gatewayService,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if watch {
		startConfigWatch(ctx)
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

// startConfigWatch reloads providers whenever the config file changes.
// It is a no-op without a reload hook or a file-backed config.
func startConfigWatch(ctx context.Context) {
	if reloadProviders == nil || settingsService == nil {
		return
	}

	w, err := file.NewWatcher(settingsService.ConfigPath(), file.DefaultDebounce)
	if err != nil {
		logger.Warn("Config hot-reload disabled: %v", err)
		return
	}

	go func() {
		defer w.Close()
		err := w.Run(ctx, func() {
			if err := reloadProviders(); err != nil {
				logger.Error("Reloading providers: %v", err)
				return
			}
			logger.Info("Providers reloaded from %s", settingsService.ConfigPath())
		})
		if err != nil && ctx.Err() == nil {
			logger.Warn("Config watcher stopped: %v", err)
		}
	}()
}
