// Command docmind is the document intelligence CLI and MCP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docmind/internal/adapters/driven/ai"
	"github.com/custodia-labs/docmind/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docmind/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docmind/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docmind/internal/adapters/driving/cli"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/core/services"
	"github.com/custodia-labs/docmind/internal/logger"
	"github.com/custodia-labs/docmind/internal/postprocessors"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	logger.SetVerbose(hasVerboseFlag(os.Args[1:]))
	loadDotEnv()

	app, err := bootstrap(ctx)
	if app == nil {
		logger.Error("%s", cli.FormatError(err))
		return 1
	}
	defer app.Close()
	if err != nil {
		logger.Error("%s", cli.FormatError(err))
		logger.Error("Only settings and provider commands are available until this is fixed.")
	}

	cli.SetVersion(version)
	cli.SetServices(app.services)
	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}

// app owns everything bootstrap opened.
type app struct {
	services cli.Services
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// bootstrap wires settings, providers, memory and the core services.
// When the settings layer works but a later step fails, it returns a
// partial app carrying only settings and the provider registry, plus the error.
func bootstrap(ctx context.Context) (*app, error) {
	home, err := file.HomeDir()
	if err != nil {
		return nil, err
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	a := &app{services: cli.Services{Settings: settingsService}}

	// Chat backends are wired even when the embedding side fails, so that
	// provider and settings commands keep working.
	aiResult, initErr := ai.Initialise(settings)
	var backends []driven.LLMBackend
	var warnings []string
	if initErr == nil {
		backends, warnings = aiResult.Backends, aiResult.Warnings
		a.closers = append(a.closers, aiResult.Close)
	} else {
		backends, warnings = ai.CreateLLMBackends(settings)
	}
	for _, w := range warnings {
		logger.Warn("Provider unavailable: %s", w)
	}
	gateway := services.NewGateway(backends)
	a.services.Gateway = gateway
	var (
		pipeline *services.PipelineService
		query    *services.QueryService
	)
	a.services.Reload = func() error {
		if err := configStore.Load(); err != nil {
			return fmt.Errorf("reloading config: %w", err)
		}
		updated, err := settingsService.Get()
		if err != nil {
			return err
		}
		backends, warnings := ai.CreateLLMBackends(updated)
		for _, w := range warnings {
			logger.Warn("Provider unavailable: %s", w)
		}
		gateway.Reload(backends)
		if pipeline != nil {
			pipeline.SetDefaultProvider(updated.DefaultProvider)
			query.SetDefaultProvider(updated.DefaultProvider)
		}
		return nil
	}
	if initErr != nil {
		return a, initErr
	}
	embedder := aiResult.EmbeddingService

	var repo driven.MemoryRepository
	if settings.Memory.Persist {
		store, err := sqlite.NewStore(filepath.Join(home, "data"))
		if err != nil {
			return a, fmt.Errorf("opening memory database: %w", err)
		}
		logger.Debug("Memory database: %s", store.Path())
		repo = store
	} else {
		repo = memory.NewMemoryStore()
	}
	a.closers = append(a.closers, func() { repo.Close() })

	memoryService, err := services.NewMemoryService(ctx, embedder, postprocessors.NewChunker(settings.Memory), repo,
		services.MemoryConfig{
			Collection: settings.Memory.Collection,
			TopK:       settings.Memory.TopK,
			Workers:    settings.Memory.Workers,
		})
	if err != nil {
		return a, err
	}

	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		return a, err
	}

	pipeline = services.NewPipelineService(gateway, prompts, settings.DefaultProvider)
	query = services.NewQueryService(gateway, memoryService, prompts, settings.DefaultProvider, settings.Memory.TopK)
	a.services.Memory = memoryService
	a.services.Document = services.NewDocumentService(pipeline, memoryService)
	a.services.Query = query
	return a, nil
}

// loadDotEnv loads .env from the working directory, then from the docmind
// home. Variables already set in the environment are kept.
func loadDotEnv() {
	load := func(path string) {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Ignoring %s: %v", path, err)
		}
	}
	load(".env")
	if home, err := file.HomeDir(); err == nil {
		load(filepath.Join(home, ".env"))
	}
}

func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" || a == "--verbose=true" {
			return true
		}
	}
	return false
}
