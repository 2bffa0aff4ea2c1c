// Package cli implements the command-line interface. Commands wire the
// core services through package-level variables set during startup, so
// tests can swap mock services in.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uancamilo/asistentelegal-sub001/internal/adapters/driven/embedding/ollama"
	"github.com/uancamilo/asistentelegal-sub001/internal/adapters/driven/embedding/openai"
	"github.com/uancamilo/asistentelegal-sub001/internal/adapters/driven/fetch"
	"github.com/uancamilo/asistentelegal-sub001/internal/adapters/driven/queue"
	"github.com/uancamilo/asistentelegal-sub001/internal/adapters/driven/storage/sqlite"
	"github.com/uancamilo/asistentelegal-sub001/internal/chunker"
	"github.com/uancamilo/asistentelegal-sub001/internal/config"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/ports/driven"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/ports/driving"
	"github.com/uancamilo/asistentelegal-sub001/internal/core/services"
	"github.com/uancamilo/asistentelegal-sub001/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
)

// Services used by the commands. Populated by initServices; tests
// replace them with mocks.
var (
	documentService driving.DocumentService
	searchService   driving.SearchService
	processor       *services.Processor
	sweeper         *services.Sweeper
	jobQueue        driven.JobQueue
	embedder        driven.EmbeddingService
	store           *sqlite.Store
	cfg             *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "asistentelegal",
	Short: "Legal document ingestion and semantic search",
	Long: `asistentelegal ingests legal documents, extracts and chunks their
text with article-level citations, embeds the chunks and serves
semantic search over published documents.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initServices opens the store and wires the adapters and services.
// Called by commands that need more than flag parsing.
func initServices() error {
	if documentService != nil {
		return nil
	}

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	store, err = sqlite.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	embedder, err = newEmbedder(cfg)
	if err != nil {
		return err
	}

	jobQueue = queue.NewWorker(store.JobStore(), queue.Config{
		Concurrency:  cfg.Worker.Concurrency,
		PollInterval: cfg.PollInterval(),
	})

	chunkOpts := chunker.Options{
		TargetSize: cfg.Chunker.TargetSize,
		MinSize:    cfg.Chunker.MinSize,
		MaxSize:    cfg.Chunker.MaxSize,
		Overlap:    cfg.Chunker.Overlap,
	}

	fetcher := fetch.NewFetcher(fetch.Config{
		Timeout:  cfg.FetchTimeout(),
		MaxBytes: cfg.Fetch.MaxBytes,
	})

	processor = services.NewProcessor(
		store.DocumentStore(),
		store.ChunkStore(),
		embedder,
		fetcher,
		fetch.NewExtractor(),
		jobQueue,
		chunkOpts,
	)
	processor.Register()

	sweeper = services.NewSweeper(store.DocumentStore(), jobQueue,
		cfg.SweepInterval(), cfg.StuckTimeout())

	documentService = services.NewDocumentService(store.DocumentStore(), store.ChunkStore(), jobQueue)
	searchService = services.NewSearchService(store.ChunkStore(), embedder)

	return nil
}

// newEmbedder builds the embedding provider selected in config.
func newEmbedder(cfg *config.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		svc, err := openai.NewEmbeddingService(openai.Config{
			APIKey:            cfg.Embedding.APIKey,
			BaseURL:           cfg.Embedding.BaseURL,
			Model:             cfg.Embedding.Model,
			Dimensions:        cfg.Embedding.Dimensions,
			BatchSize:         cfg.Embedding.BatchSize,
			RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		})
		if err != nil {
			return nil, fmt.Errorf("configure openai embeddings: %w", err)
		}
		return svc, nil
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		}), nil
	case "":
		return nil, errors.New("no embedding provider configured")
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

// closeStore releases the database. Called by commands on exit.
func closeStore() {
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close store: %v", err)
		}
	}
}
