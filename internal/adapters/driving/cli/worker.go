package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/uancamilo/asistentelegal-sub001/internal/logger"
)

var workerSkipPing bool

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the pipeline workers",
	Long: `Runs the job queue workers and the stuck-document sweep until
interrupted. Pending extraction and embedding jobs are claimed and
executed; failed jobs are retried with exponential backoff.`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().BoolVar(&workerSkipPing, "skip-ping", false, "skip the embedding provider connectivity check")
	rootCmd.AddCommand(workerCmd)
}

// pinger is implemented by providers that can verify connectivity.
type pinger interface {
	Ping(ctx context.Context) error
}

func runWorker(cmd *cobra.Command, _ []string) error {
	if jobQueue == nil {
		if err := initServices(); err != nil {
			return err
		}
		defer closeStore()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !workerSkipPing {
		if p, ok := embedder.(pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return fmt.Errorf("embedding provider unreachable: %w", err)
			}
		}
	}

	logger.Info("Workers started (model %s)", embedder.ModelName())

	go func() {
		if err := sweeper.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("Sweeper stopped: %v", err)
		}
	}()
	defer sweeper.Stop()

	if err := jobQueue.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("worker pool: %w", err)
	}

	cmd.Println("Workers stopped.")
	return nil
}
