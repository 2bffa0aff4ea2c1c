package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var reprocessCmd = &cobra.Command{
	Use:   "reprocess [document-id]",
	Short: "Re-run chunking and embedding for a document",
	Long: `Re-enqueues the embedding stage for a document whose text was
already extracted. The existing chunks stay searchable until the new
run replaces them.`,
	Args: cobra.ExactArgs(1),
	RunE: runReprocess,
}

func init() {
	rootCmd.AddCommand(reprocessCmd)
}

func runReprocess(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		if err := initServices(); err != nil {
			return err
		}
		defer closeStore()
	}

	if err := documentService.Reprocess(context.Background(), args[0]); err != nil {
		return fmt.Errorf("reprocess document: %w", err)
	}

	cmd.Printf("Embedding re-enqueued for %s\n", args[0])
	return nil
}
