package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status [document-id]",
	Short: "Show pipeline status for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		if err := initServices(); err != nil {
			return err
		}
		defer closeStore()
	}

	status, err := documentService.Status(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("fetch status: %w", err)
	}

	if statusJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Extraction: %s\n", status.ProcessingStatus)
	cmd.Printf("Embedding:  %s\n", status.EmbeddingStatus)
	cmd.Printf("Chunks:     %d\n", status.ChunksCount)
	if status.EmbeddingError != nil {
		cmd.Printf("Last error: %s\n", *status.EmbeddingError)
	}
	return nil
}
