package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uancamilo/asistentelegal-sub001/internal/core/ports/driving"
)

var (
	ingestTitle   string
	ingestSummary string
	ingestURL     string
	ingestFile    string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Submit a document to the processing pipeline",
	Long: `Submits a legal document for processing. Give either --url to
download and extract the source (PDF or plain text), or --file with
pre-extracted text. Processing is asynchronous; run "worker" to
execute the pipeline and "status" to follow progress.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "document title (required)")
	ingestCmd.Flags().StringVarP(&ingestSummary, "summary", "s", "", "short description")
	ingestCmd.Flags().StringVarP(&ingestURL, "url", "u", "", "source URL to download")
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "file with pre-extracted text")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		if err := initServices(); err != nil {
			return err
		}
		defer closeStore()
	}

	req := driving.SubmitRequest{
		Title:     ingestTitle,
		Summary:   ingestSummary,
		SourceURL: ingestURL,
	}

	if ingestFile != "" {
		if ingestURL != "" {
			return errors.New("--url and --file are mutually exclusive")
		}
		data, err := os.ReadFile(ingestFile)
		if err != nil {
			return fmt.Errorf("read text file: %w", err)
		}
		req.RawText = string(data)
	}

	id, err := documentService.Submit(context.Background(), req)
	if err != nil {
		return fmt.Errorf("submit document: %w", err)
	}

	cmd.Printf("Document submitted: %s\n", id)
	cmd.Println("Run 'asistentelegal worker' to process it.")
	return nil
}
