package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tenancydeposit/tribunalrag/internal/engine"
)

func ingestCmd(cfgPath *string) *cobra.Command {
	var pdfDir string
	var batchSize int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest tribunal PDFs into the corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine(*cfgPath)
			if err != nil {
				return err
			}
			defer eng.Close()

			ctx := context.Background()
			stats, err := eng.Ingest(ctx, pdfDir, engine.IngestOptions{BatchSize: batchSize})
			if err != nil {
				return err
			}

			fmt.Printf("documents_in=%d documents_ok=%d documents_skipped=%d chunks_created=%d embedding_tokens=%d cost_estimate=$%.4f\n",
				stats.DocumentsIn, stats.DocumentsOK, stats.DocumentsSkipped, stats.ChunksCreated, stats.EmbeddingTokens, stats.CostEstimate)
			return nil
		},
	}
	cmd.Flags().StringVar(&pdfDir, "pdf-dir", "", "directory of tribunal PDFs to ingest")
	cmd.Flags().IntVar(&batchSize, "batch-size", 50, "accepted but not applied; embedding batches follow embedding.batch_size in the config")
	cmd.MarkFlagRequired("pdf-dir")
	return cmd
}
