package main

import (
	"fmt"
	"time"

	"github.com/hupe1980/roomsearch/dataset"
	"github.com/hupe1980/roomsearch/ingest"
	"github.com/spf13/cobra"
)

func newIngestCmd(verbose *bool) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Upload the dataset artifact into the S3 vector index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx, *verbose)
			if err != nil {
				return err
			}
			if input == "" {
				input = app.cfg.ArtifactPath
			}

			records, err := dataset.ReadArtifact(input)
			if err != nil {
				return err
			}
			fmt.Printf("Read %d records from %s\n", len(records), input)

			if err := app.store.EnsureIndex(ctx); err != nil {
				return err
			}

			start := time.Now()
			ingestor := ingest.New(app.store,
				ingest.WithBatchSize(app.cfg.BatchSize),
				ingest.WithProgressEvery(app.cfg.ProgressEvery),
				ingest.WithLogger(app.logger),
			)

			report, err := ingestor.Run(ctx, records)
			if err != nil {
				return err
			}

			fmt.Printf("Ingested %d vectors (%d skipped, %d failed) in %s\n",
				report.Ingested, report.Skipped, len(report.FailedKeys),
				time.Since(start).Round(time.Second))
			for _, key := range report.FailedKeys {
				fmt.Printf("  failed: %s\n", key)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "artifact path (defaults to DATASET_CSV)")

	return cmd
}
