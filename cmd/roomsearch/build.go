package main

import (
	"fmt"
	"time"

	"github.com/hupe1980/roomsearch/dataset"
	"github.com/hupe1980/roomsearch/pipeline"
	"github.com/spf13/cobra"
)

func newBuildCmd(verbose *bool) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Scan the image tree and compute one embedding per image",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx, *verbose)
			if err != nil {
				return err
			}
			if output == "" {
				output = app.cfg.ArtifactPath
			}

			records, err := dataset.Scan(app.cfg.DatasetPath, app.cfg.Categories)
			if err != nil {
				return err
			}

			fmt.Printf("Dataset: %d images under %s\n", len(records), app.cfg.DatasetPath)
			distribution := dataset.Distribution(records)
			for _, category := range app.cfg.Categories {
				fmt.Printf("  %-12s %d\n", category, distribution[category])
			}

			start := time.Now()
			p := pipeline.New(app.embedder,
				pipeline.WithWorkers(app.cfg.MaxWorkers),
				pipeline.WithTimeout(app.cfg.RequestTimeout),
				pipeline.WithRateLimit(app.cfg.EmbedRateLimit),
				pipeline.WithLogger(app.logger),
				pipeline.WithProgress(func(completed, total int) {
					if completed%50 == 0 || completed == total {
						fmt.Printf("\rEmbedding %d/%d", completed, total)
					}
				}),
			)

			embedded := p.EmbedAll(ctx, records)
			fmt.Println()

			failed := 0
			for _, rec := range embedded {
				if !rec.HasEmbedding() {
					failed++
				}
			}

			if err := dataset.WriteArtifact(output, embedded); err != nil {
				return err
			}

			fmt.Printf("Wrote %s: %d embedded, %d failed, took %s\n",
				output, len(embedded)-failed, failed, time.Since(start).Round(time.Second))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "artifact path (defaults to DATASET_CSV)")

	return cmd
}
