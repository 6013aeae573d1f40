package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hupe1980/roomsearch/embedding"
	"github.com/hupe1980/roomsearch/search"
	"github.com/spf13/cobra"
)

func newSearchCmd(verbose *bool) *cobra.Command {
	var (
		image string
		k     int
	)

	cmd := &cobra.Command{
		Use:   "search [description]",
		Short: "Search the index by text description or example image",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			text := strings.TrimSpace(strings.Join(args, " "))
			var query embedding.Query
			switch {
			case text != "" && image != "":
				return errors.New("provide either a description or --image, not both")
			case text != "":
				query = embedding.TextQuery(text)
			case image != "":
				query = embedding.ImageRef(image)
			default:
				return errors.New("provide a description or --image")
			}

			app, err := newApp(ctx, *verbose)
			if err != nil {
				return err
			}

			svc := search.NewService(app.embedder, app.store, search.WithLogger(app.logger))
			res, err := svc.Search(ctx, query, k)
			if err != nil {
				return err
			}

			if len(res.Items) == 0 {
				fmt.Println("No results found")
				return nil
			}

			fmt.Printf("Found %d results in %.3fs\n\n",
				len(res.Items), res.QueryDuration.Seconds())
			for i, r := range res.Items {
				fmt.Printf("%2d. %s  (room: %s, file: %s, score: %.3f)\n",
					i+1, r.Key, r.Metadata["room_type"], r.Metadata["filename"], r.Distance)
				if path, ok := r.ImagePath(app.cfg.DatasetPath); ok {
					if _, err := os.Stat(path); err == nil {
						fmt.Printf("    %s\n", path)
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&image, "image", "", "path or URL of an example image")
	cmd.Flags().IntVarP(&k, "results", "k", 5, "number of results")

	return cmd
}
