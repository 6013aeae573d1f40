package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hupe1980/roomsearch/httpapi"
	"github.com/hupe1980/roomsearch/search"
	"github.com/spf13/cobra"
)

func newServeCmd(verbose *bool) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx, *verbose)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = app.cfg.HTTPAddr
			}

			svc := search.NewService(app.embedder, app.store, search.WithLogger(app.logger))
			srv := httpapi.NewServer(svc,
				httpapi.WithDatasetRoot(app.cfg.DatasetPath),
				httpapi.WithLogger(app.logger),
			)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(addr)
			}()
			fmt.Printf("Serving on %s\n", addr)

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to HTTP_ADDR)")

	return cmd
}
