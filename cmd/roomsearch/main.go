// Command roomsearch builds, ingests, and queries the room photograph index.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3vectors"
	"github.com/hupe1980/roomsearch"
	"github.com/hupe1980/roomsearch/config"
	"github.com/hupe1980/roomsearch/embedding"
	"github.com/hupe1980/roomsearch/vectorstore"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:           "roomsearch",
		Short:         "Search room photographs by text or example image",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			// Optional .env, same as the deployment scripts.
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newBuildCmd(&verbose),
		newIngestCmd(&verbose),
		newSearchCmd(&verbose),
		newServeCmd(&verbose),
	)

	return cmd
}

// app bundles the wired clients shared by all subcommands.
type app struct {
	cfg      *config.Config
	logger   *roomsearch.Logger
	embedder *embedding.Client
	store    *vectorstore.Store
}

func newApp(ctx context.Context, verbose bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := roomsearch.NewTextLogger(level)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	resolver := embedding.NewImageResolver(
		embedding.WithS3Client(s3.NewFromConfig(awsCfg)),
	)
	embedder := embedding.NewClient(
		bedrockruntime.NewFromConfig(awsCfg),
		cfg.ModelID,
		embedding.WithDimension(cfg.Dimension),
		embedding.WithImageResolver(resolver),
	)
	store := vectorstore.New(
		s3vectors.NewFromConfig(awsCfg),
		cfg.VectorBucketName,
		cfg.VectorIndexName,
		vectorstore.WithDimension(cfg.Dimension),
		vectorstore.WithLogger(logger),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		embedder: embedder,
		store:    store,
	}, nil
}
