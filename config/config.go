// Package config provides configuration loading for roomsearch.
//
// Defaults are compiled in; every setting can be overridden through the
// environment variables listed in envKeys. Values are intentionally the same
// names the original deployment scripts used (S3_VECTOR_BUCKET_NAME,
// MAX_WORKERS, NUM_VECTORS_PER_PUT, ...).
package config

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the full configuration surface.
type Config struct {
	VectorBucketName string        `koanf:"vector_bucket_name"`
	VectorIndexName  string        `koanf:"vector_index_name"`
	ModelID          string        `koanf:"model_id"`
	Dimension        int           `koanf:"dimension"`
	MaxWorkers       int           `koanf:"max_workers"`
	BatchSize        int           `koanf:"batch_size"`
	ProgressEvery    int           `koanf:"progress_every"`
	DatasetPath      string        `koanf:"dataset_path"`
	ArtifactPath     string        `koanf:"artifact_path"`
	Categories       []string      `koanf:"categories"`
	HTTPAddr         string        `koanf:"http_addr"`
	RequestTimeout   time.Duration `koanf:"request_timeout"`
	EmbedRateLimit   float64       `koanf:"embed_rate_limit"`
}

// envKeys maps recognized environment variables to config keys.
// Anything else in the environment is ignored.
var envKeys = map[string]string{
	"S3_VECTOR_BUCKET_NAME": "vector_bucket_name",
	"S3_VECTOR_INDEX_NAME":  "vector_index_name",
	"EMBED_MODEL_ID":        "model_id",
	"EMBED_DIMENSION":       "dimension",
	"MAX_WORKERS":           "max_workers",
	"NUM_VECTORS_PER_PUT":   "batch_size",
	"NUM_STATUS_PRINT":      "progress_every",
	"DATASET_PATH":          "dataset_path",
	"DATASET_CSV":           "artifact_path",
	"HTTP_ADDR":             "http_addr",
	"REQUEST_TIMEOUT":       "request_timeout",
	"EMBED_RATE_LIMIT":      "embed_rate_limit",
}

// Load builds the configuration from compiled-in defaults overridden by the
// environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultsYAML), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		// Returning "" drops unrecognized variables.
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that would otherwise fail deep inside a pipeline
// run.
func (c *Config) Validate() error {
	switch {
	case c.VectorBucketName == "":
		return fmt.Errorf("vector bucket name must not be empty")
	case c.VectorIndexName == "":
		return fmt.Errorf("vector index name must not be empty")
	case c.Dimension < 1:
		return fmt.Errorf("dimension must be positive, got %d", c.Dimension)
	case c.MaxWorkers < 1:
		return fmt.Errorf("max workers must be positive, got %d", c.MaxWorkers)
	case c.BatchSize < 1:
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	case len(c.Categories) == 0:
		return fmt.Errorf("at least one category is required")
	}
	return nil
}
