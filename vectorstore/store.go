package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3vectors"
	"github.com/aws/aws-sdk-go-v2/service/s3vectors/document"
	"github.com/aws/aws-sdk-go-v2/service/s3vectors/types"
	"github.com/hupe1980/roomsearch"
	"github.com/hupe1980/roomsearch/model"
)

const (
	// DefaultDimension matches Cohere Embed Multilingual v3.
	DefaultDimension = 1024
)

// API is the subset of the S3 Vectors client used by Store.
type API interface {
	CreateVectorBucket(ctx context.Context, params *s3vectors.CreateVectorBucketInput, optFns ...func(*s3vectors.Options)) (*s3vectors.CreateVectorBucketOutput, error)
	CreateIndex(ctx context.Context, params *s3vectors.CreateIndexInput, optFns ...func(*s3vectors.Options)) (*s3vectors.CreateIndexOutput, error)
	PutVectors(ctx context.Context, params *s3vectors.PutVectorsInput, optFns ...func(*s3vectors.Options)) (*s3vectors.PutVectorsOutput, error)
	QueryVectors(ctx context.Context, params *s3vectors.QueryVectorsInput, optFns ...func(*s3vectors.Options)) (*s3vectors.QueryVectorsOutput, error)
}

// Store talks to one vector bucket/index pair.
type Store struct {
	api       API
	bucket    string
	index     string
	dimension int32
	metric    types.DistanceMetric
	logger    *roomsearch.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithDimension sets the index dimension used by EnsureIndex.
func WithDimension(d int) Option {
	return func(s *Store) {
		if d > 0 {
			s.dimension = int32(d)
		}
	}
}

// WithDistanceMetric sets the index distance metric used by EnsureIndex.
func WithDistanceMetric(m types.DistanceMetric) Option {
	return func(s *Store) {
		s.metric = m
	}
}

// WithLogger sets the logger. Defaults to a noop logger.
func WithLogger(l *roomsearch.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store for the given vector bucket and index.
func New(api API, bucket, index string, opts ...Option) *Store {
	s := &Store{
		api:       api,
		bucket:    bucket,
		index:     index,
		dimension: DefaultDimension,
		metric:    types.DistanceMetricCosine,
		logger:    roomsearch.NoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureIndex creates the vector bucket and the index if they do not exist.
// "Already exists" conflicts are success, so EnsureIndex is safe to call on
// every ingestion run.
func (s *Store) EnsureIndex(ctx context.Context) error {
	_, err := s.api.CreateVectorBucket(ctx, &s3vectors.CreateVectorBucketInput{
		VectorBucketName: aws.String(s.bucket),
	})
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "created vector bucket", "bucket", s.bucket)
	case isConflict(err):
		s.logger.DebugContext(ctx, "vector bucket already exists", "bucket", s.bucket)
	default:
		return fmt.Errorf("create vector bucket %q: %w", s.bucket, err)
	}

	_, err = s.api.CreateIndex(ctx, &s3vectors.CreateIndexInput{
		VectorBucketName: aws.String(s.bucket),
		IndexName:        aws.String(s.index),
		DataType:         types.DataTypeFloat32,
		Dimension:        aws.Int32(s.dimension),
		DistanceMetric:   s.metric,
	})
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "created index", "index", s.index, "dimension", s.dimension, "metric", s.metric)
	case isConflict(err):
		s.logger.DebugContext(ctx, "index already exists", "index", s.index)
	default:
		return fmt.Errorf("create index %q: %w", s.index, err)
	}

	return nil
}

// Put upserts the given records in one call.
func (s *Store) Put(ctx context.Context, records []model.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	vectors := make([]types.PutInputVector, len(records))
	for i, r := range records {
		vectors[i] = types.PutInputVector{
			Key:      aws.String(r.Key),
			Data:     &types.VectorDataMemberFloat32{Value: r.Vector},
			Metadata: document.NewLazyDocument(r.Metadata),
		}
	}

	if _, err := s.api.PutVectors(ctx, &s3vectors.PutVectorsInput{
		VectorBucketName: aws.String(s.bucket),
		IndexName:        aws.String(s.index),
		Vectors:          vectors,
	}); err != nil {
		return err
	}

	return nil
}

// Query returns the k stored vectors closest to the query vector, with
// metadata and distance, in the order given by the store (most similar
// first).
func (s *Store) Query(ctx context.Context, vector []float32, k int) ([]model.SearchResult, error) {
	if k < 1 {
		return nil, roomsearch.ErrInvalidK
	}

	out, err := s.api.QueryVectors(ctx, &s3vectors.QueryVectorsInput{
		VectorBucketName: aws.String(s.bucket),
		IndexName:        aws.String(s.index),
		QueryVector:      &types.VectorDataMemberFloat32{Value: vector},
		TopK:             aws.Int32(int32(k)),
		ReturnMetadata:   true,
		ReturnDistance:   true,
	})
	if err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(out.Vectors))
	for _, v := range out.Vectors {
		res := model.SearchResult{
			Key: aws.ToString(v.Key),
		}
		if v.Distance != nil {
			res.Distance = *v.Distance
		}
		if v.Metadata != nil {
			if err := v.Metadata.UnmarshalSmithyDocument(&res.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata for key %q: %w", res.Key, err)
			}
		}
		results = append(results, res)
	}

	return results, nil
}

func isConflict(err error) bool {
	var conflict *types.ConflictException
	return errors.As(err, &conflict)
}
