// Package search embeds a single text or image query and retrieves the
// nearest stored vectors from the vector store.
package search

import (
	"context"
	"time"

	"github.com/hupe1980/roomsearch"
	"github.com/hupe1980/roomsearch/embedding"
	"github.com/hupe1980/roomsearch/model"
)

// Embedder computes the query embedding. *embedding.Client implements it.
type Embedder interface {
	Embed(ctx context.Context, q embedding.Query, role embedding.Role) ([]float32, error)
}

// Querier runs a top-K similarity query. *vectorstore.Store implements it.
type Querier interface {
	Query(ctx context.Context, vector []float32, k int) ([]model.SearchResult, error)
}

// Result is a ranked result list plus the wall-clock duration of the
// similarity query alone (the embedding step is excluded).
type Result struct {
	Items         []model.SearchResult
	QueryDuration time.Duration
}

// Service is the synchronous query path: embed, then query.
type Service struct {
	embedder Embedder
	store    Querier
	logger   *roomsearch.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to a noop logger.
func WithLogger(l *roomsearch.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service.
func NewService(embedder Embedder, store Querier, opts ...Option) *Service {
	s := &Service{
		embedder: embedder,
		store:    store,
		logger:   roomsearch.NoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search embeds the query under the query role and returns at most k results
// in the store's similarity order. Any failure yields a *roomsearch.SearchError
// and no results; there is no partial result for a single query.
func (s *Service) Search(ctx context.Context, q embedding.Query, k int) (*Result, error) {
	if k < 1 {
		return nil, roomsearch.ErrInvalidK
	}

	vec, err := s.embedder.Embed(ctx, q, embedding.RoleQuery)
	if err != nil {
		return nil, &roomsearch.SearchError{Stage: "embed", Err: err}
	}

	start := time.Now()
	items, err := s.store.Query(ctx, vec, k)
	duration := time.Since(start)

	s.logger.LogQuery(ctx, k, len(items), duration, err)
	if err != nil {
		return nil, &roomsearch.SearchError{Stage: "query", Err: err}
	}

	return &Result{Items: items, QueryDuration: duration}, nil
}
