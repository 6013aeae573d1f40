// Package pipeline computes one embedding per scanned image under a bounded
// worker pool, preserving input order in the output regardless of completion
// order.
package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/roomsearch"
	"github.com/hupe1980/roomsearch/embedding"
	"github.com/hupe1980/roomsearch/model"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

const (
	// DefaultWorkers bounds in-flight embedding calls when not configured.
	DefaultWorkers = 50
	// DefaultTimeout bounds a single embedding call.
	DefaultTimeout = 30 * time.Second
)

// Embedder computes one embedding per query. *embedding.Client implements it.
type Embedder interface {
	Embed(ctx context.Context, q embedding.Query, role embedding.Role) ([]float32, error)
}

// Pipeline fans embedding requests out to a bounded worker pool.
type Pipeline struct {
	embedder   Embedder
	workers    int
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *roomsearch.Logger
	onProgress func(completed, total int)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers sets the worker pool size. Values below one fall back to the
// default.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithTimeout bounds each embedding call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.timeout = d
	}
}

// WithRateLimit applies a client-side limit on embedding calls per second.
// Zero or negative disables rate limiting.
func WithRateLimit(perSecond float64) Option {
	return func(p *Pipeline) {
		if perSecond > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithLogger sets the logger. Defaults to a noop logger.
func WithLogger(l *roomsearch.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithProgress registers a callback invoked after every completed task with
// the monotone completed count. The callback may be invoked concurrently.
func WithProgress(fn func(completed, total int)) Option {
	return func(p *Pipeline) {
		p.onProgress = fn
	}
}

// New creates a Pipeline around the given embedder.
func New(embedder Embedder, opts ...Option) *Pipeline {
	p := &Pipeline{
		embedder: embedder,
		workers:  DefaultWorkers,
		timeout:  DefaultTimeout,
		logger:   roomsearch.NoopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EmbedAll computes one embedding per record. The output always has the same
// length and order as the input: out[i] carries records[i] plus its embedding,
// or a nil embedding when that single computation failed. Individual failures
// are logged and contained; EmbedAll itself never fails.
//
// Each worker writes only its own slot, so no lock is needed beyond the
// pre-sized output slice.
func (p *Pipeline) EmbedAll(ctx context.Context, records []model.ImageRecord) []model.EmbeddedRecord {
	out := make([]model.EmbeddedRecord, len(records))
	for i, r := range records {
		out[i].ImageRecord = r
	}

	sem := semaphore.NewWeighted(int64(p.workers))
	var (
		wg        sync.WaitGroup
		completed atomic.Int64
	)

	for i := range records {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled: remaining slots stay absent.
			p.logger.WarnContext(ctx, "embedding pipeline interrupted",
				"submitted", i,
				"total", len(records),
				"error", err,
			)
			break
		}

		wg.Add(1)
		go func(i int, rec model.ImageRecord) {
			defer wg.Done()
			defer sem.Release(1)

			vec, err := p.embedOne(ctx, rec)
			p.logger.LogEmbed(ctx, i, rec.Path, err)
			if err == nil {
				out[i].Embedding = vec
			}

			done := int(completed.Add(1))
			if p.onProgress != nil {
				p.onProgress(done, len(records))
			}
		}(i, records[i])
	}

	wg.Wait()
	return out
}

func (p *Pipeline) embedOne(ctx context.Context, rec model.ImageRecord) ([]float32, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	return p.embedder.Embed(ctx, embedding.ImageRef(rec.Path), embedding.RoleDocument)
}
