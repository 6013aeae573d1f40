// Package ingest loads embedded records into the vector store in fixed-size
// batches, falling back to per-item uploads when a whole batch is rejected.
package ingest

import (
	"context"
	"time"

	"github.com/hupe1980/roomsearch"
	"github.com/hupe1980/roomsearch/model"
)

const (
	// DefaultBatchSize is the number of vectors per PutVectors call.
	DefaultBatchSize = 100
	// DefaultProgressEvery controls how often aggregate progress is logged.
	DefaultProgressEvery = 200
)

// Putter uploads a set of vector records in one call.
// *vectorstore.Store implements it.
type Putter interface {
	Put(ctx context.Context, records []model.VectorRecord) error
}

// Report summarizes one ingestion run.
type Report struct {
	// Ingested counts successfully uploaded vectors.
	Ingested int
	// Skipped counts records without an embedding, never uploaded.
	Skipped int
	// FailedKeys lists vectors rejected even by the per-item fallback.
	FailedKeys []string
}

// Ingestor drives a sequential, batched upload into the vector store.
type Ingestor struct {
	store         Putter
	batchSize     int
	progressEvery int
	logger        *roomsearch.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithBatchSize sets the batch size. Values below one fall back to the
// default.
func WithBatchSize(n int) Option {
	return func(in *Ingestor) {
		if n > 0 {
			in.batchSize = n
		}
	}
}

// WithProgressEvery sets the progress logging interval in records.
// Zero disables progress logging.
func WithProgressEvery(n int) Option {
	return func(in *Ingestor) {
		in.progressEvery = n
	}
}

// WithLogger sets the logger. Defaults to a noop logger.
func WithLogger(l *roomsearch.Logger) Option {
	return func(in *Ingestor) {
		if l != nil {
			in.logger = l
		}
	}
}

// New creates an Ingestor writing through the given store.
func New(store Putter, opts ...Option) *Ingestor {
	in := &Ingestor{
		store:         store,
		batchSize:     DefaultBatchSize,
		progressEvery: DefaultProgressEvery,
		logger:        roomsearch.NoopLogger(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run ingests records in input order. Records without an embedding are
// counted and skipped. Full batches are submitted whole; a rejected batch is
// retried item by item so one bad record does not sacrifice the rest.
// Individual rejections land in Report.FailedKeys and are never raised.
//
// The only error Run itself returns is context cancellation; the report is
// valid for everything processed up to that point.
func (in *Ingestor) Run(ctx context.Context, records []model.EmbeddedRecord) (*Report, error) {
	var (
		report = &Report{}
		start  = time.Now()
		total  = len(records)
		batch  = make([]model.VectorRecord, 0, in.batchSize)
	)

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		vr, ok := model.NewVectorRecord(rec)
		if !ok {
			report.Skipped++
			in.logger.InfoContext(ctx, "skipping record without embedding", "index", i, "id", rec.ID)
			continue
		}

		batch = append(batch, vr)
		if len(batch) >= in.batchSize {
			in.flush(ctx, batch, report, total, start)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		in.flush(ctx, batch, report, total, start)
	}

	return report, nil
}

// flush submits one batch, with per-item fallback on whole-batch rejection.
// Any batch-level error triggers the fallback; transient and permanent
// failures are deliberately not distinguished.
func (in *Ingestor) flush(ctx context.Context, batch []model.VectorRecord, report *Report, total int, start time.Time) {
	if err := in.store.Put(ctx, batch); err != nil {
		batchErr := &roomsearch.IngestionBatchError{Size: len(batch), Err: err}
		in.logger.WarnContext(ctx, "batch rejected, retrying items individually",
			"size", len(batch),
			"error", batchErr,
		)

		for _, vr := range batch {
			if err := in.store.Put(ctx, []model.VectorRecord{vr}); err != nil {
				itemErr := &roomsearch.IngestionItemError{Key: vr.Key, Err: err}
				report.FailedKeys = append(report.FailedKeys, vr.Key)
				in.logger.ErrorContext(ctx, "vector rejected", "key", vr.Key, "error", itemErr)
				continue
			}
			report.Ingested++
		}
		return
	}

	report.Ingested += len(batch)

	if in.progressEvery > 0 && report.Ingested%in.progressEvery < in.batchSize {
		in.logger.LogIngestProgress(ctx, report.Ingested, total, time.Since(start))
	}
}
