package roomsearch

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when a search asks for fewer than one result.
	ErrInvalidK = errors.New("k must be positive")
)

// ScanError indicates that an expected category directory is missing or
// unreadable.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ScanError struct {
	Category string
	Path     string
	Err      error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan category %q: %s", e.Category, e.Path)
}

func (e *ScanError) Unwrap() error { return e.Err }

// EmbeddingError indicates a failed embedding invocation: an invalid input
// combination, an unreachable model service, or a malformed model response.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type EmbeddingError struct {
	Input  string
	Reason string
	Err    error
}

func (e *EmbeddingError) Error() string {
	if e.Input == "" {
		return "embedding: " + e.Reason
	}
	return fmt.Sprintf("embedding %q: %s", e.Input, e.Reason)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// IngestionBatchError indicates that a whole-batch upload was rejected by the
// vector store. The ingestor falls back to per-item uploads on this error.
type IngestionBatchError struct {
	Size int
	Err  error
}

func (e *IngestionBatchError) Error() string {
	return fmt.Sprintf("ingest batch of %d vectors rejected", e.Size)
}

func (e *IngestionBatchError) Unwrap() error { return e.Err }

// IngestionItemError indicates that a single vector upload was rejected after
// the per-item fallback.
type IngestionItemError struct {
	Key string
	Err error
}

func (e *IngestionItemError) Error() string {
	return fmt.Sprintf("ingest vector %q rejected", e.Key)
}

func (e *IngestionItemError) Unwrap() error { return e.Err }

// SearchError indicates a failed query, either while embedding the query or
// while talking to the vector store. There is no partial result for a single
// query; a SearchError always means zero results.
type SearchError struct {
	Stage string // "embed" or "query"
	Err   error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search failed during %s", e.Stage)
}

func (e *SearchError) Unwrap() error { return e.Err }
