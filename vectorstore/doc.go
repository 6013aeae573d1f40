// Package vectorstore wraps the Amazon S3 Vectors API behind the three
// operations roomsearch needs: idempotent bucket/index creation, bulk upsert,
// and top-K similarity queries.
//
// Vector metadata travels as a smithy document; keys are the dataset record
// ids, so re-ingesting a key overwrites rather than duplicates (upsert
// semantics are the store's own).
package vectorstore
