// Package model defines the core record types flowing between the roomsearch
// pipelines.
//
//   - ImageRecord: one scanned image (id, category, filename, path)
//   - EmbeddedRecord: ImageRecord plus its embedding; a nil embedding marks
//     a failed computation
//   - VectorRecord: what gets upserted into the vector store
//   - SearchResult: one ranked hit returned by a similarity query
//
// ImageRecord and EmbeddedRecord are transient, living only for one pipeline
// run before being serialized to the dataset artifact. VectorRecord and
// SearchResult are write-once: never mutated after construction.
package model
