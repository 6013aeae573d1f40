package model

import (
	"fmt"
	"path/filepath"
)

// ImageRecord identifies one scanned image within the dataset.
// It is immutable after creation by the scanner.
type ImageRecord struct {
	// ID is unique within the dataset (filename without extension).
	ID string
	// Category is the room label the image was filed under.
	Category string
	// Filename is the bare file name within the category directory.
	Filename string
	// Path locates the image: a local path, an s3:// locator, or a URL.
	Path string
}

// String returns a string representation of the ImageRecord.
func (r ImageRecord) String() string {
	return fmt.Sprintf("%s/%s", r.Category, r.Filename)
}

// EmbeddedRecord is an ImageRecord together with its computed embedding.
// A nil Embedding marks a failed computation; the record keeps its position
// in the output so that downstream consumers can rely on output[i]
// corresponding to input[i].
type EmbeddedRecord struct {
	ImageRecord
	Embedding []float32
}

// HasEmbedding reports whether the embedding was computed.
// A zero-length but non-nil vector is not a valid embedding either.
func (r EmbeddedRecord) HasEmbedding() bool {
	return len(r.Embedding) > 0
}

// VectorRecord is the unit of upsert into the vector store.
type VectorRecord struct {
	// Key equals the ImageRecord.ID the vector was built from.
	Key      string
	Vector   []float32
	Metadata map[string]string
}

// NewVectorRecord builds a VectorRecord from an embedded record.
// It returns false when the record carries no embedding.
func NewVectorRecord(r EmbeddedRecord) (VectorRecord, bool) {
	if !r.HasEmbedding() {
		return VectorRecord{}, false
	}
	return VectorRecord{
		Key:    r.ID,
		Vector: r.Embedding,
		Metadata: map[string]string{
			"room_type":     r.Category,
			"filename":      r.Filename,
			"img_full_path": r.Path,
		},
	}, true
}

// SearchResult is one ranked hit from a similarity query,
// most-similar ordering is the store's responsibility.
type SearchResult struct {
	Key      string
	Distance float32
	Metadata map[string]string
}

// ImagePath resolves the local image path for a result under the given
// dataset root, best effort. It reports false when the metadata does not
// carry enough to build a path.
func (r SearchResult) ImagePath(root string) (string, bool) {
	category := r.Metadata["room_type"]
	filename := r.Metadata["filename"]
	if root == "" || category == "" || filename == "" {
		return "", false
	}
	return filepath.Join(root, category, filename), true
}
