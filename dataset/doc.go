// Package dataset enumerates a category-labelled image tree and persists the
// embedded records as a CSV artifact.
//
// The tree layout is one directory per room category under a common root,
// e.g. root/Kitchen/kitchen_1.jpg. The artifact carries one row per image
// with the embedding serialized as a JSON float array; an empty cell marks a
// record whose embedding could not be computed. Artifacts with a .zst suffix
// are transparently zstd-compressed.
package dataset
