package dataset

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/roomsearch"
	"github.com/hupe1980/roomsearch/model"
)

// DefaultCategories matches the house rooms dataset layout.
var DefaultCategories = []string{"Bathroom", "Bedroom", "Dinning", "Kitchen", "Livingroom"}

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// Scan enumerates image files under root, one directory per category, in the
// given category order and in lexical filename order within a category. The
// record id is the filename without extension.
//
// A missing category directory is a *roomsearch.ScanError; a category with
// zero images is not an error.
func Scan(root string, categories []string) ([]model.ImageRecord, error) {
	var records []model.ImageRecord

	for _, category := range categories {
		dir := filepath.Join(root, category)

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, &roomsearch.ScanError{Category: category, Path: dir, Err: err}
		}

		for _, entry := range entries {
			if entry.IsDir() || !isImage(entry.Name()) {
				continue
			}
			name := entry.Name()
			records = append(records, model.ImageRecord{
				ID:       strings.TrimSuffix(name, filepath.Ext(name)),
				Category: category,
				Filename: name,
				Path:     filepath.Join(dir, name),
			})
		}
	}

	return records, nil
}

// Distribution counts records per category, for progress reporting.
func Distribution(records []model.ImageRecord) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Category]++
	}
	return counts
}

func isImage(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}
