package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hupe1980/roomsearch/model"
	"github.com/klauspost/compress/zstd"
)

// artifactHeader is the fixed column layout of the dataset artifact.
var artifactHeader = []string{"id", "room_type", "filename", "img_full_path", "embedding"}

// WriteArtifact persists records to a CSV artifact at path, preserving input
// order. Records without an embedding get an empty embedding cell. A path
// ending in .zst is zstd-compressed.
func WriteArtifact(path string, records []model.EmbeddedRecord) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var w io.Writer = f
	var zw *zstd.Encoder
	if isCompressed(path) {
		zw, err = zstd.NewWriter(f)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := zw.Close(); err == nil {
				err = cerr
			}
		}()
		w = zw
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(artifactHeader); err != nil {
		return err
	}

	for _, r := range records {
		cell := ""
		if r.HasEmbedding() {
			encoded, err := json.Marshal(r.Embedding)
			if err != nil {
				return err
			}
			cell = string(encoded)
		}
		if err := cw.Write([]string{r.ID, r.Category, r.Filename, r.Path, cell}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadArtifact loads a CSV artifact written by WriteArtifact.
// An empty embedding cell yields a record with a nil embedding.
func ReadArtifact(path string) (_ []model.EmbeddedRecord, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if isCompressed(path) {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(artifactHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read artifact header: %w", err)
	}
	for i, want := range artifactHeader {
		if header[i] != want {
			return nil, fmt.Errorf("unexpected artifact column %d: got %q, want %q", i, header[i], want)
		}
	}

	var records []model.EmbeddedRecord
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read artifact row %d: %w", row, err)
		}

		rec := model.EmbeddedRecord{
			ImageRecord: model.ImageRecord{
				ID:       fields[0],
				Category: fields[1],
				Filename: fields[2],
				Path:     fields[3],
			},
		}
		if cell := fields[4]; cell != "" {
			if err := json.Unmarshal([]byte(cell), &rec.Embedding); err != nil {
				return nil, fmt.Errorf("parse embedding at row %d (id %q): %w", row, rec.ID, err)
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

func isCompressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}
