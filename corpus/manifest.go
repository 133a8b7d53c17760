package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const pathColumn = "path"

// ReadManifest reads the "path" column of a CSV manifest. Other columns are
// ignored and blank paths are skipped.
func ReadManifest(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingPathColumn
		}
		return nil, fmt.Errorf("reading manifest header: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) == pathColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, ErrMissingPathColumn
	}

	var paths []string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading manifest: %w", err)
		}
		if col >= len(row) {
			continue
		}
		if p := strings.TrimSpace(row[col]); p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// ReadManifestFile reads a manifest from disk.
func ReadManifestFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadManifest(f)
}

// WriteManifest writes paths as a single-column manifest.
func WriteManifest(w io.Writer, paths []string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{pathColumn}); err != nil {
		return err
	}
	for _, p := range paths {
		if err := writer.Write([]string{p}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
