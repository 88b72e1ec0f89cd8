package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"

	"genretopics/internal/domain"
)

// Columns names the CSV header fields holding the text and the identifier.
type Columns struct {
	Text string
	ID   string
}

// LoadPaths reads records from CSV and .txt files. Glob patterns are expanded.
// A CSV file must have a header with the text column; the ID column is
// optional and falls back to "<file>:<row>". A .txt file is a single record
// identified by its path. Other files are skipped.
func LoadPaths(paths []string, cols Columns) ([]domain.Record, error) {
	var records []domain.Record
	for _, p := range paths {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, domain.Fail(domain.StageIngest, fmt.Errorf("bad pattern %q: %w", p, err))
		}
		if matches == nil && !strings.ContainsAny(p, "*?[") {
			matches = []string{p}
		}
		for _, m := range matches {
			recs, err := loadFile(m, cols)
			if err != nil {
				return nil, domain.Fail(domain.StageIngest, err)
			}
			records = append(records, recs...)
		}
	}
	if len(records) == 0 {
		return nil, domain.Fail(domain.StageIngest, domain.ErrNoInputDocuments)
	}
	glog.Infof("ingested %d records from %d inputs", len(records), len(paths))
	return records, nil
}

func loadFile(path string, cols Columns) ([]domain.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f, path, cols)
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return []domain.Record{{ID: path, Text: string(data)}}, nil
	default:
		glog.V(1).Infof("skipping %s: not a .csv or .txt file", path)
		return nil, nil
	}
}

// ReadCSV reads records from CSV data. name is used for fallback identifiers and errors.
func ReadCSV(r io.Reader, name string, cols Columns) ([]domain.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w: file is empty", name, domain.ErrMissingTextColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	textIdx := column(header, cols.Text)
	if textIdx < 0 {
		return nil, fmt.Errorf("%s: %w: %q", name, domain.ErrMissingTextColumn, cols.Text)
	}
	idIdx := -1
	if cols.ID != "" {
		idIdx = column(header, cols.ID)
	}

	var out []domain.Record
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", name, row, err)
		}
		rec := domain.Record{ID: fmt.Sprintf("%s:%d", name, row)}
		if textIdx < len(fields) {
			rec.Text = fields[textIdx]
		}
		if idIdx >= 0 && idIdx < len(fields) && strings.TrimSpace(fields[idIdx]) != "" {
			rec.ID = fields[idIdx]
		}
		out = append(out, rec)
	}
	return out, nil
}

// column finds a header field, exactly first and then ignoring case and surrounding space.
func column(header []string, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range header {
		if h == name {
			return i
		}
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), name) {
			return i
		}
	}
	return -1
}
