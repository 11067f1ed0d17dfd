package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golfwear-extractor/internal/types"
)

const timestampLayout = "20060102_150405"

// OutputPath returns <dir>/<filename>_<yyyyMMdd_HHmmss>.json, or
// <dir>/<filename>_latest.json when overwriteLatest is set.
func OutputPath(dir, filename string, at time.Time, overwriteLatest bool) string {
	suffix := at.Format(timestampLayout)
	if overwriteLatest {
		suffix = "latest"
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s.json", filename, suffix))
}

// WriteDocument saves an output document as indented JSON and returns its path
func WriteDocument[T any](doc *types.OutputDocument[T], dir, filename string, overwriteLatest bool) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to marshal results to JSON: %w", err)
	}

	path := OutputPath(dir, filename, doc.ScrapeTime, overwriteLatest)
	if err := writeToFile(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to write results to file: %w", err)
	}
	return path, nil
}

// ReadDocument loads an output document written by WriteDocument
func ReadDocument[T any](path string) (*types.OutputDocument[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc types.OutputDocument[T]
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &doc, nil
}

// Records flattens a detail document into its assembled records, skipping
// failed pages.
func Records(doc *types.OutputDocument[types.AssembledRecord]) []types.AssembledRecord {
	var records []types.AssembledRecord
	for _, r := range doc.Results {
		if r.Error != "" {
			continue
		}
		records = append(records, r.Products...)
	}
	return records
}

// writeToFile writes data to a file
func writeToFile(filename string, data []byte) error {
	return os.WriteFile(filename, data, 0644)
}
