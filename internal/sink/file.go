package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"golfwear-extractor/internal/assemble"
	"golfwear-extractor/internal/types"
	pkgerrors "golfwear-extractor/pkg/errors"
)

const sheetName = "商品"

// XLSXSink writes one spreadsheet row per record, columns in record order
type XLSXSink struct {
	path   string
	logger types.Logger
}

// NewXLSXSink creates an XLSX sink writing to path
func NewXLSXSink(path string, logger types.Logger) *XLSXSink {
	return &XLSXSink{path: path, logger: logger}
}

func (s *XLSXSink) Name() string { return "xlsx" }

// Write replaces the file with a header row followed by the records
func (s *XLSXSink) Write(_ context.Context, records []types.AssembledRecord) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return 0, pkgerrors.NewSink(s.Name(), "failed to name sheet", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, pkgerrors.NewSink(s.Name(), "failed to create header style", err)
	}

	if err := setRow(f, 1, assemble.Keys); err != nil {
		return 0, pkgerrors.NewSink(s.Name(), "failed to write header", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(assemble.Keys), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, style); err != nil {
		return 0, pkgerrors.NewSink(s.Name(), "failed to style header", err)
	}

	for i, r := range records {
		if err := setRow(f, i+2, assemble.Values(r)); err != nil {
			return i, pkgerrors.NewSink(s.Name(), fmt.Sprintf("failed to write row %d", i+2), err)
		}
	}

	if err := ensureDir(s.path); err != nil {
		return 0, pkgerrors.NewSink(s.Name(), "failed to create output directory", err)
	}
	if err := f.SaveAs(s.path); err != nil {
		return 0, pkgerrors.NewSink(s.Name(), fmt.Sprintf("failed to save %s", s.path), err)
	}

	s.logger.Infof("Wrote %d records to %s", len(records), s.path)
	return len(records), nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheetName, cell, &cells)
}

func (s *XLSXSink) Close() error { return nil }

// CSVSink writes records as CSV with the column keys as header
type CSVSink struct {
	path   string
	logger types.Logger
}

// NewCSVSink creates a CSV sink writing to path
func NewCSVSink(path string, logger types.Logger) *CSVSink {
	return &CSVSink{path: path, logger: logger}
}

func (s *CSVSink) Name() string { return "csv" }

func (s *CSVSink) Write(_ context.Context, records []types.AssembledRecord) (int, error) {
	f, err := createFile(s.path)
	if err != nil {
		return 0, pkgerrors.NewSink(s.Name(), fmt.Sprintf("failed to create %s", s.path), err)
	}

	if err := assemble.WriteCSV(f, records); err != nil {
		f.Close()
		return 0, pkgerrors.NewSink(s.Name(), "failed to write CSV", err)
	}
	if err := f.Close(); err != nil {
		return 0, pkgerrors.NewSink(s.Name(), fmt.Sprintf("failed to close %s", s.path), err)
	}
	s.logger.Infof("Wrote %d records to %s", len(records), s.path)
	return len(records), nil
}

func (s *CSVSink) Close() error { return nil }

// JSONSink writes records as a JSON array of 13-key objects
type JSONSink struct {
	path   string
	logger types.Logger
}

// NewJSONSink creates a JSON sink writing to path
func NewJSONSink(path string, logger types.Logger) *JSONSink {
	return &JSONSink{path: path, logger: logger}
}

func (s *JSONSink) Name() string { return "json" }

func (s *JSONSink) Write(_ context.Context, records []types.AssembledRecord) (int, error) {
	f, err := createFile(s.path)
	if err != nil {
		return 0, pkgerrors.NewSink(s.Name(), fmt.Sprintf("failed to create %s", s.path), err)
	}

	if err := assemble.WriteJSON(f, records); err != nil {
		f.Close()
		return 0, pkgerrors.NewSink(s.Name(), "failed to write JSON", err)
	}
	if err := f.Close(); err != nil {
		return 0, pkgerrors.NewSink(s.Name(), fmt.Sprintf("failed to close %s", s.path), err)
	}
	s.logger.Infof("Wrote %d records to %s", len(records), s.path)
	return len(records), nil
}

func (s *JSONSink) Close() error { return nil }

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}

// createFile opens the output of the CSV and JSON sinks
var createFile = func(path string) (io.WriteCloser, error) {
	return create(path)
}

func create(path string) (*os.File, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return os.Create(path)
}
