package assemble

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"golfwear-extractor/internal/types"
)

// WriteJSON writes records as an indented JSON array
func WriteJSON(w io.Writer, records []types.AssembledRecord) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if records == nil {
		records = []types.AssembledRecord{}
	}
	return enc.Encode(records)
}

// ReadJSON reads a JSON array written by WriteJSON
func ReadJSON(r io.Reader) ([]types.AssembledRecord, error) {
	var records []types.AssembledRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}

// WriteCSV writes a header row of Keys followed by one row per record
func WriteCSV(w io.Writer, records []types.AssembledRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Keys); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(Values(r)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads rows written by WriteCSV. The header must match Keys.
func ReadCSV(r io.Reader) ([]types.AssembledRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Keys)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, k := range Keys {
		if header[i] != k {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i, header[i], k)
		}
	}

	var records []types.AssembledRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		records = append(records, FromValues(row))
	}
	return records, nil
}
