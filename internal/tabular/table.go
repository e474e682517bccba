package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a raw tabular upload: one header row plus zero or more data rows.
// Rows shorter than the header are padded with empty cells so column lookups
// never go out of range.
type Table struct {
	Header []string
	Rows   [][]string
}

// Read parses an uploaded file by extension: .xlsx via excelize, anything
// else as delimited text with a header row.
func Read(r io.Reader, filename string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return ReadXLSX(r)
	}
	return ReadCSV(r)
}

// ReadCSV reads header-plus-rows delimited text. Ragged rows are tolerated.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: no header row")
	}
	t := &Table{Header: records[0]}
	for _, rec := range records[1:] {
		t.Rows = append(t.Rows, padRow(rec, len(t.Header)))
	}
	return t, nil
}

// ReadXLSX reads the first sheet of an Excel workbook.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("read xlsx: workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read xlsx: no header row")
	}
	t := &Table{Header: rows[0]}
	for _, rec := range rows[1:] {
		t.Rows = append(t.Rows, padRow(rec, len(t.Header)))
	}
	return t, nil
}

// Column returns the zero-based position of a header, matched
// case-insensitively with surrounding whitespace ignored, or -1.
func (t *Table) Column(name string) int {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, h := range t.Header {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return i
		}
	}
	return -1
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
