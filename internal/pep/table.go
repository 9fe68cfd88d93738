package pep

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Table is a parsed sample or subsample table.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadTable parses a comma-separated table whose first row is the header.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("table is empty")
		}
		return nil, fmt.Errorf("reading table header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	t := &Table{Header: header}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading table: %w", err)
		}
		if isBlank(row) {
			continue
		}
		if len(row) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d has %d fields, header has %d", line, len(row), len(header))
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Column returns the index of a column, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Records calls fn for every row with a column -> cell mapping. Empty cells
// are left out.
func (t *Table) Records(fn func(rec map[string]string, order []string) error) error {
	for _, row := range t.Rows {
		rec := make(map[string]string, len(row))
		order := make([]string, 0, len(row))
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			rec[t.Header[i]] = cell
			order = append(order, t.Header[i])
		}
		if err := fn(rec, order); err != nil {
			return err
		}
	}
	return nil
}

// CSV renders the table back to comma-separated text.
func (t *Table) CSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Header); err != nil {
		return "", err
	}
	for _, row := range t.Rows {
		padded := row
		if len(row) < len(t.Header) {
			padded = make([]string, len(t.Header))
			copy(padded, row)
		}
		if err := w.Write(padded); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
