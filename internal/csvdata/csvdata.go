// Package csvdata reads numeric columns out of CSV files for plotting.
package csvdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Table is a CSV file turned column-major.
type Table struct {
	Header  []string
	Columns [][]float64
}

// Column looks a column up by header name or by 0-based index written as
// a number.
func (t *Table) Column(key string) ([]float64, string, error) {
	for i, h := range t.Header {
		if h == key {
			return t.Columns[i], h, nil
		}
	}
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= len(t.Columns) {
		return nil, "", fmt.Errorf("csvdata: no column %q", key)
	}
	name := ""
	if i < len(t.Header) {
		name = t.Header[i]
	}
	return t.Columns[i], name, nil
}

// Read parses CSV from r. When the first row does not parse as numbers it is
// taken as the header.
func Read(
	r io.Reader,
) (
	*Table, error,
) {

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csvdata: empty file")
	}

	t := &Table{}
	if _, err := parseRow(rows[0]); err != nil {
		t.Header = rows[0]
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csvdata: no data rows")
	}

	t.Columns = make([][]float64, len(rows[0]))
	for n, row := range rows {
		vals, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("csvdata: row %d: %w", n+1, err)
		}
		for i, v := range vals {
			t.Columns[i] = append(t.Columns[i], v)
		}
	}
	return t, nil
}

func parseRow(row []string) ([]float64, error) {
	vals := make([]float64, len(row))
	for i, s := range row {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// ReadFile reads a CSV file from disk.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
