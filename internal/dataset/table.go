package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is one loaded source table. It is never modified after
// construction; every accessor returns freshly allocated slices.
type Table struct {
	name   Name
	source string
	df     dataframe.DataFrame
	index  map[string]int
}

// ReadCSV parses a CSV stream with a header row into a Table.
func ReadCSV(name Name, source string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.WithTypes(stringColumns),
		dataframe.NaNValues(missingValues),
	)
	if df.Err != nil {
		if header, ok := headerOnly(data); ok {
			return emptyTable(name, source, header)
		}
		return nil, fmt.Errorf("parse csv: %w", df.Err)
	}

	return newTable(name, source, df), nil
}

// FromRecords builds a Table from a header row followed by data rows.
// Short rows are padded with missing cells.
func FromRecords(name Name, source string, records [][]string) (*Table, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, fmt.Errorf("table %s has no header row", name)
	}
	if len(records) == 1 {
		return emptyTable(name, source, records[0])
	}

	width := len(records[0])
	normalized := make([][]string, 0, len(records))
	for i, row := range records {
		if len(row) > width {
			return nil, fmt.Errorf("row %d has %d cells, header has %d", i, len(row), width)
		}
		padded := make([]string, width)
		copy(padded, row)
		normalized = append(normalized, padded)
	}

	df := dataframe.LoadRecords(normalized,
		dataframe.WithTypes(stringColumns),
		dataframe.NaNValues(missingValues),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("load records: %w", df.Err)
	}

	return newTable(name, source, df), nil
}

// headerOnly reports whether data holds a header row and nothing else.
func headerOnly(data []byte) ([]string, bool) {
	r := csv.NewReader(bytes.NewReader(data))
	header, err := r.Read()
	if err != nil || len(header) == 0 {
		return nil, false
	}
	if _, err := r.Read(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return header, true
}

// emptyTable keeps the columns of a source with no data rows. gota refuses
// to load one, so every column is built as a zero-length text series.
func emptyTable(name Name, source string, header []string) (*Table, error) {
	columns := make([]series.Series, len(header))
	for i, col := range header {
		columns[i] = series.New([]string{}, series.String, col)
	}
	df := dataframe.New(columns...)
	if df.Err != nil {
		return nil, fmt.Errorf("empty table %s: %w", name, df.Err)
	}
	return newTable(name, source, df), nil
}

func newTable(name Name, source string, df dataframe.DataFrame) *Table {
	index := make(map[string]int, df.Ncol())
	for i, col := range df.Names() {
		index[col] = i
	}
	return &Table{name: name, source: source, df: df, index: index}
}

// Name returns the table name.
func (t *Table) Name() Name { return t.name }

// Source returns where the table was read from.
func (t *Table) Source() string { return t.source }

// Len returns the number of data rows.
func (t *Table) Len() int { return t.df.Nrow() }

// Columns returns the column names in file order.
func (t *Table) Columns() []string { return t.df.Names() }

// Has reports whether the table carries column col.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Require fails with a *ColumnError naming the first absent column.
func (t *Table) Require(cols ...string) error {
	for _, col := range cols {
		if !t.Has(col) {
			return &ColumnError{Table: t.name, Column: col}
		}
	}
	return nil
}

// Strings returns column col as text. Missing cells are "".
func (t *Table) Strings(col string) ([]string, error) {
	if err := t.Require(col); err != nil {
		return nil, err
	}
	return t.strings(col), nil
}

// MustStrings is Strings for a column already checked with Require. It
// panics when col is absent.
func (t *Table) MustStrings(col string) []string {
	if err := t.Require(col); err != nil {
		panic(err)
	}
	return t.strings(col)
}

func (t *Table) strings(col string) []string {
	s := t.df.Col(col)
	values := s.Records()
	missing := s.IsNaN()
	for i := range values {
		if missing[i] {
			values[i] = ""
		}
	}
	return values
}

// Floats returns column col as numbers. Missing or non-numeric cells are NaN.
func (t *Table) Floats(col string) ([]float64, error) {
	if err := t.Require(col); err != nil {
		return nil, err
	}
	return t.floats(col), nil
}

// MustFloats is Floats for a column already checked with Require. It panics
// when col is absent.
func (t *Table) MustFloats(col string) []float64 {
	if err := t.Require(col); err != nil {
		panic(err)
	}
	return t.floats(col)
}

func (t *Table) floats(col string) []float64 {
	s := t.df.Col(col)
	switch s.Type() {
	case series.Int, series.Float, series.Bool:
		return s.Float()
	}

	// A string column only ends up here when a caller asks for numbers from
	// text; gota parses each element and yields NaN where it cannot.
	values := s.Float()
	for i, v := range values {
		if math.IsInf(v, 0) {
			values[i] = math.NaN()
		}
	}
	return values
}

// NumericColumns lists the columns whose detected type is int or float,
// in file order.
func (t *Table) NumericColumns() []string {
	var cols []string
	for _, col := range t.df.Names() {
		switch t.df.Col(col).Type() {
		case series.Int, series.Float:
			cols = append(cols, col)
		}
	}
	return cols
}
