package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"ecomdash/internal/dataset"
)

// CorrelationMatrix is a square Pearson matrix. Values[i][j] correlates
// Columns[i] with Columns[j]; undefined entries are NaN.
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64
}

// At returns the correlation of columns a and b, or NaN if either is absent.
func (m *CorrelationMatrix) At(a, b string) float64 {
	i, j := -1, -1
	for k, c := range m.Columns {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return math.NaN()
	}
	return m.Values[i][j]
}

// MarshalJSON writes NaN entries as null.
func (m *CorrelationMatrix) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				values[i][j] = &row[j]
			}
		}
	}
	return json.Marshal(struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}{m.Columns, values})
}

// Correlate builds the pairwise Pearson matrix of the given columns.
// Missing cells are dropped per pair.
func Correlate(columns []string, data [][]float64) *CorrelationMatrix {
	n := len(columns)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r := pearson(data[i], data[j])
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			values[i][j] = r
			values[j][i] = r
		}
	}

	return &CorrelationMatrix{Columns: columns, Values: values}
}

var errNoNumericColumns = errors.New("no numeric columns")

// ComputePaymentCorrelation correlates every numeric column of payments.
func ComputePaymentCorrelation(_ context.Context, snap *dataset.Snapshot) (*CorrelationMatrix, error) {
	payments, err := input(PaymentCorrelation, snap, dataset.Payments, dataset.ColPaymentValue)
	if err != nil {
		return nil, err
	}

	columns := payments.NumericColumns()
	if len(columns) == 0 {
		return nil, &ComputationError{Kind: PaymentCorrelation, Table: dataset.Payments, Err: errNoNumericColumns}
	}

	data := make([][]float64, len(columns))
	for i, col := range columns {
		data[i] = payments.MustFloats(col)
	}

	return Correlate(columns, data), nil
}
