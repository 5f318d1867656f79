package exporter

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	failed := Sheet{Name: "price-boxplot", Headers: []string{"error"}, Rows: [][]any{{"no usable values"}}, Failed: true}

	var buf bytes.Buffer
	err := WriteWorkbook(&buf, []Sheet{sampleSheet(), failed}, []string{"first", "second"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"payment-methods", "price-boxplot", "conclusion"}, f.GetSheetList())

	rows, err := f.GetRows("payment-methods")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"payment_type", "count"},
		{"credit_card", "2"},
		{"boleto, cash", "1"},
	}, rows)

	v, err := f.GetCellValue("price-boxplot", "A2")
	require.NoError(t, err)
	assert.Equal(t, "no usable values", v)

	v, err = f.GetCellValue("conclusion", "A2")
	require.NoError(t, err)
	assert.Equal(t, "second", v)
}

func TestWriteWorkbook_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteWorkbook(&buf, nil, nil))
}

func TestWriteWorkbookFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.xlsx")
	require.NoError(t, WriteWorkbookFile(path, []Sheet{sampleSheet()}, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"payment-methods"}, f.GetSheetList())
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{}

	assert.Equal(t, "a_b", sheetName("a/b", used))
	assert.Equal(t, "a_b_2", sheetName("a:b", used))
	assert.Equal(t, "section", sheetName("", used))

	long := strings.Repeat("x", 40)
	first := sheetName(long, used)
	second := sheetName(long, used)
	assert.Len(t, first, maxSheetName)
	assert.Len(t, second, maxSheetName)
	assert.NotEqual(t, first, second)
}
