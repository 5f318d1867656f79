package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeProductsWorkbook(t *testing.T, dir string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	values := [][]string{
		{"product_id", "product_category_name"},
		{"1", "cama_mesa_banho"},
		{"2", "beleza_saude"},
		{"3"},
	}
	for r, row := range values {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellStr(sheet, cell, v))
		}
	}

	path := filepath.Join(dir, "products.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}
