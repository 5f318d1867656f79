package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	maxSheetName    = 31
	conclusionSheet = "conclusion"
)

// WriteWorkbook writes one worksheet per sheet, in order, followed by a
// conclusion worksheet when conclusion is not empty.
func WriteWorkbook(w io.Writer, sheets []Sheet, conclusion []string) error {
	f, err := buildWorkbook(sheets, conclusion)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteWorkbookFile is WriteWorkbook into a file at path.
func WriteWorkbookFile(path string, sheets []Sheet, conclusion []string) error {
	f, err := buildWorkbook(sheets, conclusion)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func buildWorkbook(sheets []Sheet, conclusion []string) (*excelize.File, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sections to export")
	}

	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	used := make(map[string]bool)
	for _, sheet := range sheets {
		name := sheetName(sheet.Name, used)
		if err := writeSheet(f, name, sheet, bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
	}

	if len(conclusion) > 0 {
		name := sheetName(conclusionSheet, used)
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
		for i, line := range conclusion {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetCellStr(name, cell, line); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	// the default sheet is replaced by the first section
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, name string, sheet Sheet, headerStyle int) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	header := make([]any, len(sheet.Headers))
	for i, h := range sheet.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	if len(sheet.Headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(sheet.Headers), 1)
		if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
			return err
		}
	}

	for i, row := range sheet.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			// blank rather than a NaN the spreadsheet cannot show
			if s := formatCell(v); s == "" {
				cells[j] = nil
			} else {
				cells[j] = v
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(name, cell, &cells); err != nil {
			return err
		}
	}
	return nil
}

// sheetName makes name a valid, unused worksheet name.
func sheetName(name string, used map[string]bool) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, name)
	if name == "" {
		name = "section"
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}

	candidate := name
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf("_%d", i)
		base := name
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = base + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
