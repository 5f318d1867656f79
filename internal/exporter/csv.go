package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes the sheet, header first.
func WriteCSV(w io.Writer, sheet Sheet, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	for i, record := range sheet.Records() {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSVDir writes one <section>.csv per sheet into dir and returns the
// paths written.
func WriteCSVDir(dir string, sheets []Sheet, logger *slog.Logger) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	paths := make([]string, 0, len(sheets))
	for _, sheet := range sheets {
		path := filepath.Join(dir, sheet.Name+".csv")
		if err := writeCSVFile(path, sheet); err != nil {
			return paths, err
		}
		if logger != nil {
			logger.Info("Wrote CSV file",
				slog.String("file_path", path),
				slog.Int("record_count", len(sheet.Rows)))
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSVFile(path string, sheet Sheet) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return WriteCSV(file, sheet, WriteOptions{BOMPrefix: true})
}
