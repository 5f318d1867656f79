// Package exporter turns analysis sections into tabular sheets and writes
// them out.
//
// Tabulate flattens one section's result into a header and typed rows. The
// same sheet feeds three sinks: CSV (UTF-8 BOM for Excel), an XLSX workbook
// with one worksheet per section, and the terminal tables of the report
// command.
//
//	sheets := exporter.TabulateAll(dashboard.Sections)
//	err := exporter.WriteWorkbook(w, sheets, dashboard.Conclusion)
package exporter
