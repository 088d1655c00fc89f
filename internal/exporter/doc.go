// Package exporter turns a dashboard report into downloadable tables.
//
// Tables flattens every table of a report (the KPI pivot, the per country
// and station means, contributions, sector counts and both delay tables)
// into named header and row sets. WriteCSV streams one of them as CSV with
// an optional UTF-8 byte order mark so Excel detects the encoding, and
// WriteWorkbook writes a summary sheet plus one sheet per table.
//
// Example usage:
//
//	table, err := exporter.TableByName(report, exporter.TablePivot)
//	if err != nil {
//		return err
//	}
//	err = exporter.WriteCSV(w, table, exporter.WriteOptions{BOMPrefix: true})
package exporter
