// Package dataprocessing turns the stations spreadsheet into the figures
// and tables shown on the operational efficiency dashboard.
//
// # Pipeline
//
// Every dashboard evaluation runs the same stages:
//
//	table text → DecodeRecords → Filter(selection) → metrics, grouped tables, delay tables
//
// DecodeRecords coerces the KPI and contribution columns with ParseDecimal,
// which accepts a comma decimal separator and turns malformed cells into
// missing values. Filter keeps the rows inside the year range, on the
// selected station and in the selected countries. ComputeReport wires the
// stages together and returns a domain.DashboardReport.
//
// # Usage
//
//	records, stats, err := dataprocessing.DecodeRecords(df)
//	if err != nil {
//	    return err
//	}
//	sel := dataprocessing.Options(records).DefaultSelection()
//	report, err := dataprocessing.ComputeReport(records, sel)
//
// # Empty views
//
// A selection that matches nothing is a normal state. Counts and sums are
// zero, means are nil, the pivot has no rows and the contribution shares
// are reported as undefined.
//
// Nothing in this package keeps state between calls; the source records
// are never modified.
package dataprocessing
