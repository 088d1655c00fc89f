package exporter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

const summarySheet = "Resumen"

// WriteWorkbook writes report as an XLSX workbook: a summary sheet with the
// selection and metric cards followed by one sheet per table.
func WriteWorkbook(w io.Writer, report domain.DashboardReport) error {
	f, err := buildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveWorkbook writes the workbook to path.
func SaveWorkbook(path string, report domain.DashboardReport) error {
	f, err := buildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func buildWorkbook(report domain.DashboardReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	numberStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := writeSummary(f, report, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	for _, t := range Tables(report) {
		if err := writeTableSheet(f, t, headerStyle, numberStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", t.Sheet, err)
		}
	}
	return f, nil
}

func writeSummary(f *excelize.File, report domain.DashboardReport, headerStyle int) error {
	sel := report.Selection
	countries := sel.Countries.Countries()
	if sel.Countries.IsAll() {
		countries = []string{domain.AllCountriesLabel}
	}

	rows := [][]interface{}{
		{"Filtro", "Valor"},
		{"Años", fmt.Sprintf("%d - %d", sel.Years.From, sel.Years.To)},
		{"Estación", string(sel.Station)},
		{"Países", strings.Join(countries, ", ")},
		{"Registros", report.RecordCount},
		{},
		{"Indicador", "Valor", "Detalle"},
	}
	for _, c := range report.Cards {
		rows = append(rows, []interface{}{c.Label, c.Value, c.Delta})
	}

	for i, row := range rows {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", headerStyle); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A7", "C7", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "C", 24)
}

func writeTableSheet(f *excelize.File, t Table, headerStyle, numberStyle int) error {
	if _, err := f.NewSheet(t.Sheet); err != nil {
		return err
	}

	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := setRow(f, t.Sheet, 1, header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := setRow(f, t.Sheet, i+2, row); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(t.Headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(t.Sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	if len(t.Rows) > 0 {
		end := lastCol + strconv.Itoa(len(t.Rows)+1)
		if err := f.SetCellStyle(t.Sheet, "B2", end, numberStyle); err != nil {
			return err
		}
	}
	return f.SetColWidth(t.Sheet, "A", lastCol, 18)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
