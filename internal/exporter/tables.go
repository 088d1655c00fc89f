package exporter

import (
	"fmt"
	"strconv"

	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

// Table names accepted by TableByName.
const (
	TablePivot         = "pivot"
	TableKPIByStation  = "kpi-by-station"
	TableContributions = "contributions"
	TableSectors       = "sectors"
	TableHighDelay     = "high-delay"
	TableModerateDelay = "moderate-delay"
)

// TableNames lists every table in workbook order.
var TableNames = []string{
	TablePivot,
	TableKPIByStation,
	TableContributions,
	TableSectors,
	TableHighDelay,
	TableModerateDelay,
}

// ErrUnknownTable is returned for a table name outside TableNames.
var ErrUnknownTable = fmt.Errorf("unknown table")

// Table is one exportable table. Cells hold a string, an int, a float64 or
// nil for a missing value.
type Table struct {
	Name    string
	Sheet   string
	Headers []string
	Rows    [][]interface{}
}

// Tables returns every table of report in TableNames order.
func Tables(report domain.DashboardReport) []Table {
	return []Table{
		pivotTable(report.KPIPivot),
		kpiByStationTable(report.KPIByCountryStation),
		contributionsTable(report.ContributionByCountry),
		sectorsTable(report.SectorEpisodeCounts),
		delayTable(TableHighDelay, "Alta Demora", report.HighDelayProjects),
		delayTable(TableModerateDelay, "Con Demora", report.ModerateDelayProjects),
	}
}

// TableByName returns a single table of report.
func TableByName(report domain.DashboardReport, name string) (Table, error) {
	for _, t := range Tables(report) {
		if t.Name == name {
			return t, nil
		}
	}
	return Table{}, fmt.Errorf("%w: %q", ErrUnknownTable, name)
}

func pivotTable(p domain.KPIPivot) Table {
	headers := make([]string, 0, len(p.Years)+1)
	headers = append(headers, domain.ColumnCountry)
	for _, y := range p.Years {
		headers = append(headers, strconv.Itoa(y))
	}

	rows := make([][]interface{}, 0, len(p.Rows))
	for _, r := range p.Rows {
		row := make([]interface{}, 0, len(r.Cells)+1)
		row = append(row, r.Country)
		for _, c := range r.Cells {
			row = append(row, optional(c))
		}
		rows = append(rows, row)
	}
	return Table{Name: TablePivot, Sheet: "KPI por Año", Headers: headers, Rows: rows}
}

func kpiByStationTable(items []domain.StationKPI) Table {
	rows := make([][]interface{}, 0, len(items))
	for _, it := range items {
		rows = append(rows, []interface{}{it.Country, string(it.Station), optional(it.MeanKPI)})
	}
	return Table{
		Name:    TableKPIByStation,
		Sheet:   "KPI por Estación",
		Headers: []string{domain.ColumnCountry, domain.ColumnStation, domain.ColumnKPI},
		Rows:    rows,
	}
}

func contributionsTable(items []domain.CountryContribution) Table {
	rows := make([][]interface{}, 0, len(items))
	for _, it := range items {
		rows = append(rows, []interface{}{it.Country, it.Total, it.Millions, it.Percentage})
	}
	return Table{
		Name:    TableContributions,
		Sheet:   "Aporte por País",
		Headers: []string{domain.ColumnCountry, domain.ColumnContribution, "Millones", "Porcentaje"},
		Rows:    rows,
	}
}

func sectorsTable(items []domain.SectorEpisodes) Table {
	rows := make([][]interface{}, 0, len(items))
	for _, it := range items {
		rows = append(rows, []interface{}{string(it.Sector), it.Episodes})
	}
	return Table{
		Name:    TableSectors,
		Sheet:   "Sectores",
		Headers: []string{domain.ColumnSector, "Etapas"},
		Rows:    rows,
	}
}

func delayTable(name, sheet string, items []domain.DelayedProject) Table {
	rows := make([][]interface{}, 0, len(items))
	for _, it := range items {
		rows = append(rows, []interface{}{it.Nickname, it.Country, string(it.Station), optional(it.KPI)})
	}
	return Table{
		Name:    name,
		Sheet:   sheet,
		Headers: []string{domain.ColumnNickname, domain.ColumnCountry, domain.ColumnStation, domain.ColumnKPI},
		Rows:    rows,
	}
}

// optional unwraps a nullable number so that a missing value stays nil.
func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
