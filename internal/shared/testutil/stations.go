package testutil

import (
	"strings"
)

// StationsHeader is the header row of the stations spreadsheet.
var StationsHeader = []string{"AÑO", "Pais", "Estaciones", "SEC", "KPI", "AporteFONPLATAVigente", "IDEtapa", "APODO", "Productividad"}

// ExampleRows are three stations rows with comma decimal KPI values.
var ExampleRows = [][]string{
	{"2020", "Bolivia", "Aprobacion", "INF", "2,0", "1000000", "E1", "Ruta Norte", "Alta Demora"},
	{"2020", "Brasil", "Aprobacion", "SOC", "4,0", "3000000", "E2", "Escuelas", "Con Demora"},
	{"2021", "Bolivia", "Vigencia", "INF", "6,0", "500000", "E3", "Puente", "En Plazo"},
}

// StationsTable returns the header followed by rows.
func StationsTable(rows ...[]string) [][]string {
	return append([][]string{StationsHeader}, rows...)
}

// StationsCSV renders the header and rows as CSV, quoting cells that hold
// a comma.
func StationsCSV(rows ...[]string) string {
	var b strings.Builder
	for _, row := range StationsTable(rows...) {
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			if strings.ContainsAny(cell, ",\"") {
				b.WriteString(`"` + strings.ReplaceAll(cell, `"`, `""`) + `"`)
			} else {
				b.WriteString(cell)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
