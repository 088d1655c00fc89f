package dataprocessing

import (
	"fmt"
	"strconv"

	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

// Cards formats the summary metrics as the six dashboard cards.
func Cards(m domain.SummaryMetrics) []domain.MetricCard {
	average := "-"
	if m.AverageKPI != nil {
		average = fmt.Sprintf("%.2f Meses", *m.AverageKPI)
	}
	return []domain.MetricCard{
		{Label: "Tiempo Promedio", Value: average, Delta: "Promedio de KPI"},
		{Label: "Proyectos Totales", Value: strconv.Itoa(m.UniqueOperationCount), Delta: "Total de proyectos únicos"},
		{Label: "Aporte Fonplata", Value: fmt.Sprintf("$%.2fM", m.TotalContributionMillions), Delta: "En millones de dólares"},
		{Label: "Infraestructura", Value: strconv.Itoa(m.SectorCounts.Infrastructure), Delta: "Proyectos de Infraestructura"},
		{Label: "Socio-Económicos", Value: strconv.Itoa(m.SectorCounts.Social), Delta: "Proyectos Socio-Económicos"},
		{Label: "Productivos", Value: strconv.Itoa(m.SectorCounts.Productive), Delta: "Proyectos Productivos"},
	}
}
