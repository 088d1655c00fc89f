package dataprocessing

import (
	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

// ComputeReport evaluates the whole pipeline for one selection: filter the
// source records, then derive every metric, grouped table and delay table
// from the resulting view. It is a pure function of its inputs.
func ComputeReport(records []domain.Record, sel domain.FilterSelection) (domain.DashboardReport, error) {
	if err := sel.Validate(); err != nil {
		return domain.DashboardReport{}, err
	}

	view := Filter(records, sel)
	metrics := ComputeMetrics(view)
	contributions, sharesOK := ContributionByCountry(view)
	high, moderate := DelaySlices(view)

	return domain.DashboardReport{
		Selection:             sel,
		RecordCount:           len(view),
		Metrics:               metrics,
		Cards:                 Cards(metrics),
		KPIByCountryStation:   KPIByCountryStation(view),
		KPIPivot:              KPIPivotTable(view),
		ContributionByCountry: contributions,
		ContributionSharesOK:  sharesOK,
		SectorEpisodeCounts:   SectorEpisodeCounts(view),
		HighDelayProjects:     high,
		ModerateDelayProjects: moderate,
	}, nil
}
