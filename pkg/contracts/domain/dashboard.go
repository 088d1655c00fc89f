package domain

import "strconv"

// SectorCounts holds the record count of each known sector code.
type SectorCounts struct {
	Infrastructure int `json:"INF"`
	Social         int `json:"SOC"`
	Productive     int `json:"PRO"`
}

// Total is the sum of the three counts.
func (sc SectorCounts) Total() int {
	return sc.Infrastructure + sc.Social + sc.Productive
}

// SummaryMetrics are the scalar figures shown on the metric cards.
type SummaryMetrics struct {
	AverageKPI                *float64     `json:"average_kpi"`
	UniqueOperationCount      int          `json:"unique_operation_count"`
	TotalContributionMillions float64      `json:"total_contribution_millions"`
	SectorCounts              SectorCounts `json:"sector_counts"`
}

// StationKPI is the mean KPI of one country and station combination.
type StationKPI struct {
	Country string   `json:"country"`
	Station Station  `json:"station"`
	MeanKPI *float64 `json:"mean_kpi"`
	Color   string   `json:"color,omitempty"`
}

// PivotCell is a rounded mean KPI, nil when the combination has no value.
type PivotCell = *float64

// PivotRow is one country of the country by year pivot.
type PivotRow struct {
	Country string      `json:"country"`
	Cells   []PivotCell `json:"cells"`
}

// KPIPivot is the mean KPI by country (rows) and year (columns).
type KPIPivot struct {
	Years []int      `json:"years"`
	Rows  []PivotRow `json:"rows"`
}

// DisplayCell renders a cell for tabular output: two decimals, or an empty
// string for a missing combination.
func DisplayCell(c PivotCell) string {
	if c == nil {
		return ""
	}
	return strconv.FormatFloat(*c, 'f', 2, 64)
}

// CountryContribution is the contribution of one country within a view.
type CountryContribution struct {
	Country    string  `json:"country"`
	Total      float64 `json:"total"`
	Millions   float64 `json:"millions"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color,omitempty"`
}

// SectorEpisodes is the distinct episode count of one sector.
type SectorEpisodes struct {
	Sector   SectorCode `json:"sector"`
	Episodes int        `json:"episodes"`
	Color    string     `json:"color,omitempty"`
}

// DelayedProject is one row of a delay table.
type DelayedProject struct {
	Nickname string   `json:"nickname"`
	Country  string   `json:"country"`
	Station  Station  `json:"station"`
	KPI      *float64 `json:"kpi"`
}

// MetricCard is a labelled figure ready for display.
type MetricCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Delta string `json:"delta"`
}

// DashboardReport bundles every output of one pipeline evaluation.
type DashboardReport struct {
	Selection             FilterSelection       `json:"selection"`
	RecordCount           int                   `json:"record_count"`
	Metrics               SummaryMetrics        `json:"metrics"`
	Cards                 []MetricCard          `json:"cards"`
	KPIByCountryStation   []StationKPI          `json:"kpi_by_country_station"`
	KPIPivot              KPIPivot              `json:"kpi_pivot"`
	ContributionByCountry []CountryContribution `json:"contribution_by_country"`
	ContributionSharesOK  bool                  `json:"contribution_shares_defined"`
	SectorEpisodeCounts   []SectorEpisodes      `json:"sector_episode_counts"`
	HighDelayProjects     []DelayedProject      `json:"high_delay_projects"`
	ModerateDelayProjects []DelayedProject      `json:"moderate_delay_projects"`
}

// FilterOptions lists the choices a user can make against a dataset.
type FilterOptions struct {
	MinYear   int       `json:"min_year"`
	MaxYear   int       `json:"max_year"`
	Stations  []Station `json:"stations"`
	Countries []string  `json:"countries"`
}

// DefaultSelection is the selection the dashboard starts from: the whole
// year range, the first station and every country.
func (o FilterOptions) DefaultSelection() FilterSelection {
	sel := FilterSelection{
		Years:     YearRange{From: o.MinYear, To: o.MaxYear},
		Countries: AllCountries(),
	}
	if len(o.Stations) > 0 {
		sel.Station = o.Stations[0]
	}
	return sel
}
