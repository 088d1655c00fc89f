package dataprocessing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

// ErrMissingColumns is matched by MissingColumnsError.
var ErrMissingColumns = errors.New("missing required columns")

// MissingColumnsError reports the headers a table lacked.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumns, strings.Join(e.Columns, ", "))
}

// Is lets errors.Is match ErrMissingColumns.
func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingColumns
}

// LoadStats describes how a table decoded.
type LoadStats struct {
	Rows                 int `json:"rows"`
	Decoded              int `json:"decoded"`
	SkippedRows          int `json:"skipped_rows"`
	KPIWarnings          int `json:"kpi_warnings"`
	ContributionWarnings int `json:"contribution_warnings"`
}

// ParseWarnings is the number of non-empty numeric cells that failed
// coercion.
func (s LoadStats) ParseWarnings() int {
	return s.KPIWarnings + s.ContributionWarnings
}

// DecodeRecords turns a frame of text cells into records. Every required
// header must be present; headers are matched after trimming spaces and a
// UTF-8 byte order mark. Rows without a usable year can never satisfy a
// year range and are skipped.
func DecodeRecords(df dataframe.DataFrame) ([]domain.Record, LoadStats, error) {
	var stats LoadStats
	if df.Err != nil {
		return nil, stats, fmt.Errorf("decode table: %w", df.Err)
	}

	headers := make(map[string]string, df.Ncol())
	for _, name := range df.Names() {
		headers[normalizeHeader(name)] = name
	}

	var missing []string
	for _, col := range domain.RequiredColumns {
		if _, ok := headers[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, stats, &MissingColumnsError{Columns: missing}
	}

	column := func(name string) []string {
		return df.Col(headers[name]).Records()
	}
	years := column(domain.ColumnYear)
	countries := column(domain.ColumnCountry)
	stations := column(domain.ColumnStation)
	sectors := column(domain.ColumnSector)
	kpiText := column(domain.ColumnKPI)
	contributionText := column(domain.ColumnContribution)
	episodes := column(domain.ColumnEpisodeID)
	nicknames := column(domain.ColumnNickname)
	productivity := column(domain.ColumnProductivity)

	kpis := NormalizeColumn(kpiText)
	contributions := NormalizeColumn(contributionText)

	stats.Rows = df.Nrow()
	records := make([]domain.Record, 0, stats.Rows)
	for i := 0; i < stats.Rows; i++ {
		if kpis[i] == nil && strings.TrimSpace(kpiText[i]) != "" {
			stats.KPIWarnings++
		}
		if contributions[i] == nil && strings.TrimSpace(contributionText[i]) != "" {
			stats.ContributionWarnings++
		}

		year, ok := ParseYear(years[i])
		if !ok {
			stats.SkippedRows++
			continue
		}

		records = append(records, domain.Record{
			Year:         year,
			Country:      strings.TrimSpace(countries[i]),
			Station:      domain.Station(strings.TrimSpace(stations[i])),
			Sector:       domain.SectorCode(strings.TrimSpace(sectors[i])),
			KPI:          kpis[i],
			Contribution: contributions[i],
			EpisodeID:    strings.TrimSpace(episodes[i]),
			Nickname:     nicknames[i],
			Productivity: strings.TrimSpace(productivity[i]),
		})
	}
	stats.Decoded = len(records)

	return records, stats, nil
}

func normalizeHeader(name string) string {
	return strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
}
