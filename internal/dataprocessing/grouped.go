package dataprocessing

import (
	"sort"

	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

type countryStation struct {
	country string
	station domain.Station
}

// KPIByCountryStation returns the mean KPI of every observed country and
// station combination, sorted by country then station. Rows without a
// country or station belong to no group.
func KPIByCountryStation(view []domain.Record) []domain.StationKPI {
	groups := make(map[countryStation]*meanAccumulator)
	for _, r := range view {
		if r.Country == "" || r.Station == "" {
			continue
		}
		key := countryStation{country: r.Country, station: r.Station}
		acc, ok := groups[key]
		if !ok {
			acc = &meanAccumulator{}
			groups[key] = acc
		}
		acc.add(r.KPI)
	}

	keys := make([]countryStation, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].country != keys[j].country {
			return keys[i].country < keys[j].country
		}
		return keys[i].station < keys[j].station
	})

	out := make([]domain.StationKPI, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.StationKPI{
			Country: k.country,
			Station: k.station,
			MeanKPI: groups[k].mean(),
			Color:   StationColors[k.station],
		})
	}
	return out
}

// KPIPivotTable averages KPI by country (rows) and year (columns), rounding
// each cell to two decimals. Countries and years that never carry a KPI
// value are left out, so an empty view has no rows.
func KPIPivotTable(view []domain.Record) domain.KPIPivot {
	type cell struct {
		country string
		year    int
	}
	cells := make(map[cell]*meanAccumulator)
	countrySet := make(map[string]struct{})
	yearSet := make(map[int]struct{})
	for _, r := range view {
		if r.KPI == nil || r.Country == "" {
			continue
		}
		key := cell{country: r.Country, year: r.Year}
		acc, ok := cells[key]
		if !ok {
			acc = &meanAccumulator{}
			cells[key] = acc
		}
		acc.add(r.KPI)
		countrySet[r.Country] = struct{}{}
		yearSet[r.Year] = struct{}{}
	}

	pivot := domain.KPIPivot{
		Years: make([]int, 0, len(yearSet)),
		Rows:  make([]domain.PivotRow, 0, len(countrySet)),
	}
	for y := range yearSet {
		pivot.Years = append(pivot.Years, y)
	}
	sort.Ints(pivot.Years)

	countries := make([]string, 0, len(countrySet))
	for c := range countrySet {
		countries = append(countries, c)
	}
	sort.Strings(countries)

	for _, c := range countries {
		row := domain.PivotRow{Country: c, Cells: make([]domain.PivotCell, len(pivot.Years))}
		for i, y := range pivot.Years {
			if acc, ok := cells[cell{country: c, year: y}]; ok {
				if m := acc.mean(); m != nil {
					row.Cells[i] = domain.Float(round2(*m))
				}
			}
		}
		pivot.Rows = append(pivot.Rows, row)
	}
	return pivot
}

// SharePercent is 100 * part / total. It reports false when total is zero,
// leaving the display policy to the caller.
func SharePercent(part, total float64) (float64, bool) {
	if total == 0 {
		return 0, false
	}
	return 100 * part / total, true
}

// ContributionByCountry sums contribution per country and computes each
// country's share of the grouped total. Rows without a country are left
// out. When the total is zero every share is reported as 0 and the second
// result is false.
func ContributionByCountry(view []domain.Record) ([]domain.CountryContribution, bool) {
	sums := make(map[string]float64)
	for _, r := range view {
		if r.Country == "" {
			continue
		}
		v := 0.0
		if r.Contribution != nil {
			v = *r.Contribution
		}
		sums[r.Country] += v
	}

	countries := make([]string, 0, len(sums))
	var total float64
	for c, v := range sums {
		countries = append(countries, c)
		total += v
	}
	sort.Strings(countries)

	defined := total != 0
	out := make([]domain.CountryContribution, 0, len(countries))
	for _, c := range countries {
		pct, _ := SharePercent(sums[c], total)
		out = append(out, domain.CountryContribution{
			Country:    c,
			Total:      sums[c],
			Millions:   round2(sums[c] / 1_000_000),
			Percentage: pct,
			Color:      CountryColors[c],
		})
	}
	return out, defined
}

// SectorEpisodeCounts counts distinct episode ids per observed sector code.
func SectorEpisodeCounts(view []domain.Record) []domain.SectorEpisodes {
	bySector := make(map[domain.SectorCode]map[string]struct{})
	for _, r := range view {
		if r.Sector == "" {
			continue
		}
		ids, ok := bySector[r.Sector]
		if !ok {
			ids = make(map[string]struct{})
			bySector[r.Sector] = ids
		}
		if r.EpisodeID != "" {
			ids[r.EpisodeID] = struct{}{}
		}
	}

	sectors := make([]domain.SectorCode, 0, len(bySector))
	for s := range bySector {
		sectors = append(sectors, s)
	}
	sort.Slice(sectors, func(i, j int) bool { return sectors[i] < sectors[j] })

	out := make([]domain.SectorEpisodes, 0, len(sectors))
	for _, s := range sectors {
		out = append(out, domain.SectorEpisodes{
			Sector:   s,
			Episodes: len(bySector[s]),
			Color:    SectorColors[s],
		})
	}
	return out
}
