package dataprocessing

import (
	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

// Options lists the year bounds, stations and countries present in a
// dataset. Stations and countries keep their first-appearance order and
// the country list starts with the "all countries" choice.
func Options(records []domain.Record) domain.FilterOptions {
	opts := domain.FilterOptions{
		Stations:  make([]domain.Station, 0),
		Countries: []string{domain.AllCountriesLabel},
	}

	seenStation := make(map[domain.Station]struct{})
	seenCountry := make(map[string]struct{})
	for i, r := range records {
		if i == 0 || r.Year < opts.MinYear {
			opts.MinYear = r.Year
		}
		if i == 0 || r.Year > opts.MaxYear {
			opts.MaxYear = r.Year
		}
		if _, ok := seenStation[r.Station]; !ok && r.Station != "" {
			seenStation[r.Station] = struct{}{}
			opts.Stations = append(opts.Stations, r.Station)
		}
		if _, ok := seenCountry[r.Country]; !ok && r.Country != "" {
			seenCountry[r.Country] = struct{}{}
			opts.Countries = append(opts.Countries, r.Country)
		}
	}
	return opts
}
