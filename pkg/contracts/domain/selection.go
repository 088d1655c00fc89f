package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// AllCountriesLabel is the choice the dashboard shows for "every country".
const AllCountriesLabel = "Todos"

// ErrInvalidSelection is returned when a FilterSelection cannot be applied.
var ErrInvalidSelection = errors.New("invalid filter selection")

// YearRange is an inclusive range of years.
type YearRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Contains reports whether year lies inside the range, bounds included.
func (yr YearRange) Contains(year int) bool {
	return year >= yr.From && year <= yr.To
}

// CountrySelection is either every country or an explicit set of them.
// The zero value selects every country.
type CountrySelection struct {
	specific bool
	set      map[string]struct{}
}

// AllCountries selects every country.
func AllCountries() CountrySelection {
	return CountrySelection{}
}

// SpecificCountries selects exactly the given countries. An empty list
// selects nothing.
func SpecificCountries(countries ...string) CountrySelection {
	set := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		set[c] = struct{}{}
	}
	return CountrySelection{specific: true, set: set}
}

// ParseCountrySelection maps user-facing labels to a selection. The
// "Todos"/"all" label anywhere in the list selects every country, as does
// an absent list.
func ParseCountrySelection(labels []string) CountrySelection {
	if len(labels) == 0 {
		return AllCountries()
	}
	countries := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if strings.EqualFold(l, AllCountriesLabel) || strings.EqualFold(l, "all") {
			return AllCountries()
		}
		if l != "" {
			countries = append(countries, l)
		}
	}
	return SpecificCountries(countries...)
}

// IsAll reports whether the selection matches every country.
func (cs CountrySelection) IsAll() bool {
	return !cs.specific
}

// Matches reports whether country is selected.
func (cs CountrySelection) Matches(country string) bool {
	if !cs.specific {
		return true
	}
	_, ok := cs.set[country]
	return ok
}

// Countries returns the explicit countries in sorted order, or nil when
// every country is selected.
func (cs CountrySelection) Countries() []string {
	if !cs.specific {
		return nil
	}
	out := make([]string, 0, len(cs.set))
	for c := range cs.set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON renders the selection as ["Todos"] or the sorted list.
func (cs CountrySelection) MarshalJSON() ([]byte, error) {
	labels := cs.Countries()
	if cs.IsAll() {
		labels = []string{AllCountriesLabel}
	}
	return json.Marshal(labels)
}

// FilterSelection holds the user's choices for one dashboard evaluation.
type FilterSelection struct {
	Years     YearRange        `json:"years"`
	Station   Station          `json:"station"`
	Countries CountrySelection `json:"countries"`
}

// Validate checks the selection invariants.
func (s FilterSelection) Validate() error {
	if s.Years.From > s.Years.To {
		return fmt.Errorf("%w: year range %d-%d is inverted", ErrInvalidSelection, s.Years.From, s.Years.To)
	}
	if strings.TrimSpace(string(s.Station)) == "" {
		return fmt.Errorf("%w: a station is required", ErrInvalidSelection)
	}
	return nil
}

// Matches reports whether r satisfies every predicate of the selection.
func (s FilterSelection) Matches(r Record) bool {
	return s.Years.Contains(r.Year) &&
		r.Station == s.Station &&
		s.Countries.Matches(r.Country)
}
