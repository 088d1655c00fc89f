package dataprocessing

import (
	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

// Filter returns the records matching every predicate of sel, in source
// order. The input is never modified and the result is never nil.
func Filter(records []domain.Record, sel domain.FilterSelection) []domain.Record {
	view := make([]domain.Record, 0, len(records)/4)
	for _, r := range records {
		if sel.Matches(r) {
			view = append(view, r)
		}
	}
	return view
}
