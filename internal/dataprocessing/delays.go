package dataprocessing

import (
	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

// SliceByProductivity keeps the rows whose productivity status equals label
// exactly and projects them for the delay tables.
func SliceByProductivity(view []domain.Record, label string) []domain.DelayedProject {
	out := make([]domain.DelayedProject, 0)
	for _, r := range view {
		if r.Productivity != label {
			continue
		}
		out = append(out, domain.DelayedProject{
			Nickname: r.Nickname,
			Country:  r.Country,
			Station:  r.Station,
			KPI:      r.KPI,
		})
	}
	return out
}

// DelaySlices returns the high delay and moderate delay tables of a view.
func DelaySlices(view []domain.Record) (high, moderate []domain.DelayedProject) {
	return SliceByProductivity(view, domain.ProductivityHighDelay),
		SliceByProductivity(view, domain.ProductivityModerateDelay)
}
