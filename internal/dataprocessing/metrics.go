package dataprocessing

import (
	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

// ComputeMetrics derives the scalar summary of a filtered view. An empty
// view yields zero counts and sums and a nil average.
func ComputeMetrics(view []domain.Record) domain.SummaryMetrics {
	var (
		kpiSum, contribution float64
		kpiCount             int
		counts               domain.SectorCounts
	)
	for _, r := range view {
		if r.KPI != nil {
			kpiSum += *r.KPI
			kpiCount++
		}
		if r.Contribution != nil {
			contribution += *r.Contribution
		}
		switch r.Sector {
		case domain.SectorInfrastructure:
			counts.Infrastructure++
		case domain.SectorSocial:
			counts.Social++
		case domain.SectorProductive:
			counts.Productive++
		}
	}

	m := domain.SummaryMetrics{
		UniqueOperationCount:      distinctEpisodes(view),
		TotalContributionMillions: round2(contribution / 1_000_000),
		SectorCounts:              counts,
	}
	if kpiCount > 0 {
		m.AverageKPI = domain.Float(kpiSum / float64(kpiCount))
	}
	return m
}

// distinctEpisodes counts distinct non-empty episode ids.
func distinctEpisodes(view []domain.Record) int {
	seen := make(map[string]struct{}, len(view))
	for _, r := range view {
		if r.EpisodeID == "" {
			continue
		}
		seen[r.EpisodeID] = struct{}{}
	}
	return len(seen)
}

// meanAccumulator averages the non-missing values added to it.
type meanAccumulator struct {
	sum   float64
	count int
}

func (a *meanAccumulator) add(v *float64) {
	if v == nil {
		return
	}
	a.sum += *v
	a.count++
}

func (a meanAccumulator) mean() *float64 {
	if a.count == 0 {
		return nil
	}
	return domain.Float(a.sum / float64(a.count))
}
