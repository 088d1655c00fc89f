package dataprocessing

import (
	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

func record(year int, country string, station domain.Station, sector domain.SectorCode, kpi, contribution *float64, episode string) domain.Record {
	return domain.Record{
		Year:         year,
		Country:      country,
		Station:      station,
		Sector:       sector,
		KPI:          kpi,
		Contribution: contribution,
		EpisodeID:    episode,
	}
}

// exampleRecords is the three row table used across the pipeline tests.
func exampleRecords() []domain.Record {
	return []domain.Record{
		record(2020, "Bolivia", domain.StationApproval, domain.SectorInfrastructure, domain.Float(2), domain.Float(1_000_000), "E1"),
		record(2020, "Brasil", domain.StationApproval, domain.SectorSocial, domain.Float(4), domain.Float(3_000_000), "E2"),
		record(2021, "Bolivia", domain.StationEffectiveness, domain.SectorInfrastructure, domain.Float(6), domain.Float(500_000), "E3"),
	}
}

// mixedRecords spans several years, stations and countries and includes
// missing values, an unknown sector and repeated episodes.
func mixedRecords() []domain.Record {
	rows := []domain.Record{
		record(2018, "Argentina", domain.StationApproval, domain.SectorInfrastructure, domain.Float(10), domain.Float(2_500_000), "A1"),
		record(2019, "Argentina", domain.StationApproval, domain.SectorInfrastructure, domain.Float(12), domain.Float(500_000), "A1"),
		record(2019, "Paraguay", domain.StationApproval, domain.SectorProductive, nil, domain.Float(1_000_000), "P1"),
		record(2019, "Paraguay", domain.StationApproval, "OTR", domain.Float(3.333), nil, "P2"),
		record(2020, "Uruguay", domain.StationFirstDisbursement, domain.SectorSocial, domain.Float(8), domain.Float(750_000), "U1"),
		record(2021, "Uruguay", domain.StationApproval, domain.SectorSocial, domain.Float(5), domain.Float(250_000), "U2"),
		record(2021, "Bolivia", domain.StationEligibility, domain.SectorProductive, domain.Float(1), domain.Float(0), "B1"),
		record(2022, "Brasil", domain.StationApproval, domain.SectorInfrastructure, nil, nil, ""),
	}
	rows[0].Nickname, rows[0].Productivity = "Ruta 9", domain.ProductivityHighDelay
	rows[2].Nickname, rows[2].Productivity = "Silos", domain.ProductivityModerateDelay
	rows[3].Nickname, rows[3].Productivity = "Acueducto", domain.ProductivityHighDelay
	rows[5].Nickname, rows[5].Productivity = "Escuelas", "En Plazo"
	return rows
}
