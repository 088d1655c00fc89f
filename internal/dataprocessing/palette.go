package dataprocessing

import "github.com/acspacelit/indicadores/pkg/contracts/domain"

// StationColors is the chart colour of each station.
var StationColors = map[domain.Station]string{
	domain.StationApproval:          "lightgreen",
	domain.StationEffectiveness:     "skyblue",
	domain.StationFirstDisbursement: "salmon",
	domain.StationEligibility:       "gold",
}

// CountryColors is the chart colour of each member country.
var CountryColors = map[string]string{
	"Argentina": "#36A9E1",
	"Bolivia":   "#F39200",
	"Brasil":    "#009640",
	"Paraguay":  "#E30613",
	"Uruguay":   "#27348B",
}

// SectorColors is the chart colour of each sector code.
var SectorColors = map[domain.SectorCode]string{
	domain.SectorInfrastructure: "#F2D030",
	domain.SectorProductive:     "#F04343",
	domain.SectorSocial:         "#20EDB6",
}
