package domain

// Source column headers of the stations spreadsheet.
const (
	ColumnYear         = "AÑO"
	ColumnCountry      = "Pais"
	ColumnStation      = "Estaciones"
	ColumnSector       = "SEC"
	ColumnKPI          = "KPI"
	ColumnContribution = "AporteFONPLATAVigente"
	ColumnEpisodeID    = "IDEtapa"
	ColumnNickname     = "APODO"
	ColumnProductivity = "Productividad"
)

// RequiredColumns lists every header a source table must carry.
var RequiredColumns = []string{
	ColumnYear,
	ColumnCountry,
	ColumnStation,
	ColumnSector,
	ColumnKPI,
	ColumnContribution,
	ColumnEpisodeID,
	ColumnNickname,
	ColumnProductivity,
}

// Station is a milestone a project passes through.
type Station string

const (
	StationApproval          Station = "Aprobacion"
	StationEffectiveness     Station = "Vigencia"
	StationFirstDisbursement Station = "PrimerDesembolso"
	StationEligibility       Station = "Elegibilidad"
)

// SectorCode classifies a project.
type SectorCode string

const (
	SectorInfrastructure SectorCode = "INF"
	SectorSocial         SectorCode = "SOC"
	SectorProductive     SectorCode = "PRO"
)

// KnownSectors is the fixed sector set reported on the metric cards.
var KnownSectors = []SectorCode{SectorInfrastructure, SectorSocial, SectorProductive}

// Productivity status labels used by the delay tables.
const (
	ProductivityHighDelay     = "Alta Demora"
	ProductivityModerateDelay = "Con Demora"
)

// Record is one row of the stations table. Records are never mutated after
// they are decoded.
type Record struct {
	Year         int        `json:"year"`
	Country      string     `json:"country"`
	Station      Station    `json:"station"`
	Sector       SectorCode `json:"sector"`
	KPI          *float64   `json:"kpi"`
	Contribution *float64   `json:"contribution"`
	EpisodeID    string     `json:"episode_id"`
	Nickname     string     `json:"nickname"`
	Productivity string     `json:"productivity"`
}

// HasKPI reports whether the KPI cell held a number.
func (r Record) HasKPI() bool {
	return r.KPI != nil
}

// HasContribution reports whether the contribution cell held a number.
func (r Record) HasContribution() bool {
	return r.Contribution != nil
}

// Float returns a pointer to v. It keeps literal optional values short.
func Float(v float64) *float64 {
	return &v
}
