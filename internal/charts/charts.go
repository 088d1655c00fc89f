// Package charts renders the dashboard bar charts as PNG images.
package charts

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

// Chart names accepted by Render.
const (
	KPIByStation      = "kpi-by-station"
	Contributions     = "contributions"
	ContributionShare = "contribution-share"
	Sectors           = "sectors"
)

// Names lists every chart in display order.
var Names = []string{KPIByStation, Contributions, ContributionShare, Sectors}

// ErrUnknownChart is returned for a chart name outside Names.
var ErrUnknownChart = fmt.Errorf("unknown chart")

const (
	defaultWidth  = 8 * vg.Inch
	defaultHeight = 5 * vg.Inch
	barWidth      = vg.Length(18)
)

const noDataText = "Sin datos"

var fallbackColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}

// Render writes chart name for report as PNG.
func Render(w io.Writer, name string, report domain.DashboardReport) error {
	var (
		p   *plot.Plot
		err error
	)
	switch name {
	case KPIByStation:
		p, err = kpiByStation(report.KPIByCountryStation)
	case Contributions:
		p, err = contributions(report.ContributionByCountry)
	case ContributionShare:
		p, err = contributionShare(report.ContributionByCountry)
	case Sectors:
		p, err = sectors(report.SectorEpisodeCounts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	if err != nil {
		return fmt.Errorf("build %s chart: %w", name, err)
	}

	wt, err := p.WriterTo(defaultWidth, defaultHeight, "png")
	if err != nil {
		return fmt.Errorf("encode %s chart: %w", name, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// PNG renders chart name into a byte slice.
func PNG(name string, report domain.DashboardReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, name, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Y.Min = 0
	p.Add(plotter.NewGrid())
	return p
}

// kpiByStation draws one bar group per country with a bar per station.
func kpiByStation(rows []domain.StationKPI) (*plot.Plot, error) {
	p := newPlot("Promedio de KPI por País y Estación", "País", "KPI (meses)")

	var countries []string
	var stations []domain.Station
	countryIdx := make(map[string]int)
	stationIdx := make(map[domain.Station]int)
	for _, r := range rows {
		if _, ok := countryIdx[r.Country]; !ok {
			countryIdx[r.Country] = len(countries)
			countries = append(countries, r.Country)
		}
		if _, ok := stationIdx[r.Station]; !ok {
			stationIdx[r.Station] = len(stations)
			stations = append(stations, r.Station)
		}
	}

	values := make([]plotter.Values, len(stations))
	for i := range values {
		values[i] = make(plotter.Values, len(countries))
	}
	for _, r := range rows {
		values[stationIdx[r.Station]][countryIdx[r.Country]] = finite(r.MeanKPI)
	}

	for i, st := range stations {
		bars, err := plotter.NewBarChart(values[i], barWidth)
		if err != nil {
			return nil, err
		}
		bars.Color = parseColor(stationColor(rows, st))
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(float64(i)-float64(len(stations)-1)/2) * barWidth
		p.Add(bars)
		p.Legend.Add(string(st), bars)
	}
	p.Legend.Top = true
	return p, nominalX(p, countries)
}

// stationColor returns the colour attached to the first row of station st.
func stationColor(rows []domain.StationKPI, st domain.Station) string {
	for _, r := range rows {
		if r.Station == st {
			return r.Color
		}
	}
	return ""
}

func contributions(rows []domain.CountryContribution) (*plot.Plot, error) {
	p := newPlot("Aporte FONPLATA por País", "País", "Millones de USD")

	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.Country
		if err := addBar(p, i, r.Millions, r.Color); err != nil {
			return nil, err
		}
	}
	return p, nominalX(p, labels)
}

func sectors(rows []domain.SectorEpisodes) (*plot.Plot, error) {
	p := newPlot("Operaciones por Sector", "Sector", "Etapas distintas")

	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = string(r.Sector)
		if err := addBar(p, i, float64(r.Episodes), r.Color); err != nil {
			return nil, err
		}
	}
	return p, nominalX(p, labels)
}

// nominalX names the bar positions. An empty view keeps a unit range and
// prints a placeholder, since plot.NominalX needs at least one name.
func nominalX(p *plot.Plot, labels []string) error {
	if len(labels) > 0 {
		p.NominalX(labels...)
		return nil
	}
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	p.HideX()
	return addNoData(p, 0.5, 0.5)
}

func addNoData(p *plot.Plot, x, y float64) error {
	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: x, Y: y}},
		Labels: []string{noDataText},
	})
	if err != nil {
		return err
	}
	labels.TextStyle[0].XAlign = draw.XCenter
	labels.TextStyle[0].YAlign = draw.YCenter
	p.Add(labels)
	return nil
}

// addBar draws a single coloured bar at nominal position i.
func addBar(p *plot.Plot, i int, v float64, hex string) error {
	bars, err := plotter.NewBarChart(plotter.Values{finiteValue(v)}, barWidth*2)
	if err != nil {
		return err
	}
	bars.XMin = float64(i)
	bars.Color = parseColor(hex)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: float64(i), Y: finiteValue(v)}},
		Labels: []string{strconv.FormatFloat(v, 'f', 2, 64)},
	})
	if err != nil {
		return err
	}
	for j := range labels.TextStyle {
		labels.TextStyle[j].XAlign = draw.XCenter
	}
	p.Add(labels)
	return nil
}

// finite maps a missing or non-finite mean to a zero height bar.
func finite(v *float64) float64 {
	if v == nil {
		return 0
	}
	return finiteValue(*v)
}

func finiteValue(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// parseColor accepts "#RRGGBB" or an SVG colour name.
func parseColor(s string) color.Color {
	s = strings.TrimSpace(strings.ToLower(s))
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
		}
	}
	if c, ok := colornames.Map[s]; ok {
		return c
	}
	return fallbackColor
}
