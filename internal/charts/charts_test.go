package charts

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

func sampleReport() domain.DashboardReport {
	return domain.DashboardReport{
		KPIByCountryStation: []domain.StationKPI{
			{Country: "Bolivia", Station: domain.StationApproval, MeanKPI: domain.Float(2), Color: "lightgreen"},
			{Country: "Brasil", Station: domain.StationApproval, MeanKPI: domain.Float(4), Color: "lightgreen"},
			{Country: "Brasil", Station: domain.StationEffectiveness, MeanKPI: nil, Color: "skyblue"},
		},
		ContributionByCountry: []domain.CountryContribution{
			{Country: "Bolivia", Millions: 1, Percentage: 25, Color: "#F39200"},
			{Country: "Brasil", Millions: 3, Percentage: 75, Color: "#009640"},
		},
		SectorEpisodeCounts: []domain.SectorEpisodes{
			{Sector: domain.SectorInfrastructure, Episodes: 1, Color: "#F2D030"},
			{Sector: domain.SectorSocial, Episodes: 1, Color: "#20EDB6"},
		},
	}
}

func TestRender(t *testing.T) {
	reports := map[string]domain.DashboardReport{
		"populated": sampleReport(),
		"empty":     {},
	}

	for label, report := range reports {
		for _, name := range Names {
			t.Run(label+"/"+name, func(t *testing.T) {
				data, err := PNG(name, report)
				require.NoError(t, err)

				img, err := png.Decode(bytes.NewReader(data))
				require.NoError(t, err)
				assert.Positive(t, img.Bounds().Dx())
			})
		}
	}
}

func TestRender_UndefinedShares(t *testing.T) {
	report := domain.DashboardReport{
		ContributionByCountry: []domain.CountryContribution{
			{Country: "Bolivia", Color: "#F39200"},
			{Country: "Brasil", Color: "#009640"},
		},
	}

	for _, name := range []string{Contributions, ContributionShare} {
		t.Run(name, func(t *testing.T) {
			data, err := PNG(name, report)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
		})
	}
}

func TestNominalX_Empty(t *testing.T) {
	p := newPlot("t", "x", "y")

	require.NoError(t, nominalX(p, nil))

	assert.Equal(t, 0.0, p.X.Min)
	assert.Equal(t, 1.0, p.X.Max)
	assert.Equal(t, 1.0, p.Y.Max)
}

func TestNewRing_SkipsEmptyWedges(t *testing.T) {
	r := newRing([]domain.CountryContribution{
		{Country: "Bolivia", Percentage: 25, Color: "#F39200"},
		{Country: "Paraguay", Percentage: 0, Color: "#E30613"},
		{Country: "Brasil", Percentage: 75, Color: "#009640"},
		{Country: "Uruguay", Percentage: math.NaN(), Color: "#27348B"},
	})

	require.Len(t, r.wedges, 2)
	assert.Equal(t, "Bolivia", r.wedges[0].label)
	assert.Equal(t, "Brasil", r.wedges[1].label)
}

func TestRender_UnknownChart(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, "pie", sampleReport())

	assert.ErrorIs(t, err, ErrUnknownChart)
	assert.Zero(t, buf.Len())
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.Color
	}{
		{"#F39200", color.RGBA{R: 0xF3, G: 0x92, B: 0x00, A: 255}},
		{"lightgreen", color.RGBA{R: 0x90, G: 0xEE, B: 0x90, A: 255}},
		{"Salmon", color.RGBA{R: 0xFA, G: 0x80, B: 0x72, A: 255}},
		{"", fallbackColor},
		{"#zzzzzz", fallbackColor},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseColor(tt.in))
		})
	}
}

func TestFinite(t *testing.T) {
	assert.Equal(t, 0.0, finite(nil))
	assert.Equal(t, 0.0, finite(domain.Float(math.NaN())))
	assert.Equal(t, 0.0, finiteValue(math.Inf(1)))
	assert.Equal(t, 2.5, finite(domain.Float(2.5)))
}
