package charts

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

const (
	// ringStart is where the first wedge begins, counter-clockwise from 3 o'clock.
	ringStart = 140 * math.Pi / 180
	// ringWidth is the ring thickness as a share of the outer radius.
	ringWidth = 0.6
)

// wedge is one country slice of the contribution ring.
type wedge struct {
	label   string
	percent float64
	color   color.Color
}

// ring draws percentage wedges as a donut centred on the data area.
type ring struct {
	wedges []wedge
}

func contributionShare(rows []domain.CountryContribution) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Porcentaje del Aporte FONPLATA por País"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.HideAxes()

	r := newRing(rows)
	for _, w := range r.wedges {
		p.Legend.Add(w.label, swatch{w.color})
	}

	if len(r.wedges) == 0 {
		p.X.Min, p.X.Max = 0, 1
		p.Y.Min, p.Y.Max = 0, 1
		return p, addNoData(p, 0.5, 0.5)
	}
	p.Legend.Top = true
	p.Add(r)
	return p, nil
}

// newRing keeps the countries with a positive share, in row order.
func newRing(rows []domain.CountryContribution) *ring {
	r := &ring{}
	for _, row := range rows {
		pct := finiteValue(row.Percentage)
		if pct <= 0 {
			continue
		}
		r.wedges = append(r.wedges, wedge{label: row.Country, percent: pct, color: parseColor(row.Color)})
	}
	return r
}

// Plot implements plot.Plotter.
func (r *ring) Plot(c draw.Canvas, plt *plot.Plot) {
	var total float64
	for _, w := range r.wedges {
		total += w.percent
	}
	if total <= 0 {
		return
	}

	center := c.Center()
	outer := min(c.Max.X-c.Min.X, c.Max.Y-c.Min.Y) / 2 * 0.9
	inner := outer * (1 - ringWidth)

	sty := plt.Title.TextStyle
	sty.Font.Size = vg.Points(10)
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YCenter
	sty.Color = color.White

	start := ringStart
	for _, w := range r.wedges {
		sweep := 2 * math.Pi * w.percent / total

		var path vg.Path
		path.Arc(center, outer, start, sweep)
		path.Arc(center, inner, start+sweep, -sweep)
		path.Close()
		c.SetColor(w.color)
		c.Fill(path)

		c.SetColor(color.White)
		c.SetLineWidth(vg.Points(1))
		c.Stroke(path)

		mid := start + sweep/2
		at := (outer + inner) / 2
		pt := vg.Point{
			X: center.X + at*vg.Length(math.Cos(mid)),
			Y: center.Y + at*vg.Length(math.Sin(mid)),
		}
		c.FillText(sty, pt, fmt.Sprintf("%.1f%%", w.percent/total*100))

		start += sweep
	}
}

// swatch is a filled legend square.
type swatch struct {
	color color.Color
}

// Thumbnail implements plot.Thumbnailer.
func (s swatch) Thumbnail(c *draw.Canvas) {
	c.FillPolygon(s.color, []vg.Point{
		c.Min,
		{X: c.Max.X, Y: c.Min.Y},
		c.Max,
		{X: c.Min.X, Y: c.Max.Y},
	})
}
