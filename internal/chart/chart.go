// Package chart renders the weekly line chart and the region box plot.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when a view has nothing to plot.
var ErrNoData = errors.New("no numeric values to plot")

// Format selects the output encoding.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat accepts "png" or "svg" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case PNG, SVG:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported chart format %q", s)
	}
}

// ContentType returns the HTTP media type of the format.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) renderer() chart.RendererProvider {
	if f == SVG {
		return chart.SVG
	}
	return chart.PNG
}

const (
	width  = 1024
	height = 480

	boxHalfWidth = 0.3
	tickHalf     = 0.08
)

// Weekly draws one line per year, week on the x axis and the indicator value
// on the y axis.
func Weekly(w io.Writer, series []domain.YearSeries, ind domain.Indicator, format Format) error {
	lines := make([]chart.Series, 0, len(series))
	lo, hi := math.Inf(1), math.Inf(-1)
	weekLo, weekHi := math.Inf(1), math.Inf(-1)

	for i, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for j, p := range s.Points {
			xs[j] = float64(p.Week)
			ys[j] = p.Value
			lo, hi = math.Min(lo, p.Value), math.Max(hi, p.Value)
			weekLo, weekHi = math.Min(weekLo, xs[j]), math.Max(weekHi, xs[j])
		}
		lines = append(lines, chart.ContinuousSeries{
			Name:    strconv.Itoa(s.Year),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(i),
				StrokeWidth: 2,
			},
		})
	}
	if len(lines) == 0 {
		return ErrNoData
	}

	ch := chart.Chart{
		Title:      fmt.Sprintf("Weekly %s", ind),
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "Week",
			Range:          paddedRange(weekLo, weekHi, 0),
			ValueFormatter: intFormatter,
		},
		YAxis: chart.YAxis{
			Name:  string(ind),
			Range: paddedRange(lo, hi, 0.05),
		},
		Series: lines,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return ch.Render(format.renderer(), w)
}

// Comparison draws a box plot with one box per region, built from line
// segments: box outline, median, whiskers and a short tick per outlier.
func Comparison(w io.Writer, boxes []domain.RegionBox, ind domain.Indicator, format Format) error {
	if len(boxes) == 0 {
		return ErrNoData
	}

	var segments []chart.Series
	// Unlabelled end ticks keep a margin around the outer boxes; the axis
	// range is taken from the tick extent.
	ticks := make([]chart.Tick, 0, len(boxes)+2)
	ticks = append(ticks, chart.Tick{Value: 0})
	lo, hi := math.Inf(1), math.Inf(-1)

	for i, b := range boxes {
		x := float64(i + 1)
		col := chart.GetDefaultColor(i)
		ticks = append(ticks, chart.Tick{Value: x, Label: b.Region})
		lo, hi = math.Min(lo, b.Min), math.Max(hi, b.Max)

		left, right := x-boxHalfWidth, x+boxHalfWidth
		segments = append(segments,
			segment(col, 2, []float64{left, right, right, left, left}, []float64{b.Q1, b.Q1, b.Q3, b.Q3, b.Q1}),
			segment(drawing.ColorBlack, 3, []float64{left, right}, []float64{b.Median, b.Median}),
			segment(col, 1, []float64{x, x}, []float64{b.WhiskerLow, b.Q1}),
			segment(col, 1, []float64{x, x}, []float64{b.Q3, b.WhiskerHigh}),
			segment(col, 1, []float64{x - boxHalfWidth/2, x + boxHalfWidth/2}, []float64{b.WhiskerLow, b.WhiskerLow}),
			segment(col, 1, []float64{x - boxHalfWidth/2, x + boxHalfWidth/2}, []float64{b.WhiskerHigh, b.WhiskerHigh}),
		)
		for _, o := range b.Outliers {
			segments = append(segments, segment(col, 1, []float64{x - tickHalf, x + tickHalf}, []float64{o, o}))
		}
	}
	ticks = append(ticks, chart.Tick{Value: float64(len(boxes) + 1)})

	ch := chart.Chart{
		Title:      fmt.Sprintf("%s by region", ind),
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 80}},
		XAxis: chart.XAxis{
			Ticks:     ticks,
			TickStyle: chart.Style{TextRotationDegrees: 45},
		},
		YAxis: chart.YAxis{
			Name:  string(ind),
			Range: paddedRange(lo, hi, 0.05),
		},
		Series: segments,
	}

	return ch.Render(format.renderer(), w)
}

func segment(col drawing.Color, strokeWidth float64, xs, ys []float64) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeColor: col,
			StrokeWidth: strokeWidth,
		},
	}
}

// paddedRange widens [lo, hi] by frac of its span. A zero span gets one unit
// either side so the axis is never degenerate.
func paddedRange(lo, hi, frac float64) *chart.ContinuousRange {
	span := hi - lo
	if span == 0 {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	return &chart.ContinuousRange{Min: lo - span*frac, Max: hi + span*frac}
}

func intFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(math.Round(f)))
	}
	return ""
}
