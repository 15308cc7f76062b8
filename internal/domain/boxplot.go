package domain

import (
	"math"
	"sort"
)

// RegionBox holds the five-number summary drawn for one region in the
// comparison chart. Whiskers reach the furthest sample within 1.5 IQR of the
// box; anything beyond is listed in Outliers.
type RegionBox struct {
	Region      string    `json:"region"`
	RegionID    *int      `json:"region_id"`
	Count       int       `json:"count"`
	Min         float64   `json:"min"`
	Q1          float64   `json:"q1"`
	Median      float64   `json:"median"`
	Q3          float64   `json:"q3"`
	Max         float64   `json:"max"`
	WhiskerLow  float64   `json:"whisker_low"`
	WhiskerHigh float64   `json:"whisker_high"`
	Outliers    []float64 `json:"outliers"`
}

// BoxStats summarizes the numeric indicator values of each region. Catalog
// regions come first in code order, then unknown regions in order of first
// appearance. Regions without numeric values are omitted.
func BoxStats(rows []Observation, ind Indicator) []RegionBox {
	values := make(map[string][]float64)
	ids := make(map[string]*int)
	var unknown []string

	for _, o := range rows {
		v, ok := o.Indicator(ind)
		if !ok || !v.Numeric {
			continue
		}
		if _, seen := values[o.Region]; !seen {
			ids[o.Region] = o.RegionID
			if _, known := Catalog.Code(o.Region); !known {
				unknown = append(unknown, o.Region)
			}
		}
		values[o.Region] = append(values[o.Region], v.Number)
	}

	order := make([]string, 0, len(values))
	for _, name := range Catalog.Names() {
		if _, ok := values[name]; ok {
			order = append(order, name)
		}
	}
	order = append(order, unknown...)

	out := make([]RegionBox, 0, len(order))
	for _, name := range order {
		box := summarize(values[name])
		box.Region = name
		box.RegionID = ids[name]
		out = append(out, box)
	}
	return out
}

func summarize(vals []float64) RegionBox {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	b := RegionBox{
		Count:    len(sorted),
		Min:      sorted[0],
		Max:      sorted[len(sorted)-1],
		Q1:       quantile(sorted, 0.25),
		Median:   quantile(sorted, 0.5),
		Q3:       quantile(sorted, 0.75),
		Outliers: []float64{},
	}

	iqr := b.Q3 - b.Q1
	lowFence := b.Q1 - 1.5*iqr
	highFence := b.Q3 + 1.5*iqr
	b.WhiskerLow, b.WhiskerHigh = b.Q1, b.Q3
	for _, v := range sorted {
		if v < lowFence || v > highFence {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		b.WhiskerLow = math.Min(b.WhiskerLow, v)
		b.WhiskerHigh = math.Max(b.WhiskerHigh, v)
	}
	return b
}

// quantile interpolates linearly between closest ranks of sorted data.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
