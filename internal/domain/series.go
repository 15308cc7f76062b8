package domain

import "sort"

// Point is one (week, value) sample of a line chart series.
type Point struct {
	Week  int     `json:"week"`
	Value float64 `json:"value"`
}

// YearSeries is the line drawn for one year in the weekly chart.
type YearSeries struct {
	Year   int     `json:"year"`
	Points []Point `json:"points"`
}

// WeeklySeries groups rows by year (ascending) with points ordered by week.
// Rows whose indicator is not numeric are left out of the chart.
func WeeklySeries(rows []Observation, ind Indicator) []YearSeries {
	byYear := make(map[int][]Point)
	for _, o := range rows {
		v, ok := o.Indicator(ind)
		if !ok || !v.Numeric {
			continue
		}
		byYear[o.Year] = append(byYear[o.Year], Point{Week: o.Week, Value: v.Number})
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]YearSeries, 0, len(years))
	for _, y := range years {
		pts := byYear[y]
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Week < pts[j].Week })
		out = append(out, YearSeries{Year: y, Points: pts})
	}
	return out
}
