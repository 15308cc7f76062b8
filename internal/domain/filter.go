package domain

import "sort"

// TableRow is the projection shown in the table tab.
type TableRow struct {
	Year   int    `json:"year"`
	Week   int    `json:"week"`
	Region string `json:"region"`
	Value  Value  `json:"value"`
}

// Filter derives the table/line-chart view: rows inside the year and week
// ranges, narrowed to q.Region unless every region is selected, then sorted
// by the selected indicator according to q.Order. An unknown indicator
// yields an empty view.
func Filter(ds *Dataset, q Query) []Observation {
	if !q.Indicator.Valid() {
		return []Observation{}
	}
	out := make([]Observation, 0)
	for i := 0; i < ds.Len(); i++ {
		o := ds.At(i)
		if !q.Years.Contains(o.Year) || !q.Weeks.Contains(o.Week) {
			continue
		}
		if !q.AllRegionsSelected() && o.Region != q.Region {
			continue
		}
		out = append(out, o)
	}
	sortByIndicator(out, q.Indicator, q.Order())
	return out
}

// Compare derives the region-comparison view. It honours the year and week
// ranges only: region narrowing and sorting do not apply.
func Compare(ds *Dataset, q Query) []Observation {
	if !q.Indicator.Valid() {
		return []Observation{}
	}
	out := make([]Observation, 0)
	for i := 0; i < ds.Len(); i++ {
		o := ds.At(i)
		if q.Years.Contains(o.Year) && q.Weeks.Contains(o.Week) {
			out = append(out, o)
		}
	}
	return out
}

// Table projects observations onto year, week, region and one indicator.
func Table(rows []Observation, ind Indicator) []TableRow {
	out := make([]TableRow, 0, len(rows))
	for _, o := range rows {
		v, _ := o.Indicator(ind)
		out = append(out, TableRow{Year: o.Year, Week: o.Week, Region: o.Region, Value: v})
	}
	return out
}

// sortByIndicator sorts in place and is stable. Non-numeric values always
// sort after numeric ones.
func sortByIndicator(rows []Observation, ind Indicator, order SortOrder) {
	if order == Unsorted {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, _ := rows[i].Indicator(ind)
		b, _ := rows[j].Indicator(ind)
		switch {
		case a.Numeric && !b.Numeric:
			return true
		case !a.Numeric:
			return false
		case order == Descending:
			return a.Number > b.Number
		default:
			return a.Number < b.Number
		}
	})
}
