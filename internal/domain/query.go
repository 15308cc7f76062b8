package domain

// AllRegions is the region selection that disables region narrowing.
const AllRegions = "All"

// Slider bounds and defaults of the control panel.
const (
	YearMin = 1982
	YearMax = 2024
	WeekMin = 1
	WeekMax = 52
)

// Range is an inclusive integer interval.
type Range struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Contains reports whether v lies within [From, To].
func (r Range) Contains(v int) bool {
	return v >= r.From && v <= r.To
}

// SortOrder is the effective sort derived from the two control panel flags.
type SortOrder int

const (
	Unsorted SortOrder = iota
	Ascending
	Descending
)

func (s SortOrder) String() string {
	switch s {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return "unsorted"
	}
}

// Query carries the filter parameters of one dashboard evaluation.
type Query struct {
	Indicator  Indicator `json:"indicator"`
	Region     string    `json:"region"`
	Years      Range     `json:"years"`
	Weeks      Range     `json:"weeks"`
	Ascending  bool      `json:"ascending"`
	Descending bool      `json:"descending"`
}

// DefaultQuery returns the control panel's initial state.
func DefaultQuery() Query {
	return Query{
		Indicator: VHI,
		Region:    AllRegions,
		Years:     Range{From: 2010, To: 2020},
		Weeks:     Range{From: 1, To: 10},
	}
}

// Reset widens the query to the full slider ranges, selects every region and
// clears both sort flags. The indicator selection is kept.
func (q Query) Reset() Query {
	return Query{
		Indicator: q.Indicator,
		Region:    AllRegions,
		Years:     Range{From: YearMin, To: YearMax},
		Weeks:     Range{From: WeekMin, To: WeekMax},
	}
}

// Order resolves the two independent sort flags. Setting both flags is the
// same as setting neither.
func (q Query) Order() SortOrder {
	switch {
	case q.Ascending && !q.Descending:
		return Ascending
	case q.Descending && !q.Ascending:
		return Descending
	default:
		return Unsorted
	}
}

// AllRegionsSelected reports whether region narrowing is disabled.
func (q Query) AllRegionsSelected() bool {
	return q.Region == AllRegions
}
