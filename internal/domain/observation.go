package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Indicator names one of the weekly health indices a view is built on.
type Indicator string

const (
	VCI Indicator = "VCI"
	TCI Indicator = "TCI"
	VHI Indicator = "VHI"
)

// Indicators lists the selectable indices in control panel order.
var Indicators = []Indicator{VCI, TCI, VHI}

// Valid reports whether the indicator is one of VCI, TCI or VHI.
func (i Indicator) Valid() bool {
	switch i {
	case VCI, TCI, VHI:
		return true
	default:
		return false
	}
}

// Value is a source cell that may or may not hold a number. Text keeps the
// trimmed source text so non-numeric cells survive untouched.
type Value struct {
	Text    string
	Number  float64
	Numeric bool
}

// ParseValue coerces a raw cell to a number, keeping the text on failure.
// NaN and infinities are not numbers.
func ParseValue(raw string) Value {
	text := strings.TrimSpace(raw)
	n, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return Value{Text: text}
	}
	return Value{Text: text, Number: n, Numeric: true}
}

// Num builds a numeric Value.
func Num(n float64) Value {
	return Value{Text: strconv.FormatFloat(n, 'f', -1, 64), Number: n, Numeric: true}
}

func (v Value) String() string {
	if v.Numeric {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

// MarshalJSON writes numbers as JSON numbers and anything else as a string.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Numeric && !math.IsInf(v.Number, 0) {
		return json.Marshal(v.Number)
	}
	return json.Marshal(v.Text)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Num(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = ParseValue(s)
	return nil
}

// Observation is one normalized weekly row for one region.
type Observation struct {
	Year     int    `json:"year"`
	Week     int    `json:"week"`
	SMN      Value  `json:"SMN"`
	SMT      Value  `json:"SMT"`
	VCI      Value  `json:"VCI"`
	TCI      Value  `json:"TCI"`
	VHI      Value  `json:"VHI"`
	Region   string `json:"region"`
	RegionID *int   `json:"region_id"` // nil when Region is not in the catalog
}

// Indicator returns the value of the selected index. ok is false for an
// unknown indicator.
func (o Observation) Indicator(ind Indicator) (Value, bool) {
	switch ind {
	case VCI:
		return o.VCI, true
	case TCI:
		return o.TCI, true
	case VHI:
		return o.VHI, true
	default:
		return Value{}, false
	}
}

// FileSummary records what one source file contributed to a dataset.
type FileSummary struct {
	Name     string `json:"name" yaml:"name"`
	Region   string `json:"region" yaml:"region"`
	RegionID *int   `json:"region_id" yaml:"region_id"`
	RowsRead int    `json:"rows_read" yaml:"rows_read"`
	RowsKept int    `json:"rows_kept" yaml:"rows_kept"`
}

// Dataset is the unified, ordered concatenation of every region's
// observations. It is built once per load and never mutated; views are
// derived into new slices.
type Dataset struct {
	ID        uuid.UUID     `json:"id"`
	Directory string        `json:"directory"`
	LoadedAt  time.Time     `json:"loaded_at"`
	Files     []FileSummary `json:"files"`

	rows []Observation
}

// NewDataset takes ownership of rows.
func NewDataset(dir string, files []FileSummary, rows []Observation) *Dataset {
	return &Dataset{
		ID:        uuid.New(),
		Directory: dir,
		LoadedAt:  clock.Now(),
		Files:     files,
		rows:      rows,
	}
}

// Len returns the number of observations.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Rows returns a copy of the observations in dataset order.
func (d *Dataset) Rows() []Observation {
	if d == nil {
		return nil
	}
	out := make([]Observation, len(d.rows))
	copy(out, d.rows)
	return out
}

// At returns the i-th observation.
func (d *Dataset) At(i int) Observation { return d.rows[i] }
