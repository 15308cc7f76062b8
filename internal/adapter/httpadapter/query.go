package httpadapter

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/vhi-dashboard/internal/domain"
)

// Query string parameters of the control panel.
const (
	paramIndicator = "indicator"
	paramRegion    = "region"
	paramYearFrom  = "year_from"
	paramYearTo    = "year_to"
	paramWeekFrom  = "week_from"
	paramWeekTo    = "week_to"
	paramAsc       = "asc"
	paramDesc      = "desc"
	paramReset     = "reset"
)

// paramError marks a malformed query parameter.
type paramError struct {
	name  string
	value string
	err   error
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.name, e.value, e.err)
}

func (e *paramError) Unwrap() error { return e.err }

// parseQuery overlays request parameters on the panel defaults. Reset widens
// every range and keeps only the indicator.
func parseQuery(r *http.Request) (domain.Query, error) {
	v := r.URL.Query()
	q := domain.DefaultQuery()

	if ind := strings.TrimSpace(v.Get(paramIndicator)); ind != "" {
		q.Indicator = domain.Indicator(strings.ToUpper(ind))
	}

	reset, err := boolParam(v, paramReset)
	if err != nil {
		return domain.Query{}, err
	}
	if reset {
		return q.Reset(), nil
	}

	if region := v.Get(paramRegion); region != "" {
		q.Region = region
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{paramYearFrom, &q.Years.From},
		{paramYearTo, &q.Years.To},
		{paramWeekFrom, &q.Weeks.From},
		{paramWeekTo, &q.Weeks.To},
	}
	for _, p := range ints {
		raw := v.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return domain.Query{}, &paramError{name: p.name, value: raw, err: err}
		}
		*p.dst = n
	}

	if q.Ascending, err = boolParam(v, paramAsc); err != nil {
		return domain.Query{}, err
	}
	if q.Descending, err = boolParam(v, paramDesc); err != nil {
		return domain.Query{}, err
	}
	return q, nil
}

// boolParam accepts strconv.ParseBool spellings plus "on" from HTML
// checkboxes. Absent means false.
func boolParam(v url.Values, name string) (bool, error) {
	raw := strings.TrimSpace(v.Get(name))
	switch strings.ToLower(raw) {
	case "":
		return false, nil
	case "on":
		return true, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &paramError{name: name, value: raw, err: err}
	}
	return b, nil
}

// encodeQuery is the inverse of parseQuery, used to build chart and export
// links from the panel.
func encodeQuery(q domain.Query) url.Values {
	v := url.Values{}
	v.Set(paramIndicator, string(q.Indicator))
	v.Set(paramRegion, q.Region)
	v.Set(paramYearFrom, strconv.Itoa(q.Years.From))
	v.Set(paramYearTo, strconv.Itoa(q.Years.To))
	v.Set(paramWeekFrom, strconv.Itoa(q.Weeks.From))
	v.Set(paramWeekTo, strconv.Itoa(q.Weeks.To))
	if q.Ascending {
		v.Set(paramAsc, "true")
	}
	if q.Descending {
		v.Set(paramDesc, "true")
	}
	return v
}
