package httpadapter

import (
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   domain.Query
	}{
		{
			name:   "defaults",
			target: "/",
			want:   domain.DefaultQuery(),
		},
		{
			name:   "all parameters",
			target: "/?indicator=vci&region=Kyiv%20City&year_from=1990&year_to=1995&week_from=20&week_to=30&asc=on",
			want: domain.Query{
				Indicator: domain.VCI,
				Region:    "Kyiv City",
				Years:     domain.Range{From: 1990, To: 1995},
				Weeks:     domain.Range{From: 20, To: 30},
				Ascending: true,
			},
		},
		{
			name:   "both sort flags kept",
			target: "/?asc=1&desc=true",
			want: func() domain.Query {
				q := domain.DefaultQuery()
				q.Ascending, q.Descending = true, true
				return q
			}(),
		},
		{
			name:   "reset keeps indicator only",
			target: "/?indicator=TCI&region=Kyiv&week_from=7&desc=true&reset=true",
			want:   domain.Query{Indicator: domain.TCI}.Reset(),
		},
		{
			name:   "unknown indicator passes through",
			target: "/?indicator=NDVI",
			want: func() domain.Query {
				q := domain.DefaultQuery()
				q.Indicator = "NDVI"
				return q
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := parseQuery(httptest.NewRequest("GET", tt.target, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, q)
		})
	}
}

func TestParseQuery_Errors(t *testing.T) {
	tests := []struct {
		target string
		param  string
	}{
		{"/?year_from=x", paramYearFrom},
		{"/?year_to=2020.5", paramYearTo},
		{"/?week_from=", ""},
		{"/?desc=yes", paramDesc},
		{"/?reset=please", paramReset},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			_, err := parseQuery(httptest.NewRequest("GET", tt.target, nil))
			if tt.param == "" {
				require.NoError(t, err, "empty values fall back to defaults")
				return
			}
			require.Error(t, err)
			var pe *paramError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.param, pe.name)
			assert.ErrorIs(t, err, strconv.ErrSyntax)
		})
	}
}

func TestEncodeQuery_RoundTrip(t *testing.T) {
	q := domain.Query{
		Indicator:  domain.VHI,
		Region:     "Kharkiv`",
		Years:      domain.Range{From: 2001, To: 2003},
		Weeks:      domain.Range{From: 2, To: 50},
		Descending: true,
	}

	got, err := parseQuery(httptest.NewRequest("GET", "/?"+encodeQuery(q).Encode(), nil))
	require.NoError(t, err)
	assert.Equal(t, q, got)
}
