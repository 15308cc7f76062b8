package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultQuery(t *testing.T) {
	q := DefaultQuery()

	assert.Equal(t, VHI, q.Indicator)
	assert.Equal(t, AllRegions, q.Region)
	assert.Equal(t, Range{2010, 2020}, q.Years)
	assert.Equal(t, Range{1, 10}, q.Weeks)
	assert.Equal(t, Unsorted, q.Order())
}

func TestQuery_ResetKeepsIndicator(t *testing.T) {
	q := Query{Indicator: TCI, Region: "Kyiv", Years: Range{2015, 2016}, Weeks: Range{3, 4}, Ascending: true}

	r := q.Reset()
	assert.Equal(t, TCI, r.Indicator)
	assert.Equal(t, AllRegions, r.Region)
	assert.Equal(t, Range{1982, 2024}, r.Years)
	assert.Equal(t, Range{1, 52}, r.Weeks)
	assert.False(t, r.Ascending)
	assert.False(t, r.Descending)
}

func TestQuery_Order(t *testing.T) {
	tests := []struct {
		asc, desc bool
		want      SortOrder
	}{
		{false, false, Unsorted},
		{true, false, Ascending},
		{false, true, Descending},
		{true, true, Unsorted},
	}
	for _, tt := range tests {
		q := Query{Ascending: tt.asc, Descending: tt.desc}
		assert.Equal(t, tt.want, q.Order(), "asc=%v desc=%v", tt.asc, tt.desc)
	}
	assert.Equal(t, "descending", Descending.String())
}

func TestRange_Contains(t *testing.T) {
	r := Range{From: 1, To: 10}
	assert.True(t, r.Contains(1))
	assert.True(t, r.Contains(10))
	assert.False(t, r.Contains(0))
	assert.False(t, r.Contains(11))
}
