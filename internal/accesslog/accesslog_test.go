package accesslog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLinesSkipsBrokenRows(t *testing.T) {
	rows := ParseLines([]string{
		"timestamp,userId,path,status,latencyMs",
		"2025-01-03T10:12:00Z,u1,/a,200,100",
		"broken,row,only,three",
		"2025-01-03T10:13:00Z,u2,/b,not_a_number,120",
		"2025-01-03T10:14:00Z,u3,/c,500,not_a_number",
		"yesterday,u4,/d,200,100",
	})
	require.Len(t, rows, 1)
	assert.Equal(t, "/a", rows[0].Path)
	assert.Equal(t, 200, rows[0].Status)
	assert.Equal(t, 100.0, rows[0].LatencyMs)
}

var sample = []string{
	"timestamp,userId,path,status,latencyMs",
	"2024-12-31T23:59:59Z,u0,/api/before,200,100",
	"2025-02-01T00:00:00Z,u0,/api/after,200,100",
	"2025-01-14T14:59:59Z,u1,/api/users,200,80",
	"2025-01-14T15:00:00Z,u1,/api/users,200,100",
	"2025-01-14T16:00:00Z,u2,/api/users,200,120",
	"2025-01-15T15:00:00Z,u3,/api/products,200,200",
	"2025-01-15T15:01:00Z,u4,/api/products,200,250",
	"2025-01-15T15:02:00Z,u5,/api/products,500,225",
	"2025-01-15T16:00:00Z,u6,/api/orders,200,150",
	"2025-01-15T16:01:00Z,u7,/api/orders,200,160",
	"2025-01-15T17:00:00Z,u8,/api/cart,200,50",
	"2025-01-15T18:00:00Z,u9,/api/b_path,200,100",
	"2025-01-15T18:01:00Z,u10,/api/b_path,200,100",
	"2025-01-15T18:02:00Z,u11,/api/a_path,200,100",
	"2025-01-15T18:03:00Z,u12,/api/a_path,200,100",
}

func TestAggregateJST(t *testing.T) {
	got, err := Aggregate(sample, Options{From: "2025-01-01", To: "2025-01-31", TZ: "jst", Top: 2})
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Date: "2025-01-14", Path: "/api/users", Count: 1, AvgLatency: 80},
		{Date: "2025-01-15", Path: "/api/users", Count: 2, AvgLatency: 110},
		{Date: "2025-01-16", Path: "/api/products", Count: 3, AvgLatency: 225},
		{Date: "2025-01-16", Path: "/api/a_path", Count: 2, AvgLatency: 100},
	}, got)
}

func TestAggregateICTShiftsDayBoundary(t *testing.T) {
	in := []string{
		"2025-01-14T16:59:59Z,u1,/x,200,10",
		"2025-01-14T17:00:00Z,u1,/x,200,11",
	}
	got, err := Aggregate(in, Options{From: "2025-01-01", To: "2025-01-31", TZ: "ICT", Top: 5})
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Date: "2025-01-14", Path: "/x", Count: 1, AvgLatency: 10},
		{Date: "2025-01-15", Path: "/x", Count: 1, AvgLatency: 11},
	}, got)
}

func TestAggregateRoundsHalfUp(t *testing.T) {
	in := []string{
		"2025-01-10T00:00:00Z,u1,/r,200,1",
		"2025-01-10T00:01:00Z,u1,/r,200,2",
	}
	got, err := Aggregate(in, Options{From: "2025-01-10", To: "2025-01-10", TZ: "jst", Top: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].AvgLatency)
}

func TestAggregateEmptyRange(t *testing.T) {
	got, err := Aggregate(sample, Options{From: "2023-01-01", To: "2023-12-31", TZ: "jst", Top: 5})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAggregateRejectsBadOptions(t *testing.T) {
	cases := []Options{
		{From: "2025-01-01", To: "2025-01-31", TZ: "pst", Top: 1},
		{From: "01/01/2025", To: "2025-01-31", TZ: "jst", Top: 1},
		{From: "2025-01-01", To: "", TZ: "jst", Top: 1},
		{From: "2025-01-01", To: "2025-01-31", TZ: "jst", Top: -1},
	}
	for _, c := range cases {
		_, err := Aggregate(sample, c)
		assert.ErrorIs(t, err, ErrInvalidOptions, "%+v", c)
	}
}
