package query_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogreen-survey/gogreen/src/query"
	"github.com/gogreen-survey/gogreen/src/store/storetest"
)

func TestParseColorScheme(t *testing.T) {
	for input, want := range map[string]query.ColorScheme{
		"":           query.ColorNone,
		"none":       query.ColorNone,
		"membership": query.ColorMembership,
		"passive":    query.ColorPassive,
	} {
		got, err := query.ParseColorScheme(input)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := query.ParseColorScheme("rainbow")
	require.Error(t, err)
}

func TestClusterSeriesNone(t *testing.T) {
	e := newEngine(t)

	series, err := e.ClusterSeries("SpARCS0035", query.SeriesRequest{
		Scheme: query.ColorNone,
		Axes:   query.AxisSpec{X: "zphot", Y: "UMINV"},
	})
	require.NoError(t, err)
	require.Len(t, series, 1)
	// all five galaxies are members and have both coordinates
	require.Len(t, series[0].X, 5)
}

func TestClusterSeriesMembershipSplit(t *testing.T) {
	e := newEngine(t)

	series, err := e.ClusterSeries("SpARCS0035", query.SeriesRequest{
		Scheme: query.ColorMembership,
		Axes:   query.AxisSpec{X: "zphot", Y: "UMINV"},
	})
	require.NoError(t, err)
	require.Len(t, series, 2)
	require.Equal(t, "Spectroscopic z", series[0].Label)
	require.Equal(t, "Photometric z", series[1].Label)
	require.Len(t, series[0].X, 1)
	require.Len(t, series[1].X, 4)
}

func TestClusterSeriesPassiveSplit(t *testing.T) {
	e := newEngine(t)

	series, err := e.ClusterSeries("SpARCS0035", query.SeriesRequest{
		Scheme: query.ColorPassive,
		Axes:   query.AxisSpec{X: "VMINJ", Y: "UMINV"},
	})
	require.NoError(t, err)
	require.Len(t, series, 2)
	require.Equal(t, "Quiescent", series[0].Label)
	require.Equal(t, "Star Forming", series[1].Label)

	// galaxies passing the cut: UMINV/VMINJ pairs (1.5,0.7), (1.4,0.6)
	// and (2.0,1.0); the other two are star forming
	require.Len(t, series[0].X, 3)
	require.Len(t, series[1].X, 2)
}

func TestClusterSeriesLogAndRange(t *testing.T) {
	e := newEngine(t)

	min := 0.45
	series, err := e.ClusterSeries("SpARCS0035", query.SeriesRequest{
		Scheme: query.ColorNone,
		Axes:   query.AxisSpec{X: "zphot", Y: "UMINV", LogY: true, XMin: &min},
	})
	require.NoError(t, err)
	require.Len(t, series, 1)
	// zphot >= 0.45: 0.50, 0.45... XMin clips strictly below, so 0.45 stays
	require.Len(t, series[0].X, 4)
	for _, y := range series[0].Y {
		require.Less(t, y, 1.0, "log10 of UMINV < 10")
	}
}

func TestAllClusterSeries(t *testing.T) {
	e := newEngine(t)

	perCluster, err := e.AllClusterSeries(query.SeriesRequest{
		Scheme:      query.ColorMembership,
		Axes:        query.AxisSpec{X: "zphot", Y: "UMINV"},
		OnlyMembers: true,
	})
	require.NoError(t, err)
	require.Len(t, perCluster, len(storetest.StructuralClusters))
	for name, series := range perCluster {
		require.Len(t, series, 2, "cluster %s", name)
	}
}

func TestPooledSeriesMergesByLabel(t *testing.T) {
	e := newEngine(t)

	pooled, err := e.PooledSeries(query.SeriesRequest{
		Scheme:      query.ColorMembership,
		Axes:        query.AxisSpec{X: "zphot", Y: "UMINV"},
		OnlyMembers: true,
	})
	require.NoError(t, err)
	require.Len(t, pooled, 2)

	var total int
	for _, s := range pooled {
		total += len(s.X)
	}
	// 5 members of SpARCS0035 + 2 of SPT0546
	require.Equal(t, 7, total)
}

func TestSeriesUnknownAxis(t *testing.T) {
	e := newEngine(t)

	_, err := e.ClusterSeries("SpARCS0035", query.SeriesRequest{
		Scheme: query.ColorNone,
		Axes:   query.AxisSpec{X: "nope", Y: "UMINV"},
	})
	require.Error(t, err)
}
