package remap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogreen-survey/gogreen/src/table"
)

func photoFixture(t *testing.T) *table.Table {
	t.Helper()

	tbl, err := table.New(
		table.Column{
			Name: "cPHOTID", Type: table.IntType,
			Ints: []int64{216000001, 100000042, 100000043},
		},
		table.Column{
			Name: "Cluster", Type: table.StringType,
			Strings: []string{"SpARCS1634", "SpARCS0035", "SpARCS0035"},
		},
	)
	require.NoError(t, err)
	return tbl
}

func structuralFixture(t *testing.T, ids ...int64) *table.Table {
	t.Helper()

	tbl, err := table.New(
		table.Column{Name: "PHOTCATID", Type: table.IntType, Ints: ids},
		table.Column{
			Name: "re", Type: table.FloatType,
			Floats: make([]float64, len(ids)),
		},
	)
	require.NoError(t, err)
	return tbl
}

func TestRemapRebasesLocalIDs(t *testing.T) {
	photo := photoFixture(t)
	structural := structuralFixture(t, 7, 13)

	got, err := Remap(structural, "SpARCS0035", photo)
	require.NoError(t, err)

	require.False(t, got.HasColumn("PHOTCATID"))
	ids, err := got.Column("cPHOTID")
	require.NoError(t, err)
	require.Equal(t, []int64{100000007, 100000013}, ids.Ints)

	// source table keeps its local IDs
	orig, err := structural.Column("PHOTCATID")
	require.NoError(t, err)
	require.Equal(t, []int64{7, 13}, orig.Ints)
}

func TestRemapUsesFirstMatchingRow(t *testing.T) {
	photo := photoFixture(t)

	prefix, err := Prefix("SpARCS1634", photo)
	require.NoError(t, err)
	require.Equal(t, int64(216000000), prefix)
}

func TestRemapRoundTrip(t *testing.T) {
	photo := photoFixture(t)
	locals := []int64{1, 7, 999999}
	structural := structuralFixture(t, locals...)

	got, err := Remap(structural, "SpARCS0035", photo)
	require.NoError(t, err)

	prefix, err := Prefix("SpARCS0035", photo)
	require.NoError(t, err)

	ids, err := got.Column("cPHOTID")
	require.NoError(t, err)
	for i, want := range locals {
		require.Equal(t, want, ids.Ints[i]-prefix)
	}
}

func TestRemapUnknownCluster(t *testing.T) {
	photo := photoFixture(t)
	structural := structuralFixture(t, 7)

	_, err := Remap(structural, "SPT9999", photo)
	require.ErrorIs(t, err, ErrClusterNotFound)
}

func TestRemapRejectsShortSentinel(t *testing.T) {
	photo, err := table.New(
		table.Column{Name: "cPHOTID", Type: table.IntType, Ints: []int64{42}},
		table.Column{
			Name: "Cluster", Type: table.StringType, Strings: []string{"Short"},
		},
	)
	require.NoError(t, err)

	_, err = Prefix("Short", photo)
	require.ErrorIs(t, err, ErrMalformedID)
}

func TestRemapRequiresLocalIDColumn(t *testing.T) {
	photo := photoFixture(t)
	bad, err := table.New(
		table.Column{Name: "SOMEID", Type: table.IntType, Ints: []int64{7}},
	)
	require.NoError(t, err)

	_, err = Remap(bad, "SpARCS0035", photo)
	require.ErrorIs(t, err, table.ErrUnknownColumn)
}
