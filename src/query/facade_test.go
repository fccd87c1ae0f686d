package query_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogreen-survey/gogreen/src"
	"github.com/gogreen-survey/gogreen/src/expr"
	"github.com/gogreen-survey/gogreen/src/metrics"
	"github.com/gogreen-survey/gogreen/src/query"
	"github.com/gogreen-survey/gogreen/src/store/storetest"
	"github.com/gogreen-survey/gogreen/src/table"
)

func newEngine(t *testing.T, standards ...expr.Criterion) *query.Engine {
	t.Helper()
	return query.New(storetest.Open(t), standards, src.NoopLogger{}, nil)
}

func ids(t *testing.T, tbl *table.Table) []int64 {
	t.Helper()

	c, err := tbl.Column("cPHOTID")
	require.NoError(t, err)
	return c.Ints
}

func TestClusterRedshift(t *testing.T) {
	e := newEngine(t)

	z, err := e.ClusterRedshift("SpARCS0035")
	require.NoError(t, err)
	require.Equal(t, storetest.SpARCS0035Z, z)

	_, err = e.ClusterRedshift("NoSuchCluster")
	require.ErrorIs(t, err, query.ErrClusterNotFound)
}

func TestClusterGalaxies(t *testing.T) {
	e := newEngine(t)

	galaxies, err := e.ClusterGalaxies("SpARCS0035")
	require.NoError(t, err)
	require.Equal(t,
		[]int64{100000001, 100000002, 100000003, 100000004, 100000005},
		ids(t, galaxies),
	)
}

func TestMembersReferenceScenario(t *testing.T) {
	e := newEngine(t)

	m, err := e.Members("SpARCS0035")
	require.NoError(t, err)

	// 100000001 is the spectroscopic member and comes first; all five
	// zphot values fall inside the 8% band around z=0.5
	require.Equal(t,
		[]int64{100000001, 100000002, 100000003, 100000004, 100000005},
		ids(t, m),
	)
}

func TestMembersAreSubsetOfClusterGalaxies(t *testing.T) {
	e := newEngine(t)

	for _, name := range e.Clusters() {
		galaxies, err := e.ClusterGalaxies(name)
		require.NoError(t, err)
		all := map[int64]struct{}{}
		for _, id := range ids(t, galaxies) {
			all[id] = struct{}{}
		}

		m, err := e.Members(name)
		require.NoError(t, err)
		for _, id := range ids(t, m) {
			_, ok := all[id]
			require.True(t, ok, "member %d of %s not among its galaxies", id, name)
		}
	}
}

func TestMembersExcludesOutOfBand(t *testing.T) {
	e := newEngine(t)

	// SPT0546 sits at z=1.0; zphot=1.60 is outside the 8% band
	m, err := e.Members("SPT0546")
	require.NoError(t, err)
	require.Equal(t, []int64{205000001, 205000002}, ids(t, m))
}

func TestReduce(t *testing.T) {
	e := newEngine(t)

	galaxies, err := e.ClusterGalaxies("SpARCS0035")
	require.NoError(t, err)

	got, err := e.Reduce(galaxies, []expr.Criterion{expr.Gt("zphot", 0.45)}, false)
	require.NoError(t, err)
	require.Equal(t, []int64{100000001, 100000004, 100000005}, ids(t, got))
}

func TestReduceEmptyCriteriaIsNoOp(t *testing.T) {
	e := newEngine(t)

	galaxies, err := e.ClusterGalaxies("SpARCS0035")
	require.NoError(t, err)

	got, err := e.Reduce(galaxies, nil, false)
	require.NoError(t, err)
	require.Equal(t, ids(t, galaxies), ids(t, got))
}

func TestReduceWithStandardsIsIdempotent(t *testing.T) {
	e := newEngine(t, expr.Gt("zphot", 0.42), expr.Lt("UMINV", 1.9))

	galaxies, err := e.ClusterGalaxies("SpARCS0035")
	require.NoError(t, err)

	once, err := e.Reduce(galaxies, nil, true)
	require.NoError(t, err)
	twice, err := e.Reduce(once, nil, true)
	require.NoError(t, err)
	require.Equal(t, ids(t, once), ids(t, twice))
}

func TestReduceUnknownColumn(t *testing.T) {
	e := newEngine(t)

	galaxies, err := e.ClusterGalaxies("SpARCS0035")
	require.NoError(t, err)

	_, err = e.Reduce(galaxies, []expr.Criterion{expr.Gt("zzz", 1)}, false)
	require.ErrorIs(t, err, table.ErrUnknownColumn)
}

func TestSearchReferenceScenario(t *testing.T) {
	e := newEngine(t)

	got, err := e.Search(
		[]string{"SpARCS0035"},
		[]string{"zphot"},
		[]expr.Criterion{expr.MustParse("zphot > 0.45")},
	)
	require.NoError(t, err)
	require.Equal(t, []string{"zphot"}, got.ColumnNames())

	zphot, err := got.Column("zphot")
	require.NoError(t, err)
	// catalog order is preserved
	require.Equal(t, []float64{0.50, 0.58, 0.60}, zphot.Floats)
}

func TestSearchMultipleClustersKeepsRequestOrder(t *testing.T) {
	e := newEngine(t)

	got, err := e.Search(
		[]string{"SPT0546", "SpARCS0035"},
		[]string{"cPHOTID", "Cluster"},
		nil,
	)
	require.NoError(t, err)
	require.Equal(t, 8, got.NumRows())
	require.Equal(t, int64(205000001), ids(t, got)[0])
	require.Equal(t, int64(100000005), ids(t, got)[7])
}

func TestSearchNoClustersYieldsEmptyProjection(t *testing.T) {
	e := newEngine(t)

	got, err := e.Search(nil, []string{"zphot", "Cluster"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"zphot", "Cluster"}, got.ColumnNames())
	require.Equal(t, 0, got.NumRows())
}

func TestSearchUnknownProperty(t *testing.T) {
	e := newEngine(t)

	_, err := e.Search([]string{"SpARCS0035"}, []string{"nope"}, nil)
	require.ErrorIs(t, err, table.ErrUnknownColumn)
}

func TestSearchAppliesStandards(t *testing.T) {
	e := newEngine(t, expr.MustParse("zphot > 0.55"))

	got, err := e.Search([]string{"SpARCS0035"}, []string{"zphot"}, nil)
	require.NoError(t, err)

	zphot, err := got.Column("zphot")
	require.NoError(t, err)
	require.Equal(t, []float64{0.58, 0.60}, zphot.Floats)
}

func TestQueriesAreDeterministic(t *testing.T) {
	e := query.New(storetest.Open(t), nil, src.NoopLogger{}, metrics.New())

	a, err := e.Members("SpARCS0035")
	require.NoError(t, err)
	b, err := e.Members("SpARCS0035")
	require.NoError(t, err)
	require.Equal(t, ids(t, a), ids(t, b))
}
