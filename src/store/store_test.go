package store_test

import (
	"path"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/gogreen-survey/gogreen/src"
	"github.com/gogreen-survey/gogreen/src/loader"
	"github.com/gogreen-survey/gogreen/src/store"
	"github.com/gogreen-survey/gogreen/src/store/storetest"
)

func TestOpenBuildsMergedCatalog(t *testing.T) {
	s := storetest.Open(t)

	merged := s.Merged()
	// left join preserves photometric cardinality
	require.Equal(t, s.Table(store.KindPhoto).NumRows(), merged.NumRows())

	// structural columns came along
	require.True(t, merged.HasColumn("re"))
	require.True(t, merged.HasColumn("n"))

	// a matched source carries its structural fit
	ids, err := merged.Column("cPHOTID")
	require.NoError(t, err)
	re, err := merged.Column("re")
	require.NoError(t, err)

	matched := 0
	for row := 0; row < merged.NumRows(); row++ {
		id, ok := ids.Int(row)
		require.True(t, ok)
		if v, ok := re.Float(row); ok {
			matched++
			if id == 100000001 {
				require.Equal(t, 1.5, v)
			}
		}
	}
	// 3 matched in SpARCS0035, 2 in SPT0546; the rest are null filled
	require.Equal(t, 5, matched)
}

func TestOpenAggregatesStructuralCatalogs(t *testing.T) {
	s := storetest.Open(t)

	require.Equal(t, 5, s.Table(store.KindGalfit).NumRows())

	m := s.Table(store.KindMatched)
	require.Equal(t, 5, m.NumRows())

	// matched IDs live in the canonical space after the per-cluster remap
	ids, err := m.Column("cPHOTID")
	require.NoError(t, err)
	require.Equal(t,
		[]int64{100000001, 100000002, 100000003, 205000001, 205000002},
		ids.Ints,
	)
}

func TestClusterRedshift(t *testing.T) {
	s := storetest.Open(t)

	z, err := s.ClusterRedshift("SpARCS0035")
	require.NoError(t, err)
	require.Equal(t, storetest.SpARCS0035Z, z)

	// names were whitespace normalized at load time
	z, err = s.ClusterRedshift("SPT0546")
	require.NoError(t, err)
	require.Equal(t, storetest.SPT0546Z, z)

	_, err = s.ClusterRedshift("SpARCS9999")
	require.ErrorIs(t, err, store.ErrClusterNotFound)
}

func TestOpenAbortsOnMissingCatalog(t *testing.T) {
	fs := afero.NewMemMapFs()
	storetest.WriteRelease(t, fs, "/data")
	require.NoError(t, fs.Remove(
		path.Join("/data", "DR1/CATS/Redshift_catalogue.fits"),
	))

	s, err := store.Open(fs, storetest.Config("/data"), src.NoopLogger{})
	require.Error(t, err)
	require.Nil(t, s, "no partial store after a failed load")
}

func TestOpenAbortsOnMissingStructuralCatalog(t *testing.T) {
	fs := afero.NewMemMapFs()
	storetest.WriteRelease(t, fs, "/data")
	require.NoError(t, fs.Remove(path.Join("/data",
		"STRUCTURAL_PARA_v1.1_CATONLY/STRUCTCAT_MATCHED/structcat_photmatch_spt0546.dat",
	)))

	s, err := store.Open(fs, storetest.Config("/data"), src.NoopLogger{})
	require.Error(t, err)
	require.Nil(t, s)
}

func TestOpenAbortsOnCorruptCatalog(t *testing.T) {
	fs := afero.NewMemMapFs()
	storetest.WriteRelease(t, fs, "/data")
	require.NoError(t, afero.WriteFile(fs,
		path.Join("/data", "DR1/CATS/Photo.fits"), []byte("garbage"), 0644))

	s, err := store.Open(fs, storetest.Config("/data"), src.NoopLogger{})
	require.ErrorIs(t, err, loader.ErrMalformedFile)
	require.Nil(t, s)
}
