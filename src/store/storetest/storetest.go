// Package storetest writes a small synthetic data release to an afero
// filesystem so store, query and handler tests can open a real Store without
// shipping survey data.
package storetest

import (
	"math"
	"path"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/gogreen-survey/gogreen/src"
	"github.com/gogreen-survey/gogreen/src/pkg/fitsenc"
	"github.com/gogreen-survey/gogreen/src/store"
	"github.com/gogreen-survey/gogreen/src/table"
)

// The synthetic release covers two structural clusters, one from each
// filename convention.
var StructuralClusters = []string{"SpARCS0035", "SPT0546"}

const (
	// SpARCS0035 mirrors the reference scenario: z=0.5, five sources with
	// canonical IDs 100000001..100000005, zspec only on the first.
	SpARCS0035Z = 0.5
	// SPT0546 sits at z=1.0 with three sources prefixed 205.
	SPT0546Z = 1.0
)

// Config returns a store config for the synthetic release rooted at dataPath.
func Config(dataPath string) store.Config {
	return store.Config{
		DataPath:           dataPath,
		StructuralClusters: StructuralClusters,
	}
}

func writeFITS(t testing.TB, fs afero.Fs, p string, cols ...table.Column) {
	t.Helper()

	raw, err := fitsenc.Encode(cols...)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, p, raw, 0644))
}

// WriteRelease lays out the synthetic release under dataPath.
func WriteRelease(t testing.TB, fs afero.Fs, dataPath string) {
	t.Helper()

	// cluster names carry the stray padding the real release has
	writeFITS(t, fs, path.Join(dataPath, "DR1/CATS/Clusters.fits"),
		table.Column{
			Name: "cluster", Type: table.StringType,
			Strings: []string{" SpARCS0035", "SPT0546 "},
		},
		table.Column{
			Name: "Redshift", Type: table.FloatType,
			Floats: []float64{SpARCS0035Z, SPT0546Z},
		},
	)

	nan := math.NaN()
	writeFITS(t, fs, path.Join(dataPath, "DR1/CATS/Photo.fits"),
		table.Column{
			Name: "cPHOTID", Type: table.IntType,
			Ints: []int64{
				100000001, 100000002, 100000003, 100000004, 100000005,
				205000001, 205000002, 205000003,
			},
		},
		table.Column{
			Name: "Cluster", Type: table.StringType,
			Strings: []string{
				"SpARCS0035", "SpARCS0035", "SpARCS0035", "SpARCS0035",
				"SpARCS0035", "SPT0546", "SPT0546", "SPT0546",
			},
		},
		table.Column{
			Name: "zspec", Type: table.FloatType,
			Floats: []float64{0.49, nan, nan, nan, nan, 1.01, nan, nan},
		},
		table.Column{
			Name: "zphot", Type: table.FloatType,
			Floats: []float64{0.50, 0.40, 0.45, 0.58, 0.60, 0.98, 1.05, 1.60},
		},
		table.Column{
			Name: "UMINV", Type: table.FloatType,
			Floats: []float64{1.5, 1.1, 1.4, 0.9, 2.0, 1.6, 1.2, 1.8},
		},
		table.Column{
			Name: "VMINJ", Type: table.FloatType,
			Floats: []float64{0.7, 1.8, 0.6, 0.5, 1.0, 0.8, 0.9, 1.1},
		},
	)

	writeFITS(t, fs, path.Join(dataPath, "DR1/CATS/Redshift_catalogue.fits"),
		table.Column{
			Name: "cPHOTID", Type: table.IntType,
			Ints: []int64{100000001, 205000001},
		},
		table.Column{
			Name: "zspec", Type: table.FloatType,
			Floats: []float64{0.49, 1.01},
		},
	)

	// galfit catalogs, one per structural cluster, shared schema
	writeFITS(t, fs, path.Join(dataPath,
		"STRUCTURAL_PARA_v1.1_CATONLY/GALFIT_ORG_CATS/gal_spj0035_orgcat.fits"),
		table.Column{Name: "gal_id", Type: table.IntType, Ints: []int64{1, 2, 3}},
		table.Column{
			Name: "chi2", Type: table.FloatType,
			Floats: []float64{1.1, 0.9, 1.4},
		},
	)
	writeFITS(t, fs, path.Join(dataPath,
		"STRUCTURAL_PARA_v1.1_CATONLY/GALFIT_ORG_CATS/gal_spt0546_orgcat.fits"),
		table.Column{Name: "gal_id", Type: table.IntType, Ints: []int64{1, 2}},
		table.Column{
			Name: "chi2", Type: table.FloatType,
			Floats: []float64{1.0, 1.2},
		},
	)

	// matched catalogs with per-cluster local IDs
	require.NoError(t, afero.WriteFile(fs, path.Join(dataPath,
		"STRUCTURAL_PARA_v1.1_CATONLY/STRUCTCAT_MATCHED/structcat_photmatch_spj0035.dat"),
		[]byte("structcat photometric matches\n"+
			"PHOTCATID re n\n"+
			"1 1.50 2.1\n"+
			"2 0.75 1.8\n"+
			"3 2.20 4.0\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, path.Join(dataPath,
		"STRUCTURAL_PARA_v1.1_CATONLY/STRUCTCAT_MATCHED/structcat_photmatch_spt0546.dat"),
		[]byte("structcat photometric matches\n"+
			"PHOTCATID re n\n"+
			"1 3.10 1.2\n"+
			"2 0.40 0.8\n"), 0644))
}

// Open writes the synthetic release to a fresh in-memory filesystem and
// opens a store over it.
func Open(t testing.TB) *store.Store {
	t.Helper()

	fs := afero.NewMemMapFs()
	WriteRelease(t, fs, "/data")

	s, err := store.Open(fs, Config("/data"), src.NoopLogger{})
	require.NoError(t, err)
	return s
}
