package loader

import (
	"math"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/gogreen-survey/gogreen/src/pkg/fitsenc"
	"github.com/gogreen-survey/gogreen/src/table"
)

func writeFITS(t *testing.T, fs afero.Fs, path string, cols ...table.Column) {
	t.Helper()

	raw, err := fitsenc.Encode(cols...)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, path, raw, 0644))
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	fs := afero.NewMemMapFs()

	writeFITS(t, fs, "/data/clusters.fits", table.Column{
		Name: "cluster", Type: table.StringType, Strings: []string{"SpARCS0035"},
	})
	require.NoError(t, afero.WriteFile(fs, "/data/match.dat",
		[]byte("structcat photometric match\nPHOTCATID re\n7 1.5\n"), 0644))

	tbl, err := Load(fs, "/data/clusters.fits")
	require.NoError(t, err)
	require.Equal(t, 1, tbl.NumRows())

	tbl, err = Load(fs, "/data/match.dat")
	require.NoError(t, err)
	require.Equal(t, 1, tbl.NumRows())
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/cat.csv", []byte("a,b\n"), 0644))

	_, err := Load(fs, "/data/cat.csv")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadFITSRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()

	writeFITS(t, fs, "/data/photo.fits",
		table.Column{
			Name: "cPHOTID", Type: table.IntType,
			Ints: []int64{100000001, 100000002},
		},
		table.Column{
			Name: "Cluster", Type: table.StringType,
			Strings: []string{"SpARCS0035", "SPT0546"},
		},
		table.Column{
			Name: "zspec", Type: table.FloatType,
			Floats: []float64{0.49, math.NaN()},
		},
	)

	tbl, err := LoadFITS(fs, "/data/photo.fits")
	require.NoError(t, err)
	require.Equal(t, 2, tbl.NumRows())
	require.Equal(t, []string{"cPHOTID", "Cluster", "zspec"}, tbl.ColumnNames())

	ids, err := tbl.Column("cPHOTID")
	require.NoError(t, err)
	require.Equal(t, table.IntType, ids.Type)
	require.Equal(t, []int64{100000001, 100000002}, ids.Ints)

	names, err := tbl.Column("Cluster")
	require.NoError(t, err)
	s, ok := names.Str(1)
	require.True(t, ok)
	require.Equal(t, "SPT0546", s)

	zspec, err := tbl.Column("zspec")
	require.NoError(t, err)
	v, ok := zspec.Float(0)
	require.True(t, ok)
	require.InDelta(t, 0.49, v, 1e-12)
	require.True(t, zspec.IsNull(1), "NaN survives the round trip as a null")
}

func TestLoadFITSRejectsGarbage(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/bad.fits",
		[]byte("not a fits file"), 0644))

	_, err := LoadFITS(fs, "/data/bad.fits")
	require.ErrorIs(t, err, ErrMalformedFile)
}

func TestLoadDAT(t *testing.T) {
	fs := afero.NewMemMapFs()

	const contents = "galfit photometric matches for spj0035\n" +
		"PHOTCATID re n flag\n" +
		"7 1.50 2.1 ok\n" +
		"8 0.75 nan bad\n" +
		"\n"
	require.NoError(t, afero.WriteFile(fs, "/data/structcat_photmatch_spj0035.dat",
		[]byte(contents), 0644))

	tbl, err := LoadDAT(fs, "/data/structcat_photmatch_spj0035.dat")
	require.NoError(t, err)
	require.Equal(t, 2, tbl.NumRows())
	require.Equal(t, []string{"PHOTCATID", "re", "n", "flag"}, tbl.ColumnNames())

	ids, err := tbl.Column("PHOTCATID")
	require.NoError(t, err)
	require.Equal(t, table.IntType, ids.Type)
	require.Equal(t, []int64{7, 8}, ids.Ints)

	n, err := tbl.Column("n")
	require.NoError(t, err)
	require.Equal(t, table.FloatType, n.Type)
	require.True(t, n.IsNull(1), "nan parses as a missing float")

	flag, err := tbl.Column("flag")
	require.NoError(t, err)
	require.Equal(t, table.StringType, flag.Type)
}

func TestLoadDATRejectsRaggedRows(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/bad.dat",
		[]byte("title\na b\n1 2\n3\n"), 0644))

	_, err := LoadDAT(fs, "/data/bad.dat")
	require.ErrorIs(t, err, ErrMalformedFile)
}

func TestLoadDATRequiresHeader(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/empty.dat", []byte("title\n"), 0644))

	_, err := LoadDAT(fs, "/data/empty.dat")
	require.ErrorIs(t, err, ErrMalformedFile)
}
