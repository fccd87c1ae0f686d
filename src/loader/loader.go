// Package loader reads survey catalog files into tables. Two formats occur
// in the data release: FITS binary tables (the DR1 catalogs and the galfit
// structural catalogs) and whitespace-delimited text files (the
// structural-photometric match catalogs).
package loader

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/gogreen-survey/gogreen/src/table"
)

// ErrUnsupportedFormat is returned for file extensions the loader does not
// understand. Unknown formats fail loudly; silently returning an empty table
// would drop whole catalogs on a typo.
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// ErrMalformedFile is returned when a file of a supported format cannot be
// parsed.
var ErrMalformedFile = errors.New("malformed catalog file")

// Load reads the catalog at path into a table, dispatching on the file
// extension.
func Load(fs afero.Fs, path string) (*table.Table, error) {
	switch filepath.Ext(path) {
	case ".fits":
		return LoadFITS(fs, path)
	case ".dat":
		return LoadDAT(fs, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
