// Package fitsenc writes FITS binary tables. It exists to build catalog
// fixtures for tests and local tooling; it emits exactly the subset of FITS
// the loader reads (one BINTABLE extension, scalar columns).
package fitsenc

import (
	"fmt"
	"math"

	"github.com/astrogo/fitsio"
	"github.com/spf13/afero"

	"github.com/gogreen-survey/gogreen/src/table"
)

// Encode renders the columns as a FITS file with an empty primary HDU and a
// single binary-table extension. Int columns become K (int64), float columns
// D (float64), string columns rA with r the longest value. Null floats are
// written as NaN.
func Encode(cols ...table.Column) ([]byte, error) {
	t, err := table.New(cols...)
	if err != nil {
		return nil, err
	}

	fcols := make([]fitsio.Column, len(cols))
	for i := range cols {
		c := &cols[i]
		switch c.Type {
		case table.IntType:
			fcols[i] = fitsio.Column{Name: c.Name, Format: "K"}
		case table.FloatType:
			fcols[i] = fitsio.Column{Name: c.Name, Format: "D"}
		case table.StringType:
			// fitsio v0.3.0 spends the first byte of each cell on a NUL
			// marker, so the column needs one byte beyond the longest value
			w := 2
			for _, s := range c.Strings {
				if len(s)+1 > w {
					w = len(s) + 1
				}
			}
			fcols[i] = fitsio.Column{Name: c.Name, Format: fmt.Sprintf("%dA", w)}
		default:
			return nil, fmt.Errorf("unsupported column type %v", c.Type)
		}
	}

	fs := afero.NewMemMapFs()
	f, err := fs.Create("encoded.fits")
	if err != nil {
		return nil, err
	}

	fit, err := fitsio.Create(f)
	if err != nil {
		return nil, err
	}

	phdu, err := fitsio.NewPrimaryHDU(nil)
	if err != nil {
		return nil, err
	}
	if err := fit.Write(phdu); err != nil {
		return nil, err
	}

	tbl, err := fitsio.NewTable("catalog", fcols, fitsio.BINARY_TBL)
	if err != nil {
		return nil, err
	}
	defer tbl.Close()

	for r := 0; r < t.NumRows(); r++ {
		// one pointer per column, in table column order; fitsio v0.3.0's
		// map-based Write path writes zero values, so rows go in positionally
		rec := make([]interface{}, len(cols))
		for i := range cols {
			c := &cols[i]
			switch c.Type {
			case table.IntType:
				v := c.Ints[r]
				rec[i] = &v
			case table.FloatType:
				v := c.Floats[r]
				if c.Nulls != nil && c.Nulls[r] {
					v = math.NaN()
				}
				rec[i] = &v
			case table.StringType:
				v := c.Strings[r]
				rec[i] = &v
			}
		}
		if err := tbl.Write(rec...); err != nil {
			return nil, err
		}
	}

	if err := fit.Write(tbl); err != nil {
		return nil, err
	}
	if err := fit.Close(); err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	return afero.ReadFile(fs, "encoded.fits")
}
