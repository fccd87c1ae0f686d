package loader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/astrogo/fitsio"
	"github.com/spf13/afero"

	"github.com/gogreen-survey/gogreen/src/table"
)

// LoadFITS reads the first binary-table extension of the file into a table.
// Supported column formats: I (int16), J (int32), K (int64), E (float32),
// D (float64) and rA (string of r bytes). Floats use NaN for missing values,
// which the table layer treats as null.
func LoadFITS(fs afero.Fs, path string) (*table.Table, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	fit, err := fitsio.Open(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedFile, path, err)
	}
	defer fit.Close()

	var tbl *fitsio.Table
	for _, hdu := range fit.HDUs() {
		if t, ok := hdu.(*fitsio.Table); ok {
			tbl = t
			break
		}
	}
	if tbl == nil {
		return nil, fmt.Errorf("%w: %s: no binary table extension", ErrMalformedFile, path)
	}

	rows := int(tbl.NumRows())
	cols := make([]table.Column, 0, len(tbl.Cols()))
	for _, fc := range tbl.Cols() {
		c, err := emptyColumn(fc.Name, fc.Format, rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cols = append(cols, c)
	}

	it, err := tbl.Read(0, tbl.NumRows())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedFile, path, err)
	}
	defer it.Close()

	r := 0
	for it.Next() {
		rec := map[string]interface{}{}
		if err := it.Scan(&rec); err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrMalformedFile, path, r, err)
		}
		for i := range cols {
			if err := setCell(&cols[i], r, rec[cols[i].Name]); err != nil {
				return nil, fmt.Errorf("%w: %s row %d: %v", ErrMalformedFile, path, r, err)
			}
		}
		r++
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedFile, path, err)
	}

	t, err := table.New(cols...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// emptyColumn maps a TFORM code onto a table column type. Array columns
// other than character strings have no place in the catalogs and are
// rejected.
func emptyColumn(name, form string, rows int) (table.Column, error) {
	repeat := false
	i := 0
	for i < len(form) && form[i] >= '0' && form[i] <= '9' {
		i++
	}
	if i > 0 && form[:i] != "1" {
		repeat = true
	}
	if i == len(form) {
		return table.Column{}, fmt.Errorf("%w: TFORM %q has no type code", ErrMalformedFile, form)
	}

	switch form[i] {
	case 'A':
		return table.Column{Name: name, Type: table.StringType, Strings: make([]string, rows)}, nil
	case 'I', 'J', 'K':
		if repeat {
			break
		}
		return table.Column{Name: name, Type: table.IntType, Ints: make([]int64, rows)}, nil
	case 'E', 'D':
		if repeat {
			break
		}
		return table.Column{Name: name, Type: table.FloatType, Floats: make([]float64, rows)}, nil
	}
	return table.Column{}, fmt.Errorf("%w: unsupported TFORM %q", ErrMalformedFile, form)
}

// setCell widens a decoded FITS value into the column's representation.
func setCell(c *table.Column, row int, v interface{}) error {
	switch x := v.(type) {
	case int8:
		c.Ints[row] = int64(x)
	case int16:
		c.Ints[row] = int64(x)
	case int32:
		c.Ints[row] = int64(x)
	case int64:
		c.Ints[row] = x
	case float32:
		c.Floats[row] = float64(x)
	case float64:
		c.Floats[row] = x
	case string:
		c.Strings[row] = strings.TrimRight(x, " \x00")
	default:
		return fmt.Errorf("column %s holds unexpected value %T", c.Name, v)
	}
	return nil
}
