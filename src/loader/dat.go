package loader

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/gogreen-survey/gogreen/src/table"
)

// LoadDAT reads a whitespace-delimited text catalog. The first line is a
// title line and is skipped; the second line names the columns; every further
// non-empty line is a row. Column types are inferred: all-integer, else
// all-float (with nan accepted as missing), else string.
func LoadDAT(fs afero.Fs, path string) (*table.Table, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	var names []string
	var rows [][]string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNo++
		if lineNo == 1 {
			// title line
			continue
		}
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if names == nil {
			names = fields
			continue
		}
		if len(fields) != len(names) {
			return nil, fmt.Errorf(
				"%w: %s:%d: %d fields, want %d",
				ErrMalformedFile, path, lineNo, len(fields), len(names),
			)
		}
		rows = append(rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if names == nil {
		return nil, fmt.Errorf("%w: %s: no header line", ErrMalformedFile, path)
	}

	cols := make([]table.Column, len(names))
	for i, name := range names {
		cols[i] = inferColumn(name, rows, i)
	}

	t, err := table.New(cols...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func inferColumn(name string, rows [][]string, i int) table.Column {
	asInts := make([]int64, len(rows))
	allInts := true
	for r, row := range rows {
		v, err := strconv.ParseInt(row[i], 10, 64)
		if err != nil {
			allInts = false
			break
		}
		asInts[r] = v
	}
	if allInts {
		return table.Column{Name: name, Type: table.IntType, Ints: asInts}
	}

	asFloats := make([]float64, len(rows))
	allFloats := true
	for r, row := range rows {
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			allFloats = false
			break
		}
		asFloats[r] = v
	}
	if allFloats {
		return table.Column{Name: name, Type: table.FloatType, Floats: asFloats}
	}

	asStrings := make([]string, len(rows))
	for r, row := range rows {
		asStrings[r] = row[i]
	}
	return table.Column{Name: name, Type: table.StringType, Strings: asStrings}
}
