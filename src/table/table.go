package table

import (
	"fmt"
	"math"
)

// ColumnType enumerates the storable column types.
type ColumnType uint8

const (
	IntType ColumnType = iota
	FloatType
	StringType
)

func (t ColumnType) String() string {
	switch t {
	case IntType:
		return "int"
	case FloatType:
		return "float"
	case StringType:
		return "string"
	}
	panic("invalid column type")
}

// Column is a single named, typed column. Exactly one of the value slices is
// populated, matching Type. Nulls, when non-nil, marks missing entries; a NaN
// in a float column counts as missing as well (binary table convention).
type Column struct {
	Name    string
	Type    ColumnType
	Ints    []int64
	Floats  []float64
	Strings []string
	Nulls   []bool
}

// Len returns the number of entries in the column.
func (c *Column) Len() int {
	switch c.Type {
	case IntType:
		return len(c.Ints)
	case FloatType:
		return len(c.Floats)
	case StringType:
		return len(c.Strings)
	}
	panic("invalid column type")
}

// IsNull reports whether row i holds no value.
func (c *Column) IsNull(i int) bool {
	if c.Nulls != nil && c.Nulls[i] {
		return true
	}
	if c.Type == FloatType && math.IsNaN(c.Floats[i]) {
		return true
	}
	return false
}

// Int returns the integer value at row i and whether it is present.
func (c *Column) Int(i int) (int64, bool) {
	if c.Type != IntType || c.IsNull(i) {
		return 0, false
	}
	return c.Ints[i], true
}

// Float returns the value at row i widened to float64 and whether it is
// present. Integer columns are widened so numeric predicates work on both.
func (c *Column) Float(i int) (float64, bool) {
	if c.IsNull(i) {
		return 0, false
	}
	switch c.Type {
	case FloatType:
		return c.Floats[i], true
	case IntType:
		return float64(c.Ints[i]), true
	}
	return 0, false
}

// Str returns the string value at row i and whether it is present.
func (c *Column) Str(i int) (string, bool) {
	if c.Type != StringType || c.IsNull(i) {
		return "", false
	}
	return c.Strings[i], true
}

// take copies the rows listed in idx into a fresh column.
func (c *Column) take(idx []int) Column {
	out := Column{Name: c.Name, Type: c.Type}
	if c.Nulls != nil {
		out.Nulls = make([]bool, 0, len(idx))
	}
	switch c.Type {
	case IntType:
		out.Ints = make([]int64, 0, len(idx))
		for _, i := range idx {
			out.Ints = append(out.Ints, c.Ints[i])
		}
	case FloatType:
		out.Floats = make([]float64, 0, len(idx))
		for _, i := range idx {
			out.Floats = append(out.Floats, c.Floats[i])
		}
	case StringType:
		out.Strings = make([]string, 0, len(idx))
		for _, i := range idx {
			out.Strings = append(out.Strings, c.Strings[i])
		}
	}
	if c.Nulls != nil {
		for _, i := range idx {
			out.Nulls = append(out.Nulls, c.Nulls[i])
		}
	}
	return out
}

// clone deep-copies the column.
func (c *Column) clone() Column {
	out := Column{Name: c.Name, Type: c.Type}
	if c.Ints != nil {
		out.Ints = append([]int64(nil), c.Ints...)
	}
	if c.Floats != nil {
		out.Floats = append([]float64(nil), c.Floats...)
	}
	if c.Strings != nil {
		out.Strings = append([]string(nil), c.Strings...)
	}
	if c.Nulls != nil {
		out.Nulls = append([]bool(nil), c.Nulls...)
	}
	return out
}

// Table is an ordered set of equally sized columns. A Table is never mutated
// after construction: every transformation allocates a new one.
type Table struct {
	cols   []Column
	byName map[string]int
}

// New builds a table from cols. All columns must have the same length and
// distinct names.
func New(cols ...Column) (*Table, error) {
	t := &Table{
		cols:   cols,
		byName: make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if _, ok := t.byName[c.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrColumnExists, c.Name)
		}
		t.byName[c.Name] = i
		if c.Len() != cols[0].Len() {
			return nil, fmt.Errorf(
				"%w: column %s has %d rows, want %d",
				ErrLengthMismatch, c.Name, c.Len(), cols[0].Len(),
			)
		}
	}
	return t, nil
}

// Empty returns a zero-column, zero-row table.
func Empty() *Table {
	return &Table{byName: map[string]int{}}
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// NumCols returns the column count.
func (t *Table) NumCols() int {
	return len(t.cols)
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	return &t.cols[i], nil
}
