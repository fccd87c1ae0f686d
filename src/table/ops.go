package table

import "fmt"

// Rename returns a copy of the table with column oldName renamed to newName.
func (t *Table) Rename(oldName, newName string) (*Table, error) {
	i, ok := t.byName[oldName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, oldName)
	}
	if _, ok := t.byName[newName]; ok && newName != oldName {
		return nil, fmt.Errorf("%w: %s", ErrColumnExists, newName)
	}

	cols := make([]Column, len(t.cols))
	for j, c := range t.cols {
		cols[j] = c.clone()
	}
	cols[i].Name = newName

	return New(cols...)
}

// Project returns a new table holding only the named columns, in the given
// order.
func (t *Table) Project(names ...string) (*Table, error) {
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		i, ok := t.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
		}
		cols = append(cols, t.cols[i].clone())
	}
	return New(cols...)
}

// TakeRows returns a new table holding the rows listed in idx, in that order.
// Indices may repeat.
func (t *Table) TakeRows(idx []int) (*Table, error) {
	for _, i := range idx {
		if i < 0 || i >= t.NumRows() {
			return nil, fmt.Errorf("row index %d out of range [0, %d)", i, t.NumRows())
		}
	}
	cols := make([]Column, len(t.cols))
	for j := range t.cols {
		cols[j] = t.cols[j].take(idx)
	}
	return New(cols...)
}

// FilterRows returns a new table holding the rows for which keep returned
// true, preserving order.
func (t *Table) FilterRows(keep func(row int) (bool, error)) (*Table, error) {
	idx := make([]int, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		ok, err := keep(i)
		if err != nil {
			return nil, err
		}
		if ok {
			idx = append(idx, i)
		}
	}
	return t.TakeRows(idx)
}

// Concat returns a new table with other's rows appended below t's. Both
// tables must have identical column names and types in identical order. A
// zero-column table concatenates to a copy of the other operand, so Concat
// can seed a fold.
func (t *Table) Concat(other *Table) (*Table, error) {
	if t.NumCols() == 0 {
		return other.copy(), nil
	}
	if other.NumCols() == 0 {
		return t.copy(), nil
	}
	if t.NumCols() != other.NumCols() {
		return nil, fmt.Errorf(
			"%w: %d columns vs %d", ErrSchemaMismatch, t.NumCols(), other.NumCols(),
		)
	}

	cols := make([]Column, len(t.cols))
	for i := range t.cols {
		l, r := &t.cols[i], &other.cols[i]
		if l.Name != r.Name || l.Type != r.Type {
			return nil, fmt.Errorf(
				"%w: column %d is %s %s vs %s %s",
				ErrSchemaMismatch, i, l.Type, l.Name, r.Type, r.Name,
			)
		}
		cols[i] = concatColumns(l, r)
	}
	return New(cols...)
}

func concatColumns(l, r *Column) Column {
	out := Column{Name: l.Name, Type: l.Type}
	out.Ints = append(append([]int64(nil), l.Ints...), r.Ints...)
	out.Floats = append(append([]float64(nil), l.Floats...), r.Floats...)
	out.Strings = append(append([]string(nil), l.Strings...), r.Strings...)
	if l.Nulls != nil || r.Nulls != nil {
		out.Nulls = make([]bool, 0, l.Len()+r.Len())
		for i := 0; i < l.Len(); i++ {
			out.Nulls = append(out.Nulls, l.Nulls != nil && l.Nulls[i])
		}
		for i := 0; i < r.Len(); i++ {
			out.Nulls = append(out.Nulls, r.Nulls != nil && r.Nulls[i])
		}
	}
	return out
}

// MapInts returns a new table with f applied to every present value of the
// named integer column. Null entries are left untouched.
func (t *Table) MapInts(name string, f func(int64) int64) (*Table, error) {
	i, ok := t.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	if t.cols[i].Type != IntType {
		return nil, fmt.Errorf("%w: %s is %s, want int", ErrTypeMismatch, name, t.cols[i].Type)
	}

	cols := make([]Column, len(t.cols))
	for j := range t.cols {
		cols[j] = t.cols[j].clone()
	}
	c := &cols[i]
	for row := range c.Ints {
		if !c.IsNull(row) {
			c.Ints[row] = f(c.Ints[row])
		}
	}
	return New(cols...)
}

// MapStrings returns a new table with f applied to every present value of
// the named string column.
func (t *Table) MapStrings(name string, f func(string) string) (*Table, error) {
	i, ok := t.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	if t.cols[i].Type != StringType {
		return nil, fmt.Errorf("%w: %s is %s, want string", ErrTypeMismatch, name, t.cols[i].Type)
	}

	cols := make([]Column, len(t.cols))
	for j := range t.cols {
		cols[j] = t.cols[j].clone()
	}
	c := &cols[i]
	for row := range c.Strings {
		if !c.IsNull(row) {
			c.Strings[row] = f(c.Strings[row])
		}
	}
	return New(cols...)
}

func (t *Table) copy() *Table {
	cols := make([]Column, len(t.cols))
	for i := range t.cols {
		cols[i] = t.cols[i].clone()
	}
	out := &Table{cols: cols, byName: make(map[string]int, len(cols))}
	for i, c := range cols {
		out.byName[c.Name] = i
	}
	return out
}
