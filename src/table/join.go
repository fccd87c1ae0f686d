package table

import "fmt"

type joinKey struct {
	kind ColumnType
	i    int64
	f    float64
	s    string
}

func keyAt(c *Column, row int) (joinKey, bool) {
	if c.IsNull(row) {
		return joinKey{}, false
	}
	k := joinKey{kind: c.Type}
	switch c.Type {
	case IntType:
		k.i = c.Ints[row]
	case FloatType:
		k.f = c.Floats[row]
	case StringType:
		k.s = c.Strings[row]
	}
	return k, true
}

// Join left-outer-joins right onto left over the named key column. Every left
// row appears exactly once in the result; right rows without a partner are
// dropped; left rows without a partner get null-filled right-hand columns.
// The right table must be unique on the key, otherwise ErrJoinCardinality is
// returned. Use JoinFanOut when duplicated right keys are expected.
func Join(left, right *Table, key string) (*Table, error) {
	return join(left, right, key, false)
}

// JoinFanOut is Join without the uniqueness requirement: a left row with n
// partners on the right appears n times in the result.
func JoinFanOut(left, right *Table, key string) (*Table, error) {
	return join(left, right, key, true)
}

func join(left, right *Table, key string, fanOut bool) (*Table, error) {
	lk, err := left.Column(key)
	if err != nil {
		return nil, fmt.Errorf("left join table: %w", err)
	}
	rk, err := right.Column(key)
	if err != nil {
		return nil, fmt.Errorf("right join table: %w", err)
	}
	if lk.Type != rk.Type {
		return nil, fmt.Errorf(
			"%w: key %s is %s on the left, %s on the right",
			ErrTypeMismatch, key, lk.Type, rk.Type,
		)
	}

	index := make(map[joinKey][]int, right.NumRows())
	for row := 0; row < right.NumRows(); row++ {
		k, ok := keyAt(rk, row)
		if !ok {
			continue
		}
		index[k] = append(index[k], row)
		if !fanOut && len(index[k]) > 1 {
			return nil, fmt.Errorf("%w: key %s", ErrJoinCardinality, key)
		}
	}

	// matches[i] is the right-hand row joined to the i-th result row, or -1
	// for a null fill. leftIdx maps result rows back onto left rows; without
	// fan-out it is the identity.
	leftIdx := make([]int, 0, left.NumRows())
	matches := make([]int, 0, left.NumRows())
	for row := 0; row < left.NumRows(); row++ {
		k, ok := keyAt(lk, row)
		if !ok {
			leftIdx = append(leftIdx, row)
			matches = append(matches, -1)
			continue
		}
		partners := index[k]
		if len(partners) == 0 {
			leftIdx = append(leftIdx, row)
			matches = append(matches, -1)
			continue
		}
		for _, p := range partners {
			leftIdx = append(leftIdx, row)
			matches = append(matches, p)
		}
	}

	cols := make([]Column, 0, left.NumCols()+right.NumCols()-1)
	for i := range left.cols {
		cols = append(cols, left.cols[i].take(leftIdx))
	}
	for i := range right.cols {
		c := &right.cols[i]
		if c.Name == key {
			continue
		}
		if left.HasColumn(c.Name) {
			return nil, fmt.Errorf("%w: %s appears on both sides", ErrColumnExists, c.Name)
		}
		cols = append(cols, takeWithNulls(c, matches))
	}
	return New(cols...)
}

// takeWithNulls copies rows of c per idx, writing a null for every -1 entry.
func takeWithNulls(c *Column, idx []int) Column {
	out := Column{
		Name:  c.Name,
		Type:  c.Type,
		Nulls: make([]bool, 0, len(idx)),
	}
	for _, i := range idx {
		if i < 0 {
			out.Nulls = append(out.Nulls, true)
			switch c.Type {
			case IntType:
				out.Ints = append(out.Ints, 0)
			case FloatType:
				out.Floats = append(out.Floats, 0)
			case StringType:
				out.Strings = append(out.Strings, "")
			}
			continue
		}
		out.Nulls = append(out.Nulls, c.Nulls != nil && c.Nulls[i])
		switch c.Type {
		case IntType:
			out.Ints = append(out.Ints, c.Ints[i])
		case FloatType:
			out.Floats = append(out.Floats, c.Floats[i])
		case StringType:
			out.Strings = append(out.Strings, c.Strings[i])
		}
	}
	return out
}
