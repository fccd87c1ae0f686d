// Package expr implements the criterion language used to reduce catalog
// tables: comparisons over named columns combined conjunctively. Criteria are
// validated against a table's schema before any row is touched, so a typo in
// a column name surfaces as table.ErrUnknownColumn instead of an empty
// result.
package expr

import (
	"fmt"
	"strings"

	"github.com/gogreen-survey/gogreen/src/table"
)

// Op is a comparison operator.
type Op uint8

const (
	OpGt Op = iota
	OpGe
	OpLt
	OpLe
	OpEq
	OpNe
)

func (o Op) String() string {
	switch o {
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	}
	panic("invalid operator")
}

// Criterion is a row predicate over a table.
type Criterion interface {
	// Validate checks column references against the table schema.
	Validate(t *table.Table) error
	// Eval reports whether the given row satisfies the criterion. A row
	// with a missing value in any referenced column never satisfies it.
	Eval(t *table.Table, row int) (bool, error)
	String() string
}

// Operand is one side of a comparison: a numeric literal, a column
// reference, an offset column (literal + column), or a string literal.
type Operand struct {
	Col    string
	Offset float64
	Lit    float64
	Str    string

	hasCol bool
	hasLit bool
	isStr  bool
}

// Col references a column.
func Col(name string) Operand {
	return Operand{Col: name, hasCol: true}
}

// Num is a numeric literal.
func Num(v float64) Operand {
	return Operand{Lit: v, hasLit: true}
}

// Text is a string literal.
func Text(s string) Operand {
	return Operand{Str: s, isStr: true}
}

// ColPlus references a column shifted by a constant, as in
// "UMINV > 0.60 + VMINJ".
func ColPlus(offset float64, name string) Operand {
	return Operand{Col: name, Offset: offset, hasCol: true}
}

func (o Operand) String() string {
	switch {
	case o.isStr:
		return fmt.Sprintf("%q", o.Str)
	case o.hasCol && o.Offset != 0:
		return fmt.Sprintf("%g + %s", o.Offset, o.Col)
	case o.hasCol:
		return o.Col
	default:
		return fmt.Sprintf("%g", o.Lit)
	}
}

func (o Operand) validate(t *table.Table) error {
	if !o.hasCol {
		return nil
	}
	if !t.HasColumn(o.Col) {
		return fmt.Errorf("%w: %s", table.ErrUnknownColumn, o.Col)
	}
	return nil
}

// number evaluates the operand numerically. ok is false when a referenced
// value is missing.
func (o Operand) number(t *table.Table, row int) (float64, bool, error) {
	if o.isStr {
		return 0, false, fmt.Errorf("%w: string literal %q in numeric comparison",
			table.ErrTypeMismatch, o.Str)
	}
	if !o.hasCol {
		return o.Lit, true, nil
	}
	c, err := t.Column(o.Col)
	if err != nil {
		return 0, false, err
	}
	v, ok := c.Float(row)
	if !ok {
		return 0, false, nil
	}
	return v + o.Offset, true, nil
}

func (o Operand) text(t *table.Table, row int) (string, bool, error) {
	if o.isStr {
		return o.Str, true, nil
	}
	c, err := t.Column(o.Col)
	if err != nil {
		return "", false, err
	}
	s, ok := c.Str(row)
	return s, ok, nil
}

// isString reports whether the operand evaluates to a string on the given
// table.
func (o Operand) isString(t *table.Table) bool {
	if o.isStr {
		return true
	}
	if !o.hasCol {
		return false
	}
	c, err := t.Column(o.Col)
	if err != nil {
		return false
	}
	return c.Type == table.StringType
}

// Comparison is a single binary comparison.
type Comparison struct {
	LHS Operand
	Op  Op
	RHS Operand
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.LHS, c.Op, c.RHS)
}

func (c Comparison) Validate(t *table.Table) error {
	if err := c.LHS.validate(t); err != nil {
		return err
	}
	if err := c.RHS.validate(t); err != nil {
		return err
	}
	if c.LHS.isString(t) != c.RHS.isString(t) {
		return fmt.Errorf("%w: %s compares string with number", table.ErrTypeMismatch, c)
	}
	if c.LHS.isString(t) && c.Op != OpEq && c.Op != OpNe {
		return fmt.Errorf("%w: %s orders strings", table.ErrTypeMismatch, c)
	}
	return nil
}

func (c Comparison) Eval(t *table.Table, row int) (bool, error) {
	if c.LHS.isString(t) || c.RHS.isString(t) {
		l, ok, err := c.LHS.text(t, row)
		if err != nil || !ok {
			return false, err
		}
		r, ok, err := c.RHS.text(t, row)
		if err != nil || !ok {
			return false, err
		}
		if c.Op == OpEq {
			return l == r, nil
		}
		return l != r, nil
	}

	l, ok, err := c.LHS.number(t, row)
	if err != nil || !ok {
		return false, err
	}
	r, ok, err := c.RHS.number(t, row)
	if err != nil || !ok {
		return false, err
	}
	switch c.Op {
	case OpGt:
		return l > r, nil
	case OpGe:
		return l >= r, nil
	case OpLt:
		return l < r, nil
	case OpLe:
		return l <= r, nil
	case OpEq:
		return l == r, nil
	case OpNe:
		return l != r, nil
	}
	panic("invalid operator")
}

// Conjunction is an ordered AND of criteria.
type Conjunction []Criterion

func (cs Conjunction) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = "(" + c.String() + ")"
	}
	return strings.Join(parts, " && ")
}

func (cs Conjunction) Validate(t *table.Table) error {
	for _, c := range cs {
		if err := c.Validate(t); err != nil {
			return err
		}
	}
	return nil
}

func (cs Conjunction) Eval(t *table.Table, row int) (bool, error) {
	for _, c := range cs {
		ok, err := c.Eval(t, row)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Convenience constructors.

func Gt(col string, v float64) Criterion { return Comparison{Col(col), OpGt, Num(v)} }
func Ge(col string, v float64) Criterion { return Comparison{Col(col), OpGe, Num(v)} }
func Lt(col string, v float64) Criterion { return Comparison{Col(col), OpLt, Num(v)} }
func Le(col string, v float64) Criterion { return Comparison{Col(col), OpLe, Num(v)} }
func Eq(col string, v float64) Criterion { return Comparison{Col(col), OpEq, Num(v)} }

// EqText matches a string column against a literal.
func EqText(col, s string) Criterion { return Comparison{Col(col), OpEq, Text(s)} }

// And combines criteria conjunctively.
func And(cs ...Criterion) Criterion { return Conjunction(cs) }
