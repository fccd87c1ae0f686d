package table

import "errors"

var (
	// ErrUnknownColumn is returned when an operation references a column
	// the table does not have.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrColumnExists is returned when a rename would shadow an existing
	// column.
	ErrColumnExists = errors.New("column already exists")

	// ErrSchemaMismatch is returned when two tables with incompatible
	// schemas are concatenated.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrJoinCardinality is returned when the right side of a join is
	// required to be unique on the key but is not.
	ErrJoinCardinality = errors.New("join key is not unique on the right side")

	// ErrTypeMismatch is returned when a typed accessor is used on a
	// column of a different type.
	ErrTypeMismatch = errors.New("column type mismatch")

	// ErrLengthMismatch is returned when columns of different lengths are
	// assembled into one table.
	ErrLengthMismatch = errors.New("column length mismatch")
)
