package schema

import (
	"errors"
)

var (
	// ErrAnnotation signals a schema/record shape contract violation:
	// field-set mismatch at definition time, or a cardinality contract
	// violation during encode/decode.
	ErrAnnotation = errors.New("annotation contract violation")

	// ErrValidation signals a schema compatibility failure: different
	// resources or non-subset field sets.
	ErrValidation = errors.New("schema validation failed")

	// ErrUnsupportedType is raised during schema derivation for field
	// types outside the supported scalar set.
	ErrUnsupportedType = errors.New("unsupported field type")

	// ErrUnsupportedShape is raised during schema derivation for field
	// shapes that have no derivable range (maps, ambiguous unions).
	ErrUnsupportedShape = errors.New("unsupported field shape")

	// ErrUnsupportedRecord is raised when a value passed as a record is
	// not one of the supported introspectable shapes.
	ErrUnsupportedRecord = errors.New("unsupported record shape")
)
