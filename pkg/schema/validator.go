package schema

import (
	"fmt"
)

// DescribeMode selects how strictly a schema must cover a record's
// fields.
type DescribeMode string

const (
	// DescribeFull requires the record's field set (identifier
	// excluded) to equal the schema's field set.
	DescribeFull DescribeMode = "full"
	// DescribePartial requires the schema's fields to be a subset of
	// the record's fields.
	DescribePartial DescribeMode = "partial"
	// DescribeRequired requires the schema's required fields to be a
	// subset of the record's fields.
	DescribeRequired DescribeMode = "required"
)

// Compatible checks that two schemas describe the same resource.
func Compatible(src, dst *Schema) error {
	if !src.Resource().Equals(dst.Resource()) {
		return fmt.Errorf("%w: schemas describe different resources: %s != %s",
			ErrValidation, src.Resource().IRI, dst.Resource().IRI)
	}
	return nil
}

// EqualFields checks that two field sets are equal, reporting the
// symmetric difference on mismatch.
func EqualFields(src, dst FieldSet) error {
	if !src.Equal(dst) {
		return fmt.Errorf("%w: different fields. In src only: %v. In dst only: %v",
			ErrValidation, src.Diff(dst), dst.Diff(src))
	}
	return nil
}

// SubsetFields checks that src is a subset of dst, reporting the
// missing names on mismatch.
func SubsetFields(src, dst FieldSet) error {
	if !src.SubsetOf(dst) {
		return fmt.Errorf("%w: not a subset. In src only: %v", ErrValidation, src.Diff(dst))
	}
	return nil
}

// IsValidExtension checks that extended may safely stand in for base:
// same resource, every base field present in extended, and every base
// required field still required in extended.
func IsValidExtension(base, extended *Schema) error {
	if err := Compatible(base, extended); err != nil {
		return err
	}
	if err := SubsetFields(base.Fields(), extended.Fields()); err != nil {
		return err
	}
	return SubsetFields(base.RequiredFields(), extended.RequiredFields())
}

// IsSubSchema reports whether src is a sub-schema of dst: same
// resource, src's fields a subset of dst's, and src's required fields
// a subset of dst's required fields.
func IsSubSchema(src, dst *Schema) bool {
	return src.Resource().Equals(dst.Resource()) &&
		src.Fields().SubsetOf(dst.Fields()) &&
		src.RequiredFields().SubsetOf(dst.RequiredFields())
}

// DescribesRecord reports whether the schema describes the record-like
// value under the given mode. The value may be a map, a Record, or an
// annotated struct; anything else is an unsupported shape error.
func DescribesRecord(recordLike any, s *Schema, mode DescribeMode) (bool, error) {
	rec, err := AsRecord(recordLike)
	if err != nil {
		return false, err
	}
	fields := NewFieldSet(rec.FieldNames()...)
	delete(fields, IDField)

	switch mode {
	case DescribeRequired:
		return s.RequiredFields().SubsetOf(fields), nil
	case DescribePartial:
		return s.Fields().SubsetOf(fields), nil
	case DescribeFull:
		return s.Fields().Equal(fields), nil
	default:
		return false, fmt.Errorf("%w: invalid describe mode %q", ErrValidation, mode)
	}
}
