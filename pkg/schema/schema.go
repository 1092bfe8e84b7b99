package schema

import (
	"fmt"
	"sort"

	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
)

// FieldSet is a set of field names.
type FieldSet map[string]struct{}

// NewFieldSet builds a field set from names.
func NewFieldSet(names ...string) FieldSet {
	s := make(FieldSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s FieldSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// SubsetOf reports whether every name in s is in other.
func (s FieldSet) SubsetOf(other FieldSet) bool {
	for n := range s {
		if !other.Contains(n) {
			return false
		}
	}
	return true
}

// Equal reports whether the two sets hold the same names.
func (s FieldSet) Equal(other FieldSet) bool {
	return len(s) == len(other) && s.SubsetOf(other)
}

// Diff returns the names in s but not in other, sorted.
func (s FieldSet) Diff(other FieldSet) []string {
	var out []string
	for n := range s {
		if !other.Contains(n) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// Names returns the set's contents, sorted.
func (s FieldSet) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Field pairs a field name with its mapping metadata, for ordered
// schema construction.
type Field struct {
	Name string
	Info FieldInfo
}

// Schema maps a record type's fields to predicates, ranges and
// cardinality, under one resource marker. Immutable after Define.
type Schema struct {
	resource *rdf.NamedNode
	order    []string
	attrs    map[string]FieldInfo
}

// Define constructs a schema, validating every field eagerly.
func Define(resource *rdf.NamedNode, fields ...Field) (*Schema, error) {
	if resource == nil {
		return nil, fmt.Errorf("%w: schema requires a resource", ErrAnnotation)
	}
	s := &Schema{
		resource: resource,
		order:    make([]string, 0, len(fields)),
		attrs:    make(map[string]FieldInfo, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: empty field name in schema for %s", ErrAnnotation, resource.IRI)
		}
		if f.Info.Ref == nil {
			return nil, fmt.Errorf("%w: field %q has no predicate reference", ErrAnnotation, f.Name)
		}
		if _, dup := s.attrs[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q in schema for %s", ErrAnnotation, f.Name, resource.IRI)
		}
		info, err := f.Info.normalize()
		if err != nil {
			return nil, err
		}
		s.order = append(s.order, f.Name)
		s.attrs[f.Name] = info
	}
	return s, nil
}

// MustDefine is Define for statically known schemas; it panics on error.
func MustDefine(resource *rdf.NamedNode, fields ...Field) *Schema {
	s, err := Define(resource, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Resource returns the resource marker this schema describes.
func (s *Schema) Resource() *rdf.NamedNode {
	return s.resource
}

// Names returns field names in declaration order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Info returns the mapping metadata for a field.
func (s *Schema) Info(name string) (FieldInfo, bool) {
	info, ok := s.attrs[name]
	return info, ok
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.order)
}

// Fields returns the set of all field names.
func (s *Schema) Fields() FieldSet {
	return NewFieldSet(s.order...)
}

// RequiredFields returns the set of required field names.
func (s *Schema) RequiredFields() FieldSet {
	out := make(FieldSet)
	for name, info := range s.attrs {
		if info.Required {
			out[name] = struct{}{}
		}
	}
	return out
}

// RefMapping returns the reverse map from predicate IRI to field name.
// Behavior is undefined when two fields share a predicate.
func (s *Schema) RefMapping() map[string]string {
	out := make(map[string]string, len(s.attrs))
	for name, info := range s.attrs {
		out[info.Ref.IRI] = name
	}
	return out
}

// Equal reports whether two schemas describe the same resource with
// identical fields.
func (s *Schema) Equal(other *Schema) bool {
	if other == nil || !s.resource.Equals(other.resource) || len(s.attrs) != len(other.attrs) {
		return false
	}
	for name, info := range s.attrs {
		oinfo, ok := other.attrs[name]
		if !ok {
			return false
		}
		if !fieldInfoEqual(info, oinfo) {
			return false
		}
	}
	return true
}

func fieldInfoEqual(a, b FieldInfo) bool {
	return namedNodeEqual(a.Ref, b.Ref) &&
		namedNodeEqual(a.Range, b.Range) &&
		namedNodeEqual(a.ResourceRef, b.ResourceRef) &&
		a.Repeat == b.Repeat &&
		a.Required == b.Required
}

func namedNodeEqual(a, b *rdf.NamedNode) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IRI == b.IRI
}
