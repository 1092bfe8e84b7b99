// Package codec implements the bidirectional conversion between
// schema-described records and RDF triples.
package codec

import (
	"fmt"
	"reflect"

	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
	"github.com/aleksaelezovic/rdfbind/pkg/schema"
)

// Encode converts a record into the set of triples describing it: one
// statement per field value plus a closing rdf:type statement. Nil and
// absent field values emit nothing. A container value in a non-repeat
// field is a contract violation, never a silent flatten.
func Encode(rec schema.Record, sch *schema.Schema) ([]*rdf.Triple, error) {
	subject := rdf.MakeRef(rec.ID())
	var triples []*rdf.Triple

	for _, name := range sch.Names() {
		info, _ := sch.Info(name)
		value, ok := rec.Field(name)
		if !ok || value == nil {
			continue
		}

		elements, err := normalizeValues(name, value, info)
		if err != nil {
			return nil, err
		}

		for _, elem := range elements {
			object, err := encodeValue(name, elem, info)
			if err != nil {
				return nil, err
			}
			triples = append(triples, rdf.NewTriple(subject, info.Ref, object))
		}
	}

	triples = append(triples, rdf.NewTriple(subject, rdf.RDFType, sch.Resource()))
	return triples, nil
}

// EncodeAny adapts any supported record shape and encodes it.
func EncodeAny(v any, sch *schema.Schema) ([]*rdf.Triple, error) {
	rec, err := schema.AsRecord(v)
	if err != nil {
		return nil, err
	}
	return Encode(rec, sch)
}

// normalizeValues flattens a field value into its elements, enforcing
// the cardinality contract.
func normalizeValues(name string, value any, info schema.FieldInfo) ([]any, error) {
	rv := reflect.ValueOf(value)

	if isContainer(rv) {
		if !info.Repeat {
			return nil, fmt.Errorf("%w: non-repeat field %q received container value of type %T",
				schema.ErrAnnotation, name, value)
		}
		elements := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem := rv.Index(i)
			if elem.Kind() == reflect.Pointer || elem.Kind() == reflect.Interface {
				if elem.IsNil() {
					continue
				}
				elem = elem.Elem()
			}
			elements = append(elements, elem.Interface())
		}
		return elements, nil
	}

	if rv.Kind() == reflect.Map {
		return nil, fmt.Errorf("%w: field %q holds a mapping value of type %T",
			schema.ErrAnnotation, name, value)
	}

	// A single value into a repeat field is one element, not an error.
	return []any{value}, nil
}

// isContainer reports whether the value is a multi-element container.
// Strings and byte sequences are scalars.
func isContainer(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Type() != reflect.TypeOf([]byte(nil))
	default:
		return false
	}
}

// encodeValue converts one element into a triple object: an identifier
// term for reference fields, a typed literal otherwise.
func encodeValue(name string, elem any, info schema.FieldInfo) (rdf.Term, error) {
	if info.ResourceRef != nil {
		return identifierTerm(name, elem)
	}

	lit, err := rdf.NewValueLiteral(elem, info.Range)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", schema.ErrAnnotation, name, err)
	}
	return lit, nil
}

func identifierTerm(name string, elem any) (rdf.Term, error) {
	switch v := elem.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%w: reference field %q holds an empty identifier", schema.ErrAnnotation, name)
		}
		return rdf.MakeRef(v), nil
	case *rdf.NamedNode:
		return v, nil
	case *rdf.BlankNode:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: reference field %q must hold identifiers, got %T",
			schema.ErrAnnotation, name, elem)
	}
}
