package schema

import (
	"fmt"

	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
)

// FieldInfo describes how one record field maps onto RDF statements.
type FieldInfo struct {
	// Ref is the predicate reference used when serializing to triples.
	Ref *rdf.NamedNode
	// Range is the datatype marker used to serialize the object literal.
	Range *rdf.NamedNode
	// ResourceRef marks a reference field: the field's values are
	// identifiers of records of this resource, never literals.
	ResourceRef *rdf.NamedNode
	// Repeat reports whether the field takes multiple values.
	Repeat bool
	// Required reports whether the field must be present.
	Required bool
}

// normalize enforces the range/reference invariant: a field with a
// resource reference is identifier-valued, so its range must be absent
// or xsd:IDREF (and is forced to IDREF).
func (f FieldInfo) normalize() (FieldInfo, error) {
	if f.ResourceRef != nil {
		if f.Range == nil || f.Range.IRI == rdf.XSDIDREF.IRI {
			f.Range = rdf.XSDIDREF
			return f, nil
		}
		return f, fmt.Errorf("%w: field with resource reference must have nil or IDREF range, got %s",
			ErrAnnotation, f.Range.IRI)
	}
	return f, nil
}

// DescKind tags the closed set of type-descriptor variants recognized
// by schema derivation.
type DescKind int

const (
	KindScalar DescKind = iota
	KindOptional
	KindRepeated
	KindReference
	KindMapping
	KindUnion
)

// TypeDesc is a declarative field type descriptor. It is the input to
// the derivation parser, independent of any reflection API: front-ends
// (struct reflection, hand-written declarations) produce TypeDescs.
type TypeDesc struct {
	Kind     DescKind
	Datatype *rdf.NamedNode // KindScalar: datatype marker, nil when unmapped
	Elem     *TypeDesc      // KindOptional / KindRepeated
	Target   *rdf.NamedNode // KindReference: referenced resource
	TypeName string         // for error reporting
}

// Scalar builds a scalar descriptor for a datatype marker.
func Scalar(datatype *rdf.NamedNode) TypeDesc {
	return TypeDesc{Kind: KindScalar, Datatype: datatype}
}

// Optional wraps a descriptor as "value or absent".
func Optional(elem TypeDesc) TypeDesc {
	return TypeDesc{Kind: KindOptional, Elem: &elem}
}

// Repeated wraps a descriptor as an ordered multi-valued container.
func Repeated(elem TypeDesc) TypeDesc {
	return TypeDesc{Kind: KindRepeated, Elem: &elem}
}

// Reference builds a descriptor for identifier-valued fields that point
// at records of the target resource.
func Reference(target *rdf.NamedNode) TypeDesc {
	return TypeDesc{Kind: KindReference, Target: target}
}

// FieldInfoFromDesc derives a FieldInfo from a field's type descriptor.
// The predicate defaults to context + fieldName.
//
// Rules:
//   - scalar: required, single-valued, range from the descriptor
//   - optional scalar: required=false
//   - repeated: repeat=true; an optional wrapper on either the field or
//     the element type makes the field not required
//   - reference: identifier-valued, range=IDREF
//   - mapping or union shapes: no derivable range
//   - scalar with no datatype mapping: unsupported type
func FieldInfoFromDesc(fieldName, typeName string, desc TypeDesc, context string) (FieldInfo, error) {
	info := FieldInfo{
		Ref:      rdf.NewNamedNode(context + fieldName),
		Required: true,
	}

	cur := desc
	if cur.Kind == KindOptional {
		info.Required = false
		cur = *cur.Elem
	}
	if cur.Kind == KindRepeated {
		info.Repeat = true
		cur = *cur.Elem
		// An optional element type relaxes the field as a whole: a
		// container that may hold nothing is not required.
		if cur.Kind == KindOptional {
			info.Required = false
			cur = *cur.Elem
		}
	}

	switch cur.Kind {
	case KindScalar:
		if cur.Datatype == nil {
			return info, fmt.Errorf("%w: type %s of field %s.%s has no range mapping",
				ErrUnsupportedType, cur.TypeName, typeName, fieldName)
		}
		info.Range = cur.Datatype
	case KindReference:
		target := cur.Target
		if target != nil && !containsScheme(target.IRI) {
			// Relative resource names resolve against the context.
			target = rdf.NewNamedNode(context + target.IRI)
		}
		info.ResourceRef = target
		info.Range = rdf.XSDIDREF
	case KindMapping:
		return info, fmt.Errorf("%w: ranges over key-value containers are not derivable (field %s.%s)",
			ErrUnsupportedShape, typeName, fieldName)
	case KindUnion:
		return info, fmt.Errorf("%w: ambiguous range for union type (field %s.%s)",
			ErrUnsupportedShape, typeName, fieldName)
	default:
		return info, fmt.Errorf("%w: nested container shape (field %s.%s)",
			ErrUnsupportedShape, typeName, fieldName)
	}

	return info.normalize()
}
