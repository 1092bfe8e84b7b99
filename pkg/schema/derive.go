package schema

import (
	"fmt"
	"reflect"

	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
)

// Derive builds a schema from a record type's field annotations when no
// explicit schema is supplied. The prototype is a struct (or pointer to
// one) whose fields carry `rdf` tags; the context prefix builds each
// predicate from the field name unless the tag supplies an explicit
// `ref`. All errors are fatal at derivation time.
//
// Tag grammar: `rdf:"name[,opt...]"` with options
//
//	ref=<iri>       explicit predicate (overrides context+name)
//	range=<name>    explicit datatype (XSD local name or IRI)
//	resource=<iri>  reference field: values identify records of this resource
//	optional        required=false regardless of the Go type shape
func Derive(resource *rdf.NamedNode, context string, prototype any) (*Schema, error) {
	rt := reflect.TypeOf(prototype)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: derivation expects a struct prototype, got %T", ErrUnsupportedRecord, prototype)
	}

	var fields []Field
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts := parseFieldTag(f)
		if name == "-" || name == IDField {
			continue
		}

		desc, err := descFromType(f.Type, opts, rt.Name(), name)
		if err != nil {
			return nil, err
		}
		info, err := FieldInfoFromDesc(name, rt.Name(), desc, context)
		if err != nil {
			return nil, err
		}
		if ref, ok := opts["ref"]; ok {
			info.Ref = rdf.NewNamedNode(ref)
		}
		if _, ok := opts["optional"]; ok {
			info.Required = false
		}
		fields = append(fields, Field{Name: name, Info: info})
	}

	return Define(resource, fields...)
}

// descFromType classifies a Go field type into a type descriptor:
// pointers become optional, slices (except []byte) repeated, maps an
// underivable mapping shape, and the element a scalar or reference.
func descFromType(t reflect.Type, opts map[string]string, typeName, fieldName string) (TypeDesc, error) {
	optional := false
	if t.Kind() == reflect.Pointer {
		optional = true
		t = t.Elem()
	}

	repeated := false
	if (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) && t != typeBytes {
		repeated = true
		t = t.Elem()
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
	}

	var base TypeDesc
	switch {
	case t.Kind() == reflect.Map:
		base = TypeDesc{Kind: KindMapping, TypeName: t.String()}
	case opts["resource"] != "":
		if t.Kind() != reflect.String {
			return TypeDesc{}, fmt.Errorf("%w: reference field %s.%s must hold string identifiers, got %s",
				ErrUnsupportedType, typeName, fieldName, t)
		}
		base = Reference(rdf.NewNamedNode(opts["resource"]))
	case opts["range"] != "":
		dt, ok := ResolveRange(opts["range"])
		if !ok {
			return TypeDesc{}, fmt.Errorf("%w: unknown range %q on field %s.%s",
				ErrUnsupportedType, opts["range"], typeName, fieldName)
		}
		base = Scalar(dt)
	default:
		dt, ok := RangeOfType(t)
		if !ok {
			base = Scalar(nil)
			base.TypeName = t.String()
		} else {
			base = Scalar(dt)
		}
	}

	desc := base
	if repeated {
		desc = Repeated(desc)
	}
	if optional {
		desc = Optional(desc)
	}
	return desc, nil
}
