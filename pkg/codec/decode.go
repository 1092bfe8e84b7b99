package codec

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
	"github.com/aleksaelezovic/rdfbind/pkg/schema"
)

// ErrNoStatements is returned when decoding a subject that no triple
// in the input describes.
var ErrNoStatements = errors.New("codec: subject has no statements")

// DecodeSubject collects the statements about one subject into a field
// map keyed by schema field names, with the subject identifier under
// "id". Predicates outside the schema and repeated values in non-repeat
// fields are errors.
func DecodeSubject(triples []*rdf.Triple, subject rdf.Term, sch *schema.Schema) (map[string]any, error) {
	refMap := sch.RefMapping()
	values := make(map[string]any)
	matched := false

	for _, t := range triples {
		if !t.Subject.Equals(subject) {
			continue
		}
		matched = true

		pred, ok := t.Predicate.(*rdf.NamedNode)
		if !ok {
			return nil, fmt.Errorf("%w: predicate %s is not an IRI", schema.ErrValidation, t.Predicate)
		}
		if pred.Equals(rdf.RDFType) {
			continue
		}

		name, ok := refMap[pred.IRI]
		if !ok {
			return nil, fmt.Errorf("%w: schema %s has no field for predicate %s",
				schema.ErrValidation, sch.Resource(), pred)
		}
		info, _ := sch.Info(name)

		value, err := decodeObject(t.Object, info)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}

		if info.Repeat {
			existing, _ := values[name].([]any)
			values[name] = append(existing, value)
			continue
		}
		if _, exists := values[name]; exists {
			return nil, fmt.Errorf("%w: non-repeat field %q has multiple statements",
				schema.ErrAnnotation, name)
		}
		values[name] = value
	}

	if !matched {
		return nil, fmt.Errorf("%w: %s", ErrNoStatements, subject)
	}

	id, err := rdf.RefString(subject)
	if err != nil {
		return nil, err
	}
	values[schema.IDField] = id
	return values, nil
}

// decodeObject converts a triple object back to a native value. A plain
// literal is reinterpreted under the field's declared range so that
// lossy serializations still round-trip.
func decodeObject(object rdf.Term, info schema.FieldInfo) (any, error) {
	switch o := object.(type) {
	case *rdf.NamedNode:
		return o.IRI, nil
	case *rdf.BlankNode:
		return "_:" + o.ID, nil
	case *rdf.Literal:
		if o.Datatype == nil && info.Range != nil && !info.Range.Equals(rdf.XSDString) {
			retyped := &rdf.Literal{Value: o.Value, Datatype: info.Range}
			return retyped.Native()
		}
		return o.Native()
	default:
		return nil, fmt.Errorf("%w: unsupported object term %s", schema.ErrValidation, object)
	}
}

// DecodeInto materializes a field map into a typed record using the
// same rdf struct tags the schema deriver reads.
func DecodeInto(values map[string]any, out any) error {
	cfg := &mapstructure.DecoderConfig{
		Result:  out,
		TagName: "rdf",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToTemporalHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
	}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return dec.Decode(values)
}

// Decode is DecodeSubject followed by DecodeInto.
func Decode(triples []*rdf.Triple, subject rdf.Term, sch *schema.Schema, out any) error {
	values, err := DecodeSubject(triples, subject, sch)
	if err != nil {
		return err
	}
	return DecodeInto(values, out)
}

var timeType = reflect.TypeOf(time.Time{})

// stringToTemporalHook parses dateTime, date and time lexical forms
// into time.Time when the target asks for one.
func stringToTemporalHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != timeType {
		return data, nil
	}
	s := data.(string)
	for _, layout := range []string{time.RFC3339, rdf.DateLayout, rdf.TimeLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("cannot parse %q as a temporal value", s)
}
