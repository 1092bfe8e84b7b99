package schema

import (
	"reflect"
	"time"

	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
)

// Refinement is a numeric sign constraint carried by the refined XSD
// integer datatypes.
type Refinement int

const (
	RefineNone Refinement = iota
	RefineNegative
	RefineNonNegative
	RefineNonPositive
	RefinePositive
)

var (
	typeTime     = reflect.TypeOf(time.Time{})
	typeDuration = reflect.TypeOf(time.Duration(0))
	typeBytes    = reflect.TypeOf([]byte(nil))
	typeAny      = reflect.TypeOf((*any)(nil)).Elem()
)

// RangeOfType maps a native Go type to its datatype marker. The table
// is fixed and static: unknown types yield ok=false, never a guess.
// The untyped `any` maps to xsd:string by convention.
func RangeOfType(t reflect.Type) (*rdf.NamedNode, bool) {
	switch t {
	case typeTime:
		return rdf.XSDDateTime, true
	case typeDuration:
		return rdf.XSDDuration, true
	case typeBytes:
		return rdf.XSDByte, true
	case typeAny:
		return rdf.XSDString, true
	}

	switch t.Kind() {
	case reflect.String:
		return rdf.XSDString, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return rdf.XSDInteger, true
	case reflect.Float32, reflect.Float64:
		return rdf.XSDFloat, true
	case reflect.Bool:
		return rdf.XSDBoolean, true
	default:
		return nil, false
	}
}

// TypeOfRange is the inverse mapping: the native Go type and sign
// refinement for a datatype marker. Total over the supported scalar
// set; unknown markers yield ok=false.
func TypeOfRange(datatype *rdf.NamedNode) (reflect.Type, Refinement, bool) {
	if datatype == nil {
		return nil, RefineNone, false
	}
	switch datatype.IRI {
	case rdf.XSDString.IRI:
		return reflect.TypeOf(""), RefineNone, true
	case rdf.XSDInteger.IRI, rdf.XSDInt.IRI, rdf.XSDLong.IRI, rdf.XSDShort.IRI:
		return reflect.TypeOf(int64(0)), RefineNone, true
	case rdf.XSDNegativeInteger.IRI:
		return reflect.TypeOf(int64(0)), RefineNegative, true
	case rdf.XSDNonNegativeInteger.IRI:
		return reflect.TypeOf(int64(0)), RefineNonNegative, true
	case rdf.XSDNonPositiveInteger.IRI:
		return reflect.TypeOf(int64(0)), RefineNonPositive, true
	case rdf.XSDPositiveInteger.IRI:
		return reflect.TypeOf(int64(0)), RefinePositive, true
	case rdf.XSDFloat.IRI, rdf.XSDDouble.IRI, rdf.XSDDecimal.IRI:
		return reflect.TypeOf(float64(0)), RefineNone, true
	case rdf.XSDBoolean.IRI:
		return reflect.TypeOf(false), RefineNone, true
	case rdf.XSDDate.IRI, rdf.XSDDateTime.IRI, rdf.XSDDateTimeStamp.IRI, rdf.XSDTime.IRI:
		return typeTime, RefineNone, true
	case rdf.XSDDuration.IRI:
		return typeDuration, RefineNone, true
	case rdf.XSDByte.IRI, rdf.XSDBase64Binary.IRI:
		return typeBytes, RefineNone, true
	default:
		return nil, RefineNone, false
	}
}

// xsdLocalNames resolves short range names used in struct tags
// (e.g. `rdf:"birthday,range=date"`).
var xsdLocalNames = map[string]*rdf.NamedNode{
	"string":             rdf.XSDString,
	"integer":            rdf.XSDInteger,
	"int":                rdf.XSDInt,
	"long":               rdf.XSDLong,
	"short":              rdf.XSDShort,
	"decimal":            rdf.XSDDecimal,
	"double":             rdf.XSDDouble,
	"float":              rdf.XSDFloat,
	"boolean":            rdf.XSDBoolean,
	"date":               rdf.XSDDate,
	"dateTime":           rdf.XSDDateTime,
	"dateTimeStamp":      rdf.XSDDateTimeStamp,
	"time":               rdf.XSDTime,
	"duration":           rdf.XSDDuration,
	"byte":               rdf.XSDByte,
	"base64Binary":       rdf.XSDBase64Binary,
	"negativeInteger":    rdf.XSDNegativeInteger,
	"nonNegativeInteger": rdf.XSDNonNegativeInteger,
	"nonPositiveInteger": rdf.XSDNonPositiveInteger,
	"positiveInteger":    rdf.XSDPositiveInteger,
}

// ResolveRange resolves a range tag value: either an XSD local name or
// a full IRI.
func ResolveRange(name string) (*rdf.NamedNode, bool) {
	if dt, ok := xsdLocalNames[name]; ok {
		return dt, true
	}
	if len(name) > 0 && (name[0] == '<' || containsScheme(name)) {
		iri := name
		if name[0] == '<' && name[len(name)-1] == '>' {
			iri = name[1 : len(name)-1]
		}
		return rdf.NewNamedNode(iri), true
	}
	return nil, false
}

func containsScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return i > 0
		}
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.') {
			return false
		}
	}
	return false
}
