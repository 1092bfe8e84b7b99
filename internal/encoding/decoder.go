package encoding

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
)

// TermDecoder reconstructs RDF terms from their binary encoding.
type TermDecoder struct{}

func NewTermDecoder() *TermDecoder {
	return &TermDecoder{}
}

// DecodeTerm decodes an encoded term. stringValue must carry the
// id2str lookup result for hashed encodings and is nil otherwise.
func (d *TermDecoder) DecodeTerm(encoded EncodedTerm, stringValue *string) (rdf.Term, error) {
	switch GetTermType(encoded) {
	case rdf.TermTypeNamedNode:
		if stringValue == nil {
			return nil, fmt.Errorf("string value required for named node")
		}
		return rdf.NewNamedNode(*stringValue), nil

	case rdf.TermTypeBlankNode:
		if stringValue != nil {
			return rdf.NewBlankNode(*stringValue), nil
		}
		num := binary.BigEndian.Uint64(encoded[1:9])
		return rdf.NewBlankNode(strconv.FormatUint(num, 10)), nil

	case rdf.TermTypeStringLiteral:
		if stringValue != nil {
			return rdf.NewLiteral(*stringValue), nil
		}
		return rdf.NewLiteral(inlineString(encoded)), nil

	case rdf.TermTypeLangStringLiteral:
		if stringValue == nil {
			return nil, fmt.Errorf("string value required for language-tagged literal")
		}
		if i := strings.LastIndexByte(*stringValue, '@'); i >= 0 {
			return rdf.NewLiteralWithLanguage((*stringValue)[:i], (*stringValue)[i+1:]), nil
		}
		return rdf.NewLiteral(*stringValue), nil

	case rdf.TermTypeIntegerLiteral:
		n := int64(binary.BigEndian.Uint64(encoded[1:9])) // #nosec G115 - bit-pattern conversion
		return rdf.NewLiteralWithDatatype(strconv.FormatInt(n, 10), rdf.XSDInteger), nil

	case rdf.TermTypeFloatLiteral:
		f := math.Float64frombits(binary.BigEndian.Uint64(encoded[1:9]))
		return rdf.NewLiteralWithDatatype(strconv.FormatFloat(f, 'g', -1, 64), rdf.XSDDouble), nil

	case rdf.TermTypeBooleanLiteral:
		return rdf.NewLiteralWithDatatype(strconv.FormatBool(encoded[1] != 0), rdf.XSDBoolean), nil

	case rdf.TermTypeDateTimeLiteral:
		nanos := int64(binary.BigEndian.Uint64(encoded[1:9])) // #nosec G115 - bit-pattern conversion
		t := time.Unix(0, nanos).UTC()
		return rdf.NewLiteralWithDatatype(t.Format(time.RFC3339Nano), rdf.XSDDateTime), nil

	case rdf.TermTypeDateLiteral:
		days := int64(binary.BigEndian.Uint64(encoded[1:9])) // #nosec G115 - bit-pattern conversion
		t := time.Unix(days*86400, 0).UTC()
		return rdf.NewLiteralWithDatatype(t.Format(rdf.DateLayout), rdf.XSDDate), nil

	case rdf.TermTypeTimeLiteral:
		seconds := binary.BigEndian.Uint64(encoded[1:9])
		t := time.Date(0, 1, 1, 0, 0, int(seconds), 0, time.UTC) // #nosec G115 - seconds of day
		return rdf.NewLiteralWithDatatype(t.Format(rdf.TimeLayout), rdf.XSDTime), nil

	case rdf.TermTypeDurationLiteral:
		nanos := int64(binary.BigEndian.Uint64(encoded[1:9])) // #nosec G115 - bit-pattern conversion
		return rdf.NewLiteralWithDatatype(rdf.FormatXSDDuration(time.Duration(nanos)), rdf.XSDDuration), nil

	case rdf.TermTypeBytesLiteral, rdf.TermTypeLiteral:
		if stringValue == nil {
			return nil, fmt.Errorf("string value required for typed literal")
		}
		value, datatype, ok := splitComposite(*stringValue)
		if !ok {
			return nil, fmt.Errorf("malformed typed literal composite %q", *stringValue)
		}
		return rdf.NewLiteralWithDatatype(value, rdf.NewNamedNode(datatype)), nil

	default:
		return nil, fmt.Errorf("unknown term type: %d", encoded[0])
	}
}

// inlineString extracts a null-padded inline string.
func inlineString(encoded EncodedTerm) string {
	end := 1
	for end < EncodedTermSize && encoded[end] != 0 {
		end++
	}
	return string(encoded[1:end])
}
