// Package encoding converts RDF terms to and from the fixed-size
// binary representation used by the persistent store's indexes. Terms
// are a type byte followed by 16 bytes of inline data or a 128-bit
// xxhash3 of the term's string form.
package encoding

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
)

const (
	// Maximum size for inline strings (16 bytes of UTF-8).
	MaxInlineStringSize = 16

	// Encoded term size: type byte + 16 bytes of hash or inline data.
	EncodedTermSize = 17
)

// EncodedTerm is a term encoded as a type byte followed by up to
// 16 bytes of data.
type EncodedTerm [EncodedTermSize]byte

// TermEncoder encodes RDF terms for index keys.
type TermEncoder struct{}

func NewTermEncoder() *TermEncoder {
	return &TermEncoder{}
}

// Hash128 computes a 128-bit xxhash3 of the input string.
func (e *TermEncoder) Hash128(s string) [16]byte {
	hash := xxh3.Hash128([]byte(s))
	var result [16]byte
	binary.BigEndian.PutUint64(result[0:8], hash.Hi)
	binary.BigEndian.PutUint64(result[8:16], hash.Lo)
	return result
}

// EncodeTerm encodes a term into its fixed-size form. When the term
// cannot be reconstructed from the encoding alone, the second return
// value carries the string to store in the id2str table.
func (e *TermEncoder) EncodeTerm(term rdf.Term) (EncodedTerm, *string, error) {
	switch t := term.(type) {
	case *rdf.NamedNode:
		encoded, str := e.encodeHashed(rdf.TermTypeNamedNode, t.IRI)
		return encoded, str, nil
	case *rdf.BlankNode:
		return e.encodeBlankNode(t)
	case *rdf.Literal:
		return e.encodeLiteral(t)
	default:
		var encoded EncodedTerm
		return encoded, nil, fmt.Errorf("unknown term type: %T", term)
	}
}

func (e *TermEncoder) encodeHashed(termType rdf.TermType, s string) (EncodedTerm, *string) {
	var encoded EncodedTerm
	encoded[0] = byte(termType)
	hash := e.Hash128(s)
	copy(encoded[1:], hash[:])
	return encoded, &s
}

func (e *TermEncoder) encodeBlankNode(node *rdf.BlankNode) (EncodedTerm, *string, error) {
	// Numeric IDs are stored inline, everything else is hashed.
	if num, err := strconv.ParseUint(node.ID, 10, 64); err == nil {
		encoded := inlineUint64(rdf.TermTypeBlankNode, num)
		return encoded, nil, nil
	}
	encoded, str := e.encodeHashed(rdf.TermTypeBlankNode, node.ID)
	return encoded, str, nil
}

func (e *TermEncoder) encodeLiteral(lit *rdf.Literal) (EncodedTerm, *string, error) {
	if lit.Language != "" {
		// Value and language tag share one stored string.
		encoded, str := e.encodeHashed(rdf.TermTypeLangStringLiteral, lit.Value+"@"+lit.Language)
		return encoded, str, nil
	}

	if lit.Datatype == nil || lit.Datatype.Equals(rdf.XSDString) {
		return e.encodeStringLiteral(lit.Value)
	}

	switch lit.Datatype.IRI {
	case rdf.XSDInteger.IRI:
		return e.encodeIntegerLiteral(lit.Value)
	case rdf.XSDDouble.IRI:
		return e.encodeDoubleLiteral(lit.Value)
	case rdf.XSDBoolean.IRI:
		return e.encodeBooleanLiteral(lit.Value)
	case rdf.XSDDateTime.IRI:
		return e.encodeDateTimeLiteral(lit.Value)
	case rdf.XSDDate.IRI:
		return e.encodeDateLiteral(lit.Value)
	case rdf.XSDTime.IRI:
		return e.encodeTimeLiteral(lit.Value)
	case rdf.XSDDuration.IRI:
		return e.encodeDurationLiteral(lit.Value)
	case rdf.XSDByte.IRI, rdf.XSDBase64Binary.IRI:
		encoded, str := e.encodeHashed(rdf.TermTypeBytesLiteral, composite(lit))
		return encoded, str, nil
	}

	// Remaining typed literals keep their datatype through a stored
	// value^^datatype composite.
	encoded, str := e.encodeHashed(rdf.TermTypeLiteral, composite(lit))
	return encoded, str, nil
}

func composite(lit *rdf.Literal) string {
	return lit.Value + "^^" + lit.Datatype.IRI
}

// splitComposite is the inverse of composite.
func splitComposite(s string) (value, datatype string, ok bool) {
	i := strings.LastIndex(s, "^^")
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+2:], true
}

func (e *TermEncoder) encodeStringLiteral(value string) (EncodedTerm, *string, error) {
	var encoded EncodedTerm
	encoded[0] = byte(rdf.TermTypeStringLiteral)

	if len(value) <= MaxInlineStringSize {
		copy(encoded[1:], value)
		return encoded, nil, nil
	}

	enc, str := e.encodeHashed(rdf.TermTypeStringLiteral, value)
	return enc, str, nil
}

func (e *TermEncoder) encodeIntegerLiteral(value string) (EncodedTerm, *string, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		var encoded EncodedTerm
		return encoded, nil, fmt.Errorf("invalid integer literal: %w", err)
	}
	return inlineUint64(rdf.TermTypeIntegerLiteral, uint64(n)), nil, nil // #nosec G115 - bit-pattern conversion
}

func (e *TermEncoder) encodeDoubleLiteral(value string) (EncodedTerm, *string, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		var encoded EncodedTerm
		return encoded, nil, fmt.Errorf("invalid double literal: %w", err)
	}
	return inlineUint64(rdf.TermTypeFloatLiteral, math.Float64bits(f)), nil, nil
}

func (e *TermEncoder) encodeBooleanLiteral(value string) (EncodedTerm, *string, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		var encoded EncodedTerm
		return encoded, nil, fmt.Errorf("invalid boolean literal: %w", err)
	}
	var n uint64
	if b {
		n = 1
	}
	return inlineUint64(rdf.TermTypeBooleanLiteral, n), nil, nil
}

func (e *TermEncoder) encodeDateTimeLiteral(value string) (EncodedTerm, *string, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		var encoded EncodedTerm
		return encoded, nil, fmt.Errorf("invalid dateTime literal: %w", err)
	}
	return inlineUint64(rdf.TermTypeDateTimeLiteral, uint64(t.UnixNano())), nil, nil // #nosec G115 - bit-pattern conversion
}

func (e *TermEncoder) encodeDateLiteral(value string) (EncodedTerm, *string, error) {
	t, err := time.Parse(rdf.DateLayout, strings.TrimSpace(value))
	if err != nil {
		var encoded EncodedTerm
		return encoded, nil, fmt.Errorf("invalid date literal: %w", err)
	}
	days := t.Unix() / 86400
	return inlineUint64(rdf.TermTypeDateLiteral, uint64(days)), nil, nil // #nosec G115 - bit-pattern conversion
}

func (e *TermEncoder) encodeTimeLiteral(value string) (EncodedTerm, *string, error) {
	t, err := time.Parse(rdf.TimeLayout, strings.TrimSpace(value))
	if err != nil {
		var encoded EncodedTerm
		return encoded, nil, fmt.Errorf("invalid time literal: %w", err)
	}
	seconds := t.Hour()*3600 + t.Minute()*60 + t.Second()
	return inlineUint64(rdf.TermTypeTimeLiteral, uint64(seconds)), nil, nil
}

func (e *TermEncoder) encodeDurationLiteral(value string) (EncodedTerm, *string, error) {
	d, err := rdf.ParseXSDDuration(value)
	if err != nil {
		var encoded EncodedTerm
		return encoded, nil, fmt.Errorf("invalid duration literal: %w", err)
	}
	return inlineUint64(rdf.TermTypeDurationLiteral, uint64(d.Nanoseconds())), nil, nil // #nosec G115 - bit-pattern conversion
}

func inlineUint64(termType rdf.TermType, n uint64) EncodedTerm {
	var encoded EncodedTerm
	encoded[0] = byte(termType)
	binary.BigEndian.PutUint64(encoded[1:9], n)
	return encoded
}

// EncodeTripleKey concatenates encoded terms into a big-endian index
// key that sorts lexicographically.
func (e *TermEncoder) EncodeTripleKey(terms ...EncodedTerm) []byte {
	result := make([]byte, 0, len(terms)*EncodedTermSize)
	for _, term := range terms {
		result = append(result, term[:]...)
	}
	return result
}

// GetTermType extracts the type byte from an encoded term.
func GetTermType(encoded EncodedTerm) rdf.TermType {
	return rdf.TermType(encoded[0])
}

// NeedsStringLookup reports whether decoding the term requires the
// id2str table.
func NeedsStringLookup(encoded EncodedTerm) bool {
	switch GetTermType(encoded) {
	case rdf.TermTypeNamedNode, rdf.TermTypeLangStringLiteral,
		rdf.TermTypeBytesLiteral, rdf.TermTypeLiteral:
		return true
	case rdf.TermTypeBlankNode, rdf.TermTypeStringLiteral:
		// Only when the value was hashed rather than inlined; the
		// lookup is attempted and absence falls back to inline data.
		return true
	default:
		return false
	}
}
