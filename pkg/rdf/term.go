package rdf

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// TermType represents the type of an RDF term
type TermType byte

const (
	// Core RDF types
	TermTypeNamedNode TermType = iota + 1
	TermTypeBlankNode
	TermTypeLiteral

	// Literal subtypes (used by the binary term encoder)
	TermTypeStringLiteral
	TermTypeLangStringLiteral
	TermTypeIntegerLiteral
	TermTypeFloatLiteral
	TermTypeBooleanLiteral
	TermTypeDateTimeLiteral
	TermTypeDateLiteral
	TermTypeTimeLiteral
	TermTypeDurationLiteral
	TermTypeBytesLiteral
)

// Term represents an RDF term (IRI, blank node, or literal)
type Term interface {
	Type() TermType
	String() string
	Equals(other Term) bool
}

// NamedNode represents an IRI
type NamedNode struct {
	IRI string
}

func NewNamedNode(iri string) *NamedNode {
	return &NamedNode{IRI: iri}
}

func (n *NamedNode) Type() TermType {
	return TermTypeNamedNode
}

func (n *NamedNode) String() string {
	return fmt.Sprintf("<%s>", n.IRI)
}

func (n *NamedNode) Equals(other Term) bool {
	if on, ok := other.(*NamedNode); ok {
		return n.IRI == on.IRI
	}
	return false
}

// BlankNode represents an anonymous node. Generated IDs are uuid-based,
// stable per record and never reused across records.
type BlankNode struct {
	ID string
}

func NewBlankNode(id string) *BlankNode {
	return &BlankNode{ID: id}
}

// NewAnonBlankNode generates a fresh blank node with a uuid local name.
func NewAnonBlankNode() *BlankNode {
	return &BlankNode{ID: uuid.NewString()}
}

func (b *BlankNode) Type() TermType {
	return TermTypeBlankNode
}

func (b *BlankNode) String() string {
	return fmt.Sprintf("_:%s", b.ID)
}

func (b *BlankNode) Equals(other Term) bool {
	if ob, ok := other.(*BlankNode); ok {
		return b.ID == ob.ID
	}
	return false
}

// MakeRef builds an identifier term from its string form:
//   - empty string: a fresh anonymous blank node
//   - "_:name": a blank node with local name "name"
//   - anything else: a named node with the string as IRI
func MakeRef(identifier string) Term {
	if identifier == "" {
		return NewAnonBlankNode()
	}
	if rest, ok := strings.CutPrefix(identifier, "_:"); ok {
		return NewBlankNode(rest)
	}
	return NewNamedNode(identifier)
}

// NewAnonID returns the string form of a fresh anonymous identifier,
// suitable as a default record ID.
func NewAnonID() string {
	return "_:" + uuid.NewString()
}

// RefString is the inverse of MakeRef: the string form of an identifier term.
func RefString(term Term) (string, error) {
	switch t := term.(type) {
	case *NamedNode:
		return t.IRI, nil
	case *BlankNode:
		return "_:" + t.ID, nil
	default:
		return "", fmt.Errorf("term %s is not an identifier", term)
	}
}

// Literal represents an RDF literal: a lexical form plus an optional
// language tag or datatype IRI.
type Literal struct {
	Value    string
	Language string     // for language-tagged strings
	Datatype *NamedNode // for typed literals
}

func NewLiteral(value string) *Literal {
	return &Literal{Value: value}
}

func NewLiteralWithLanguage(value, language string) *Literal {
	return &Literal{Value: value, Language: language}
}

func NewLiteralWithDatatype(value string, datatype *NamedNode) *Literal {
	return &Literal{Value: value, Datatype: datatype}
}

func (l *Literal) Type() TermType {
	return TermTypeLiteral
}

func (l *Literal) String() string {
	result := fmt.Sprintf(`"%s"`, l.Value)
	if l.Language != "" {
		result += "@" + l.Language
	} else if l.Datatype != nil {
		result += "^^" + l.Datatype.String()
	}
	return result
}

func (l *Literal) Equals(other Term) bool {
	if ol, ok := other.(*Literal); ok {
		if l.Value != ol.Value {
			return false
		}
		if l.Language != ol.Language {
			return false
		}
		if l.Datatype == nil && ol.Datatype == nil {
			return true
		}
		if l.Datatype != nil && ol.Datatype != nil {
			return l.Datatype.Equals(ol.Datatype)
		}
		return false
	}
	return false
}

// Triple represents an RDF triple (subject, predicate, object)
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

func NewTriple(subject, predicate, object Term) *Triple {
	return &Triple{
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
	}
}

func (t *Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.Subject, t.Predicate, t.Object)
}

func (t *Triple) Equals(other *Triple) bool {
	if other == nil {
		return false
	}
	return t.Subject.Equals(other.Subject) &&
		t.Predicate.Equals(other.Predicate) &&
		t.Object.Equals(other.Object)
}

// Well-known vocabulary terms
var (
	RDFType = NewNamedNode("http://www.w3.org/1999/02/22-rdf-syntax-ns#type")

	XSDString             = NewNamedNode("http://www.w3.org/2001/XMLSchema#string")
	XSDInteger            = NewNamedNode("http://www.w3.org/2001/XMLSchema#integer")
	XSDInt                = NewNamedNode("http://www.w3.org/2001/XMLSchema#int")
	XSDLong               = NewNamedNode("http://www.w3.org/2001/XMLSchema#long")
	XSDShort              = NewNamedNode("http://www.w3.org/2001/XMLSchema#short")
	XSDDecimal            = NewNamedNode("http://www.w3.org/2001/XMLSchema#decimal")
	XSDDouble             = NewNamedNode("http://www.w3.org/2001/XMLSchema#double")
	XSDFloat              = NewNamedNode("http://www.w3.org/2001/XMLSchema#float")
	XSDBoolean            = NewNamedNode("http://www.w3.org/2001/XMLSchema#boolean")
	XSDDateTime           = NewNamedNode("http://www.w3.org/2001/XMLSchema#dateTime")
	XSDDateTimeStamp      = NewNamedNode("http://www.w3.org/2001/XMLSchema#dateTimeStamp")
	XSDDate               = NewNamedNode("http://www.w3.org/2001/XMLSchema#date")
	XSDTime               = NewNamedNode("http://www.w3.org/2001/XMLSchema#time")
	XSDDuration           = NewNamedNode("http://www.w3.org/2001/XMLSchema#duration")
	XSDByte               = NewNamedNode("http://www.w3.org/2001/XMLSchema#byte")
	XSDBase64Binary       = NewNamedNode("http://www.w3.org/2001/XMLSchema#base64Binary")
	XSDIDREF              = NewNamedNode("http://www.w3.org/2001/XMLSchema#IDREF")
	XSDNegativeInteger    = NewNamedNode("http://www.w3.org/2001/XMLSchema#negativeInteger")
	XSDNonNegativeInteger = NewNamedNode("http://www.w3.org/2001/XMLSchema#nonNegativeInteger")
	XSDNonPositiveInteger = NewNamedNode("http://www.w3.org/2001/XMLSchema#nonPositiveInteger")
	XSDPositiveInteger    = NewNamedNode("http://www.w3.org/2001/XMLSchema#positiveInteger")
)
