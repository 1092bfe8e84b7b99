// Package graph defines the triple sink abstraction shared by the
// in-memory graph and the persistent store, plus the serializers that
// write a set of triples out as JSON-LD, Turtle or N-Triples.
package graph

import (
	"fmt"
	"io"

	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
)

// Format identifies a serialization format.
type Format string

const (
	FormatJSONLD   Format = "json-ld"
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "ntriples"

	// DefaultFormat is used when SerializeOptions leaves Format empty.
	DefaultFormat = FormatJSONLD
)

// Sink is the destination for encoded triples. Both MemoryGraph and
// the persistent store satisfy it.
type Sink interface {
	// Add inserts one triple.
	Add(triple *rdf.Triple) error

	// AddMany inserts a batch of triples.
	AddMany(triples []*rdf.Triple) error

	// TriplesWithSubject returns every statement about the given subject.
	TriplesWithSubject(subject rdf.Term) ([]*rdf.Triple, error)

	// All returns every statement in the sink.
	All() ([]*rdf.Triple, error)

	// Serialize writes the sink's contents to w.
	Serialize(w io.Writer, opts SerializeOptions) error
}

// SerializeOptions controls the serializers. The zero value produces
// expanded JSON-LD with two-space indentation.
type SerializeOptions struct {
	Format Format

	// Base is prepended to relative IRIs on output where the format
	// supports it.
	Base string

	// Context maps prefixes to namespace IRIs. Turtle emits it as
	// @prefix directives; JSON-LD includes it as @context.
	Context map[string]string

	// AutoCompact compacts IRIs against Context in JSON-LD output.
	AutoCompact bool

	// UseNativeTypes emits JSON numbers and booleans for the
	// corresponding XSD literals instead of @value objects.
	UseNativeTypes bool

	// UseRDFType keeps rdf:type as an ordinary predicate instead of
	// the @type keyword.
	UseRDFType bool

	// Indent is the number of spaces per JSON-LD indentation level.
	// Zero means two.
	Indent int

	// SortKeys orders subjects deterministically instead of by first
	// appearance.
	SortKeys bool

	// EnsureASCII escapes non-ASCII characters in JSON-LD output.
	EnsureASCII bool
}

func (o SerializeOptions) format() Format {
	if o.Format == "" {
		return DefaultFormat
	}
	return o.Format
}

// Serialize writes triples to w in the requested format.
func Serialize(w io.Writer, triples []*rdf.Triple, opts SerializeOptions) error {
	switch opts.format() {
	case FormatJSONLD:
		return serializeJSONLD(w, triples, opts)
	case FormatTurtle:
		return serializeTurtle(w, triples, opts)
	case FormatNTriples:
		_, err := io.WriteString(w, rdf.SerializeTriplesCanonical(triples))
		return err
	default:
		return fmt.Errorf("unsupported serialization format: %s", opts.Format)
	}
}
