package rdf

import (
	"fmt"
	"strings"
)

// SerializeTriplesCanonical serializes triples to canonical N-Triples
// form (escape sequences, whitespace). Canonical form specifies
// representation, not ordering: input order is preserved.
func SerializeTriplesCanonical(triples []*Triple) string {
	if len(triples) == 0 {
		return ""
	}

	var builder strings.Builder
	for _, triple := range triples {
		builder.WriteString(SerializeTermCanonical(triple.Subject))
		builder.WriteString(" ")
		builder.WriteString(SerializeTermCanonical(triple.Predicate))
		builder.WriteString(" ")
		builder.WriteString(SerializeTermCanonical(triple.Object))
		builder.WriteString(" .\n")
	}

	return builder.String()
}

// SerializeTermCanonical serializes a single RDF term in canonical format
func SerializeTermCanonical(term Term) string {
	switch t := term.(type) {
	case *NamedNode:
		return fmt.Sprintf("<%s>", t.IRI)
	case *BlankNode:
		return fmt.Sprintf("_:%s", t.ID)
	case *Literal:
		return serializeLiteralCanonical(t)
	default:
		return ""
	}
}

func serializeLiteralCanonical(lit *Literal) string {
	escaped := escapeStringCanonical(lit.Value)

	if lit.Language != "" {
		return fmt.Sprintf(`"%s"@%s`, escaped, strings.ToLower(lit.Language))
	}

	if lit.Datatype != nil {
		// xsd:string is the default datatype and is omitted
		if lit.Datatype.IRI != XSDString.IRI {
			return fmt.Sprintf(`"%s"^^<%s>`, escaped, lit.Datatype.IRI)
		}
	}

	return fmt.Sprintf(`"%s"`, escaped)
}

// escapeStringCanonical escapes a string value for canonical
// N-Triples output: named escapes \t \b \n \r \f \" \\ and \uXXXX for
// control characters and noncharacters.
func escapeStringCanonical(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\t':
			builder.WriteString(`\t`)
		case '\b':
			builder.WriteString(`\b`)
		case '\n':
			builder.WriteString(`\n`)
		case '\r':
			builder.WriteString(`\r`)
		case '\f':
			builder.WriteString(`\f`)
		case '"':
			builder.WriteString(`\"`)
		case '\\':
			builder.WriteString(`\\`)
		default:
			if r < 0x20 || r == 0x7F || (r >= 0xFFFE && r <= 0xFFFF) {
				builder.WriteString(fmt.Sprintf(`\u%04X`, r))
			} else {
				builder.WriteRune(r)
			}
		}
	}

	return builder.String()
}
