package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
)

// serializeTurtle writes triples in Turtle syntax: @prefix directives
// from the context, statements grouped by subject with ; between
// predicates and , between objects, and the keyword a for rdf:type.
func serializeTurtle(w io.Writer, triples []*rdf.Triple, opts SerializeOptions) error {
	var b strings.Builder

	if opts.Base != "" {
		fmt.Fprintf(&b, "@base <%s> .\n", opts.Base)
	}
	for _, prefix := range sortedPrefixes(opts.Context) {
		fmt.Fprintf(&b, "@prefix %s: <%s> .\n", prefix, opts.Context[prefix])
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
	}

	order, bySubject := groupBySubject(triples)
	for i, subj := range order {
		if i > 0 {
			b.WriteByte('\n')
		}
		if err := writeSubjectBlock(&b, bySubject[subj], opts); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSubjectBlock(b *strings.Builder, triples []*rdf.Triple, opts SerializeOptions) error {
	// Group objects under their predicate, preserving order.
	var predOrder []string
	objects := make(map[string][]string)
	for _, t := range triples {
		pred, ok := t.Predicate.(*rdf.NamedNode)
		if !ok {
			return fmt.Errorf("predicate %s is not an IRI", t.Predicate)
		}
		key := turtleTerm(pred, opts)
		if pred.Equals(rdf.RDFType) {
			key = "a"
		}
		if _, seen := objects[key]; !seen {
			predOrder = append(predOrder, key)
		}
		objects[key] = append(objects[key], turtleTerm(t.Object, opts))
	}

	b.WriteString(turtleTerm(triples[0].Subject, opts))
	for i, pred := range predOrder {
		if i == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteString(" ;\n    ")
		}
		b.WriteString(pred)
		b.WriteByte(' ')
		b.WriteString(strings.Join(objects[pred], ", "))
	}
	b.WriteString(" .\n")
	return nil
}

// turtleTerm serializes a term for Turtle output, compacting IRIs
// against the prefix context where a local name is legal.
func turtleTerm(term rdf.Term, opts SerializeOptions) string {
	if n, ok := term.(*rdf.NamedNode); ok {
		for _, prefix := range sortedPrefixes(opts.Context) {
			local, ok := strings.CutPrefix(n.IRI, opts.Context[prefix])
			if ok && isLocalName(local) {
				return prefix + ":" + local
			}
		}
	}
	return rdf.SerializeTermCanonical(term)
}

func isLocalName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
