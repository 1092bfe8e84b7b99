package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
)

// serializeJSONLD writes triples as a JSON-LD document: one node object
// per subject, @type for rdf:type unless UseRDFType is set, @value
// objects for typed literals. A single subject serializes as one node
// object; multiple subjects go under @graph.
func serializeJSONLD(w io.Writer, triples []*rdf.Triple, opts SerializeOptions) error {
	order, bySubject := groupBySubject(triples)
	if opts.SortKeys {
		sort.Strings(order)
	}

	nodes := make([]map[string]any, 0, len(order))
	for _, subj := range order {
		node, err := buildNode(subj, bySubject[subj], opts)
		if err != nil {
			return err
		}
		nodes = append(nodes, node)
	}

	var doc any
	switch {
	case len(nodes) == 1 && len(opts.Context) == 0:
		doc = nodes[0]
	case len(nodes) == 1:
		nodes[0]["@context"] = contextObject(opts)
		doc = nodes[0]
	case len(opts.Context) > 0:
		doc = map[string]any{"@context": contextObject(opts), "@graph": nodes}
	default:
		doc = map[string]any{"@graph": nodes}
	}

	indent := opts.Indent
	if indent == 0 {
		indent = 2
	}
	data, err := json.MarshalIndent(doc, "", strings.Repeat(" ", indent))
	if err != nil {
		return err
	}
	if opts.EnsureASCII {
		data = escapeNonASCII(data)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func contextObject(opts SerializeOptions) map[string]any {
	ctx := make(map[string]any, len(opts.Context)+1)
	for prefix, ns := range opts.Context {
		ctx[prefix] = ns
	}
	if opts.Base != "" {
		ctx["@base"] = opts.Base
	}
	return ctx
}

// groupBySubject preserves first-appearance order of subjects.
func groupBySubject(triples []*rdf.Triple) ([]string, map[string][]*rdf.Triple) {
	var order []string
	bySubject := make(map[string][]*rdf.Triple)
	for _, t := range triples {
		key, err := rdf.RefString(t.Subject)
		if err != nil {
			continue
		}
		if _, ok := bySubject[key]; !ok {
			order = append(order, key)
		}
		bySubject[key] = append(bySubject[key], t)
	}
	return order, bySubject
}

func buildNode(subject string, triples []*rdf.Triple, opts SerializeOptions) (map[string]any, error) {
	node := map[string]any{"@id": compactIRI(subject, opts)}

	for _, t := range triples {
		pred, ok := t.Predicate.(*rdf.NamedNode)
		if !ok {
			return nil, fmt.Errorf("predicate %s is not an IRI", t.Predicate)
		}

		key := compactIRI(pred.IRI, opts)
		if pred.Equals(rdf.RDFType) && !opts.UseRDFType {
			key = "@type"
		}

		value, err := objectValue(t.Object, key == "@type", opts)
		if err != nil {
			return nil, err
		}
		appendNodeValue(node, key, value)
	}
	return node, nil
}

// appendNodeValue keeps single values scalar and promotes to an array
// on the second value.
func appendNodeValue(node map[string]any, key string, value any) {
	existing, ok := node[key]
	if !ok {
		node[key] = value
		return
	}
	if arr, ok := existing.([]any); ok {
		node[key] = append(arr, value)
		return
	}
	node[key] = []any{existing, value}
}

func objectValue(object rdf.Term, asType bool, opts SerializeOptions) (any, error) {
	switch o := object.(type) {
	case *rdf.NamedNode:
		iri := compactIRI(o.IRI, opts)
		if asType {
			return iri, nil
		}
		return map[string]any{"@id": iri}, nil
	case *rdf.BlankNode:
		id := "_:" + o.ID
		if asType {
			return id, nil
		}
		return map[string]any{"@id": id}, nil
	case *rdf.Literal:
		return literalValue(o, opts)
	default:
		return nil, fmt.Errorf("unsupported object term %s", object)
	}
}

func literalValue(lit *rdf.Literal, opts SerializeOptions) (any, error) {
	if lit.Language != "" {
		return map[string]any{"@value": lit.Value, "@language": lit.Language}, nil
	}
	if lit.Datatype == nil || lit.Datatype.Equals(rdf.XSDString) {
		return lit.Value, nil
	}

	if opts.UseNativeTypes {
		switch lit.Datatype.IRI {
		case rdf.XSDBoolean.IRI:
			if b, err := strconv.ParseBool(lit.Value); err == nil {
				return b, nil
			}
		case rdf.XSDInteger.IRI, rdf.XSDInt.IRI, rdf.XSDLong.IRI, rdf.XSDShort.IRI,
			rdf.XSDNegativeInteger.IRI, rdf.XSDNonNegativeInteger.IRI,
			rdf.XSDNonPositiveInteger.IRI, rdf.XSDPositiveInteger.IRI:
			if n, err := strconv.ParseInt(lit.Value, 10, 64); err == nil {
				return n, nil
			}
		case rdf.XSDDouble.IRI, rdf.XSDFloat.IRI, rdf.XSDDecimal.IRI:
			if f, err := strconv.ParseFloat(lit.Value, 64); err == nil {
				return f, nil
			}
		}
	}

	return map[string]any{
		"@value": lit.Value,
		"@type":  compactIRI(lit.Datatype.IRI, opts),
	}, nil
}

// compactIRI rewrites a full IRI as prefix:localName against the
// serialization context.
func compactIRI(iri string, opts SerializeOptions) string {
	if !opts.AutoCompact {
		return iri
	}
	for _, prefix := range sortedPrefixes(opts.Context) {
		if local, ok := strings.CutPrefix(iri, opts.Context[prefix]); ok && local != "" {
			return prefix + ":" + local
		}
	}
	if opts.Base != "" {
		if local, ok := strings.CutPrefix(iri, opts.Base); ok && local != "" {
			return local
		}
	}
	return iri
}

func sortedPrefixes(context map[string]string) []string {
	prefixes := make([]string, 0, len(context))
	for p := range context {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	return prefixes
}

// escapeNonASCII rewrites runes above 0x7F as \uXXXX escapes, using
// surrogate pairs outside the BMP.
func escapeNonASCII(data []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(data))
	for _, r := range string(data) {
		if r < 0x80 {
			buf.WriteRune(r)
			continue
		}
		if r > 0xFFFF {
			r -= 0x10000
			fmt.Fprintf(&buf, `\u%04X\u%04X`, 0xD800+(r>>10), 0xDC00+(r&0x3FF))
			continue
		}
		fmt.Fprintf(&buf, `\u%04X`, r)
	}
	return buf.Bytes()
}
