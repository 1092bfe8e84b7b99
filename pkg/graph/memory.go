package graph

import (
	"io"
	"strings"
	"sync"

	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
)

// MemoryGraph is an in-memory triple sink with set semantics: adding
// the same statement twice keeps a single copy. Safe for concurrent use.
type MemoryGraph struct {
	mu        sync.RWMutex
	triples   []*rdf.Triple
	seen      map[string]struct{}
	bySubject map[string][]int
}

// NewMemoryGraph creates an empty in-memory graph.
func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{
		seen:      make(map[string]struct{}),
		bySubject: make(map[string][]int),
	}
}

func (g *MemoryGraph) Add(triple *rdf.Triple) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.add(triple)
	return nil
}

func (g *MemoryGraph) AddMany(triples []*rdf.Triple) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range triples {
		g.add(t)
	}
	return nil
}

func (g *MemoryGraph) add(triple *rdf.Triple) {
	key := tripleKey(triple)
	if _, ok := g.seen[key]; ok {
		return
	}
	g.seen[key] = struct{}{}
	subj := rdf.SerializeTermCanonical(triple.Subject)
	g.bySubject[subj] = append(g.bySubject[subj], len(g.triples))
	g.triples = append(g.triples, triple)
}

func (g *MemoryGraph) TriplesWithSubject(subject rdf.Term) ([]*rdf.Triple, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	indexes := g.bySubject[rdf.SerializeTermCanonical(subject)]
	out := make([]*rdf.Triple, 0, len(indexes))
	for _, i := range indexes {
		out = append(out, g.triples[i])
	}
	return out, nil
}

func (g *MemoryGraph) All() ([]*rdf.Triple, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*rdf.Triple, len(g.triples))
	copy(out, g.triples)
	return out, nil
}

// Len returns the number of distinct statements.
func (g *MemoryGraph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.triples)
}

func (g *MemoryGraph) Serialize(w io.Writer, opts SerializeOptions) error {
	triples, _ := g.All()
	return Serialize(w, triples, opts)
}

// Parse reads N-Triples input into the graph.
func (g *MemoryGraph) Parse(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	triples, err := rdf.NewNTriplesParser(string(data)).Parse()
	if err != nil {
		return err
	}
	return g.AddMany(triples)
}

func tripleKey(t *rdf.Triple) string {
	var b strings.Builder
	b.WriteString(rdf.SerializeTermCanonical(t.Subject))
	b.WriteByte(' ')
	b.WriteString(rdf.SerializeTermCanonical(t.Predicate))
	b.WriteByte(' ')
	b.WriteString(rdf.SerializeTermCanonical(t.Object))
	return b.String()
}
