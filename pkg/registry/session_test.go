package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aleksaelezovic/rdfbind/pkg/graph"
	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
)

func newSession(t *testing.T, r *Registry) (*Session, *graph.MemoryGraph) {
	t.Helper()
	sink := graph.NewMemoryGraph()
	s, err := r.CreateSession("test", sink)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return s, sink
}

func subjectCount(t *testing.T, sink *graph.MemoryGraph, id string) int {
	t.Helper()
	triples, err := sink.TriplesWithSubject(rdf.NewNamedNode(id))
	if err != nil {
		t.Fatalf("TriplesWithSubject: %v", err)
	}
	return len(triples)
}

// ===== Session Tests =====

func TestSession_Lifecycle(t *testing.T) {
	r := MustNew()
	s, _ := newSession(t, r)

	if s.Name() != "test" {
		t.Errorf("Unexpected session name %q", s.Name())
	}
	if _, err := r.CreateSession("test", graph.NewMemoryGraph()); !errors.Is(err, ErrIntegrity) {
		t.Error("Expected duplicate session name to be rejected")
	}

	if got := r.GetSession("test"); got != s {
		t.Errorf("GetSession: got %v, want %v", got, s)
	}

	r.RemoveSession("test")
	if got := r.GetSession("test"); got == s {
		t.Error("Expected a fresh session after RemoveSession")
	}
}

func TestGetSession_CreatesOnMiss(t *testing.T) {
	r := MustNew()

	// An unknown name yields a usable session backed by an in-memory sink.
	s := r.GetSession("scratch")
	if s == nil {
		t.Fatal("Expected a session")
	}
	if s.Name() != "scratch" {
		t.Errorf("Unexpected session name %q", s.Name())
	}
	if again := r.GetSession("scratch"); again != s {
		t.Error("Expected the same session on repeated lookups")
	}

	sam := author{ID: "http://example.org/people/sam", Name: "Sam"}
	if err := s.Add(bindAuthor(t, sam)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !s.Contains(sam.ID) {
		t.Error("Expected the created session to accept entities")
	}
}

func TestSession_Add(t *testing.T) {
	r := MustNew()
	s, sink := newSession(t, r)

	sam := author{ID: "http://example.org/people/sam", Name: "Sam"}
	if err := s.Add(bindAuthor(t, sam)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// name plus the closing type statement.
	if n := subjectCount(t, sink, sam.ID); n != 2 {
		t.Errorf("Expected 2 statements, got %d", n)
	}
	if !s.Contains(sam.ID) {
		t.Error("Expected session to remember the entity")
	}

	// The entity lands in the registry as a side effect.
	if _, err := r.GetInstance(exNS+"Author", sam.ID); err != nil {
		t.Errorf("Expected instance registered: %v", err)
	}
}

func TestSession_AddTwiceEmitsOnce(t *testing.T) {
	r := MustNew()
	s, sink := newSession(t, r)

	sam := bindAuthor(t, author{ID: "http://example.org/people/sam", Name: "Sam"})
	if err := s.Add(sam); err != nil {
		t.Fatalf("Add: %v", err)
	}
	before := sink.Len()

	if err := s.Add(sam); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if sink.Len() != before {
		t.Errorf("Expected no new statements, Len went %d to %d", before, sink.Len())
	}
}

func TestSession_TransitiveReferences(t *testing.T) {
	r := MustNew()
	s, sink := newSession(t, r)

	leo := author{ID: "http://example.org/people/leo", Name: "Leo"}
	ann := author{ID: "http://example.org/people/ann", Name: "Ann", Knows: []string{leo.ID}}
	sam := author{ID: "http://example.org/people/sam", Name: "Sam", Knows: []string{ann.ID}}

	if err := r.RegisterInstance(bindAuthor(t, leo)); err != nil {
		t.Fatalf("RegisterInstance: %v", err)
	}
	if err := r.RegisterInstance(bindAuthor(t, ann)); err != nil {
		t.Fatalf("RegisterInstance: %v", err)
	}

	// Adding sam pulls in ann and, through ann, leo.
	if err := s.Add(bindAuthor(t, sam)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	for _, id := range []string{sam.ID, ann.ID, leo.ID} {
		if subjectCount(t, sink, id) == 0 {
			t.Errorf("Expected statements about %s", id)
		}
		if !s.Contains(id) {
			t.Errorf("Expected %s marked as emitted", id)
		}
	}
}

func TestSession_MutualReferencesTerminate(t *testing.T) {
	r := MustNew()
	s, sink := newSession(t, r)

	samID := "http://example.org/people/sam"
	leoID := "http://example.org/people/leo"
	sam := author{ID: samID, Name: "Sam", Knows: []string{leoID}}
	leo := author{ID: leoID, Name: "Leo", Knows: []string{samID}}

	if err := r.RegisterInstance(bindAuthor(t, leo)); err != nil {
		t.Fatalf("RegisterInstance: %v", err)
	}
	if err := s.Add(bindAuthor(t, sam)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// name, knows and type for each of the two.
	if sink.Len() != 6 {
		t.Errorf("Expected 6 statements, got %d", sink.Len())
	}
}

func TestSession_UnregisteredReferenceSkipped(t *testing.T) {
	r := MustNew()
	s, sink := newSession(t, r)

	sam := author{
		ID:    "http://example.org/people/sam",
		Name:  "Sam",
		Knows: []string{"http://dbpedia.org/resource/Ada_Lovelace"},
	}
	if err := s.Add(bindAuthor(t, sam)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// The reference stays a plain identifier object.
	triples, err := sink.TriplesWithSubject(rdf.NewNamedNode(sam.ID))
	if err != nil {
		t.Fatalf("TriplesWithSubject: %v", err)
	}
	if len(triples) != 3 {
		t.Errorf("Expected 3 statements, got %d", len(triples))
	}
	if subjectCount(t, sink, "http://dbpedia.org/resource/Ada_Lovelace") != 0 {
		t.Error("External reference must not be described")
	}
}

func TestSession_AtomicBatch(t *testing.T) {
	r := MustNew()
	s, sink := newSession(t, r)

	valid := bindAuthor(t, author{ID: "http://example.org/people/sam", Name: "Sam"})
	invalid, err := Bind(map[string]any{"id": "http://example.org/people/bad"}, authorSchema(t))
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	if err := s.AddAll([]Entity{valid, invalid}); !errors.Is(err, ErrIntegrity) {
		t.Fatalf("Expected ErrIntegrity, got %v", err)
	}

	if sink.Len() != 0 {
		t.Errorf("Failed batch must not reach the sink, got %d statements", sink.Len())
	}
	if s.Contains(valid.ID()) {
		t.Error("Failed batch must not mark entities as emitted")
	}
}

func TestSession_SerializeUsesRegistryContext(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Context = map[string]string{"ex": exNS}
	r := MustNew(WithConfig(cfg))
	s, _ := newSession(t, r)

	if err := s.Add(bindAuthor(t, author{ID: "http://example.org/people/sam", Name: "Sam"})); err != nil {
		t.Fatalf("Add: %v", err)
	}

	var buf bytes.Buffer
	if err := s.Serialize(&buf, graph.SerializeOptions{}); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, buf.String())
	}
	ctx, ok := doc["@context"].(map[string]any)
	if !ok || ctx["ex"] != exNS {
		t.Errorf("Expected registry context in output, got %v", doc["@context"])
	}
}

func TestBind_Unsupported(t *testing.T) {
	if _, err := Bind(42, authorSchema(t)); err == nil {
		t.Error("Expected error for unsupported record shape")
	}
}
