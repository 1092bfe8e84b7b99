package codec

import (
	"errors"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
	"github.com/aleksaelezovic/rdfbind/pkg/schema"
)

const foafNS = "http://xmlns.com/foaf/0.1/"

type person struct {
	ID        string   `rdf:"id"`
	FirstName string   `rdf:"firstName"`
	LastName  string   `rdf:"lastName"`
	Knows     []string `rdf:"knows,resource=Person,optional"`
	Mbox      *string  `rdf:"mbox"`
}

func personSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Derive(rdf.NewNamedNode(foafNS+"Person"), foafNS, person{})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	return s
}

func mustRecord(t *testing.T, v any) schema.Record {
	t.Helper()
	rec, err := schema.AsRecord(v)
	if err != nil {
		t.Fatalf("AsRecord: %v", err)
	}
	return rec
}

func findObjects(triples []*rdf.Triple, predicate string) []rdf.Term {
	var out []rdf.Term
	for _, t := range triples {
		if t.Predicate.Equals(rdf.NewNamedNode(predicate)) {
			out = append(out, t.Object)
		}
	}
	return out
}

// ===== Encode Tests =====

func TestEncode_Person(t *testing.T) {
	mbox := "mailto:sam@example.org"
	sam := person{
		ID:        "http://example.org/sam",
		FirstName: "Sam",
		LastName:  "Little",
		Knows:     []string{"http://example.org/leo", "_:anon1"},
		Mbox:      &mbox,
	}

	triples, err := Encode(mustRecord(t, sam), personSchema(t))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// firstName, lastName, two knows, mbox, plus rdf:type.
	if len(triples) != 6 {
		t.Fatalf("Expected 6 triples, got %d", len(triples))
	}

	subject := rdf.NewNamedNode("http://example.org/sam")
	for _, tr := range triples {
		if !tr.Subject.Equals(subject) {
			t.Errorf("Expected subject %s, got %s", subject, tr.Subject)
		}
	}

	names := findObjects(triples, foafNS+"firstName")
	if len(names) != 1 || !names[0].Equals(rdf.NewLiteralWithDatatype("Sam", rdf.XSDString)) {
		t.Errorf("Unexpected firstName objects: %v", names)
	}

	knows := findObjects(triples, foafNS+"knows")
	if len(knows) != 2 {
		t.Fatalf("Expected 2 knows statements, got %d", len(knows))
	}
	if !knows[0].Equals(rdf.NewNamedNode("http://example.org/leo")) {
		t.Errorf("Expected IRI reference, got %s", knows[0])
	}
	if !knows[1].Equals(rdf.NewBlankNode("anon1")) {
		t.Errorf("Expected blank node reference, got %s", knows[1])
	}

	types := findObjects(triples, rdf.RDFType.IRI)
	if len(types) != 1 || !types[0].Equals(rdf.NewNamedNode(foafNS+"Person")) {
		t.Errorf("Expected closing type statement, got %v", types)
	}
}

func TestEncode_SkipsAbsentValues(t *testing.T) {
	sam := person{ID: "_:b1", FirstName: "Sam", LastName: "Little"}

	triples, err := Encode(mustRecord(t, sam), personSchema(t))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// No mbox, no knows: two names plus rdf:type.
	if len(triples) != 3 {
		t.Fatalf("Expected 3 triples, got %d", len(triples))
	}
	if len(findObjects(triples, foafNS+"mbox")) != 0 {
		t.Error("Expected nil mbox to emit nothing")
	}
}

func TestEncode_EmptyIDMintsFreshSubject(t *testing.T) {
	sch := personSchema(t)
	sam := map[string]any{"firstName": "Sam", "lastName": "Little"}

	a, err := Encode(mustRecord(t, sam), sch)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := Encode(mustRecord(t, sam), sch)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if _, ok := a[0].Subject.(*rdf.BlankNode); !ok {
		t.Fatalf("Expected anonymous subject, got %T", a[0].Subject)
	}
	if a[0].Subject.Equals(b[0].Subject) {
		t.Error("Expected fresh anonymous subject per encode")
	}
}

func TestEncode_ContainerInNonRepeatField(t *testing.T) {
	sch := personSchema(t)
	bad := map[string]any{"id": "_:b1", "firstName": []string{"Sam", "Max"}, "lastName": "Little"}

	_, err := Encode(mustRecord(t, bad), sch)
	if !errors.Is(err, schema.ErrAnnotation) {
		t.Errorf("Expected annotation error for container in scalar field, got %v", err)
	}
}

func TestEncode_SingleValueIntoRepeatField(t *testing.T) {
	sch := personSchema(t)
	rec := map[string]any{"id": "_:b1", "firstName": "Sam", "lastName": "Little",
		"knows": "http://example.org/leo"}

	triples, err := Encode(mustRecord(t, rec), sch)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	knows := findObjects(triples, foafNS+"knows")
	if len(knows) != 1 || !knows[0].Equals(rdf.NewNamedNode("http://example.org/leo")) {
		t.Errorf("Expected single wrapped reference, got %v", knows)
	}
}

func TestEncode_TemporalRange(t *testing.T) {
	type event struct {
		ID   string    `rdf:"id"`
		Day  time.Time `rdf:"day,range=date"`
		Took time.Duration
	}
	sch, err := schema.Derive(rdf.NewNamedNode("http://example.org/Event"), "http://example.org/", event{})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}

	e := event{ID: "_:e1", Day: time.Date(2022, 6, 1, 10, 0, 0, 0, time.UTC), Took: 90 * time.Minute}
	triples, err := Encode(mustRecord(t, e), sch)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	days := findObjects(triples, "http://example.org/day")
	if len(days) != 1 || !days[0].Equals(rdf.NewLiteralWithDatatype("2022-06-01", rdf.XSDDate)) {
		t.Errorf("Unexpected day literal: %v", days)
	}
	tooks := findObjects(triples, "http://example.org/took")
	if len(tooks) != 1 || !tooks[0].Equals(rdf.NewLiteralWithDatatype("PT1H30M", rdf.XSDDuration)) {
		t.Errorf("Unexpected took literal: %v", tooks)
	}
}

// ===== Decode Tests =====

func TestDecode_RoundTrip(t *testing.T) {
	sch := personSchema(t)
	mbox := "mailto:sam@example.org"
	sam := person{
		ID:        "http://example.org/sam",
		FirstName: "Sam",
		LastName:  "Little",
		Knows:     []string{"http://example.org/leo"},
		Mbox:      &mbox,
	}

	triples, err := Encode(mustRecord(t, sam), sch)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var got person
	if err := Decode(triples, rdf.NewNamedNode(sam.ID), sch, &got); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !reflect.DeepEqual(got, sam) {
		t.Errorf("Round trip mismatch:\nwant %+v\ngot  %+v", sam, got)
	}
}

func TestDecodeSubject_FieldMap(t *testing.T) {
	sch := personSchema(t)
	triples := []*rdf.Triple{
		rdf.NewTriple(rdf.NewNamedNode("http://e/sam"), rdf.NewNamedNode(foafNS+"firstName"), rdf.NewLiteral("Sam")),
		rdf.NewTriple(rdf.NewNamedNode("http://e/sam"), rdf.NewNamedNode(foafNS+"lastName"), rdf.NewLiteral("Little")),
		rdf.NewTriple(rdf.NewNamedNode("http://e/sam"), rdf.NewNamedNode(foafNS+"knows"), rdf.NewNamedNode("http://e/leo")),
		rdf.NewTriple(rdf.NewNamedNode("http://e/sam"), rdf.RDFType, rdf.NewNamedNode(foafNS+"Person")),
		rdf.NewTriple(rdf.NewNamedNode("http://e/leo"), rdf.NewNamedNode(foafNS+"firstName"), rdf.NewLiteral("Leo")),
	}

	values, err := DecodeSubject(triples, rdf.NewNamedNode("http://e/sam"), sch)
	if err != nil {
		t.Fatalf("DecodeSubject: %v", err)
	}

	if values["id"] != "http://e/sam" {
		t.Errorf("Expected subject identifier under id, got %v", values["id"])
	}
	if values["firstName"] != "Sam" {
		t.Errorf("Expected Sam, got %v", values["firstName"])
	}
	knows, _ := values["knows"].([]any)
	if len(knows) != 1 || knows[0] != "http://e/leo" {
		t.Errorf("Expected repeated field as slice, got %v", values["knows"])
	}
	if _, ok := values["lastName"]; !ok {
		t.Error("Expected lastName present")
	}
}

func TestDecodeSubject_NoStatements(t *testing.T) {
	sch := personSchema(t)
	_, err := DecodeSubject(nil, rdf.NewNamedNode("http://e/ghost"), sch)
	if !errors.Is(err, ErrNoStatements) {
		t.Errorf("Expected ErrNoStatements, got %v", err)
	}
}

func TestDecodeSubject_UnknownPredicate(t *testing.T) {
	sch := personSchema(t)
	triples := []*rdf.Triple{
		rdf.NewTriple(rdf.NewNamedNode("http://e/sam"), rdf.NewNamedNode("http://e/unmapped"), rdf.NewLiteral("x")),
	}
	_, err := DecodeSubject(triples, rdf.NewNamedNode("http://e/sam"), sch)
	if !errors.Is(err, schema.ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestDecodeSubject_CardinalityViolation(t *testing.T) {
	sch := personSchema(t)
	subject := rdf.NewNamedNode("http://e/sam")
	triples := []*rdf.Triple{
		rdf.NewTriple(subject, rdf.NewNamedNode(foafNS+"firstName"), rdf.NewLiteral("Sam")),
		rdf.NewTriple(subject, rdf.NewNamedNode(foafNS+"firstName"), rdf.NewLiteral("Max")),
	}
	_, err := DecodeSubject(triples, subject, sch)
	if !errors.Is(err, schema.ErrAnnotation) {
		t.Errorf("Expected annotation error for repeated scalar, got %v", err)
	}
}

func TestDecodeSubject_RetypesPlainLiterals(t *testing.T) {
	type event struct {
		ID  string    `rdf:"id"`
		Day time.Time `rdf:"day,range=date"`
	}
	sch, err := schema.Derive(rdf.NewNamedNode("http://e/Event"), "http://e/", event{})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}

	subject := rdf.NewNamedNode("http://e/e1")
	triples := []*rdf.Triple{
		rdf.NewTriple(subject, rdf.NewNamedNode("http://e/day"), rdf.NewLiteral("2022-06-01")),
	}

	values, err := DecodeSubject(triples, subject, sch)
	if err != nil {
		t.Fatalf("DecodeSubject: %v", err)
	}
	day, ok := values["day"].(time.Time)
	if !ok || !day.Equal(time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected plain literal reinterpreted under field range, got %v", values["day"])
	}
}

// ===== Builtin Map Tests =====

func TestEncodeToMap(t *testing.T) {
	sch := personSchema(t)
	sam := person{
		ID:        "http://e/sam",
		FirstName: "Sam",
		LastName:  "Little",
		Knows:     []string{"http://e/leo", "http://e/ann"},
	}

	out, err := EncodeToMap(mustRecord(t, sam), sch)
	if err != nil {
		t.Fatalf("EncodeToMap: %v", err)
	}

	if out["id"] != "http://e/sam" || out["firstName"] != "Sam" {
		t.Errorf("Unexpected map: %v", out)
	}
	knows, _ := out["knows"].([]any)
	got := make([]string, 0, len(knows))
	for _, k := range knows {
		got = append(got, k.(string))
	}
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"http://e/ann", "http://e/leo"}) {
		t.Errorf("Unexpected knows: %v", got)
	}
	if _, ok := out["mbox"]; ok {
		t.Error("Expected absent mbox to be omitted")
	}
}

func TestEncodeToMap_TemporalLexical(t *testing.T) {
	type event struct {
		ID  string    `rdf:"id"`
		Day time.Time `rdf:"day,range=date"`
	}
	sch, err := schema.Derive(rdf.NewNamedNode("http://e/Event"), "http://e/", event{})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}

	out, err := EncodeToMap(mustRecord(t, event{ID: "_:e", Day: time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)}), sch)
	if err != nil {
		t.Fatalf("EncodeToMap: %v", err)
	}
	if out["day"] != "2022-06-01" {
		t.Errorf("Expected lexical date, got %v", out["day"])
	}
}
