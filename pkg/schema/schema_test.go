package schema

import (
	"errors"
	"reflect"
	"testing"

	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
)

const foafNS = "http://xmlns.com/foaf/0.1/"

func personSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := Define(rdf.NewNamedNode(foafNS+"Person"),
		Field{Name: "firstName", Info: FieldInfo{Ref: rdf.NewNamedNode(foafNS + "firstName"), Range: rdf.XSDString, Required: true}},
		Field{Name: "lastName", Info: FieldInfo{Ref: rdf.NewNamedNode(foafNS + "lastName"), Range: rdf.XSDString, Required: true}},
		Field{Name: "knows", Info: FieldInfo{Ref: rdf.NewNamedNode(foafNS + "knows"), ResourceRef: rdf.NewNamedNode(foafNS + "Person"), Repeat: true}},
		Field{Name: "mbox", Info: FieldInfo{Ref: rdf.NewNamedNode(foafNS + "mbox"), Range: rdf.XSDString}},
	)
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	return s
}

// ===== Define Tests =====

func TestDefine_PreservesOrder(t *testing.T) {
	s := personSchema(t)
	expected := []string{"firstName", "lastName", "knows", "mbox"}
	if !reflect.DeepEqual(s.Names(), expected) {
		t.Errorf("Expected %v, got %v", expected, s.Names())
	}
}

func TestDefine_Errors(t *testing.T) {
	ref := rdf.NewNamedNode(foafNS + "name")

	if _, err := Define(nil); !errors.Is(err, ErrAnnotation) {
		t.Errorf("Expected annotation error for nil resource, got %v", err)
	}

	_, err := Define(rdf.NewNamedNode(foafNS+"Person"),
		Field{Name: "", Info: FieldInfo{Ref: ref}})
	if !errors.Is(err, ErrAnnotation) {
		t.Errorf("Expected annotation error for empty field name, got %v", err)
	}

	_, err = Define(rdf.NewNamedNode(foafNS+"Person"),
		Field{Name: "name", Info: FieldInfo{}})
	if !errors.Is(err, ErrAnnotation) {
		t.Errorf("Expected annotation error for missing ref, got %v", err)
	}

	_, err = Define(rdf.NewNamedNode(foafNS+"Person"),
		Field{Name: "name", Info: FieldInfo{Ref: ref}},
		Field{Name: "name", Info: FieldInfo{Ref: ref}})
	if !errors.Is(err, ErrAnnotation) {
		t.Errorf("Expected annotation error for duplicate field, got %v", err)
	}
}

func TestDefine_ReferenceRangeForcedToIDREF(t *testing.T) {
	s, err := Define(rdf.NewNamedNode(foafNS+"Person"),
		Field{Name: "knows", Info: FieldInfo{
			Ref:         rdf.NewNamedNode(foafNS + "knows"),
			ResourceRef: rdf.NewNamedNode(foafNS + "Person"),
		}})
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	info, _ := s.Info("knows")
	if !info.Range.Equals(rdf.XSDIDREF) {
		t.Errorf("Expected IDREF range, got %s", info.Range)
	}
}

func TestDefine_ReferenceWithLiteralRangeRejected(t *testing.T) {
	_, err := Define(rdf.NewNamedNode(foafNS+"Person"),
		Field{Name: "knows", Info: FieldInfo{
			Ref:         rdf.NewNamedNode(foafNS + "knows"),
			ResourceRef: rdf.NewNamedNode(foafNS + "Person"),
			Range:       rdf.XSDString,
		}})
	if !errors.Is(err, ErrAnnotation) {
		t.Errorf("Expected annotation error, got %v", err)
	}
}

// ===== Derived View Tests =====

func TestSchema_Fields(t *testing.T) {
	s := personSchema(t)
	if !s.Fields().Equal(NewFieldSet("firstName", "lastName", "knows", "mbox")) {
		t.Errorf("Unexpected field set: %v", s.Fields().Names())
	}
	if !s.RequiredFields().Equal(NewFieldSet("firstName", "lastName")) {
		t.Errorf("Unexpected required set: %v", s.RequiredFields().Names())
	}
}

func TestSchema_RefMapping(t *testing.T) {
	s := personSchema(t)
	mapping := s.RefMapping()
	if mapping[foafNS+"firstName"] != "firstName" {
		t.Errorf("Unexpected mapping: %v", mapping)
	}
	if len(mapping) != s.Len() {
		t.Errorf("Expected %d entries, got %d", s.Len(), len(mapping))
	}
}

func TestSchema_Equal(t *testing.T) {
	a := personSchema(t)
	b := personSchema(t)
	if !a.Equal(b) {
		t.Error("Expected structurally identical schemas to be equal")
	}

	c, _ := Define(a.Resource(),
		Field{Name: "firstName", Info: FieldInfo{Ref: rdf.NewNamedNode(foafNS + "firstName"), Range: rdf.XSDString}})
	if a.Equal(c) {
		t.Error("Expected differing schemas to not be equal")
	}
	if a.Equal(nil) {
		t.Error("Expected nil to not be equal")
	}
}

// ===== FieldSet Tests =====

func TestFieldSet_Diff(t *testing.T) {
	a := NewFieldSet("x", "y", "z")
	b := NewFieldSet("y")
	diff := a.Diff(b)
	if !reflect.DeepEqual(diff, []string{"x", "z"}) {
		t.Errorf("Expected [x z], got %v", diff)
	}
	if len(b.Diff(a)) != 0 {
		t.Errorf("Expected empty diff, got %v", b.Diff(a))
	}
}

func TestFieldSet_SubsetOf(t *testing.T) {
	a := NewFieldSet("x", "y")
	b := NewFieldSet("x", "y", "z")
	if !a.SubsetOf(b) {
		t.Error("Expected a to be subset of b")
	}
	if b.SubsetOf(a) {
		t.Error("Expected b to not be subset of a")
	}
}
