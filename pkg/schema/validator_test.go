package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
)

func minimalSchema(t *testing.T, resource string, fields ...Field) *Schema {
	t.Helper()
	s, err := Define(rdf.NewNamedNode(resource), fields...)
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	return s
}

func reqField(name string) Field {
	return Field{Name: name, Info: FieldInfo{Ref: rdf.NewNamedNode(foafNS + name), Range: rdf.XSDString, Required: true}}
}

func optField(name string) Field {
	return Field{Name: name, Info: FieldInfo{Ref: rdf.NewNamedNode(foafNS + name), Range: rdf.XSDString}}
}

// ===== Compatibility Tests =====

func TestCompatible(t *testing.T) {
	a := minimalSchema(t, foafNS+"Person", reqField("firstName"))
	b := minimalSchema(t, foafNS+"Person", reqField("lastName"))
	c := minimalSchema(t, foafNS+"Agent", reqField("firstName"))

	if err := Compatible(a, b); err != nil {
		t.Errorf("Expected same-resource schemas to be compatible: %v", err)
	}
	if err := Compatible(a, c); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for different resources, got %v", err)
	}
}

func TestEqualFields_DiffInMessage(t *testing.T) {
	err := EqualFields(NewFieldSet("a", "b"), NewFieldSet("b", "c"))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "a") || !strings.Contains(msg, "c") {
		t.Errorf("Expected both sides of the symmetric difference in message: %s", msg)
	}
}

// ===== Extension Tests =====

func TestIsValidExtension(t *testing.T) {
	base := minimalSchema(t, foafNS+"Person", reqField("firstName"))
	extended := minimalSchema(t, foafNS+"Person", reqField("firstName"), optField("mbox"))

	if err := IsValidExtension(base, extended); err != nil {
		t.Errorf("Expected valid extension: %v", err)
	}
	if err := IsValidExtension(extended, base); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error shrinking the field set, got %v", err)
	}
}

func TestIsSubSchema(t *testing.T) {
	base := minimalSchema(t, foafNS+"Person", reqField("firstName"))
	extended := minimalSchema(t, foafNS+"Person", reqField("firstName"), optField("mbox"))
	other := minimalSchema(t, foafNS+"Agent", reqField("firstName"))

	if !IsSubSchema(base, extended) {
		t.Error("Expected base to be a sub-schema of its extension")
	}
	if IsSubSchema(extended, base) {
		t.Error("Expected extension to not be a sub-schema of base")
	}
	if IsSubSchema(base, other) {
		t.Error("Expected different resources to never be sub-schemas")
	}
}

func TestIsSubSchema_Transitive(t *testing.T) {
	a := minimalSchema(t, foafNS+"Person", reqField("firstName"))
	b := minimalSchema(t, foafNS+"Person", reqField("firstName"), optField("mbox"))
	c := minimalSchema(t, foafNS+"Person", reqField("firstName"), optField("mbox"), optField("homepage"))

	if !IsSubSchema(a, b) || !IsSubSchema(b, c) {
		t.Fatal("Expected each schema to subsume the previous one")
	}
	if !IsSubSchema(a, c) {
		t.Error("Expected subsumption to carry across the chain")
	}
	if IsSubSchema(c, a) {
		t.Error("Expected subsumption to stay directional across the chain")
	}
}

func TestIsSubSchema_RequiredMustStayRequired(t *testing.T) {
	base := minimalSchema(t, foafNS+"Person", reqField("firstName"))
	relaxed := minimalSchema(t, foafNS+"Person", optField("firstName"), optField("mbox"))

	// The extension demotes a required field, so base is not subsumed.
	if IsSubSchema(base, relaxed) {
		t.Error("Expected required-field demotion to break subsumption")
	}
}

// ===== DescribesRecord Tests =====

func TestDescribesRecord_Modes(t *testing.T) {
	s := minimalSchema(t, foafNS+"Person", reqField("firstName"), optField("mbox"))

	full := map[string]any{"id": "_:b0", "firstName": "Sam", "mbox": "mailto:s@e.org"}
	requiredOnly := map[string]any{"firstName": "Sam"}
	superset := map[string]any{"firstName": "Sam", "mbox": "x", "extra": 1}

	tests := []struct {
		name   string
		record map[string]any
		mode   DescribeMode
		want   bool
	}{
		{"full exact", full, DescribeFull, true},
		{"full missing optional", requiredOnly, DescribeFull, false},
		{"full with extra", superset, DescribeFull, false},
		{"partial exact", full, DescribePartial, true},
		{"partial superset", superset, DescribePartial, true},
		{"partial missing", requiredOnly, DescribePartial, false},
		{"required only", requiredOnly, DescribeRequired, true},
		{"required missing", map[string]any{"mbox": "x"}, DescribeRequired, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DescribesRecord(tt.record, s, tt.mode)
			if err != nil {
				t.Fatalf("DescribesRecord: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDescribesRecord_InvalidInput(t *testing.T) {
	s := minimalSchema(t, foafNS+"Person", reqField("firstName"))

	if _, err := DescribesRecord(42, s, DescribeFull); !errors.Is(err, ErrUnsupportedRecord) {
		t.Errorf("Expected unsupported record error, got %v", err)
	}
	if _, err := DescribesRecord(map[string]any{}, s, DescribeMode("bogus")); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for bad mode, got %v", err)
	}
}
