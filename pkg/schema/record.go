package schema

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IDField is the conventional name of the identifier field, excluded
// from schema field sets.
const IDField = "id"

// Record exposes a record's identifier and named fields. Concrete
// adapters implement it per supported input shape; everything above
// (validator, codec) depends only on this interface.
type Record interface {
	// ID returns the record identifier in string form ("" for none,
	// "_:name" for anonymous, otherwise a resolved reference).
	ID() string
	// FieldNames returns the record's field names, identifier excluded.
	FieldNames() []string
	// Field returns the named field's value and whether it exists.
	Field(name string) (any, bool)
}

// AsRecord adapts a value to the Record interface. Supported shapes:
// Record implementations (returned as-is), map[string]any (the "id"
// key is the identifier), and structs or struct pointers (introspected
// through `rdf` tags).
func AsRecord(v any) (Record, error) {
	switch r := v.(type) {
	case Record:
		return r, nil
	case map[string]any:
		return MapRecord(r), nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("%w: nil pointer", ErrUnsupportedRecord)
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		return newStructRecord(rv)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedRecord, v)
}

// MapRecord adapts a generic key-value map to the Record interface.
type MapRecord map[string]any

func (m MapRecord) ID() string {
	if v, ok := m[IDField]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (m MapRecord) FieldNames() []string {
	names := make([]string, 0, len(m))
	for k := range m {
		if k == IDField {
			continue
		}
		names = append(names, k)
	}
	return names
}

func (m MapRecord) Field(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// structRecord introspects an annotated struct through `rdf` tags.
type structRecord struct {
	value   reflect.Value
	order   []string
	indexes map[string]int
	idIndex int
}

func newStructRecord(rv reflect.Value) (*structRecord, error) {
	rec := &structRecord{
		value:   rv,
		indexes: make(map[string]int),
		idIndex: -1,
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _ := parseFieldTag(f)
		if name == "-" {
			continue
		}
		if name == IDField {
			rec.idIndex = i
			continue
		}
		rec.order = append(rec.order, name)
		rec.indexes[name] = i
	}
	return rec, nil
}

func (r *structRecord) ID() string {
	if r.idIndex < 0 {
		return ""
	}
	v := r.value.Field(r.idIndex)
	if v.Kind() == reflect.String {
		return v.String()
	}
	return ""
}

func (r *structRecord) FieldNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *structRecord) Field(name string) (any, bool) {
	i, ok := r.indexes[name]
	if !ok {
		return nil, false
	}
	v := r.value.Field(i)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, true
		}
		v = v.Elem()
	}
	return v.Interface(), true
}

// parseFieldTag splits an `rdf` struct tag into the mapped field name
// and its options. An absent tag maps the Go name to lowerCamel; the
// Go field "ID" maps to the identifier.
func parseFieldTag(f reflect.StructField) (name string, opts map[string]string) {
	opts = make(map[string]string)
	tag, ok := f.Tag.Lookup("rdf")
	if !ok {
		if f.Name == "ID" {
			return IDField, opts
		}
		return lowerCamel(f.Name), opts
	}

	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		if f.Name == "ID" {
			name = IDField
		} else {
			name = lowerCamel(f.Name)
		}
	}
	for _, p := range parts[1:] {
		if k, v, found := strings.Cut(p, "="); found {
			opts[k] = v
		} else if p != "" {
			opts[p] = ""
		}
	}
	return name, opts
}

func lowerCamel(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
