package codec

import (
	"fmt"

	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
	"github.com/aleksaelezovic/rdfbind/pkg/schema"
)

// EncodeToMap converts a record into a JSON-compatible map: plain
// scalars stay native, temporal and binary values become their lexical
// forms, references stay identifier strings. The subject identifier is
// stored under "id".
func EncodeToMap(rec schema.Record, sch *schema.Schema) (map[string]any, error) {
	out := make(map[string]any, sch.Len()+1)
	out[schema.IDField] = rec.ID()

	for _, name := range sch.Names() {
		info, _ := sch.Info(name)
		value, ok := rec.Field(name)
		if !ok || value == nil {
			continue
		}

		elements, err := normalizeValues(name, value, info)
		if err != nil {
			return nil, err
		}

		builtins := make([]any, 0, len(elements))
		for _, elem := range elements {
			b, err := builtinValue(name, elem, info)
			if err != nil {
				return nil, err
			}
			builtins = append(builtins, b)
		}

		if info.Repeat {
			out[name] = builtins
		} else if len(builtins) == 1 {
			out[name] = builtins[0]
		}
	}
	return out, nil
}

func builtinValue(name string, elem any, info schema.FieldInfo) (any, error) {
	if info.ResourceRef != nil {
		term, err := identifierTerm(name, elem)
		if err != nil {
			return nil, err
		}
		return rdf.RefString(term)
	}

	switch elem.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return elem, nil
	}

	lit, err := rdf.NewValueLiteral(elem, info.Range)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", schema.ErrAnnotation, name, err)
	}
	return lit.Value, nil
}
