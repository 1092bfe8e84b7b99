package registry

import (
	"fmt"
	"io"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/aleksaelezovic/rdfbind/pkg/codec"
	"github.com/aleksaelezovic/rdfbind/pkg/graph"
	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
	"github.com/aleksaelezovic/rdfbind/pkg/schema"
)

// Session writes entities and their transitively referenced instances
// to a sink. Each entity is emitted at most once per session.
type Session struct {
	name     string
	registry *Registry
	sink     graph.Sink
	logger   zerolog.Logger
	seen     map[string]struct{}
}

// Name returns the session name.
func (s *Session) Name() string {
	return s.name
}

// Sink returns the session's sink.
func (s *Session) Sink() graph.Sink {
	return s.sink
}

// Add registers the entity, collects its reference closure, and writes
// the encoded statements to the sink as one batch. Nothing reaches the
// sink unless the whole closure validates and encodes.
func (s *Session) Add(ent Entity) error {
	return s.AddAll([]Entity{ent})
}

// AddAll is Add over a batch of roots sharing one atomic emit.
func (s *Session) AddAll(entities []Entity) error {
	s.registry.mu.Lock()
	defer s.registry.mu.Unlock()

	// Collect the closure and encode everything before touching the
	// sink, so a failure partway leaves it unchanged.
	visited := make(map[string]struct{}, len(s.seen))
	for id := range s.seen {
		visited[id] = struct{}{}
	}

	var batch []*rdf.Triple
	var emitted []string

	var walk func(ent Entity) error
	walk = func(ent Entity) error {
		id := ent.ID()
		if _, done := visited[id]; done {
			return nil
		}
		visited[id] = struct{}{}

		if err := s.registry.registerInstanceLocked(ent); err != nil {
			return err
		}

		triples, err := codec.Encode(ent, ent.Schema())
		if err != nil {
			return fmt.Errorf("session %q: encoding %q: %w", s.name, id, err)
		}
		batch = append(batch, triples...)
		emitted = append(emitted, id)

		for _, ref := range referencedIDs(ent) {
			linked, ok := s.registry.instances[ref.resource][ref.id]
			if !ok {
				// External references stay plain identifiers.
				s.logger.Debug().Str("resource", ref.resource).Str("ref", ref.id).
					Msg("referenced instance not registered")
				continue
			}
			if err := walk(linked); err != nil {
				return err
			}
		}
		return nil
	}

	for _, ent := range entities {
		if err := walk(ent); err != nil {
			return err
		}
	}

	if err := s.sink.AddMany(batch); err != nil {
		return fmt.Errorf("session %q: %w", s.name, err)
	}
	for _, id := range emitted {
		s.seen[id] = struct{}{}
	}
	s.logger.Debug().Int("entities", len(emitted)).Int("triples", len(batch)).Msg("batch added")
	return nil
}

// Contains reports whether the session has already emitted an entity.
func (s *Session) Contains(id string) bool {
	s.registry.mu.Lock()
	defer s.registry.mu.Unlock()
	_, ok := s.seen[id]
	return ok
}

// Serialize writes the session's sink using the registry context as
// the default serialization context.
func (s *Session) Serialize(w io.Writer, opts graph.SerializeOptions) error {
	if opts.Context == nil {
		opts.Context = s.registry.config.Context
	}
	return s.sink.Serialize(w, opts)
}

// reference names one referenced instance by its registry key.
type reference struct {
	resource string
	id       string
}

// referencedIDs flattens every reference field of the entity into the
// (resource, identifier) pairs it points at.
func referencedIDs(ent Entity) []reference {
	sch := ent.Schema()
	var refs []reference

	for _, name := range sch.Names() {
		info, _ := sch.Info(name)
		if info.ResourceRef == nil {
			continue
		}
		value, ok := ent.Field(name)
		if !ok || value == nil {
			continue
		}
		resource := info.ResourceRef.IRI

		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < rv.Len(); i++ {
				if id, ok := rv.Index(i).Interface().(string); ok {
					refs = append(refs, reference{resource: resource, id: id})
				}
			}
		case reflect.String:
			refs = append(refs, reference{resource: resource, id: rv.String()})
		}
	}
	return refs
}

type boundEntity struct {
	schema.Record
	sch *schema.Schema
}

func (b boundEntity) Schema() *schema.Schema {
	return b.sch
}

// Bind pairs any supported record shape with a schema, yielding an
// Entity for session and registry calls.
func Bind(v any, sch *schema.Schema) (Entity, error) {
	rec, err := schema.AsRecord(v)
	if err != nil {
		return nil, err
	}
	return boundEntity{Record: rec, sch: sch}, nil
}
