// Package registry keeps track of schemas, instances and sessions. It
// is an explicit context object: callers construct one and hand it
// around instead of sharing process-global state.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aleksaelezovic/rdfbind/pkg/graph"
	"github.com/aleksaelezovic/rdfbind/pkg/schema"
)

var (
	// ErrIntegrity reports an unresolvable registration conflict.
	ErrIntegrity = errors.New("registry: integrity error")

	// ErrNotFound reports a lookup miss.
	ErrNotFound = errors.New("registry: not found")
)

// Entity is a record that knows its own schema.
type Entity interface {
	schema.Record
	Schema() *schema.Schema
}

// Registry is the root bookkeeping object. Safe for concurrent use.
// Instances are keyed by (resource, identifier): the same identifier
// may describe records of different resources side by side.
type Registry struct {
	mu     sync.Mutex
	config Config
	logger zerolog.Logger

	schemas   map[string]*schema.Schema
	instances map[string]map[string]Entity
	sessions  map[string]*Session
}

// Option configures a Registry.
type Option func(*Registry)

// WithConfig sets the conflict policies and serialization context.
func WithConfig(cfg Config) Option {
	return func(r *Registry) { r.config = cfg }
}

// WithLogger sets the registry logger. The default discards.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// New creates a registry with the given options.
func New(opts ...Option) (*Registry, error) {
	r := &Registry{
		config:    DefaultConfig(),
		logger:    zerolog.Nop(),
		schemas:   make(map[string]*schema.Schema),
		instances: make(map[string]map[string]Entity),
		sessions:  make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// MustNew is New for static configuration that cannot fail.
func MustNew(opts ...Option) *Registry {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Config returns the registry configuration.
func (r *Registry) Config() Config {
	return r.config
}

// RegisterSchema records a schema under its resource IRI. A second
// registration for the same resource with an equal schema is a no-op;
// a differing schema is resolved by the configured policy.
func (r *Registry) RegisterSchema(sch *schema.Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerSchemaLocked(sch)
}

func (r *Registry) registerSchemaLocked(sch *schema.Schema) error {
	key := sch.Resource().IRI
	existing, ok := r.schemas[key]
	if !ok || existing.Equal(sch) {
		r.schemas[key] = sch
		return nil
	}

	switch r.config.OnSchemaConflict {
	case PolicyRaise:
		return fmt.Errorf("%w: conflicting schema for resource %s", ErrIntegrity, key)
	case PolicyOverwrite:
		r.logger.Debug().Str("resource", key).Msg("overwriting registered schema")
		r.schemas[key] = sch
		return nil
	case PolicySubclass:
		// Keep whichever schema subsumes the other.
		if schema.IsSubSchema(existing, sch) {
			r.schemas[key] = sch
			return nil
		}
		if schema.IsSubSchema(sch, existing) {
			return nil
		}
		return fmt.Errorf("%w: schemas for resource %s are not related by extension", ErrIntegrity, key)
	case PolicyIgnore:
		r.logger.Debug().Str("resource", key).Msg("ignoring conflicting schema")
		return nil
	default:
		return fmt.Errorf("%w: unknown schema conflict policy %q", ErrIntegrity, r.config.OnSchemaConflict)
	}
}

// RegisterInstance validates an entity against its schema, registers
// the schema, and records the instance under its identifier.
func (r *Registry) RegisterInstance(ent Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerInstanceLocked(ent)
}

func (r *Registry) registerInstanceLocked(ent Entity) error {
	sch := ent.Schema()
	if sch == nil {
		return fmt.Errorf("%w: entity %q has no schema", ErrIntegrity, ent.ID())
	}
	ok, err := schema.DescribesRecord(ent, sch, schema.DescribeRequired)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: entity %q does not satisfy schema %s",
			ErrIntegrity, ent.ID(), sch.Resource())
	}

	if err := r.registerSchemaLocked(sch); err != nil {
		return err
	}

	resource := sch.Resource().IRI
	id := ent.ID()
	byID := r.instances[resource]
	if byID == nil {
		byID = make(map[string]Entity)
		r.instances[resource] = byID
	}
	if _, exists := byID[id]; exists {
		switch r.config.OnIdentifierConflict {
		case PolicyRaise:
			return fmt.Errorf("%w: identifier %q already registered for resource %s",
				ErrIntegrity, id, resource)
		case PolicyIgnore:
			r.logger.Debug().Str("resource", resource).Str("id", id).Msg("ignoring conflicting instance")
			return nil
		case PolicyOverwrite:
			r.logger.Debug().Str("resource", resource).Str("id", id).Msg("overwriting registered instance")
		}
	}
	byID[id] = ent
	return nil
}

// GetSchema looks up a schema by resource IRI.
func (r *Registry) GetSchema(resource string) (*schema.Schema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sch, ok := r.schemas[resource]
	if !ok {
		return nil, fmt.Errorf("%w: schema for resource %s", ErrNotFound, resource)
	}
	return sch, nil
}

// GetInstance looks up an instance by (resource, identifier). Exact
// lookup, never auto-creates.
func (r *Registry) GetInstance(resource, id string) (Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ent, ok := r.instances[resource][id]
	if !ok {
		return nil, fmt.Errorf("%w: instance %q of resource %s", ErrNotFound, id, resource)
	}
	return ent, nil
}

// Reset drops every registered schema, instance and session.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas = make(map[string]*schema.Schema)
	r.instances = make(map[string]map[string]Entity)
	r.sessions = make(map[string]*Session)
}

// CreateSession opens a named session writing to the given sink.
// Session names are unique per registry.
func (r *Registry) CreateSession(name string, sink graph.Sink) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[name]; exists {
		return nil, fmt.Errorf("%w: session %q already exists", ErrIntegrity, name)
	}
	return r.createSessionLocked(name, sink), nil
}

func (r *Registry) createSessionLocked(name string, sink graph.Sink) *Session {
	s := &Session{
		name:     name,
		registry: r,
		sink:     sink,
		logger:   r.logger.With().Str("session", name).Logger(),
		seen:     make(map[string]struct{}),
	}
	r.sessions[name] = s
	return s
}

// GetSession returns the named session, creating one backed by a fresh
// in-memory graph when it does not exist yet.
func (r *Registry) GetSession(name string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[name]; ok {
		return s
	}
	r.logger.Debug().Str("session", name).Msg("creating session with default sink")
	return r.createSessionLocked(name, graph.NewMemoryGraph())
}

// RemoveSession drops a session. Its sink is left untouched.
func (r *Registry) RemoveSession(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, name)
}
