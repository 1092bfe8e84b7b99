package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/aleksaelezovic/rdfbind/pkg/graph"
	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
	"github.com/aleksaelezovic/rdfbind/pkg/registry"
	"github.com/aleksaelezovic/rdfbind/pkg/schema"
	"github.com/aleksaelezovic/rdfbind/pkg/store"
)

const foafNS = "http://xmlns.com/foaf/0.1/"

// Person is the demo record type, annotated the way user code binds
// its structs to FOAF.
type Person struct {
	ID        string   `rdf:"id"`
	FirstName string   `rdf:"firstName"`
	LastName  string   `rdf:"lastName"`
	Knows     []string `rdf:"knows,resource=Person,optional"`
	Mbox      *string  `rdf:"mbox"`
}

func main() {
	var (
		dbPath     = flag.String("db", "", "BadgerDB directory; empty keeps the graph in memory")
		format     = flag.String("format", string(graph.DefaultFormat), "output format: json-ld, turtle or ntriples")
		configPath = flag.String("config", "", "registry config file (YAML)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)
	if *verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	if err := run(logger, *dbPath, graph.Format(*format), *configPath); err != nil {
		logger.Error().Err(err).Msg("rdfbind failed")
		os.Exit(1)
	}
}

func run(logger zerolog.Logger, dbPath string, format graph.Format, configPath string) error {
	cfg := registry.DefaultConfig()
	cfg.Context = map[string]string{"foaf": foafNS}
	if configPath != "" {
		loaded, err := registry.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	reg, err := registry.New(registry.WithConfig(cfg), registry.WithLogger(logger))
	if err != nil {
		return err
	}

	sink, closeSink, err := openSink(logger, dbPath)
	if err != nil {
		return err
	}
	defer closeSink()

	personSchema, err := schema.Derive(rdf.NewNamedNode(foafNS+"Person"), foafNS, Person{})
	if err != nil {
		return err
	}

	session, err := reg.CreateSession("demo", sink)
	if err != nil {
		return err
	}

	mbox := "mailto:sam@example.org"
	people := []Person{
		{ID: "http://example.org/sam", FirstName: "Sam", LastName: "Little", Mbox: &mbox,
			Knows: []string{"http://example.org/leo"}},
		{ID: "http://example.org/leo", FirstName: "Leo", LastName: "Eastman",
			Knows: []string{"http://example.org/sam"}},
	}

	entities := make([]registry.Entity, 0, len(people))
	for i := range people {
		ent, err := registry.Bind(&people[i], personSchema)
		if err != nil {
			return err
		}
		entities = append(entities, ent)
	}

	if err := session.AddAll(entities); err != nil {
		return err
	}

	return session.Serialize(os.Stdout, graph.SerializeOptions{
		Format:      format,
		Context:     cfg.Context,
		AutoCompact: true,
	})
}

func openSink(logger zerolog.Logger, dbPath string) (graph.Sink, func(), error) {
	if dbPath == "" {
		logger.Debug().Msg("using in-memory graph")
		return graph.NewMemoryGraph(), func() {}, nil
	}

	logger.Debug().Str("path", dbPath).Msg("opening badger store")
	ts, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}
	return ts, func() {
		if err := ts.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing store")
		}
	}, nil
}
