// Package store provides the BadgerDB-backed triple sink. Triples are
// kept in three index permutations (SPO, POS, OSP) keyed by the binary
// term encoding, with hashed term strings resolved through the id2str
// table.
package store

import (
	"fmt"
	"io"

	"github.com/aleksaelezovic/rdfbind/internal/encoding"
	"github.com/aleksaelezovic/rdfbind/internal/storage"
	"github.com/aleksaelezovic/rdfbind/pkg/graph"
	"github.com/aleksaelezovic/rdfbind/pkg/rdf"
)

// TripleStore is a persistent triple sink.
type TripleStore struct {
	storage storage.Storage
	encoder *encoding.TermEncoder
	decoder *encoding.TermDecoder
}

var _ graph.Sink = (*TripleStore)(nil)

// Open creates a triple store backed by BadgerDB at path.
func Open(path string) (*TripleStore, error) {
	st, err := storage.NewBadgerStorage(path)
	if err != nil {
		return nil, err
	}
	return New(st), nil
}

// OpenInMemory creates an ephemeral triple store without a backing
// directory.
func OpenInMemory() (*TripleStore, error) {
	st, err := storage.NewInMemoryBadgerStorage()
	if err != nil {
		return nil, err
	}
	return New(st), nil
}

// New creates a triple store on an existing storage.
func New(st storage.Storage) *TripleStore {
	return &TripleStore{
		storage: st,
		encoder: encoding.NewTermEncoder(),
		decoder: encoding.NewTermDecoder(),
	}
}

// Close closes the underlying storage.
func (s *TripleStore) Close() error {
	return s.storage.Close()
}

// Add inserts one triple.
func (s *TripleStore) Add(triple *rdf.Triple) error {
	return s.AddMany([]*rdf.Triple{triple})
}

// AddMany inserts a batch of triples in a single transaction.
func (s *TripleStore) AddMany(triples []*rdf.Triple) error {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	for _, triple := range triples {
		if err := s.insertInTxn(txn, triple); err != nil {
			return err
		}
	}

	return txn.Commit()
}

func (s *TripleStore) insertInTxn(txn storage.Transaction, triple *rdf.Triple) error {
	subjEnc, subjStr, err := s.encoder.EncodeTerm(triple.Subject)
	if err != nil {
		return fmt.Errorf("failed to encode subject: %w", err)
	}
	predEnc, predStr, err := s.encoder.EncodeTerm(triple.Predicate)
	if err != nil {
		return fmt.Errorf("failed to encode predicate: %w", err)
	}
	objEnc, objStr, err := s.encoder.EncodeTerm(triple.Object)
	if err != nil {
		return fmt.Errorf("failed to encode object: %w", err)
	}

	if err := s.storeString(txn, subjEnc, subjStr); err != nil {
		return err
	}
	if err := s.storeString(txn, predEnc, predStr); err != nil {
		return err
	}
	if err := s.storeString(txn, objEnc, objStr); err != nil {
		return err
	}

	emptyValue := []byte{}
	if err := txn.Set(storage.TableSPO, s.encoder.EncodeTripleKey(subjEnc, predEnc, objEnc), emptyValue); err != nil {
		return err
	}
	if err := txn.Set(storage.TablePOS, s.encoder.EncodeTripleKey(predEnc, objEnc, subjEnc), emptyValue); err != nil {
		return err
	}
	return txn.Set(storage.TableOSP, s.encoder.EncodeTripleKey(objEnc, subjEnc, predEnc), emptyValue)
}

// storeString writes a hashed term's string into the id2str table.
func (s *TripleStore) storeString(txn storage.Transaction, encoded encoding.EncodedTerm, str *string) error {
	if str == nil {
		return nil
	}
	// The hash portion of the encoded term is the key. Hashes are
	// stable, so an existing entry never needs rewriting.
	key := encoded[1:]
	if _, err := txn.Get(storage.TableID2Str, key); err == nil {
		return nil
	} else if err != storage.ErrNotFound {
		return err
	}
	return txn.Set(storage.TableID2Str, key, []byte(*str))
}

// Delete removes a triple from every index. Stored strings are kept;
// they may be shared with other statements.
func (s *TripleStore) Delete(triple *rdf.Triple) error {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	subjEnc, _, err := s.encoder.EncodeTerm(triple.Subject)
	if err != nil {
		return err
	}
	predEnc, _, err := s.encoder.EncodeTerm(triple.Predicate)
	if err != nil {
		return err
	}
	objEnc, _, err := s.encoder.EncodeTerm(triple.Object)
	if err != nil {
		return err
	}

	if err := txn.Delete(storage.TableSPO, s.encoder.EncodeTripleKey(subjEnc, predEnc, objEnc)); err != nil {
		return err
	}
	if err := txn.Delete(storage.TablePOS, s.encoder.EncodeTripleKey(predEnc, objEnc, subjEnc)); err != nil {
		return err
	}
	if err := txn.Delete(storage.TableOSP, s.encoder.EncodeTripleKey(objEnc, subjEnc, predEnc)); err != nil {
		return err
	}

	return txn.Commit()
}

// Contains checks whether a triple exists.
func (s *TripleStore) Contains(triple *rdf.Triple) (bool, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return false, err
	}
	defer txn.Rollback()

	subjEnc, _, err := s.encoder.EncodeTerm(triple.Subject)
	if err != nil {
		return false, err
	}
	predEnc, _, err := s.encoder.EncodeTerm(triple.Predicate)
	if err != nil {
		return false, err
	}
	objEnc, _, err := s.encoder.EncodeTerm(triple.Object)
	if err != nil {
		return false, err
	}

	_, err = txn.Get(storage.TableSPO, s.encoder.EncodeTripleKey(subjEnc, predEnc, objEnc))
	if err == storage.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// TriplesWithSubject returns every statement about the given subject
// via an SPO prefix scan.
func (s *TripleStore) TriplesWithSubject(subject rdf.Term) ([]*rdf.Triple, error) {
	subjEnc, _, err := s.encoder.EncodeTerm(subject)
	if err != nil {
		return nil, err
	}
	return s.scanSPO(subjEnc[:])
}

// All returns every statement in the store.
func (s *TripleStore) All() ([]*rdf.Triple, error) {
	return s.scanSPO(nil)
}

func (s *TripleStore) scanSPO(prefix []byte) ([]*rdf.Triple, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}
	defer txn.Rollback()

	it, err := txn.ScanPrefix(storage.TableSPO, prefix)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var triples []*rdf.Triple
	for it.Next() {
		key := it.Key()
		if len(key) != 3*encoding.EncodedTermSize {
			return nil, fmt.Errorf("malformed index key of length %d", len(key))
		}

		var subjEnc, predEnc, objEnc encoding.EncodedTerm
		copy(subjEnc[:], key[0:encoding.EncodedTermSize])
		copy(predEnc[:], key[encoding.EncodedTermSize:2*encoding.EncodedTermSize])
		copy(objEnc[:], key[2*encoding.EncodedTermSize:])

		subject, err := s.decodeTerm(txn, subjEnc)
		if err != nil {
			return nil, err
		}
		predicate, err := s.decodeTerm(txn, predEnc)
		if err != nil {
			return nil, err
		}
		object, err := s.decodeTerm(txn, objEnc)
		if err != nil {
			return nil, err
		}

		triples = append(triples, rdf.NewTriple(subject, predicate, object))
	}

	return triples, nil
}

// decodeTerm resolves hashed encodings through the id2str table.
func (s *TripleStore) decodeTerm(txn storage.Transaction, encoded encoding.EncodedTerm) (rdf.Term, error) {
	var stringValue *string
	if encoding.NeedsStringLookup(encoded) {
		if str, err := txn.Get(storage.TableID2Str, encoded[1:]); err == nil {
			strVal := string(str)
			stringValue = &strVal
		}
	}
	return s.decoder.DecodeTerm(encoded, stringValue)
}

// Count returns the number of statements in the store.
func (s *TripleStore) Count() (int64, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback()

	it, err := txn.ScanPrefix(storage.TableSPO, nil)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	count := int64(0)
	for it.Next() {
		count++
	}
	return count, nil
}

// Serialize writes the store's contents to w.
func (s *TripleStore) Serialize(w io.Writer, opts graph.SerializeOptions) error {
	triples, err := s.All()
	if err != nil {
		return err
	}
	return graph.Serialize(w, triples, opts)
}

// Parse reads N-Triples input into the store.
func (s *TripleStore) Parse(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	triples, err := rdf.NewNTriplesParser(string(data)).Parse()
	if err != nil {
		return err
	}
	return s.AddMany(triples)
}
