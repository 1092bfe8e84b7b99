package storage

import (
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStorage implements Storage on BadgerDB.
type BadgerStorage struct {
	db *badger.DB
}

// NewBadgerStorage opens a BadgerDB-backed storage at path.
func NewBadgerStorage(path string) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return &BadgerStorage{db: db}, nil
}

// NewInMemoryBadgerStorage opens a BadgerDB instance without a backing
// directory, useful for tests and ephemeral sessions.
func NewInMemoryBadgerStorage() (*BadgerStorage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger db: %w", err)
	}

	return &BadgerStorage{db: db}, nil
}

func (s *BadgerStorage) Begin(writable bool) (Transaction, error) {
	return &badgerTransaction{
		txn:      s.db.NewTransaction(writable),
		writable: writable,
	}, nil
}

func (s *BadgerStorage) Close() error {
	return s.db.Close()
}

func (s *BadgerStorage) Sync() error {
	if s.db.Opts().InMemory {
		return nil
	}
	return s.db.Sync()
}

type badgerTransaction struct {
	txn      *badger.Txn
	writable bool
}

func (t *badgerTransaction) Get(table Table, key []byte) ([]byte, error) {
	item, err := t.txn.Get(PrefixKey(table, key))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (t *badgerTransaction) Set(table Table, key, value []byte) error {
	if !t.writable {
		return ErrTransactionRO
	}
	return t.txn.Set(PrefixKey(table, key), value)
}

func (t *badgerTransaction) Delete(table Table, key []byte) error {
	if !t.writable {
		return ErrTransactionRO
	}
	return t.txn.Delete(PrefixKey(table, key))
}

func (t *badgerTransaction) ScanPrefix(table Table, prefix []byte) (Iterator, error) {
	scanPrefix := TablePrefix(table)
	if prefix != nil {
		scanPrefix = PrefixKey(table, prefix)
	}

	opts := badger.DefaultIteratorOptions
	opts.Prefix = scanPrefix

	return &badgerIterator{
		it:          t.txn.NewIterator(opts),
		tablePrefix: TablePrefix(table),
		seekKey:     scanPrefix,
	}, nil
}

func (t *badgerTransaction) Commit() error {
	return t.txn.Commit()
}

func (t *badgerTransaction) Rollback() error {
	t.txn.Discard()
	return nil
}

type badgerIterator struct {
	it          *badger.Iterator
	tablePrefix []byte
	seekKey     []byte
	started     bool
}

func (i *badgerIterator) Next() bool {
	if !i.started {
		i.it.Seek(i.seekKey)
		i.started = true
	} else {
		i.it.Next()
	}
	return i.it.Valid()
}

func (i *badgerIterator) Key() []byte {
	key := i.it.Item().Key()
	if len(key) <= len(i.tablePrefix) {
		return nil
	}
	return key[len(i.tablePrefix):]
}

func (i *badgerIterator) Value() ([]byte, error) {
	return i.it.Item().ValueCopy(nil)
}

func (i *badgerIterator) Close() error {
	i.it.Close()
	return nil
}
