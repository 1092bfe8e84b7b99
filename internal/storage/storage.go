// Package storage provides the key-value layer underneath the
// persistent triple store: a transactional interface with prefix scans
// and a BadgerDB implementation.
package storage

import (
	"errors"
)

var (
	ErrNotFound      = errors.New("key not found")
	ErrTransactionRO = errors.New("transaction is read-only")
)

// Storage is the interface for the underlying key-value store.
type Storage interface {
	// Begin starts a new transaction.
	Begin(writable bool) (Transaction, error)

	// Close closes the storage.
	Close() error

	// Sync flushes writes to disk.
	Sync() error
}

// Transaction is a database transaction with snapshot isolation.
type Transaction interface {
	// Get retrieves a value by key.
	Get(table Table, key []byte) ([]byte, error)

	// Set stores a key-value pair.
	Set(table Table, key, value []byte) error

	// Delete removes a key.
	Delete(table Table, key []byte) error

	// ScanPrefix iterates over every key starting with prefix, in
	// lexicographic order. A nil prefix scans the whole table.
	ScanPrefix(table Table, prefix []byte) (Iterator, error)

	// Commit commits the transaction.
	Commit() error

	// Rollback rolls back the transaction.
	Rollback() error
}

// Iterator iterates over key-value pairs.
type Iterator interface {
	// Next advances to the next item.
	Next() bool

	// Key returns the current key without the table prefix.
	Key() []byte

	// Value returns the current value.
	Value() ([]byte, error)

	// Close closes the iterator.
	Close() error
}

// Table is a logical table namespaced by a one-byte key prefix.
type Table byte

const (
	// Hash to string lookup for hashed terms.
	TableID2Str Table = iota

	// Triple indexes, one per access pattern.
	TableSPO
	TablePOS
	TableOSP

	TableCount
)

func (t Table) String() string {
	switch t {
	case TableID2Str:
		return "id2str"
	case TableSPO:
		return "spo"
	case TablePOS:
		return "pos"
	case TableOSP:
		return "osp"
	default:
		return "unknown"
	}
}

// TablePrefix returns the byte prefix that namespaces a table's keys.
func TablePrefix(table Table) []byte {
	return []byte{byte(table)}
}

// PrefixKey prepends the table prefix to a key.
func PrefixKey(table Table, key []byte) []byte {
	prefix := TablePrefix(table)
	result := make([]byte, len(prefix)+len(key))
	copy(result, prefix)
	copy(result[len(prefix):], key)
	return result
}
