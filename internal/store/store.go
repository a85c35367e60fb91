package store

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/gatherly/gatherly/internal/modules/core"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const (
	collectionSeparator = '/'
	sequencePrefix      = "!seq!"
	sequenceBandwidth   = 64
)

// Store exposes a badger database as a set of named, byte-ordered
// collections with per-collection monotonic ID sequences and atomic
// transactions spanning any number of collections.
type Store struct {
	db *badger.DB

	mu   sync.Mutex
	seqs map[string]*badger.Sequence
}

func Open(path string, logger *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{logger.Sugar()})
	return open(opts)
}

// OpenInMemory backs the store with memory only. Used by tests.
func OpenInMemory(logger *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(badgerLogger{logger.Sugar()})
	return open(opts)
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, core.NewStorageError("open", err)
	}

	return &Store{db: db, seqs: map[string]*badger.Sequence{}}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, seq := range s.seqs {
		if err := seq.Release(); err != nil {
			return core.NewStorageError("close", err)
		}
	}

	if err := s.db.Close(); err != nil {
		return core.NewStorageError("close", err)
	}

	return nil
}

// NextID returns an identifier unique within the collection. IDs are
// monotonically increasing and never reused, including across restarts.
func (s *Store) NextID(collection string) (uint64, error) {
	s.mu.Lock()
	seq, ok := s.seqs[collection]
	if !ok {
		var err error
		seq, err = s.db.GetSequence([]byte(sequencePrefix+collection), sequenceBandwidth)
		if err != nil {
			s.mu.Unlock()
			return 0, core.NewStorageError("sequence", err)
		}
		s.seqs[collection] = seq
	}
	s.mu.Unlock()

	id, err := seq.Next()
	if err != nil {
		return 0, core.NewStorageError("sequence", err)
	}

	return id, nil
}

// Update runs fn inside a read-write transaction. Conflicting concurrent
// transactions are detected at commit and the whole fn is re-executed, so
// fn must not have side effects other than writes through the Tx. Any
// error returned by fn discards the transaction immediately without retry;
// business-rule aborts surface to the caller exactly once.
func (s *Store) Update(ctx context.Context, fn func(*Tx) error) error {
	for {
		txn := s.db.NewTransaction(true)

		if err := fn(&Tx{txn: txn}); err != nil {
			txn.Discard()
			return err
		}

		err := txn.Commit()
		if err == nil {
			return nil
		}

		if !errors.Is(err, badger.ErrConflict) {
			return core.NewStorageError("commit", err)
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// View runs fn against a read-only snapshot. Reads take no write intent
// and cannot conflict, so listings done here provide no isolation across
// separate calls.
func (s *Store) View(fn func(*Tx) error) error {
	txn := s.db.NewTransaction(false)
	defer txn.Discard()

	return fn(&Tx{txn: txn})
}

// Tx is a transactional handle over the store's collections.
type Tx struct {
	txn *badger.Txn
}

func storageKey(collection string, key []byte) []byte {
	buf := make([]byte, 0, len(collection)+1+len(key))
	buf = append(buf, collection...)
	buf = append(buf, collectionSeparator)
	buf = append(buf, key...)
	return buf
}

func (t *Tx) Get(collection string, key []byte) ([]byte, bool, error) {
	item, err := t.txn.Get(storageKey(collection, key))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, core.NewStorageError("get", err)
	}

	value, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, core.NewStorageError("get", err)
	}

	return value, true, nil
}

func (t *Tx) Set(collection string, key, value []byte) error {
	if err := t.txn.Set(storageKey(collection, key), value); err != nil {
		return core.NewStorageError("set", err)
	}

	return nil
}

func (t *Tx) Delete(collection string, key []byte) error {
	if err := t.txn.Delete(storageKey(collection, key)); err != nil {
		return core.NewStorageError("delete", err)
	}

	return nil
}

// ScanPrefix visits every entry of the collection whose key carries the
// prefix, in ascending byte order. Keys passed to fn are stripped of the
// collection namespace.
func (t *Tx) ScanPrefix(collection string, prefix []byte, fn func(key, value []byte) error) error {
	full := storageKey(collection, prefix)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = full

	it := t.txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()

		value, err := item.ValueCopy(nil)
		if err != nil {
			return core.NewStorageError("scan", err)
		}

		key := item.KeyCopy(nil)[len(collection)+1:]
		if err := fn(key, value); err != nil {
			return err
		}
	}

	return nil
}

// Predecessor returns the entry with the greatest key strictly below key
// that still carries the prefix, or ok == false if there is none.
func (t *Tx) Predecessor(collection string, prefix, key []byte) ([]byte, []byte, bool, error) {
	full := storageKey(collection, prefix)
	seek := storageKey(collection, key)

	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.Prefix = full

	it := t.txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(seek); it.Valid(); it.Next() {
		item := it.Item()
		if bytes.Equal(item.Key(), seek) {
			continue
		}

		value, err := item.ValueCopy(nil)
		if err != nil {
			return nil, nil, false, core.NewStorageError("predecessor", err)
		}

		return item.KeyCopy(nil)[len(collection)+1:], value, true, nil
	}

	return nil, nil, false, nil
}

// Successor returns the entry with the smallest key at or above key that
// still carries the prefix, or ok == false if there is none.
func (t *Tx) Successor(collection string, prefix, key []byte) ([]byte, []byte, bool, error) {
	full := storageKey(collection, prefix)
	seek := storageKey(collection, key)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = full

	it := t.txn.NewIterator(opts)
	defer it.Close()

	it.Seek(seek)
	if !it.Valid() {
		return nil, nil, false, nil
	}

	item := it.Item()
	value, err := item.ValueCopy(nil)
	if err != nil {
		return nil, nil, false, core.NewStorageError("successor", err)
	}

	return item.KeyCopy(nil)[len(collection)+1:], value, true, nil
}

// badgerLogger adapts zap to badger's logging interface.
type badgerLogger struct {
	sugar *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}
