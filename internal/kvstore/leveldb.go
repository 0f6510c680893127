package kvstore

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDBStore persists the ledger in a local LevelDB database.
type LevelDBStore struct {
	db *leveldb.DB
}

func OpenLevelDB(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", path, err)
	}
	return &LevelDBStore{db: db}, nil
}

func (s *LevelDBStore) Get(key []byte) ([]byte, error) {
	value, err := s.db.Get(key, nil)
	if err == ldberrors.ErrNotFound {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *LevelDBStore) Has(key []byte) (bool, error) {
	return s.db.Has(key, nil)
}

func (s *LevelDBStore) Write(batch *Batch) error {
	lb := new(leveldb.Batch)
	for _, op := range batch.ops {
		lb.Put(op.key, op.value)
	}
	return s.db.Write(lb, nil)
}

func (s *LevelDBStore) NewIterator(prefix []byte) Iterator {
	return &levelDBIterator{it: s.db.NewIterator(util.BytesPrefix(prefix), nil)}
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

type levelDBIterator struct {
	it iterator.Iterator
}

func (i *levelDBIterator) Next() bool    { return i.it.Next() }
func (i *levelDBIterator) Key() []byte   { return i.it.Key() }
func (i *levelDBIterator) Value() []byte { return i.it.Value() }
func (i *levelDBIterator) Release()      { i.it.Release() }
func (i *levelDBIterator) Error() error  { return i.it.Error() }
