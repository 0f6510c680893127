package kvstore

import (
	"bytes"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store used in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[string(key)]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *MemoryStore) Has(key []byte) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[string(key)]
	return ok, nil
}

func (s *MemoryStore) Write(batch *Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range batch.ops {
		s.data[string(op.key)] = op.value
	}
	return nil
}

func (s *MemoryStore) NewIterator(prefix []byte) Iterator {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	items := make([]batchOp, 0, len(keys))
	for _, k := range keys {
		items = append(items, batchOp{key: []byte(k), value: s.data[k]})
	}
	return &memoryIterator{items: items, pos: -1}
}

func (s *MemoryStore) Close() error {
	return nil
}

type memoryIterator struct {
	items []batchOp
	pos   int
}

func (i *memoryIterator) Next() bool {
	i.pos++
	return i.pos < len(i.items)
}

func (i *memoryIterator) Key() []byte   { return i.items[i.pos].key }
func (i *memoryIterator) Value() []byte { return i.items[i.pos].value }
func (i *memoryIterator) Release()      {}
func (i *memoryIterator) Error() error  { return nil }
