package kvstore

import "errors"

// ErrKeyNotFound is returned by Get when no value exists for the key.
var ErrKeyNotFound = errors.New("key not found")

// Store is the durable key-value substrate underneath the ledger. Keys are
// opaque byte strings; iteration is ordered lexicographically, which the
// ledger relies on for insertion-order listing via big-endian id keys.
type Store interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	// Write applies the batch atomically.
	Write(batch *Batch) error
	NewIterator(prefix []byte) Iterator
	Close() error
}

// Iterator walks keys sharing a prefix in ascending key order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

type batchOp struct {
	key   []byte
	value []byte
}

// Batch stages writes to be committed atomically.
type Batch struct {
	ops []batchOp
}

func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) Put(key, value []byte) {
	k := make([]byte, len(key))
	copy(k, key)
	v := make([]byte, len(value))
	copy(v, value)
	b.ops = append(b.ops, batchOp{key: k, value: v})
}

func (b *Batch) Len() int {
	return len(b.ops)
}

// Get returns the staged value for key, for read-your-writes inside a
// transaction. Later puts shadow earlier ones.
func (b *Batch) Get(key []byte) ([]byte, bool) {
	for i := len(b.ops) - 1; i >= 0; i-- {
		if string(b.ops[i].key) == string(key) {
			return b.ops[i].value, true
		}
	}
	return nil, false
}
