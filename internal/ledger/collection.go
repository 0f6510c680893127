package ledger

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/medichain/ledger-api/internal/kvstore"
	"github.com/medichain/ledger-api/internal/model"
	"github.com/medichain/ledger-api/pkg/errors"
)

// Key layout: records live under a single collection prefix byte followed by
// the big-endian id, so prefix iteration yields insertion order. Counters
// live in a separate keyspace to stay out of record scans.
const (
	keyspaceMeta    byte = 0x10
	keyspaceCounter byte = 0x11
)

type entityPtr[T any] interface {
	*T
	model.Entity
}

// Collection is the ID-keyed record store for one entity type. Ids are
// assigned by a monotonically increasing counter and never reused; there is
// no delete operation.
type Collection[T any, PT entityPtr[T]] struct {
	store  kvstore.Store
	prefix byte
	name   string
}

func newCollection[T any, PT entityPtr[T]](store kvstore.Store, prefix byte, name string) *Collection[T, PT] {
	return &Collection[T, PT]{store: store, prefix: prefix, name: name}
}

func (c *Collection[T, PT]) recordKey(id uint64) []byte {
	key := make([]byte, 9)
	key[0] = c.prefix
	binary.BigEndian.PutUint64(key[1:], id)
	return key
}

func (c *Collection[T, PT]) counterKey() []byte {
	return []byte{keyspaceCounter, c.prefix}
}

func (c *Collection[T, PT]) nextID(tx *Tx) (uint64, error) {
	if next, ok := tx.counters[c.prefix]; ok {
		return next, nil
	}
	data, err := c.store.Get(c.counterKey())
	if err == kvstore.ErrKeyNotFound {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s counter: %w", c.name, err)
	}
	return binary.BigEndian.Uint64(data), nil
}

func (c *Collection[T, PT]) putCounter(tx *Tx, next uint64) {
	tx.counters[c.prefix] = next
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	tx.batch.Put(c.counterKey(), buf)
}

// Insert assigns the next fresh id and stages the record.
func (c *Collection[T, PT]) Insert(tx *Tx, v PT) (uint64, error) {
	id, err := c.nextID(tx)
	if err != nil {
		return 0, err
	}
	v.SetEntityID(id)
	if err := c.put(tx, id, v); err != nil {
		return 0, err
	}
	c.putCounter(tx, id+1)
	return id, nil
}

// InsertWithID stores a record under a caller-supplied id, failing on
// collision. The counter is bumped past the id so later inserts stay fresh.
func (c *Collection[T, PT]) InsertWithID(tx *Tx, id uint64, v PT) error {
	if id == 0 {
		return errors.InvalidArgument(fmt.Sprintf("%s id must be positive", c.name), nil)
	}
	exists, err := c.has(tx, id)
	if err != nil {
		return err
	}
	if exists {
		return errors.DuplicateID(c.name, id)
	}
	v.SetEntityID(id)
	if err := c.put(tx, id, v); err != nil {
		return err
	}
	next, err := c.nextID(tx)
	if err != nil {
		return err
	}
	if id >= next {
		c.putCounter(tx, id+1)
	}
	return nil
}

// Update rewrites an existing record in place.
func (c *Collection[T, PT]) Update(tx *Tx, v PT) error {
	id := v.EntityID()
	exists, err := c.has(tx, id)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NotFound(c.name, nil)
	}
	return c.put(tx, id, v)
}

func (c *Collection[T, PT]) put(tx *Tx, id uint64, v PT) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s %d: %w", c.name, id, err)
	}
	tx.batch.Put(c.recordKey(id), data)
	return nil
}

func (c *Collection[T, PT]) has(tx *Tx, id uint64) (bool, error) {
	if tx != nil {
		if _, ok := tx.batch.Get(c.recordKey(id)); ok {
			return true, nil
		}
	}
	ok, err := c.store.Has(c.recordKey(id))
	if err != nil {
		return false, fmt.Errorf("failed to probe %s %d: %w", c.name, id, err)
	}
	return ok, nil
}

// Get is a point lookup by id.
func (c *Collection[T, PT]) Get(id uint64) (PT, error) {
	data, err := c.store.Get(c.recordKey(id))
	if err == kvstore.ErrKeyNotFound {
		return nil, errors.NotFound(c.name, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %d: %w", c.name, id, err)
	}
	v := PT(new(T))
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("failed to decode %s %d: %w", c.name, id, err)
	}
	return v, nil
}

// List returns a full snapshot in insertion order.
func (c *Collection[T, PT]) List() ([]PT, error) {
	return c.Filter(func(PT) bool { return true })
}

// Filter returns records matching pred, preserving insertion order.
func (c *Collection[T, PT]) Filter(pred func(PT) bool) ([]PT, error) {
	it := c.store.NewIterator([]byte{c.prefix})
	defer it.Release()

	out := make([]PT, 0)
	for it.Next() {
		v := PT(new(T))
		if err := json.Unmarshal(it.Value(), v); err != nil {
			return nil, fmt.Errorf("failed to decode %s record: %w", c.name, err)
		}
		if pred(v) {
			out = append(out, v)
		}
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", c.name, err)
	}
	return out, nil
}
