package ledger

import (
	"github.com/medichain/ledger-api/internal/kvstore"
	"github.com/medichain/ledger-api/internal/model"
)

// Tx stages the writes of a single ledger operation. The batch is committed
// atomically only when the operation callback returns nil, so a failed
// precondition can never leave a partial write behind.
//
// Meta writes are additionally staged on the Tx itself so that later writes
// in the same operation see earlier ones; the ledger's in-memory copies
// refresh only after commit.
type Tx struct {
	batch    *kvstore.Batch
	counters map[byte]uint64
	onCommit []func()

	fees        *model.Fees
	users       map[string]bool
	credentials map[string]string
}

func newTx() *Tx {
	return &Tx{
		batch:    kvstore.NewBatch(),
		counters: make(map[byte]uint64),
	}
}

// OnCommit registers a hook that runs after the batch is durably written.
// Used for post-commit side effects like broker publishes and cache updates.
func (tx *Tx) OnCommit(fn func()) {
	tx.onCommit = append(tx.onCommit, fn)
}
