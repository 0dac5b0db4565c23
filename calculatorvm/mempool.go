// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculatorvm

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/snow/engine/common"
)

var (
	errMempoolFull = errors.New("mempool is full")
	errDuplicateTx = errors.New("tx is already in the mempool")
)

// mempool is a bounded FIFO of txs waiting to be put into a block.
// It is only accessed while holding the context lock.
type mempool struct {
	toEngine chan<- common.Message
	maxSize  int

	txs     []*Tx
	pending map[ids.ID]struct{}
}

func newMempool(toEngine chan<- common.Message, maxSize int) *mempool {
	return &mempool{
		toEngine: toEngine,
		maxSize:  maxSize,
		pending:  make(map[ids.ID]struct{}),
	}
}

// Add queues [tx] and notifies the consensus engine that a block can be built
func (m *mempool) Add(tx *Tx) error {
	txID := tx.ID()
	if _, ok := m.pending[txID]; ok {
		return fmt.Errorf("%w: %s", errDuplicateTx, txID)
	}
	if len(m.txs) >= m.maxSize {
		return fmt.Errorf("failed to add tx %s to mempool due to full at size (%d): %w", txID, m.maxSize, errMempoolFull)
	}

	m.txs = append(m.txs, tx)
	m.pending[txID] = struct{}{}
	m.notifyBlockReady()
	return nil
}

// Pop removes and returns the oldest tx
func (m *mempool) Pop() (*Tx, bool) {
	if len(m.txs) == 0 {
		return nil, false
	}
	tx := m.txs[0]
	m.txs[0] = nil
	m.txs = m.txs[1:]
	delete(m.pending, tx.ID())
	return tx, true
}

func (m *mempool) Len() int {
	return len(m.txs)
}

// notifyBlockReady tells the consensus engine that a new block
// is ready to be created
func (m *mempool) notifyBlockReady() {
	select {
	case m.toEngine <- common.PendingTxs:
	default:
		// the engine already has a pending notification
	}
}
