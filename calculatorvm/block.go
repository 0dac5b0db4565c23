// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculatorvm

import (
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/snow/choices"
	"github.com/ava-labs/avalanchego/snow/consensus/snowman"
	"github.com/ava-labs/avalanchego/utils/hashing"
)

// Maximum amount of time that a block can be in the future
const futureBlockLimit = time.Hour

var (
	errTimestampTooEarly = errors.New("block's timestamp is earlier than its parent's timestamp")
	errTimestampTooLate  = errors.New("block's timestamp is more than 1 hour ahead of local time")
	errUnknownParent     = errors.New("block's parent is unknown")
	errWrongHeight       = errors.New("block's height isn't its parent's height + 1")
	errEmptyBlock        = errors.New("block contains no transactions")

	_ snowman.Block = &Block{}
)

// Block is a block on the chain.
// Each block contains:
// 1) A timestamp
// 2) A list of transactions executed in order against the chain's accounts
type Block struct {
	PrntID ids.ID `serialize:"true" json:"parentID"`  // parent's ID
	Hght   uint64 `serialize:"true" json:"height"`    // This block's height. The genesis block is at height 0.
	Tmstmp int64  `serialize:"true" json:"timestamp"` // Time this block was proposed at
	Txs    []*Tx  `serialize:"true" json:"txs"`       // Transactions in this block

	id     ids.ID
	bytes  []byte
	status choices.Status
	vm     *VM
}

// parseBlock unmarshals [bytes] without attaching the block to a VM
func parseBlock(bytes []byte) (*Block, error) {
	blk := &Block{}
	if _, err := Codec.Unmarshal(bytes, blk); err != nil {
		return nil, err
	}
	for _, tx := range blk.Txs {
		if err := tx.initialize(); err != nil {
			return nil, err
		}
	}
	return blk, nil
}

func (b *Block) initialize(bytes []byte, status choices.Status, vm *VM) {
	b.bytes = bytes
	b.id = hashing.ComputeHash256Array(b.bytes)
	b.status = status
	b.vm = vm
}

// Verify returns nil iff this block is valid.
// To be valid, it must be that:
// b.parent.Timestamp <= b.Timestamp < [local time] + 1 hour
// b.parent.Height + 1 == b.Height
// every tx in the block executes successfully on top of the parent's state
func (b *Block) Verify() error {
	parent, err := b.vm.getBlock(b.PrntID)
	if err != nil {
		return fmt.Errorf("%w: %s", errUnknownParent, b.PrntID)
	}

	if expectedHeight := parent.Hght + 1; b.Hght != expectedHeight {
		return fmt.Errorf("%w: expected %d, found %d", errWrongHeight, expectedHeight, b.Hght)
	}

	// Ensure [b]'s timestamp is after its parent's timestamp.
	if b.Tmstmp < parent.Tmstmp {
		return errTimestampTooEarly
	}

	// Ensure [b]'s timestamp is not more than an hour
	// ahead of this node's time
	if b.Tmstmp >= b.vm.clock.Time().Add(futureBlockLimit).Unix() {
		return errTimestampTooLate
	}

	if len(b.Txs) == 0 {
		return errEmptyBlock
	}
	for _, tx := range b.Txs {
		if err := tx.SyntacticVerify(); err != nil {
			return fmt.Errorf("tx %s is invalid: %w", tx.ID(), err)
		}
	}

	// Execute on a throwaway view of the parent's state
	view, err := b.vm.accountView(b.PrntID)
	if err != nil {
		return err
	}
	defer view.Abort()

	if err := b.execute(NewAccountState(view, 0)); err != nil {
		return err
	}

	b.vm.verifiedBlocks[b.ID()] = b
	return nil
}

// execute applies the block's transactions to [accounts] in order
func (b *Block) execute(accounts AccountState) error {
	for _, tx := range b.Txs {
		if err := tx.Execute(b.vm.programID, accounts); err != nil {
			return fmt.Errorf("tx %s failed: %w", tx.ID(), err)
		}
	}
	return nil
}

// Accept sets this block's status to Accepted and applies it to the chain state
func (b *Block) Accept() error {
	b.status = choices.Accepted
	return b.vm.acceptBlock(b)
}

// Reject sets this block's status to Rejected and saves the status in state
func (b *Block) Reject() error {
	b.status = choices.Rejected
	delete(b.vm.verifiedBlocks, b.ID())
	if err := b.vm.state.PutBlock(b); err != nil {
		b.vm.state.Abort()
		return err
	}
	return b.vm.state.Commit()
}

// ID returns the ID of this block
func (b *Block) ID() ids.ID { return b.id }

// Parent returns [b]'s parent's ID
func (b *Block) Parent() ids.ID { return b.PrntID }

// Height returns this block's height. The genesis block has height 0.
func (b *Block) Height() uint64 { return b.Hght }

// Timestamp returns this block's time. The genesis block has time 0.
func (b *Block) Timestamp() time.Time { return time.Unix(b.Tmstmp, 0) }

// Status returns the status of this block
func (b *Block) Status() choices.Status { return b.status }

// Bytes returns the byte repr. of this block
func (b *Block) Bytes() []byte { return b.bytes }
