// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculatorvm

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/calculatorvm/calculator"
)

var (
	errNoSuchBlock           = errors.New("couldn't get block from database. Does it exist?")
	errNoSuchAccount         = errors.New("couldn't get account from database. Does it exist?")
	errCannotGetLastAccepted = errors.New("problem getting last accepted")
	errOperandOutOfRange     = errors.New("operand must fit in a byte")
)

// Service is the API service for this VM
type Service struct{ vm *VM }

// IssueTxReply is the reply from the methods that issue a tx
type IssueTxReply struct {
	// ID of the issued tx
	TxID ids.ID `json:"txID"`
}

// CreateAccountArgs are the arguments to CreateAccount
type CreateAccountArgs struct {
	Account ids.ID `json:"account"`
	// Defaults to the chain's program
	Owner *ids.ID `json:"owner"`
	// Defaults to the size of a calculator account
	Space *json.Uint32 `json:"space"`
}

// CreateAccount is an API method to issue a tx allocating a zeroed account
func (s *Service) CreateAccount(_ *http.Request, args *CreateAccountArgs, reply *IssueTxReply) error {
	utx := &CreateAccountTx{
		Account: args.Account,
		Owner:   s.vm.programID,
		Space:   calculator.AccountLen,
	}
	if args.Owner != nil {
		utx.Owner = *args.Owner
	}
	if args.Space != nil {
		utx.Space = uint32(*args.Space)
	}

	txID, err := s.vm.issueTx(utx)
	if err != nil {
		return fmt.Errorf("couldn't issue tx: %w", err)
	}
	reply.TxID = txID
	return nil
}

// CalculateArgs are the arguments to Calculate
type CalculateArgs struct {
	// Account the result is stored in
	Account   ids.ID      `json:"account"`
	Operation json.Uint32 `json:"operation"`
	First     json.Uint32 `json:"first"`
	Second    json.Uint32 `json:"second"`
}

// Calculate is an API method to issue a tx invoking the chain's program
// on [args.Account] with the instruction described by [args]
func (s *Service) Calculate(_ *http.Request, args *CalculateArgs, reply *IssueTxReply) error {
	inst, err := args.instruction()
	if err != nil {
		return err
	}

	txID, err := s.vm.issueTx(&InvokeTx{
		Accounts: []ids.ID{args.Account},
		Data:     inst.Bytes(),
	})
	if err != nil {
		return fmt.Errorf("couldn't issue tx: %w", err)
	}
	reply.TxID = txID
	return nil
}

func (args *CalculateArgs) instruction() (*calculator.Instruction, error) {
	for _, v := range []json.Uint32{args.Operation, args.First, args.Second} {
		if v > 0xff {
			return nil, fmt.Errorf("%w: %d", errOperandOutOfRange, v)
		}
	}
	return &calculator.Instruction{
		Operation: calculator.Operation(args.Operation),
		First:     uint8(args.First),
		Second:    uint8(args.Second),
	}, nil
}

// InvokeArgs are the arguments to Invoke
type InvokeArgs struct {
	Accounts []ids.ID `json:"accounts"`
	// Instruction data, hex encoded
	Data string `json:"data"`
}

// Invoke is an API method to issue a tx invoking the chain's program with
// arbitrary instruction data
func (s *Service) Invoke(_ *http.Request, args *InvokeArgs, reply *IssueTxReply) error {
	data, err := formatting.Decode(formatting.Hex, args.Data)
	if err != nil {
		return fmt.Errorf("problem decoding data: %w", err)
	}

	txID, err := s.vm.issueTx(&InvokeTx{
		Accounts: args.Accounts,
		Data:     data,
	})
	if err != nil {
		return fmt.Errorf("couldn't issue tx: %w", err)
	}
	reply.TxID = txID
	return nil
}

// GetAccountArgs are the arguments to GetAccount
type GetAccountArgs struct {
	Account ids.ID `json:"account"`
}

// GetAccountReply is the reply from GetAccount
type GetAccountReply struct {
	Owner ids.ID `json:"owner"`
	// Account data, hex encoded
	Data string `json:"data"`
	// Stored result, if the data holds a calculator account
	Result *json.Uint32 `json:"result,omitempty"`
}

// GetAccount gets the accepted state of [args.Account]
func (s *Service) GetAccount(_ *http.Request, args *GetAccountArgs, reply *GetAccountReply) error {
	account, err := s.vm.state.GetAccount(args.Account)
	if err == database.ErrNotFound {
		return errNoSuchAccount
	}
	if err != nil {
		return fmt.Errorf("problem reading account %s: %w", args.Account, err)
	}

	reply.Owner = account.Owner
	reply.Data, err = formatting.EncodeWithChecksum(formatting.Hex, account.Data)
	if err != nil {
		return fmt.Errorf("problem encoding data: %w", err)
	}
	if state, err := calculator.ParseCalculatorAccount(account.Data); err == nil {
		result := json.Uint32(state.Result)
		reply.Result = &result
	}
	return nil
}

// GetBlockArgs are the arguments to GetBlock
type GetBlockArgs struct {
	// ID of the block we're getting.
	// If left blank, gets the latest block
	ID *ids.ID `json:"id"`
}

// GetBlockReply is the reply from GetBlock
type GetBlockReply struct {
	Timestamp json.Uint64 `json:"timestamp"` // Timestamp of block
	Height    json.Uint64 `json:"height"`    // Height of block
	ID        ids.ID      `json:"id"`        // String repr. of ID of block
	ParentID  ids.ID      `json:"parentID"`  // String repr. of ID of block's parent
	TxIDs     []ids.ID    `json:"txIDs"`     // IDs of the txs in the block
}

// GetBlock gets the block whose ID is [args.ID]
// If [args.ID] is empty, get the latest block
func (s *Service) GetBlock(_ *http.Request, args *GetBlockArgs, reply *GetBlockReply) error {
	// If an ID is given, parse its string representation to an ids.ID
	// If no ID is given, ID becomes the ID of last accepted block
	var (
		id  ids.ID
		err error
	)

	if args.ID == nil {
		id, err = s.vm.state.GetLastAccepted()
		if err != nil {
			return errCannotGetLastAccepted
		}
	} else {
		id = *args.ID
	}

	// Get the block from the database
	blk, err := s.vm.getBlock(id)
	if err != nil {
		return errNoSuchBlock
	}

	// Fill out the response with the block's data
	reply.Timestamp = json.Uint64(blk.Timestamp().Unix())
	reply.Height = json.Uint64(blk.Height())
	reply.ID = blk.ID()
	reply.ParentID = blk.Parent()
	reply.TxIDs = make([]ids.ID, len(blk.Txs))
	for i, tx := range blk.Txs {
		reply.TxIDs[i] = tx.ID()
	}
	return nil
}
