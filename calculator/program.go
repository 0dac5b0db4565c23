// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package calculator implements the calculator program. The program reads an
// instruction, computes a sum or a difference of two bytes and stores the
// result in an account it owns.
package calculator

import (
	"errors"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/avalanchego/ids"
)

var (
	ErrNotEnoughAccountKeys   = errors.New("not enough account keys given to the instruction")
	ErrIncorrectProgramID     = errors.New("account does not have the correct program id")
	ErrInvalidAccountData     = errors.New("invalid account data")
	ErrInvalidInstructionData = errors.New("invalid instruction data")
	ErrAccountDataTooSmall    = errors.New("account data too small for account state")
	ErrArithmeticUnderflow    = errors.New("arithmetic underflow")
)

// AccountInfo is an account handed to the program by the runtime.
// The program may only modify [Data], and only in place.
type AccountInfo struct {
	Key   ids.ID
	Owner ids.ID
	Data  []byte
}

// ProcessInstruction is the program's entrypoint.
//
// The first of [accounts] must be owned by [programID]. Its data is replaced
// by the result of the instruction encoded in [data]. If an error is
// returned, no account has been modified.
func ProcessInstruction(programID ids.ID, accounts []*AccountInfo, data []byte) error {
	if len(accounts) == 0 || accounts[0] == nil {
		return ErrNotEnoughAccountKeys
	}
	account := accounts[0]
	if account.Owner != programID {
		log.Warn("account does not have the correct program id",
			"account", account.Key,
			"owner", account.Owner,
			"programID", programID,
		)
		return ErrIncorrectProgramID
	}
	log.Debug("received instruction", "data", data)

	state, err := ParseCalculatorAccount(account.Data)
	if err != nil {
		return err
	}
	inst, err := ParseInstruction(data)
	if err != nil {
		return err
	}
	result, err := inst.Evaluate()
	if err != nil {
		return err
	}

	state.Result = result
	if err := state.Serialize(account.Data); err != nil {
		return err
	}

	log.Debug("calculated result", "account", account.Key, "result", state.Result)
	return nil
}
