// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculatorvm

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/calculatorvm/calculator"
)

const (
	// MaxAccountSpace is the largest data allocation an account may have
	MaxAccountSpace = 1024
	// MaxInstructionLen is the largest instruction payload an InvokeTx may carry
	MaxInstructionLen = 1024
	// MaxInvokeAccounts is the most accounts an InvokeTx may reference
	MaxInvokeAccounts = 16
)

var (
	errNilTx               = errors.New("nil tx")
	errEmptyAccountID      = errors.New("account ID is empty")
	errAccountTooLarge     = errors.New("account space exceeds maximum")
	errAccountExists       = errors.New("account already exists")
	errUnknownAccount      = errors.New("unknown account")
	errDuplicateAccount    = errors.New("account referenced more than once")
	errTooManyAccounts     = errors.New("too many accounts referenced")
	errInstructionTooLarge = errors.New("instruction data exceeds maximum")

	_ UnsignedTx = &CreateAccountTx{}
	_ UnsignedTx = &InvokeTx{}
)

// UnsignedTx is the content of a transaction
type UnsignedTx interface {
	// SyntacticVerify checks the tx without looking at chain state.
	SyntacticVerify() error

	// Execute applies the tx to [accounts] on behalf of the chain's program
	// [programID]. If an error is returned, [accounts] is unchanged.
	Execute(programID ids.ID, accounts AccountState) error
}

// Tx is a transaction included in a block
type Tx struct {
	UnsignedTx `serialize:"true" json:"unsignedTx"`

	id    ids.ID
	bytes []byte
}

// NewTx wraps [utx] and computes its ID
func NewTx(utx UnsignedTx) (*Tx, error) {
	tx := &Tx{UnsignedTx: utx}
	return tx, tx.initialize()
}

// ParseTx parses the byte repr. of a tx
func ParseTx(b []byte) (*Tx, error) {
	tx := &Tx{}
	if _, err := Codec.Unmarshal(b, tx); err != nil {
		return nil, err
	}
	tx.bytes = b
	tx.id = hashing.ComputeHash256Array(b)
	return tx, nil
}

func (tx *Tx) initialize() error {
	if tx.UnsignedTx == nil {
		return errNilTx
	}
	bytes, err := Codec.Marshal(CodecVersion, tx)
	if err != nil {
		return fmt.Errorf("couldn't marshal tx: %w", err)
	}
	tx.bytes = bytes
	tx.id = hashing.ComputeHash256Array(bytes)
	return nil
}

// ID returns the hash of the tx's bytes
func (tx *Tx) ID() ids.ID { return tx.id }

// Bytes returns the byte repr. of the tx
func (tx *Tx) Bytes() []byte { return tx.bytes }

// CreateAccountTx allocates a zeroed account of [Space] bytes owned by [Owner]
type CreateAccountTx struct {
	Account ids.ID `serialize:"true" json:"account"`
	Owner   ids.ID `serialize:"true" json:"owner"`
	Space   uint32 `serialize:"true" json:"space"`
}

func (tx *CreateAccountTx) SyntacticVerify() error {
	switch {
	case tx.Account == ids.Empty:
		return errEmptyAccountID
	case tx.Space > MaxAccountSpace:
		return fmt.Errorf("%w: %d > %d", errAccountTooLarge, tx.Space, MaxAccountSpace)
	default:
		return nil
	}
}

func (tx *CreateAccountTx) Execute(_ ids.ID, accounts AccountState) error {
	exists, err := accounts.HasAccount(tx.Account)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", errAccountExists, tx.Account)
	}
	return accounts.PutAccount(tx.Account, &Account{
		Owner: tx.Owner,
		Data:  make([]byte, tx.Space),
	})
}

// InvokeTx runs the chain's program with [Accounts] and instruction [Data]
type InvokeTx struct {
	Accounts []ids.ID `serialize:"true" json:"accounts"`
	Data     []byte   `serialize:"true" json:"data"`
}

func (tx *InvokeTx) SyntacticVerify() error {
	if len(tx.Accounts) > MaxInvokeAccounts {
		return fmt.Errorf("%w: %d > %d", errTooManyAccounts, len(tx.Accounts), MaxInvokeAccounts)
	}
	if len(tx.Data) > MaxInstructionLen {
		return fmt.Errorf("%w: %d > %d", errInstructionTooLarge, len(tx.Data), MaxInstructionLen)
	}
	seen := make(map[ids.ID]struct{}, len(tx.Accounts))
	for _, accountID := range tx.Accounts {
		if _, ok := seen[accountID]; ok {
			return fmt.Errorf("%w: %s", errDuplicateAccount, accountID)
		}
		seen[accountID] = struct{}{}
	}
	return nil
}

func (tx *InvokeTx) Execute(programID ids.ID, accounts AccountState) error {
	infos := make([]*calculator.AccountInfo, len(tx.Accounts))
	for i, accountID := range tx.Accounts {
		account, err := accounts.GetAccount(accountID)
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w: %s", errUnknownAccount, accountID)
		}
		if err != nil {
			return err
		}
		infos[i] = &calculator.AccountInfo{
			Key:   accountID,
			Owner: account.Owner,
			Data:  account.Data,
		}
	}

	if err := calculator.ProcessInstruction(programID, infos, tx.Data); err != nil {
		return err
	}

	for _, info := range infos {
		if err := accounts.PutAccount(info.Key, &Account{Owner: info.Owner, Data: info.Data}); err != nil {
			return err
		}
	}
	return nil
}
