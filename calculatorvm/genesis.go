// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculatorvm

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/calculatorvm/calculator"
)

// Genesis is the initial state of a chain
type Genesis struct {
	// Program that owns the chain's calculator accounts
	ProgramID ids.ID
	// Accounts created by the genesis block
	Accounts []*CreateAccountTx
}

// genesisDoc is the serialized form of Genesis. IDs are cb58 strings.
//
//	programID: <id>           # defaults to the VM's ID
//	accounts:
//	  - id: <id>
//	    owner: <id>           # defaults to programID
//	    space: 4              # defaults to the size of a calculator account
type genesisDoc struct {
	ProgramID string              `yaml:"programID"`
	Accounts  []genesisAccountDoc `yaml:"accounts"`
}

type genesisAccountDoc struct {
	ID    string  `yaml:"id"`
	Owner string  `yaml:"owner"`
	Space *uint32 `yaml:"space"`
}

// ParseGenesis parses the genesis bytes, which may be YAML or JSON.
// Empty bytes give a chain without accounts whose program ID is the VM's ID.
func ParseGenesis(b []byte) (*Genesis, error) {
	doc := genesisDoc{}
	if len(b) > 0 {
		if err := unmarshalDocument(b, &doc); err != nil {
			return nil, fmt.Errorf("couldn't parse genesis: %w", err)
		}
	}

	genesis := &Genesis{ProgramID: ID}
	if doc.ProgramID != "" {
		programID, err := ids.FromString(doc.ProgramID)
		if err != nil {
			return nil, fmt.Errorf("invalid genesis programID %q: %w", doc.ProgramID, err)
		}
		genesis.ProgramID = programID
	}

	for i, accDoc := range doc.Accounts {
		accountID, err := ids.FromString(accDoc.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid ID of genesis account %d: %w", i, err)
		}
		owner := genesis.ProgramID
		if accDoc.Owner != "" {
			owner, err = ids.FromString(accDoc.Owner)
			if err != nil {
				return nil, fmt.Errorf("invalid owner of genesis account %s: %w", accountID, err)
			}
		}
		space := uint32(calculator.AccountLen)
		if accDoc.Space != nil {
			space = *accDoc.Space
		}

		tx := &CreateAccountTx{
			Account: accountID,
			Owner:   owner,
			Space:   space,
		}
		if err := tx.SyntacticVerify(); err != nil {
			return nil, fmt.Errorf("invalid genesis account %s: %w", accountID, err)
		}
		genesis.Accounts = append(genesis.Accounts, tx)
	}
	return genesis, nil
}

// txs returns the transactions of the genesis block
func (g *Genesis) txs() ([]*Tx, error) {
	txs := make([]*Tx, 0, len(g.Accounts))
	for _, utx := range g.Accounts {
		tx, err := NewTx(utx)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
