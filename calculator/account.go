// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculator

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/wrappers"
)

// AccountLen is the exact length of the data held by a calculator account.
const AccountLen = wrappers.IntLen

// CalculatorAccount is the state stored in accounts owned by the program.
type CalculatorAccount struct {
	// Result of the last calculation
	Result uint32
}

// ParseCalculatorAccount decodes the account state held in [data]. The data
// must be exactly [AccountLen] bytes long.
func ParseCalculatorAccount(data []byte) (*CalculatorAccount, error) {
	p := wrappers.Packer{Bytes: data}
	acc := &CalculatorAccount{
		Result: p.UnpackInt(),
	}
	if p.Errored() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccountData, p.Err)
	}
	if p.Offset != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidAccountData, len(data)-p.Offset)
	}
	return acc, nil
}

// Bytes returns the encoded account state.
func (a *CalculatorAccount) Bytes() []byte {
	p := wrappers.Packer{MaxSize: AccountLen}
	p.PackInt(a.Result)
	return p.Bytes
}

// Serialize writes the encoded account state over the start of [dst].
// [dst] is left untouched if it can't hold the encoding.
func (a *CalculatorAccount) Serialize(dst []byte) error {
	if len(dst) < AccountLen {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrAccountDataTooSmall, AccountLen, len(dst))
	}
	copy(dst, a.Bytes())
	return nil
}
