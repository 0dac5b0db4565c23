// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculatorvm

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/snow"
	"github.com/ava-labs/avalanchego/vms"
)

// ID is a unique identifier for this VM.
// Unless the genesis says otherwise, it is also the ID of the chain's program.
var (
	ID             = ids.ID{'c', 'a', 'l', 'c', 'u', 'l', 'a', 't', 'o', 'r'}
	_  vms.Factory = &Factory{}
)

// Factory ...
type Factory struct{}

// New ...
func (f *Factory) New(*snow.Context) (interface{}, error) { return &VM{}, nil }
