// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/utils/json"
	"github.com/ava-labs/avalanchego/utils/rpc"

	"github.com/ava-labs/calculatorvm/calculator"
	"github.com/ava-labs/calculatorvm/calculatorvm"
)

// Client defines calculatorvm client operations.
type Client interface {
	// CreateAccount issues a tx allocating [space] zeroed bytes at [account]
	// owned by [owner]. A nil [owner] defaults to the chain's program.
	CreateAccount(ctx context.Context, account ids.ID, owner *ids.ID, space uint32) (ids.ID, error)

	// Calculate issues a tx storing the result of [inst] in [account]
	Calculate(ctx context.Context, account ids.ID, inst calculator.Instruction) (ids.ID, error)

	// Invoke issues a tx running the chain's program with raw instruction data
	Invoke(ctx context.Context, accounts []ids.ID, data []byte) (ids.ID, error)

	// GetAccount fetches the owner and data of an account
	GetAccount(ctx context.Context, account ids.ID) (ids.ID, []byte, error)

	// GetResult fetches the result stored in a calculator account
	GetResult(ctx context.Context, account ids.ID) (uint32, error)

	// GetBlock fetches the contents of a block
	GetBlock(ctx context.Context, blockID *ids.ID) (*calculatorvm.GetBlockReply, error)
}

// New creates a new client object.
func New(uri string) Client {
	req := rpc.NewEndpointRequester(uri, "", calculatorvm.Name)
	return &client{req: req}
}

type client struct {
	req rpc.EndpointRequester
}

func (cli *client) CreateAccount(ctx context.Context, account ids.ID, owner *ids.ID, space uint32) (ids.ID, error) {
	jsonSpace := json.Uint32(space)
	resp := new(calculatorvm.IssueTxReply)
	err := cli.req.SendRequest(ctx,
		"createAccount",
		&calculatorvm.CreateAccountArgs{
			Account: account,
			Owner:   owner,
			Space:   &jsonSpace,
		},
		resp,
	)
	return resp.TxID, err
}

func (cli *client) Calculate(ctx context.Context, account ids.ID, inst calculator.Instruction) (ids.ID, error) {
	resp := new(calculatorvm.IssueTxReply)
	err := cli.req.SendRequest(ctx,
		"calculate",
		&calculatorvm.CalculateArgs{
			Account:   account,
			Operation: json.Uint32(inst.Operation),
			First:     json.Uint32(inst.First),
			Second:    json.Uint32(inst.Second),
		},
		resp,
	)
	return resp.TxID, err
}

func (cli *client) Invoke(ctx context.Context, accounts []ids.ID, data []byte) (ids.ID, error) {
	bytes, err := formatting.EncodeWithChecksum(formatting.Hex, data)
	if err != nil {
		return ids.Empty, err
	}

	resp := new(calculatorvm.IssueTxReply)
	err = cli.req.SendRequest(ctx,
		"invoke",
		&calculatorvm.InvokeArgs{
			Accounts: accounts,
			Data:     bytes,
		},
		resp,
	)
	return resp.TxID, err
}

func (cli *client) GetAccount(ctx context.Context, account ids.ID) (ids.ID, []byte, error) {
	resp := new(calculatorvm.GetAccountReply)
	err := cli.req.SendRequest(ctx,
		"getAccount",
		&calculatorvm.GetAccountArgs{Account: account},
		resp,
	)
	if err != nil {
		return ids.Empty, nil, err
	}
	bytes, err := formatting.Decode(formatting.Hex, resp.Data)
	if err != nil {
		return ids.Empty, nil, err
	}
	return resp.Owner, bytes, nil
}

func (cli *client) GetResult(ctx context.Context, account ids.ID) (uint32, error) {
	_, data, err := cli.GetAccount(ctx, account)
	if err != nil {
		return 0, err
	}
	state, err := calculator.ParseCalculatorAccount(data)
	if err != nil {
		return 0, err
	}
	return state.Result, nil
}

func (cli *client) GetBlock(ctx context.Context, blockID *ids.ID) (*calculatorvm.GetBlockReply, error) {
	resp := new(calculatorvm.GetBlockReply)
	err := cli.req.SendRequest(ctx,
		"getBlock",
		&calculatorvm.GetBlockArgs{ID: blockID},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
