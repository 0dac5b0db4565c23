// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculatorvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/utils/json"
)

func TestServiceCalculate(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	vm, _, msgChan, err := newTestVM()
	require.NoError(err)
	service := Service{vm}

	reply := IssueTxReply{}
	require.NoError(service.Calculate(nil, &CalculateArgs{
		Account:   testAccountID,
		Operation: 0,
		First:     5,
		Second:    8,
	}, &reply))
	assert.NotEqual(ids.Empty, reply.TxID)

	blk := buildAndAccept(t, vm, msgChan)
	require.Len(blk.Txs, 1)
	assert.Equal(reply.TxID, blk.Txs[0].ID())

	accountReply := GetAccountReply{}
	require.NoError(service.GetAccount(nil, &GetAccountArgs{Account: testAccountID}, &accountReply))
	assert.Equal(testProgramID, accountReply.Owner)
	require.NotNil(accountReply.Result)
	assert.EqualValues(13, *accountReply.Result)

	data, err := formatting.Decode(formatting.Hex, accountReply.Data)
	require.NoError(err)
	assert.Equal([]byte{0, 0, 0, 13}, data)

	blockReply := GetBlockReply{}
	require.NoError(service.GetBlock(nil, &GetBlockArgs{}, &blockReply))
	assert.Equal(blk.ID(), blockReply.ID)
	assert.Equal(blk.Parent(), blockReply.ParentID)
	assert.EqualValues(1, blockReply.Height)
	assert.Equal([]ids.ID{reply.TxID}, blockReply.TxIDs)
}

func TestServiceCalculateOperandOutOfRange(t *testing.T) {
	vm, _, _, err := newTestVM()
	require.NoError(t, err)
	service := Service{vm}

	err = service.Calculate(nil, &CalculateArgs{
		Account:   testAccountID,
		Operation: 0,
		First:     256,
		Second:    1,
	}, &IssueTxReply{})
	assert.ErrorIs(t, err, errOperandOutOfRange)
	assert.Zero(t, vm.mempool.Len())
}

func TestServiceCreateAccountAndInvoke(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	vm, _, msgChan, err := newTestVM()
	require.NoError(err)
	service := Service{vm}

	newAccountID := ids.ID{'n', 'e', 'w'}
	require.NoError(service.CreateAccount(nil, &CreateAccountArgs{Account: newAccountID}, &IssueTxReply{}))

	data, err := formatting.EncodeWithChecksum(formatting.Hex, []byte{0, 200, 100})
	require.NoError(err)
	require.NoError(service.Invoke(nil, &InvokeArgs{
		Accounts: []ids.ID{newAccountID},
		Data:     data,
	}, &IssueTxReply{}))

	buildAndAccept(t, vm, msgChan)

	accountReply := GetAccountReply{}
	require.NoError(service.GetAccount(nil, &GetAccountArgs{Account: newAccountID}, &accountReply))
	assert.Equal(testProgramID, accountReply.Owner)
	require.NotNil(accountReply.Result)
	assert.EqualValues(300, *accountReply.Result)
}

func TestServiceCreateAccountWithOwnerAndSpace(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	vm, _, msgChan, err := newTestVM()
	require.NoError(err)
	service := Service{vm}

	newAccountID := ids.ID{'n', 'e', 'w'}
	space := json.Uint32(8)
	require.NoError(service.CreateAccount(nil, &CreateAccountArgs{
		Account: newAccountID,
		Owner:   &foreignOwner,
		Space:   &space,
	}, &IssueTxReply{}))
	buildAndAccept(t, vm, msgChan)

	accountReply := GetAccountReply{}
	require.NoError(service.GetAccount(nil, &GetAccountArgs{Account: newAccountID}, &accountReply))
	assert.Equal(foreignOwner, accountReply.Owner)
	// not a calculator account
	assert.Nil(accountReply.Result)

	data, err := formatting.Decode(formatting.Hex, accountReply.Data)
	require.NoError(err)
	assert.Equal(make([]byte, 8), data)
}

func TestServiceRejectsInvalidTxs(t *testing.T) {
	vm, _, _, err := newTestVM()
	require.NoError(t, err)
	service := Service{vm}

	space := json.Uint32(MaxAccountSpace + 1)
	err = service.CreateAccount(nil, &CreateAccountArgs{
		Account: ids.ID{'b', 'i', 'g'},
		Space:   &space,
	}, &IssueTxReply{})
	assert.ErrorIs(t, err, errAccountTooLarge)

	err = service.CreateAccount(nil, &CreateAccountArgs{}, &IssueTxReply{})
	assert.ErrorIs(t, err, errEmptyAccountID)

	data, err := formatting.EncodeWithChecksum(formatting.Hex, []byte{0, 1, 2})
	require.NoError(t, err)
	err = service.Invoke(nil, &InvokeArgs{
		Accounts: []ids.ID{testAccountID, testAccountID},
		Data:     data,
	}, &IssueTxReply{})
	assert.ErrorIs(t, err, errDuplicateAccount)

	err = service.Invoke(nil, &InvokeArgs{
		Accounts: []ids.ID{testAccountID},
		Data:     "not hex",
	}, &IssueTxReply{})
	assert.Error(t, err)

	assert.Zero(t, vm.mempool.Len())
}

func TestServiceUnknownAccountAndBlock(t *testing.T) {
	vm, _, _, err := newTestVM()
	require.NoError(t, err)
	service := Service{vm}

	err = service.GetAccount(nil, &GetAccountArgs{Account: ids.ID{'n', 'o', 'p', 'e'}}, &GetAccountReply{})
	assert.ErrorIs(t, err, errNoSuchAccount)

	unknownID := ids.ID{'n', 'o', 'p', 'e'}
	err = service.GetBlock(nil, &GetBlockArgs{ID: &unknownID}, &GetBlockReply{})
	assert.ErrorIs(t, err, errNoSuchBlock)
}

func TestServiceGetAccountDatabaseError(t *testing.T) {
	vm, _, _, err := newTestVM()
	require.NoError(t, err)
	service := Service{vm}
	require.NoError(t, vm.Shutdown())

	err = service.GetAccount(nil, &GetAccountArgs{Account: ids.ID{'n', 'o', 'p', 'e'}}, &GetAccountReply{})
	assert.ErrorIs(t, err, database.ErrClosed)
	assert.NotErrorIs(t, err, errNoSuchAccount)
}

func TestStaticService(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	service := CreateStaticService()

	encoded := EncodeInstructionReply{}
	require.NoError(service.EncodeInstruction(nil, &EncodeInstructionArgs{
		Operation: 1,
		First:     8,
		Second:    5,
	}, &encoded))

	bytes, err := formatting.Decode(formatting.Hex, encoded.Bytes)
	require.NoError(err)
	assert.Equal([]byte{1, 8, 5}, bytes)

	decoded := DecodeInstructionReply{}
	require.NoError(service.DecodeInstruction(nil, &DecodeInstructionArgs{Bytes: encoded.Bytes}, &decoded))
	assert.EqualValues(1, decoded.Operation)
	assert.Equal("subtract", decoded.OperationName)
	assert.EqualValues(8, decoded.First)
	assert.EqualValues(5, decoded.Second)

	err = service.EncodeInstruction(nil, &EncodeInstructionArgs{Operation: 300}, &EncodeInstructionReply{})
	assert.ErrorIs(err, errOperandOutOfRange)

	short, err := formatting.EncodeWithChecksum(formatting.Hex, []byte{1, 8})
	require.NoError(err)
	err = service.DecodeInstruction(nil, &DecodeInstructionArgs{Bytes: short}, &DecodeInstructionReply{})
	assert.Error(err)
}
