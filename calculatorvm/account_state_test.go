// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculatorvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
)

func TestAccountState(t *testing.T) {
	for _, cacheSize := range []int{0, 16} {
		db := memdb.New()
		accounts := NewAccountState(db, cacheSize)

		_, err := accounts.GetAccount(testAccountID)
		assert.ErrorIs(t, err, database.ErrNotFound)
		has, err := accounts.HasAccount(testAccountID)
		require.NoError(t, err)
		assert.False(t, has)

		account := &Account{Owner: testProgramID, Data: []byte{0, 0, 0, 1}}
		require.NoError(t, accounts.PutAccount(testAccountID, account))

		// the caller keeps ownership of what it passed in
		account.Data[3] = 2
		stored, err := accounts.GetAccount(testAccountID)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 0, 0, 1}, stored.Data)

		// and of what it got back
		stored.Data[3] = 3
		stored, err = accounts.GetAccount(testAccountID)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 0, 0, 1}, stored.Data)

		has, err = accounts.HasAccount(testAccountID)
		require.NoError(t, err)
		assert.True(t, has)

		// a fresh state over the same database sees the account
		reloaded, err := NewAccountState(db, cacheSize).GetAccount(testAccountID)
		require.NoError(t, err)
		assert.Equal(t, testProgramID, reloaded.Owner)
		assert.Equal(t, []byte{0, 0, 0, 1}, reloaded.Data)
	}
}

func TestAccountStateCachesMisses(t *testing.T) {
	db := memdb.New()
	accounts := NewAccountState(db, 16)

	_, err := accounts.GetAccount(testAccountID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	// written behind the cache's back
	require.NoError(t, NewAccountState(db, 0).PutAccount(testAccountID, &Account{Owner: testProgramID}))
	_, err = accounts.GetAccount(testAccountID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	accounts.ClearCache()
	account, err := accounts.GetAccount(testAccountID)
	require.NoError(t, err)
	assert.Equal(t, testProgramID, account.Owner)
}
