// Copyright (C) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculatorvm

import (
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/database/versiondb"
)

var (
	// These are prefixes for db keys.
	// It's important to set different prefixes for each separate database objects.
	singletonStatePrefix = []byte("singleton")
	blockStatePrefix     = []byte("block")
	accountStatePrefix   = []byte("account")

	_ State = &state{}
)

// State is a wrapper around SingletonState, BlockState and AccountState.
// State also exposes a few methods needed for managing database commits and close.
type State interface {
	SingletonState
	BlockState
	AccountState

	// AccountDB is the account database without caching in front of it.
	// It's the base of speculative execution.
	AccountDB() database.Database

	Commit() error
	Abort()
	Close() error
}

type state struct {
	SingletonState
	BlockState
	AccountState

	accountDB database.Database
	baseDB    *versiondb.Database
}

func NewState(db database.Database, vm *VM, accountCacheSize int) State {
	// create a new baseDB
	baseDB := versiondb.New(db)

	// create the prefixed databases from baseDB
	singletonDB := prefixdb.New(singletonStatePrefix, baseDB)
	blockDB := prefixdb.New(blockStatePrefix, baseDB)
	accountDB := prefixdb.New(accountStatePrefix, baseDB)

	// return state with created sub state components
	return &state{
		SingletonState: NewSingletonState(singletonDB),
		BlockState:     NewBlockState(blockDB, vm),
		AccountState:   NewAccountState(accountDB, accountCacheSize),
		accountDB:      accountDB,
		baseDB:         baseDB,
	}
}

func (s *state) AccountDB() database.Database {
	return s.accountDB
}

// Commit commits pending operations to baseDB
func (s *state) Commit() error {
	return s.baseDB.Commit()
}

// Abort drops pending operations and everything cached since they were made
func (s *state) Abort() {
	s.baseDB.Abort()
	s.ClearCache()
}

func (s *state) ClearCache() {
	s.BlockState.ClearCache()
	s.AccountState.ClearCache()
}

// Close closes the underlying base database
func (s *state) Close() error {
	return s.baseDB.Close()
}
