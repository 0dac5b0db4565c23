// Copyright (C) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculatorvm

import (
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
)

const (
	IsInitializedKey byte = iota
	LastAcceptedKey
)

var (
	isInitializedKey                = []byte{IsInitializedKey}
	lastAcceptedKey                 = []byte{LastAcceptedKey}
	_                SingletonState = (*singletonState)(nil)
)

// SingletonState is a thin wrapper around a database to provide
// serialization and de-serialization of the chain's singletons:
// the initialization status and the last accepted block ID.
type SingletonState interface {
	IsInitialized() (bool, error)
	SetInitialized() error

	GetLastAccepted() (ids.ID, error)
	SetLastAccepted(ids.ID) error
}

type singletonState struct {
	singletonDB database.Database
}

func NewSingletonState(db database.Database) SingletonState {
	return &singletonState{
		singletonDB: db,
	}
}

func (s *singletonState) IsInitialized() (bool, error) {
	return s.singletonDB.Has(isInitializedKey)
}

func (s *singletonState) SetInitialized() error {
	return s.singletonDB.Put(isInitializedKey, nil)
}

func (s *singletonState) GetLastAccepted() (ids.ID, error) {
	lastAcceptedBytes, err := s.singletonDB.Get(lastAcceptedKey)
	if err != nil {
		return ids.Empty, err
	}
	return ids.ToID(lastAcceptedBytes)
}

func (s *singletonState) SetLastAccepted(lastAccepted ids.ID) error {
	return s.singletonDB.Put(lastAcceptedKey, lastAccepted[:])
}
