// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculatorvm

import (
	"errors"

	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
)

var (
	errAccountWrongVersion = errors.New("wrong account version")

	_ AccountState = &accountState{}
)

// Account is the record the runtime keeps for every account
type Account struct {
	// Program allowed to modify [Data]
	Owner ids.ID `serialize:"true" json:"owner"`
	Data  []byte `serialize:"true" json:"data"`
}

func (a *Account) clone() *Account {
	return &Account{
		Owner: a.Owner,
		Data:  append([]byte(nil), a.Data...),
	}
}

// AccountState persists accounts keyed by their ID.
// Returned accounts are copies and may be modified freely.
type AccountState interface {
	GetAccount(accountID ids.ID) (*Account, error)
	PutAccount(accountID ids.ID, account *Account) error
	HasAccount(accountID ids.ID) (bool, error)

	ClearCache()
}

type accountState struct {
	// nil when caching is disabled
	accountCache cache.Cacher
	accountDB    database.Database
}

// NewAccountState returns an AccountState over [db] caching up to
// [cacheSize] accounts. A non-positive [cacheSize] disables caching.
func NewAccountState(db database.Database, cacheSize int) AccountState {
	s := &accountState{
		accountDB: db,
	}
	if cacheSize > 0 {
		s.accountCache = &cache.LRU{Size: cacheSize}
	}
	return s
}

func (s *accountState) GetAccount(accountID ids.ID) (*Account, error) {
	if s.accountCache != nil {
		if accIntf, ok := s.accountCache.Get(accountID); ok {
			if accIntf == nil {
				return nil, database.ErrNotFound
			}
			return accIntf.(*Account).clone(), nil
		}
	}

	accBytes, err := s.accountDB.Get(accountID[:])
	if err == database.ErrNotFound {
		if s.accountCache != nil {
			s.accountCache.Put(accountID, nil)
		}
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	acc := &Account{}
	parsedVersion, err := Codec.Unmarshal(accBytes, acc)
	if err != nil {
		return nil, err
	}
	if parsedVersion != CodecVersion {
		return nil, errAccountWrongVersion
	}

	if s.accountCache != nil {
		s.accountCache.Put(accountID, acc)
	}
	return acc.clone(), nil
}

func (s *accountState) PutAccount(accountID ids.ID, account *Account) error {
	bytes, err := Codec.Marshal(CodecVersion, account)
	if err != nil {
		return err
	}

	if s.accountCache != nil {
		s.accountCache.Put(accountID, account.clone())
	}
	return s.accountDB.Put(accountID[:], bytes)
}

func (s *accountState) HasAccount(accountID ids.ID) (bool, error) {
	_, err := s.GetAccount(accountID)
	switch err {
	case nil:
		return true, nil
	case database.ErrNotFound:
		return false, nil
	default:
		return false, err
	}
}

func (s *accountState) ClearCache() {
	if s.accountCache != nil {
		s.accountCache.Flush()
	}
}
