// (c) 2021-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculatorvm

import (
	"errors"

	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/snow/choices"
)

const (
	blockCacheSize = 8192
)

var (
	errBlockWrongVersion = errors.New("wrong block version")

	_ BlockState = &blockState{}
)

// BlockState persists blocks along with their decision status
type BlockState interface {
	GetBlock(blkID ids.ID) (*Block, error)
	PutBlock(blk *Block) error

	ClearCache()
}

type blockState struct {
	blkCache cache.Cacher
	blockDB  database.Database
	vm       *VM
}

// blkWrapper is the record written to the database
type blkWrapper struct {
	Blk    []byte         `serialize:"true"`
	Status choices.Status `serialize:"true"`
}

func NewBlockState(db database.Database, vm *VM) BlockState {
	return &blockState{
		blkCache: &cache.LRU{Size: blockCacheSize},
		blockDB:  db,
		vm:       vm,
	}
}

func (s *blockState) GetBlock(blkID ids.ID) (*Block, error) {
	if blkIntf, ok := s.blkCache.Get(blkID); ok {
		if blkIntf == nil {
			return nil, database.ErrNotFound
		}
		return blkIntf.(*Block), nil
	}

	wrappedBytes, err := s.blockDB.Get(blkID[:])
	if err == database.ErrNotFound {
		s.blkCache.Put(blkID, nil)
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	blkw := blkWrapper{}
	parsedVersion, err := Codec.Unmarshal(wrappedBytes, &blkw)
	if err != nil {
		return nil, err
	}
	if parsedVersion != CodecVersion {
		return nil, errBlockWrongVersion
	}

	blk, err := parseBlock(blkw.Blk)
	if err != nil {
		return nil, err
	}
	blk.initialize(blkw.Blk, blkw.Status, s.vm)

	s.blkCache.Put(blkID, blk)
	return blk, nil
}

func (s *blockState) PutBlock(blk *Block) error {
	blkw := blkWrapper{
		Blk:    blk.Bytes(),
		Status: blk.Status(),
	}
	bytes, err := Codec.Marshal(CodecVersion, &blkw)
	if err != nil {
		return err
	}

	blkID := blk.ID()
	s.blkCache.Put(blkID, blk)
	return s.blockDB.Put(blkID[:], bytes)
}

func (s *blockState) ClearCache() {
	s.blkCache.Flush()
}
