// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculatorvm

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gorilla/rpc/v2"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/avalanchego/database/manager"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/snow"
	"github.com/ava-labs/avalanchego/snow/choices"
	"github.com/ava-labs/avalanchego/snow/consensus/snowman"
	"github.com/ava-labs/avalanchego/snow/engine/common"
	"github.com/ava-labs/avalanchego/snow/engine/snowman/block"
	"github.com/ava-labs/avalanchego/utils"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/ava-labs/avalanchego/version"

	cjson "github.com/ava-labs/avalanchego/utils/json"
)

const (
	Name = "calculatorvm"
)

var (
	Version = version.NewDefaultVersion(1, 0, 0)

	errNoPendingTxs    = errors.New("there is no tx to put in a block")
	errUnknownAncestor = errors.New("block's ancestor is neither processing nor last accepted")
	errRateLimited     = errors.New("too many txs issued, try again later")

	_ block.ChainVM = &VM{}
)

// VM implements the snowman.ChainVM interface
// Each block in this chain contains transactions that create accounts
// or invoke the calculator program on them
type VM struct {
	// The context of this vm
	ctx       *snow.Context
	dbManager manager.Manager
	config    Config

	// Program that owns the chain's calculator accounts
	programID ids.ID

	// State of this VM
	state State

	// Clock used for block building and verification
	clock mockable.Clock

	// channel to send messages to the consensus engine
	toEngine chan<- common.Message

	// Proposed txs that haven't been put into a block yet
	mempool *mempool

	// Blocks that have been verified but not yet accepted or rejected
	verifiedBlocks map[ids.ID]*Block

	// ID of the preferred block
	preferred ids.ID

	// Indicates that this VM has finished bootstrapping for the chain
	bootstrapped utils.AtomicBool

	metrics    *metrics
	apiLimiter *rate.Limiter
}

// Initialize this vm
// [ctx] is this vm's context
// [dbManager] is the manager of this vm's database
// [toEngine] is used to notify the consensus engine that new blocks are
//   ready to be added to consensus
// The chain's program and initial accounts are read from [genesisData]
// The chain config is read from [configData]
func (vm *VM) Initialize(
	ctx *snow.Context,
	dbManager manager.Manager,
	genesisData []byte,
	upgradeData []byte,
	configData []byte,
	toEngine chan<- common.Message,
	_ []*common.Fx,
	_ common.AppSender,
) error {
	version, err := vm.Version()
	if err != nil {
		log.Error("error initializing Calculator VM", "error", err)
		return err
	}
	log.Info("Initializing Calculator VM", "Version", version)

	config, err := ParseConfig(configData)
	if err != nil {
		log.Error("error parsing chain config", "error", err)
		return err
	}
	vm.config = config
	// the level was checked when parsing the config
	lvl, _ := log.LvlFromString(config.LogLevel)
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.TerminalFormat())))

	genesis, err := ParseGenesis(genesisData)
	if err != nil {
		log.Error("error parsing genesis", "error", err)
		return err
	}
	vm.programID = genesis.ProgramID

	vm.ctx = ctx
	vm.dbManager = dbManager
	vm.toEngine = toEngine
	vm.verifiedBlocks = make(map[ids.ID]*Block)
	vm.mempool = newMempool(toEngine, config.MempoolSize)
	vm.apiLimiter = rate.NewLimiter(rate.Limit(config.APIRateLimit), config.APIBurst)

	// Create new state
	vm.state = NewState(vm.dbManager.Current().Database, vm, config.AccountCacheSize)

	registry := prometheus.NewRegistry()
	vm.metrics, err = newMetrics(registry)
	if err != nil {
		return fmt.Errorf("couldn't create metrics: %w", err)
	}
	if ctx.Metrics != nil {
		if err := ctx.Metrics.Register(registry); err != nil {
			return fmt.Errorf("couldn't register metrics: %w", err)
		}
	}

	// Initialize genesis
	if err := vm.initGenesis(genesis); err != nil {
		return err
	}

	// Get last accepted
	lastAccepted, err := vm.state.GetLastAccepted()
	if err != nil {
		log.Error("could not get last accepted block", "error", err)
		return err
	}
	log.Info("initializing last accepted block", "blkID", lastAccepted, "programID", vm.programID)

	// Build off the most recently accepted block
	return vm.SetPreference(lastAccepted)
}

// Initializes Genesis if required
func (vm *VM) initGenesis(genesis *Genesis) error {
	stateInitialized, err := vm.state.IsInitialized()
	if err != nil {
		return err
	}

	// if state is already initialized, skip init genesis.
	if stateInitialized {
		return nil
	}

	txs, err := genesis.txs()
	if err != nil {
		return fmt.Errorf("error while creating genesis txs: %w", err)
	}

	// Create the genesis block
	// Timestamp of genesis block is 0. It has no parent.
	genesisBlock, err := vm.newBlock(ids.Empty, 0, txs, time.Unix(0, 0))
	if err != nil {
		log.Error("error while creating genesis block", "error", err)
		return err
	}

	// Accept the genesis block, creating the genesis accounts
	if err := genesisBlock.Accept(); err != nil {
		return fmt.Errorf("error accepting genesis block: %w", err)
	}

	// Mark this vm's state as initialized, so we can skip initGenesis in further restarts
	if err := vm.state.SetInitialized(); err != nil {
		return fmt.Errorf("error while setting db to initialized: %w", err)
	}

	// Flush VM's database to underlying db
	return vm.state.Commit()
}

// CreateHandlers returns a map where:
// Keys: The path extension for this blockchain's API (empty in this case)
// Values: The handler for the API
func (vm *VM) CreateHandlers() (map[string]*common.HTTPHandler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(cjson.NewCodec(), "application/json")
	server.RegisterCodec(cjson.NewCodec(), "application/json;charset=UTF-8")
	if err := server.RegisterService(&Service{vm: vm}, Name); err != nil {
		return nil, err
	}

	return map[string]*common.HTTPHandler{
		"": {
			LockOptions: common.WriteLock,
			Handler:     server,
		},
	}, nil
}

// CreateStaticHandlers returns a map where:
// Keys: The path extension for this VM's static API
// Values: The handler for that static API
func (vm *VM) CreateStaticHandlers() (map[string]*common.HTTPHandler, error) {
	server := rpc.NewServer()
	codec := cjson.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")

	// name this service "calculatorvm"
	staticService := CreateStaticService()
	return map[string]*common.HTTPHandler{
		"": {LockOptions: common.WriteLock, Handler: server},
	}, server.RegisterService(staticService, Name)
}

// HealthCheck implements the common.VM interface
func (vm *VM) HealthCheck() (interface{}, error) { return nil, nil }

// BuildBlock returns a block that this vm wants to add to consensus
func (vm *VM) BuildBlock() (snowman.Block, error) {
	if vm.mempool.Len() == 0 { // There is no block to be built
		return nil, errNoPendingTxs
	}

	// Gets Preferred Block
	parent, err := vm.getBlock(vm.preferred)
	if err != nil {
		return nil, fmt.Errorf("couldn't get preferred block: %w", err)
	}

	view, err := vm.accountView(parent.ID())
	if err != nil {
		return nil, err
	}
	defer view.Abort()
	accounts := NewAccountState(view, 0)

	// Take txs in order, dropping the ones that can't be executed
	// on top of the preferred block
	txs := make([]*Tx, 0, vm.config.MaxBlockTxs)
	for len(txs) < vm.config.MaxBlockTxs {
		tx, ok := vm.mempool.Pop()
		if !ok {
			break
		}
		if err := tx.Execute(vm.programID, accounts); err != nil {
			log.Debug("dropping tx", "txID", tx.ID(), "error", err)
			vm.metrics.txsDropped.Inc()
			continue
		}
		txs = append(txs, tx)
	}

	// Notify consensus engine that there are more pending txs for blocks
	// (if that is the case) when done building this block
	if vm.mempool.Len() > 0 {
		defer vm.mempool.notifyBlockReady()
	}

	if len(txs) == 0 {
		return nil, errNoPendingTxs
	}

	timestamp := vm.clock.Time()
	if timestamp.Unix() < parent.Tmstmp {
		timestamp = parent.Timestamp()
	}

	// Build the block with preferred height
	blk, err := vm.newBlock(parent.ID(), parent.Hght+1, txs, timestamp)
	if err != nil {
		return nil, fmt.Errorf("couldn't build block: %w", err)
	}

	// Verifies block
	if err := blk.Verify(); err != nil {
		return nil, err
	}
	return blk, nil
}

// accountView returns a database holding the account state right after
// [parentID] is accepted. Writes to it are never committed.
func (vm *VM) accountView(parentID ids.ID) (*versiondb.Database, error) {
	lastAccepted, err := vm.state.GetLastAccepted()
	if err != nil {
		return nil, err
	}

	// Collect the processing blocks between the last accepted block and [parentID]
	var ancestors []*Block
	for blkID := parentID; blkID != lastAccepted; {
		blk, ok := vm.verifiedBlocks[blkID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", errUnknownAncestor, blkID)
		}
		ancestors = append(ancestors, blk)
		blkID = blk.PrntID
	}

	view := versiondb.New(vm.state.AccountDB())
	accounts := NewAccountState(view, 0)
	for i := len(ancestors) - 1; i >= 0; i-- {
		if err := ancestors[i].execute(accounts); err != nil {
			view.Abort()
			return nil, err
		}
	}
	return view, nil
}

// acceptBlock applies [blk] to the chain state and marks it as last accepted
func (vm *VM) acceptBlock(blk *Block) error {
	if err := blk.execute(vm.state); err != nil {
		vm.state.Abort()
		return fmt.Errorf("couldn't apply block %s: %w", blk.ID(), err)
	}
	if err := vm.state.PutBlock(blk); err != nil {
		vm.state.Abort()
		return err
	}
	if err := vm.state.SetLastAccepted(blk.ID()); err != nil {
		vm.state.Abort()
		return err
	}
	delete(vm.verifiedBlocks, blk.ID())

	if err := vm.state.Commit(); err != nil {
		return err
	}

	vm.metrics.accepted(blk)
	log.Debug("accepted block", "blkID", blk.ID(), "height", blk.Hght, "txs", len(blk.Txs))
	return nil
}

// ParseBlock parses [bytes] to a snowman.Block
// This function is used by the vm's state to unmarshal blocks saved in state
// and by the consensus layer when it receives the byte representation of a block
// from another node
func (vm *VM) ParseBlock(bytes []byte) (snowman.Block, error) {
	blk, err := parseBlock(bytes)
	if err != nil {
		return nil, err
	}
	blk.initialize(bytes, choices.Processing, vm)

	// If we already know this block, return the known one
	if known, err := vm.getBlock(blk.ID()); err == nil {
		return known, nil
	}
	return blk, nil
}

// newBlock returns a new Block where:
// - the block's parent is [parentID]
// - the block's txs are [txs]
// - the block's timestamp is [timestamp]
func (vm *VM) newBlock(parentID ids.ID, height uint64, txs []*Tx, timestamp time.Time) (*Block, error) {
	blk := &Block{
		PrntID: parentID,
		Hght:   height,
		Tmstmp: timestamp.Unix(),
		Txs:    txs,
	}

	// Get the byte representation of the block
	blkBytes, err := Codec.Marshal(CodecVersion, blk)
	if err != nil {
		return nil, err
	}

	blk.initialize(blkBytes, choices.Processing, vm)
	return blk, nil
}

// GetBlock implements the snowman.ChainVM interface
func (vm *VM) GetBlock(blkID ids.ID) (snowman.Block, error) {
	blk, err := vm.getBlock(blkID)
	if err != nil {
		return nil, err
	}
	return blk, nil
}

func (vm *VM) getBlock(blkID ids.ID) (*Block, error) {
	// If block is in memory, return it.
	if blk, exists := vm.verifiedBlocks[blkID]; exists {
		return blk, nil
	}
	return vm.state.GetBlock(blkID)
}

// issueTx checks [utx] and puts it into the mempool
func (vm *VM) issueTx(utx UnsignedTx) (ids.ID, error) {
	if !vm.apiLimiter.Allow() {
		return ids.Empty, errRateLimited
	}
	if err := utx.SyntacticVerify(); err != nil {
		return ids.Empty, err
	}
	tx, err := NewTx(utx)
	if err != nil {
		return ids.Empty, err
	}
	if err := vm.mempool.Add(tx); err != nil {
		return ids.Empty, err
	}
	return tx.ID(), nil
}

// SetPreference sets the block with ID [ID] as the preferred block
func (vm *VM) SetPreference(id ids.ID) error {
	vm.preferred = id
	return nil
}

// LastAccepted returns the block most recently accepted
func (vm *VM) LastAccepted() (ids.ID, error) {
	return vm.state.GetLastAccepted()
}

// SetState sets this VM state according to given snow.State
func (vm *VM) SetState(state snow.State) error {
	switch state {
	// Engine reports it's bootstrapping
	case snow.Bootstrapping:
		return vm.onBootstrapStarted()
	case snow.NormalOp:
		// Engine reports it can start normal operations
		return vm.onNormalOperationsStarted()
	default:
		return snow.ErrUnknownState
	}
}

// onBootstrapStarted marks this VM as bootstrapping
func (vm *VM) onBootstrapStarted() error {
	vm.bootstrapped.SetValue(false)
	return nil
}

// onNormalOperationsStarted marks this VM as bootstrapped
func (vm *VM) onNormalOperationsStarted() error {
	// No need to set it again
	if vm.bootstrapped.GetValue() {
		return nil
	}
	vm.bootstrapped.SetValue(true)
	return nil
}

// Shutdown this vm
func (vm *VM) Shutdown() error {
	if vm.state == nil {
		return nil
	}

	return vm.state.Close() // close versionDB
}

// Version returns this VM's version
func (vm *VM) Version() (string, error) {
	return Version.String(), nil
}

func (vm *VM) Connected(id ids.NodeID, nodeVersion version.Application) error {
	return nil // noop
}

func (vm *VM) Disconnected(id ids.NodeID) error {
	return nil // noop
}

// This VM doesn't (currently) have any app-specific messages
func (vm *VM) AppGossip(nodeID ids.NodeID, msg []byte) error {
	return nil
}

// This VM doesn't (currently) have any app-specific messages
func (vm *VM) AppRequest(nodeID ids.NodeID, requestID uint32, deadline time.Time, request []byte) error {
	return nil
}

// This VM doesn't (currently) have any app-specific messages
func (vm *VM) AppResponse(nodeID ids.NodeID, requestID uint32, response []byte) error {
	return nil
}

// This VM doesn't (currently) have any app-specific messages
func (vm *VM) AppRequestFailed(nodeID ids.NodeID, requestID uint32) error {
	return nil
}
