// Copyright 2025 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package node ties the pool, the producer, the chain and the state together
// behind a single lock and serves them to the RPC namespaces.
package node

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/ledgerwatch/log/v3"

	"github.com/erigontech/devchain/core"
	"github.com/erigontech/devchain/core/state"
	"github.com/erigontech/devchain/core/types"
	"github.com/erigontech/devchain/execution/exec"
	"github.com/erigontech/devchain/miner"
	"github.com/erigontech/devchain/node/nodecfg"
	"github.com/erigontech/devchain/rpc"
	"github.com/erigontech/devchain/rpc/forkclient"
	"github.com/erigontech/devchain/rpc/jsonrpc"
	"github.com/erigontech/devchain/txnprovider/txpool"
	"github.com/erigontech/devchain/txnprovider/txpool/txpoolcfg"
)

var (
	ErrHistoricalState = errors.New("historical state is not available")
	ErrBlockNotFound   = errors.New("block not found")
)

var _ jsonrpc.Backend = (*Node)(nil)

// Node is a single node dev chain. Every mutation (admission, mining, admin
// setters, snapshot and revert) holds the write lock, so blocks are produced
// strictly one after another.
type Node struct {
	mu sync.RWMutex

	cfg      nodecfg.Config
	accounts []common.Address

	ibs      *state.IntraBlockState
	pool     *txpool.TxPool
	chain    *core.BlockChain
	producer *miner.Producer
	automine *miner.Automine
	interval *miner.IntervalMiner

	fork *forkState // nil outside fork mode

	snapshots      map[uint64]*snapshot
	nextSnapshotID uint64

	ctx    context.Context
	logger log.Logger
}

type forkState struct {
	client *forkclient.Client
	loader *state.RemoteLoader
	block  *forkclient.RemoteBlock
}

func (f *forkState) number() uint64 { return uint64(f.block.Number) }

func (f *forkState) close() {
	f.loader.Close()
	f.client.Close()
}

// snapshot is what evm_revert restores.
type snapshot struct {
	ibs  *state.IntraBlockState
	pool *txpool.Snapshot
	head uint64
}

// New creates the node. In fork mode ctx bounds every remote read of the
// node's lifetime.
func New(ctx context.Context, cfg nodecfg.Config, logger log.Logger) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	accounts, err := DevAccounts(cfg.Accounts.Seed, cfg.Accounts.Count)
	if err != nil {
		return nil, err
	}
	n := &Node{
		cfg:            cfg,
		accounts:       accounts,
		snapshots:      map[uint64]*snapshot{},
		nextSnapshotID: 1,
		ctx:            ctx,
		logger:         logger,
	}

	var fork *forkState
	if cfg.Fork.Enabled() {
		var block *uint64
		if cfg.Fork.Block > 0 {
			block = &cfg.Fork.Block
		}
		if fork, err = n.connectFork(ctx, cfg.Fork.URL, block); err != nil {
			return nil, err
		}
	}
	n.fork = fork
	n.ibs = state.New(n.loader())
	if err := n.fundAccounts(); err != nil {
		return nil, err
	}

	if n.pool, err = txpool.New(cfg.TxPool, n.ibs, logger); err != nil {
		return nil, err
	}
	n.pool.SetAutomine(cfg.Mining.Auto)
	for _, addr := range accounts {
		n.pool.AddSigner(addr)
	}

	n.chain = core.NewBlockChain(n.genesis().ToBlock(), logger)
	n.producer = miner.NewProducer(miner.Config{
		Coinbase: cfg.Mining.Coinbase,
		GasLimit: cfg.TxPool.BlockGasLimit,
		BaseFee:  n.baseFee(),
	}, n.pool, n.chain, n.ibs, exec.TransferEngine{}, logger)
	n.automine = miner.NewAutomine(n.pool, n.producer, logger)
	n.interval = miner.NewIntervalMiner(time.Duration(cfg.Mining.Interval), n.mineInterval, logger)

	logger.Info("[node] started", "chainId", cfg.ChainID, "head", n.chain.CurrentBlock().NumberU64(),
		"accounts", len(accounts), "automine", cfg.Mining.Auto, "fork", cfg.Fork.URL)
	return n, nil
}

func (n *Node) connectFork(ctx context.Context, url string, block *uint64) (*forkState, error) {
	opts := []forkclient.Option{
		forkclient.WithTimeout(time.Duration(n.cfg.Fork.Timeout)),
		forkclient.WithHttpMaxRetries(n.cfg.Fork.MaxRetries),
	}
	if n.cfg.Fork.RateLimit > 0 {
		opts = append(opts, forkclient.WithRateLimit(n.cfg.Fork.RateLimit, 1))
	}
	client := forkclient.NewClient(url, n.logger, opts...)

	var number uint64
	if block != nil {
		number = *block
	} else {
		latest, err := client.BlockNumber(ctx)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("fork: fetching latest block: %w", err)
		}
		number = latest
	}
	remote, err := client.GetBlockByNumber(ctx, number)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("fork: fetching block %d: %w", number, err)
	}
	if remote == nil {
		client.Close()
		return nil, fmt.Errorf("fork: %w: %d", ErrBlockNotFound, number)
	}
	// remote reads of the loader outlive ctx
	loader, err := state.NewRemoteLoader(n.ctx, client, number, n.cfg.Fork.CacheSize, n.logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	n.logger.Info("[node] forking", "url", url, "block", number, "hash", remote.Hash)
	return &forkState{client: client, loader: loader, block: remote}, nil
}

// loader returns a nil interface outside fork mode.
func (n *Node) loader() state.AccountLoader {
	if n.fork == nil {
		return nil
	}
	return n.fork.loader
}

func (n *Node) baseFee() *uint256.Int {
	if n.cfg.Mining.BaseFee == 0 {
		return nil
	}
	return uint256.NewInt(n.cfg.Mining.BaseFee)
}

func (n *Node) genesis() *core.GenesisSpec {
	g := &core.GenesisSpec{
		Timestamp: uint64(time.Now().Unix()),
		GasLimit:  n.cfg.TxPool.BlockGasLimit,
		BaseFee:   n.baseFee(),
		Coinbase:  n.cfg.Mining.Coinbase,
	}
	if n.fork != nil {
		g.Number = n.fork.number()
		g.ParentHash = n.fork.block.Hash
		g.Timestamp = uint64(n.fork.block.Timestamp)
	}
	return g
}

func (n *Node) fundAccounts() error {
	balance := etherToWei(n.cfg.Accounts.BalanceEther)
	for _, addr := range n.accounts {
		if err := n.ibs.SetBalance(addr, balance); err != nil {
			return err
		}
	}
	n.ibs.FinalizeTx()
	return nil
}

// APIs returns the RPC namespaces served by the node.
func (n *Node) APIs() []rpc.API { return jsonrpc.APIList(n) }

// Run mines on the configured interval until ctx is done.
func (n *Node) Run(ctx context.Context) error { return n.interval.Run(ctx) }

func (n *Node) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fork != nil {
		n.fork.close()
		n.fork = nil
	}
}

func (n *Node) mineInterval(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := n.producer.MineOneBlock(ctx, common.Hash{}, true)
	return err
}

func (n *Node) ChainID() uint64 { return n.cfg.ChainID }

func (n *Node) Accounts() []common.Address { return slices.Clone(n.accounts) }

func (n *Node) BlockNumber() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.chain.CurrentBlock().NumberU64()
}

func (n *Node) BlockByNumber(number rpc.BlockNumber) (*types.Block, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if number == rpc.LatestBlockNumber || number == rpc.PendingBlockNumber {
		return n.chain.CurrentBlock(), nil
	}
	if number < 0 {
		return nil, fmt.Errorf("invalid block number %d", number)
	}
	return n.chain.GetBlockByNumber(number.Uint64()), nil
}

func (n *Node) BlockByHash(hash common.Hash) *types.Block {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.chain.GetBlockByHash(hash)
}

// stateAt tells where the state of number lives: locally (the head), on the
// fork source (at or below the fork block), or nowhere. Caller holds n.mu.
func (n *Node) stateAt(number rpc.BlockNumber) (remote bool, err error) {
	if number == rpc.LatestBlockNumber || number == rpc.PendingBlockNumber {
		return false, nil
	}
	head := n.chain.CurrentBlock().NumberU64()
	num := number.Uint64()
	switch {
	case num == head:
		return false, nil
	case num > head:
		return false, fmt.Errorf("%w: %d", ErrBlockNotFound, num)
	case n.fork != nil && num <= n.fork.number():
		return true, nil
	default:
		return false, fmt.Errorf("%w: block %d, head %d", ErrHistoricalState, num, head)
	}
}

func (n *Node) Balance(ctx context.Context, addr common.Address, number rpc.BlockNumber) (*uint256.Int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	remote, err := n.stateAt(number)
	if err != nil {
		return nil, err
	}
	if remote {
		return n.fork.client.GetBalance(ctx, addr, number.Uint64())
	}
	return n.ibs.GetBalance(addr)
}

func (n *Node) TransactionCount(ctx context.Context, addr common.Address, number rpc.BlockNumber) (uint64, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if number == rpc.PendingBlockNumber {
		return n.pool.NextNonce(addr)
	}
	remote, err := n.stateAt(number)
	if err != nil {
		return 0, err
	}
	if remote {
		return n.fork.client.GetTransactionCount(ctx, addr, number.Uint64())
	}
	return n.ibs.GetNonce(addr)
}

func (n *Node) Code(ctx context.Context, addr common.Address, number rpc.BlockNumber) ([]byte, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	remote, err := n.stateAt(number)
	if err != nil {
		return nil, err
	}
	if remote {
		return n.fork.client.GetCode(ctx, addr, number.Uint64())
	}
	return n.ibs.GetCode(addr)
}

// GasPrice is the lowest price a transaction can be mined with: the pool
// minimum or the block base fee, whichever is higher.
func (n *Node) GasPrice() *uint256.Int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.gasPriceLocked()
}

func (n *Node) gasPriceLocked() *uint256.Int {
	price := n.pool.MinimumGasPrice()
	if baseFee := n.producer.BaseFee(); baseFee != nil && baseFee.Gt(price) {
		return baseFee
	}
	return price
}

// SendTransaction admits the transaction and, under automine, mines until its
// fate is known.
func (n *Node) SendTransaction(ctx context.Context, args jsonrpc.TransactionArgs) (common.Hash, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var nonce uint64
	if args.From != nil && args.Nonce == nil {
		var err error
		if nonce, err = n.pool.NextNonce(*args.From); err != nil {
			return common.Hash{}, err
		}
	}
	txn, err := args.ToTransaction(nonce, n.gasPriceLocked())
	if err != nil {
		return common.Hash{}, err
	}
	hash, err := n.pool.Add(txn)
	if err != nil {
		return common.Hash{}, err
	}
	outcome, blocks, err := n.automine.OnAdmitted(ctx, hash)
	if err != nil {
		return common.Hash{}, err
	}
	if len(blocks) > 0 {
		n.logger.Debug("[node] automined", "txn", hash, "blocks", len(blocks))
	}
	if outcome != nil && outcome.Err != nil {
		return common.Hash{}, outcome.Err
	}
	return hash, nil
}

func (n *Node) Transaction(hash common.Hash) (*types.Transaction, *types.Receipt, *types.Block) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if txn, receipt, block := n.chain.GetTransaction(hash); txn != nil {
		return txn, receipt, block
	}
	if txn, ok := n.pool.Get(hash); ok {
		return txn, nil, nil
	}
	return nil, nil, nil
}

// PendingTransactions returns the pending transactions in admission order.
func (n *Node) PendingTransactions() []*types.Transaction {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var all []txpool.PendingTxn
	for _, bySender := range n.pool.Pending() {
		all = append(all, bySender...)
	}
	slices.SortFunc(all, func(a, b txpool.PendingTxn) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return 0
	})
	res := make([]*types.Transaction, len(all))
	for i := range all {
		res[i] = all[i].Txn
	}
	return res
}

func (n *Node) TxPoolContent() txpool.Content {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.pool.Content()
}

func (n *Node) TxPoolStatus() (pending, queued int) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.pool.CountContent()
}

func (n *Node) SetMinGasPrice(price *uint256.Int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pool.SetMinimumGasPrice(price)
	n.logger.Info("[node] minimum gas price set", "price", price)
}

func (n *Node) Automine() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.automine.Enabled()
}

func (n *Node) SetAutomine(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.automine.SetEnabled(enabled)
}

func (n *Node) SetBlockGasLimit(limit uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	dropped, err := n.producer.SetGasLimit(limit)
	if err != nil {
		return err
	}
	n.logger.Info("[node] block gas limit set", "limit", limit, "dropped", len(dropped))
	return nil
}

// Mine produces blocks one by one, empty ones included.
func (n *Node) Mine(ctx context.Context, blocks uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := uint64(0); i < blocks; i++ {
		if _, err := n.producer.MineOneBlock(ctx, common.Hash{}, true); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) DropTransaction(hash common.Hash) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if txn, _, _ := n.chain.GetTransaction(hash); txn != nil {
		return false, &rpc.InvalidInputError{Message: fmt.Sprintf("Transaction %s cannot be dropped because it's already mined", hash)}
	}
	return n.pool.Remove(hash, txpoolcfg.Dropped)
}

func (n *Node) ImpersonateAccount(addr common.Address) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pool.Impersonate(addr)
}

func (n *Node) StopImpersonatingAccount(addr common.Address) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pool.StopImpersonating(addr)
}

func (n *Node) SetBalance(_ context.Context, addr common.Address, balance *uint256.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.ibs.SetBalance(addr, balance); err != nil {
		return err
	}
	n.ibs.FinalizeTx()
	return nil
}

// SetNonce moves the confirmed nonce of addr forward. Pooled transactions of
// addr are reclassified against it.
func (n *Node) SetNonce(_ context.Context, addr common.Address, nonce uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	current, err := n.ibs.GetNonce(addr)
	if err != nil {
		return err
	}
	if nonce < current {
		return &rpc.InvalidInputError{Message: fmt.Sprintf("New nonce (%d) must not be smaller than the existing nonce (%d)", nonce, current)}
	}
	if err := n.ibs.SetNonce(addr, nonce); err != nil {
		return err
	}
	n.ibs.FinalizeTx()
	return n.pool.ResyncSenders(addr)
}

func (n *Node) SetCoinbase(addr common.Address) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.producer.SetCoinbase(addr)
}

// Snapshot records state, pool and chain head. Ids start at 1.
func (n *Node) Snapshot() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextSnapshotID
	n.nextSnapshotID++
	n.snapshots[id] = &snapshot{
		ibs:  n.ibs.Copy(),
		pool: n.pool.Snapshot(),
		head: n.chain.CurrentBlock().NumberU64(),
	}
	n.logger.Debug("[node] snapshot", "id", id, "head", n.snapshots[id].head)
	return id
}

// Revert restores snapshot id. It and every snapshot taken after it become
// invalid. Unknown ids return false.
func (n *Node) Revert(id uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	snap, ok := n.snapshots[id]
	if !ok {
		return false
	}
	if err := n.chain.TruncateTo(snap.head); err != nil {
		n.logger.Warn("[node] revert failed", "id", id, "err", err)
		return false
	}
	n.ibs.Restore(snap.ibs)
	n.pool.Restore(snap.pool)
	for sid := range n.snapshots {
		if sid >= id {
			delete(n.snapshots, sid)
		}
	}
	n.logger.Info("[node] reverted", "id", id, "head", snap.head)
	return true
}

// Reset drops chain, state, pool and snapshots and starts over, optionally
// forking forkURL at forkBlock.
func (n *Node) Reset(ctx context.Context, forkURL string, forkBlock *uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var fork *forkState
	if forkURL != "" {
		var err error
		if fork, err = n.connectFork(ctx, forkURL, forkBlock); err != nil {
			return err
		}
	}
	if n.fork != nil {
		n.fork.close()
	}
	n.fork = fork
	n.ibs.Reset(n.loader())
	if err := n.fundAccounts(); err != nil {
		return err
	}
	n.pool.Clear()
	n.chain.Reset(n.genesis().ToBlock())
	n.snapshots = map[uint64]*snapshot{}
	return nil
}

func (n *Node) SetIntervalMining(interval time.Duration) {
	n.interval.SetInterval(interval)
}
