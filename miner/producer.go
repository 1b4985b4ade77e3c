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

// Package miner builds the blocks of the dev chain out of the transaction pool.
//
// The Producer is not safe for concurrent use: the node serializes every call
// into it, together with pool admission, behind a single lock.
package miner

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/ledgerwatch/log/v3"

	"github.com/erigontech/devchain/core"
	"github.com/erigontech/devchain/core/state"
	"github.com/erigontech/devchain/core/types"
	"github.com/erigontech/devchain/execution/exec"
	"github.com/erigontech/devchain/txnprovider/txpool"
)

// Pool is the part of the transaction pool the producer drives.
type Pool interface {
	Pending() [][]txpool.PendingTxn
	MinimumGasPrice() *uint256.Int
	CountContent() (pending, queued int)
	OnNewBlock(minedTxns, evictedTxns []common.Hash) error
	SetBlockGasLimit(limit uint64) ([]common.Hash, error)
}

var _ Pool = (*txpool.TxPool)(nil)

type Config struct {
	Coinbase common.Address
	GasLimit uint64
	BaseFee  *uint256.Int // nil disables the base fee check
}

// Outcome is the fate of the transaction that triggered mining.
type Outcome struct {
	Hash    common.Hash
	Block   *types.Block   // block including the transaction, nil if not mined
	Receipt *types.Receipt // receipt stamped with the block hash
	// Err is an *InvalidInputError if the transaction was evicted and an
	// *ExecutionError if it was mined but failed.
	Err error
}

// Resolved reports whether the transaction left the pool.
func (o *Outcome) Resolved() bool { return o.Block != nil || o.Err != nil }

// BlockResult describes a single pass of the producer.
type BlockResult struct {
	Block   *types.Block // nil if no block was committed
	Evicted map[common.Hash]error
	Trigger *Outcome // nil without trigger
}

type Producer struct {
	cfg    Config
	pool   Pool
	chain  *core.BlockChain
	ibs    *state.IntraBlockState
	engine exec.Engine
	now    func() time.Time
	logger log.Logger
}

func NewProducer(cfg Config, pool Pool, chain *core.BlockChain, ibs *state.IntraBlockState, engine exec.Engine, logger log.Logger) *Producer {
	return &Producer{
		cfg:    cfg,
		pool:   pool,
		chain:  chain,
		ibs:    ibs,
		engine: engine,
		now:    time.Now,
		logger: logger,
	}
}

func (p *Producer) Coinbase() common.Address            { return p.cfg.Coinbase }
func (p *Producer) SetCoinbase(coinbase common.Address) { p.cfg.Coinbase = coinbase }
func (p *Producer) GasLimit() uint64                    { return p.cfg.GasLimit }

func (p *Producer) BaseFee() *uint256.Int {
	if p.cfg.BaseFee == nil {
		return nil
	}
	return p.cfg.BaseFee.Clone()
}

// SetGasLimit changes the gas limit of the next blocks. Pooled transactions
// that can no longer fit in a block are dropped and returned.
func (p *Producer) SetGasLimit(limit uint64) ([]common.Hash, error) {
	dropped, err := p.pool.SetBlockGasLimit(limit)
	if err != nil {
		return nil, err
	}
	p.cfg.GasLimit = limit
	return dropped, nil
}

func (p *Producer) makeHeader(parent *types.Block) *types.Header {
	timestamp := uint64(p.now().Unix())
	if timestamp <= parent.Time() {
		timestamp = parent.Time() + 1
	}
	header := &types.Header{
		ParentHash: parent.Hash(),
		Coinbase:   p.cfg.Coinbase,
		Number:     parent.NumberU64() + 1,
		GasLimit:   p.cfg.GasLimit,
		Time:       timestamp,
	}
	if p.cfg.BaseFee != nil {
		header.BaseFee = p.cfg.BaseFee.Clone()
	}
	return header
}

// MineOneBlock builds a single block out of the pending transactions. trigger
// is the hash of the transaction whose fate the caller waits for, or the zero
// hash. Without includable transactions a block is committed only if
// allowEmpty is set.
//
// Transactions found non-executable are evicted from the pool and the rest of
// their sender's transactions are skipped for this block. Any other error
// aborts the pass: the state is rolled back to the start of the block and the
// pool is left as it was.
func (p *Producer) MineOneBlock(ctx context.Context, trigger common.Hash, allowEmpty bool) (*BlockResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	header := p.makeHeader(p.chain.CurrentBlock())
	env := newEnvironment(p.ibs, header)

	candidates := SelectForBlock(p.pool.Pending(), header.GasLimit, p.pool.MinimumGasPrice())
	if err := p.commitTransactions(env, candidates); err != nil {
		env.state.RevertToSnapshot(env.snapshot)
		p.logger.Warn("[miner] Block aborted", "number", header.Number, "err", err)
		return nil, err
	}

	res := &BlockResult{Evicted: env.evictedErrs}
	if env.tcount() == 0 && !allowEmpty {
		env.state.RevertToSnapshot(env.snapshot)
	} else {
		block := types.NewBlock(header, env.txs, env.receipts)
		if err := p.chain.InsertBlock(block); err != nil {
			env.state.RevertToSnapshot(env.snapshot)
			return nil, fmt.Errorf("inserting block %d: %w", header.Number, err)
		}
		env.state.FinalizeTx()
		res.Block = block

		blocksCounter.Inc()
		txnsCounter.Add(float64(env.tcount()))
		p.logger.Info("[miner] Commit a block", "number", block.NumberU64(), "hash", block.Hash(),
			"txs", env.tcount(), "gasUsed", block.GasUsed(), "evicted", len(env.evicted), "duration", time.Since(start))
	}

	if env.tcount() > 0 || len(env.evicted) > 0 {
		evictedCounter.Add(float64(len(env.evicted)))
		if err := p.pool.OnNewBlock(types.Transactions(env.txs).Hashes(), env.evicted); err != nil {
			return res, fmt.Errorf("updating pool after block %d: %w", header.Number, err)
		}
	}

	if trigger != (common.Hash{}) {
		res.Trigger = triggerOutcome(trigger, res)
	}
	return res, nil
}

func (p *Producer) commitTransactions(env *environment, txns []*types.Transaction) error {
	for _, txn := range txns {
		if env.skipped(txn) {
			p.logger.Trace("[miner] Skipping transaction of evicted sender", "hash", txn.Hash(), "sender", txn.GetSender())
			continue
		}
		snap := env.state.Snapshot()
		gas := env.gasPool.Gas()

		receipt, err := p.engine.Apply(txn, env.state, env.header, env.gasPool)
		switch {
		case err == nil:
			env.include(txn, receipt)
		case exec.IsNonExecutable(err):
			env.state.RevertToSnapshot(snap)
			*env.gasPool = core.GasPool(gas)
			env.evict(txn, err)
			p.logger.Debug("[miner] Transaction evicted", "hash", txn.Hash(), "sender", txn.GetSender(), "nonce", txn.GetNonce(), "err", err)
		default:
			return fmt.Errorf("applying transaction %x: %w", txn.Hash(), err)
		}
	}
	return nil
}

func triggerOutcome(hash common.Hash, res *BlockResult) *Outcome {
	outcome := &Outcome{Hash: hash}
	if err, ok := res.Evicted[hash]; ok {
		outcome.Err = &InvalidInputError{Hash: hash, Err: err}
		return outcome
	}
	if res.Block == nil {
		return outcome
	}
	if _, receipt := res.Block.Transaction(hash); receipt != nil {
		outcome.Block = res.Block
		outcome.Receipt = receipt
		if receipt.Failed() {
			outcome.Err = &ExecutionError{Hash: hash, Receipt: receipt}
		}
	}
	return outcome
}

// DrainMine mines blocks until nothing is includable any more. The returned
// outcome is unresolved if the trigger is still pooled at the end, which
// happens when it was never eligible, e.g. priced below the minimum.
func (p *Producer) DrainMine(ctx context.Context, trigger common.Hash) (*Outcome, []*types.Block, error) {
	outcome := &Outcome{Hash: trigger}
	pending, queued := p.pool.CountContent()

	var blocks []*types.Block
	// every productive pass removes at least one transaction from the pool
	for i := 0; i <= pending+queued; i++ {
		res, err := p.MineOneBlock(ctx, trigger, false)
		if err != nil {
			return outcome, blocks, err
		}
		if res.Block != nil {
			blocks = append(blocks, res.Block)
		}
		if res.Trigger != nil && res.Trigger.Resolved() {
			outcome = res.Trigger
		}
		if res.Block == nil && len(res.Evicted) == 0 {
			break
		}
	}
	return outcome, blocks, nil
}
