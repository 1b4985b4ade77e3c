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

package miner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/ledgerwatch/log/v3"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/devchain/core"
	"github.com/erigontech/devchain/core/state"
	"github.com/erigontech/devchain/core/types"
	"github.com/erigontech/devchain/execution/exec"
	"github.com/erigontech/devchain/txnprovider/txpool"
	"github.com/erigontech/devchain/txnprovider/txpool/txpoolcfg"
)

var (
	alice    = common.HexToAddress("0xa11ce00000000000000000000000000000000000")
	bob      = common.HexToAddress("0xb0b0000000000000000000000000000000000000")
	coinbase = common.HexToAddress("0xc014ba5e00000000000000000000000000000000")
	to       = common.HexToAddress("0x7000000000000000000000000000000000000000")
)

type testEnv struct {
	pool     *txpool.TxPool
	ibs      *state.IntraBlockState
	chain    *core.BlockChain
	producer *Producer
	automine *Automine
}

func newTestEnv(t *testing.T, genesisNumber, gasLimit uint64, engine exec.Engine) *testEnv {
	t.Helper()
	logger := log.New()
	logger.SetHandler(log.DiscardHandler())

	ibs := state.New(nil)
	for _, addr := range []common.Address{alice, bob} {
		require.NoError(t, ibs.SetBalance(addr, uint256.NewInt(1_000_000_000)))
	}
	ibs.FinalizeTx()

	cfg := txpoolcfg.DefaultConfig
	cfg.BlockGasLimit = gasLimit
	pool, err := txpool.New(cfg, ibs, logger)
	require.NoError(t, err)
	pool.AddSigner(alice)
	pool.AddSigner(bob)

	genesis := (&core.GenesisSpec{Number: genesisNumber, GasLimit: gasLimit, Timestamp: 1}).ToBlock()
	chain := core.NewBlockChain(genesis, logger)
	if engine == nil {
		engine = exec.TransferEngine{}
	}
	producer := NewProducer(Config{Coinbase: coinbase, GasLimit: gasLimit}, pool, chain, ibs, engine, logger)
	return &testEnv{
		pool:     pool,
		ibs:      ibs,
		chain:    chain,
		producer: producer,
		automine: NewAutomine(pool, producer, logger),
	}
}

func (e *testEnv) add(t *testing.T, txn *types.Transaction) common.Hash {
	t.Helper()
	hash, err := e.pool.Add(txn)
	require.NoError(t, err)
	return hash
}

func transfer(from common.Address, nonce uint64, value uint64) *types.Transaction {
	return types.NewTransaction(from, nonce, to, uint256.NewInt(value), 21000, uint256.NewInt(1), nil)
}

func TestDrainMineCascade(t *testing.T) {
	env := newTestEnv(t, 0, 42000, nil)
	var hashes []common.Hash
	for i := uint64(0); i < 5; i++ {
		hashes = append(hashes, env.add(t, transfer(alice, i, 1)))
	}

	outcome, blocks, err := env.producer.DrainMine(context.Background(), hashes[4])
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	require.Equal(t, []int{2, 2, 1}, []int{blocks[0].Transactions().Len(), blocks[1].Transactions().Len(), blocks[2].Transactions().Len()})
	require.Equal(t, uint64(3), env.chain.CurrentBlock().NumberU64())

	require.True(t, outcome.Resolved())
	require.NoError(t, outcome.Err)
	require.Equal(t, blocks[2].Hash(), outcome.Block.Hash())
	require.Equal(t, blocks[2].Hash(), outcome.Receipt.BlockHash)

	pending, queued := env.pool.CountContent()
	require.Zero(t, pending)
	require.Zero(t, queued)
	nonce, err := env.ibs.GetNonce(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(5), nonce)

	receipt := blocks[0].Receipts()[1]
	require.Equal(t, uint(1), receipt.TransactionIndex)
	require.Equal(t, uint64(42000), receipt.CumulativeGasUsed)
}

func TestRevertIsMined(t *testing.T) {
	env := newTestEnv(t, 0, 30_000_000, nil)
	reverter := common.HexToAddress("0xdead")
	require.NoError(t, env.ibs.SetCode(reverter, []byte{0xfd}))
	env.pool.SetAutomine(true)

	hash := env.add(t, types.NewTransaction(alice, 0, reverter, uint256.NewInt(0), 50000, uint256.NewInt(1), nil))
	outcome, blocks, err := env.automine.OnAdmitted(context.Background(), hash)
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	var execErr *ExecutionError
	require.ErrorAs(t, outcome.Err, &execErr)
	require.ErrorIs(t, outcome.Err, exec.ErrExecutionReverted)
	require.Equal(t, "Transaction reverted without a reason", execErr.Error())
	require.Equal(t, -32603, execErr.ErrorCode())
	require.Equal(t, hash, execErr.ErrorData().(map[string]interface{})["txHash"])
	require.True(t, outcome.Resolved())

	_, ok := env.pool.Get(hash)
	require.False(t, ok)
	reason, _ := env.pool.DiscardReason(hash)
	require.Equal(t, txpoolcfg.Mined, reason)

	txn, receipt, block := env.chain.GetTransaction(hash)
	require.NotNil(t, txn)
	require.Equal(t, types.ReceiptStatusFailed, receipt.Status)
	require.Equal(t, uint64(1), block.NumberU64())

	nonce, err := env.ibs.GetNonce(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(1), nonce)
}

func TestEvictionReportedToTrigger(t *testing.T) {
	env := newTestEnv(t, 0, 30_000_000, nil)
	require.NoError(t, env.ibs.SetBalance(alice, uint256.NewInt(50_000)))

	// each one is affordable on its own, the second one not after the first
	first := env.add(t, transfer(alice, 0, 20_000))
	second := env.add(t, transfer(alice, 1, 20_000))
	third := env.add(t, transfer(alice, 2, 0))
	other := env.add(t, transfer(bob, 0, 1))

	outcome, blocks, err := env.producer.DrainMine(context.Background(), second)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.Equal(t, []common.Hash{first, other}, blocks[0].Transactions().Hashes())

	var invalid *InvalidInputError
	require.ErrorAs(t, outcome.Err, &invalid)
	require.ErrorIs(t, outcome.Err, exec.ErrInsufficientFunds)
	require.Equal(t, -32000, invalid.ErrorCode())
	require.Nil(t, outcome.Block)
	require.True(t, outcome.Resolved())

	reason, _ := env.pool.DiscardReason(second)
	require.Equal(t, txpoolcfg.NonExecutable, reason)
	// the hole left by the evicted transaction demotes the next one
	sp, ok := env.pool.SubPool(third)
	require.True(t, ok)
	require.Equal(t, txpool.QueuedSubPool, sp)
}

func TestEmptyBlocks(t *testing.T) {
	env := newTestEnv(t, 0, 30_000_000, nil)

	outcome, blocks, err := env.producer.DrainMine(context.Background(), common.Hash{})
	require.NoError(t, err)
	require.Empty(t, blocks)
	require.False(t, outcome.Resolved())
	require.Zero(t, env.chain.CurrentBlock().NumberU64())

	res, err := env.producer.MineOneBlock(context.Background(), common.Hash{}, false)
	require.NoError(t, err)
	require.Nil(t, res.Block)

	res, err = env.producer.MineOneBlock(context.Background(), common.Hash{}, true)
	require.NoError(t, err)
	require.NotNil(t, res.Block)
	require.Equal(t, types.EmptyTxsHash, res.Block.TxHash())
	require.Equal(t, uint64(1), env.chain.CurrentBlock().NumberU64())
}

func TestUnderpricedTriggerStaysPooled(t *testing.T) {
	env := newTestEnv(t, 0, 30_000_000, nil)
	env.pool.SetMinimumGasPrice(uint256.NewInt(5))
	hash := env.add(t, transfer(alice, 0, 1))

	outcome, blocks, err := env.producer.DrainMine(context.Background(), hash)
	require.NoError(t, err)
	require.Empty(t, blocks)
	require.False(t, outcome.Resolved())
	require.Equal(t, hash, outcome.Hash)
	_, ok := env.pool.Get(hash)
	require.True(t, ok)
}

func TestForkBlockNumbering(t *testing.T) {
	env := newTestEnv(t, 1_000_000, 30_000_000, nil)
	genesis := env.chain.CurrentBlock()
	env.add(t, transfer(alice, 0, 1))

	res, err := env.producer.MineOneBlock(context.Background(), common.Hash{}, false)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_001), res.Block.NumberU64())
	require.Equal(t, genesis.Hash(), res.Block.ParentHash())
	require.Greater(t, res.Block.Time(), genesis.Time())
	require.Equal(t, coinbase, res.Block.Coinbase())

	reward, err := env.ibs.GetBalance(coinbase)
	require.NoError(t, err)
	require.Equal(t, uint64(21000), reward.Uint64())
}

type failingEngine struct {
	exec.Engine
	failOn common.Hash
}

var errRemote = errors.New("target node unreachable")

func (e failingEngine) Apply(txn *types.Transaction, ibs *state.IntraBlockState, header *types.Header, gp *core.GasPool) (*types.Receipt, error) {
	if txn.Hash() == e.failOn {
		return nil, errRemote
	}
	return e.Engine.Apply(txn, ibs, header, gp)
}

func TestAbortRollsBackBlock(t *testing.T) {
	engine := &failingEngine{Engine: exec.TransferEngine{}}
	env := newTestEnv(t, 0, 30_000_000, engine)
	first := env.add(t, transfer(alice, 0, 100))
	engine.failOn = env.add(t, transfer(alice, 1, 100))

	_, err := env.producer.MineOneBlock(context.Background(), first, false)
	require.ErrorIs(t, err, errRemote)

	require.Zero(t, env.chain.CurrentBlock().NumberU64())
	balance, err := env.ibs.GetBalance(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000_000), balance.Uint64())
	nonce, err := env.ibs.GetNonce(alice)
	require.NoError(t, err)
	require.Zero(t, nonce)
	pending, _ := env.pool.CountContent()
	require.Equal(t, 2, pending)
}

func TestSetGasLimit(t *testing.T) {
	env := newTestEnv(t, 0, 30_000_000, nil)
	big := env.add(t, types.NewTransaction(alice, 0, to, uint256.NewInt(0), 100_000, uint256.NewInt(1), nil))

	dropped, err := env.producer.SetGasLimit(50_000)
	require.NoError(t, err)
	require.Equal(t, []common.Hash{big}, dropped)
	require.Equal(t, uint64(50_000), env.producer.GasLimit())

	res, err := env.producer.MineOneBlock(context.Background(), common.Hash{}, true)
	require.NoError(t, err)
	require.Equal(t, uint64(50_000), res.Block.GasLimit())
}

func TestAutomineDisabled(t *testing.T) {
	env := newTestEnv(t, 0, 30_000_000, nil)
	env.automine.SetEnabled(false)
	hash := env.add(t, transfer(alice, 0, 1))

	outcome, blocks, err := env.automine.OnAdmitted(context.Background(), hash)
	require.NoError(t, err)
	require.Nil(t, outcome)
	require.Empty(t, blocks)

	env.automine.SetEnabled(true)
	require.True(t, env.automine.Enabled())
	require.True(t, env.pool.Automine())
	outcome, blocks, err = env.automine.OnAdmitted(context.Background(), hash)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.NoError(t, outcome.Err)
	require.Equal(t, blocks[0].Hash(), outcome.Block.Hash())
}

func TestIntervalMiner(t *testing.T) {
	logger := log.New()
	logger.SetHandler(log.DiscardHandler())

	var mined atomic.Int32
	m := NewIntervalMiner(0, func(context.Context) error {
		mined.Add(1)
		return nil
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	require.Zero(t, mined.Load())

	m.SetInterval(5 * time.Millisecond)
	require.Equal(t, 5*time.Millisecond, m.Interval())
	require.Eventually(t, func() bool { return mined.Load() >= 3 }, 5*time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
