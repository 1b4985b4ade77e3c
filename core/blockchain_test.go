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

package core

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/ledgerwatch/log/v3"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/devchain/core/types"
)

func testLogger() log.Logger {
	logger := log.New()
	logger.SetHandler(log.DiscardHandler())
	return logger
}

func nextBlock(parent *types.Block, txs ...*types.Transaction) *types.Block {
	header := &types.Header{
		ParentHash: parent.Hash(),
		Number:     parent.NumberU64() + 1,
		GasLimit:   parent.GasLimit(),
		Time:       parent.Time() + 1,
	}
	receipts := make([]*types.Receipt, len(txs))
	for i, txn := range txs {
		receipts[i] = &types.Receipt{TxHash: txn.Hash(), Status: types.ReceiptStatusSuccessful, GasUsed: 21000}
	}
	return types.NewBlock(header, txs, receipts)
}

func transfer(nonce uint64) *types.Transaction {
	from := common.HexToAddress("0x01")
	return types.NewTransaction(from, nonce, common.HexToAddress("0x02"), uint256.NewInt(1), 21000, uint256.NewInt(1), nil)
}

func TestBlockChainForkNumbering(t *testing.T) {
	genesis := (&GenesisSpec{Number: 1_000_000, GasLimit: 30_000_000}).ToBlock()
	bc := NewBlockChain(genesis, testLogger())

	b1 := nextBlock(genesis)
	require.NoError(t, bc.InsertBlock(b1))
	require.Equal(t, uint64(1_000_001), bc.CurrentBlock().NumberU64())
	require.Equal(t, genesis, bc.GetBlockByNumber(1_000_000))
	require.Nil(t, bc.GetBlockByNumber(0))
	require.Nil(t, bc.GetBlockByNumber(1_000_002))
	require.Equal(t, b1, bc.GetBlockByHash(b1.Hash()))
}

func TestBlockChainRejectsNonContiguous(t *testing.T) {
	genesis := (&GenesisSpec{GasLimit: 30_000_000}).ToBlock()
	bc := NewBlockChain(genesis, testLogger())

	b1 := nextBlock(genesis)
	require.NoError(t, bc.InsertBlock(b1))
	require.ErrorIs(t, bc.InsertBlock(b1), ErrNotContiguous)
	require.ErrorIs(t, bc.InsertBlock(nextBlock(genesis)), ErrNotContiguous)
}

func TestBlockChainTransactionLookupAndTruncate(t *testing.T) {
	genesis := (&GenesisSpec{GasLimit: 30_000_000}).ToBlock()
	bc := NewBlockChain(genesis, testLogger())

	tx0, tx1 := transfer(0), transfer(1)
	b1 := nextBlock(genesis, tx0)
	require.NoError(t, bc.InsertBlock(b1))
	b2 := nextBlock(b1, tx1)
	require.NoError(t, bc.InsertBlock(b2))

	txn, receipt, block := bc.GetTransaction(tx1.Hash())
	require.Equal(t, tx1, txn)
	require.Equal(t, b2.Hash(), block.Hash())
	require.Equal(t, b2.Hash(), receipt.BlockHash)
	require.Equal(t, uint64(2), receipt.BlockNumber)

	require.NoError(t, bc.TruncateTo(1))
	require.Equal(t, b1.Hash(), bc.CurrentBlock().Hash())
	txn, _, _ = bc.GetTransaction(tx1.Hash())
	require.Nil(t, txn)
	require.Nil(t, bc.GetBlockByHash(b2.Hash()))
	txn, _, _ = bc.GetTransaction(tx0.Hash())
	require.Equal(t, tx0, txn)

	require.ErrorIs(t, bc.TruncateTo(5), ErrUnknownBlock)

	// the chain grows again from the truncated head
	require.NoError(t, bc.InsertBlock(nextBlock(b1)))
}

func TestGasPool(t *testing.T) {
	gp := new(GasPool).AddGas(50_000)
	require.NoError(t, gp.SubGas(21_000))
	require.Equal(t, uint64(29_000), gp.Gas())
	require.ErrorIs(t, gp.SubGas(29_001), ErrGasLimitReached)
	require.Equal(t, uint64(29_000), gp.Gas())
}
