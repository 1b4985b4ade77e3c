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

package types

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	addrA = common.HexToAddress("0x000000000000000000000000000000000000000a")
	addrB = common.HexToAddress("0x000000000000000000000000000000000000000b")
)

func TestTransactionHash(t *testing.T) {
	base := NewTransaction(addrA, 0, addrB, uint256.NewInt(1), 21000, uint256.NewInt(20), nil)

	t.Run("deterministic", func(t *testing.T) {
		again := NewTransaction(addrA, 0, addrB, uint256.NewInt(1), 21000, uint256.NewInt(20), nil)
		assert.Equal(t, base.Hash(), again.Hash())
	})

	tests := []struct {
		name string
		txn  *Transaction
	}{
		{"nonce", NewTransaction(addrA, 1, addrB, uint256.NewInt(1), 21000, uint256.NewInt(20), nil)},
		{"price", NewTransaction(addrA, 0, addrB, uint256.NewInt(1), 21000, uint256.NewInt(22), nil)},
		{"sender", NewTransaction(addrB, 0, addrB, uint256.NewInt(1), 21000, uint256.NewInt(20), nil)},
		{"data", NewTransaction(addrA, 0, addrB, uint256.NewInt(1), 21000, uint256.NewInt(20), []byte{1})},
		{"create", NewContractCreation(addrA, 0, uint256.NewInt(1), 21000, uint256.NewInt(20), nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base.Hash(), tt.txn.Hash())
		})
	}
}

func TestTransactionAccessorsReturnCopies(t *testing.T) {
	price := uint256.NewInt(20)
	txn := NewTransaction(addrA, 3, addrB, uint256.NewInt(5), 21000, price, []byte{1, 2})
	price.SetUint64(1)

	got := txn.GetPrice()
	require.Equal(t, uint64(20), got.Uint64())
	got.SetUint64(99)
	require.Equal(t, uint64(20), txn.GetPrice().Uint64())

	to := txn.GetTo()
	require.NotNil(t, to)
	*to = addrA
	require.Equal(t, addrB, *txn.GetTo())

	cost, overflow := txn.Cost()
	require.False(t, overflow)
	require.Equal(t, uint64(21000*20+5), cost.Uint64())
	require.False(t, txn.IsContractCreation())
	require.True(t, NewContractCreation(addrA, 0, nil, 53000, nil, []byte{1}).IsContractCreation())
}

func TestTransactionCostOverflow(t *testing.T) {
	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 255)

	t.Run("gas times price", func(t *testing.T) {
		_, overflow := NewTransaction(addrA, 0, addrB, uint256.NewInt(0), 21000, huge, nil).Cost()
		assert.True(t, overflow)
	})
	t.Run("plus value", func(t *testing.T) {
		_, overflow := NewTransaction(addrA, 0, addrB, huge, 1, huge, nil).Cost()
		assert.True(t, overflow)
	})
	t.Run("fits", func(t *testing.T) {
		half := new(uint256.Int).Rsh(huge, 1)
		cost, overflow := NewTransaction(addrA, 0, addrB, uint256.NewInt(1), 2, half, nil).Cost()
		require.False(t, overflow)
		assert.Equal(t, new(uint256.Int).AddUint64(huge, 1), cost)
	})
}

func TestNewBlock(t *testing.T) {
	txn := NewTransaction(addrA, 0, addrB, uint256.NewInt(1), 21000, uint256.NewInt(1), nil)
	header := &Header{Number: 7, GasLimit: 30_000_000, BaseFee: uint256.NewInt(0)}
	receipt := &Receipt{TxHash: txn.Hash(), Status: ReceiptStatusSuccessful, GasUsed: 21000}

	block := NewBlock(header, []*Transaction{txn}, []*Receipt{receipt})
	require.Equal(t, uint64(7), block.NumberU64())
	require.NotEqual(t, EmptyTxsHash, block.TxHash())
	require.Equal(t, block.Header().Hash(), block.Hash())

	foundTxn, foundReceipt := block.Transaction(txn.Hash())
	require.Equal(t, txn, foundTxn)
	require.Equal(t, block.Hash(), foundReceipt.BlockHash)
	require.Equal(t, uint64(7), foundReceipt.BlockNumber)
	// the caller's receipt is not mutated
	require.Equal(t, common.Hash{}, receipt.BlockHash)

	empty := NewBlock(&Header{Number: 8, ParentHash: block.Hash()}, nil, nil)
	require.Equal(t, EmptyTxsHash, empty.TxHash())
	require.NotEqual(t, block.Hash(), empty.Hash())
}
