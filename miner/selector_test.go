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
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/devchain/core/types"
	"github.com/erigontech/devchain/txnprovider/txpool"
)

type candidate struct {
	name  string
	nonce uint64
	price uint64
	gas   uint64
	seq   uint64
}

func TestSelectForBlock(t *testing.T) {
	senders := map[string]common.Address{
		"a": common.HexToAddress("0xa"),
		"b": common.HexToAddress("0xb"),
		"c": common.HexToAddress("0xc"),
	}
	tests := []struct {
		name         string
		pending      map[string][]candidate
		remainingGas uint64
		minGasPrice  uint64
		want         []string
	}{
		{
			name: "highest price first",
			pending: map[string][]candidate{
				"a": {{name: "a0", price: 5, gas: 21000, seq: 0}},
				"b": {{name: "b0", price: 10, gas: 21000, seq: 1}},
			},
			remainingGas: 1_000_000,
			want:         []string{"b0", "a0"},
		},
		{
			name: "equal price goes to the earliest submitted",
			pending: map[string][]candidate{
				"a": {{name: "a0", price: 5, gas: 21000, seq: 1}},
				"b": {{name: "b0", price: 5, gas: 21000, seq: 0}},
				"c": {{name: "c0", price: 5, gas: 21000, seq: 2}},
			},
			remainingGas: 1_000_000,
			want:         []string{"b0", "a0", "c0"},
		},
		{
			name: "nonce order within a sender",
			pending: map[string][]candidate{
				"a": {{name: "a0", nonce: 0, price: 1, gas: 21000, seq: 0}, {name: "a1", nonce: 1, price: 100, gas: 21000, seq: 1}},
				"b": {{name: "b0", price: 50, gas: 21000, seq: 2}},
			},
			remainingGas: 1_000_000,
			want:         []string{"b0", "a0", "a1"},
		},
		{
			name: "head below minimum blocks the sender",
			pending: map[string][]candidate{
				"a": {{name: "a0", nonce: 0, price: 1, gas: 21000, seq: 0}, {name: "a1", nonce: 1, price: 10, gas: 21000, seq: 1}},
				"b": {{name: "b0", price: 2, gas: 21000, seq: 2}},
			},
			remainingGas: 1_000_000,
			minGasPrice:  2,
			want:         []string{"b0"},
		},
		{
			name: "head above remaining gas blocks the sender",
			pending: map[string][]candidate{
				"a": {{name: "a0", nonce: 0, price: 10, gas: 30000, seq: 0}},
				"b": {{name: "b0", nonce: 0, price: 5, gas: 21000, seq: 1}, {name: "b1", nonce: 1, price: 5, gas: 5000, seq: 2}},
				"c": {{name: "c0", price: 1, gas: 10000, seq: 3}},
			},
			remainingGas: 42000,
			want:         []string{"a0", "c0"},
		},
		{
			name: "later nonce blocked after the block filled up",
			pending: map[string][]candidate{
				"a": {{name: "a0", nonce: 0, price: 10, gas: 30000, seq: 0}, {name: "a1", nonce: 1, price: 10, gas: 21000, seq: 1}},
				"b": {{name: "b0", price: 5, gas: 10000, seq: 2}},
			},
			remainingGas: 50000,
			want:         []string{"a0", "b0"},
		},
		{
			name:         "empty pool",
			remainingGas: 1_000_000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := map[common.Hash]string{}
			var pending [][]txpool.PendingTxn
			for sender, cands := range tt.pending {
				var txns []txpool.PendingTxn
				for _, c := range cands {
					txn := types.NewTransaction(senders[sender], c.nonce, common.Address{}, uint256.NewInt(0), c.gas, uint256.NewInt(c.price), nil)
					names[txn.Hash()] = c.name
					txns = append(txns, txpool.PendingTxn{Txn: txn, Seq: c.seq})
				}
				pending = append(pending, txns)
			}

			selected := SelectForBlock(pending, tt.remainingGas, uint256.NewInt(tt.minGasPrice))
			var got []string
			for _, txn := range selected {
				got = append(got, names[txn.Hash()])
			}
			require.Equal(t, tt.want, got)
		})
	}
}
