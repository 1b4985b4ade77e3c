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
	"github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"

	"github.com/erigontech/devchain/core"
	"github.com/erigontech/devchain/core/state"
	"github.com/erigontech/devchain/core/types"
)

// environment is the block under construction.
type environment struct {
	state    *state.IntraBlockState // apply state changes here
	snapshot int                    // revision at the start of the block
	gasPool  *core.GasPool          // available gas used to pack transactions
	header   *types.Header

	txs      []*types.Transaction
	receipts []*types.Receipt

	evicted        []common.Hash
	evictedErrs    map[common.Hash]error
	evictedSenders mapset.Set[common.Address] // senders skipped for the rest of the block
}

func newEnvironment(ibs *state.IntraBlockState, header *types.Header) *environment {
	return &environment{
		state:          ibs,
		snapshot:       ibs.Snapshot(),
		gasPool:        new(core.GasPool).AddGas(header.GasLimit),
		header:         header,
		evictedErrs:    map[common.Hash]error{},
		evictedSenders: mapset.NewThreadUnsafeSet[common.Address](),
	}
}

func (env *environment) tcount() int { return len(env.txs) }

func (env *environment) include(txn *types.Transaction, receipt *types.Receipt) {
	env.header.GasUsed += receipt.GasUsed
	receipt.CumulativeGasUsed = env.header.GasUsed
	receipt.TransactionIndex = uint(env.tcount())
	env.txs = append(env.txs, txn)
	env.receipts = append(env.receipts, receipt)
}

func (env *environment) evict(txn *types.Transaction, err error) {
	env.evicted = append(env.evicted, txn.Hash())
	env.evictedErrs[txn.Hash()] = err
	env.evictedSenders.Add(txn.GetSender())
}

func (env *environment) skipped(txn *types.Transaction) bool {
	return env.evictedSenders.Contains(txn.GetSender())
}
