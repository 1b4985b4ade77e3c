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
	"github.com/google/btree"
	"github.com/holiman/uint256"

	"github.com/erigontech/devchain/core/types"
	"github.com/erigontech/devchain/txnprovider/txpool"
)

// senderHead is the lowest not yet selected pending transaction of a sender.
type senderHead struct {
	txns []txpool.PendingTxn
	idx  int
}

func (h *senderHead) txn() txpool.PendingTxn { return h.txns[h.idx] }

// byPriceAndSeq orders heads by descending gas price, then by ascending
// insertion sequence. Sequences are unique so the order is total.
func byPriceAndSeq(a, b *senderHead) bool {
	if cmp := a.txn().Txn.GetPrice().Cmp(b.txn().Txn.GetPrice()); cmp != 0 {
		return cmp > 0
	}
	return a.txn().Seq < b.txn().Seq
}

// SelectForBlock picks the transactions of the next block from the pending
// sub-pool. pending holds one nonce-ordered slice per sender.
//
// The candidate with the highest gas price among all sender heads is taken
// first, ties going to the earliest submitted one. A head whose price is below
// minGasPrice or whose gas doesn't fit in what is left of remainingGas blocks
// the rest of its sender's transactions for this block.
func SelectForBlock(pending [][]txpool.PendingTxn, remainingGas uint64, minGasPrice *uint256.Int) []*types.Transaction {
	heads := btree.NewG[*senderHead](8, byPriceAndSeq)
	for _, txns := range pending {
		if len(txns) > 0 {
			heads.ReplaceOrInsert(&senderHead{txns: txns})
		}
	}

	var selected []*types.Transaction
	for {
		head, ok := heads.DeleteMin()
		if !ok {
			break
		}
		txn := head.txn().Txn
		if minGasPrice != nil && txn.GetPrice().Lt(minGasPrice) {
			continue
		}
		if txn.GetGasLimit() > remainingGas {
			continue
		}
		selected = append(selected, txn)
		remainingGas -= txn.GetGasLimit()
		if head.idx++; head.idx < len(head.txns) {
			heads.ReplaceOrInsert(head)
		}
	}
	return selected
}
