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

package txpool

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/btree"
)

func sortByNonceLess(a, b *metaTxn) bool {
	if c := bytes.Compare(a.sender[:], b.sender[:]); c != 0 {
		return c < 0
	}
	return a.nonce < b.nonce
}

// BySenderAndNonce - designed to perform most expensive operation in TxPool:
// "recalculate all ephemeral fields of all transactions" by algo
//   - for all senders - iterate over all transactions in nonce growing order
//
// All senders stored inside 1 large BTree - because iterate over 1 BTree is faster than over map[sender]BTree
type BySenderAndNonce struct {
	tree               *btree.BTreeG[*metaTxn]
	search             *metaTxn
	senderPendingCount map[common.Address]int // length of sender's pending run
}

func NewBySenderAndNonce() *BySenderAndNonce {
	return &BySenderAndNonce{
		tree:               btree.NewG[*metaTxn](32, sortByNonceLess),
		search:             &metaTxn{},
		senderPendingCount: map[common.Address]int{},
	}
}

func (b *BySenderAndNonce) searchFor(sender common.Address, nonce uint64) *metaTxn {
	b.search.sender = sender
	b.search.nonce = nonce
	return b.search
}

func (b *BySenderAndNonce) ascendAll(f func(*metaTxn) bool) {
	b.tree.Ascend(func(mt *metaTxn) bool {
		return f(mt)
	})
}

func (b *BySenderAndNonce) ascend(sender common.Address, f func(*metaTxn) bool) {
	b.tree.AscendGreaterOrEqual(b.searchFor(sender, 0), func(mt *metaTxn) bool {
		if mt.sender != sender {
			return false
		}
		return f(mt)
	})
}

func (b *BySenderAndNonce) pendingCount(sender common.Address) int {
	return b.senderPendingCount[sender]
}

func (b *BySenderAndNonce) setPendingCount(sender common.Address, n int) {
	if n == 0 {
		delete(b.senderPendingCount, sender)
		return
	}
	b.senderPendingCount[sender] = n
}

func (b *BySenderAndNonce) get(sender common.Address, txNonce uint64) *metaTxn {
	if found, ok := b.tree.Get(b.searchFor(sender, txNonce)); ok {
		return found
	}
	return nil
}

func (b *BySenderAndNonce) len() int { return b.tree.Len() }

func (b *BySenderAndNonce) delete(mt *metaTxn) {
	if _, ok := b.tree.Delete(mt); !ok {
		return
	}
	empty := true
	b.ascend(mt.sender, func(*metaTxn) bool {
		empty = false
		return false
	})
	if empty {
		delete(b.senderPendingCount, mt.sender)
	}
}

func (b *BySenderAndNonce) replaceOrInsert(mt *metaTxn) *metaTxn {
	if it, ok := b.tree.ReplaceOrInsert(mt); ok {
		return it
	}
	return nil
}
