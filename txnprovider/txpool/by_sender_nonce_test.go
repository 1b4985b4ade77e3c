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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBySenderAndNonceDeleteLastClearsPendingCount(t *testing.T) {
	idx := NewBySenderAndNonce()
	first := &metaTxn{sender: alice, nonce: 0}
	second := &metaTxn{sender: alice, nonce: 1}
	other := &metaTxn{sender: bob, nonce: 0}
	for _, mt := range []*metaTxn{first, second, other} {
		require.Nil(t, idx.replaceOrInsert(mt))
	}
	idx.setPendingCount(alice, 2)
	idx.setPendingCount(bob, 1)

	idx.delete(first)
	require.Equal(t, 2, idx.pendingCount(alice))
	require.Equal(t, 2, idx.len())

	idx.delete(second)
	require.Zero(t, idx.pendingCount(alice))
	require.NotContains(t, idx.senderPendingCount, alice)
	require.Equal(t, 1, idx.pendingCount(bob))

	idx.delete(second)
	require.Equal(t, 1, idx.len())
}

func TestBySenderAndNonceAscendStaysOnSender(t *testing.T) {
	idx := NewBySenderAndNonce()
	for _, mt := range []*metaTxn{{sender: bob, nonce: 0}, {sender: alice, nonce: 2}, {sender: alice, nonce: 0}} {
		idx.replaceOrInsert(mt)
	}
	var nonces []uint64
	idx.ascend(alice, func(mt *metaTxn) bool {
		nonces = append(nonces, mt.nonce)
		return true
	})
	require.Equal(t, []uint64{0, 2}, nonces)

	replaced := idx.replaceOrInsert(&metaTxn{sender: alice, nonce: 2, seq: 9})
	require.NotNil(t, replaced)
	require.Equal(t, uint64(2), replaced.nonce)
	require.Equal(t, uint64(9), idx.get(alice, 2).seq)
}
