// Copyright 2024 The Erigon Authors
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
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/erigontech/devchain/core/types"
)

type SubPoolType uint8

const PendingSubPool SubPoolType = 1
const QueuedSubPool SubPoolType = 3

func (sp SubPoolType) String() string {
	switch sp {
	case PendingSubPool:
		return "Pending"
	case QueuedSubPool:
		return "Queued"
	}
	return fmt.Sprintf("Unknown:%d", sp)
}

// metaTxn holds transaction and some metadata
type metaTxn struct {
	Txn            *types.Transaction
	sender         common.Address
	nonce          uint64
	seq            uint64 // insertion order, used to break ties between equally priced transactions
	currentSubPool SubPoolType
}

func newMetaTxn(txn *types.Transaction, seq uint64) *metaTxn {
	return &metaTxn{Txn: txn, sender: txn.GetSender(), nonce: txn.GetNonce(), seq: seq}
}
