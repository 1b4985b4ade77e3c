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
	"github.com/ethereum/go-ethereum/common"
)

const (
	// ReceiptStatusFailed is the status code of a transaction if execution failed.
	ReceiptStatusFailed = uint64(0)

	// ReceiptStatusSuccessful is the status code of a transaction if execution succeeded.
	ReceiptStatusSuccessful = uint64(1)
)

// Receipt represents the results of an included transaction. A failed status
// still means the transaction was mined: its nonce and gas were consumed.
type Receipt struct {
	TxHash            common.Hash
	Status            uint64
	GasUsed           uint64
	CumulativeGasUsed uint64
	ContractAddress   common.Address
	ReturnData        []byte
	// Err describes why execution failed (revert, out of gas). nil on success.
	Err error

	BlockHash        common.Hash
	BlockNumber      uint64
	TransactionIndex uint
}

func (r *Receipt) Failed() bool { return r.Status == ReceiptStatusFailed }

// Receipts is an ordered list of receipts.
type Receipts []*Receipt

// Len returns the number of receipts in this list.
func (rs Receipts) Len() int { return len(rs) }
