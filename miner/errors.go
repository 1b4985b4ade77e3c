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
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/erigontech/devchain/core/types"
	"github.com/erigontech/devchain/execution/exec"
)

const (
	invalidInputErrorCode = -32000
	internalErrorCode     = -32603
)

// InvalidInputError is reported for a transaction that was admitted but turned
// out to be non-executable when its block was built. It was evicted from the
// pool.
type InvalidInputError struct {
	Hash common.Hash
	Err  error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("transaction %x can't be mined: %v", e.Hash, e.Err)
}

func (e *InvalidInputError) Unwrap() error  { return e.Err }
func (e *InvalidInputError) ErrorCode() int { return invalidInputErrorCode }

// ExecutionError is reported for a transaction that was mined but failed.
type ExecutionError struct {
	Hash    common.Hash
	Receipt *types.Receipt
}

func (e *ExecutionError) Error() string {
	switch {
	case errors.Is(e.Receipt.Err, exec.ErrExecutionReverted):
		return "Transaction reverted without a reason"
	case errors.Is(e.Receipt.Err, exec.ErrOutOfGas):
		return "Transaction ran out of gas"
	case e.Receipt.Err != nil:
		return fmt.Sprintf("Transaction failed: %v", e.Receipt.Err)
	}
	return "Transaction failed"
}

func (e *ExecutionError) Unwrap() error  { return e.Receipt.Err }
func (e *ExecutionError) ErrorCode() int { return internalErrorCode }

// ErrorData carries the hash so that clients can still fetch the receipt.
func (e *ExecutionError) ErrorData() interface{} {
	return map[string]interface{}{
		"txHash":  e.Hash,
		"message": e.Error(),
	}
}
