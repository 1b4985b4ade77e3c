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

package exec

import (
	"errors"

	"github.com/erigontech/devchain/core"
)

// List of errors that make a transaction non-executable. A transaction failing
// with one of them never makes it into a block and leaves no trace in the state.
var (
	// ErrNonceTooLow is returned if the nonce of a transaction is lower than the
	// one present in the local chain.
	ErrNonceTooLow = errors.New("nonce too low")

	// ErrNonceTooHigh is returned if the nonce of a transaction is higher than the
	// next one expected based on the local chain.
	ErrNonceTooHigh = errors.New("nonce too high")

	// ErrGasLimitReached is returned by the gas pool if the amount of gas required
	// by a transaction is higher than what's left in the block.
	ErrGasLimitReached = core.ErrGasLimitReached

	// ErrInsufficientFunds is returned if the total cost of executing a transaction
	// is higher than the balance of the user's account.
	ErrInsufficientFunds = errors.New("insufficient funds for gas * price + value")

	// ErrIntrinsicGas is returned if the transaction is specified to use less gas
	// than required to start the invocation.
	ErrIntrinsicGas = errors.New("intrinsic gas too low")

	// ErrFeeTooLow is returned if the gas price of a transaction is below the base
	// fee of the block it is applied in.
	ErrFeeTooLow = errors.New("gas price less than block base fee")

	// ErrGasUintOverflow is returned when calculating gas usage.
	ErrGasUintOverflow = errors.New("gas uint64 overflow")
)

// Execution outcomes. A transaction ending with one of them is included and
// the error is attached to its receipt.
var (
	ErrExecutionReverted = errors.New("execution reverted")
	ErrOutOfGas          = errors.New("out of gas")
)

// IsNonExecutable reports whether err means the transaction can't be applied
// on top of the current state at all.
func IsNonExecutable(err error) bool {
	return errors.Is(err, ErrNonceTooLow) ||
		errors.Is(err, ErrNonceTooHigh) ||
		errors.Is(err, ErrGasLimitReached) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrIntrinsicGas) ||
		errors.Is(err, ErrFeeTooLow) ||
		errors.Is(err, ErrGasUintOverflow)
}
