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

package txpoolcfg

import "fmt"

type Config struct {
	// PriceBump is the minimum price increase, in percent, needed to replace a
	// transaction occupying the same (sender, nonce) slot.
	PriceBump uint64 `toml:"price_bump"`
	// MinGasPrice is the initial floor below which pending transactions are not
	// selected for a block.
	MinGasPrice uint64 `toml:"min_gas_price"`
	// BlockGasLimit bounds the gas of admitted transactions.
	BlockGasLimit uint64 `toml:"block_gas_limit"`
	// DiscardReasonsCacheSize bounds the number of remembered discard reasons.
	DiscardReasonsCacheSize int `toml:"discard_reasons_cache_size"`
}

var DefaultConfig = Config{
	PriceBump:               10, // Price bump percentage to replace an already existing transaction
	MinGasPrice:             0,
	BlockGasLimit:           30_000_000,
	DiscardReasonsCacheSize: 10_000,
}

type DiscardReason uint8

const devDiscardOffset = 100

const (
	NotSet              DiscardReason = 0 // analog of "nil-value", means it will be set in future
	Success             DiscardReason = 1
	AlreadyKnown        DiscardReason = 2
	Mined               DiscardReason = 3
	ReplacedByHigherTip DiscardReason = 4
	ReplaceUnderpriced  DiscardReason = 6 // if a transaction is attempted to be replaced with a different one without the required price bump.
	FeeTooLow           DiscardReason = 7
	UnknownAccount      DiscardReason = 9
	IntrinsicGas        DiscardReason = 16
	NonceTooLow         DiscardReason = 18
	InsufficientFunds   DiscardReason = 19
	InvalidCreateTxn    DiscardReason = 24 // contract creation without any payload

	NonceTooHigh    DiscardReason = devDiscardOffset + 1 // nonce gap while queuing is disabled
	GasLimitTooHigh DiscardReason = devDiscardOffset + 2 // gas limit above the block gas limit
	NonExecutable   DiscardReason = devDiscardOffset + 3 // rejected by the execution engine while mining
	Dropped         DiscardReason = devDiscardOffset + 4 // removed on request
	Reverted        DiscardReason = devDiscardOffset + 5 // pool content rolled back to a snapshot
)

func (r DiscardReason) String() string {
	switch r {
	case NotSet:
		return "not set"
	case Success:
		return "success"
	case AlreadyKnown:
		return "already known"
	case Mined:
		return "mined"
	case ReplacedByHigherTip:
		return "replaced by transaction with higher tip"
	case ReplaceUnderpriced:
		return "replacement transaction underpriced"
	case FeeTooLow:
		return "fee too low"
	case UnknownAccount:
		return "unknown account"
	case IntrinsicGas:
		return "intrinsic gas too low"
	case NonceTooLow:
		return "nonce too low"
	case InsufficientFunds:
		return "insufficient funds"
	case InvalidCreateTxn:
		return "contract creation without data"
	case NonceTooHigh:
		return "nonce too high"
	case GasLimitTooHigh:
		return "exceeds block gas limit"
	case NonExecutable:
		return "not executable"
	case Dropped:
		return "dropped"
	case Reverted:
		return "reverted to snapshot"
	default:
		panic(fmt.Sprintf("discard reason: %d", r))
	}
}
