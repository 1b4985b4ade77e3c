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
	"errors"

	"github.com/erigontech/devchain/txnprovider/txpool/txpoolcfg"
)

// Sentinels matched by DiscardError.Is.
var (
	ErrUnknownAccount         = errors.New("unknown account")
	ErrEmptyContractCreation  = errors.New("contract creation without data")
	ErrNonceTooLow            = errors.New("nonce too low")
	ErrNonceTooHigh           = errors.New("nonce too high")
	ErrReplacementUnderpriced = errors.New("replacement transaction underpriced")
	ErrKnownTransaction       = errors.New("known transaction")
	ErrGasLimitTooHigh        = errors.New("exceeds block gas limit")
	ErrPriceBelowFloor        = errors.New("gas price below minimum")
	ErrInsufficientFunds      = errors.New("insufficient funds")
)

// invalidInputErrorCode is the JSON-RPC code of every admission error.
const invalidInputErrorCode = -32000

var reasonErrors = map[txpoolcfg.DiscardReason]error{
	txpoolcfg.UnknownAccount:     ErrUnknownAccount,
	txpoolcfg.InvalidCreateTxn:   ErrEmptyContractCreation,
	txpoolcfg.NonceTooLow:        ErrNonceTooLow,
	txpoolcfg.NonceTooHigh:       ErrNonceTooHigh,
	txpoolcfg.ReplaceUnderpriced: ErrReplacementUnderpriced,
	txpoolcfg.AlreadyKnown:       ErrKnownTransaction,
	txpoolcfg.GasLimitTooHigh:    ErrGasLimitTooHigh,
	txpoolcfg.FeeTooLow:          ErrPriceBelowFloor,
	txpoolcfg.InsufficientFunds:  ErrInsufficientFunds,
}

// DiscardError is returned when a transaction is refused admission. Msg is
// the user facing message.
type DiscardError struct {
	Reason txpoolcfg.DiscardReason
	Msg    string
}

func (e *DiscardError) Error() string {
	if e.Msg == "" {
		return e.Reason.String()
	}
	return e.Msg
}

func (e *DiscardError) ErrorCode() int { return invalidInputErrorCode }

func (e *DiscardError) Is(target error) bool {
	sentinel, ok := reasonErrors[e.Reason]
	return ok && sentinel == target
}
