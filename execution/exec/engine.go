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

// Package exec applies transactions to the dev chain state. There is no
// interpreter: value transfers are executed for real, contract creation stores
// the payload as code and a call into code starting with REVERT reverts.
package exec

import (
	"github.com/erigontech/devchain/core"
	"github.com/erigontech/devchain/core/state"
	"github.com/erigontech/devchain/core/types"
)

// Engine applies a single transaction on top of ibs.
//
// A non-executable transaction yields an error for which IsNonExecutable holds
// and leaves ibs and gp untouched. A transaction that was executed, whether it
// succeeded, reverted or ran out of gas, yields a receipt and a nil error. Any
// other error comes from the state (e.g. a failed remote read) and may leave
// ibs partially modified; callers revert to a snapshot.
type Engine interface {
	Apply(txn *types.Transaction, ibs *state.IntraBlockState, header *types.Header, gp *core.GasPool) (*types.Receipt, error)
}

// opRevert is the first byte of code that always reverts.
const opRevert byte = 0xfd

var _ Engine = TransferEngine{}

type TransferEngine struct{}

func (TransferEngine) Apply(txn *types.Transaction, ibs *state.IntraBlockState, header *types.Header, gp *core.GasPool) (*types.Receipt, error) {
	return newStateTransition(txn, ibs, header, gp).transitionDb()
}
