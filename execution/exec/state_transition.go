// Copyright 2014 The go-ethereum Authors
// (original work)
// Copyright 2024 The Erigon Authors
// (modifications)
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
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/erigontech/devchain/core"
	"github.com/erigontech/devchain/core/state"
	"github.com/erigontech/devchain/core/types"
)

type stateTransition struct {
	txn          *types.Transaction
	gp           *core.GasPool
	state        *state.IntraBlockState
	header       *types.Header
	from         common.Address
	gasPrice     *uint256.Int
	value        *uint256.Int
	initialGas   uint64
	gasRemaining uint64
}

func newStateTransition(txn *types.Transaction, ibs *state.IntraBlockState, header *types.Header, gp *core.GasPool) *stateTransition {
	return &stateTransition{
		txn:      txn,
		gp:       gp,
		state:    ibs,
		header:   header,
		from:     txn.GetSender(),
		gasPrice: txn.GetPrice(),
		value:    txn.GetValue(),
	}
}

// preCheck runs every validation that doesn't modify the state.
func (st *stateTransition) preCheck() (intrinsic uint64, err error) {
	stNonce, err := st.state.GetNonce(st.from)
	if err != nil {
		return 0, err
	}
	if msgNonce := st.txn.GetNonce(); stNonce < msgNonce {
		return 0, fmt.Errorf("%w: address %v, tx: %d state: %d", ErrNonceTooHigh, st.from, msgNonce, stNonce)
	} else if stNonce > msgNonce {
		return 0, fmt.Errorf("%w: address %v, tx: %d state: %d", ErrNonceTooLow, st.from, msgNonce, stNonce)
	}

	if baseFee := st.header.BaseFee; baseFee != nil && st.gasPrice.Lt(baseFee) {
		return 0, fmt.Errorf("%w: address %v, gasPrice: %s baseFee: %s", ErrFeeTooLow, st.from, st.gasPrice, baseFee)
	}

	intrinsic, err = IntrinsicGas(st.txn.GetData(), st.txn.IsContractCreation())
	if err != nil {
		return 0, err
	}
	if st.txn.GetGasLimit() < intrinsic {
		return 0, fmt.Errorf("%w: have %d, want %d", ErrIntrinsicGas, st.txn.GetGasLimit(), intrinsic)
	}

	if st.gp.Gas() < st.txn.GetGasLimit() {
		return 0, fmt.Errorf("%w: have %d, want %d", ErrGasLimitReached, st.gp.Gas(), st.txn.GetGasLimit())
	}

	want, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(st.txn.GetGasLimit()), st.gasPrice)
	if !overflow {
		_, overflow = want.AddOverflow(want, st.value)
	}
	have, err := st.state.GetBalance(st.from)
	if err != nil {
		return 0, err
	}
	if overflow || have.Lt(want) {
		return 0, fmt.Errorf("%w: address %v have %v want %v", ErrInsufficientFunds, st.from, have, want)
	}
	return intrinsic, nil
}

func (st *stateTransition) buyGas() error {
	mgval := new(uint256.Int).Mul(uint256.NewInt(st.txn.GetGasLimit()), st.gasPrice)
	if err := st.gp.SubGas(st.txn.GetGasLimit()); err != nil {
		return err
	}
	st.initialGas = st.txn.GetGasLimit()
	st.gasRemaining = st.txn.GetGasLimit()
	return st.state.SubBalance(st.from, mgval)
}

// transitionDb applies the transaction and returns its receipt. The receipt's
// Err carries ErrExecutionReverted or ErrOutOfGas when execution failed.
func (st *stateTransition) transitionDb() (*types.Receipt, error) {
	intrinsic, err := st.preCheck()
	if err != nil {
		return nil, err
	}
	if err := st.buyGas(); err != nil {
		return nil, err
	}
	nonce := st.txn.GetNonce()
	if err := st.state.SetNonce(st.from, nonce+1); err != nil {
		return nil, err
	}
	st.gasRemaining -= intrinsic

	receipt := &types.Receipt{TxHash: st.txn.Hash()}
	var vmerr error
	if st.txn.IsContractCreation() {
		receipt.ContractAddress = crypto.CreateAddress(st.from, nonce)
		vmerr, err = st.create(receipt.ContractAddress)
	} else {
		vmerr, err = st.call(*st.txn.GetTo())
	}
	if err != nil {
		return nil, err
	}

	if err := st.refundGas(); err != nil {
		return nil, err
	}
	reward := new(uint256.Int).Mul(uint256.NewInt(st.gasUsed()), st.gasPrice)
	if err := st.state.AddBalance(st.header.Coinbase, reward); err != nil {
		return nil, err
	}

	receipt.GasUsed = st.gasUsed()
	receipt.Err = vmerr
	if vmerr == nil {
		receipt.Status = types.ReceiptStatusSuccessful
	} else {
		receipt.Status = types.ReceiptStatusFailed
	}
	return receipt, nil
}

// create stores the payload as code at addr. Running out of gas consumes
// everything that is left.
func (st *stateTransition) create(addr common.Address) (vmerr, err error) {
	depositGas := uint64(len(st.txn.GetData())) * CreateDataGas
	if st.gasRemaining < depositGas {
		st.gasRemaining = 0
		return ErrOutOfGas, nil
	}
	st.gasRemaining -= depositGas
	if err := st.state.SetCode(addr, st.txn.GetData()); err != nil {
		return nil, err
	}
	if err := st.transfer(addr); err != nil {
		return nil, err
	}
	return nil, nil
}

func (st *stateTransition) call(to common.Address) (vmerr, err error) {
	code, err := st.state.GetCode(to)
	if err != nil {
		return nil, err
	}
	if len(code) > 0 && code[0] == opRevert {
		return ErrExecutionReverted, nil
	}
	if err := st.transfer(to); err != nil {
		return nil, err
	}
	return nil, nil
}

func (st *stateTransition) transfer(to common.Address) error {
	if st.value.IsZero() {
		return nil
	}
	if err := st.state.SubBalance(st.from, st.value); err != nil {
		return err
	}
	return st.state.AddBalance(to, st.value)
}

func (st *stateTransition) refundGas() error {
	// Return ETH for remaining gas, exchanged at the original rate.
	remaining := new(uint256.Int).Mul(uint256.NewInt(st.gasRemaining), st.gasPrice)
	if err := st.state.AddBalance(st.from, remaining); err != nil {
		return err
	}
	// Also return remaining gas to the block gas counter so it is
	// available for the next transaction.
	st.gp.AddGas(st.gasRemaining)
	return nil
}

// gasUsed returns the amount of gas used up by the state transition.
func (st *stateTransition) gasUsed() uint64 {
	return st.initialGas - st.gasRemaining
}
