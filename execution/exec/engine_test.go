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
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/devchain/core"
	"github.com/erigontech/devchain/core/state"
	"github.com/erigontech/devchain/core/types"
)

var (
	sender   = common.HexToAddress("0x1000000000000000000000000000000000000001")
	receiver = common.HexToAddress("0x2000000000000000000000000000000000000002")
	coinbase = common.HexToAddress("0xc0ffee0000000000000000000000000000000000")
)

func setup(t *testing.T, balance uint64) (*state.IntraBlockState, *types.Header, *core.GasPool) {
	t.Helper()
	ibs := state.New(nil)
	require.NoError(t, ibs.SetBalance(sender, uint256.NewInt(balance)))
	header := &types.Header{Number: 1, GasLimit: 1_000_000, Coinbase: coinbase}
	return ibs, header, new(core.GasPool).AddGas(header.GasLimit)
}

func balanceOf(t *testing.T, ibs *state.IntraBlockState, addr common.Address) uint64 {
	t.Helper()
	b, err := ibs.GetBalance(addr)
	require.NoError(t, err)
	return b.Uint64()
}

func TestIntrinsicGas(t *testing.T) {
	cases := map[string]struct {
		data     []byte
		creation bool
		expected uint64
	}{
		"simple no data":   {expected: 21000},
		"zero bytes":       {data: make([]byte, 10), expected: 21040},
		"non-zero bytes":   {data: []byte{1, 2, 3}, expected: 21048},
		"creation":         {data: []byte{0x60, 0x00}, creation: true, expected: 53020},
		"creation no data": {creation: true, expected: 53000},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			gas, err := IntrinsicGas(c.data, c.creation)
			require.NoError(t, err)
			assert.Equal(t, c.expected, gas)
		})
	}
}

func TestTransfer(t *testing.T) {
	ibs, header, gp := setup(t, 1_000_000)
	txn := types.NewTransaction(sender, 0, receiver, uint256.NewInt(1000), 30_000, uint256.NewInt(2), nil)

	receipt, err := TransferEngine{}.Apply(txn, ibs, header, gp)
	require.NoError(t, err)
	require.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	require.Equal(t, uint64(21000), receipt.GasUsed)
	require.Equal(t, txn.Hash(), receipt.TxHash)
	require.NoError(t, receipt.Err)

	require.Equal(t, uint64(1_000_000-1000-42_000), balanceOf(t, ibs, sender))
	require.Equal(t, uint64(1000), balanceOf(t, ibs, receiver))
	require.Equal(t, uint64(42_000), balanceOf(t, ibs, coinbase))
	require.Equal(t, uint64(1_000_000-21000), gp.Gas())

	nonce, err := ibs.GetNonce(sender)
	require.NoError(t, err)
	require.Equal(t, uint64(1), nonce)
}

func TestNonExecutableLeavesNoTrace(t *testing.T) {
	cases := []struct {
		name    string
		txn     *types.Transaction
		baseFee uint64
		gasLeft uint64
		err     error
	}{
		{
			name: "nonce too high",
			txn:  types.NewTransaction(sender, 1, receiver, uint256.NewInt(0), 21000, uint256.NewInt(1), nil),
			err:  ErrNonceTooHigh,
		},
		{
			name: "intrinsic gas",
			txn:  types.NewTransaction(sender, 0, receiver, uint256.NewInt(0), 20999, uint256.NewInt(1), nil),
			err:  ErrIntrinsicGas,
		},
		{
			name:    "gas pool exhausted",
			txn:     types.NewTransaction(sender, 0, receiver, uint256.NewInt(0), 21000, uint256.NewInt(1), nil),
			gasLeft: 20000,
			err:     ErrGasLimitReached,
		},
		{
			name:    "below base fee",
			txn:     types.NewTransaction(sender, 0, receiver, uint256.NewInt(0), 21000, uint256.NewInt(1), nil),
			baseFee: 2,
			err:     ErrFeeTooLow,
		},
		{
			name: "insufficient funds",
			txn:  types.NewTransaction(sender, 0, receiver, uint256.NewInt(1), 21000, uint256.NewInt(1), nil),
			err:  ErrInsufficientFunds,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ibs, header, gp := setup(t, 21000)
			if c.baseFee > 0 {
				header.BaseFee = uint256.NewInt(c.baseFee)
			}
			if c.gasLeft > 0 {
				gp = new(core.GasPool).AddGas(c.gasLeft)
			}
			before := gp.Gas()

			receipt, err := TransferEngine{}.Apply(c.txn, ibs, header, gp)
			require.ErrorIs(t, err, c.err)
			require.True(t, IsNonExecutable(err))
			require.Nil(t, receipt)
			require.Equal(t, before, gp.Gas())
			require.Equal(t, uint64(21000), balanceOf(t, ibs, sender))
			nonce, err := ibs.GetNonce(sender)
			require.NoError(t, err)
			require.Zero(t, nonce)
		})
	}
}

func TestNonceTooLow(t *testing.T) {
	ibs, header, gp := setup(t, 100_000)
	require.NoError(t, ibs.SetNonce(sender, 3))
	txn := types.NewTransaction(sender, 2, receiver, uint256.NewInt(0), 21000, uint256.NewInt(1), nil)
	_, err := TransferEngine{}.Apply(txn, ibs, header, gp)
	require.ErrorIs(t, err, ErrNonceTooLow)
}

func TestContractCreation(t *testing.T) {
	ibs, header, gp := setup(t, 1_000_000)
	code := []byte{0x60, 0x80, 0x60, 0x40}
	txn := types.NewContractCreation(sender, 0, uint256.NewInt(5), 100_000, uint256.NewInt(1), code)

	receipt, err := TransferEngine{}.Apply(txn, ibs, header, gp)
	require.NoError(t, err)
	require.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	require.Equal(t, crypto.CreateAddress(sender, 0), receipt.ContractAddress)
	require.Equal(t, uint64(53000+4*16+4*200), receipt.GasUsed)

	stored, err := ibs.GetCode(receipt.ContractAddress)
	require.NoError(t, err)
	require.Equal(t, code, stored)
	require.Equal(t, uint64(5), balanceOf(t, ibs, receipt.ContractAddress))
}

func TestContractCreationOutOfGas(t *testing.T) {
	ibs, header, gp := setup(t, 1_000_000)
	code := []byte{0x60, 0x80, 0x60, 0x40}
	txn := types.NewContractCreation(sender, 0, uint256.NewInt(5), 53100, uint256.NewInt(1), code)

	receipt, err := TransferEngine{}.Apply(txn, ibs, header, gp)
	require.NoError(t, err)
	require.Equal(t, types.ReceiptStatusFailed, receipt.Status)
	require.ErrorIs(t, receipt.Err, ErrOutOfGas)
	require.Equal(t, uint64(53100), receipt.GasUsed)

	stored, err := ibs.GetCode(receipt.ContractAddress)
	require.NoError(t, err)
	require.Empty(t, stored)
	require.Equal(t, uint64(1_000_000-53100), balanceOf(t, ibs, sender))
	nonce, err := ibs.GetNonce(sender)
	require.NoError(t, err)
	require.Equal(t, uint64(1), nonce)
}

func TestCallRevert(t *testing.T) {
	ibs, header, gp := setup(t, 1_000_000)
	require.NoError(t, ibs.SetCode(receiver, []byte{opRevert}))
	txn := types.NewTransaction(sender, 0, receiver, uint256.NewInt(10), 50_000, uint256.NewInt(1), nil)

	receipt, err := TransferEngine{}.Apply(txn, ibs, header, gp)
	require.NoError(t, err)
	require.True(t, receipt.Failed())
	require.ErrorIs(t, receipt.Err, ErrExecutionReverted)
	require.Equal(t, uint64(21000), receipt.GasUsed)
	require.Zero(t, balanceOf(t, ibs, receiver))
	require.Equal(t, uint64(1_000_000-21000), balanceOf(t, ibs, sender))
}

func TestApplyIsDeterministic(t *testing.T) {
	txn := types.NewTransaction(sender, 0, receiver, uint256.NewInt(7), 25_000, uint256.NewInt(3), []byte{0, 1})
	var receipts []*types.Receipt
	for i := 0; i < 2; i++ {
		ibs, header, gp := setup(t, 1_000_000)
		receipt, err := TransferEngine{}.Apply(txn, ibs, header, gp)
		require.NoError(t, err)
		receipts = append(receipts, receipt)
	}
	require.Equal(t, receipts[0], receipts[1])
}
