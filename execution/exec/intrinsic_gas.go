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

import "math"

const (
	TxGas                 uint64 = 21000 // Per transaction not creating a contract.
	TxGasContractCreation uint64 = 53000 // Per transaction that creates a contract.
	TxDataZeroGas         uint64 = 4     // Per byte of data attached to a transaction that equals zero.
	TxDataNonZeroGas      uint64 = 16    // Per byte of data attached to a transaction that is not equal to zero.
	CreateDataGas         uint64 = 200   // Per byte of code stored by a contract creation.
)

// IntrinsicGas computes the 'intrinsic gas' for a transaction with the given data.
func IntrinsicGas(data []byte, isContractCreation bool) (uint64, error) {
	gas := TxGas
	if isContractCreation {
		gas = TxGasContractCreation
	}
	if len(data) == 0 {
		return gas, nil
	}
	// Zero and non-zero bytes are priced differently
	var nz uint64
	for _, byt := range data {
		if byt != 0 {
			nz++
		}
	}
	if (math.MaxUint64-gas)/TxDataNonZeroGas < nz {
		return 0, ErrGasUintOverflow
	}
	gas += nz * TxDataNonZeroGas

	z := uint64(len(data)) - nz
	if (math.MaxUint64-gas)/TxDataZeroGas < z {
		return 0, ErrGasUintOverflow
	}
	gas += z * TxDataZeroGas
	return gas, nil
}
