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

package node

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

var ether = uint256.NewInt(1_000_000_000_000_000_000)

// DevAccounts derives count deterministic accounts from seed. The i-th
// private key is keccak256(seed || uint64(i)).
func DevAccounts(seed string, count int) ([]common.Address, error) {
	addrs := make([]common.Address, 0, count)
	var idx [8]byte
	for i := 0; i < count; i++ {
		binary.BigEndian.PutUint64(idx[:], uint64(i))
		key, err := crypto.ToECDSA(crypto.Keccak256([]byte(seed), idx[:]))
		if err != nil {
			return nil, fmt.Errorf("deriving dev account %d: %w", i, err)
		}
		addrs = append(addrs, crypto.PubkeyToAddress(key.PublicKey))
	}
	return addrs, nil
}

func etherToWei(amount uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(amount), ether)
}
