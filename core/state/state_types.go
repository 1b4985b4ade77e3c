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

package state

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// AccountReader is the read-only ledger view the txpool uses for admission:
// the confirmed nonce and the balance of an account.
type AccountReader interface {
	NonceOf(addr common.Address) (uint64, error)
	BalanceOf(addr common.Address) (*uint256.Int, error)
}

// Account is the plain account record kept by IntraBlockState.
type Account struct {
	Nonce   uint64
	Balance uint256.Int
	Code    []byte
}

func (a *Account) copy() *Account {
	cpy := &Account{Nonce: a.Nonce, Balance: a.Balance}
	if len(a.Code) > 0 {
		cpy.Code = append([]byte(nil), a.Code...)
	}
	return cpy
}

// AccountLoader supplies accounts missing from the local state, e.g. from a
// remote chain in fork mode. A nil account with nil error means the account
// does not exist remotely either.
//
//go:generate mockgen -typed=true -destination=./account_loader_mock.go -package=state . AccountLoader
type AccountLoader interface {
	LoadAccount(addr common.Address) (*Account, error)
}
