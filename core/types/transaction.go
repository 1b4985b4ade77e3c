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

package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Transaction is an unsigned legacy-priced transaction submitted on behalf of a
// known or impersonated account. It is immutable once created: replacing a
// transaction means creating a new one for the same (sender, nonce) slot.
type Transaction struct {
	from     common.Address
	nonce    uint64
	gas      uint64
	gasPrice uint256.Int
	value    uint256.Int
	to       *common.Address
	data     []byte

	hash common.Hash
}

// NewTransaction creates a message call transaction.
func NewTransaction(from common.Address, nonce uint64, to common.Address, value *uint256.Int, gas uint64, gasPrice *uint256.Int, data []byte) *Transaction {
	return newTransaction(from, nonce, &to, value, gas, gasPrice, data)
}

// NewContractCreation creates a transaction without a recipient.
func NewContractCreation(from common.Address, nonce uint64, value *uint256.Int, gas uint64, gasPrice *uint256.Int, data []byte) *Transaction {
	return newTransaction(from, nonce, nil, value, gas, gasPrice, data)
}

func newTransaction(from common.Address, nonce uint64, to *common.Address, value *uint256.Int, gas uint64, gasPrice *uint256.Int, data []byte) *Transaction {
	txn := &Transaction{
		from:  from,
		nonce: nonce,
		gas:   gas,
		data:  common.CopyBytes(data),
	}
	if to != nil {
		addr := *to
		txn.to = &addr
	}
	if value != nil {
		txn.value.Set(value)
	}
	if gasPrice != nil {
		txn.gasPrice.Set(gasPrice)
	}
	txn.hash = rlpHash([]interface{}{
		txn.nonce,
		txn.gasPrice.ToBig(),
		txn.gas,
		txn.to,
		txn.value.ToBig(),
		txn.data,
		txn.from,
	})
	return txn
}

func (txn *Transaction) Hash() common.Hash         { return txn.hash }
func (txn *Transaction) GetSender() common.Address { return txn.from }
func (txn *Transaction) GetNonce() uint64          { return txn.nonce }
func (txn *Transaction) GetGasLimit() uint64       { return txn.gas }
func (txn *Transaction) GetData() []byte           { return txn.data }

// GetPrice returns a copy of the gas price.
func (txn *Transaction) GetPrice() *uint256.Int { return txn.gasPrice.Clone() }

// GetValue returns a copy of the transferred value.
func (txn *Transaction) GetValue() *uint256.Int { return txn.value.Clone() }

// GetTo returns the recipient, nil for contract creation.
func (txn *Transaction) GetTo() *common.Address {
	if txn.to == nil {
		return nil
	}
	to := *txn.to
	return &to
}

func (txn *Transaction) IsContractCreation() bool { return txn.to == nil }

// Cost returns gas * gasPrice + value, the amount the sender must hold upfront,
// and whether it overflows 256 bits.
func (txn *Transaction) Cost() (*uint256.Int, bool) {
	cost, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(txn.gas), &txn.gasPrice)
	if overflow {
		return cost, true
	}
	_, overflow = cost.AddOverflow(cost, &txn.value)
	return cost, overflow
}

func (txn *Transaction) String() string {
	to := "create"
	if txn.to != nil {
		to = txn.to.Hex()
	}
	return fmt.Sprintf("txn{hash=%x from=%x nonce=%d to=%s gas=%d price=%d}", txn.hash, txn.from, txn.nonce, to, txn.gas, &txn.gasPrice)
}

// Transactions is an ordered list of transactions.
type Transactions []*Transaction

// Len returns the length of s.
func (s Transactions) Len() int { return len(s) }

// Hashes returns the transaction hashes in order.
func (s Transactions) Hashes() []common.Hash {
	hashes := make([]common.Hash, len(s))
	for i, txn := range s {
		hashes[i] = txn.Hash()
	}
	return hashes
}
