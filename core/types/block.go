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

// Package types contains the data types of the dev chain.
package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// EmptyTxsHash is the TxHash of a block without transactions.
var EmptyTxsHash = rlpHash([]common.Hash(nil))

// Header represents a block header of the dev chain.
type Header struct {
	ParentHash common.Hash    `json:"parentHash"`
	Coinbase   common.Address `json:"miner"`
	TxHash     common.Hash    `json:"transactionsRoot"`
	Number     uint64         `json:"number"`
	GasLimit   uint64         `json:"gasLimit"`
	GasUsed    uint64         `json:"gasUsed"`
	Time       uint64         `json:"timestamp"`
	BaseFee    *uint256.Int   `json:"baseFeePerGas"`
}

type headerRLP struct {
	ParentHash common.Hash
	Coinbase   common.Address
	TxHash     common.Hash
	Number     uint64
	GasLimit   uint64
	GasUsed    uint64
	Time       uint64
	BaseFee    *big.Int
}

// Hash returns the block hash of the header, which is simply the keccak256 hash of its
// RLP encoding.
func (h *Header) Hash() common.Hash {
	enc := headerRLP{
		ParentHash: h.ParentHash,
		Coinbase:   h.Coinbase,
		TxHash:     h.TxHash,
		Number:     h.Number,
		GasLimit:   h.GasLimit,
		GasUsed:    h.GasUsed,
		Time:       h.Time,
		BaseFee:    new(big.Int),
	}
	if h.BaseFee != nil {
		enc.BaseFee = h.BaseFee.ToBig()
	}
	return rlpHash(&enc)
}

// CopyHeader creates a deep copy of a block header to prevent side effects from
// modifying a header variable.
func CopyHeader(h *Header) *Header {
	cpy := *h
	if h.BaseFee != nil {
		cpy.BaseFee = h.BaseFee.Clone()
	}
	return &cpy
}

// Block is a header plus the transactions included in it and their receipts.
type Block struct {
	header       *Header
	transactions Transactions
	receipts     Receipts
	hash         common.Hash
}

// NewBlock creates a new block. The header is copied and its TxHash is derived
// from txs; receipts are stamped with the block hash and number.
func NewBlock(header *Header, txs []*Transaction, receipts []*Receipt) *Block {
	b := &Block{header: CopyHeader(header)}

	if len(txs) == 0 {
		b.header.TxHash = EmptyTxsHash
	} else {
		b.transactions = make(Transactions, len(txs))
		copy(b.transactions, txs)
		b.header.TxHash = rlpHash(b.transactions.Hashes())
	}
	b.hash = b.header.Hash()

	b.receipts = make(Receipts, len(receipts))
	for i, r := range receipts {
		cpy := *r
		cpy.BlockHash = b.hash
		cpy.BlockNumber = b.header.Number
		b.receipts[i] = &cpy
	}
	return b
}

func (b *Block) Transactions() Transactions { return b.transactions }
func (b *Block) Receipts() Receipts         { return b.receipts }

func (b *Block) Transaction(hash common.Hash) (*Transaction, *Receipt) {
	for i, txn := range b.transactions {
		if txn.Hash() == hash {
			return txn, b.receipts[i]
		}
	}
	return nil, nil
}

func (b *Block) NumberU64() uint64        { return b.header.Number }
func (b *Block) GasLimit() uint64         { return b.header.GasLimit }
func (b *Block) GasUsed() uint64          { return b.header.GasUsed }
func (b *Block) Time() uint64             { return b.header.Time }
func (b *Block) Coinbase() common.Address { return b.header.Coinbase }
func (b *Block) ParentHash() common.Hash  { return b.header.ParentHash }
func (b *Block) TxHash() common.Hash      { return b.header.TxHash }
func (b *Block) Hash() common.Hash        { return b.hash }

func (b *Block) BaseFee() *uint256.Int {
	if b.header.BaseFee == nil {
		return nil
	}
	return b.header.BaseFee.Clone()
}

func (b *Block) Header() *Header { return CopyHeader(b.header) }

func rlpHash(x interface{}) common.Hash {
	enc, err := rlp.EncodeToBytes(x)
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(enc)
}
