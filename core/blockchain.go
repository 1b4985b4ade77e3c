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

// Package core holds the in-memory chain of the dev node.
package core

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/ledgerwatch/log/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/erigontech/devchain/core/types"
)

var headBlockGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "chain_head_block",
	Help: "Number of the current head block",
})

type txLookupEntry struct {
	blockNum uint64
	index    int
}

// BlockChain is the append-only list of blocks produced by the node. The
// first block is the genesis, which in fork mode stands in for the remote
// fork block and carries its number.
type BlockChain struct {
	mu       sync.RWMutex
	blocks   []*types.Block
	byHash   map[common.Hash]*types.Block
	txLookup map[common.Hash]txLookupEntry
	logger   log.Logger
}

// GenesisSpec describes the first block of the chain.
type GenesisSpec struct {
	Number     uint64
	ParentHash common.Hash
	Timestamp  uint64
	GasLimit   uint64
	BaseFee    *uint256.Int
	Coinbase   common.Address
}

func (g *GenesisSpec) ToBlock() *types.Block {
	header := &types.Header{
		ParentHash: g.ParentHash,
		Coinbase:   g.Coinbase,
		Number:     g.Number,
		GasLimit:   g.GasLimit,
		Time:       g.Timestamp,
	}
	if g.BaseFee != nil {
		header.BaseFee = g.BaseFee.Clone()
	}
	return types.NewBlock(header, nil, nil)
}

func NewBlockChain(genesis *types.Block, logger log.Logger) *BlockChain {
	bc := &BlockChain{
		byHash:   map[common.Hash]*types.Block{},
		txLookup: map[common.Hash]txLookupEntry{},
		logger:   logger,
	}
	bc.reset(genesis)
	return bc
}

func (bc *BlockChain) reset(genesis *types.Block) {
	bc.blocks = []*types.Block{genesis}
	bc.byHash = map[common.Hash]*types.Block{genesis.Hash(): genesis}
	bc.txLookup = map[common.Hash]txLookupEntry{}
	headBlockGauge.Set(float64(genesis.NumberU64()))
}

// Reset drops every block and starts over from genesis.
func (bc *BlockChain) Reset(genesis *types.Block) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.reset(genesis)
	bc.logger.Info("[chain] reset", "genesis", genesis.NumberU64(), "hash", genesis.Hash())
}

func (bc *BlockChain) Genesis() *types.Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.blocks[0]
}

func (bc *BlockChain) CurrentBlock() *types.Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.blocks[len(bc.blocks)-1]
}

// InsertBlock appends block on top of the current head.
func (bc *BlockChain) InsertBlock(block *types.Block) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	head := bc.blocks[len(bc.blocks)-1]
	if block.NumberU64() != head.NumberU64()+1 || block.ParentHash() != head.Hash() {
		return fmt.Errorf("%w: head %d (%x), got %d with parent %x", ErrNotContiguous,
			head.NumberU64(), head.Hash(), block.NumberU64(), block.ParentHash())
	}
	bc.blocks = append(bc.blocks, block)
	bc.byHash[block.Hash()] = block
	for i, txn := range block.Transactions() {
		bc.txLookup[txn.Hash()] = txLookupEntry{blockNum: block.NumberU64(), index: i}
	}
	headBlockGauge.Set(float64(block.NumberU64()))
	return nil
}

// GetBlockByNumber returns nil for numbers below genesis or above the head.
func (bc *BlockChain) GetBlockByNumber(number uint64) *types.Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.blockByNumber(number)
}

func (bc *BlockChain) blockByNumber(number uint64) *types.Block {
	base := bc.blocks[0].NumberU64()
	if number < base || number-base >= uint64(len(bc.blocks)) {
		return nil
	}
	return bc.blocks[number-base]
}

func (bc *BlockChain) GetBlockByHash(hash common.Hash) *types.Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.byHash[hash]
}

// GetTransaction finds a mined transaction together with its receipt and block.
func (bc *BlockChain) GetTransaction(hash common.Hash) (*types.Transaction, *types.Receipt, *types.Block) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	entry, ok := bc.txLookup[hash]
	if !ok {
		return nil, nil, nil
	}
	block := bc.blockByNumber(entry.blockNum)
	return block.Transactions()[entry.index], block.Receipts()[entry.index], block
}

// TruncateTo drops every block above number.
func (bc *BlockChain) TruncateTo(number uint64) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if bc.blockByNumber(number) == nil {
		return fmt.Errorf("%w: %d", ErrUnknownBlock, number)
	}
	base := bc.blocks[0].NumberU64()
	for _, block := range bc.blocks[number-base+1:] {
		delete(bc.byHash, block.Hash())
		for _, txn := range block.Transactions() {
			delete(bc.txLookup, txn.Hash())
		}
	}
	dropped := uint64(len(bc.blocks)) - (number - base + 1)
	bc.blocks = bc.blocks[:number-base+1]
	headBlockGauge.Set(float64(number))
	if dropped > 0 {
		bc.logger.Debug("[chain] truncated", "head", number, "dropped", dropped)
	}
	return nil
}
