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

package jsonrpc

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/erigontech/devchain/core/types"
)

// TxPoolAPI the interface for the txpool_ RPC commands
type TxPoolAPI interface {
	Content(ctx context.Context) (map[string]map[string]map[string]*RPCTransaction, error)
	ContentFrom(ctx context.Context, addr common.Address) (map[string]map[string]*RPCTransaction, error)
	Status(ctx context.Context) (map[string]hexutil.Uint, error)
}

// TxPoolAPIImpl data structure to store things needed for txpool_ commands
type TxPoolAPIImpl struct {
	b Backend
}

// NewTxPoolAPI returns TxPoolAPIImpl instance
func NewTxPoolAPI(b Backend) *TxPoolAPIImpl {
	return &TxPoolAPIImpl{b: b}
}

func byNonce(txns []*types.Transaction) map[string]*RPCTransaction {
	dump := make(map[string]*RPCTransaction, len(txns))
	for _, txn := range txns {
		dump[fmt.Sprintf("%d", txn.GetNonce())] = newRPCPendingTransaction(txn)
	}
	return dump
}

// Content implements txpool_content. Returns the pending and queued
// transactions grouped by sender and nonce.
func (api *TxPoolAPIImpl) Content(_ context.Context) (map[string]map[string]map[string]*RPCTransaction, error) {
	content := map[string]map[string]map[string]*RPCTransaction{
		"pending": make(map[string]map[string]*RPCTransaction),
		"queued":  make(map[string]map[string]*RPCTransaction),
	}
	c := api.b.TxPoolContent()
	for addr, txns := range c.Pending {
		content["pending"][addr.Hex()] = byNonce(txns)
	}
	for addr, txns := range c.Queued {
		content["queued"][addr.Hex()] = byNonce(txns)
	}
	return content, nil
}

// ContentFrom implements txpool_contentFrom.
func (api *TxPoolAPIImpl) ContentFrom(_ context.Context, addr common.Address) (map[string]map[string]*RPCTransaction, error) {
	c := api.b.TxPoolContent()
	return map[string]map[string]*RPCTransaction{
		"pending": byNonce(c.Pending[addr]),
		"queued":  byNonce(c.Queued[addr]),
	}, nil
}

// Status implements txpool_status. Returns the number of pending and queued transactions.
func (api *TxPoolAPIImpl) Status(_ context.Context) (map[string]hexutil.Uint, error) {
	pending, queued := api.b.TxPoolStatus()
	return map[string]hexutil.Uint{
		"pending": hexutil.Uint(pending),
		"queued":  hexutil.Uint(queued),
	}, nil
}
