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

	"github.com/erigontech/devchain/rpc"
)

// EthAPI is a collection of functions that are exposed in the eth_ namespace
type EthAPI interface {
	ChainId(ctx context.Context) (hexutil.Uint64, error)
	BlockNumber(ctx context.Context) (hexutil.Uint64, error)
	GetBalance(ctx context.Context, address common.Address, blockNr rpc.BlockNumber) (*hexutil.Big, error)
	GetTransactionCount(ctx context.Context, address common.Address, blockNr rpc.BlockNumber) (*hexutil.Uint64, error)
	GetCode(ctx context.Context, address common.Address, blockNr rpc.BlockNumber) (hexutil.Bytes, error)
	GasPrice(ctx context.Context) (*hexutil.Big, error)
	Accounts(ctx context.Context) ([]common.Address, error)

	GetBlockByNumber(ctx context.Context, number rpc.BlockNumber, fullTx bool) (map[string]interface{}, error)
	GetBlockByHash(ctx context.Context, hash common.Hash, fullTx bool) (map[string]interface{}, error)
	GetBlockTransactionCountByNumber(ctx context.Context, blockNr rpc.BlockNumber) (*hexutil.Uint, error)

	SendTransaction(ctx context.Context, args TransactionArgs) (common.Hash, error)
	GetTransactionByHash(ctx context.Context, hash common.Hash) (*RPCTransaction, error)
	GetTransactionReceipt(ctx context.Context, hash common.Hash) (map[string]interface{}, error)
	PendingTransactions(ctx context.Context) ([]*RPCTransaction, error)
}

var _ EthAPI = (*APIImpl)(nil)

// APIImpl is implementation of the EthAPI interface based on remote Db access
type APIImpl struct {
	b Backend
}

func NewEthAPI(b Backend) *APIImpl {
	return &APIImpl{b: b}
}

// ChainId implements eth_chainId. Returns the current ethereum chainId.
func (api *APIImpl) ChainId(_ context.Context) (hexutil.Uint64, error) {
	return hexutil.Uint64(api.b.ChainID()), nil
}

// BlockNumber implements eth_blockNumber. Returns the block number of most recent block.
func (api *APIImpl) BlockNumber(_ context.Context) (hexutil.Uint64, error) {
	return hexutil.Uint64(api.b.BlockNumber()), nil
}

// GetBalance implements eth_getBalance. Returns the balance of an account for a given address.
func (api *APIImpl) GetBalance(ctx context.Context, address common.Address, blockNr rpc.BlockNumber) (*hexutil.Big, error) {
	balance, err := api.b.Balance(ctx, address, blockNr)
	if err != nil {
		return nil, fmt.Errorf("cant get a balance for account %x: %w", address, err)
	}
	return (*hexutil.Big)(balance.ToBig()), nil
}

// GetTransactionCount implements eth_getTransactionCount. Returns the number of transactions sent from an address (the nonce).
// For the pending block the transactions waiting in the pool are counted too.
func (api *APIImpl) GetTransactionCount(ctx context.Context, address common.Address, blockNr rpc.BlockNumber) (*hexutil.Uint64, error) {
	nonce, err := api.b.TransactionCount(ctx, address, blockNr)
	if err != nil {
		return nil, err
	}
	return (*hexutil.Uint64)(&nonce), nil
}

// GetCode implements eth_getCode. Returns the byte code at a given address (if it's a smart contract).
func (api *APIImpl) GetCode(ctx context.Context, address common.Address, blockNr rpc.BlockNumber) (hexutil.Bytes, error) {
	code, err := api.b.Code(ctx, address, blockNr)
	if err != nil {
		return nil, err
	}
	return code, nil
}

// GasPrice implements eth_gasPrice. Returns the minimum price a transaction
// needs to be picked for a block.
func (api *APIImpl) GasPrice(_ context.Context) (*hexutil.Big, error) {
	return (*hexutil.Big)(api.b.GasPrice().ToBig()), nil
}

// Accounts implements eth_accounts. Returns a list of addresses owned by the client.
func (api *APIImpl) Accounts(_ context.Context) ([]common.Address, error) {
	return api.b.Accounts(), nil
}

// GetBlockByNumber implements eth_getBlockByNumber. Returns information about a block given the block's number.
func (api *APIImpl) GetBlockByNumber(_ context.Context, number rpc.BlockNumber, fullTx bool) (map[string]interface{}, error) {
	block, err := api.b.BlockByNumber(number)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, nil // not error, see https://github.com/erigontech/erigon/issues/1645
	}
	return RPCMarshalBlock(block, fullTx), nil
}

// GetBlockByHash implements eth_getBlockByHash. Returns information about a block given the block's hash.
func (api *APIImpl) GetBlockByHash(_ context.Context, hash common.Hash, fullTx bool) (map[string]interface{}, error) {
	block := api.b.BlockByHash(hash)
	if block == nil {
		return nil, nil
	}
	return RPCMarshalBlock(block, fullTx), nil
}

// GetBlockTransactionCountByNumber implements eth_getBlockTransactionCountByNumber.
func (api *APIImpl) GetBlockTransactionCountByNumber(_ context.Context, blockNr rpc.BlockNumber) (*hexutil.Uint, error) {
	block, err := api.b.BlockByNumber(blockNr)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, nil
	}
	n := hexutil.Uint(block.Transactions().Len())
	return &n, nil
}

// GetTransactionByHash implements eth_getTransactionByHash. Returns information
// about a mined or a pooled transaction, nil if neither.
func (api *APIImpl) GetTransactionByHash(_ context.Context, hash common.Hash) (*RPCTransaction, error) {
	txn, receipt, block := api.b.Transaction(hash)
	if txn == nil {
		return nil, nil
	}
	if block == nil {
		return newRPCPendingTransaction(txn), nil
	}
	return newRPCTransaction(txn, block.Hash(), block.NumberU64(), uint64(receipt.TransactionIndex)), nil
}

// GetTransactionReceipt implements eth_getTransactionReceipt. Returns nil for
// unknown and pooled transactions.
func (api *APIImpl) GetTransactionReceipt(_ context.Context, hash common.Hash) (map[string]interface{}, error) {
	txn, receipt, _ := api.b.Transaction(hash)
	if receipt == nil {
		return nil, nil
	}
	return marshalReceipt(receipt, txn), nil
}

// PendingTransactions implements eth_pendingTransactions. Returns the
// transactions the next block may contain.
func (api *APIImpl) PendingTransactions(_ context.Context) ([]*RPCTransaction, error) {
	txns := api.b.PendingTransactions()
	result := make([]*RPCTransaction, 0, len(txns))
	for _, txn := range txns {
		result = append(result, newRPCPendingTransaction(txn))
	}
	return result, nil
}
