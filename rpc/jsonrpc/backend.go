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

// Package jsonrpc implements the eth_, net_, web3_, txpool_ and the dev
// control (hardhat_, evm_) namespaces on top of a Backend.
package jsonrpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/erigontech/devchain/core/types"
	"github.com/erigontech/devchain/execution/exec"
	"github.com/erigontech/devchain/rpc"
	"github.com/erigontech/devchain/txnprovider/txpool"
)

// Backend is the node as seen by the RPC namespaces.
type Backend interface {
	ChainID() uint64
	Accounts() []common.Address
	BlockNumber() uint64
	// BlockByNumber returns nil, nil for blocks the chain doesn't have.
	BlockByNumber(number rpc.BlockNumber) (*types.Block, error)
	BlockByHash(hash common.Hash) *types.Block
	Balance(ctx context.Context, addr common.Address, number rpc.BlockNumber) (*uint256.Int, error)
	TransactionCount(ctx context.Context, addr common.Address, number rpc.BlockNumber) (uint64, error)
	Code(ctx context.Context, addr common.Address, number rpc.BlockNumber) ([]byte, error)
	GasPrice() *uint256.Int

	SendTransaction(ctx context.Context, args TransactionArgs) (common.Hash, error)
	// Transaction looks hash up in the chain first and in the pool second.
	// Receipt and block are nil for a pooled transaction.
	Transaction(hash common.Hash) (*types.Transaction, *types.Receipt, *types.Block)
	PendingTransactions() []*types.Transaction
	TxPoolContent() txpool.Content
	TxPoolStatus() (pending, queued int)

	SetMinGasPrice(price *uint256.Int)
	Automine() bool
	SetAutomine(enabled bool)
	SetBlockGasLimit(limit uint64) error
	Mine(ctx context.Context, blocks uint64) error
	DropTransaction(hash common.Hash) (bool, error)
	ImpersonateAccount(addr common.Address)
	StopImpersonatingAccount(addr common.Address) bool
	SetBalance(ctx context.Context, addr common.Address, balance *uint256.Int) error
	SetNonce(ctx context.Context, addr common.Address, nonce uint64) error
	SetCoinbase(addr common.Address)
	Snapshot() uint64
	Revert(id uint64) bool
	// Reset starts a fresh chain. An empty forkURL disables fork mode, a nil
	// forkBlock means the latest remote block.
	Reset(ctx context.Context, forkURL string, forkBlock *uint64) error
	SetIntervalMining(interval time.Duration)
}

var (
	errMissingFrom       = errors.New("missing \"from\" field")
	errDataInputMismatch = errors.New(`both "data" and "input" are set and not equal. Please use "input" to pass transaction call data`)
)

// TransactionArgs represents the arguments to construct a new transaction.
type TransactionArgs struct {
	From     *common.Address `json:"from"`
	To       *common.Address `json:"to"`
	Gas      *hexutil.Uint64 `json:"gas"`
	GasPrice *hexutil.Big    `json:"gasPrice"`
	Value    *hexutil.Big    `json:"value"`
	Nonce    *hexutil.Uint64 `json:"nonce"`

	// "input" is the newer name and should be preferred by clients.
	Data  *hexutil.Bytes `json:"data"`
	Input *hexutil.Bytes `json:"input"`
}

func (args *TransactionArgs) data() []byte {
	if args.Input != nil {
		return *args.Input
	}
	if args.Data != nil {
		return *args.Data
	}
	return nil
}

// ToTransaction fills the missing fields with defaults and builds the
// transaction. Without an explicit gas limit the transaction gets exactly the
// gas the execution engine charges for it.
func (args *TransactionArgs) ToTransaction(defaultNonce uint64, defaultGasPrice *uint256.Int) (*types.Transaction, error) {
	if args.From == nil {
		return nil, errMissingFrom
	}
	if args.Data != nil && args.Input != nil && !bytes.Equal(*args.Data, *args.Input) {
		return nil, errDataInputMismatch
	}
	data := args.data()

	nonce := defaultNonce
	if args.Nonce != nil {
		nonce = uint64(*args.Nonce)
	}
	gasPrice := defaultGasPrice.Clone()
	if args.GasPrice != nil {
		var overflow bool
		if gasPrice, overflow = uint256.FromBig(args.GasPrice.ToInt()); overflow {
			return nil, fmt.Errorf("gasPrice higher than 2^256-1")
		}
	}
	value := new(uint256.Int)
	if args.Value != nil {
		var overflow bool
		if value, overflow = uint256.FromBig(args.Value.ToInt()); overflow {
			return nil, fmt.Errorf("value higher than 2^256-1")
		}
	}

	var gas uint64
	if args.Gas != nil {
		gas = uint64(*args.Gas)
	} else {
		intrinsic, err := exec.IntrinsicGas(data, args.To == nil)
		if err != nil {
			return nil, err
		}
		gas = intrinsic
		if args.To == nil {
			gas += exec.CreateDataGas * uint64(len(data))
		}
	}

	if args.To == nil {
		return types.NewContractCreation(*args.From, nonce, value, gas, gasPrice, data), nil
	}
	return types.NewTransaction(*args.From, nonce, *args.To, value, gas, gasPrice, data), nil
}
