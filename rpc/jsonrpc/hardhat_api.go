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
	"github.com/holiman/uint256"

	"github.com/erigontech/devchain/rpc"
)

// HardhatAPI is the hardhat_ control namespace of the dev node.
type HardhatAPI interface {
	SetMinGasPrice(ctx context.Context, price hexutil.Big) (bool, error)
	GetAutomine(ctx context.Context) (bool, error)
	Mine(ctx context.Context, blocks *hexutil.Uint64) (bool, error)
	DropTransaction(ctx context.Context, hash common.Hash) (bool, error)
	ImpersonateAccount(ctx context.Context, addr common.Address) (bool, error)
	StopImpersonatingAccount(ctx context.Context, addr common.Address) (bool, error)
	SetBalance(ctx context.Context, addr common.Address, balance hexutil.Big) (bool, error)
	SetNonce(ctx context.Context, addr common.Address, nonce hexutil.Uint64) (bool, error)
	SetCoinbase(ctx context.Context, addr common.Address) (bool, error)
	Reset(ctx context.Context, params *ResetParams) (bool, error)
}

// ResetParams are the optional arguments of hardhat_reset. Without forking
// the node restarts as a plain local chain.
type ResetParams struct {
	Forking *ForkingParams `json:"forking"`
}

type ForkingParams struct {
	JSONRPCURL  string          `json:"jsonRpcUrl"`
	BlockNumber *hexutil.Uint64 `json:"blockNumber"`
}

var _ HardhatAPI = (*HardhatAPIImpl)(nil)

type HardhatAPIImpl struct {
	b Backend
}

func NewHardhatAPI(b Backend) *HardhatAPIImpl {
	return &HardhatAPIImpl{b: b}
}

func toUint256(v hexutil.Big, name string) (*uint256.Int, error) {
	if v.ToInt().Sign() < 0 {
		return nil, &rpc.InvalidInputError{Message: fmt.Sprintf("%s must not be negative", name)}
	}
	res, overflow := uint256.FromBig(v.ToInt())
	if overflow {
		return nil, &rpc.InvalidInputError{Message: fmt.Sprintf("%s higher than 2^256-1", name)}
	}
	return res, nil
}

// SetMinGasPrice implements hardhat_setMinGasPrice. Pending transactions priced
// below the minimum stay in the pool but are not mined.
func (api *HardhatAPIImpl) SetMinGasPrice(_ context.Context, price hexutil.Big) (bool, error) {
	p, err := toUint256(price, "minimum gas price")
	if err != nil {
		return false, err
	}
	api.b.SetMinGasPrice(p)
	return true, nil
}

func (api *HardhatAPIImpl) GetAutomine(_ context.Context) (bool, error) {
	return api.b.Automine(), nil
}

// Mine implements hardhat_mine. Mines the given number of blocks, one by
// default, even if they come out empty.
func (api *HardhatAPIImpl) Mine(ctx context.Context, blocks *hexutil.Uint64) (bool, error) {
	n := uint64(1)
	if blocks != nil {
		n = uint64(*blocks)
	}
	if err := api.b.Mine(ctx, n); err != nil {
		return false, err
	}
	return true, nil
}

// DropTransaction implements hardhat_dropTransaction. Returns false if the
// transaction is unknown, an error if it was already mined.
func (api *HardhatAPIImpl) DropTransaction(_ context.Context, hash common.Hash) (bool, error) {
	return api.b.DropTransaction(hash)
}

// ImpersonateAccount implements hardhat_impersonateAccount. The node then
// accepts transactions from addr without holding its key.
func (api *HardhatAPIImpl) ImpersonateAccount(_ context.Context, addr common.Address) (bool, error) {
	api.b.ImpersonateAccount(addr)
	return true, nil
}

func (api *HardhatAPIImpl) StopImpersonatingAccount(_ context.Context, addr common.Address) (bool, error) {
	return api.b.StopImpersonatingAccount(addr), nil
}

func (api *HardhatAPIImpl) SetBalance(ctx context.Context, addr common.Address, balance hexutil.Big) (bool, error) {
	b, err := toUint256(balance, "balance")
	if err != nil {
		return false, err
	}
	if err := api.b.SetBalance(ctx, addr, b); err != nil {
		return false, err
	}
	return true, nil
}

// SetNonce implements hardhat_setNonce. The nonce of an account can only grow.
func (api *HardhatAPIImpl) SetNonce(ctx context.Context, addr common.Address, nonce hexutil.Uint64) (bool, error) {
	if err := api.b.SetNonce(ctx, addr, uint64(nonce)); err != nil {
		return false, err
	}
	return true, nil
}

func (api *HardhatAPIImpl) SetCoinbase(_ context.Context, addr common.Address) (bool, error) {
	api.b.SetCoinbase(addr)
	return true, nil
}

// Reset implements hardhat_reset.
func (api *HardhatAPIImpl) Reset(ctx context.Context, params *ResetParams) (bool, error) {
	var (
		url   string
		block *uint64
	)
	if params != nil && params.Forking != nil {
		if params.Forking.JSONRPCURL == "" {
			return false, &rpc.InvalidInputError{Message: "forking.jsonRpcUrl is required"}
		}
		url = params.Forking.JSONRPCURL
		block = (*uint64)(params.Forking.BlockNumber)
	}
	if err := api.b.Reset(ctx, url, block); err != nil {
		return false, err
	}
	return true, nil
}
