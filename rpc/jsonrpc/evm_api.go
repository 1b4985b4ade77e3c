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
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/erigontech/devchain/rpc"
)

// EvmAPI is the evm_ control namespace of the dev node.
type EvmAPI interface {
	SetAutomine(ctx context.Context, enabled bool) (bool, error)
	SetBlockGasLimit(ctx context.Context, limit hexutil.Uint64) (bool, error)
	Mine(ctx context.Context) (string, error)
	Snapshot(ctx context.Context) (hexutil.Uint64, error)
	Revert(ctx context.Context, id hexutil.Uint64) (bool, error)
	SetIntervalMining(ctx context.Context, ms uint64) (bool, error)
}

var _ EvmAPI = (*EvmAPIImpl)(nil)

type EvmAPIImpl struct {
	b Backend
}

func NewEvmAPI(b Backend) *EvmAPIImpl {
	return &EvmAPIImpl{b: b}
}

// SetAutomine implements evm_setAutomine.
func (api *EvmAPIImpl) SetAutomine(_ context.Context, enabled bool) (bool, error) {
	api.b.SetAutomine(enabled)
	return true, nil
}

// SetBlockGasLimit implements evm_setBlockGasLimit. Pooled transactions that
// no longer fit in a block are dropped.
func (api *EvmAPIImpl) SetBlockGasLimit(_ context.Context, limit hexutil.Uint64) (bool, error) {
	if limit == 0 {
		return false, &rpc.InvalidInputError{Message: "block gas limit must be greater than 0"}
	}
	if err := api.b.SetBlockGasLimit(uint64(limit)); err != nil {
		return false, err
	}
	return true, nil
}

// Mine implements evm_mine. Mines a single block, empty if nothing is eligible.
func (api *EvmAPIImpl) Mine(ctx context.Context) (string, error) {
	if err := api.b.Mine(ctx, 1); err != nil {
		return "", err
	}
	return "0x0", nil
}

// Snapshot implements evm_snapshot. Returns the id to pass to evm_revert.
func (api *EvmAPIImpl) Snapshot(_ context.Context) (hexutil.Uint64, error) {
	return hexutil.Uint64(api.b.Snapshot()), nil
}

// Revert implements evm_revert. Restores chain, state and pool as they were
// when the snapshot was taken. The snapshot and every later one are consumed.
func (api *EvmAPIImpl) Revert(_ context.Context, id hexutil.Uint64) (bool, error) {
	return api.b.Revert(uint64(id)), nil
}

// SetIntervalMining implements evm_setIntervalMining. Zero disables interval mining.
func (api *EvmAPIImpl) SetIntervalMining(_ context.Context, ms uint64) (bool, error) {
	api.b.SetIntervalMining(time.Duration(ms) * time.Millisecond)
	return true, nil
}
