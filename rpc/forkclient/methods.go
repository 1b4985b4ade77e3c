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

package forkclient

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// RemoteBlock holds the header fields the dev chain needs from the fork block.
type RemoteBlock struct {
	Number    hexutil.Uint64 `json:"number"`
	Hash      common.Hash    `json:"hash"`
	Timestamp hexutil.Uint64 `json:"timestamp"`
	GasLimit  hexutil.Uint64 `json:"gasLimit"`
	BaseFee   *hexutil.Big   `json:"baseFeePerGas"`
}

// RemoteAccount is the state of an account at a given remote block.
type RemoteAccount struct {
	Nonce   uint64
	Balance *uint256.Int
	Code    []byte
}

func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	var id hexutil.Uint64
	if err := c.Call(ctx, &id, "eth_chainId"); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var num hexutil.Uint64
	if err := c.Call(ctx, &num, "eth_blockNumber"); err != nil {
		return 0, err
	}
	return uint64(num), nil
}

// GetBlockByNumber returns nil if the remote node doesn't know the block.
func (c *Client) GetBlockByNumber(ctx context.Context, number uint64) (*RemoteBlock, error) {
	var block *RemoteBlock
	if err := c.Call(ctx, &block, "eth_getBlockByNumber", hexutil.EncodeUint64(number), false); err != nil {
		return nil, err
	}
	return block, nil
}

func (c *Client) GetBalance(ctx context.Context, addr common.Address, blockNum uint64) (*uint256.Int, error) {
	var balance hexutil.Big
	if err := c.Call(ctx, &balance, "eth_getBalance", addr, hexutil.EncodeUint64(blockNum)); err != nil {
		return nil, err
	}
	res, overflow := uint256.FromBig(balance.ToInt())
	if overflow {
		return nil, fmt.Errorf("balance of %x overflows 256 bits", addr)
	}
	return res, nil
}

func (c *Client) GetTransactionCount(ctx context.Context, addr common.Address, blockNum uint64) (uint64, error) {
	var nonce hexutil.Uint64
	if err := c.Call(ctx, &nonce, "eth_getTransactionCount", addr, hexutil.EncodeUint64(blockNum)); err != nil {
		return 0, err
	}
	return uint64(nonce), nil
}

func (c *Client) GetCode(ctx context.Context, addr common.Address, blockNum uint64) ([]byte, error) {
	var code hexutil.Bytes
	if err := c.Call(ctx, &code, "eth_getCode", addr, hexutil.EncodeUint64(blockNum)); err != nil {
		return nil, err
	}
	return code, nil
}

// GetAccount fetches balance, nonce and code of addr in one batch.
func (c *Client) GetAccount(ctx context.Context, addr common.Address, blockNum uint64) (*RemoteAccount, error) {
	var (
		balance hexutil.Big
		nonce   hexutil.Uint64
		code    hexutil.Bytes
		block   = hexutil.EncodeUint64(blockNum)
	)
	err := c.BatchCall(ctx, []BatchElem{
		{Method: "eth_getBalance", Args: []interface{}{addr, block}, Result: &balance},
		{Method: "eth_getTransactionCount", Args: []interface{}{addr, block}, Result: &nonce},
		{Method: "eth_getCode", Args: []interface{}{addr, block}, Result: &code},
	})
	if err != nil {
		return nil, err
	}
	bal, overflow := uint256.FromBig(balance.ToInt())
	if overflow {
		return nil, fmt.Errorf("balance of %x overflows 256 bits", addr)
	}
	return &RemoteAccount{Nonce: uint64(nonce), Balance: bal, Code: code}, nil
}
