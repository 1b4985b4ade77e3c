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
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/erigontech/devchain/core/types"
)

// RPCTransaction represents a transaction that will serialize to the RPC representation of a transaction
type RPCTransaction struct {
	BlockHash        *common.Hash    `json:"blockHash"`
	BlockNumber      *hexutil.Uint64 `json:"blockNumber"`
	From             common.Address  `json:"from"`
	Gas              hexutil.Uint64  `json:"gas"`
	GasPrice         *hexutil.Big    `json:"gasPrice"`
	Hash             common.Hash     `json:"hash"`
	Input            hexutil.Bytes   `json:"input"`
	Nonce            hexutil.Uint64  `json:"nonce"`
	To               *common.Address `json:"to"`
	TransactionIndex *hexutil.Uint64 `json:"transactionIndex"`
	Value            *hexutil.Big    `json:"value"`
	Type             hexutil.Uint64  `json:"type"`
	ChainID          *hexutil.Big    `json:"chainId,omitempty"`
}

// newRPCTransaction returns a transaction that will serialize to the RPC
// representation, with the given location metadata set (if available).
func newRPCTransaction(txn *types.Transaction, blockHash common.Hash, blockNumber uint64, index uint64) *RPCTransaction {
	result := &RPCTransaction{
		From:     txn.GetSender(),
		Gas:      hexutil.Uint64(txn.GetGasLimit()),
		GasPrice: (*hexutil.Big)(txn.GetPrice().ToBig()),
		Hash:     txn.Hash(),
		Input:    hexutil.Bytes(txn.GetData()),
		Nonce:    hexutil.Uint64(txn.GetNonce()),
		To:       txn.GetTo(),
		Value:    (*hexutil.Big)(txn.GetValue().ToBig()),
	}
	if blockHash != (common.Hash{}) {
		result.BlockHash = &blockHash
		result.BlockNumber = (*hexutil.Uint64)(&blockNumber)
		result.TransactionIndex = (*hexutil.Uint64)(&index)
	}
	return result
}

func newRPCPendingTransaction(txn *types.Transaction) *RPCTransaction {
	return newRPCTransaction(txn, common.Hash{}, 0, 0)
}

func marshalReceipt(receipt *types.Receipt, txn *types.Transaction) map[string]interface{} {
	fields := map[string]interface{}{
		"blockHash":         receipt.BlockHash,
		"blockNumber":       hexutil.Uint64(receipt.BlockNumber),
		"transactionHash":   receipt.TxHash,
		"transactionIndex":  hexutil.Uint64(receipt.TransactionIndex),
		"from":              txn.GetSender(),
		"to":                txn.GetTo(),
		"type":              hexutil.Uint(0),
		"gasUsed":           hexutil.Uint64(receipt.GasUsed),
		"cumulativeGasUsed": hexutil.Uint64(receipt.CumulativeGasUsed),
		"effectiveGasPrice": (*hexutil.Big)(txn.GetPrice().ToBig()),
		"contractAddress":   nil,
		"logs":              []interface{}{},
		"status":            hexutil.Uint64(receipt.Status),
	}
	if txn.IsContractCreation() && !receipt.Failed() {
		fields["contractAddress"] = receipt.ContractAddress
	}
	return fields
}

func RPCMarshalHeader(head *types.Header) map[string]interface{} {
	result := map[string]interface{}{
		"number":           hexutil.Uint64(head.Number),
		"hash":             head.Hash(),
		"parentHash":       head.ParentHash,
		"miner":            head.Coinbase,
		"gasLimit":         hexutil.Uint64(head.GasLimit),
		"gasUsed":          hexutil.Uint64(head.GasUsed),
		"timestamp":        hexutil.Uint64(head.Time),
		"transactionsRoot": head.TxHash,
		"difficulty":       (*hexutil.Big)(common.Big0),
		"extraData":        hexutil.Bytes{},
		"uncles":           []common.Hash{},
	}
	if head.BaseFee != nil {
		result["baseFeePerGas"] = (*hexutil.Big)(head.BaseFee.ToBig())
	}
	return result
}

// RPCMarshalBlock converts the given block to the RPC output. When fullTx is
// true the block contains full transaction details, otherwise only their hashes.
func RPCMarshalBlock(block *types.Block, fullTx bool) map[string]interface{} {
	fields := RPCMarshalHeader(block.Header())
	txs := block.Transactions()
	if fullTx {
		transactions := make([]*RPCTransaction, len(txs))
		for i, txn := range txs {
			transactions[i] = newRPCTransaction(txn, block.Hash(), block.NumberU64(), uint64(i))
		}
		fields["transactions"] = transactions
	} else {
		fields["transactions"] = txs.Hashes()
	}
	return fields
}
