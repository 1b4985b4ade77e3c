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

package jsonrpc_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	jsoniter "github.com/json-iterator/go"
	"github.com/ledgerwatch/log/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/devchain/node"
	"github.com/erigontech/devchain/node/nodecfg"
	"github.com/erigontech/devchain/rpc"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type rpcError struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Data    jsoniter.RawMessage `json:"data"`
}

type rpcResponse struct {
	ID     int                 `json:"id"`
	Result jsoniter.RawMessage `json:"result"`
	Error  *rpcError           `json:"error"`
}

type testClient struct {
	t      *testing.T
	url    string
	nextID int
}

func (c *testClient) call(method string, params ...interface{}) rpcResponse {
	c.t.Helper()
	if params == nil {
		params = []interface{}{}
	}
	c.nextID++
	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      c.nextID,
		"method":  method,
		"params":  params,
	})
	require.NoError(c.t, err)
	resp, err := http.Post(c.url, "application/json", bytes.NewReader(body))
	require.NoError(c.t, err)
	defer resp.Body.Close()
	require.Equal(c.t, http.StatusOK, resp.StatusCode)

	var res rpcResponse
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&res))
	require.Equal(c.t, c.nextID, res.ID)
	return res
}

func (c *testClient) mustCall(out interface{}, method string, params ...interface{}) {
	c.t.Helper()
	res := c.call(method, params...)
	require.Nil(c.t, res.Error, "%s failed: %+v", method, res.Error)
	if out != nil {
		require.NoError(c.t, json.Unmarshal(res.Result, out))
	}
}

func (c *testClient) mustFail(method string, params ...interface{}) *rpcError {
	c.t.Helper()
	res := c.call(method, params...)
	require.NotNil(c.t, res.Error, "%s succeeded: %s", method, res.Result)
	return res.Error
}

func newTestClient(t *testing.T, namespaces ...string) (*testClient, []common.Address) {
	t.Helper()
	logger := log.New()
	logger.SetHandler(log.DiscardHandler())

	cfg := nodecfg.DefaultConfig()
	cfg.Accounts.Count = 2
	n, err := node.New(context.Background(), cfg, logger)
	require.NoError(t, err)

	srv := rpc.NewServer(100, false, logger)
	require.NoError(t, srv.RegisterAPIs(n.APIs(), namespaces))
	ts := httptest.NewServer(rpc.NewHTTPHandler(srv, rpc.HTTPConfig{}))
	t.Cleanup(func() {
		ts.Close()
		srv.Stop()
		n.Close()
	})
	return &testClient{t: t, url: ts.URL}, n.Accounts()
}

func transfer(from, to common.Address, extra map[string]interface{}) map[string]interface{} {
	args := map[string]interface{}{"from": from, "to": to, "value": "0x1"}
	for k, v := range extra {
		args[k] = v
	}
	return args
}

func TestInfoMethods(t *testing.T) {
	c, accs := newTestClient(t)

	var chainID, blockNumber hexutil.Uint64
	c.mustCall(&chainID, "eth_chainId")
	assert.Equal(t, hexutil.Uint64(31337), chainID)
	c.mustCall(&blockNumber, "eth_blockNumber")
	assert.Zero(t, blockNumber)

	var accounts []common.Address
	c.mustCall(&accounts, "eth_accounts")
	assert.Equal(t, accs, accounts)

	var version, client string
	c.mustCall(&version, "net_version")
	assert.Equal(t, "31337", version)
	c.mustCall(&client, "web3_clientVersion")
	assert.Contains(t, client, "devchain")

	var hash hexutil.Bytes
	c.mustCall(&hash, "web3_sha3", "0x")
	assert.Equal(t, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", hash.String())

	var balance hexutil.Big
	c.mustCall(&balance, "eth_getBalance", accs[0], "latest")
	assert.Equal(t, "0x21e19e0c9bab2400000", balance.String())
}

func TestSendTransactionAutomine(t *testing.T) {
	c, accs := newTestClient(t)

	var hash common.Hash
	c.mustCall(&hash, "eth_sendTransaction", transfer(accs[0], accs[1], nil))

	var receipt map[string]interface{}
	c.mustCall(&receipt, "eth_getTransactionReceipt", hash)
	assert.Equal(t, "0x1", receipt["status"])
	assert.Equal(t, "0x1", receipt["blockNumber"])
	assert.Equal(t, "0x5208", receipt["gasUsed"])

	var txn map[string]interface{}
	c.mustCall(&txn, "eth_getTransactionByHash", hash)
	assert.Equal(t, "0x0", txn["transactionIndex"])
	assert.Equal(t, hash.Hex(), txn["hash"])

	var block map[string]interface{}
	c.mustCall(&block, "eth_getBlockByNumber", "latest", false)
	assert.Equal(t, []interface{}{hash.Hex()}, block["transactions"])

	var missing map[string]interface{}
	c.mustCall(&missing, "eth_getBlockByNumber", "0x10", false)
	assert.Nil(t, missing)
}

func TestReplacementThreshold(t *testing.T) {
	c, accs := newTestClient(t)
	c.mustCall(nil, "evm_setAutomine", false)

	var first common.Hash
	c.mustCall(&first, "eth_sendTransaction", transfer(accs[0], accs[1], map[string]interface{}{"nonce": "0x0", "gasPrice": "0x14"}))

	rpcErr := c.mustFail("eth_sendTransaction", transfer(accs[0], accs[1], map[string]interface{}{"nonce": "0x0", "gasPrice": "0x15"}))
	assert.Equal(t, -32000, rpcErr.Code)
	assert.Contains(t, rpcErr.Message, "A gasPrice of at least 22 is necessary")

	var second common.Hash
	c.mustCall(&second, "eth_sendTransaction", transfer(accs[0], accs[1], map[string]interface{}{"nonce": "0x0", "gasPrice": "0x16"}))

	var txn map[string]interface{}
	c.mustCall(&txn, "eth_getTransactionByHash", first)
	assert.Nil(t, txn)
	c.mustCall(&txn, "eth_getTransactionByHash", second)
	assert.Nil(t, txn["blockHash"])
	assert.Equal(t, "0x16", txn["gasPrice"])
}

func TestNonceGap(t *testing.T) {
	c, accs := newTestClient(t)

	rpcErr := c.mustFail("eth_sendTransaction", transfer(accs[0], accs[1], map[string]interface{}{"nonce": "0x1"}))
	assert.Equal(t, -32000, rpcErr.Code)
	assert.Equal(t, "Nonce too high. Expected nonce to be 0 but got 1. Note that transactions can't be queued when automining.", rpcErr.Message)

	var automine bool
	c.mustCall(nil, "evm_setAutomine", false)
	c.mustCall(&automine, "hardhat_getAutomine")
	require.False(t, automine)

	c.mustCall(nil, "eth_sendTransaction", transfer(accs[0], accs[1], map[string]interface{}{"nonce": "0x1"}))
	var status map[string]hexutil.Uint
	c.mustCall(&status, "txpool_status")
	assert.Equal(t, map[string]hexutil.Uint{"pending": 0, "queued": 1}, status)

	var content map[string]map[string]map[string]interface{}
	c.mustCall(&content, "txpool_content")
	assert.Contains(t, content["queued"][accs[0].Hex()], "1")

	c.mustCall(nil, "eth_sendTransaction", transfer(accs[0], accs[1], nil))
	c.mustCall(&status, "txpool_status")
	assert.Equal(t, map[string]hexutil.Uint{"pending": 2, "queued": 0}, status)

	var pending []map[string]interface{}
	c.mustCall(&pending, "eth_pendingTransactions")
	require.Len(t, pending, 2)
	assert.Equal(t, "0x1", pending[0]["nonce"])
	assert.Equal(t, "0x0", pending[1]["nonce"])

	c.mustCall(nil, "evm_mine")
	var blockNumber hexutil.Uint64
	c.mustCall(&blockNumber, "eth_blockNumber")
	assert.Equal(t, hexutil.Uint64(1), blockNumber)

	var nonce hexutil.Uint64
	c.mustCall(&nonce, "eth_getTransactionCount", accs[0], "latest")
	assert.Equal(t, hexutil.Uint64(2), nonce)
}

func TestDrainCascade(t *testing.T) {
	c, accs := newTestClient(t)
	c.mustCall(nil, "evm_setBlockGasLimit", "0xa410") // two transfers
	c.mustCall(nil, "evm_setAutomine", false)
	for i := 0; i < 4; i++ {
		c.mustCall(nil, "eth_sendTransaction", transfer(accs[0], accs[1], nil))
	}
	c.mustCall(nil, "evm_setAutomine", true)

	var last common.Hash
	c.mustCall(&last, "eth_sendTransaction", transfer(accs[0], accs[1], nil))

	var blockNumber hexutil.Uint64
	c.mustCall(&blockNumber, "eth_blockNumber")
	assert.Equal(t, hexutil.Uint64(3), blockNumber)

	var status map[string]hexutil.Uint
	c.mustCall(&status, "txpool_status")
	assert.Equal(t, map[string]hexutil.Uint{"pending": 0, "queued": 0}, status)

	var count hexutil.Uint
	c.mustCall(&count, "eth_getBlockTransactionCountByNumber", "0x3")
	assert.Equal(t, hexutil.Uint(1), count)
}

func TestMinGasPrice(t *testing.T) {
	c, accs := newTestClient(t)
	c.mustCall(nil, "hardhat_setMinGasPrice", "0xa")

	var price hexutil.Big
	c.mustCall(&price, "eth_gasPrice")
	assert.Equal(t, "0xa", price.String())

	rpcErr := c.mustFail("eth_sendTransaction", transfer(accs[0], accs[1], map[string]interface{}{"gasPrice": "0x5"}))
	assert.Equal(t, -32000, rpcErr.Code)
	assert.Equal(t, "Transaction gas price is 5, which is below the minimum of 10", rpcErr.Message)

	// priced at the floor by default
	c.mustCall(nil, "eth_sendTransaction", transfer(accs[0], accs[1], nil))
}

func TestExecutionFailure(t *testing.T) {
	c, accs := newTestClient(t)

	var deploy common.Hash
	c.mustCall(&deploy, "eth_sendTransaction", map[string]interface{}{"from": accs[0], "input": "0xfd"})
	var receipt map[string]interface{}
	c.mustCall(&receipt, "eth_getTransactionReceipt", deploy)
	contract := receipt["contractAddress"].(string)

	var code hexutil.Bytes
	c.mustCall(&code, "eth_getCode", contract, "latest")
	assert.Equal(t, hexutil.Bytes{0xfd}, code)

	rpcErr := c.mustFail("eth_sendTransaction", map[string]interface{}{"from": accs[0], "to": contract})
	assert.Equal(t, -32603, rpcErr.Code)
	assert.Equal(t, "Transaction reverted without a reason", rpcErr.Message)

	var data map[string]string
	require.NoError(t, json.Unmarshal(rpcErr.Data, &data))
	c.mustCall(&receipt, "eth_getTransactionReceipt", data["txHash"])
	assert.Equal(t, "0x0", receipt["status"])
}

func TestSnapshotRevert(t *testing.T) {
	c, accs := newTestClient(t)

	var id hexutil.Uint64
	c.mustCall(&id, "evm_snapshot")
	assert.Equal(t, hexutil.Uint64(1), id)

	c.mustCall(nil, "hardhat_mine", "0x3")
	c.mustCall(nil, "hardhat_setBalance", accs[1], "0x0")
	var blockNumber hexutil.Uint64
	c.mustCall(&blockNumber, "eth_blockNumber")
	require.Equal(t, hexutil.Uint64(3), blockNumber)

	var reverted bool
	c.mustCall(&reverted, "evm_revert", id)
	assert.True(t, reverted)
	c.mustCall(&blockNumber, "eth_blockNumber")
	assert.Zero(t, blockNumber)
	var balance hexutil.Big
	c.mustCall(&balance, "eth_getBalance", accs[1], "latest")
	assert.Equal(t, "0x21e19e0c9bab2400000", balance.String())

	c.mustCall(&reverted, "evm_revert", id)
	assert.False(t, reverted)
}

func TestControlMethods(t *testing.T) {
	c, accs := newTestClient(t)
	stranger := common.HexToAddress("0xbeef")

	rpcErr := c.mustFail("eth_sendTransaction", transfer(stranger, accs[0], nil))
	assert.Equal(t, -32000, rpcErr.Code)
	assert.Contains(t, rpcErr.Message, "Unknown account")

	c.mustCall(nil, "hardhat_impersonateAccount", stranger)
	c.mustCall(nil, "hardhat_setBalance", stranger, "0x100")
	c.mustCall(nil, "hardhat_setNonce", stranger, "0x5")
	c.mustCall(nil, "hardhat_setCoinbase", accs[1])

	var hash common.Hash
	c.mustCall(&hash, "eth_sendTransaction", transfer(stranger, accs[0], nil))
	var txn map[string]interface{}
	c.mustCall(&txn, "eth_getTransactionByHash", hash)
	assert.Equal(t, "0x5", txn["nonce"])
	var block map[string]interface{}
	c.mustCall(&block, "eth_getBlockByNumber", "latest", true)
	assert.Equal(t, strings.ToLower(accs[1].Hex()), strings.ToLower(block["miner"].(string)))

	rpcErr = c.mustFail("hardhat_setNonce", stranger, "0x1")
	assert.Equal(t, -32000, rpcErr.Code)

	var dropped bool
	rpcErr = c.mustFail("hardhat_dropTransaction", hash)
	assert.Contains(t, rpcErr.Message, "already mined")
	c.mustCall(&dropped, "hardhat_dropTransaction", common.HexToHash("0x01"))
	assert.False(t, dropped)

	rpcErr = c.mustFail("evm_setBlockGasLimit", "0x0")
	assert.Equal(t, -32000, rpcErr.Code)

	c.mustCall(nil, "hardhat_reset")
	var blockNumber hexutil.Uint64
	c.mustCall(&blockNumber, "eth_blockNumber")
	assert.Zero(t, blockNumber)
}

func TestRequestErrors(t *testing.T) {
	c, _ := newTestClient(t)

	assert.Equal(t, -32601, c.mustFail("eth_sendRawTransaction", "0x00").Code)
	assert.Equal(t, -32602, c.mustFail("hardhat_setNonce").Code)
	assert.Equal(t, -32602, c.mustFail("eth_getBalance", "not an address", "latest").Code)
}

func TestNamespaceFilter(t *testing.T) {
	c, _ := newTestClient(t, "eth")

	c.mustCall(nil, "eth_blockNumber")
	assert.Equal(t, -32601, c.mustFail("evm_mine").Code)
	assert.Equal(t, -32601, c.mustFail("net_version").Code)
}
