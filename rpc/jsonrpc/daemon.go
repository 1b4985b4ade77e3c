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
	"github.com/erigontech/devchain/rpc"
)

// APIList describes the list of available RPC apis
func APIList(b Backend) (list []rpc.API) {
	return []rpc.API{
		{
			Namespace: "eth",
			Public:    true,
			Service:   EthAPI(NewEthAPI(b)),
			Version:   "1.0",
		}, {
			Namespace: "net",
			Public:    true,
			Service:   NetAPI(NewNetAPIImpl(b)),
			Version:   "1.0",
		}, {
			Namespace: "web3",
			Public:    true,
			Service:   Web3API(NewWeb3APIImpl()),
			Version:   "1.0",
		}, {
			Namespace: "txpool",
			Public:    true,
			Service:   TxPoolAPI(NewTxPoolAPI(b)),
			Version:   "1.0",
		}, {
			Namespace: "hardhat",
			Public:    false,
			Service:   HardhatAPI(NewHardhatAPI(b)),
			Version:   "1.0",
		}, {
			Namespace: "evm",
			Public:    false,
			Service:   EvmAPI(NewEvmAPI(b)),
			Version:   "1.0",
		},
	}
}
