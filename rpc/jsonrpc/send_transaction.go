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

	"github.com/ethereum/go-ethereum/common"
)

// SendTransaction implements eth_sendTransaction. Creates new message call transaction or a contract creation if the data field contains code.
//
// The sender must be one of the node accounts or an impersonated account.
// With automine on, the call returns once the transaction was mined or
// rejected; an execution failure of the mined transaction is returned as an
// error carrying its hash.
func (api *APIImpl) SendTransaction(ctx context.Context, args TransactionArgs) (common.Hash, error) {
	return api.b.SendTransaction(ctx, args)
}
