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
	"strconv"
)

// NetAPI the interface for the net_ RPC commands
type NetAPI interface {
	Listening(_ context.Context) (bool, error)
	Version(_ context.Context) (string, error)
}

// NetAPIImpl data structure to store things needed for net_ commands
type NetAPIImpl struct {
	b Backend
}

// NewNetAPIImpl returns NetAPIImplImpl instance
func NewNetAPIImpl(b Backend) *NetAPIImpl {
	return &NetAPIImpl{b: b}
}

// Listening implements net_listening. A dev node has no peers but is always
// reachable over RPC.
func (api *NetAPIImpl) Listening(_ context.Context) (bool, error) {
	return true, nil
}

// Version implements net_version. Returns the current network id.
func (api *NetAPIImpl) Version(_ context.Context) (string, error) {
	return strconv.FormatUint(api.b.ChainID(), 10), nil
}
