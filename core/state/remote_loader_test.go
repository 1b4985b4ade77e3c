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

package state

import (
	"context"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/ledgerwatch/log/v3"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/devchain/rpc/forkclient"
)

type fakeRemote struct {
	mu       sync.Mutex
	accounts map[common.Address]*forkclient.RemoteAccount
	calls    int
	blocks   []uint64
	err      error
	subs     []func(forkclient.Notification)
}

func (f *fakeRemote) GetAccount(_ context.Context, addr common.Address, blockNum uint64) (*forkclient.RemoteAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.blocks = append(f.blocks, blockNum)
	if f.err != nil {
		return nil, f.err
	}
	if acc, ok := f.accounts[addr]; ok {
		return acc, nil
	}
	return &forkclient.RemoteAccount{Balance: new(uint256.Int)}, nil
}

func (f *fakeRemote) Subscribe(fn func(forkclient.Notification)) func() {
	f.subs = append(f.subs, fn)
	idx := len(f.subs) - 1
	return func() { f.subs[idx] = nil }
}

func (f *fakeRemote) fire(kind forkclient.NotificationKind) {
	for _, fn := range f.subs {
		if fn != nil {
			fn(forkclient.Notification{Kind: kind})
		}
	}
}

func newTestLogger() log.Logger {
	logger := log.New()
	logger.SetHandler(log.DiscardHandler())
	return logger
}

func TestRemoteLoader(t *testing.T) {
	remote := &fakeRemote{accounts: map[common.Address]*forkclient.RemoteAccount{
		addrA: {Nonce: 5, Balance: uint256.NewInt(77), Code: []byte{0x01}},
	}}
	loader, err := NewRemoteLoader(context.Background(), remote, 1234, 16, newTestLogger())
	require.NoError(t, err)
	defer loader.Close()

	acc, err := loader.LoadAccount(addrA)
	require.NoError(t, err)
	require.Equal(t, uint64(5), acc.Nonce)
	require.Equal(t, uint64(77), acc.Balance.Uint64())
	require.Equal(t, []byte{0x01}, acc.Code)

	acc.Nonce = 100
	acc, err = loader.LoadAccount(addrA)
	require.NoError(t, err)
	require.Equal(t, uint64(5), acc.Nonce)

	acc, err = loader.LoadAccount(addrB)
	require.NoError(t, err)
	require.Nil(t, acc)
	_, err = loader.LoadAccount(addrB)
	require.NoError(t, err)

	require.Equal(t, 2, remote.calls)
	require.Equal(t, []uint64{1234, 1234}, remote.blocks)

	remote.fire(forkclient.ResetNotification)
	_, err = loader.LoadAccount(addrA)
	require.NoError(t, err)
	require.Equal(t, 3, remote.calls)

	loader.Close()
	remote.fire(forkclient.RevertNotification)
	_, err = loader.LoadAccount(addrA)
	require.NoError(t, err)
	require.Equal(t, 3, remote.calls)
}

func TestRemoteLoaderError(t *testing.T) {
	remote := &fakeRemote{err: forkclient.ErrUnreachable}
	loader, err := NewRemoteLoader(context.Background(), remote, 1, 0, newTestLogger())
	require.NoError(t, err)

	sdb := New(loader)
	_, err = sdb.GetBalance(addrA)
	require.ErrorIs(t, err, forkclient.ErrUnreachable)
}
