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
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ledgerwatch/log/v3"

	"github.com/erigontech/devchain/rpc/forkclient"
)

const DefaultRemoteCacheSize = 4096

// RemoteAccounts is the part of the fork client the loader depends on.
type RemoteAccounts interface {
	GetAccount(ctx context.Context, addr common.Address, blockNum uint64) (*forkclient.RemoteAccount, error)
	Subscribe(fn func(forkclient.Notification)) (unsubscribe func())
}

var _ AccountLoader = (*RemoteLoader)(nil)

// RemoteLoader loads accounts as of the fork block from the remote node.
// Answers, including "no such account", are cached until the remote node
// reports a reset or a revert.
type RemoteLoader struct {
	ctx         context.Context
	remote      RemoteAccounts
	blockNum    uint64
	cache       *lru.Cache[common.Address, *Account]
	unsubscribe func()
	logger      log.Logger
}

func NewRemoteLoader(ctx context.Context, remote RemoteAccounts, blockNum uint64, cacheSize int, logger log.Logger) (*RemoteLoader, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultRemoteCacheSize
	}
	cache, err := lru.New[common.Address, *Account](cacheSize)
	if err != nil {
		return nil, err
	}
	l := &RemoteLoader{
		ctx:      ctx,
		remote:   remote,
		blockNum: blockNum,
		cache:    cache,
		logger:   logger,
	}
	l.unsubscribe = remote.Subscribe(l.onNotification)
	return l, nil
}

func (l *RemoteLoader) BlockNum() uint64 { return l.blockNum }

func (l *RemoteLoader) LoadAccount(addr common.Address) (*Account, error) {
	if acc, ok := l.cache.Get(addr); ok {
		if acc == nil {
			return nil, nil
		}
		return acc.copy(), nil
	}
	remote, err := l.remote.GetAccount(l.ctx, addr, l.blockNum)
	if err != nil {
		return nil, fmt.Errorf("fetching account at fork block %d: %w", l.blockNum, err)
	}
	var acc *Account
	if remote.Nonce != 0 || (remote.Balance != nil && !remote.Balance.IsZero()) || len(remote.Code) > 0 {
		acc = &Account{Nonce: remote.Nonce, Code: common.CopyBytes(remote.Code)}
		if remote.Balance != nil {
			acc.Balance.Set(remote.Balance)
		}
	}
	l.cache.Add(addr, acc)
	if acc == nil {
		return nil, nil
	}
	return acc.copy(), nil
}

func (l *RemoteLoader) onNotification(n forkclient.Notification) {
	l.logger.Debug("[state] dropping cached remote accounts", "reason", n.Kind, "cached", l.cache.Len())
	l.cache.Purge()
}

// Close stops listening for remote notifications.
func (l *RemoteLoader) Close() {
	if l.unsubscribe != nil {
		l.unsubscribe()
	}
}
