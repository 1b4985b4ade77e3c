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

package miner

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ledgerwatch/log/v3"

	"github.com/erigontech/devchain/core/types"
)

// AutomineFlag is where the automine setting lives. The pool owns it because
// admission depends on it.
type AutomineFlag interface {
	Automine() bool
	SetAutomine(enabled bool)
}

// Automine mines right after each admission while enabled.
type Automine struct {
	flag     AutomineFlag
	producer *Producer
	logger   log.Logger
}

func NewAutomine(flag AutomineFlag, producer *Producer, logger log.Logger) *Automine {
	return &Automine{flag: flag, producer: producer, logger: logger}
}

func (a *Automine) Enabled() bool { return a.flag.Automine() }

func (a *Automine) SetEnabled(enabled bool) {
	a.flag.SetAutomine(enabled)
	a.logger.Info("[miner] Automine", "enabled", enabled)
}

// OnAdmitted drains the pool after hash was admitted. It returns a nil outcome
// while automine is disabled.
func (a *Automine) OnAdmitted(ctx context.Context, hash common.Hash) (*Outcome, []*types.Block, error) {
	if !a.flag.Automine() {
		return nil, nil, nil
	}
	return a.producer.DrainMine(ctx, hash)
}

// IntervalMiner calls mine once per interval. A zero interval pauses it.
type IntervalMiner struct {
	mine     func(ctx context.Context) error
	interval atomic.Int64
	changed  chan struct{}
	logger   log.Logger
}

func NewIntervalMiner(interval time.Duration, mine func(ctx context.Context) error, logger log.Logger) *IntervalMiner {
	m := &IntervalMiner{
		mine:    mine,
		changed: make(chan struct{}, 1),
		logger:  logger,
	}
	m.interval.Store(int64(interval))
	return m
}

func (m *IntervalMiner) Interval() time.Duration { return time.Duration(m.interval.Load()) }

func (m *IntervalMiner) SetInterval(interval time.Duration) {
	m.interval.Store(int64(interval))
	select {
	case m.changed <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is done.
func (m *IntervalMiner) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	reset := func() {
		timer.Stop()
		if interval := m.Interval(); interval > 0 {
			timer.Reset(interval)
		}
	}
	reset()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.changed:
			m.logger.Info("[miner] Interval mining", "interval", m.Interval())
			reset()
		case <-timer.C:
			if err := m.mine(ctx); err != nil {
				m.logger.Warn("[miner] Interval block failed", "err", err)
			}
			reset()
		}
	}
}
