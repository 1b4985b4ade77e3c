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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blocksCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "miner_blocks_total",
		Help: "Blocks committed by the producer",
	})
	txnsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "miner_txns_total",
		Help: "Transactions included in committed blocks",
	})
	evictedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "miner_evicted_total",
		Help: "Transactions found non-executable while building a block",
	})
)
