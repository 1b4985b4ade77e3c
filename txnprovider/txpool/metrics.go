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

package txpool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pendingSubCounter = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "txpool_pending",
		Help: "Number of pending transactions",
	})
	queuedSubCounter = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "txpool_queued",
		Help: "Number of queued transactions",
	})
	discardedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "txpool_discarded_total",
		Help: "Transactions refused or removed from the pool, by reason",
	}, []string{"reason"})
)
