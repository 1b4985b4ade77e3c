// Copyright 2014 The go-ethereum Authors
// (original work)
// Copyright 2024 The Erigon Authors
// (modifications)
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

package rpc

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rpcRequestGauge    = promauto.NewCounter(prometheus.CounterOpts{Name: "rpc_total", Help: "Served RPC calls"})
	failedReqeustGauge = promauto.NewCounter(prometheus.CounterOpts{Name: "rpc_failure", Help: "Served RPC calls answered with an error"})

	rpcServingTimer = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Name:       "rpc_duration_seconds",
		Help:       "Duration of served RPC calls",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"method", "success"})
)

func observeCall(method string, success bool, start time.Time) {
	rpcRequestGauge.Inc()
	if !success {
		failedReqeustGauge.Inc()
	}
	rpcServingTimer.WithLabelValues(method, strconv.FormatBool(success)).Observe(time.Since(start).Seconds())
}
