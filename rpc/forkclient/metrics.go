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

package forkclient

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Name:       "forkclient_request_duration_seconds",
		Help:       "Duration of requests to the fork source, retries included",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"method", "success"})

	requestFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forkclient_request_failures_total",
		Help: "Failed requests to the fork source by cause",
	}, []string{"cause"})
)

func observeRequest(method string, start time.Time, err error) {
	success := "true"
	if err != nil {
		success = "false"
		requestFailures.WithLabelValues(failureCause(err)).Inc()
	}
	requestDuration.WithLabelValues(method, success).Observe(time.Since(start).Seconds())
}

func failureCause(err error) string {
	switch {
	case errors.Is(err, ErrUnreachable):
		return "unreachable"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	default:
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			return "http"
		}
		return "network"
	}
}
