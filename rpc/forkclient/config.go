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
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

type config struct {
	handler         httpRequestHandler
	timeout         time.Duration
	maxRetries      uint64
	retryBackOff    time.Duration
	maxRetryBackOff time.Duration
	jitter          float64
	rateLimit       rate.Limit
	rateBurst       int
}

var defaultConfig = config{
	timeout:         20 * time.Second,
	maxRetries:      5,
	retryBackOff:    250 * time.Millisecond,
	maxRetryBackOff: 5 * time.Second,
	jitter:          0.5,
	rateLimit:       rate.Inf,
	rateBurst:       1,
}

func (c config) copyWithOptions(opts ...Option) config {
	res := c
	for _, opt := range opts {
		opt(&res)
	}
	if res.handler == nil {
		res.handler = &http.Client{}
	}
	return res
}

type Option func(*config)

// WithHttpRequestHandler replaces the default *http.Client.
func WithHttpRequestHandler(h httpRequestHandler) Option {
	return func(c *config) {
		c.handler = h
	}
}

// WithTimeout bounds every single HTTP attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.timeout = timeout
	}
}

func WithHttpMaxRetries(maxRetries uint64) Option {
	return func(c *config) {
		c.maxRetries = maxRetries
	}
}

// WithHttpRetryBackOff sets the first retry interval; later intervals grow
// exponentially up to maxBackOff.
func WithHttpRetryBackOff(initial, maxBackOff time.Duration) Option {
	return func(c *config) {
		c.retryBackOff = initial
		c.maxRetryBackOff = maxBackOff
	}
}

// WithJitter sets the randomization factor applied to every retry interval.
func WithJitter(factor float64) Option {
	return func(c *config) {
		c.jitter = factor
	}
}

// WithRateLimit caps the number of HTTP attempts per second. Zero disables it.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *config) {
		if requestsPerSecond <= 0 {
			c.rateLimit = rate.Inf
			return
		}
		c.rateLimit = rate.Limit(requestsPerSecond)
		c.rateBurst = max(burst, 1)
	}
}
