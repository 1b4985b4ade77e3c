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
	"fmt"
)

var (
	// ErrUnreachable is returned when the remote node refuses the connection.
	// It usually means the fork url is wrong, so it is not retried.
	ErrUnreachable = errors.New("target node unreachable")
	// ErrTimeout is returned when a single attempt exceeds the configured timeout.
	ErrTimeout = errors.New("network timeout")
	// ErrRateLimited is returned (after retries) when the remote node keeps answering 429.
	ErrRateLimited = errors.New("rate limited by remote node")
	// ErrBadResponse is returned when the response can't be matched to the request.
	ErrBadResponse = errors.New("invalid JSON-RPC response")
)

// Error is a JSON-RPC error object returned by the remote node.
type Error struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("json-rpc error %d", e.Code)
	}
	return e.Message
}

func (e *Error) ErrorCode() int { return e.Code }

func (e *Error) ErrorData() interface{} { return e.Data }

// HTTPError is a non-2xx answer of the remote node.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *HTTPError) Error() string {
	if len(e.Body) == 0 {
		return e.Status
	}
	return fmt.Sprintf("%v: %s", e.Status, e.Body)
}

func (e *HTTPError) Unwrap() error {
	if e.StatusCode == 429 {
		return ErrRateLimited
	}
	return nil
}

// retryable reports whether another attempt may succeed.
func (e *HTTPError) retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
