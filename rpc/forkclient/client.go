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

// Package forkclient is the JSON-RPC over HTTP client used to pull chain data
// from a remote node when the dev chain runs as a fork.
package forkclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	jsoniter "github.com/json-iterator/go"
	"github.com/ledgerwatch/log/v3"
	"golang.org/x/time/rate"
)

const vsn = "2.0"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonrpcMessage struct {
	Version string              `json:"jsonrpc,omitempty"`
	ID      *uint64             `json:"id,omitempty"`
	Method  string              `json:"method,omitempty"`
	Params  jsoniter.RawMessage `json:"params,omitempty"`
	Error   *jsonError          `json:"error,omitempty"`
	Result  jsoniter.RawMessage `json:"result,omitempty"`
}

type jsonError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BatchElem is an element in a batch request.
type BatchElem struct {
	Method string
	Args   []interface{}
	// The result is unmarshaled into this field. Result must be set to a
	// non-nil pointer value of the desired type, otherwise the response will be
	// discarded.
	Result interface{}
}

// Client talks to a single remote JSON-RPC endpoint.
type Client struct {
	url     string
	logger  log.Logger
	config  config
	limiter *rate.Limiter

	nextID atomic.Uint64

	subsMu    sync.Mutex
	subs      map[uint64]func(Notification)
	nextSubID uint64
}

func NewClient(url string, logger log.Logger, opts ...Option) *Client {
	cfg := defaultConfig.copyWithOptions(opts...)
	return &Client{
		url:     url,
		logger:  logger,
		config:  cfg,
		limiter: rate.NewLimiter(cfg.rateLimit, cfg.rateBurst),
		subs:    map[uint64]func(Notification){},
	}
}

func (c *Client) URL() string { return c.url }

func (c *Client) Close() {
	c.config.handler.CloseIdleConnections()
}

func (c *Client) newMessage(method string, args ...interface{}) (*jsonrpcMessage, error) {
	id := c.nextID.Add(1)
	msg := &jsonrpcMessage{Version: vsn, ID: &id, Method: method}
	if args == nil {
		args = []interface{}{}
	}
	params, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encoding params of %s: %w", method, err)
	}
	msg.Params = params
	return msg, nil
}

// Call performs a single JSON-RPC call and decodes the result into result.
func (c *Client) Call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	start := time.Now()
	msg, err := c.newMessage(method, args...)
	if err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	respBody, err := c.post(ctx, method, body)
	observeRequest(method, start, err)
	if err != nil {
		return err
	}

	var resp jsonrpcMessage
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadResponse, method, err)
	}
	if resp.Error != nil {
		return &Error{Code: resp.Error.Code, Message: resp.Error.Message, Data: resp.Error.Data}
	}
	if resp.ID == nil || *resp.ID != *msg.ID {
		return fmt.Errorf("%w: %s: unexpected id", ErrBadResponse, method)
	}
	if result != nil && len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("decoding result of %s: %w", method, err)
		}
	}
	c.notify(method, resp.Result)
	return nil
}

// BatchCall sends all given requests as a single batch and waits for the
// server to return a response for all of them. Responses are matched to the
// requests by id, the order of the response array is not relied upon. A
// JSON-RPC error in any element fails the whole batch.
func (c *Client) BatchCall(ctx context.Context, b []BatchElem) error {
	if len(b) == 0 {
		return nil
	}
	start := time.Now()
	msgs := make([]*jsonrpcMessage, len(b))
	byID := make(map[uint64]int, len(b))
	for i, elem := range b {
		msg, err := c.newMessage(elem.Method, elem.Args...)
		if err != nil {
			return err
		}
		msgs[i] = msg
		byID[*msg.ID] = i
	}
	body, err := json.Marshal(msgs)
	if err != nil {
		return err
	}

	respBody, err := c.post(ctx, "batch", body)
	observeRequest("batch", start, err)
	if err != nil {
		return err
	}

	var resps []*jsonrpcMessage
	if err := json.Unmarshal(respBody, &resps); err != nil {
		// a single error object instead of an array, e.g. batch too large
		var single jsonrpcMessage
		if json.Unmarshal(respBody, &single) == nil && single.Error != nil {
			return &Error{Code: single.Error.Code, Message: single.Error.Message, Data: single.Error.Data}
		}
		return fmt.Errorf("%w: batch: %v", ErrBadResponse, err)
	}

	ordered, err := orderResponses(resps, byID, len(b))
	if err != nil {
		return err
	}
	for i, resp := range ordered {
		if resp.Error != nil {
			return &Error{Code: resp.Error.Code, Message: resp.Error.Message, Data: resp.Error.Data}
		}
		if b[i].Result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, b[i].Result); err != nil {
				return fmt.Errorf("decoding result of %s: %w", b[i].Method, err)
			}
		}
	}
	for i, resp := range ordered {
		c.notify(b[i].Method, resp.Result)
	}
	return nil
}

// orderResponses sorts the responses into request order.
func orderResponses(resps []*jsonrpcMessage, byID map[uint64]int, n int) ([]*jsonrpcMessage, error) {
	if len(resps) != n {
		return nil, fmt.Errorf("%w: batch of %d answered with %d responses", ErrBadResponse, n, len(resps))
	}
	for _, resp := range resps {
		if resp == nil || resp.ID == nil {
			return nil, fmt.Errorf("%w: batch response without id", ErrBadResponse)
		}
		if _, ok := byID[*resp.ID]; !ok {
			return nil, fmt.Errorf("%w: unknown id %d in batch response", ErrBadResponse, *resp.ID)
		}
	}
	sort.SliceStable(resps, func(i, j int) bool {
		return byID[*resps[i].ID] < byID[*resps[j].ID]
	})
	for i, resp := range resps {
		if byID[*resp.ID] != i {
			return nil, fmt.Errorf("%w: duplicate id %d in batch response", ErrBadResponse, *resp.ID)
		}
	}
	return resps, nil
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.config.retryBackOff
	b.MaxInterval = c.config.maxRetryBackOff
	b.RandomizationFactor = c.config.jitter
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, c.config.maxRetries), ctx)
}

// post sends body and returns the raw response, retrying transient failures.
func (c *Client) post(ctx context.Context, method string, body []byte) ([]byte, error) {
	attempt := 0
	return backoff.RetryNotifyWithData(func() ([]byte, error) {
		attempt++
		return c.postOnce(ctx, body)
	}, c.newBackOff(ctx), func(err error, wait time.Duration) {
		c.logger.Debug("[forkclient] request failed, retrying", "url", c.url, "method", method, "attempt", attempt, "wait", wait, "err", err)
	})
}

func (c *Client) postOnce(ctx context.Context, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.config.handler.Do(req)
	if err != nil {
		return nil, c.classify(ctx, reqCtx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classify(ctx, reqCtx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: respBody}
		if httpErr.retryable() {
			return nil, httpErr
		}
		return nil, backoff.Permanent(httpErr)
	}
	return respBody, nil
}

// classify maps transport failures onto the client's error taxonomy. Only
// the errors returned without backoff.Permanent are retried.
func (c *Client) classify(ctx, reqCtx context.Context, err error) error {
	switch {
	case ctx.Err() != nil:
		return backoff.Permanent(ctx.Err())
	case errors.Is(reqCtx.Err(), context.DeadlineExceeded) || isTimeout(err):
		return backoff.Permanent(fmt.Errorf("%w: no response from %s within %v", ErrTimeout, c.url, c.config.timeout))
	case errors.Is(err, syscall.ECONNREFUSED):
		return backoff.Permanent(fmt.Errorf("%w: %s: %v", ErrUnreachable, c.url, err))
	default:
		return err
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
