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
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

type NotificationKind uint8

const (
	// ResetNotification follows a successful chain reset on the remote node.
	ResetNotification NotificationKind = 1
	// RevertNotification follows a successful snapshot revert on the remote node.
	RevertNotification NotificationKind = 2
)

func (k NotificationKind) String() string {
	switch k {
	case ResetNotification:
		return "reset"
	case RevertNotification:
		return "revert"
	}
	return fmt.Sprintf("Unknown:%d", k)
}

type Notification struct {
	Kind   NotificationKind
	Method string
}

var trueResult = []byte("true")

func notificationFor(method string, result jsoniter.RawMessage) (Notification, bool) {
	switch method {
	case "hardhat_reset", "anvil_reset":
		return Notification{Kind: ResetNotification, Method: method}, true
	case "evm_revert":
		// evm_revert answers false when the snapshot id is unknown
		if bytes.Equal(bytes.TrimSpace(result), trueResult) {
			return Notification{Kind: RevertNotification, Method: method}, true
		}
	}
	return Notification{}, false
}

// Subscribe registers fn to be called synchronously, on the calling goroutine
// of Call/BatchCall, after a successful reset or revert. The returned func
// removes the subscription.
func (c *Client) Subscribe(fn func(Notification)) (unsubscribe func()) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	c.subs[id] = fn
	return func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Client) notify(method string, result jsoniter.RawMessage) {
	n, ok := notificationFor(method, result)
	if !ok {
		return
	}
	c.subsMu.Lock()
	subs := make([]func(Notification), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subsMu.Unlock()

	c.logger.Debug("[forkclient] remote state changed", "kind", n.Kind, "method", method, "subscribers", len(subs))
	for _, fn := range subs {
		fn(n)
	}
}
