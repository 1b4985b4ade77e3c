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
	"context"
	"time"
)

// handleBatch executes all messages of a batch in order and returns the
// responses. Notifications get no response.
func (s *Server) handleBatch(ctx context.Context, msgs []*jsonrpcMessage) []*jsonrpcMessage {
	if len(msgs) == 0 {
		return []*jsonrpcMessage{errorMessage(&invalidRequestError{"empty batch"})}
	}
	answers := make([]*jsonrpcMessage, 0, len(msgs))
	for _, msg := range msgs {
		if answer := s.handleMsg(ctx, msg); answer != nil {
			answers = append(answers, answer)
		}
	}
	return answers
}

// handleMsg handles a single message. The result is nil for notifications.
func (s *Server) handleMsg(ctx context.Context, msg *jsonrpcMessage) *jsonrpcMessage {
	answer := s.handleCallMsg(ctx, msg)
	if msg.isNotification() {
		return nil
	}
	return answer
}

func (s *Server) handleCallMsg(ctx context.Context, msg *jsonrpcMessage) *jsonrpcMessage {
	if msg.Method == "" || !msg.isNotification() && !msg.hasValidID() {
		return errorMessage(&invalidRequestError{"invalid request"})
	}
	callb := s.services.callback(msg.Method)
	if callb == nil || !s.allowList.Allowed(msg.Method) {
		return msg.errorResponse(&methodNotFoundError{method: msg.Method})
	}

	start := time.Now()
	answer := s.runMethod(ctx, msg, callb)
	success := answer.Error == nil
	observeCall(msg.Method, success, start)

	if s.traceRequests {
		s.logger.Info("Served", "method", msg.Method, "reqid", string(msg.ID), "t", time.Since(start), "success", success)
	} else if !success {
		s.logger.Debug("Served", "method", msg.Method, "reqid", string(msg.ID), "t", time.Since(start), "err", answer.Error.Message)
	} else {
		s.logger.Trace("Served", "method", msg.Method, "reqid", string(msg.ID), "t", time.Since(start))
	}
	return answer
}

func (s *Server) runMethod(ctx context.Context, msg *jsonrpcMessage, callb *callback) *jsonrpcMessage {
	args, err := parsePositionalArguments(msg.Params, callb.argTypes)
	if err != nil {
		return msg.errorResponse(&invalidParamsError{err.Error()})
	}
	result, err := callb.call(ctx, msg.Method, args, s.logger)
	if err != nil {
		return msg.errorResponse(err)
	}
	return msg.response(result)
}
