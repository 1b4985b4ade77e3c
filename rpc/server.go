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
	"fmt"
	"sync/atomic"

	"github.com/deckarep/golang-set/v2"
	"github.com/ledgerwatch/log/v3"
)

const MetadataApi = "rpc"

// Server is an RPC server.
type Server struct {
	services  serviceRegistry
	allowList AllowList
	run       atomic.Bool

	traceRequests bool // Whether to print requests at INFO level
	batchLimit    int  // Maximum number of requests in a batch
	logger        log.Logger
}

// NewServer creates a new server instance with no registered handlers.
func NewServer(batchLimit int, traceRequests bool, logger log.Logger) *Server {
	server := &Server{batchLimit: batchLimit, traceRequests: traceRequests, logger: logger}
	server.run.Store(true)
	// Register the default service providing meta information about the RPC service such
	// as the services and methods it offers.
	rpcService := &RPCService{server: server}
	if err := server.RegisterName(MetadataApi, rpcService); err != nil {
		panic(err)
	}
	return server
}

// SetAllowList sets the allow list for methods that are handled by this server
func (s *Server) SetAllowList(allowList AllowList) {
	s.allowList = allowList
}

// SetBatchLimit sets limit of number of requests in a batch
func (s *Server) SetBatchLimit(limit int) {
	s.batchLimit = limit
}

// RegisterName creates a service for the given receiver type under the given name. When no
// methods on the given receiver match the criteria to be a RPC method an error is returned.
// Otherwise a new service is created and added to the service collection this server
// provides to clients.
func (s *Server) RegisterName(name string, receiver interface{}) error {
	return s.services.registerName(name, receiver)
}

// RegisterAPIs registers the apis whose namespace is listed in namespaces, or
// all of them if namespaces is empty.
func (s *Server) RegisterAPIs(apis []API, namespaces []string) error {
	enabled := mapset.NewThreadUnsafeSet(namespaces...)
	for _, api := range apis {
		if enabled.Cardinality() > 0 && !enabled.Contains(api.Namespace) {
			continue
		}
		if err := s.RegisterName(api.Namespace, api.Service); err != nil {
			return fmt.Errorf("registering %s api: %w", api.Namespace, err)
		}
		s.logger.Debug("[rpc] Registered api", "namespace", api.Namespace)
	}
	return nil
}

// serveSingleRequest processes a request body which is a single message or a
// batch. A nil result means there is nothing to write back.
func (s *Server) serveSingleRequest(ctx context.Context, body []byte) interface{} {
	// Don't serve if server is stopped.
	if !s.run.Load() {
		return errorMessage(&internalServerError{errcodeDefault, "server is shutting down"})
	}

	reqs, batch, err := parseMessage(body)
	if err != nil {
		return errorMessage(&invalidMessageError{"parse error"})
	}
	if !batch {
		if answer := s.handleMsg(ctx, reqs[0]); answer != nil {
			return answer
		}
		return nil
	}
	if s.batchLimit > 0 && len(reqs) > s.batchLimit {
		return errorMessage(&internalServerError{errcodeBatchTooLarge,
			fmt.Sprintf("batch limit %d exceeded (can increase by --rpc.batch.limit). Requested batch of size: %d", s.batchLimit, len(reqs))})
	}
	answers := s.handleBatch(ctx, reqs)
	if len(answers) == 0 {
		return nil
	}
	return answers
}

// Stop stops serving new requests.
func (s *Server) Stop() {
	if s.run.CompareAndSwap(true, false) {
		s.logger.Info("RPC server shutting down")
	}
}

// RPCService gives meta information about the server.
// e.g. gives information about the loaded modules.
type RPCService struct {
	server *Server
}

// Modules returns the list of RPC services with their version number
func (s *RPCService) Modules() map[string]string {
	s.server.services.mu.Lock()
	defer s.server.services.mu.Unlock()

	modules := make(map[string]string)
	for name := range s.server.services.services {
		modules[name] = "1.0"
	}
	return modules
}
