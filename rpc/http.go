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
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/c2h5oh/datasize"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
)

const (
	contentType        = "application/json"
	DefaultMaxBodySize = 5 * datasize.MB
)

// https://www.jsonrpc.org/historical/json-rpc-over-http.html#id13
var acceptedContentTypes = []string{contentType, "application/json-rpc", "application/jsonrequest"}

type HTTPConfig struct {
	CorsDomains []string
	MaxBodySize datasize.ByteSize
}

type httpServer struct {
	srv         *Server
	maxBodySize int64
}

// NewHTTPHandler serves srv over HTTP POST on the root path, with a health
// endpoint at /health.
func NewHTTPHandler(srv *Server, cfg HTTPConfig) http.Handler {
	maxBodySize := cfg.MaxBodySize
	if maxBodySize == 0 {
		maxBodySize = DefaultMaxBodySize
	}
	h := &httpServer{srv: srv, maxBodySize: int64(maxBodySize.Bytes())}

	router := chi.NewRouter()
	router.Post("/", h.ServeHTTP)
	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return newCorsHandler(router, cfg.CorsDomains)
}

func newCorsHandler(srv http.Handler, allowedOrigins []string) http.Handler {
	// disable CORS support if user has not specified a custom CORS configuration
	if len(allowedOrigins) == 0 {
		return srv
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodGet},
		AllowedHeaders: []string{"*"},
		MaxAge:         600,
	})
	return c.Handler(srv)
}

func (h *httpServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if code, err := validateRequest(r); err != nil {
		http.Error(w, err.Error(), code)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("content length too large (%d>%d)", r.ContentLength, h.maxBodySize), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := h.srv.serveSingleRequest(r.Context(), body)
	w.Header().Set("content-type", contentType)
	if resp == nil {
		return
	}
	stream := json.BorrowStream(w)
	defer json.ReturnStream(stream)
	stream.WriteVal(resp)
	stream.WriteRaw("\n")
	if err := stream.Flush(); err != nil {
		h.srv.logger.Debug("[rpc] Writing response", "err", err)
	}
}

// validateRequest returns a non-zero response code and error message if the
// request is invalid.
func validateRequest(r *http.Request) (int, error) {
	if r.ContentLength > 0 && r.Header.Get("content-type") == "" {
		return http.StatusUnsupportedMediaType, errors.New("missing content type")
	}
	mt, _, err := mime.ParseMediaType(r.Header.Get("content-type"))
	if err != nil && r.ContentLength > 0 {
		return http.StatusUnsupportedMediaType, err
	}
	for _, accepted := range acceptedContentTypes {
		if accepted == mt {
			return 0, nil
		}
	}
	err = fmt.Errorf("invalid content type, only %s is supported", contentType)
	return http.StatusUnsupportedMediaType, err
}
