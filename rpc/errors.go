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

import "fmt"

const (
	errcodeDefault        = -32603
	errcodeMarshalError   = -32603
	errcodeInvalidInput   = -32000
	errcodeParse          = -32700
	errcodeInvalidRequest = -32600
	errcodeMethodNotFound = -32601
	errcodeInvalidParams  = -32602
	errcodeBatchTooLarge  = -32600
)

var (
	_ Error = new(methodNotFoundError)
	_ Error = new(invalidRequestError)
	_ Error = new(invalidMessageError)
	_ Error = new(invalidParamsError)
	_ Error = new(internalServerError)
	_ Error = new(InvalidInputError)
)

type methodNotFoundError struct{ method string }

func (e *methodNotFoundError) ErrorCode() int { return errcodeMethodNotFound }

func (e *methodNotFoundError) Error() string {
	return fmt.Sprintf("the method %s does not exist/is not available", e.method)
}

type invalidRequestError struct{ message string }

func (e *invalidRequestError) ErrorCode() int { return errcodeInvalidRequest }

func (e *invalidRequestError) Error() string { return e.message }

// received message isn't a valid request
type invalidMessageError struct{ message string }

func (e *invalidMessageError) ErrorCode() int { return errcodeParse }

func (e *invalidMessageError) Error() string { return e.message }

// unable to decode supplied params, or an invalid number of parameters
type invalidParamsError struct{ message string }

func (e *invalidParamsError) ErrorCode() int { return errcodeInvalidParams }

func (e *invalidParamsError) Error() string { return e.message }

type internalServerError struct {
	code    int
	message string
}

func (e *internalServerError) ErrorCode() int { return e.code }

func (e *internalServerError) Error() string { return e.message }

// InvalidInputError is returned by handlers for well-formed requests that
// can't be served, e.g. a transaction from an unknown account.
type InvalidInputError struct{ Message string }

func (e *InvalidInputError) ErrorCode() int { return errcodeInvalidInput }

func (e *InvalidInputError) Error() string { return e.Message }
