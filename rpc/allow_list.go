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

package rpc

import (
	"fmt"
	"sort"

	"github.com/deckarep/golang-set/v2"
)

// AllowList restricts the methods served. The zero value allows every method.
type AllowList struct {
	methods mapset.Set[string]
}

func NewAllowList(methods ...string) AllowList {
	if len(methods) == 0 {
		return AllowList{}
	}
	return AllowList{methods: mapset.NewSet(methods...)}
}

func (a AllowList) Allowed(method string) bool {
	return a.methods == nil || a.methods.Contains(method)
}

func (a *AllowList) UnmarshalJSON(data []byte) error {
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*a = NewAllowList(keys...)
	return nil
}

// MarshalJSON returns the allowed methods in sorted order.
func (a AllowList) MarshalJSON() ([]byte, error) {
	keys := []string{}
	if a.methods != nil {
		keys = a.methods.ToSlice()
		sort.Strings(keys)
	}
	return json.Marshal(keys)
}

// ParseAccessList parses the content of an --rpc.accessList file:
//
//	{"allow": ["eth_blockNumber", "eth_sendTransaction"]}
func ParseAccessList(data []byte) (AllowList, error) {
	var acl struct {
		Allow AllowList `json:"allow"`
	}
	if err := json.Unmarshal(data, &acl); err != nil {
		return AllowList{}, fmt.Errorf("parsing rpc access list: %w", err)
	}
	return acl.Allow, nil
}
