// Copyright 2016 The go-ethereum Authors
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

package state

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// journalEntry is a modification entry in the state change journal that can be
// reverted on demand.
type journalEntry interface {
	// revert undoes the changes introduced by this journal entry.
	revert(*IntraBlockState)
}

// journal contains the list of state modifications applied since the last state
// commit. These are tracked to be able to be reverted in case of an execution
// exception or revertal request.
type journal struct {
	entries []journalEntry
}

func newJournal() *journal {
	return &journal{}
}

func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
}

// revert undoes a batch of journalled modifications. Caller holds the state lock.
func (j *journal) revert(sdb *IntraBlockState, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		j.entries[i].revert(sdb)
	}
	j.entries = j.entries[:snapshot]
}

func (j *journal) length() int {
	return len(j.entries)
}

type (
	createObjectChange struct {
		account common.Address
	}
	balanceChange struct {
		account common.Address
		prev    uint256.Int
	}
	nonceChange struct {
		account common.Address
		prev    uint64
	}
	codeChange struct {
		account  common.Address
		prevCode []byte
	}
)

func (ch createObjectChange) revert(s *IntraBlockState) {
	delete(s.accounts, ch.account)
}

func (ch balanceChange) revert(s *IntraBlockState) {
	if acc, ok := s.accounts[ch.account]; ok {
		acc.Balance = ch.prev
	}
}

func (ch nonceChange) revert(s *IntraBlockState) {
	if acc, ok := s.accounts[ch.account]; ok {
		acc.Nonce = ch.prev
	}
}

func (ch codeChange) revert(s *IntraBlockState) {
	if acc, ok := s.accounts[ch.account]; ok {
		acc.Code = ch.prevCode
	}
}
