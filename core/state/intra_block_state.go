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

// Package state provides the in-memory world state of the dev chain.
package state

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var _ AccountReader = (*IntraBlockState)(nil) // compile-time interface check

type revision struct {
	id           int
	journalIndex int
}

// IntraBlockState is the world state of the node. Every mutation is journaled
// so that Snapshot/RevertToSnapshot can undo the effects of a single
// transaction or of a whole block.
//
// Accounts not present locally are pulled through the optional AccountLoader
// on first access and kept from then on.
type IntraBlockState struct {
	mu sync.Mutex

	accounts map[common.Address]*Account
	loader   AccountLoader

	journal        *journal
	validRevisions []revision
	nextRevisionID int
}

func New(loader AccountLoader) *IntraBlockState {
	return &IntraBlockState{
		accounts: map[common.Address]*Account{},
		loader:   loader,
		journal:  newJournal(),
	}
}

// getAccount returns the live account record or nil. Caller holds sdb.mu.
func (sdb *IntraBlockState) getAccount(addr common.Address) (*Account, error) {
	if acc, ok := sdb.accounts[addr]; ok {
		return acc, nil
	}
	if sdb.loader == nil {
		return nil, nil
	}
	acc, err := sdb.loader.LoadAccount(addr)
	if err != nil {
		return nil, fmt.Errorf("loading account %x: %w", addr, err)
	}
	if acc == nil {
		return nil, nil
	}
	acc = acc.copy()
	sdb.accounts[addr] = acc
	return acc, nil
}

// getOrCreate returns the live account record, creating an empty one if needed.
func (sdb *IntraBlockState) getOrCreate(addr common.Address) (*Account, error) {
	acc, err := sdb.getAccount(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		acc = &Account{}
		sdb.accounts[addr] = acc
		sdb.journal.append(createObjectChange{account: addr})
	}
	return acc, nil
}

func (sdb *IntraBlockState) Exist(addr common.Address) (bool, error) {
	sdb.mu.Lock()
	defer sdb.mu.Unlock()
	acc, err := sdb.getAccount(addr)
	return acc != nil, err
}

func (sdb *IntraBlockState) GetNonce(addr common.Address) (uint64, error) {
	sdb.mu.Lock()
	defer sdb.mu.Unlock()
	acc, err := sdb.getAccount(addr)
	if err != nil || acc == nil {
		return 0, err
	}
	return acc.Nonce, nil
}

// GetBalance returns a copy of the balance of addr.
func (sdb *IntraBlockState) GetBalance(addr common.Address) (*uint256.Int, error) {
	sdb.mu.Lock()
	defer sdb.mu.Unlock()
	acc, err := sdb.getAccount(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return new(uint256.Int), nil
	}
	return acc.Balance.Clone(), nil
}

func (sdb *IntraBlockState) GetCode(addr common.Address) ([]byte, error) {
	sdb.mu.Lock()
	defer sdb.mu.Unlock()
	acc, err := sdb.getAccount(addr)
	if err != nil || acc == nil {
		return nil, err
	}
	return common.CopyBytes(acc.Code), nil
}

// NonceOf implements AccountReader.
func (sdb *IntraBlockState) NonceOf(addr common.Address) (uint64, error) {
	return sdb.GetNonce(addr)
}

// BalanceOf implements AccountReader.
func (sdb *IntraBlockState) BalanceOf(addr common.Address) (*uint256.Int, error) {
	return sdb.GetBalance(addr)
}

func (sdb *IntraBlockState) SetNonce(addr common.Address, nonce uint64) error {
	sdb.mu.Lock()
	defer sdb.mu.Unlock()
	acc, err := sdb.getOrCreate(addr)
	if err != nil {
		return err
	}
	sdb.journal.append(nonceChange{account: addr, prev: acc.Nonce})
	acc.Nonce = nonce
	return nil
}

func (sdb *IntraBlockState) SetBalance(addr common.Address, amount *uint256.Int) error {
	sdb.mu.Lock()
	defer sdb.mu.Unlock()
	acc, err := sdb.getOrCreate(addr)
	if err != nil {
		return err
	}
	sdb.journal.append(balanceChange{account: addr, prev: acc.Balance})
	acc.Balance.Set(amount)
	return nil
}

func (sdb *IntraBlockState) AddBalance(addr common.Address, amount *uint256.Int) error {
	sdb.mu.Lock()
	defer sdb.mu.Unlock()
	acc, err := sdb.getOrCreate(addr)
	if err != nil {
		return err
	}
	sdb.journal.append(balanceChange{account: addr, prev: acc.Balance})
	acc.Balance.Add(&acc.Balance, amount)
	return nil
}

// SubBalance fails without touching the state if the balance is too low.
func (sdb *IntraBlockState) SubBalance(addr common.Address, amount *uint256.Int) error {
	sdb.mu.Lock()
	defer sdb.mu.Unlock()
	acc, err := sdb.getOrCreate(addr)
	if err != nil {
		return err
	}
	if acc.Balance.Lt(amount) {
		return fmt.Errorf("balance of %x is %d, need %d", addr, &acc.Balance, amount)
	}
	sdb.journal.append(balanceChange{account: addr, prev: acc.Balance})
	acc.Balance.Sub(&acc.Balance, amount)
	return nil
}

func (sdb *IntraBlockState) SetCode(addr common.Address, code []byte) error {
	sdb.mu.Lock()
	defer sdb.mu.Unlock()
	acc, err := sdb.getOrCreate(addr)
	if err != nil {
		return err
	}
	sdb.journal.append(codeChange{account: addr, prevCode: acc.Code})
	acc.Code = common.CopyBytes(code)
	return nil
}

// Snapshot returns an identifier for the current revision of the state.
func (sdb *IntraBlockState) Snapshot() int {
	sdb.mu.Lock()
	defer sdb.mu.Unlock()
	id := sdb.nextRevisionID
	sdb.nextRevisionID++
	sdb.validRevisions = append(sdb.validRevisions, revision{id, sdb.journal.length()})
	return id
}

// RevertToSnapshot reverts all state changes made since the given revision.
func (sdb *IntraBlockState) RevertToSnapshot(revid int) {
	sdb.mu.Lock()
	defer sdb.mu.Unlock()
	// Find the snapshot in the stack of valid snapshots.
	idx := sort.Search(len(sdb.validRevisions), func(i int) bool {
		return sdb.validRevisions[i].id >= revid
	})
	if idx == len(sdb.validRevisions) || sdb.validRevisions[idx].id != revid {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	snapshot := sdb.validRevisions[idx].journalIndex

	sdb.journal.revert(sdb, snapshot)
	sdb.validRevisions = sdb.validRevisions[:idx]
}

// FinalizeTx drops the journal once the changes are committed for good, e.g.
// after a block was appended to the chain.
func (sdb *IntraBlockState) FinalizeTx() {
	sdb.mu.Lock()
	defer sdb.mu.Unlock()
	sdb.journal = newJournal()
	sdb.validRevisions = sdb.validRevisions[:0]
}

// Copy creates a deep, independent copy of the state without journal.
func (sdb *IntraBlockState) Copy() *IntraBlockState {
	sdb.mu.Lock()
	defer sdb.mu.Unlock()
	cpy := New(sdb.loader)
	for addr, acc := range sdb.accounts {
		cpy.accounts[addr] = acc.copy()
	}
	return cpy
}

// Restore replaces the content of the state with a copy of other.
func (sdb *IntraBlockState) Restore(other *IntraBlockState) {
	other.mu.Lock()
	accounts := make(map[common.Address]*Account, len(other.accounts))
	for addr, acc := range other.accounts {
		accounts[addr] = acc.copy()
	}
	other.mu.Unlock()

	sdb.mu.Lock()
	defer sdb.mu.Unlock()
	sdb.accounts = accounts
	sdb.journal = newJournal()
	sdb.validRevisions = sdb.validRevisions[:0]
}

// Reset drops every local account and re-targets the loader.
func (sdb *IntraBlockState) Reset(loader AccountLoader) {
	sdb.mu.Lock()
	defer sdb.mu.Unlock()
	sdb.accounts = map[common.Address]*Account{}
	sdb.loader = loader
	sdb.journal = newJournal()
	sdb.validRevisions = sdb.validRevisions[:0]
}
