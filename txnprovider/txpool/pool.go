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

// Package txpool keeps the transactions that were submitted to the node and
// are not mined yet. Per sender, transactions with nonces contiguous to the
// confirmed account nonce are pending, the ones behind a nonce gap are queued.
package txpool

import (
	"errors"
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/holiman/uint256"
	"github.com/ledgerwatch/log/v3"

	"github.com/erigontech/devchain/core/state"
	"github.com/erigontech/devchain/core/types"
	"github.com/erigontech/devchain/txnprovider/txpool/txpoolcfg"
)

// Pool is the interface the block producer and the RPC layer depend on.
type Pool interface {
	Add(txn *types.Transaction) (common.Hash, error)
	Remove(hash common.Hash, reason txpoolcfg.DiscardReason) (bool, error)
	OnNewBlock(minedTxns, evictedTxns []common.Hash) error
	Get(hash common.Hash) (*types.Transaction, bool)
	Pending() [][]PendingTxn
	CountContent() (pending, queued int)
	MinimumGasPrice() *uint256.Int
}

var _ Pool = (*TxPool)(nil) // compile-time interface check

// PendingTxn is a pending transaction together with its pool insertion order.
type PendingTxn struct {
	Txn *types.Transaction
	Seq uint64
}

// Content is the pool content grouped by sender, each list ordered by nonce.
type Content struct {
	Pending map[common.Address][]*types.Transaction
	Queued  map[common.Address][]*types.Transaction
}

// TxPool - holds all pool-related data structures and lock-based tiny methods.
// Account nonces and balances are read through the ledger, the pool never
// caches them, so every decision is made against the current state.
type TxPool struct {
	lock sync.Mutex

	cfg               txpoolcfg.Config
	ledger            state.AccountReader
	all               *BySenderAndNonce                                    // sender => (sorted map of txn nonce => *metaTxn)
	byHash            map[common.Hash]*metaTxn                             // txn_hash => txn
	discardReasonsLRU *simplelru.LRU[common.Hash, txpoolcfg.DiscardReason] // txn_hash => discard_reason : non-persisted
	signers           mapset.Set[common.Address]
	impersonated      mapset.Set[common.Address]
	minGasPrice       uint256.Int
	blockGasLimit     uint64
	automine          bool
	nextSeq           uint64
	logger            log.Logger
}

func New(cfg txpoolcfg.Config, ledger state.AccountReader, logger log.Logger) (*TxPool, error) {
	discardHistory, err := simplelru.NewLRU[common.Hash, txpoolcfg.DiscardReason](cfg.DiscardReasonsCacheSize, nil)
	if err != nil {
		return nil, err
	}
	p := &TxPool{
		cfg:               cfg,
		ledger:            ledger,
		all:               NewBySenderAndNonce(),
		byHash:            map[common.Hash]*metaTxn{},
		discardReasonsLRU: discardHistory,
		signers:           mapset.NewThreadUnsafeSet[common.Address](),
		impersonated:      mapset.NewThreadUnsafeSet[common.Address](),
		blockGasLimit:     cfg.BlockGasLimit,
		logger:            logger,
	}
	p.minGasPrice.SetUint64(cfg.MinGasPrice)
	return p, nil
}

// Add admits txn and returns its hash, or a *DiscardError saying why it was
// refused. Errors of the ledger are returned as is.
func (p *TxPool) Add(txn *types.Transaction) (common.Hash, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	mt := newMetaTxn(txn, p.nextSeq)
	subPool, found, err := p.validateTxn(mt)
	if err != nil {
		var discardErr *DiscardError
		if errors.As(err, &discardErr) {
			p.discardReasonsLRU.Add(txn.Hash(), discardErr.Reason)
			discardedCounter.WithLabelValues(discardErr.Reason.String()).Inc()
			p.logger.Debug("[txpool] rejected", "hash", txn.Hash(), "sender", mt.sender, "nonce", mt.nonce, "reason", discardErr.Reason)
		}
		return common.Hash{}, err
	}

	if found != nil {
		p.logger.Info("[txpool] Transaction is to be replaced",
			"account", mt.sender,
			"oldTxHash", found.Txn.Hash(),
			"newTxHash", txn.Hash(),
			"nonce", mt.nonce,
		)
		p.discardLocked(found, txpoolcfg.ReplacedByHigherTip)
	}

	p.nextSeq++
	mt.currentSubPool = subPool
	p.byHash[txn.Hash()] = mt
	if replaced := p.all.replaceOrInsert(mt); replaced != nil {
		panic("must never happen")
	}
	if subPool == PendingSubPool {
		p.promoteLocked(mt.sender, mt.nonce+1)
	}
	p.recountLocked(mt.sender)
	p.updateGaugesLocked()
	p.logger.Debug("[txpool] added", "hash", txn.Hash(), "sender", mt.sender, "nonce", mt.nonce, "subPool", subPool)
	return txn.Hash(), nil
}

// validateTxn decides where mt goes. found is the transaction it replaces.
func (p *TxPool) validateTxn(mt *metaTxn) (subPool SubPoolType, found *metaTxn, err error) {
	txn := mt.Txn
	if !p.signers.Contains(mt.sender) && !p.impersonated.Contains(mt.sender) {
		return 0, nil, &DiscardError{txpoolcfg.UnknownAccount, fmt.Sprintf("Unknown account %s", mt.sender)}
	}
	if txn.IsContractCreation() && len(txn.GetData()) == 0 {
		return 0, nil, &DiscardError{txpoolcfg.InvalidCreateTxn, "contract creation without any data provided"}
	}

	confirmed, err := p.ledger.NonceOf(mt.sender)
	if err != nil {
		return 0, nil, fmt.Errorf("reading nonce of %s: %w", mt.sender, err)
	}
	pendingCount := uint64(p.all.pendingCount(mt.sender))
	nextPending := confirmed + pendingCount

	switch {
	case mt.nonce < confirmed:
		if pendingCount == 0 {
			return 0, nil, &DiscardError{txpoolcfg.NonceTooLow,
				fmt.Sprintf("Nonce too low. Expected nonce to be %d but got %d.", confirmed, mt.nonce)}
		}
		return 0, nil, &DiscardError{txpoolcfg.NonceTooLow,
			fmt.Sprintf("Nonce too low. Expected nonce to be at least %d but got %d.", confirmed, mt.nonce)}
	case p.all.get(mt.sender, mt.nonce) != nil:
		found = p.all.get(mt.sender, mt.nonce)
		if found.Txn.Hash() == txn.Hash() {
			return 0, nil, &DiscardError{txpoolcfg.AlreadyKnown, fmt.Sprintf("Known transaction: %x", txn.Hash())}
		}
		threshold, overflow := replacementThreshold(found.Txn.GetPrice(), p.cfg.PriceBump)
		if overflow {
			return 0, nil, &DiscardError{txpoolcfg.ReplaceUnderpriced, fmt.Sprintf(
				"Replacement transaction underpriced. The gasPrice %s of the existing transaction with nonce %d leaves no room for a price bump.",
				found.Txn.GetPrice().Dec(), mt.nonce)}
		}
		if txn.GetPrice().Lt(threshold) {
			return 0, nil, &DiscardError{txpoolcfg.ReplaceUnderpriced, fmt.Sprintf(
				"Replacement transaction underpriced. A gasPrice of at least %s is necessary to replace the existing transaction with nonce %d.",
				threshold.Dec(), mt.nonce)}
		}
		subPool = found.currentSubPool
	case mt.nonce == nextPending:
		subPool = PendingSubPool
	default:
		if p.automine {
			return 0, nil, &DiscardError{txpoolcfg.NonceTooHigh, fmt.Sprintf(
				"Nonce too high. Expected nonce to be %d but got %d. Note that transactions can't be queued when automining.",
				nextPending, mt.nonce)}
		}
		subPool = QueuedSubPool
	}

	if txn.GetGasLimit() > p.blockGasLimit {
		return 0, nil, &DiscardError{txpoolcfg.GasLimitTooHigh, fmt.Sprintf(
			"Transaction gas limit is %d and exceeds block gas limit of %d", txn.GetGasLimit(), p.blockGasLimit)}
	}
	if p.automine && txn.GetPrice().Lt(&p.minGasPrice) {
		return 0, nil, &DiscardError{txpoolcfg.FeeTooLow, fmt.Sprintf(
			"Transaction gas price is %s, which is below the minimum of %s", txn.GetPrice().Dec(), p.minGasPrice.Dec())}
	}
	balance, err := p.ledger.BalanceOf(mt.sender)
	if err != nil {
		return 0, nil, fmt.Errorf("reading balance of %s: %w", mt.sender, err)
	}
	cost, overflow := txn.Cost()
	if overflow {
		return 0, nil, &DiscardError{txpoolcfg.InsufficientFunds, fmt.Sprintf(
			"sender doesn't have enough funds to send tx. The max upfront cost overflows 256 bits and the sender's account only has: %s",
			balance.Dec())}
	}
	if balance.Lt(cost) {
		return 0, nil, &DiscardError{txpoolcfg.InsufficientFunds, fmt.Sprintf(
			"sender doesn't have enough funds to send tx. The max upfront cost is: %s and the sender's account only has: %s",
			cost.Dec(), balance.Dec())}
	}
	return subPool, found, nil
}

// replacementThreshold is ceil(price * (100+bump) / 100). It reports overflow
// when the threshold does not fit in 256 bits.
func replacementThreshold(price *uint256.Int, bump uint64) (*uint256.Int, bool) {
	factor, hundred := uint256.NewInt(100+bump), uint256.NewInt(100)
	threshold, overflow := new(uint256.Int).MulDivOverflow(price, factor, hundred)
	if overflow {
		return threshold, true
	}
	if !new(uint256.Int).MulMod(price, factor, hundred).IsZero() {
		_, overflow = threshold.AddOverflow(threshold, uint256.NewInt(1))
	}
	return threshold, overflow
}

// promoteLocked moves queued transactions of sender that became contiguous
// with the pending run, starting at nonce next.
func (p *TxPool) promoteLocked(sender common.Address, next uint64) {
	promoted := 0
	p.all.ascend(sender, func(mt *metaTxn) bool {
		if mt.nonce < next {
			return true
		}
		if mt.nonce != next || mt.currentSubPool != QueuedSubPool {
			return false
		}
		mt.currentSubPool = PendingSubPool
		next++
		promoted++
		return true
	})
	if promoted > 0 {
		p.logger.Debug("[txpool] promoted", "sender", sender, "count", promoted)
	}
}

func (p *TxPool) recountLocked(sender common.Address) {
	n := 0
	p.all.ascend(sender, func(mt *metaTxn) bool {
		if mt.currentSubPool == PendingSubPool {
			n++
		}
		return true
	})
	p.all.setPendingCount(sender, n)
}

// onSenderChange re-derives the sub-pools of sender against its confirmed
// nonce: transactions below it are dropped, the contiguous run starting at it
// is pending and everything behind the first gap is queued.
func (p *TxPool) onSenderChange(sender common.Address) error {
	confirmed, err := p.ledger.NonceOf(sender)
	if err != nil {
		return fmt.Errorf("reading nonce of %s: %w", sender, err)
	}
	var stale []*metaTxn
	expected := confirmed
	p.all.ascend(sender, func(mt *metaTxn) bool {
		switch {
		case mt.nonce < confirmed:
			stale = append(stale, mt)
		case mt.nonce == expected:
			mt.currentSubPool = PendingSubPool
			expected++
		default:
			mt.currentSubPool = QueuedSubPool
		}
		return true
	})
	for _, mt := range stale {
		p.discardLocked(mt, txpoolcfg.NonceTooLow)
	}
	p.all.setPendingCount(sender, int(expected-confirmed))
	return nil
}

// Remove drops the transaction with the given hash and re-derives the
// remaining transactions of its sender. It reports whether the hash was known.
func (p *TxPool) Remove(hash common.Hash, reason txpoolcfg.DiscardReason) (bool, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	mt, ok := p.byHash[hash]
	if !ok {
		return false, nil
	}
	p.discardLocked(mt, reason)
	err := p.onSenderChange(mt.sender)
	p.updateGaugesLocked()
	return true, err
}

// OnNewBlock drops the transactions included in a freshly committed block
// and the ones the block producer found non-executable, then re-derives the
// sub-pools of every affected sender.
func (p *TxPool) OnNewBlock(minedTxns, evictedTxns []common.Hash) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	defer p.updateGaugesLocked()

	senders := mapset.NewThreadUnsafeSet[common.Address]()
	drop := func(hashes []common.Hash, reason txpoolcfg.DiscardReason) {
		for _, hash := range hashes {
			if mt, ok := p.byHash[hash]; ok {
				p.discardLocked(mt, reason)
				senders.Add(mt.sender)
			}
		}
	}
	drop(minedTxns, txpoolcfg.Mined)
	drop(evictedTxns, txpoolcfg.NonExecutable)

	for _, sender := range senders.ToSlice() {
		if err := p.onSenderChange(sender); err != nil {
			return err
		}
	}
	return nil
}

// ResyncSenders re-derives the sub-pools of senders whose ledger account was
// changed outside of block production, e.g. by hardhat_setNonce.
func (p *TxPool) ResyncSenders(senders ...common.Address) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	defer p.updateGaugesLocked()
	for _, sender := range senders {
		if err := p.onSenderChange(sender); err != nil {
			return err
		}
	}
	return nil
}

// discardLocked drops transaction from all sub-structures.
// Important: don't call it while iterating by all
func (p *TxPool) discardLocked(mt *metaTxn, reason txpoolcfg.DiscardReason) {
	hash := mt.Txn.Hash()
	delete(p.byHash, hash)
	p.all.delete(mt)
	p.discardReasonsLRU.Add(hash, reason)
	discardedCounter.WithLabelValues(reason.String()).Inc()
	p.logger.Debug("[txpool] discarded", "hash", hash, "sender", mt.sender, "nonce", mt.nonce, "reason", reason)
}

func (p *TxPool) updateGaugesLocked() {
	var pending int
	for _, n := range p.all.senderPendingCount {
		pending += n
	}
	pendingSubCounter.Set(float64(pending))
	queuedSubCounter.Set(float64(p.all.len() - pending))
}

func (p *TxPool) Get(hash common.Hash) (*types.Transaction, bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	mt, ok := p.byHash[hash]
	if !ok {
		return nil, false
	}
	return mt.Txn, true
}

// SubPool tells whether hash is pending or queued.
func (p *TxPool) SubPool(hash common.Hash) (SubPoolType, bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	mt, ok := p.byHash[hash]
	if !ok {
		return 0, false
	}
	return mt.currentSubPool, true
}

// Pending returns, per sender, the pending transactions in nonce order.
func (p *TxPool) Pending() [][]PendingTxn {
	p.lock.Lock()
	defer p.lock.Unlock()
	var res [][]PendingTxn
	var cur []PendingTxn
	var curSender common.Address
	p.all.ascendAll(func(mt *metaTxn) bool {
		if mt.currentSubPool != PendingSubPool {
			return true
		}
		if len(cur) > 0 && curSender != mt.sender {
			res = append(res, cur)
			cur = nil
		}
		curSender = mt.sender
		cur = append(cur, PendingTxn{Txn: mt.Txn, Seq: mt.seq})
		return true
	})
	if len(cur) > 0 {
		res = append(res, cur)
	}
	return res
}

func (p *TxPool) Content() Content {
	p.lock.Lock()
	defer p.lock.Unlock()
	c := Content{
		Pending: map[common.Address][]*types.Transaction{},
		Queued:  map[common.Address][]*types.Transaction{},
	}
	p.all.ascendAll(func(mt *metaTxn) bool {
		switch mt.currentSubPool {
		case PendingSubPool:
			c.Pending[mt.sender] = append(c.Pending[mt.sender], mt.Txn)
		case QueuedSubPool:
			c.Queued[mt.sender] = append(c.Queued[mt.sender], mt.Txn)
		}
		return true
	})
	return c
}

func (p *TxPool) CountContent() (pending, queued int) {
	p.lock.Lock()
	defer p.lock.Unlock()
	for _, n := range p.all.senderPendingCount {
		pending += n
	}
	return pending, p.all.len() - pending
}

// NextNonce is the nonce the next pending transaction of sender must carry.
func (p *TxPool) NextNonce(sender common.Address) (uint64, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	confirmed, err := p.ledger.NonceOf(sender)
	if err != nil {
		return 0, err
	}
	return confirmed + uint64(p.all.pendingCount(sender)), nil
}

// DiscardReason tells why hash was refused or removed, if it is still remembered.
func (p *TxPool) DiscardReason(hash common.Hash) (txpoolcfg.DiscardReason, bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.discardReasonsLRU.Get(hash)
}

// SetMinimumGasPrice doesn't evict anything, it only affects future admission
// and selection.
func (p *TxPool) SetMinimumGasPrice(price *uint256.Int) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.minGasPrice.Set(price)
}

func (p *TxPool) MinimumGasPrice() *uint256.Int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.minGasPrice.Clone()
}

func (p *TxPool) SetAutomine(enabled bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.automine = enabled
}

func (p *TxPool) Automine() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.automine
}

// SetBlockGasLimit lowers or raises the admission gas bound. Transactions that
// no longer fit into a block are dropped and their hashes returned.
func (p *TxPool) SetBlockGasLimit(limit uint64) ([]common.Hash, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.blockGasLimit = limit

	var dropped []*metaTxn
	p.all.ascendAll(func(mt *metaTxn) bool {
		if mt.Txn.GetGasLimit() > limit {
			dropped = append(dropped, mt)
		}
		return true
	})
	hashes := make([]common.Hash, 0, len(dropped))
	senders := mapset.NewThreadUnsafeSet[common.Address]()
	for _, mt := range dropped {
		p.discardLocked(mt, txpoolcfg.GasLimitTooHigh)
		hashes = append(hashes, mt.Txn.Hash())
		senders.Add(mt.sender)
	}
	for _, sender := range senders.ToSlice() {
		if err := p.onSenderChange(sender); err != nil {
			return hashes, err
		}
	}
	p.updateGaugesLocked()
	return hashes, nil
}

func (p *TxPool) BlockGasLimit() uint64 {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.blockGasLimit
}

// AddSigner registers an account the node holds keys for.
func (p *TxPool) AddSigner(addr common.Address) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.signers.Add(addr)
}

func (p *TxPool) Signers() []common.Address {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.signers.ToSlice()
}

func (p *TxPool) Impersonate(addr common.Address) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.impersonated.Add(addr)
}

// StopImpersonating reports whether addr was impersonated.
func (p *TxPool) StopImpersonating(addr common.Address) bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	if !p.impersonated.Contains(addr) {
		return false
	}
	p.impersonated.Remove(addr)
	return true
}

// Snapshot is a frozen copy of the pool content.
type Snapshot struct {
	txns    []metaTxn
	nextSeq uint64
}

func (p *TxPool) Snapshot() *Snapshot {
	p.lock.Lock()
	defer p.lock.Unlock()
	snap := &Snapshot{txns: make([]metaTxn, 0, p.all.len()), nextSeq: p.nextSeq}
	p.all.ascendAll(func(mt *metaTxn) bool {
		snap.txns = append(snap.txns, *mt)
		return true
	})
	return snap
}

// Restore replaces the pool content with snap. Transactions added after the
// snapshot was taken are forgotten.
func (p *TxPool) Restore(snap *Snapshot) {
	p.lock.Lock()
	defer p.lock.Unlock()
	kept := make(map[common.Hash]struct{}, len(snap.txns))
	for i := range snap.txns {
		kept[snap.txns[i].Txn.Hash()] = struct{}{}
	}
	for hash := range p.byHash {
		if _, ok := kept[hash]; !ok {
			p.discardReasonsLRU.Add(hash, txpoolcfg.Reverted)
		}
	}
	p.all = NewBySenderAndNonce()
	p.byHash = map[common.Hash]*metaTxn{}
	pendingCounts := map[common.Address]int{}
	for i := range snap.txns {
		mt := snap.txns[i]
		p.all.replaceOrInsert(&mt)
		p.byHash[mt.Txn.Hash()] = &mt
		if mt.currentSubPool == PendingSubPool {
			pendingCounts[mt.sender]++
		}
	}
	for sender, n := range pendingCounts {
		p.all.setPendingCount(sender, n)
	}
	p.nextSeq = snap.nextSeq
	p.updateGaugesLocked()
	p.logger.Debug("[txpool] restored snapshot", "txns", len(snap.txns))
}

// Clear drops every transaction.
func (p *TxPool) Clear() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.all = NewBySenderAndNonce()
	p.byHash = map[common.Hash]*metaTxn{}
	p.updateGaugesLocked()
}
