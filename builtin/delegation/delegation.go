// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package delegation keeps the pool capital delegated to collator candidates,
// the unbonding queue and the forced unwind used to restore pool liquidity.
package delegation

import (
	"math/big"
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/stakecover/builtin/bank"
	"github.com/vechain/stakecover/builtin/params"
	"github.com/vechain/stakecover/builtin/roles"
	"github.com/vechain/stakecover/builtin/solidity"
	"github.com/vechain/stakecover/log"
	"github.com/vechain/stakecover/thor"
)

var logger = log.WithContext("pkg", "delegation")

func SetLogger(l log.Logger) {
	logger = l
}

// Pool is the view of the cover pool the ledger guards its operations with.
type Pool interface {
	Era() (uint32, error)
	Spendable() (*big.Int, error)
	DepositTotal() (*big.Int, error)
	OwedTotal() (*big.Int, error)
	DelegatorNotPaid() (thor.Address, error)
	MemberNotPaid() (thor.Address, error)
	UnpaidDecrease() (*big.Int, error)
}

// Deps are the collaborators of the ledger.
type Deps struct {
	Params      *params.Params
	Bank        bank.Bank
	Auth        roles.Authorizer
	Pool        Pool
	PoolAddress thor.Address
}

// Ledger is the delegation ledger. Delegated amounts are held by the ledger account until unbonded.
type Ledger struct {
	account thor.Address
	deps    Deps
	storage *storage
}

// New create a new instance, sctx is bound to the ledger account.
func New(sctx *solidity.Context, deps Deps) *Ledger {
	return &Ledger{
		account: sctx.Address(),
		deps:    deps,
		storage: newStorage(sctx),
	}
}

// StakedTotal returns the sum of the delegated amounts.
func (l *Ledger) StakedTotal() (*big.Int, error) {
	return l.storage.stakedTotal.Get()
}

// Delegation returns the amount delegated to candidate.
func (l *Ledger) Delegation(candidate thor.Address) (*big.Int, error) {
	return l.storage.amount(candidate)
}

// Delegations returns every entry in insertion order.
func (l *Ledger) Delegations() ([]Entry, error) {
	return l.storage.entries()
}

// Requests returns the queued unbonding requests.
func (l *Ledger) Requests() ([]*Request, error) {
	return l.storage.pendingRequests()
}

// LastForcedEra returns the era of the last forced unwind, false if never forced.
func (l *Ledger) LastForcedEra() (uint32, bool, error) {
	forced, err := l.storage.forced.Get()
	if err != nil {
		return 0, false, err
	}
	if !forced {
		return 0, false, nil
	}
	era, err := l.storage.lastForcedEra.Get()
	return era, true, err
}

// checkManager applies the guards shared by manual staking operations.
func (l *Ledger) checkManager(caller, candidate thor.Address) error {
	if err := roles.Require(l.deps.Auth, roles.StakingManager, caller); err != nil {
		return err
	}
	if candidate.IsZero() {
		return errZeroAddress
	}
	return l.checkMarkers()
}

func (l *Ledger) checkMarkers() error {
	delegator, err := l.deps.Pool.DelegatorNotPaid()
	if err != nil {
		return err
	}
	if !delegator.IsZero() {
		return errDelegatorNotPaid
	}
	member, err := l.deps.Pool.MemberNotPaid()
	if err != nil {
		return err
	}
	if !member.IsZero() {
		return errMemberNotPaid
	}
	return nil
}

func (l *Ledger) checkMaxStaked(amount *big.Int) error {
	percent, err := l.deps.Params.Get(thor.KeyMaxPercentStaked)
	if err != nil {
		return err
	}
	deposits, err := l.deps.Pool.DepositTotal()
	if err != nil {
		return err
	}
	staked, err := l.storage.stakedTotal.Get()
	if err != nil {
		return err
	}
	limit := new(big.Int).Mul(deposits, percent)
	limit.Quo(limit, big.NewInt(100))
	if staked.Add(staked, amount).Cmp(limit) > 0 {
		return errExceedsMaxStaked
	}
	return nil
}

// Delegate locks amount of the pool balance with candidate.
func (l *Ledger) Delegate(caller, candidate thor.Address, amount *big.Int) error {
	if err := l.checkManager(caller, candidate); err != nil {
		return err
	}
	if amount.Sign() <= 0 {
		return errZeroAmount
	}
	return l.bond(candidate, amount)
}

// BondMore increases an existing delegation.
func (l *Ledger) BondMore(caller, candidate thor.Address, amount *big.Int) error {
	if err := l.checkManager(caller, candidate); err != nil {
		return err
	}
	if amount.Sign() <= 0 {
		return errZeroAmount
	}
	current, err := l.storage.amount(candidate)
	if err != nil {
		return err
	}
	if current.Sign() == 0 {
		return errNoSuchDelegation
	}
	return l.bond(candidate, amount)
}

func (l *Ledger) bond(candidate thor.Address, amount *big.Int) error {
	if err := l.checkMaxStaked(amount); err != nil {
		return err
	}
	if err := bank.Transfer(l.deps.Bank, l.deps.PoolAddress, l.account, amount); err != nil {
		return err
	}
	current, err := l.storage.amount(candidate)
	if err != nil {
		return err
	}
	if err := l.storage.setAmount(candidate, current.Add(current, amount)); err != nil {
		return err
	}
	if err := l.storage.stakedTotal.Add(amount); err != nil {
		return errors.Wrap(err, "failed to add staked total")
	}
	logger.Debug("delegated", "candidate", candidate, "amount", amount, "delegation", current)
	return nil
}

// ScheduleBondLess lowers a delegation now and queues the unbonding of amount.
func (l *Ledger) ScheduleBondLess(caller, candidate thor.Address, amount *big.Int) (*Request, error) {
	if err := l.checkManager(caller, candidate); err != nil {
		return nil, err
	}
	current, err := l.storage.amount(candidate)
	if err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 || amount.Cmp(current) > 0 {
		return nil, errInvalidAmount
	}
	return l.unbond(candidate, amount, false, false)
}

// ScheduleRevoke removes a delegation and queues the unbonding of its whole amount.
func (l *Ledger) ScheduleRevoke(caller, candidate thor.Address) (*Request, error) {
	if err := roles.Require(l.deps.Auth, roles.StakingManager, caller); err != nil {
		return nil, err
	}
	current, err := l.storage.amount(candidate)
	if err != nil {
		return nil, err
	}
	if current.Sign() == 0 {
		return nil, errNoSuchDelegation
	}
	return l.unbond(candidate, current, true, false)
}

func (l *Ledger) unbond(candidate thor.Address, amount *big.Int, revoke, forced bool) (*Request, error) {
	current, err := l.storage.amount(candidate)
	if err != nil {
		return nil, err
	}
	if err := l.storage.setAmount(candidate, new(big.Int).Sub(current, amount)); err != nil {
		return nil, err
	}
	if err := l.storage.stakedTotal.Sub(amount); err != nil {
		return nil, errors.Wrap(err, "failed to sub staked total")
	}

	era, err := l.deps.Pool.Era()
	if err != nil {
		return nil, err
	}
	delay, err := l.deps.Params.Uint32(thor.KeyUnbondingDelay)
	if err != nil {
		return nil, err
	}
	req, err := l.storage.pushRequest(&requestBody{
		Candidate:     candidate,
		Amount:        new(big.Int).Set(amount),
		EraExecutable: saturatingAdd(era, delay),
		Revoke:        revoke,
		Forced:        forced,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("unbonding scheduled", "candidate", candidate, "amount", amount, "eraExecutable", req.EraExecutable, "forced", forced)
	return req, nil
}

// ForceScheduleRevoke revokes the smallest delegations until the unbonding amount covers the
// liquidity the pool lacks to settle its marked debts.
func (l *Ledger) ForceScheduleRevoke() ([]*Request, error) {
	delegator, err := l.deps.Pool.DelegatorNotPaid()
	if err != nil {
		return nil, err
	}
	member, err := l.deps.Pool.MemberNotPaid()
	if err != nil {
		return nil, err
	}
	if delegator.IsZero() && member.IsZero() {
		return nil, errForbidden
	}

	required, err := l.deps.Pool.OwedTotal()
	if err != nil {
		return nil, err
	}
	if !member.IsZero() {
		decrease, err := l.deps.Pool.UnpaidDecrease()
		if err != nil {
			return nil, err
		}
		required.Add(required, decrease)
	}
	if required.Sign() == 0 {
		return nil, errForbidden
	}

	staked, err := l.storage.stakedTotal.Get()
	if err != nil {
		return nil, err
	}
	if staked.Sign() == 0 {
		return nil, errNothingToUnwind
	}

	era, err := l.deps.Pool.Era()
	if err != nil {
		return nil, err
	}
	last, forced, err := l.LastForcedEra()
	if err != nil {
		return nil, err
	}
	cooldown, err := l.deps.Params.Uint32(thor.KeyErasBetweenForcedUndelegation)
	if err != nil {
		return nil, err
	}
	if forced && (era < last || era-last <= cooldown) {
		return nil, errTooFrequent
	}

	spendable, err := l.deps.Pool.Spendable()
	if err != nil {
		return nil, err
	}
	deficit := new(big.Int).Sub(required, spendable)

	entries, err := l.storage.entries()
	if err != nil {
		return nil, err
	}
	// ascending by amount, ties keep insertion order
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return a.Amount.Cmp(b.Amount)
	})

	var (
		requests []*Request
		unwound  = new(big.Int)
	)
	for _, e := range entries {
		req, err := l.unbond(e.Candidate, e.Amount, true, true)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
		unwound.Add(unwound, e.Amount)
		if unwound.Cmp(deficit) >= 0 {
			break
		}
	}

	if err := l.storage.lastForcedEra.Set(era); err != nil {
		return nil, err
	}
	if err := l.storage.forced.Set(true); err != nil {
		return nil, err
	}
	logger.Info("forced unwind", "era", era, "required", required, "spendable", spendable,
		"revoked", len(requests), "unwound", unwound)
	return requests, nil
}

// ExecuteDelegationRequests returns the due unbonded amounts to the pool.
func (l *Ledger) ExecuteDelegationRequests() ([]*Request, error) {
	era, err := l.deps.Pool.Era()
	if err != nil {
		return nil, err
	}
	pending, err := l.storage.pendingRequests()
	if err != nil {
		return nil, err
	}

	var executed []*Request
	for _, req := range pending {
		if req.EraExecutable > era {
			continue
		}
		if err := bank.Transfer(l.deps.Bank, l.account, l.deps.PoolAddress, req.Amount); err != nil {
			return nil, err
		}
		if err := l.storage.removeRequest(req.ID); err != nil {
			return nil, err
		}
		executed = append(executed, req)
	}
	if len(executed) > 0 {
		logger.Debug("unbonding executed", "era", era, "count", len(executed))
	}
	return executed, nil
}

func saturatingAdd(a, b uint32) uint32 {
	if sum := a + b; sum >= a {
		return sum
	}
	return ^uint32(0)
}
