// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakecover/builtin/delegation"
	"github.com/vechain/stakecover/thor"
)

// Delegate locks amount of the pool balance with candidate.
func (p *Pool) Delegate(caller, candidate thor.Address, amount *big.Int) error {
	return p.exec("delegate", func() error {
		if err := p.ledger.Delegate(caller, candidate, amount); err != nil {
			return err
		}
		p.emit(KindDelegated, candidate, amountData{caller, amount})
		return nil
	})
}

// BondMore increases the delegation to candidate.
func (p *Pool) BondMore(caller, candidate thor.Address, amount *big.Int) error {
	return p.exec("bondMore", func() error {
		if err := p.ledger.BondMore(caller, candidate, amount); err != nil {
			return err
		}
		p.emit(KindDelegated, candidate, amountData{caller, amount})
		return nil
	})
}

// ScheduleBondLess lowers the delegation to candidate.
func (p *Pool) ScheduleBondLess(caller, candidate thor.Address, amount *big.Int) (req *delegation.Request, err error) {
	err = p.exec("scheduleBondLess", func() error {
		req, err = p.ledger.ScheduleBondLess(caller, candidate, amount)
		if err != nil {
			return err
		}
		p.emit(KindUnbondingScheduled, candidate, req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ScheduleRevoke removes the delegation to candidate.
func (p *Pool) ScheduleRevoke(caller, candidate thor.Address) (req *delegation.Request, err error) {
	err = p.exec("scheduleRevoke", func() error {
		req, err = p.ledger.ScheduleRevoke(caller, candidate)
		if err != nil {
			return err
		}
		p.emit(KindUnbondingScheduled, candidate, req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ForceScheduleRevoke unwinds delegations to restore the liquidity needed by marked debts.
func (p *Pool) ForceScheduleRevoke() (reqs []*delegation.Request, err error) {
	err = p.exec("forceScheduleRevoke", func() error {
		reqs, err = p.ledger.ForceScheduleRevoke()
		if err != nil {
			return err
		}
		for _, req := range reqs {
			p.emit(KindForcedUnwind, req.Candidate, req)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metricForced().Add(1)
	return reqs, nil
}

// ExecuteDelegationRequests returns the due unbonded amounts to the pool.
func (p *Pool) ExecuteDelegationRequests() (reqs []*delegation.Request, err error) {
	err = p.exec("executeDelegationRequests", func() error {
		reqs, err = p.ledger.ExecuteDelegationRequests()
		if err != nil {
			return err
		}
		for _, req := range reqs {
			p.emit(KindUnbondingExecuted, req.Candidate, req)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// Delegations returns the entries in insertion order.
func (p *Pool) Delegations() (entries []delegation.Entry, err error) {
	err = p.view(func() error {
		entries, err = p.ledger.Delegations()
		return err
	})
	return
}

// Requests returns the queued unbonding requests.
func (p *Pool) Requests() (reqs []*delegation.Request, err error) {
	err = p.view(func() error {
		reqs, err = p.ledger.Requests()
		return err
	})
	return
}

// Delegation returns the amount delegated to candidate.
func (p *Pool) Delegation(candidate thor.Address) (amount *big.Int, err error) {
	err = p.view(func() error {
		amount, err = p.ledger.Delegation(candidate)
		return err
	})
	return
}
