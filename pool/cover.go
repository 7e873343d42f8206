// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakecover/builtin/cover"
	"github.com/vechain/stakecover/builtin/cover/member"
	"github.com/vechain/stakecover/thor"
)

type amountData struct {
	Caller thor.Address `json:"caller"`
	Amount *big.Int     `json:"amount"`
}

// Whitelist allows or forbids manual deposits by addr.
func (p *Pool) Whitelist(caller, addr thor.Address, whitelisted bool) error {
	return p.exec("whitelist", func() error {
		if err := p.cover.Whitelist(caller, addr, whitelisted); err != nil {
			return err
		}
		p.emit(KindWhitelisted, addr, map[string]bool{"whitelisted": whitelisted})
		return nil
	})
}

// Deposit adds amount paid by caller to the deposit of addr.
func (p *Pool) Deposit(caller, addr thor.Address, amount *big.Int) error {
	return p.exec("deposit", func() error {
		if err := p.cover.Deposit(caller, addr, amount); err != nil {
			return err
		}
		p.emit(KindDeposited, addr, amountData{caller, amount})
		return nil
	})
}

// ScheduleDecrease schedules a deposit decrease of addr.
func (p *Pool) ScheduleDecrease(caller, addr thor.Address, amount *big.Int) (d *member.Decrease, err error) {
	err = p.exec("scheduleDecrease", func() error {
		d, err = p.cover.ScheduleDecrease(caller, addr, amount)
		if err != nil {
			return err
		}
		p.emit(KindDecreaseScheduled, addr, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// CancelDecrease drops the pending decrease of addr.
func (p *Pool) CancelDecrease(caller, addr thor.Address) error {
	return p.exec("cancelDecrease", func() error {
		if err := p.cover.CancelDecrease(caller, addr); err != nil {
			return err
		}
		p.emit(KindDecreaseCancelled, addr, map[string]thor.Address{"caller": caller})
		return nil
	})
}

// ExecuteScheduledDecrease pays out the due decrease of addr, deferring it on a liquidity shortfall.
func (p *Pool) ExecuteScheduledDecrease(addr thor.Address) (res *cover.Result, err error) {
	err = p.exec("executeScheduledDecrease", func() error {
		res, err = p.cover.ExecuteScheduledDecrease(addr)
		if err != nil {
			return err
		}
		if res.Status == cover.Deferred {
			p.emit(KindDecreaseDeferred, addr, res)
		} else {
			p.emit(KindDecreaseExecuted, addr, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SetMaxCoveredDelegation schedules a new cap of the covered amount per delegation.
func (p *Pool) SetMaxCoveredDelegation(caller, addr thor.Address, limit *big.Int) (s *member.PendingSettings, err error) {
	err = p.exec("setMaxCoveredDelegation", func() error {
		s, err = p.cover.SetMaxCoveredDelegation(caller, addr, limit)
		if err != nil {
			return err
		}
		p.emit(KindSettingsScheduled, addr, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SetCoverTypes schedules the cover types offered by addr.
func (p *Pool) SetCoverTypes(caller, addr thor.Address, zeroPoints, activeSet bool) (s *member.PendingSettings, err error) {
	err = p.exec("setCoverTypes", func() error {
		s, err = p.cover.SetCoverTypes(caller, addr, zeroPoints, activeSet)
		if err != nil {
			return err
		}
		p.emit(KindSettingsScheduled, addr, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// PayOutCover pays the claims of delegators.
func (p *Pool) PayOutCover(delegators []thor.Address) (payouts []cover.Payout, err error) {
	err = p.exec("payOutCover", func() error {
		payouts, err = p.cover.PayOutCover(delegators)
		if err != nil {
			return err
		}
		for _, po := range payouts {
			switch po.Status {
			case cover.Applied:
				p.emit(KindDelegatorPaid, po.Delegator, po)
			case cover.Deferred:
				p.emit(KindPayoutDeferred, po.Delegator, po)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metricPayoutBatch().Observe(int64(len(payouts)))
	for _, po := range payouts {
		metricPayouts().AddWithLabel(1, map[string]string{"status": po.Status.String()})
	}
	return payouts, nil
}

// InvoiceMembers charges the oracle fee to members not running a reporter.
func (p *Pool) InvoiceMembers() (invoice *cover.Invoice, err error) {
	err = p.exec("invoiceMembers", func() error {
		invoice, err = p.cover.InvoiceMembers()
		if err != nil {
			return err
		}
		p.emit(KindMembersInvoiced, thor.Address{}, invoice)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// WithdrawRewards transfers pool yield to the given address.
func (p *Pool) WithdrawRewards(caller thor.Address, amount *big.Int, to thor.Address) error {
	return p.exec("withdrawRewards", func() error {
		if err := p.cover.WithdrawRewards(caller, amount, to); err != nil {
			return err
		}
		p.emit(KindRewardsWithdrawn, to, amountData{caller, amount})
		return nil
	})
}

// Member returns the state of a cover member.
func (p *Pool) Member(addr thor.Address) (m *member.Member, err error) {
	err = p.view(func() error {
		m, err = p.cover.Member(addr)
		return err
	})
	return
}

// Members returns the joined members in join order.
func (p *Pool) Members() (members []thor.Address, err error) {
	err = p.view(func() error {
		members, err = p.cover.Members()
		return err
	})
	return
}

// Owed returns the claim owed to delegator.
func (p *Pool) Owed(delegator thor.Address) (owed *big.Int, err error) {
	err = p.view(func() error {
		owed, err = p.cover.Owed(delegator)
		return err
	})
	return
}

// ErasCovered returns the delay a decrease scheduled by addr would have now.
func (p *Pool) ErasCovered(addr thor.Address) (eras uint32, err error) {
	err = p.view(func() error {
		eras, err = p.cover.ErasCovered(addr)
		return err
	})
	return
}

// Summary is the pool wide state.
type Summary struct {
	Era              uint32       `json:"era"`
	LastInvoiceEra   uint32       `json:"lastInvoiceEra"`
	Spendable        *big.Int     `json:"spendable"`
	DepositTotal     *big.Int     `json:"depositTotal"`
	OwedTotal        *big.Int     `json:"owedTotal"`
	StakedTotal      *big.Int     `json:"stakedTotal"`
	DelegatorNotPaid thor.Address `json:"delegatorNotPaid"`
	MemberNotPaid    thor.Address `json:"memberNotPaid"`
}

// Summary returns the pool wide state.
func (p *Pool) Summary() (*Summary, error) {
	s := &Summary{}
	err := p.view(func() (err error) {
		if s.Era, err = p.cover.Era(); err != nil {
			return
		}
		if s.LastInvoiceEra, err = p.cover.LastInvoiceEra(); err != nil {
			return
		}
		if s.Spendable, err = p.cover.Spendable(); err != nil {
			return
		}
		if s.DepositTotal, err = p.cover.DepositTotal(); err != nil {
			return
		}
		if s.OwedTotal, err = p.cover.OwedTotal(); err != nil {
			return
		}
		if s.StakedTotal, err = p.ledger.StakedTotal(); err != nil {
			return
		}
		if s.DelegatorNotPaid, err = p.cover.DelegatorNotPaid(); err != nil {
			return
		}
		s.MemberNotPaid, err = p.cover.MemberNotPaid()
		return
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
