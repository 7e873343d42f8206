// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cover

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakecover/builtin/bank"
	"github.com/vechain/stakecover/builtin/cover/member"
	"github.com/vechain/stakecover/builtin/oracle/report"
	"github.com/vechain/stakecover/thor"
)

// PushReport charges the members whose collators are covered by the report.
// A claim total above the per member-era maximum aborts the whole report.
func (c *Cover) PushReport(r *report.Report) error {
	last, err := c.globalStatsService.Era()
	if err != nil {
		return err
	}
	if r.EraID > last {
		if err := c.globalStatsService.SetEra(r.EraID); err != nil {
			return errors.Wrap(err, "failed to set era")
		}
	}

	rate, err := c.deps.Params.Get(thor.KeyStakeUnitCover)
	if err != nil {
		return err
	}
	maxPayout, err := c.deps.Params.Get(thor.KeyMaxEraMemberPayout)
	if err != nil {
		return err
	}

	var charges []Charge
	for _, collator := range r.Collators {
		charge, err := c.applyCollator(r.EraID, &collator, rate, maxPayout)
		if err != nil {
			return err
		}
		if charge != nil {
			charges = append(charges, *charge)
		}
	}
	c.charges = append(c.charges, charges...)
	return nil
}

func (c *Cover) applyCollator(era uint32, collator *report.Collator, rate, maxPayout *big.Int) (*Charge, error) {
	m, err := c.memberService.GetMember(collator.Address)
	if err != nil {
		return nil, err
	}
	if !m.Joined || m.PaidFor(era) {
		return nil, nil
	}

	m.Active = collator.Active
	m.DelegationsTotal = new(big.Int)
	if collator.DelegationsTotal != nil {
		m.DelegationsTotal.Set(collator.DelegationsTotal)
	}
	if m.EffectiveSettings(era) {
		logger.Debug("cover settings effective", "member", collator.Address, "era", era)
	}

	if !m.IsCovered(collator.Points, collator.Active) {
		return nil, c.memberService.SetMember(collator.Address, m)
	}

	claims := make([]member.Claim, 0, len(collator.TopDelegations))
	sum := new(big.Int)
	for _, d := range collator.TopDelegations {
		claim := m.CoveredAmount(d.Amount)
		claim.Mul(claim, rate)
		claim.Quo(claim, thor.Unit)
		claims = append(claims, member.Claim{Delegator: d.Owner, Owed: claim})
		sum.Add(sum, claim)
	}
	if sum.Cmp(maxPayout) > 0 {
		logger.Warn("member era payout exceeds max", "member", collator.Address, "era", era, "sum", sum, "max", maxPayout)
		return nil, errExceedsMax
	}

	charge := &Charge{Member: collator.Address, Era: era, Total: new(big.Int)}
	if m.Deposit.Sign() == 0 {
		// defaulted members accrue nothing until they deposit again
		m.Defaulted = true
		m.Paid = true
		m.LastPaidEra = era
		charge.Defaulted = true
		logger.Info("member defaulted, no cover accrued", "member", collator.Address, "era", era)
		return charge, c.memberService.SetMember(collator.Address, m)
	}

	available := new(big.Int).Set(m.Deposit)
	for _, claim := range claims {
		credited := minBig(claim.Owed, available)
		if credited.Sign() == 0 {
			continue
		}
		if err := c.memberService.AddOwed(claim.Delegator, credited); err != nil {
			return nil, err
		}
		available.Sub(available, credited)
		charge.Total.Add(charge.Total, credited)
		charge.Claims = append(charge.Claims, member.Claim{Delegator: claim.Delegator, Owed: credited})
	}

	m.Deposit = available
	m.Defaulted = charge.Total.Cmp(sum) < 0
	charge.Defaulted = m.Defaulted
	m.Paid = true
	m.LastPaidEra = era
	if err := c.memberService.SetMember(collator.Address, m); err != nil {
		return nil, err
	}
	if err := c.globalStatsService.SubDeposit(charge.Total); err != nil {
		return nil, errors.Wrap(err, "failed to sub deposit total")
	}
	if err := c.globalStatsService.AddOwed(charge.Total); err != nil {
		return nil, errors.Wrap(err, "failed to add owed total")
	}

	logger.Debug("member charged", "member", collator.Address, "era", era, "total", charge.Total, "claims", len(charge.Claims))
	return charge, nil
}

// PayOutCover pays the claims of delegators. Shortfalls defer the payment and mark the first unpaid delegator.
func (c *Cover) PayOutCover(delegators []thor.Address) ([]Payout, error) {
	minPayout, err := c.deps.Params.Get(thor.KeyMinPayout)
	if err != nil {
		return nil, err
	}

	payouts := make([]Payout, 0, len(delegators))
	for _, d := range delegators {
		owed, err := c.memberService.Owed(d)
		if err != nil {
			return nil, err
		}
		payout := Payout{Delegator: d, Amount: owed}
		if owed.Sign() == 0 || owed.Cmp(minPayout) < 0 {
			payout.Status = Skipped
			payouts = append(payouts, payout)
			continue
		}

		spendable, err := c.Spendable()
		if err != nil {
			return nil, err
		}
		if spendable.Cmp(owed) < 0 {
			held, err := c.globalStatsService.MarkDelegatorNotPaid(d)
			if err != nil {
				return nil, err
			}
			logger.Info("payout deferred, pool lacks liquidity", "delegator", d, "owed", owed, "spendable", spendable, "marked", held)
			payout.Result = Result{Status: Deferred, Marked: held}
			payouts = append(payouts, payout)
			continue
		}

		if err := bank.Transfer(c.deps.Bank, c.pool, d, owed); err != nil {
			return nil, err
		}
		c.memberService.ClearOwed(d)
		if err := c.globalStatsService.SubOwed(owed); err != nil {
			return nil, errors.Wrap(err, "failed to sub owed total")
		}
		if _, err := c.globalStatsService.ClearDelegatorNotPaid(d); err != nil {
			return nil, err
		}
		payout.Status = Applied
		payouts = append(payouts, payout)
	}
	return payouts, nil
}
