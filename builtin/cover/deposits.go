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
	"github.com/vechain/stakecover/builtin/roles"
	"github.com/vechain/stakecover/thor"
)

func (c *Cover) requireDepositor(caller, addr thor.Address, m *member.Member) error {
	if m.Whitelisted && caller == addr {
		return nil
	}
	open, err := c.deps.Params.Bool(thor.KeyNoManualWhitelisting)
	if err != nil {
		return err
	}
	if !open {
		return errNotWhitelisted
	}
	ok, err := c.deps.Operators.IsAuthorizedOperator(addr, caller)
	if err != nil {
		return err
	}
	if !ok {
		return errNotWhitelisted
	}
	return nil
}

// Deposit adds amount, paid by caller, to the deposit of member.
func (c *Cover) Deposit(caller, addr thor.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return errZeroAmount
	}
	m, err := c.memberService.GetMember(addr)
	if err != nil {
		return err
	}
	if err := c.requireDepositor(caller, addr, m); err != nil {
		return err
	}

	minDeposit, err := c.deps.Params.Get(thor.KeyMinDeposit)
	if err != nil {
		return err
	}
	maxDeposit, err := c.deps.Params.Get(thor.KeyMaxDepositTotal)
	if err != nil {
		return err
	}
	total := new(big.Int).Add(m.Deposit, amount)
	if total.Cmp(minDeposit) < 0 {
		return errBelowMinDeposit
	}
	if total.Cmp(maxDeposit) > 0 {
		return errExceedsMaxDeposit
	}

	if err := bank.Transfer(c.deps.Bank, caller, c.pool, amount); err != nil {
		return err
	}

	m.Deposit = total
	m.Joined = true
	m.Active = true
	m.Defaulted = false
	if err := c.memberService.SetMember(addr, m); err != nil {
		return err
	}
	if err := c.globalStatsService.AddDeposit(amount); err != nil {
		return errors.Wrap(err, "failed to add deposit total")
	}

	logger.Debug("deposited", "member", addr, "caller", caller, "amount", amount, "deposit", total)
	return nil
}

// ScheduleDecrease schedules a deposit decrease, executable after ErasCovered eras.
func (c *Cover) ScheduleDecrease(caller, addr thor.Address, amount *big.Int) (*member.Decrease, error) {
	if err := roles.RequireMemberOrOperator(c.deps.Operators, addr, caller); err != nil {
		return nil, err
	}
	m, err := c.memberService.GetMember(addr)
	if err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 || amount.Cmp(m.Deposit) > 0 {
		return nil, errInvalidAmount
	}
	if m.Decrease != nil {
		return nil, errDecreasePending
	}

	era, err := c.globalStatsService.Era()
	if err != nil {
		return nil, err
	}
	delay, err := c.erasCovered(m)
	if err != nil {
		return nil, err
	}
	m.Decrease = &member.Decrease{EraAvailable: era + delay, Amount: new(big.Int).Set(amount)}
	if err := c.memberService.SetMember(addr, m); err != nil {
		return nil, err
	}

	logger.Debug("decrease scheduled", "member", addr, "amount", amount, "eraAvailable", m.Decrease.EraAvailable)
	return m.Decrease, nil
}

// CancelDecrease drops the pending decrease of member.
func (c *Cover) CancelDecrease(caller, addr thor.Address) error {
	if err := roles.RequireMemberOrOperator(c.deps.Operators, addr, caller); err != nil {
		return err
	}
	m, err := c.memberService.GetMember(addr)
	if err != nil {
		return err
	}
	if m.Decrease == nil {
		return errNoSuchDecrease
	}
	m.Decrease = nil
	if err := c.memberService.SetMember(addr, m); err != nil {
		return err
	}
	cleared, err := c.globalStatsService.ClearMemberNotPaid(addr)
	if err != nil {
		return err
	}
	logger.Debug("decrease cancelled", "member", addr, "markerCleared", cleared)
	return nil
}

// ExecuteScheduledDecrease pays out a due decrease. A liquidity shortfall defers it and marks the member.
func (c *Cover) ExecuteScheduledDecrease(addr thor.Address) (*Result, error) {
	m, err := c.memberService.GetMember(addr)
	if err != nil {
		return nil, err
	}
	if m.Decrease == nil {
		return nil, errNoSuchDecrease
	}
	era, err := c.globalStatsService.Era()
	if err != nil {
		return nil, err
	}
	if era < m.Decrease.EraAvailable {
		return nil, errNotYetExecutable
	}

	amount := minBig(m.Decrease.Amount, m.Deposit)
	spendable, err := c.Spendable()
	if err != nil {
		return nil, err
	}
	owed, err := c.globalStatsService.OwedTotal()
	if err != nil {
		return nil, err
	}
	if spendable.Cmp(new(big.Int).Add(amount, owed)) < 0 {
		held, err := c.globalStatsService.MarkMemberNotPaid(addr)
		if err != nil {
			return nil, err
		}
		logger.Info("decrease deferred, pool lacks liquidity", "member", addr, "amount", amount, "spendable", spendable, "owed", owed, "marked", held)
		return &Result{Status: Deferred, Marked: held}, nil
	}

	m.Deposit = new(big.Int).Sub(m.Deposit, amount)
	m.Decrease = nil
	if err := c.memberService.SetMember(addr, m); err != nil {
		return nil, err
	}
	if err := c.globalStatsService.SubDeposit(amount); err != nil {
		return nil, errors.Wrap(err, "failed to sub deposit total")
	}
	if err := bank.Transfer(c.deps.Bank, c.pool, addr, amount); err != nil {
		return nil, err
	}
	if _, err := c.globalStatsService.ClearMemberNotPaid(addr); err != nil {
		return nil, err
	}

	logger.Debug("decrease executed", "member", addr, "amount", amount)
	return &Result{Status: Applied}, nil
}

// SetMaxCoveredDelegation caps the covered amount per delegation, effective after ErasCovered eras.
func (c *Cover) SetMaxCoveredDelegation(caller, addr thor.Address, limit *big.Int) (*member.PendingSettings, error) {
	if limit.Sign() < 0 {
		return nil, errInvalidAmount
	}
	return c.updateSettings(caller, addr, func(s *member.Settings) {
		s.MaxCoveredDelegation = new(big.Int).Set(limit)
	})
}

// SetCoverTypes toggles the offered cover types, effective after ErasCovered eras.
func (c *Cover) SetCoverTypes(caller, addr thor.Address, zeroPoints, activeSet bool) (*member.PendingSettings, error) {
	return c.updateSettings(caller, addr, func(s *member.Settings) {
		s.ZeroPointsCover = zeroPoints
		s.ActiveSetCover = activeSet
	})
}

func (c *Cover) updateSettings(caller, addr thor.Address, update func(*member.Settings)) (*member.PendingSettings, error) {
	if err := roles.RequireMemberOrOperator(c.deps.Operators, addr, caller); err != nil {
		return nil, err
	}
	m, err := c.memberService.GetMember(addr)
	if err != nil {
		return nil, err
	}
	if !m.Joined {
		return nil, errNotMember
	}

	era, err := c.globalStatsService.Era()
	if err != nil {
		return nil, err
	}
	delay, err := c.erasCovered(m)
	if err != nil {
		return nil, err
	}

	// changes stack on top of the not yet effective ones
	next := m.Settings
	if m.Pending != nil {
		next = m.Pending.Settings
	}
	update(&next)
	m.Pending = &member.PendingSettings{Settings: next, EffectiveEra: era + delay}
	if err := c.memberService.SetMember(addr, m); err != nil {
		return nil, err
	}

	logger.Debug("cover settings scheduled", "member", addr, "effectiveEra", m.Pending.EffectiveEra,
		"zeroPoints", next.ZeroPointsCover, "activeSet", next.ActiveSetCover, "maxCovered", next.MaxCoveredDelegation)
	return m.Pending, nil
}
