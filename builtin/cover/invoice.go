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

// InvoiceMembers charges the oracle fee to members not running an oracle reporter
// and splits it evenly among those who do.
func (c *Cover) InvoiceMembers() (*Invoice, error) {
	era, err := c.globalStatsService.Era()
	if err != nil {
		return nil, err
	}
	last, err := c.globalStatsService.LastInvoiceEra()
	if err != nil {
		return nil, err
	}
	interval, err := c.deps.Params.Uint32(thor.KeyInvoiceInterval)
	if err != nil {
		return nil, err
	}
	if uint64(era) < uint64(last)+uint64(interval) {
		return nil, errInvoiceTooEarly
	}
	fee, err := c.deps.Params.Get(thor.KeyMemberFee)
	if err != nil {
		return nil, err
	}

	joined, err := c.memberService.Joined()
	if err != nil {
		return nil, err
	}
	type entry struct {
		addr thor.Address
		m    *member.Member
	}
	var running, idle []entry
	for _, addr := range joined {
		m, err := c.memberService.GetMember(addr)
		if err != nil {
			return nil, err
		}
		reporter, err := c.deps.Reporters.ReporterOf(addr)
		if err != nil {
			return nil, err
		}
		if !reporter.IsZero() {
			running = append(running, entry{addr, m})
		} else if m.Deposit.Sign() > 0 {
			idle = append(idle, entry{addr, m})
		}
	}

	invoice := &Invoice{Era: era, Fee: fee, Collected: new(big.Int), Share: new(big.Int)}
	if err := c.globalStatsService.SetLastInvoiceEra(era); err != nil {
		return nil, err
	}
	if len(idle) == 0 {
		logger.Debug("nothing to invoice", "era", era)
		return invoice, nil
	}

	for _, e := range idle {
		charged := minBig(fee, e.m.Deposit)
		e.m.Deposit = new(big.Int).Sub(e.m.Deposit, charged)
		if err := c.memberService.SetMember(e.addr, e.m); err != nil {
			return nil, err
		}
		invoice.Collected.Add(invoice.Collected, charged)
		invoice.Charged = append(invoice.Charged, e.addr)
	}

	// what is not redistributed leaves the deposits and stays in the pool as yield
	kept := new(big.Int).Set(invoice.Collected)
	if len(running) > 0 {
		invoice.Share.Quo(invoice.Collected, big.NewInt(int64(len(running))))
		for _, e := range running {
			e.m.Deposit = new(big.Int).Add(e.m.Deposit, invoice.Share)
			if err := c.memberService.SetMember(e.addr, e.m); err != nil {
				return nil, err
			}
			invoice.Rewarded = append(invoice.Rewarded, e.addr)
			kept.Sub(kept, invoice.Share)
		}
	}
	if err := c.globalStatsService.SubDeposit(kept); err != nil {
		return nil, errors.Wrap(err, "failed to sub deposit total")
	}

	logger.Info("members invoiced", "era", era, "charged", len(invoice.Charged), "rewarded", len(invoice.Rewarded),
		"collected", invoice.Collected, "share", invoice.Share)
	return invoice, nil
}

// WithdrawRewards transfers pool yield above all liabilities to the given address.
func (c *Cover) WithdrawRewards(caller thor.Address, amount *big.Int, to thor.Address) error {
	if err := roles.Require(c.deps.Auth, roles.PoolOperator, caller); err != nil {
		return err
	}
	if amount.Sign() <= 0 {
		return errZeroAmount
	}
	if to.IsZero() {
		return errZeroAddress
	}

	rewards, err := c.Rewards()
	if err != nil {
		return err
	}
	if rewards == nil {
		return errNoFunds
	}
	if amount.Cmp(rewards) > 0 {
		return errNoRewards
	}
	if err := bank.Transfer(c.deps.Bank, c.pool, to, amount); err != nil {
		return err
	}
	logger.Info("rewards withdrawn", "amount", amount, "to", to)
	return nil
}

// Rewards returns the withdrawable yield, nil when liabilities are not covered.
func (c *Cover) Rewards() (*big.Int, error) {
	spendable, err := c.Spendable()
	if err != nil {
		return nil, err
	}
	staked, err := c.deps.Staking.StakedTotal()
	if err != nil {
		return nil, err
	}
	deposits, err := c.globalStatsService.DepositTotal()
	if err != nil {
		return nil, err
	}
	owed, err := c.globalStatsService.OwedTotal()
	if err != nil {
		return nil, err
	}

	total := new(big.Int).Add(spendable, staked)
	liabilities := new(big.Int).Add(deposits, owed)
	if total.Cmp(liabilities) <= 0 {
		return nil, nil
	}
	rewards := total.Sub(total, liabilities)
	rewards.Sub(rewards, staked)
	if rewards.Sign() < 0 {
		rewards.SetInt64(0)
	}
	return rewards, nil
}
