// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cover implements the cover accounting engine: member deposits, delegator claims,
// scheduled decreases, fee invoicing and reward withdrawal.
package cover

import (
	"math/big"

	"github.com/vechain/stakecover/builtin/bank"
	"github.com/vechain/stakecover/builtin/cover/globalstats"
	"github.com/vechain/stakecover/builtin/cover/member"
	"github.com/vechain/stakecover/builtin/params"
	"github.com/vechain/stakecover/builtin/roles"
	"github.com/vechain/stakecover/builtin/solidity"
	"github.com/vechain/stakecover/log"
	"github.com/vechain/stakecover/thor"
)

var logger = log.WithContext("pkg", "cover")

func SetLogger(l log.Logger) {
	logger = l
}

// Reporters resolves the oracle reporter registered by a member.
type Reporters interface {
	ReporterOf(member thor.Address) (thor.Address, error)
}

// Staking reports the pool capital currently delegated.
type Staking interface {
	StakedTotal() (*big.Int, error)
}

// Deps are the collaborators of the engine.
type Deps struct {
	Params    *params.Params
	Bank      bank.Bank
	Auth      roles.Authorizer
	Operators roles.Operators
	Reporters Reporters
	Staking   Staking
}

// Cover implements the cover accounting engine.
type Cover struct {
	pool thor.Address
	deps Deps

	memberService      *member.Service
	globalStatsService *globalstats.Service

	charges []Charge
}

// New create a new instance, sctx is bound to the pool account.
func New(sctx *solidity.Context, deps Deps) *Cover {
	return &Cover{
		pool:               sctx.Address(),
		deps:               deps,
		memberService:      member.New(sctx),
		globalStatsService: globalstats.New(sctx),
	}
}

// Member returns the member state, an empty member if unknown.
func (c *Cover) Member(addr thor.Address) (*member.Member, error) {
	return c.memberService.GetMember(addr)
}

// IsMember tells whether addr deposited at least once.
func (c *Cover) IsMember(addr thor.Address) (bool, error) {
	m, err := c.memberService.GetMember(addr)
	if err != nil {
		return false, err
	}
	return m.Joined, nil
}

// Members returns the joined members in join order.
func (c *Cover) Members() ([]thor.Address, error) {
	return c.memberService.Joined()
}

// Owed returns the claim owed to delegator.
func (c *Cover) Owed(delegator thor.Address) (*big.Int, error) {
	return c.memberService.Owed(delegator)
}

func (c *Cover) DepositTotal() (*big.Int, error) {
	return c.globalStatsService.DepositTotal()
}

func (c *Cover) OwedTotal() (*big.Int, error) {
	return c.globalStatsService.OwedTotal()
}

func (c *Cover) DelegatorNotPaid() (thor.Address, error) {
	return c.globalStatsService.DelegatorNotPaid()
}

func (c *Cover) MemberNotPaid() (thor.Address, error) {
	return c.globalStatsService.MemberNotPaid()
}

// Era returns the era of the last relayed report.
func (c *Cover) Era() (uint32, error) {
	return c.globalStatsService.Era()
}

func (c *Cover) LastInvoiceEra() (uint32, error) {
	return c.globalStatsService.LastInvoiceEra()
}

// Spendable returns the pool balance available for transfers.
func (c *Cover) Spendable() (*big.Int, error) {
	return c.deps.Bank.Balance(c.pool)
}

// UnpaidDecrease returns the pending decrease of the member held by the member marker, capped by its deposit.
func (c *Cover) UnpaidDecrease() (*big.Int, error) {
	held, err := c.globalStatsService.MemberNotPaid()
	if err != nil {
		return nil, err
	}
	if held.IsZero() {
		return new(big.Int), nil
	}
	m, err := c.memberService.GetMember(held)
	if err != nil {
		return nil, err
	}
	if m.Decrease == nil {
		return new(big.Int), nil
	}
	return minBig(m.Decrease.Amount, m.Deposit), nil
}

// TakeCharges returns and forgets the charges made by reports since the last call.
func (c *Cover) TakeCharges() []Charge {
	charges := c.charges
	c.charges = nil
	return charges
}

// Whitelist allows or forbids manual deposits by member.
func (c *Cover) Whitelist(caller, addr thor.Address, whitelisted bool) error {
	if err := roles.Require(c.deps.Auth, roles.MemberManager, caller); err != nil {
		return err
	}
	if addr.IsZero() {
		return errZeroAddress
	}
	m, err := c.memberService.GetMember(addr)
	if err != nil {
		return err
	}
	m.Whitelisted = whitelisted
	logger.Debug("whitelist updated", "member", addr, "whitelisted", whitelisted)
	return c.memberService.SetMember(addr, m)
}

// ErasCovered is the delay of a decrease scheduled by member now.
func (c *Cover) ErasCovered(addr thor.Address) (uint32, error) {
	m, err := c.memberService.GetMember(addr)
	if err != nil {
		return 0, err
	}
	return c.erasCovered(m)
}

func (c *Cover) erasCovered(m *member.Member) (uint32, error) {
	maxTracked, err := c.maxTrackedDelegationsTotal()
	if err != nil {
		return 0, err
	}
	rate, err := c.deps.Params.Get(thor.KeyStakeUnitCover)
	if err != nil {
		return 0, err
	}
	return ErasCovered(m.Deposit, maxTracked, rate), nil
}

// ErasCovered computes min(MaxErasCovered, deposit / (maxTracked * rate / Unit)).
func ErasCovered(deposit, maxTracked, rate *big.Int) uint32 {
	refundPerEra := new(big.Int).Mul(maxTracked, rate)
	refundPerEra.Quo(refundPerEra, thor.Unit)
	if refundPerEra.Sign() == 0 {
		return thor.MaxErasCovered
	}
	eras := new(big.Int).Quo(deposit, refundPerEra)
	if eras.Cmp(big.NewInt(int64(thor.MaxErasCovered))) >= 0 {
		return thor.MaxErasCovered
	}
	return uint32(eras.Uint64())
}

func (c *Cover) maxTrackedDelegationsTotal() (*big.Int, error) {
	joined, err := c.memberService.Joined()
	if err != nil {
		return nil, err
	}
	largest := new(big.Int)
	for _, addr := range joined {
		m, err := c.memberService.GetMember(addr)
		if err != nil {
			return nil, err
		}
		if m.DelegationsTotal.Cmp(largest) > 0 {
			largest.Set(m.DelegationsTotal)
		}
	}
	return largest, nil
}

func minBig(a, b *big.Int) *big.Int {
	if a.Cmp(b) < 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}
