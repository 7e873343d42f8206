// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakecover/builtin/cover"
	"github.com/vechain/stakecover/builtin/oracle/report"
	"github.com/vechain/stakecover/builtin/reverts"
	"github.com/vechain/stakecover/builtin/roles"
	"github.com/vechain/stakecover/test/datagen"
	"github.com/vechain/stakecover/thor"
)

func TestGenesis(t *testing.T) {
	env := newTestEnv(t)

	ok, err := env.pool.HasRole(roles.PoolOperator, env.operator)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = env.pool.HasRole(roles.MemberManager, executor)
	require.NoError(t, err)
	assert.False(t, ok)

	values, err := env.pool.Params()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(4), values["unbonding-delay"])
	assert.Equal(t, datagen.Units(100), env.balance(t, env.member))

	members, err := env.pool.OracleMembers()
	require.NoError(t, err)
	assert.Equal(t, env.oracles, members)

	// applying twice changes nothing
	gen := testGenesis(env)
	gen.Balances = []Allocation{{Address: env.member, Amount: datagen.Units(1)}}
	require.NoError(t, env.pool.ApplyGenesis(gen))
	assert.Equal(t, datagen.Units(100), env.balance(t, env.member))
}

func TestSetParam(t *testing.T) {
	env := newTestEnv(t)

	err := env.pool.SetParam(env.admin, "min-payout", big.NewInt(5))
	assert.True(t, reverts.IsUnauthorized(err))
	err = env.pool.SetParam(env.manager, "no-such-param", big.NewInt(5))
	assert.ErrorIs(t, err, errUnknownParam)
	err = env.pool.SetParam(env.manager, "min-payout", big.NewInt(-1))
	assert.True(t, reverts.IsRevertErr(err))

	require.NoError(t, env.pool.SetParam(env.manager, "min-payout", big.NewInt(5)))
	values, err := env.pool.Params()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), values["min-payout"])
	assert.Len(t, env.kinds(t, KindParamSet), 1)
}

func TestGrantRole(t *testing.T) {
	env := newTestEnv(t)
	acc := datagen.RandAddress()

	assert.True(t, reverts.IsUnauthorized(env.pool.GrantRole(env.manager, roles.OracleManager, acc)))
	require.NoError(t, env.pool.GrantRole(env.admin, roles.OracleManager, acc))
	ok, err := env.pool.HasRole(roles.OracleManager, acc)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, env.pool.RevokeRole(env.admin, roles.OracleManager, acc))
	ok, err = env.pool.HasRole(roles.OracleManager, acc)
	require.NoError(t, err)
	assert.False(t, ok)

	events := env.kinds(t, KindRoleGranted, KindRoleRevoked)
	require.NotEmpty(t, events)
	assert.Equal(t, KindRoleRevoked, events[len(events)-1].Kind)
	assert.Equal(t, acc, events[len(events)-1].Subject)
}

// TestCoverLifecycle drives a member from deposit to a forced unwind that pays a deferred claim.
func TestCoverLifecycle(t *testing.T) {
	env := newTestEnv(t)
	m := env.member

	require.NoError(t, env.pool.Deposit(m, m, datagen.Units(10)))
	pending, err := env.pool.SetCoverTypes(m, m, true, false)
	require.NoError(t, err)
	era := pending.EffectiveEra
	env.relay(t, collatorReport(era, m, 20))

	member, err := env.pool.Member(m)
	require.NoError(t, err)
	assert.True(t, member.ZeroPointsCover)

	// half of the deposits may be staked
	a, b := datagen.RandAddress(), datagen.RandAddress()
	require.NoError(t, env.pool.Delegate(env.staking, a, datagen.Units(3)))
	require.NoError(t, env.pool.Delegate(env.staking, b, datagen.Units(2)))
	assert.True(t, reverts.IsRevertErr(env.pool.Delegate(env.staking, b, big.NewInt(1))))
	assert.Equal(t, datagen.Units(5), env.balance(t, thor.CoverPoolAddress))

	// claims of 4 and 3 units against 5 spendable units
	d1, d2 := datagen.RandAddress(), datagen.RandAddress()
	env.relay(t, collatorReport(era+1, m, 0,
		report.Delegation{Owner: d1, Amount: datagen.Units(200_000)},
		report.Delegation{Owner: d2, Amount: datagen.Units(150_000)},
	))
	charged := env.kinds(t, KindMemberCharged)
	require.Len(t, charged, 1)
	assert.Equal(t, m, charged[0].Subject)
	assert.Equal(t, era+1, charged[0].Era)

	payouts, err := env.pool.PayOutCover([]thor.Address{d1, d2})
	require.NoError(t, err)
	assert.Equal(t, cover.Applied, payouts[0].Status)
	assert.Equal(t, cover.Result{Status: cover.Deferred, Marked: d2}, payouts[1].Result)
	assert.Equal(t, datagen.Units(4), env.balance(t, d1))

	status, err := env.health.Status()
	require.NoError(t, err)
	assert.True(t, status.Liquidity.Deferred)
	assert.Equal(t, d2, status.Liquidity.DelegatorNotPaid)
	require.NotNil(t, status.ReportIngestion.Era)
	assert.Equal(t, era+1, *status.ReportIngestion.Era)

	// staking is frozen until the delegator is paid
	assert.True(t, reverts.IsRevertErr(env.pool.Delegate(env.staking, a, big.NewInt(1))))

	// two units short, the smallest delegation goes
	reqs, err := env.pool.ForceScheduleRevoke()
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, b, reqs[0].Candidate)
	assert.Equal(t, era+1+4, reqs[0].EraExecutable)

	executed, err := env.pool.ExecuteDelegationRequests()
	require.NoError(t, err)
	assert.Empty(t, executed)

	env.relay(t, collatorReport(era+5, m, 20))
	executed, err = env.pool.ExecuteDelegationRequests()
	require.NoError(t, err)
	require.Len(t, executed, 1)
	assert.Equal(t, datagen.Units(3), env.balance(t, thor.CoverPoolAddress))

	payouts, err = env.pool.PayOutCover([]thor.Address{d2})
	require.NoError(t, err)
	assert.Equal(t, cover.Applied, payouts[0].Status)
	assert.Equal(t, datagen.Units(3), env.balance(t, d2))

	summary, err := env.pool.Summary()
	require.NoError(t, err)
	assert.Equal(t, era+5, summary.Era)
	assert.True(t, summary.DelegatorNotPaid.IsZero())
	assert.Equal(t, 0, summary.OwedTotal.Sign())
	assert.Equal(t, datagen.Units(3), summary.DepositTotal)
	assert.Equal(t, datagen.Units(3), summary.StakedTotal)

	status, err = env.health.Status()
	require.NoError(t, err)
	assert.False(t, status.Liquidity.Deferred)

	assert.Len(t, env.kinds(t, KindForcedUnwind), 1)
	assert.Len(t, env.kinds(t, KindPayoutDeferred), 1)
	assert.Len(t, env.kinds(t, KindDelegatorPaid), 2)
}

func TestFailedReportIsReverted(t *testing.T) {
	env := newTestEnv(t)
	m := env.member

	require.NoError(t, env.pool.Deposit(m, m, datagen.Units(10)))
	pending, err := env.pool.SetCoverTypes(m, m, true, false)
	require.NoError(t, err)
	era := pending.EffectiveEra
	env.relay(t, collatorReport(era, m, 20))
	require.NoError(t, env.pool.SetParam(env.manager, "max-era-member-payout", datagen.Units(1)))

	before, err := env.pool.Consensus()
	require.NoError(t, err)
	rep := collatorReport(era+1, m, 0, report.Delegation{Owner: datagen.RandAddress(), Amount: datagen.Units(200_000)})

	first, last := env.oracles[0], env.oracles[1]
	_, err = env.pool.ReportEraPart(first.Reporter, first.Member, rep.EraID, before.Nonce, rep)
	require.NoError(t, err)
	submitted := len(env.kinds(t, KindReportSubmitted))

	// the finalizing vote fails in the engine and leaves no trace
	_, err = env.pool.ReportEraPart(last.Reporter, last.Member, rep.EraID, before.Nonce, rep)
	require.Error(t, err)
	assert.True(t, reverts.IsRevertErr(err))
	assert.Contains(t, err.Error(), "exceeds max")

	after, err := env.pool.Consensus()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	relayed, err := env.pool.RelayStatus()
	require.NoError(t, err)
	assert.Equal(t, era, relayed.EraID)
	assert.Len(t, env.kinds(t, KindReportSubmitted), submitted)
	assert.Empty(t, env.kinds(t, KindMemberCharged))

	// the same vote succeeds once the cap allows the claim
	require.NoError(t, env.pool.SetParam(env.manager, "max-era-member-payout", datagen.Units(100)))
	out, err := env.pool.ReportEraPart(last.Reporter, last.Member, rep.EraID, before.Nonce, rep)
	require.NoError(t, err)
	assert.True(t, out.Finalized)
	assert.Len(t, env.kinds(t, KindMemberCharged), 1)
}

func TestInvoiceAndRewards(t *testing.T) {
	env := newTestEnv(t)
	m := env.member

	// the member runs no reporter and pays the fee
	require.NoError(t, env.pool.Deposit(m, m, datagen.Units(10)))
	_, err := env.pool.InvoiceMembers()
	assert.True(t, reverts.IsRevertErr(err))

	env.relay(t, collatorReport(10, datagen.RandAddress(), 20))
	invoice, err := env.pool.InvoiceMembers()
	require.NoError(t, err)
	assert.Equal(t, []thor.Address{m}, invoice.Charged)
	assert.Empty(t, invoice.Rewarded)

	member, err := env.pool.Member(m)
	require.NoError(t, err)
	assert.Equal(t, datagen.Units(9), member.Deposit)

	_, err = env.pool.InvoiceMembers()
	assert.True(t, reverts.IsRevertErr(err))

	// the kept fee is pool yield
	to := datagen.RandAddress()
	assert.True(t, reverts.IsUnauthorized(env.pool.WithdrawRewards(env.manager, datagen.Units(1), to)))
	require.NoError(t, env.pool.WithdrawRewards(env.operator, datagen.Units(1), to))
	assert.Equal(t, datagen.Units(1), env.balance(t, to))
	assert.Len(t, env.kinds(t, KindRewardsWithdrawn), 1)
}

func TestDecreaseThroughPool(t *testing.T) {
	env := newTestEnv(t)
	m := env.member

	require.NoError(t, env.pool.Deposit(m, m, datagen.Units(10)))
	eras, err := env.pool.ErasCovered(m)
	require.NoError(t, err)
	assert.Equal(t, thor.MaxErasCovered, eras)

	d, err := env.pool.ScheduleDecrease(m, m, datagen.Units(4))
	require.NoError(t, err)
	assert.Equal(t, thor.MaxErasCovered, d.EraAvailable)

	_, err = env.pool.ExecuteScheduledDecrease(m)
	assert.True(t, reverts.IsRevertErr(err))

	env.relay(t, collatorReport(d.EraAvailable, datagen.RandAddress(), 20))
	res, err := env.pool.ExecuteScheduledDecrease(m)
	require.NoError(t, err)
	assert.Equal(t, cover.Applied, res.Status)
	assert.Equal(t, datagen.Units(94), env.balance(t, m))
	assert.Len(t, env.kinds(t, KindDecreaseExecuted), 1)
}
