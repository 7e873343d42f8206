// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cover

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakecover/builtin/oracle/report"
	"github.com/vechain/stakecover/test/datagen"
	"github.com/vechain/stakecover/thor"
)

func TestPushReportClaims(t *testing.T) {
	env := newTestEnv(t)
	addr := env.join(t, datagen.Units(1000))
	era := env.enableCover(t, addr)

	d1, d2 := datagen.RandAddress(), datagen.RandAddress()
	r := zeroPointsReport(era+1, addr,
		report.Delegation{Owner: d1, Amount: datagen.Units(1000)},
		report.Delegation{Owner: d2, Amount: datagen.Units(200)},
	)
	require.NoError(t, env.cover.PushReport(r))

	owed1, err := env.cover.Owed(d1)
	require.NoError(t, err)
	owed2, err := env.cover.Owed(d2)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2e16), owed1)
	assert.Equal(t, big.NewInt(4e15), owed2)

	sum := new(big.Int).Add(owed1, owed2)
	m, err := env.cover.Member(addr)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Sub(datagen.Units(1000), sum), m.Deposit)
	assert.False(t, m.Defaulted)
	assert.True(t, m.PaidFor(era+1))

	deposits, err := env.cover.DepositTotal()
	require.NoError(t, err)
	assert.Equal(t, m.Deposit, deposits)
	owedTotal, err := env.cover.OwedTotal()
	require.NoError(t, err)
	assert.Equal(t, sum, owedTotal)

	charges := env.cover.TakeCharges()
	require.Len(t, charges, 1)
	assert.Equal(t, addr, charges[0].Member)
	assert.Equal(t, sum, charges[0].Total)
	assert.Len(t, charges[0].Claims, 2)
	assert.Empty(t, env.cover.TakeCharges())

	// a second report for the same era charges nothing
	require.NoError(t, env.cover.PushReport(r))
	owed1, err = env.cover.Owed(d1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2e16), owed1)
}

func TestPushReportSkipsNonMembers(t *testing.T) {
	env := newTestEnv(t)
	delegator := datagen.RandAddress()
	r := zeroPointsReport(5, datagen.RandAddress(), report.Delegation{Owner: delegator, Amount: datagen.Units(1000)})
	require.NoError(t, env.cover.PushReport(r))

	owed, err := env.cover.Owed(delegator)
	require.NoError(t, err)
	assert.Equal(t, 0, owed.Sign())

	era, err := env.cover.Era()
	require.NoError(t, err)
	assert.Equal(t, uint32(5), era)
}

func TestPushReportActiveSetCover(t *testing.T) {
	env := newTestEnv(t)
	addr := env.join(t, datagen.Units(1000))
	era := env.enableCover(t, addr)

	delegator := datagen.RandAddress()
	r := idleReport(era+1, addr)
	r.Collators[0].Active = false
	r.Collators[0].TopDelegations = []report.Delegation{{Owner: delegator, Amount: datagen.Units(1000)}}
	require.NoError(t, env.cover.PushReport(r))

	owed, err := env.cover.Owed(delegator)
	require.NoError(t, err)
	assert.Equal(t, claimOf(datagen.Units(1000)), owed)

	m, err := env.cover.Member(addr)
	require.NoError(t, err)
	assert.False(t, m.Active)
}

func TestPushReportExceedsMax(t *testing.T) {
	env := newTestEnv(t)
	addr := env.join(t, datagen.Units(1000))
	era := env.enableCover(t, addr)
	require.NoError(t, env.params.Set(thor.KeyMaxEraMemberPayout, big.NewInt(1e16)))

	delegator := datagen.RandAddress()
	err := env.cover.PushReport(zeroPointsReport(era+1, addr, report.Delegation{Owner: delegator, Amount: datagen.Units(1000)}))
	assert.ErrorIs(t, err, errExceedsMax)

	owed, err := env.cover.Owed(delegator)
	require.NoError(t, err)
	assert.Equal(t, 0, owed.Sign())
}

func TestDefaultThenRecover(t *testing.T) {
	env := newTestEnv(t)
	addr := env.join(t, datagen.Units(1))
	era := env.enableCover(t, addr)

	d1, d2 := datagen.RandAddress(), datagen.RandAddress()
	delegations := []report.Delegation{
		{Owner: d1, Amount: datagen.Units(40_000)},
		{Owner: d2, Amount: datagen.Units(40_000)},
	}

	// the first claim takes 0.8, the second gets the remaining 0.2
	require.NoError(t, env.cover.PushReport(zeroPointsReport(era+1, addr, delegations...)))
	owed1, err := env.cover.Owed(d1)
	require.NoError(t, err)
	owed2, err := env.cover.Owed(d2)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(8e17), owed1)
	assert.Equal(t, big.NewInt(2e17), owed2)

	m, err := env.cover.Member(addr)
	require.NoError(t, err)
	assert.True(t, m.Defaulted)
	assert.Equal(t, 0, m.Deposit.Sign())

	// an empty deposit accrues nothing
	require.NoError(t, env.cover.PushReport(zeroPointsReport(era+2, addr, delegations...)))
	owed1, err = env.cover.Owed(d1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(8e17), owed1)
	charges := env.cover.TakeCharges()
	require.Len(t, charges, 2)
	assert.True(t, charges[1].Defaulted)
	assert.Equal(t, 0, charges[1].Total.Sign())

	env.fund(t, addr, datagen.Units(10))
	require.NoError(t, env.cover.Deposit(addr, addr, datagen.Units(10)))
	m, err = env.cover.Member(addr)
	require.NoError(t, err)
	assert.False(t, m.Defaulted)

	require.NoError(t, env.cover.PushReport(zeroPointsReport(era+3, addr, delegations...)))
	owed1, err = env.cover.Owed(d1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(16e17), owed1)

	m, err = env.cover.Member(addr)
	require.NoError(t, err)
	assert.False(t, m.Defaulted)
	assert.Equal(t, big.NewInt(84e17), m.Deposit)
}

func TestPayOutCover(t *testing.T) {
	env := newTestEnv(t)
	addr := env.join(t, datagen.Units(1000))
	era := env.enableCover(t, addr)

	d1, d2, idle := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()
	require.NoError(t, env.cover.PushReport(zeroPointsReport(era+1, addr,
		report.Delegation{Owner: d1, Amount: datagen.Units(1000)},
		report.Delegation{Owner: d2, Amount: datagen.Units(200)},
	)))
	require.NoError(t, env.params.Set(thor.KeyMinPayout, big.NewInt(1e16)))

	payouts, err := env.cover.PayOutCover([]thor.Address{d1, d2, idle})
	require.NoError(t, err)
	require.Len(t, payouts, 3)
	assert.Equal(t, Applied, payouts[0].Status)
	assert.Equal(t, Skipped, payouts[1].Status)
	assert.Equal(t, Skipped, payouts[2].Status)

	assert.Equal(t, big.NewInt(2e16), env.balance(t, d1))
	owed, err := env.cover.Owed(d1)
	require.NoError(t, err)
	assert.Equal(t, 0, owed.Sign())
	owedTotal, err := env.cover.OwedTotal()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(4e15), owedTotal)

	// paying twice moves nothing
	payouts, err = env.cover.PayOutCover([]thor.Address{d1})
	require.NoError(t, err)
	assert.Equal(t, Skipped, payouts[0].Status)
	assert.Equal(t, big.NewInt(2e16), env.balance(t, d1))
}

func TestPayOutCoverDeferred(t *testing.T) {
	env := newTestEnv(t)
	addr := env.join(t, datagen.Units(1000))
	era := env.enableCover(t, addr)

	d1, d2 := datagen.RandAddress(), datagen.RandAddress()
	require.NoError(t, env.cover.PushReport(zeroPointsReport(era+1, addr,
		report.Delegation{Owner: d1, Amount: datagen.Units(1000)},
		report.Delegation{Owner: d2, Amount: datagen.Units(1000)},
	)))

	pool := env.balance(t, thor.CoverPoolAddress)
	require.NoError(t, env.bank.Debit(thor.CoverPoolAddress, pool))

	payouts, err := env.cover.PayOutCover([]thor.Address{d1, d2})
	require.NoError(t, err)
	for _, p := range payouts {
		assert.Equal(t, Result{Status: Deferred, Marked: d1}, p.Result)
	}
	marked, err := env.cover.DelegatorNotPaid()
	require.NoError(t, err)
	assert.Equal(t, d1, marked)

	require.NoError(t, env.bank.Credit(thor.CoverPoolAddress, pool))

	// paying the second delegator leaves the marker on the first
	payouts, err = env.cover.PayOutCover([]thor.Address{d2})
	require.NoError(t, err)
	assert.Equal(t, Applied, payouts[0].Status)
	marked, err = env.cover.DelegatorNotPaid()
	require.NoError(t, err)
	assert.Equal(t, d1, marked)

	payouts, err = env.cover.PayOutCover([]thor.Address{d1})
	require.NoError(t, err)
	assert.Equal(t, Applied, payouts[0].Status)
	marked, err = env.cover.DelegatorNotPaid()
	require.NoError(t, err)
	assert.True(t, marked.IsZero())
}
