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

	"github.com/vechain/stakecover/builtin/bank"
	"github.com/vechain/stakecover/builtin/oracle/report"
	"github.com/vechain/stakecover/builtin/reverts"
	"github.com/vechain/stakecover/test/datagen"
	"github.com/vechain/stakecover/thor"
)

func TestDeposit(t *testing.T) {
	env := newTestEnv(t)
	addr := datagen.RandAddress()
	env.fund(t, addr, datagen.Units(20_000))

	err := env.cover.Deposit(addr, addr, datagen.Units(10))
	assert.ErrorIs(t, err, errNotWhitelisted)
	assert.True(t, reverts.IsUnauthorized(err))

	err = env.cover.Whitelist(addr, addr, true)
	assert.True(t, reverts.IsUnauthorized(err))
	require.NoError(t, env.cover.Whitelist(env.manager, addr, true))

	assert.ErrorIs(t, env.cover.Deposit(addr, addr, new(big.Int)), errZeroAmount)
	assert.ErrorIs(t, env.cover.Deposit(addr, addr, big.NewInt(1)), errBelowMinDeposit)
	assert.ErrorIs(t, env.cover.Deposit(addr, addr, datagen.Units(10_001)), errExceedsMaxDeposit)

	require.NoError(t, env.cover.Deposit(addr, addr, datagen.Units(10)))
	require.NoError(t, env.cover.Deposit(addr, addr, datagen.Units(5)))

	m, err := env.cover.Member(addr)
	require.NoError(t, err)
	assert.True(t, m.Joined)
	assert.True(t, m.Active)
	assert.Equal(t, datagen.Units(15), m.Deposit)

	total, err := env.cover.DepositTotal()
	require.NoError(t, err)
	assert.Equal(t, datagen.Units(15), total)
	assert.Equal(t, datagen.Units(15), env.balance(t, thor.CoverPoolAddress))
	assert.Equal(t, datagen.Units(19_985), env.balance(t, addr))

	members, err := env.cover.Members()
	require.NoError(t, err)
	assert.Equal(t, []thor.Address{addr}, members)
}

func TestDepositInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)
	addr := datagen.RandAddress()
	env.fund(t, addr, datagen.Units(1))
	require.NoError(t, env.cover.Whitelist(env.manager, addr, true))

	assert.ErrorIs(t, env.cover.Deposit(addr, addr, datagen.Units(2)), bank.ErrInsufficientBalance)
	ok, err := env.cover.IsMember(addr)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDepositByOperator(t *testing.T) {
	env := newTestEnv(t)
	addr, proxy := datagen.RandAddress(), datagen.RandAddress()
	env.fund(t, proxy, datagen.Units(10))
	require.NoError(t, env.registry.SetOperator(addr, proxy))

	// operators deposit only once manual whitelisting is off
	assert.ErrorIs(t, env.cover.Deposit(proxy, addr, datagen.Units(10)), errNotWhitelisted)

	require.NoError(t, env.params.Set(thor.KeyNoManualWhitelisting, big.NewInt(1)))
	require.NoError(t, env.cover.Deposit(proxy, addr, datagen.Units(10)))

	m, err := env.cover.Member(addr)
	require.NoError(t, err)
	assert.Equal(t, datagen.Units(10), m.Deposit)
	assert.Equal(t, 0, env.balance(t, proxy).Sign())
}

func TestErasCovered(t *testing.T) {
	tests := []struct {
		name       string
		deposit    *big.Int
		maxTracked *big.Int
		want       uint32
	}{
		{"no delegations", datagen.Units(120), new(big.Int), thor.MaxErasCovered},
		{"120 units", datagen.Units(120), datagen.Units(25_000), 240},
		{"1000 units capped", datagen.Units(1000), datagen.Units(25_000), thor.MaxErasCovered},
		{"empty deposit", new(big.Int), datagen.Units(25_000), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErasCovered(tt.deposit, tt.maxTracked, testRate))
		})
	}
}

func TestScheduleDecreaseDelay(t *testing.T) {
	env := newTestEnv(t)
	small := env.join(t, datagen.Units(120))
	large := env.join(t, datagen.Units(1000))

	// the largest tracked delegation total sets the refund per era
	r := idleReport(10, small)
	r.Collators[0].DelegationsTotal = datagen.Units(25_000)
	require.NoError(t, env.cover.PushReport(r))

	d, err := env.cover.ScheduleDecrease(small, small, datagen.Units(20))
	require.NoError(t, err)
	assert.Equal(t, uint32(10+240), d.EraAvailable)

	d, err = env.cover.ScheduleDecrease(large, large, datagen.Units(20))
	require.NoError(t, err)
	assert.Equal(t, uint32(10)+thor.MaxErasCovered, d.EraAvailable)

	_, err = env.cover.ScheduleDecrease(small, small, datagen.Units(1))
	assert.ErrorIs(t, err, errDecreasePending)

	_, err = env.cover.ScheduleDecrease(large, small, datagen.Units(1))
	assert.True(t, reverts.IsUnauthorized(err))
}

func TestScheduleDecreaseInvalidAmount(t *testing.T) {
	env := newTestEnv(t)
	addr := env.join(t, datagen.Units(10))

	_, err := env.cover.ScheduleDecrease(addr, addr, new(big.Int))
	assert.ErrorIs(t, err, errInvalidAmount)
	_, err = env.cover.ScheduleDecrease(addr, addr, datagen.Units(11))
	assert.ErrorIs(t, err, errInvalidAmount)
}

func TestExecuteScheduledDecrease(t *testing.T) {
	env := newTestEnv(t)
	addr := env.join(t, datagen.Units(100))

	_, err := env.cover.ExecuteScheduledDecrease(addr)
	assert.ErrorIs(t, err, errNoSuchDecrease)

	d, err := env.cover.ScheduleDecrease(addr, addr, datagen.Units(40))
	require.NoError(t, err)
	require.Equal(t, thor.MaxErasCovered, d.EraAvailable)

	_, err = env.cover.ExecuteScheduledDecrease(addr)
	assert.ErrorIs(t, err, errNotYetExecutable)

	require.NoError(t, env.cover.PushReport(idleReport(d.EraAvailable, addr)))
	res, err := env.cover.ExecuteScheduledDecrease(addr)
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Status)

	m, err := env.cover.Member(addr)
	require.NoError(t, err)
	assert.Nil(t, m.Decrease)
	assert.Equal(t, datagen.Units(60), m.Deposit)
	assert.Equal(t, datagen.Units(40), env.balance(t, addr))

	total, err := env.cover.DepositTotal()
	require.NoError(t, err)
	assert.Equal(t, datagen.Units(60), total)
}

func TestExecuteScheduledDecreaseDeferred(t *testing.T) {
	env := newTestEnv(t)
	first := env.join(t, datagen.Units(100))
	second := env.join(t, datagen.Units(100))

	for _, addr := range []thor.Address{first, second} {
		_, err := env.cover.ScheduleDecrease(addr, addr, datagen.Units(50))
		require.NoError(t, err)
	}
	require.NoError(t, env.cover.PushReport(idleReport(thor.MaxErasCovered, first)))

	// capital locked in delegations leaves the pool short
	require.NoError(t, env.bank.Debit(thor.CoverPoolAddress, datagen.Units(180)))

	res, err := env.cover.ExecuteScheduledDecrease(first)
	require.NoError(t, err)
	assert.Equal(t, Result{Status: Deferred, Marked: first}, *res)

	res, err = env.cover.ExecuteScheduledDecrease(second)
	require.NoError(t, err)
	assert.Equal(t, Result{Status: Deferred, Marked: first}, *res)

	m, err := env.cover.Member(first)
	require.NoError(t, err)
	assert.NotNil(t, m.Decrease)
	assert.Equal(t, datagen.Units(100), m.Deposit)

	unpaid, err := env.cover.UnpaidDecrease()
	require.NoError(t, err)
	assert.Equal(t, datagen.Units(50), unpaid)

	// the marker only moves once the holder is settled
	require.NoError(t, env.cover.CancelDecrease(second, second))
	marked, err := env.cover.MemberNotPaid()
	require.NoError(t, err)
	assert.Equal(t, first, marked)

	require.NoError(t, env.bank.Credit(thor.CoverPoolAddress, datagen.Units(180)))
	res, err = env.cover.ExecuteScheduledDecrease(first)
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Status)

	marked, err = env.cover.MemberNotPaid()
	require.NoError(t, err)
	assert.True(t, marked.IsZero())
}

func TestCancelDecreaseClearsMarker(t *testing.T) {
	env := newTestEnv(t)
	addr := env.join(t, datagen.Units(100))

	assert.ErrorIs(t, env.cover.CancelDecrease(addr, addr), errNoSuchDecrease)

	_, err := env.cover.ScheduleDecrease(addr, addr, datagen.Units(100))
	require.NoError(t, err)
	require.NoError(t, env.cover.PushReport(idleReport(thor.MaxErasCovered, addr)))
	require.NoError(t, env.bank.Debit(thor.CoverPoolAddress, datagen.Units(1)))

	res, err := env.cover.ExecuteScheduledDecrease(addr)
	require.NoError(t, err)
	assert.Equal(t, Deferred, res.Status)

	require.NoError(t, env.cover.CancelDecrease(addr, addr))
	marked, err := env.cover.MemberNotPaid()
	require.NoError(t, err)
	assert.True(t, marked.IsZero())

	m, err := env.cover.Member(addr)
	require.NoError(t, err)
	assert.Nil(t, m.Decrease)
}

func TestPendingSettings(t *testing.T) {
	env := newTestEnv(t)
	addr := env.join(t, datagen.Units(1000))

	_, err := env.cover.SetCoverTypes(env.manager, addr, true, false)
	assert.True(t, reverts.IsUnauthorized(err))
	_, err = env.cover.SetCoverTypes(datagen.RandAddress(), datagen.RandAddress(), true, false)
	assert.True(t, reverts.IsUnauthorized(err))

	pending, err := env.cover.SetCoverTypes(addr, addr, true, false)
	require.NoError(t, err)
	assert.Equal(t, thor.MaxErasCovered, pending.EffectiveEra)

	pending, err = env.cover.SetMaxCoveredDelegation(addr, addr, datagen.Units(100))
	require.NoError(t, err)
	assert.True(t, pending.ZeroPointsCover)
	assert.Equal(t, datagen.Units(100), pending.MaxCoveredDelegation)

	delegator := datagen.RandAddress()
	delegation := report.Delegation{Owner: delegator, Amount: datagen.Units(1000)}

	// the old settings offer no cover
	require.NoError(t, env.cover.PushReport(zeroPointsReport(pending.EffectiveEra-1, addr, delegation)))
	owed, err := env.cover.Owed(delegator)
	require.NoError(t, err)
	assert.Equal(t, 0, owed.Sign())

	require.NoError(t, env.cover.PushReport(zeroPointsReport(pending.EffectiveEra, addr, delegation)))
	owed, err = env.cover.Owed(delegator)
	require.NoError(t, err)
	assert.Equal(t, claimOf(datagen.Units(100)), owed)

	m, err := env.cover.Member(addr)
	require.NoError(t, err)
	assert.Nil(t, m.Pending)
	assert.True(t, m.ZeroPointsCover)
	assert.False(t, m.ActiveSetCover)
}

func TestSetCoverTypesNotMember(t *testing.T) {
	env := newTestEnv(t)
	addr := datagen.RandAddress()
	_, err := env.cover.SetCoverTypes(addr, addr, true, true)
	assert.ErrorIs(t, err, errNotMember)
	_, err = env.cover.SetMaxCoveredDelegation(addr, addr, big.NewInt(-1))
	assert.ErrorIs(t, err, errInvalidAmount)
}
