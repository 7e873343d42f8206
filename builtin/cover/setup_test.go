// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cover

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/stakecover/builtin/bank"
	"github.com/vechain/stakecover/builtin/oracle/report"
	"github.com/vechain/stakecover/builtin/params"
	"github.com/vechain/stakecover/builtin/roles"
	"github.com/vechain/stakecover/builtin/solidity"
	"github.com/vechain/stakecover/lvldb"
	"github.com/vechain/stakecover/state"
	"github.com/vechain/stakecover/test/datagen"
	"github.com/vechain/stakecover/thor"
)

// rate of 2e13 per unit, 0.00002 cover per staked unit and era
var testRate = big.NewInt(2e13)

type testReporters map[thor.Address]thor.Address

func (r testReporters) ReporterOf(member thor.Address) (thor.Address, error) {
	return r[member], nil
}

type testStaking struct {
	staked *big.Int
}

func (s *testStaking) StakedTotal() (*big.Int, error) {
	if s.staked == nil {
		return new(big.Int), nil
	}
	return s.staked, nil
}

type testEnv struct {
	cover     *Cover
	state     *state.State
	bank      *bank.StateBank
	params    *params.Params
	registry  *roles.Registry
	reporters testReporters
	staking   *testStaking
	manager   thor.Address
	operator  thor.Address
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.New(db)

	env := &testEnv{
		state:     st,
		bank:      bank.New(st),
		params:    params.New(solidity.NewContext(thor.ParamsAddress, st)),
		registry:  roles.New(solidity.NewContext(thor.AuthorityAddress, st)),
		reporters: make(testReporters),
		staking:   &testStaking{},
		manager:   datagen.RandAddress(),
		operator:  datagen.RandAddress(),
	}
	require.NoError(t, env.registry.Grant(roles.MemberManager, env.manager))
	require.NoError(t, env.registry.Grant(roles.PoolOperator, env.operator))

	for key, value := range map[thor.Bytes32]*big.Int{
		thor.KeyMinDeposit:         datagen.Units(1),
		thor.KeyMaxDepositTotal:    datagen.Units(10_000),
		thor.KeyStakeUnitCover:     testRate,
		thor.KeyMaxEraMemberPayout: datagen.Units(100),
		thor.KeyMinPayout:          big.NewInt(1),
		thor.KeyMemberFee:          datagen.Units(1),
		thor.KeyInvoiceInterval:    big.NewInt(10),
	} {
		require.NoError(t, env.params.Set(key, value))
	}

	env.cover = New(solidity.NewContext(thor.CoverPoolAddress, st), Deps{
		Params:    env.params,
		Bank:      env.bank,
		Auth:      env.registry,
		Operators: env.registry,
		Reporters: env.reporters,
		Staking:   env.staking,
	})
	return env
}

func (e *testEnv) fund(t *testing.T, addr thor.Address, amount *big.Int) {
	require.NoError(t, e.bank.Credit(addr, amount))
}

// join whitelists a fresh member and deposits amount on its behalf.
func (e *testEnv) join(t *testing.T, amount *big.Int) thor.Address {
	addr := datagen.RandAddress()
	e.fund(t, addr, amount)
	require.NoError(t, e.cover.Whitelist(e.manager, addr, true))
	require.NoError(t, e.cover.Deposit(addr, addr, amount))
	return addr
}

func (e *testEnv) balance(t *testing.T, addr thor.Address) *big.Int {
	bal, err := e.bank.Balance(addr)
	require.NoError(t, err)
	return bal
}

// enableCover schedules both cover types and pushes an idle report at their effective era.
func (e *testEnv) enableCover(t *testing.T, addr thor.Address) uint32 {
	pending, err := e.cover.SetCoverTypes(addr, addr, true, true)
	require.NoError(t, err)
	require.NoError(t, e.cover.PushReport(idleReport(pending.EffectiveEra, addr)))
	m, err := e.cover.Member(addr)
	require.NoError(t, err)
	require.Nil(t, m.Pending)
	return pending.EffectiveEra
}

func idleReport(era uint32, collator thor.Address) *report.Report {
	return &report.Report{
		EraID: era,
		Collators: []report.Collator{{
			Address:          collator,
			Points:           20,
			Active:           true,
			DelegationsTotal: new(big.Int),
		}},
	}
}

func zeroPointsReport(era uint32, collator thor.Address, delegations ...report.Delegation) *report.Report {
	total := new(big.Int)
	for _, d := range delegations {
		total.Add(total, d.Amount)
	}
	return &report.Report{
		EraID: era,
		Collators: []report.Collator{{
			Address:          collator,
			Points:           0,
			Active:           true,
			DelegationsTotal: total,
			TopDelegations:   delegations,
		}},
	}
}

// claimOf is the cover owed for a delegation of amount at testRate.
func claimOf(amount *big.Int) *big.Int {
	claim := new(big.Int).Mul(amount, testRate)
	return claim.Quo(claim, thor.Unit)
}
