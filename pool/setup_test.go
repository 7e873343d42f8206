// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/stakecover/builtin/oracle"
	"github.com/vechain/stakecover/builtin/oracle/report"
	"github.com/vechain/stakecover/eventdb"
	"github.com/vechain/stakecover/health"
	"github.com/vechain/stakecover/lvldb"
	"github.com/vechain/stakecover/test/datagen"
	"github.com/vechain/stakecover/thor"
)

type testEnv struct {
	pool     *Pool
	events   *eventdb.EventDB
	health   *health.Health
	admin    thor.Address
	manager  thor.Address
	staking  thor.Address
	operator thor.Address
	member   thor.Address
	oracles  []OracleMember
	genesis  *Genesis
}

func testGenesis(env *testEnv) *Genesis {
	gen := DefaultGenesis()
	gen.Roles = map[string][]thor.Address{
		"admin":           {env.admin},
		"member manager":  {env.manager},
		"staking manager": {env.staking},
		"pool operator":   {env.operator},
	}
	gen.Whitelist = []thor.Address{env.member}
	for name, value := range map[string]*big.Int{
		"min-deposit":                      datagen.Units(1),
		"max-deposit-total":                datagen.Units(10_000),
		"stake-unit-cover":                 big.NewInt(2e13),
		"max-era-member-payout":            datagen.Units(100),
		"min-payout":                       big.NewInt(1),
		"member-fee":                       datagen.Units(1),
		"invoice-interval":                 big.NewInt(10),
		"eras-between-forced-undelegation": big.NewInt(5),
		"max-percent-staked":               big.NewInt(50),
		"unbonding-delay":                  big.NewInt(4),
	} {
		gen.Params[name] = value
	}
	gen.Oracle = OracleGenesis{
		Threshold:     2,
		BootstrapEras: 100,
		Members:       env.oracles,
	}
	gen.Balances = []Allocation{{Address: env.member, Amount: datagen.Units(100)}}
	return gen
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	events, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { events.Close() })

	env := &testEnv{
		events:   events,
		health:   health.New(0),
		admin:    datagen.RandAddress(),
		manager:  datagen.RandAddress(),
		staking:  datagen.RandAddress(),
		operator: datagen.RandAddress(),
		member:   datagen.RandAddress(),
	}
	for range 2 {
		env.oracles = append(env.oracles, OracleMember{Member: datagen.RandAddress(), Reporter: datagen.RandAddress()})
	}
	env.genesis = testGenesis(env)
	env.pool = New(db, Options{
		Oracle:   oracle.Config{BootstrapEras: env.genesis.Oracle.BootstrapEras},
		Events:   events,
		Observer: env.health,
	})
	require.NoError(t, env.pool.ApplyGenesis(env.genesis))
	return env
}

// relay makes every oracle member vote for rep and expects the last vote to finalize it.
func (e *testEnv) relay(t *testing.T, rep *report.Report) {
	c, err := e.pool.Consensus()
	require.NoError(t, err)
	for i, m := range e.oracles {
		out, err := e.pool.ReportEraPart(m.Reporter, m.Member, rep.EraID, c.Nonce, rep)
		require.NoError(t, err)
		require.Equal(t, i == len(e.oracles)-1, out.Finalized)
	}
}

func (e *testEnv) balance(t *testing.T, addr thor.Address) *big.Int {
	bal, err := e.pool.Balance(addr)
	require.NoError(t, err)
	return bal
}

func (e *testEnv) kinds(t *testing.T, kinds ...string) []*eventdb.Event {
	events, err := e.events.Filter(&eventdb.Filter{Kinds: kinds})
	require.NoError(t, err)
	return events
}

func collatorReport(era uint32, collator thor.Address, points uint32, delegations ...report.Delegation) *report.Report {
	total := new(big.Int)
	for _, d := range delegations {
		total.Add(total, d.Amount)
	}
	return &report.Report{
		EraID:    era,
		Finalize: true,
		Collators: []report.Collator{{
			Address:          collator,
			Points:           points,
			Active:           true,
			DelegationsTotal: total,
			TopDelegations:   delegations,
		}},
	}
}
