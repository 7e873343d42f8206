// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/stakecover/builtin/bank"
	"github.com/vechain/stakecover/builtin/params"
	"github.com/vechain/stakecover/builtin/roles"
	"github.com/vechain/stakecover/builtin/solidity"
	"github.com/vechain/stakecover/lvldb"
	"github.com/vechain/stakecover/state"
	"github.com/vechain/stakecover/test/datagen"
	"github.com/vechain/stakecover/thor"
)

type testPool struct {
	bank             bank.Bank
	era              uint32
	deposits         *big.Int
	owed             *big.Int
	unpaidDecrease   *big.Int
	delegatorNotPaid thor.Address
	memberNotPaid    thor.Address
}

func (p *testPool) Era() (uint32, error) { return p.era, nil }

func (p *testPool) Spendable() (*big.Int, error) { return p.bank.Balance(thor.CoverPoolAddress) }

func (p *testPool) DepositTotal() (*big.Int, error) { return new(big.Int).Set(p.deposits), nil }

func (p *testPool) OwedTotal() (*big.Int, error) { return new(big.Int).Set(p.owed), nil }

func (p *testPool) DelegatorNotPaid() (thor.Address, error) { return p.delegatorNotPaid, nil }

func (p *testPool) MemberNotPaid() (thor.Address, error) { return p.memberNotPaid, nil }

func (p *testPool) UnpaidDecrease() (*big.Int, error) { return new(big.Int).Set(p.unpaidDecrease), nil }

type testEnv struct {
	ledger  *Ledger
	bank    *bank.StateBank
	params  *params.Params
	pool    *testPool
	manager thor.Address
}

const (
	testUnbondingDelay = 4
	testCooldown       = 5
)

func newTestEnv(t *testing.T) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.New(db)

	b := bank.New(st)
	registry := roles.New(solidity.NewContext(thor.AuthorityAddress, st))
	env := &testEnv{
		bank:   b,
		params: params.New(solidity.NewContext(thor.ParamsAddress, st)),
		pool: &testPool{
			bank:           b,
			deposits:       datagen.Units(100),
			owed:           new(big.Int),
			unpaidDecrease: new(big.Int),
		},
		manager: datagen.RandAddress(),
	}
	require.NoError(t, registry.Grant(roles.StakingManager, env.manager))
	require.NoError(t, b.Credit(thor.CoverPoolAddress, datagen.Units(100)))

	require.NoError(t, env.params.Set(thor.KeyMaxPercentStaked, big.NewInt(50)))
	require.NoError(t, env.params.Set(thor.KeyUnbondingDelay, big.NewInt(testUnbondingDelay)))
	require.NoError(t, env.params.Set(thor.KeyErasBetweenForcedUndelegation, big.NewInt(testCooldown)))

	env.ledger = New(solidity.NewContext(thor.DelegationAddress, st), Deps{
		Params:      env.params,
		Bank:        b,
		Auth:        registry,
		Pool:        env.pool,
		PoolAddress: thor.CoverPoolAddress,
	})
	return env
}

func (e *testEnv) balance(t *testing.T, addr thor.Address) *big.Int {
	bal, err := e.bank.Balance(addr)
	require.NoError(t, err)
	return bal
}

func (e *testEnv) staked(t *testing.T) *big.Int {
	staked, err := e.ledger.StakedTotal()
	require.NoError(t, err)
	return staked
}
