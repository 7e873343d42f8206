// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakecover/builtin/oracle/report"
	"github.com/vechain/stakecover/builtin/roles"
	"github.com/vechain/stakecover/builtin/solidity"
	"github.com/vechain/stakecover/lvldb"
	"github.com/vechain/stakecover/state"
	"github.com/vechain/stakecover/test/datagen"
	"github.com/vechain/stakecover/thor"
)

type pushed struct {
	nonce  uint64
	report *report.Report
}

type testForwarder struct {
	pushes []pushed
	err    error
}

func (f *testForwarder) Push(nonce uint64, r *report.Report) error {
	if f.err != nil {
		return f.err
	}
	f.pushes = append(f.pushes, pushed{nonce, r})
	return nil
}

type testMembers map[thor.Address]bool

func (m testMembers) IsMember(addr thor.Address) (bool, error) {
	return m[addr], nil
}

type testEnv struct {
	oracle    *Oracle
	registry  *roles.Registry
	forwarder *testForwarder
	members   testMembers
	admin     thor.Address
}

func newTestEnv(t *testing.T, cfg Config, threshold uint32) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.New(db)

	registry := roles.New(solidity.NewContext(thor.AuthorityAddress, st))
	admin := datagen.RandAddress()
	require.NoError(t, registry.Grant(roles.OracleManager, admin))

	env := &testEnv{
		registry:  registry,
		forwarder: &testForwarder{},
		members:   make(testMembers),
		admin:     admin,
	}
	env.oracle = New(solidity.NewContext(thor.OracleAddress, st), cfg, registry, registry, env.members, env.forwarder)
	require.NoError(t, env.oracle.Init(threshold, thor.Address{}))
	return env
}

// addMembers registers n members with fresh reporters through the bootstrap path.
func (e *testEnv) addMembers(t *testing.T, n int) (members, reporters []thor.Address) {
	for range n {
		m, r := datagen.RandAddress(), datagen.RandAddress()
		require.NoError(t, e.oracle.AddOracleMember(e.admin, m, r))
		e.members[m] = true
		members = append(members, m)
		reporters = append(reporters, r)
	}
	return
}

func newReport(era uint32, finalize bool, points uint32) *report.Report {
	return &report.Report{
		EraID:    era,
		Finalize: finalize,
		Collators: []report.Collator{{
			Address:          thor.BytesToAddress([]byte("collator")),
			Points:           points,
			Active:           true,
			DelegationsTotal: datagen.Units(10),
		}},
	}
}

var errConsumer = errors.New("consumer failed")
