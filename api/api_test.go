// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakecover/api"
	"github.com/vechain/stakecover/api/cover"
	"github.com/vechain/stakecover/api/oracle"
	"github.com/vechain/stakecover/api/params"
	"github.com/vechain/stakecover/builtin/oracle/report"
	"github.com/vechain/stakecover/eventdb"
	"github.com/vechain/stakecover/health"
	"github.com/vechain/stakecover/lvldb"
	"github.com/vechain/stakecover/pool"
	"github.com/vechain/stakecover/test/datagen"
	"github.com/vechain/stakecover/thor"

	oracleBuiltin "github.com/vechain/stakecover/builtin/oracle"
)

type testServer struct {
	*httptest.Server
	manager thor.Address
	member  thor.Address
	oracles []pool.OracleMember
}

func newTestServer(t *testing.T) *testServer {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	eventDB, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { eventDB.Close() })

	ts := &testServer{
		manager: datagen.RandAddress(),
		member:  datagen.RandAddress(),
	}
	for range 2 {
		ts.oracles = append(ts.oracles, pool.OracleMember{Member: datagen.RandAddress(), Reporter: datagen.RandAddress()})
	}
	gen := pool.DefaultGenesis()
	gen.Roles["member manager"] = []thor.Address{ts.manager}
	gen.Whitelist = []thor.Address{ts.member}
	gen.Params["min-deposit"] = datagen.Units(1)
	gen.Oracle.Threshold = 2
	gen.Oracle.Members = ts.oracles
	gen.Balances = []pool.Allocation{{Address: ts.member, Amount: datagen.Units(100)}}

	h := health.New(0)
	p := pool.New(db, pool.Options{
		Oracle:   oracleBuiltin.Config{BootstrapEras: gen.Oracle.BootstrapEras},
		Events:   eventDB,
		Observer: h,
	})
	require.NoError(t, p.ApplyGenesis(gen))

	ts.Server = httptest.NewServer(api.New(p, eventDB, h, api.Options{EventsLimit: 5, EnableMetrics: true}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body, out any) int {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if out != nil && res.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(data, out), string(data))
	}
	return res.StatusCode
}

func TestDeposit(t *testing.T) {
	ts := newTestServer(t)
	path := "/cover/members/" + ts.member.String()

	code := ts.do(t, http.MethodPost, path+"/deposit", map[string]any{"caller": datagen.RandAddress(), "amount": "10000000000000000000"}, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code = ts.do(t, http.MethodPost, path+"/deposit", map[string]any{"caller": ts.member, "amount": "0"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code = ts.do(t, http.MethodPost, path+"/deposit", map[string]any{"caller": ts.member, "amount": "not a number"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	var m cover.Member
	code = ts.do(t, http.MethodPost, path+"/deposit", map[string]any{"caller": ts.member, "amount": "0x8ac7230489e80000"}, &m)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, m.Joined)
	assert.Equal(t, datagen.Units(10), m.Deposit.Big())
	assert.Equal(t, thor.MaxErasCovered, m.ErasCovered)

	var summary cover.Summary
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/cover", nil, &summary))
	assert.Equal(t, datagen.Units(10), summary.DepositTotal.Big())
	assert.Nil(t, summary.DelegatorNotPaid)

	var members []cover.Member
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/cover/members", nil, &members))
	require.Len(t, members, 1)
	assert.Equal(t, ts.member, members[0].Address)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/cover/members/0x1234", nil, nil))
}

func TestReportThroughQuorum(t *testing.T) {
	ts := newTestServer(t)

	rep := &report.Report{
		EraID:    3,
		Finalize: true,
		Collators: []report.Collator{{
			Address:          datagen.RandAddress(),
			Points:           20,
			Active:           true,
			DelegationsTotal: big.NewInt(0),
		}},
	}
	// the member's reporter must sign
	code := ts.do(t, http.MethodPost, "/oracle/reports", map[string]any{
		"caller": ts.oracles[0].Member, "member": ts.oracles[0].Member, "nonce": 0, "report": rep,
	}, nil)
	assert.Equal(t, http.StatusForbidden, code)

	var out oracle.Outcome
	for i, m := range ts.oracles {
		code := ts.do(t, http.MethodPost, "/oracle/reports", map[string]any{
			"caller": m.Reporter, "member": m.Member, "nonce": 0, "report": rep,
		}, &out)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, uint32(i+1), out.Votes)
	}
	assert.True(t, out.Finalized)

	var c oracle.Consensus
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/oracle", nil, &c))
	assert.Equal(t, uint32(3), c.EraID)
	assert.Equal(t, uint64(1), c.Nonce)

	var relay oracle.RelayStatus
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/oracle/relay", nil, &relay))
	assert.True(t, relay.Pushed)
	assert.Equal(t, uint32(3), relay.EraID)

	var status health.Status
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health", nil, &status))
	require.NotNil(t, status.ReportIngestion.Era)
	assert.Equal(t, uint32(3), *status.ReportIngestion.Era)

	var events []*eventdb.Event
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/events", map[string]any{
		"kinds": []string{pool.KindReportSubmitted, pool.KindReportFinalized},
	}, &events))
	require.Len(t, events, 3)
	assert.Equal(t, pool.KindReportFinalized, events[2].Kind)
	assert.Equal(t, uint32(3), events[2].Era)
}

func TestEventsLimit(t *testing.T) {
	ts := newTestServer(t)

	code := ts.do(t, http.MethodPost, "/events", map[string]any{"options": map[string]any{"offset": 0, "limit": 6}}, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code = ts.do(t, http.MethodPost, "/events", map[string]any{"range": map[string]any{"from": 2, "to": 1}}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	// genesis granted one role, the oracle members and whitelisted member add no more events
	var events []*eventdb.Event
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/events", map[string]any{}, &events))
	require.Len(t, events, 1)
	assert.Equal(t, pool.KindRoleGranted, events[0].Kind)
}

func TestParamsAndRoles(t *testing.T) {
	ts := newTestServer(t)

	var values map[string]string
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/params", nil, &values))
	assert.Equal(t, "1000000000000000000", values["min-deposit"])

	code := ts.do(t, http.MethodPost, "/params/min-payout", map[string]any{"caller": ts.member, "value": "5"}, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code = ts.do(t, http.MethodPost, "/params/no-such-param", map[string]any{"caller": ts.manager, "value": "5"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code = ts.do(t, http.MethodPost, "/params/min-payout", map[string]any{"caller": ts.manager, "value": "5"}, nil)
	assert.Equal(t, http.StatusOK, code)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/roles/nobody/grant", map[string]any{"caller": ts.manager}, nil))

	var acc params.Account
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/accounts/"+ts.manager.String(), nil, &acc))
	assert.Equal(t, []string{"member manager"}, acc.Roles)
	assert.Equal(t, 0, acc.Balance.Big().Sign())
}
