// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool composes the oracle, the relay, the cover engine and the delegation ledger
// over one owned store, and runs every exposed operation atomically.
package pool

import (
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/stakecover/builtin/bank"
	"github.com/vechain/stakecover/builtin/cover"
	"github.com/vechain/stakecover/builtin/delegation"
	"github.com/vechain/stakecover/builtin/oracle"
	"github.com/vechain/stakecover/builtin/oracle/report"
	"github.com/vechain/stakecover/builtin/params"
	"github.com/vechain/stakecover/builtin/relay"
	"github.com/vechain/stakecover/builtin/reverts"
	"github.com/vechain/stakecover/builtin/roles"
	"github.com/vechain/stakecover/builtin/solidity"
	"github.com/vechain/stakecover/eventdb"
	"github.com/vechain/stakecover/kv"
	"github.com/vechain/stakecover/log"
	"github.com/vechain/stakecover/state"
	"github.com/vechain/stakecover/thor"
)

var logger = log.WithContext("pkg", "pool")

// EventWriter persists the events of committed operations.
type EventWriter interface {
	Insert(events []*eventdb.Event) error
}

// Observer is notified after each committed operation.
type Observer interface {
	NewReport(era uint32)
	SetMarkers(delegator, member thor.Address)
}

// Options configure a pool.
type Options struct {
	Oracle   oracle.Config
	Events   EventWriter // optional
	Observer Observer    // optional
}

// Pool owns the ledger state. All methods are safe for concurrent use.
type Pool struct {
	lock  sync.Mutex
	state *state.State
	opts  Options

	registry *roles.Registry
	params   *params.Params
	bank     *bank.StateBank
	oracle   *oracle.Oracle
	relay    *relay.Relay
	cover    *cover.Cover
	ledger   *delegation.Ledger

	pending []*eventdb.Event
	reports []uint32
}

// New wires the components over store.
func New(store kv.Store, opts Options) *Pool {
	st := state.New(store)
	p := &Pool{
		state:    st,
		opts:     opts,
		registry: roles.New(solidity.NewContext(thor.AuthorityAddress, st)),
		params:   params.New(solidity.NewContext(thor.ParamsAddress, st)),
		bank:     bank.New(st),
	}

	p.cover = cover.New(solidity.NewContext(thor.CoverPoolAddress, st), cover.Deps{
		Params:    p.params,
		Bank:      p.bank,
		Auth:      p.registry,
		Operators: p.registry,
		Reporters: reporters{p},
		Staking:   staking{p},
	})
	p.ledger = delegation.New(solidity.NewContext(thor.DelegationAddress, st), delegation.Deps{
		Params:      p.params,
		Bank:        p.bank,
		Auth:        p.registry,
		Pool:        p.cover,
		PoolAddress: thor.CoverPoolAddress,
	})
	p.relay = relay.New(solidity.NewContext(thor.RelayAddress, st), p.cover, relay.ConsumerFunc(p.observeReport))
	p.oracle = oracle.New(solidity.NewContext(thor.OracleAddress, st), opts.Oracle, p.registry, p.registry, p.cover, p.relay)
	return p
}

// reporters and staking break the construction cycle between the engine and its peers.
type reporters struct{ p *Pool }

func (r reporters) ReporterOf(member thor.Address) (thor.Address, error) {
	return r.p.oracle.ReporterOf(member)
}

type staking struct{ p *Pool }

func (s staking) StakedTotal() (*big.Int, error) {
	return s.p.ledger.StakedTotal()
}

func (p *Pool) observeReport(r *report.Report) error {
	p.reports = append(p.reports, r.EraID)
	return nil
}

// exec runs fn atomically. Changes and events of a failed fn are discarded.
func (p *Pool) exec(op string, fn func() error) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	start := time.Now()
	rev := p.state.NewCheckpoint()
	err := fn()
	charges := p.cover.TakeCharges()
	if err != nil {
		p.state.RevertTo(rev)
		p.pending = nil
		p.reports = nil
		metricOps().AddWithLabel(1, map[string]string{"op": op, "result": resultLabel(err)})
		if !reverts.IsRevertErr(err) {
			logger.Error("operation failed", "op", op, "err", err)
		}
		return err
	}

	era, err := p.cover.Era()
	if err != nil {
		p.state.RevertTo(rev)
		p.pending = nil
		p.reports = nil
		return err
	}
	for _, c := range charges {
		p.emit(KindMemberCharged, c.Member, c)
	}
	p.stampEvents(era)

	if err := p.state.Commit(); err != nil {
		p.pending = nil
		p.reports = nil
		return errors.Wrap(err, "commit")
	}
	metricOps().AddWithLabel(1, map[string]string{"op": op, "result": "ok"})
	metricOpDuration().Observe(time.Since(start).Milliseconds())
	p.afterCommit()
	return nil
}

func resultLabel(err error) string {
	switch {
	case reverts.IsUnauthorized(err):
		return "unauthorized"
	case reverts.IsRevertErr(err):
		return "revert"
	default:
		return "error"
	}
}

func (p *Pool) afterCommit() {
	events, reports := p.pending, p.reports
	p.pending, p.reports = nil, nil

	if p.opts.Events != nil && len(events) > 0 {
		if err := p.opts.Events.Insert(events); err != nil {
			logger.Warn("failed to write events", "count", len(events), "err", err)
		}
	}

	delegator, err := p.cover.DelegatorNotPaid()
	if err != nil {
		logger.Warn("failed to read markers", "err", err)
		return
	}
	member, err := p.cover.MemberNotPaid()
	if err != nil {
		logger.Warn("failed to read markers", "err", err)
		return
	}
	p.updateGauges(delegator, member)

	if p.opts.Observer != nil {
		for _, era := range reports {
			p.opts.Observer.NewReport(era)
		}
		p.opts.Observer.SetMarkers(delegator, member)
	}
}

// view runs a read-only fn under the pool lock.
func (p *Pool) view(fn func() error) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	return fn()
}
