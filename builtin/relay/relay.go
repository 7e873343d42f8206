// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package relay forwards finalized report parts to their consumers, exactly once and in order.
package relay

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakecover/builtin/oracle/report"
	"github.com/vechain/stakecover/builtin/reverts"
	"github.com/vechain/stakecover/builtin/solidity"
	"github.com/vechain/stakecover/log"
	"github.com/vechain/stakecover/thor"
)

var logger = log.WithContext("pkg", "relay")

var (
	slotStatus = thor.BytesToBytes32([]byte("relay-status"))

	errStalePush    = reverts.New("stale push")
	errEraInThePast = reverts.New("era in the past")
)

// Consumer handles a relayed report.
type Consumer interface {
	PushReport(r *report.Report) error
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(r *report.Report) error

func (f ConsumerFunc) PushReport(r *report.Report) error { return f(r) }

// Status is the last relayed position.
type Status struct {
	Pushed bool // whether any push happened, nonce 0 is a valid first nonce
	Nonce  uint64
	EraID  uint32
}

// Relay implements the report relay.
type Relay struct {
	status    *solidity.Raw[*Status]
	consumers []Consumer
}

func New(sctx *solidity.Context, consumers ...Consumer) *Relay {
	return &Relay{
		status:    solidity.NewRaw[*Status](sctx, slotStatus),
		consumers: consumers,
	}
}

// Register appends a consumer, consumers are called in registration order.
func (r *Relay) Register(c Consumer) {
	r.consumers = append(r.consumers, c)
}

// Status returns the last relayed position.
func (r *Relay) Status() (*Status, error) {
	s, err := r.status.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get relay status")
	}
	return s, nil
}

// Push relays the report to every consumer. The first consumer error aborts the push.
func (r *Relay) Push(nonce uint64, rep *report.Report) error {
	s, err := r.Status()
	if err != nil {
		return err
	}
	if s.Pushed && nonce <= s.Nonce {
		return errStalePush
	}
	if rep.EraID < s.EraID {
		return errEraInThePast
	}

	s.Pushed = true
	s.Nonce = nonce
	s.EraID = rep.EraID
	if err := r.status.Set(s); err != nil {
		return errors.Wrap(err, "failed to set relay status")
	}

	for i, c := range r.consumers {
		if err := c.PushReport(rep); err != nil {
			logger.Debug("consumer rejected report", "consumer", i, "nonce", nonce, "era", rep.EraID, "err", err)
			return err
		}
	}
	logger.Debug("relayed report", "nonce", nonce, "era", rep.EraID, "consumers", len(r.consumers))
	return nil
}
