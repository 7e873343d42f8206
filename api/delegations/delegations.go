// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegations

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakecover/api/utils"
	"github.com/vechain/stakecover/builtin/delegation"
	"github.com/vechain/stakecover/pool"
	"github.com/vechain/stakecover/thor"
)

type Delegations struct {
	pool *pool.Pool
}

func New(p *pool.Pool) *Delegations {
	return &Delegations{p}
}

func parseBody(req *http.Request, v any) error {
	if err := utils.ParseJSON(req.Body, v); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return nil
}

func (d *Delegations) handleGetDelegations(w http.ResponseWriter, _ *http.Request) error {
	entries, err := d.pool.Delegations()
	if err != nil {
		return err
	}
	res := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		res = append(res, &Entry{Candidate: e.Candidate, Amount: utils.NewAmount(e.Amount)})
	}
	return utils.WriteJSON(w, res)
}

func (d *Delegations) handleGetRequests(w http.ResponseWriter, _ *http.Request) error {
	reqs, err := d.pool.Requests()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertRequests(reqs))
}

// bond serves both the first delegation to a candidate and later increases.
func (d *Delegations) bond(op func(caller, candidate thor.Address, amount *big.Int) error) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		candidate, err := utils.Address(req, "candidate")
		if err != nil {
			return err
		}
		var body AmountRequest
		if err := parseBody(req, &body); err != nil {
			return err
		}
		if err := op(body.Caller, candidate, body.Amount.Big()); err != nil {
			return utils.Revert(err)
		}
		amount, err := d.pool.Delegation(candidate)
		if err != nil {
			return err
		}
		return utils.WriteJSON(w, &Entry{Candidate: candidate, Amount: utils.NewAmount(amount)})
	}
}

func (d *Delegations) handleBondLess(w http.ResponseWriter, req *http.Request) error {
	candidate, err := utils.Address(req, "candidate")
	if err != nil {
		return err
	}
	var body AmountRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	r, err := d.pool.ScheduleBondLess(body.Caller, candidate, body.Amount.Big())
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, convertRequests([]*delegation.Request{r})[0])
}

func (d *Delegations) handleRevoke(w http.ResponseWriter, req *http.Request) error {
	candidate, err := utils.Address(req, "candidate")
	if err != nil {
		return err
	}
	var body CallerRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	r, err := d.pool.ScheduleRevoke(body.Caller, candidate)
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, convertRequests([]*delegation.Request{r})[0])
}

func (d *Delegations) handleForceRevoke(w http.ResponseWriter, _ *http.Request) error {
	reqs, err := d.pool.ForceScheduleRevoke()
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, convertRequests(reqs))
}

func (d *Delegations) handleExecute(w http.ResponseWriter, _ *http.Request) error {
	reqs, err := d.pool.ExecuteDelegationRequests()
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, convertRequests(reqs))
}

func (d *Delegations) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /delegations").
		HandlerFunc(utils.WrapHandlerFunc(d.handleGetDelegations))
	sub.Path("/requests").
		Methods(http.MethodGet).
		Name("GET /delegations/requests").
		HandlerFunc(utils.WrapHandlerFunc(d.handleGetRequests))
	sub.Path("/force-revoke").
		Methods(http.MethodPost).
		Name("POST /delegations/force-revoke").
		HandlerFunc(utils.WrapHandlerFunc(d.handleForceRevoke))
	sub.Path("/execute").
		Methods(http.MethodPost).
		Name("POST /delegations/execute").
		HandlerFunc(utils.WrapHandlerFunc(d.handleExecute))
	sub.Path("/{candidate}").
		Methods(http.MethodPost).
		Name("POST /delegations/{candidate}").
		HandlerFunc(utils.WrapHandlerFunc(d.bond(d.pool.Delegate)))
	sub.Path("/{candidate}/bond-more").
		Methods(http.MethodPost).
		Name("POST /delegations/{candidate}/bond-more").
		HandlerFunc(utils.WrapHandlerFunc(d.bond(d.pool.BondMore)))
	sub.Path("/{candidate}/bond-less").
		Methods(http.MethodPost).
		Name("POST /delegations/{candidate}/bond-less").
		HandlerFunc(utils.WrapHandlerFunc(d.handleBondLess))
	sub.Path("/{candidate}/revoke").
		Methods(http.MethodPost).
		Name("POST /delegations/{candidate}/revoke").
		HandlerFunc(utils.WrapHandlerFunc(d.handleRevoke))
}
