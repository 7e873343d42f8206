// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakecover/api/utils"
	"github.com/vechain/stakecover/pool"
)

type Oracle struct {
	pool *pool.Pool
}

func New(p *pool.Pool) *Oracle {
	return &Oracle{p}
}

func parseBody(req *http.Request, v any) error {
	if err := utils.ParseJSON(req.Body, v); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return nil
}

func (o *Oracle) handleGetConsensus(w http.ResponseWriter, _ *http.Request) error {
	c, err := o.pool.Consensus()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertConsensus(c))
}

func (o *Oracle) handleGetMembers(w http.ResponseWriter, _ *http.Request) error {
	members, err := o.pool.OracleMembers()
	if err != nil {
		return err
	}
	if members == nil {
		members = []pool.OracleMember{}
	}
	return utils.WriteJSON(w, members)
}

func (o *Oracle) handleGetRelay(w http.ResponseWriter, _ *http.Request) error {
	s, err := o.pool.RelayStatus()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &RelayStatus{Pushed: s.Pushed, Nonce: s.Nonce, EraID: s.EraID})
}

func (o *Oracle) handleAddMember(w http.ResponseWriter, req *http.Request) error {
	var body MemberRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	if err := o.pool.AddOracleMember(body.Caller, body.Member, body.Reporter); err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, &pool.OracleMember{Member: body.Member, Reporter: body.Reporter})
}

func (o *Oracle) handleRegisterMember(w http.ResponseWriter, req *http.Request) error {
	var body MemberRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	if err := o.pool.RegisterAsOracleMember(body.Caller, body.Member, body.Reporter); err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, &pool.OracleMember{Member: body.Member, Reporter: body.Reporter})
}

func (o *Oracle) handleRemoveMember(w http.ResponseWriter, req *http.Request) error {
	member, err := utils.Address(req, "member")
	if err != nil {
		return err
	}
	var body CallerRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	if err := o.pool.RemoveOracleMember(body.Caller, member); err != nil {
		return utils.Revert(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (o *Oracle) handleReport(w http.ResponseWriter, req *http.Request) error {
	var body ReportRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	if body.Report == nil {
		return utils.BadRequest(errors.New("report: missing"))
	}
	out, err := o.pool.ReportEraPart(body.Caller, body.Member, body.Report.EraID, body.Nonce, body.Report)
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, &Outcome{
		Nonce:     out.Nonce,
		Hash:      out.Hash,
		Votes:     out.Votes,
		Finalized: out.Finalized,
	})
}

func (o *Oracle) handleSetQuorum(w http.ResponseWriter, req *http.Request) error {
	var body QuorumRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	finalized, err := o.pool.SetQuorum(body.Caller, body.Threshold)
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, &QuorumResponse{Threshold: body.Threshold, Finalized: finalized})
}

func (o *Oracle) handleSetVeto(w http.ResponseWriter, req *http.Request) error {
	var body VetoRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	if err := o.pool.SetVeto(body.Caller, body.Member); err != nil {
		return utils.Revert(err)
	}
	return o.handleGetConsensus(w, req)
}

func (o *Oracle) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /oracle").
		HandlerFunc(utils.WrapHandlerFunc(o.handleGetConsensus))
	sub.Path("/relay").
		Methods(http.MethodGet).
		Name("GET /oracle/relay").
		HandlerFunc(utils.WrapHandlerFunc(o.handleGetRelay))
	sub.Path("/members").
		Methods(http.MethodGet).
		Name("GET /oracle/members").
		HandlerFunc(utils.WrapHandlerFunc(o.handleGetMembers))
	sub.Path("/members").
		Methods(http.MethodPost).
		Name("POST /oracle/members").
		HandlerFunc(utils.WrapHandlerFunc(o.handleAddMember))
	sub.Path("/members/register").
		Methods(http.MethodPost).
		Name("POST /oracle/members/register").
		HandlerFunc(utils.WrapHandlerFunc(o.handleRegisterMember))
	sub.Path("/members/{member}").
		Methods(http.MethodDelete).
		Name("DELETE /oracle/members/{member}").
		HandlerFunc(utils.WrapHandlerFunc(o.handleRemoveMember))
	sub.Path("/reports").
		Methods(http.MethodPost).
		Name("POST /oracle/reports").
		HandlerFunc(utils.WrapHandlerFunc(o.handleReport))
	sub.Path("/quorum").
		Methods(http.MethodPost).
		Name("POST /oracle/quorum").
		HandlerFunc(utils.WrapHandlerFunc(o.handleSetQuorum))
	sub.Path("/veto").
		Methods(http.MethodPost).
		Name("POST /oracle/veto").
		HandlerFunc(utils.WrapHandlerFunc(o.handleSetVeto))
}
