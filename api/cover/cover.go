// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cover

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakecover/api/utils"
	"github.com/vechain/stakecover/builtin/cover"
	"github.com/vechain/stakecover/pool"
	"github.com/vechain/stakecover/thor"
)

type Cover struct {
	pool *pool.Pool
}

func New(p *pool.Pool) *Cover {
	return &Cover{p}
}

func (c *Cover) member(addr thor.Address) (*Member, error) {
	m, err := c.pool.Member(addr)
	if err != nil {
		return nil, err
	}
	eras, err := c.pool.ErasCovered(addr)
	if err != nil {
		return nil, err
	}
	return convertMember(addr, m, eras), nil
}

func (c *Cover) writeMember(w http.ResponseWriter, addr thor.Address) error {
	m, err := c.member(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, m)
}

func parseBody(req *http.Request, v any) error {
	if err := utils.ParseJSON(req.Body, v); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return nil
}

func (c *Cover) handleGetSummary(w http.ResponseWriter, _ *http.Request) error {
	s, err := c.pool.Summary()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertSummary(s))
}

func (c *Cover) handleGetMembers(w http.ResponseWriter, _ *http.Request) error {
	addrs, err := c.pool.Members()
	if err != nil {
		return err
	}
	members := make([]*Member, 0, len(addrs))
	for _, addr := range addrs {
		m, err := c.member(addr)
		if err != nil {
			return err
		}
		members = append(members, m)
	}
	return utils.WriteJSON(w, members)
}

func (c *Cover) handleGetMember(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.Address(req, "address")
	if err != nil {
		return err
	}
	return c.writeMember(w, addr)
}

func (c *Cover) handleGetOwed(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.Address(req, "address")
	if err != nil {
		return err
	}
	owed, err := c.pool.Owed(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Owed{Delegator: addr, Amount: utils.NewAmount(owed)})
}

func (c *Cover) handleWhitelist(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.Address(req, "address")
	if err != nil {
		return err
	}
	var body WhitelistRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	if err := c.pool.Whitelist(body.Caller, addr, body.Whitelisted); err != nil {
		return utils.Revert(err)
	}
	return c.writeMember(w, addr)
}

func (c *Cover) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.Address(req, "address")
	if err != nil {
		return err
	}
	var body AmountRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	if err := c.pool.Deposit(body.Caller, addr, body.Amount.Big()); err != nil {
		return utils.Revert(err)
	}
	return c.writeMember(w, addr)
}

func (c *Cover) handleScheduleDecrease(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.Address(req, "address")
	if err != nil {
		return err
	}
	var body AmountRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	d, err := c.pool.ScheduleDecrease(body.Caller, addr, body.Amount.Big())
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, convertDecrease(d))
}

func (c *Cover) handleCancelDecrease(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.Address(req, "address")
	if err != nil {
		return err
	}
	var body CallerRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	if err := c.pool.CancelDecrease(body.Caller, addr); err != nil {
		return utils.Revert(err)
	}
	return c.writeMember(w, addr)
}

func (c *Cover) handleExecuteDecrease(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.Address(req, "address")
	if err != nil {
		return err
	}
	res, err := c.pool.ExecuteScheduledDecrease(addr)
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, convertResult(*res))
}

func (c *Cover) handleSetCoverTypes(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.Address(req, "address")
	if err != nil {
		return err
	}
	var body CoverTypesRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	s, err := c.pool.SetCoverTypes(body.Caller, addr, body.ZeroPointsCover, body.ActiveSetCover)
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, convertPending(s))
}

func (c *Cover) handleSetMaxCovered(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.Address(req, "address")
	if err != nil {
		return err
	}
	var body MaxCoveredRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	s, err := c.pool.SetMaxCoveredDelegation(body.Caller, addr, body.Limit.Big())
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, convertPending(s))
}

func (c *Cover) handlePayOut(w http.ResponseWriter, req *http.Request) error {
	var body PayoutRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	if len(body.Delegators) == 0 {
		return utils.BadRequest(errors.New("delegators: empty"))
	}
	payouts, err := c.pool.PayOutCover(body.Delegators)
	if err != nil {
		return utils.Revert(err)
	}
	res := make([]*Payout, 0, len(payouts))
	for _, p := range payouts {
		res = append(res, &Payout{
			Delegator: p.Delegator,
			Amount:    utils.NewAmount(p.Amount),
			Result:    convertResult(p.Result),
		})
	}
	return utils.WriteJSON(w, res)
}

func (c *Cover) handleInvoice(w http.ResponseWriter, _ *http.Request) error {
	inv, err := c.pool.InvoiceMembers()
	if err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, convertInvoice(inv))
}

func (c *Cover) handleWithdrawRewards(w http.ResponseWriter, req *http.Request) error {
	var body WithdrawRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	if err := c.pool.WithdrawRewards(body.Caller, body.Amount.Big(), body.To); err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, &Owed{Delegator: body.To, Amount: body.Amount})
}

func convertInvoice(inv *cover.Invoice) *Invoice {
	return &Invoice{
		Era:       inv.Era,
		Fee:       utils.NewAmount(inv.Fee),
		Collected: utils.NewAmount(inv.Collected),
		Share:     utils.NewAmount(inv.Share),
		Charged:   inv.Charged,
		Rewarded:  inv.Rewarded,
	}
}

func (c *Cover) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /cover").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetSummary))
	sub.Path("/members").
		Methods(http.MethodGet).
		Name("GET /cover/members").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetMembers))
	sub.Path("/members/{address}").
		Methods(http.MethodGet).
		Name("GET /cover/members/{address}").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetMember))
	sub.Path("/members/{address}/whitelist").
		Methods(http.MethodPost).
		Name("POST /cover/members/{address}/whitelist").
		HandlerFunc(utils.WrapHandlerFunc(c.handleWhitelist))
	sub.Path("/members/{address}/deposit").
		Methods(http.MethodPost).
		Name("POST /cover/members/{address}/deposit").
		HandlerFunc(utils.WrapHandlerFunc(c.handleDeposit))
	sub.Path("/members/{address}/decrease").
		Methods(http.MethodPost).
		Name("POST /cover/members/{address}/decrease").
		HandlerFunc(utils.WrapHandlerFunc(c.handleScheduleDecrease))
	sub.Path("/members/{address}/decrease").
		Methods(http.MethodDelete).
		Name("DELETE /cover/members/{address}/decrease").
		HandlerFunc(utils.WrapHandlerFunc(c.handleCancelDecrease))
	sub.Path("/members/{address}/decrease/execute").
		Methods(http.MethodPost).
		Name("POST /cover/members/{address}/decrease/execute").
		HandlerFunc(utils.WrapHandlerFunc(c.handleExecuteDecrease))
	sub.Path("/members/{address}/cover-types").
		Methods(http.MethodPost).
		Name("POST /cover/members/{address}/cover-types").
		HandlerFunc(utils.WrapHandlerFunc(c.handleSetCoverTypes))
	sub.Path("/members/{address}/max-covered").
		Methods(http.MethodPost).
		Name("POST /cover/members/{address}/max-covered").
		HandlerFunc(utils.WrapHandlerFunc(c.handleSetMaxCovered))
	sub.Path("/owed/{address}").
		Methods(http.MethodGet).
		Name("GET /cover/owed/{address}").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetOwed))
	sub.Path("/payouts").
		Methods(http.MethodPost).
		Name("POST /cover/payouts").
		HandlerFunc(utils.WrapHandlerFunc(c.handlePayOut))
	sub.Path("/invoice").
		Methods(http.MethodPost).
		Name("POST /cover/invoice").
		HandlerFunc(utils.WrapHandlerFunc(c.handleInvoice))
	sub.Path("/rewards/withdraw").
		Methods(http.MethodPost).
		Name("POST /cover/rewards/withdraw").
		HandlerFunc(utils.WrapHandlerFunc(c.handleWithdrawRewards))
}
