// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakecover/api/utils"
	"github.com/vechain/stakecover/builtin/roles"
	"github.com/vechain/stakecover/pool"
	"github.com/vechain/stakecover/thor"
)

type Params struct {
	pool *pool.Pool
}

func New(p *pool.Pool) *Params {
	return &Params{p}
}

type SetParamRequest struct {
	Caller thor.Address  `json:"caller"`
	Value  *utils.Amount `json:"value"`
}

type RoleRequest struct {
	Caller  thor.Address `json:"caller"`
	Account thor.Address `json:"account"`
}

type OperatorRequest struct {
	Caller   thor.Address `json:"caller"`
	Operator thor.Address `json:"operator"`
}

type Account struct {
	Address thor.Address  `json:"address"`
	Balance *utils.Amount `json:"balance"`
	Roles   []string      `json:"roles"`
}

func parseBody(req *http.Request, v any) error {
	if err := utils.ParseJSON(req.Body, v); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return nil
}

func parseRole(req *http.Request) (thor.Bytes32, error) {
	name := mux.Vars(req)["role"]
	role, ok := roles.ParseRole(name)
	if !ok {
		return thor.Bytes32{}, utils.NotFound(errors.Errorf("unknown role %q", name))
	}
	return role, nil
}

func (p *Params) handleGetParams(w http.ResponseWriter, _ *http.Request) error {
	values, err := p.pool.Params()
	if err != nil {
		return err
	}
	res := make(map[string]*utils.Amount, len(values))
	for name, v := range values {
		res[name] = utils.NewAmount(v)
	}
	return utils.WriteJSON(w, res)
}

func (p *Params) handleSetParam(w http.ResponseWriter, req *http.Request) error {
	name := mux.Vars(req)["name"]
	var body SetParamRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	if err := p.pool.SetParam(body.Caller, name, body.Value.Big()); err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, map[string]*utils.Amount{name: body.Value})
}

func (p *Params) handleGrantRole(w http.ResponseWriter, req *http.Request) error {
	role, err := parseRole(req)
	if err != nil {
		return err
	}
	var body RoleRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	if err := p.pool.GrantRole(body.Caller, role, body.Account); err != nil {
		return utils.Revert(err)
	}
	return p.writeAccount(w, body.Account)
}

func (p *Params) handleRevokeRole(w http.ResponseWriter, req *http.Request) error {
	role, err := parseRole(req)
	if err != nil {
		return err
	}
	var body RoleRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	if err := p.pool.RevokeRole(body.Caller, role, body.Account); err != nil {
		return utils.Revert(err)
	}
	return p.writeAccount(w, body.Account)
}

func (p *Params) handleSetOperator(w http.ResponseWriter, req *http.Request) error {
	var body OperatorRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	if err := p.pool.SetOperator(body.Caller, body.Operator); err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, &body)
}

func (p *Params) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.Address(req, "address")
	if err != nil {
		return err
	}
	return p.writeAccount(w, addr)
}

func (p *Params) writeAccount(w http.ResponseWriter, addr thor.Address) error {
	bal, err := p.pool.Balance(addr)
	if err != nil {
		return err
	}
	acc := &Account{Address: addr, Balance: utils.NewAmount(bal), Roles: []string{}}
	for _, role := range roles.All {
		ok, err := p.pool.HasRole(role, addr)
		if err != nil {
			return err
		}
		if ok {
			acc.Roles = append(acc.Roles, roles.Name(role))
		}
	}
	return utils.WriteJSON(w, acc)
}

// Mount registers the governance routes under /params, /roles, /operators and /accounts of root.
func (p *Params) Mount(root *mux.Router) {
	root.Path("/params").
		Methods(http.MethodGet).
		Name("GET /params").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetParams))
	root.Path("/params/{name}").
		Methods(http.MethodPost).
		Name("POST /params/{name}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleSetParam))
	root.Path("/roles/{role}/grant").
		Methods(http.MethodPost).
		Name("POST /roles/{role}/grant").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGrantRole))
	root.Path("/roles/{role}/revoke").
		Methods(http.MethodPost).
		Name("POST /roles/{role}/revoke").
		HandlerFunc(utils.WrapHandlerFunc(p.handleRevokeRole))
	root.Path("/operators").
		Methods(http.MethodPost).
		Name("POST /operators").
		HandlerFunc(utils.WrapHandlerFunc(p.handleSetOperator))
	root.Path("/accounts/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetAccount))
}
