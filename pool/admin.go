// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakecover/builtin/params"
	"github.com/vechain/stakecover/builtin/reverts"
	"github.com/vechain/stakecover/builtin/roles"
	"github.com/vechain/stakecover/thor"
)

var errUnknownParam = reverts.New("unknown param")

type roleChange struct {
	Role    string       `json:"role"`
	Account thor.Address `json:"account"`
}

// GrantRole grants role to account. The caller must be an admin.
func (p *Pool) GrantRole(caller thor.Address, role thor.Bytes32, account thor.Address) error {
	return p.exec("grantRole", func() error {
		if err := roles.Require(p.registry, roles.Admin, caller); err != nil {
			return err
		}
		if err := p.registry.Grant(role, account); err != nil {
			return err
		}
		p.emit(KindRoleGranted, account, roleChange{roles.Name(role), account})
		return nil
	})
}

// RevokeRole revokes role from account. The caller must be an admin.
func (p *Pool) RevokeRole(caller thor.Address, role thor.Bytes32, account thor.Address) error {
	return p.exec("revokeRole", func() error {
		if err := roles.Require(p.registry, roles.Admin, caller); err != nil {
			return err
		}
		p.registry.Revoke(role, account)
		p.emit(KindRoleRevoked, account, roleChange{roles.Name(role), account})
		return nil
	})
}

// SetOperator sets the operator acting on behalf of caller, the zero address removes it.
func (p *Pool) SetOperator(caller, operator thor.Address) error {
	return p.exec("setOperator", func() error {
		if err := p.registry.SetOperator(caller, operator); err != nil {
			return err
		}
		p.emit(KindOperatorSet, caller, map[string]thor.Address{"operator": operator})
		return nil
	})
}

// SetParam updates a governance parameter. The caller must be a member manager.
func (p *Pool) SetParam(caller thor.Address, name string, value *big.Int) error {
	return p.exec("setParam", func() error {
		if err := roles.Require(p.registry, roles.MemberManager, caller); err != nil {
			return err
		}
		key, ok := params.ParseKey(name)
		if !ok {
			return errUnknownParam
		}
		if value.Sign() < 0 {
			return reverts.New("negative param")
		}
		if err := p.params.Set(key, value); err != nil {
			return err
		}
		p.emit(KindParamSet, caller, map[string]any{"name": name, "value": value})
		return nil
	})
}

// Params returns every governance parameter by name.
func (p *Pool) Params() (map[string]*big.Int, error) {
	values := make(map[string]*big.Int, len(params.Keys))
	err := p.view(func() error {
		for _, key := range params.Keys {
			v, err := p.params.Get(key)
			if err != nil {
				return err
			}
			values[params.KeyName(key)] = v
		}
		return nil
	})
	return values, err
}

// HasRole tells whether account holds role.
func (p *Pool) HasRole(role thor.Bytes32, account thor.Address) (ok bool, err error) {
	err = p.view(func() error {
		ok, err = p.registry.HasRole(role, account)
		return err
	})
	return
}

// Balance returns the spendable balance of addr.
func (p *Pool) Balance(addr thor.Address) (bal *big.Int, err error) {
	err = p.view(func() error {
		bal, err = p.bank.Balance(addr)
		return err
	})
	return
}
