// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package roles

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakecover/builtin/solidity"
	"github.com/vechain/stakecover/log"
	"github.com/vechain/stakecover/thor"
)

var logger = log.WithContext("pkg", "roles")

var (
	slotGrants    = thor.BytesToBytes32([]byte("grants"))
	slotOperators = thor.BytesToBytes32([]byte("operators"))
	slotContracts = thor.BytesToBytes32([]byte("contracts"))
)

// Registry is the storage backed role and proxy registry.
type Registry struct {
	grants    *solidity.Mapping[thor.Bytes32, bool]
	operators *solidity.Mapping[thor.Address, thor.Address]
	contracts *solidity.Mapping[thor.Address, bool]
}

var (
	_ Authorizer = (*Registry)(nil)
	_ Operators  = (*Registry)(nil)
)

func New(sctx *solidity.Context) *Registry {
	return &Registry{
		grants:    solidity.NewMapping[thor.Bytes32, bool](sctx, slotGrants),
		operators: solidity.NewMapping[thor.Address, thor.Address](sctx, slotOperators),
		contracts: solidity.NewMapping[thor.Address, bool](sctx, slotContracts),
	}
}

func grantKey(role thor.Bytes32, addr thor.Address) thor.Bytes32 {
	return thor.Blake2b(role.Bytes(), addr.Bytes())
}

func (r *Registry) HasRole(role thor.Bytes32, caller thor.Address) (bool, error) {
	ok, err := r.grants.Get(grantKey(role, caller))
	if err != nil {
		return false, errors.Wrap(err, "failed to get role")
	}
	return ok, nil
}

func (r *Registry) Grant(role thor.Bytes32, addr thor.Address) error {
	logger.Debug("granting role", "role", Name(role), "account", addr)
	return r.grants.Set(grantKey(role, addr), true)
}

func (r *Registry) Revoke(role thor.Bytes32, addr thor.Address) {
	logger.Debug("revoking role", "role", Name(role), "account", addr)
	r.grants.Delete(grantKey(role, addr))
}

// SetOperator records operator as the proxy of candidate. Zero address removes it.
func (r *Registry) SetOperator(candidate, operator thor.Address) error {
	if operator.IsZero() {
		r.operators.Delete(candidate)
		return nil
	}
	return r.operators.Set(candidate, operator)
}

func (r *Registry) OperatorOf(candidate thor.Address) (thor.Address, error) {
	return r.operators.Get(candidate)
}

// MarkContract flags addr as a contract account. Operator checks called from contracts
// fail with ErrProxyUnreachable.
func (r *Registry) MarkContract(addr thor.Address, isContract bool) error {
	if !isContract {
		r.contracts.Delete(addr)
		return nil
	}
	return r.contracts.Set(addr, true)
}

func (r *Registry) IsAuthorizedOperator(candidate, caller thor.Address) (bool, error) {
	isContract, err := r.contracts.Get(caller)
	if err != nil {
		return false, errors.Wrap(err, "failed to get account kind")
	}
	if isContract {
		return false, errors.WithStack(ErrProxyUnreachable)
	}
	op, err := r.operators.Get(candidate)
	if err != nil {
		return false, errors.Wrap(err, "failed to get operator")
	}
	return !op.IsZero() && op == caller, nil
}
