// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package roles

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakecover/builtin/reverts"
	"github.com/vechain/stakecover/thor"
)

// Role identifiers, keccak of the role name as the on-chain contracts do.
var (
	Admin          = thor.Keccak256([]byte("DEFAULT_ADMIN_ROLE"))
	OracleManager  = thor.Keccak256([]byte("ORACLE_MANAGER_ROLE"))
	StakingManager = thor.Keccak256([]byte("STAKING_MANAGER_ROLE"))
	MemberManager  = thor.Keccak256([]byte("MEMBER_MANAGER_ROLE"))
	PoolOperator   = thor.Keccak256([]byte("POOL_OPERATOR_ROLE"))
)

// All lists the roles.
var All = []thor.Bytes32{Admin, OracleManager, StakingManager, MemberManager, PoolOperator}

var names = map[thor.Bytes32]string{
	Admin:          "admin",
	OracleManager:  "oracle manager",
	StakingManager: "staking manager",
	MemberManager:  "member manager",
	PoolOperator:   "pool operator",
}

// Name returns the human readable role name.
func Name(role thor.Bytes32) string {
	if n, ok := names[role]; ok {
		return n
	}
	return role.AbbrevString()
}

// ParseRole resolves a role by its human readable name.
func ParseRole(name string) (thor.Bytes32, bool) {
	for role, n := range names {
		if n == name {
			return role, true
		}
	}
	return thor.Bytes32{}, false
}

// ErrProxyUnreachable is returned when the operator relationship cannot be checked from the
// calling context. It is never an authorization failure.
var ErrProxyUnreachable = errors.New("CANNOT_CALL_PROXY_PRECOMP_FROM_SC")

// Authorizer answers role queries.
type Authorizer interface {
	HasRole(role thor.Bytes32, caller thor.Address) (bool, error)
}

// Operators answers whether caller is the current operator (proxy) of a candidate.
type Operators interface {
	IsAuthorizedOperator(candidate, caller thor.Address) (bool, error)
}

// Require fails with an authorization revert unless caller holds role.
func Require(auth Authorizer, role thor.Bytes32, caller thor.Address) error {
	ok, err := auth.HasRole(role, caller)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.Unauthorized("caller is not " + Name(role))
	}
	return nil
}

// RequireMemberOrOperator fails unless caller is the member itself or its authorized operator.
// Proxy failures are returned as ErrProxyUnreachable.
func RequireMemberOrOperator(ops Operators, member, caller thor.Address) error {
	if caller == member {
		return nil
	}
	ok, err := ops.IsAuthorizedOperator(member, caller)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.Unauthorized("not member or operator")
	}
	return nil
}
