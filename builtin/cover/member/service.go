// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package member

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakecover/builtin/linkedlist"
	"github.com/vechain/stakecover/builtin/solidity"
	"github.com/vechain/stakecover/thor"
)

var (
	slotMembers = thor.BytesToBytes32([]byte("members"))
	slotClaims  = thor.BytesToBytes32([]byte("claims"))
)

// Service stores members and the claims owed to delegators.
type Service struct {
	members *solidity.Mapping[thor.Address, *Member]
	claims  *solidity.Mapping[thor.Address, *big.Int]
	joined  *linkedlist.LinkedList
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		members: solidity.NewMapping[thor.Address, *Member](sctx, slotMembers),
		claims:  solidity.NewMapping[thor.Address, *big.Int](sctx, slotClaims),
		joined:  linkedlist.New(sctx, "cover-members"),
	}
}

// GetMember returns the member, an empty member if unknown.
func (s *Service) GetMember(addr thor.Address) (*Member, error) {
	m, err := s.members.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get member")
	}
	if m.Deposit == nil {
		m.Deposit = new(big.Int)
	}
	if m.DelegationsTotal == nil {
		m.DelegationsTotal = new(big.Int)
	}
	return m, nil
}

// SetMember stores the member, joined members are linked for iteration.
func (s *Service) SetMember(addr thor.Address, m *Member) error {
	if err := s.members.Set(addr, m); err != nil {
		return errors.Wrap(err, "failed to set member")
	}
	if m.Joined {
		if err := s.joined.Add(addr); err != nil {
			return errors.Wrap(err, "failed to link member")
		}
	}
	return nil
}

// Joined returns the members that deposited at least once, in join order.
func (s *Service) Joined() ([]thor.Address, error) {
	return s.joined.All()
}

// Owed returns the claim owed to delegator.
func (s *Service) Owed(delegator thor.Address) (*big.Int, error) {
	v, err := s.claims.Get(delegator)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get claim")
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

// AddOwed credits a claim to delegator.
func (s *Service) AddOwed(delegator thor.Address, amount *big.Int) error {
	owed, err := s.Owed(delegator)
	if err != nil {
		return err
	}
	return s.claims.Set(delegator, owed.Add(owed, amount))
}

// ClearOwed zeroes the claim of delegator.
func (s *Service) ClearOwed(delegator thor.Address) {
	s.claims.Delete(delegator)
}
