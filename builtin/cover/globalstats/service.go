// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package globalstats

import (
	"math/big"

	"github.com/vechain/stakecover/builtin/solidity"
	"github.com/vechain/stakecover/thor"
)

var (
	slotDepositTotal     = thor.BytesToBytes32([]byte("members-deposit-total"))
	slotOwedTotal        = thor.BytesToBytes32([]byte("payouts-owed-total"))
	slotDelegatorNotPaid = thor.BytesToBytes32([]byte("delegator-not-paid"))
	slotMemberNotPaid    = thor.BytesToBytes32([]byte("member-not-paid"))
	slotEra              = thor.BytesToBytes32([]byte("era"))
	slotLastInvoiceEra   = thor.BytesToBytes32([]byte("last-invoice-era"))
)

// Service manages pool-wide totals, the era clock and the failure markers.
type Service struct {
	depositTotal *solidity.Uint256
	owedTotal    *solidity.Uint256

	delegatorNotPaid *solidity.Address
	memberNotPaid    *solidity.Address

	era            *solidity.Raw[uint32]
	lastInvoiceEra *solidity.Raw[uint32]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		depositTotal:     solidity.NewUint256(sctx, slotDepositTotal),
		owedTotal:        solidity.NewUint256(sctx, slotOwedTotal),
		delegatorNotPaid: solidity.NewAddress(sctx, slotDelegatorNotPaid),
		memberNotPaid:    solidity.NewAddress(sctx, slotMemberNotPaid),
		era:              solidity.NewRaw[uint32](sctx, slotEra),
		lastInvoiceEra:   solidity.NewRaw[uint32](sctx, slotLastInvoiceEra),
	}
}

// DepositTotal returns the sum of all member deposits.
func (s *Service) DepositTotal() (*big.Int, error) {
	return s.depositTotal.Get()
}

func (s *Service) AddDeposit(amount *big.Int) error {
	return s.depositTotal.Add(amount)
}

func (s *Service) SubDeposit(amount *big.Int) error {
	return s.depositTotal.Sub(amount)
}

// OwedTotal returns the sum of all claims not yet paid out.
func (s *Service) OwedTotal() (*big.Int, error) {
	return s.owedTotal.Get()
}

func (s *Service) AddOwed(amount *big.Int) error {
	return s.owedTotal.Add(amount)
}

func (s *Service) SubOwed(amount *big.Int) error {
	return s.owedTotal.Sub(amount)
}

func (s *Service) DelegatorNotPaid() (thor.Address, error) {
	return s.delegatorNotPaid.Get()
}

func (s *Service) MemberNotPaid() (thor.Address, error) {
	return s.memberNotPaid.Get()
}

// MarkDelegatorNotPaid sets the marker unless it already holds an address.
// It returns the address held after the call.
func (s *Service) MarkDelegatorNotPaid(addr thor.Address) (thor.Address, error) {
	return markFirst(s.delegatorNotPaid, addr)
}

// MarkMemberNotPaid sets the marker unless it already holds an address.
func (s *Service) MarkMemberNotPaid(addr thor.Address) (thor.Address, error) {
	return markFirst(s.memberNotPaid, addr)
}

// ClearDelegatorNotPaid clears the marker if it holds addr.
func (s *Service) ClearDelegatorNotPaid(addr thor.Address) (bool, error) {
	return clearIf(s.delegatorNotPaid, addr)
}

// ClearMemberNotPaid clears the marker if it holds addr.
func (s *Service) ClearMemberNotPaid(addr thor.Address) (bool, error) {
	return clearIf(s.memberNotPaid, addr)
}

func markFirst(marker *solidity.Address, addr thor.Address) (thor.Address, error) {
	held, err := marker.Get()
	if err != nil {
		return thor.Address{}, err
	}
	if !held.IsZero() {
		return held, nil
	}
	marker.Set(&addr)
	return addr, nil
}

func clearIf(marker *solidity.Address, addr thor.Address) (bool, error) {
	held, err := marker.Get()
	if err != nil {
		return false, err
	}
	if held.IsZero() || held != addr {
		return false, nil
	}
	marker.Set(nil)
	return true, nil
}

// Era returns the era of the last relayed report.
func (s *Service) Era() (uint32, error) {
	return s.era.Get()
}

func (s *Service) SetEra(era uint32) error {
	return s.era.Set(era)
}

func (s *Service) LastInvoiceEra() (uint32, error) {
	return s.lastInvoiceEra.Get()
}

func (s *Service) SetLastInvoiceEra(era uint32) error {
	return s.lastInvoiceEra.Set(era)
}
