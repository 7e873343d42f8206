// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bank moves native currency between ledger accounts.
package bank

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakecover/builtin/reverts"
	"github.com/vechain/stakecover/state"
	"github.com/vechain/stakecover/thor"
)

// ErrInsufficientBalance is returned by Debit when the spendable balance is too low.
var ErrInsufficientBalance = reverts.New("insufficient balance")

// Bank is the currency transfer capability.
// Credit never fails for accounting reasons, errors are storage failures only.
type Bank interface {
	Balance(addr thor.Address) (*big.Int, error)
	Credit(addr thor.Address, amount *big.Int) error
	Debit(addr thor.Address, amount *big.Int) error
}

// Transfer debits from and credits to.
func Transfer(b Bank, from, to thor.Address, amount *big.Int) error {
	if err := b.Debit(from, amount); err != nil {
		return err
	}
	return b.Credit(to, amount)
}

// StateBank keeps balances in the ledger state.
type StateBank struct {
	state *state.State
}

var _ Bank = (*StateBank)(nil)

func New(state *state.State) *StateBank {
	return &StateBank{state: state}
}

func (b *StateBank) Balance(addr thor.Address) (*big.Int, error) {
	return b.state.GetBalance(addr)
}

func (b *StateBank) Credit(addr thor.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := b.state.GetBalance(addr)
	if err != nil {
		return errors.Wrap(err, "credit")
	}
	return b.state.SetBalance(addr, bal.Add(bal, amount))
}

func (b *StateBank) Debit(addr thor.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := b.state.GetBalance(addr)
	if err != nil {
		return errors.Wrap(err, "debit")
	}
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	return b.state.SetBalance(addr, bal.Sub(bal, amount))
}
