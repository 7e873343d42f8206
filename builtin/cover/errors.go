// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cover

import "github.com/vechain/stakecover/builtin/reverts"

var (
	errNotWhitelisted    = reverts.Unauthorized("not whitelisted")
	errZeroAmount        = reverts.New("zero amount")
	errBelowMinDeposit   = reverts.New("deposit below min")
	errExceedsMaxDeposit = reverts.New("exceeds max deposit")
	errInvalidAmount     = reverts.New("invalid amount")
	errDecreasePending   = reverts.New("decrease already pending")
	errNoSuchDecrease    = reverts.New("no such decrease")
	errNotYetExecutable  = reverts.New("not yet executable")
	errNotMember         = reverts.New("not a member")
	errExceedsMax        = reverts.New("exceeds max")
	errInvoiceTooEarly   = reverts.New("invoice too early")
	errNoFunds           = reverts.New("no funds")
	errNoRewards         = reverts.New("no rewards")
	errZeroAddress       = reverts.New("invalid address")
)
