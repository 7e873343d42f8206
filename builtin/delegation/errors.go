// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import "github.com/vechain/stakecover/builtin/reverts"

var (
	errDelegatorNotPaid = reverts.New("delegator not paid")
	errMemberNotPaid    = reverts.New("member not paid")
	errZeroAmount       = reverts.New("zero amount")
	errZeroAddress      = reverts.New("invalid candidate")
	errExceedsMaxStaked = reverts.New("exceeds max staked")
	errNoSuchDelegation = reverts.New("no such delegation")
	errInvalidAmount    = reverts.New("invalid amount")
	errForbidden        = reverts.New("forbidden")
	errNothingToUnwind  = reverts.New("nothing to unwind")
	errTooFrequent      = reverts.New("too frequent")
)
