// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import "github.com/vechain/stakecover/builtin/reverts"

var (
	errNotOracleMember    = reverts.Unauthorized("not oracle member")
	errStaleNonce         = reverts.New("stale or future nonce")
	errAlreadySubmitted   = reverts.New("already submitted")
	errEraConcluded       = reverts.New("era already concluded")
	errEraMismatch        = reverts.New("payload era mismatch")
	errInvalidQuorum      = reverts.New("invalid quorum")
	errBootstrapClosed    = reverts.New("bootstrap period is over")
	errBootstrapOpen      = reverts.New("bootstrap period is not over")
	errNotCoverMember     = reverts.New("not cover member")
	errMemberHasOracle    = reverts.New("member already has oracle")
	errReporterInUse      = reverts.New("reporter already in use")
	errZeroReporter       = reverts.New("invalid reporter")
	errUnknownMember      = reverts.New("unknown oracle member")
	errUnauthorizedRemove = reverts.Unauthorized("not allowed to remove oracle member")
)
