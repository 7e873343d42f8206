// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"encoding/json"
	"time"

	"github.com/vechain/stakecover/eventdb"
	"github.com/vechain/stakecover/thor"
)

// Event kinds.
const (
	KindRoleGranted         = "RoleGranted"
	KindRoleRevoked         = "RoleRevoked"
	KindOperatorSet         = "OperatorSet"
	KindParamSet            = "ParamSet"
	KindOracleMemberAdded   = "OracleMemberAdded"
	KindOracleMemberRemoved = "OracleMemberRemoved"
	KindReportSubmitted     = "ReportSubmitted"
	KindReportFinalized     = "ReportFinalized"
	KindQuorumSet           = "QuorumSet"
	KindVetoSet             = "VetoSet"
	KindWhitelisted         = "Whitelisted"
	KindDeposited           = "Deposited"
	KindDecreaseScheduled   = "DecreaseScheduled"
	KindDecreaseCancelled   = "DecreaseCancelled"
	KindDecreaseExecuted    = "DecreaseExecuted"
	KindDecreaseDeferred    = "DecreaseDeferred"
	KindSettingsScheduled   = "SettingsScheduled"
	KindMemberCharged       = "MemberCharged"
	KindDelegatorPaid       = "DelegatorPaid"
	KindPayoutDeferred      = "PayoutDeferred"
	KindMembersInvoiced     = "MembersInvoiced"
	KindRewardsWithdrawn    = "RewardsWithdrawn"
	KindDelegated           = "Delegated"
	KindUnbondingScheduled  = "UnbondingScheduled"
	KindForcedUnwind        = "ForcedUnwind"
	KindUnbondingExecuted   = "UnbondingExecuted"
)

// emit queues an event for the running operation. It is dropped if the operation fails.
func (p *Pool) emit(kind string, subject thor.Address, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		logger.Warn("failed to encode event", "kind", kind, "err", err)
		return
	}
	p.pending = append(p.pending, &eventdb.Event{
		Kind:    kind,
		Subject: subject,
		Data:    raw,
	})
}

func (p *Pool) stampEvents(era uint32) {
	now := uint64(time.Now().Unix())
	for _, e := range p.pending {
		e.Era = era
		e.Time = now
	}
}
