// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"github.com/vechain/stakecover/builtin/oracle"
	"github.com/vechain/stakecover/builtin/oracle/report"
	"github.com/vechain/stakecover/thor"
)

type Consensus struct {
	EraID            uint32        `json:"eraId"`
	Nonce            uint64        `json:"nonce"`
	Threshold        uint32        `json:"threshold"`
	Veto             *thor.Address `json:"veto"`
	LastEraVetoVoted uint32        `json:"lastEraVetoVoted"`
}

func convertConsensus(c *oracle.Consensus) *Consensus {
	res := &Consensus{
		EraID:            c.EraID,
		Nonce:            c.Nonce,
		Threshold:        c.Threshold,
		LastEraVetoVoted: c.LastEraVetoVoted,
	}
	if !c.Veto.IsZero() {
		veto := c.Veto
		res.Veto = &veto
	}
	return res
}

type Outcome struct {
	Nonce     uint64       `json:"nonce"`
	Hash      thor.Bytes32 `json:"hash"`
	Votes     uint32       `json:"votes"`
	Finalized bool         `json:"finalized"`
}

type RelayStatus struct {
	Pushed bool   `json:"pushed"`
	Nonce  uint64 `json:"nonce"`
	EraID  uint32 `json:"eraId"`
}

type MemberRequest struct {
	Caller   thor.Address `json:"caller"`
	Member   thor.Address `json:"member"`
	Reporter thor.Address `json:"reporter"`
}

type CallerRequest struct {
	Caller thor.Address `json:"caller"`
}

type ReportRequest struct {
	Caller thor.Address   `json:"caller"`
	Member thor.Address   `json:"member"`
	Nonce  uint64         `json:"nonce"`
	Report *report.Report `json:"report"`
}

type QuorumRequest struct {
	Caller    thor.Address `json:"caller"`
	Threshold uint32       `json:"threshold"`
}

type QuorumResponse struct {
	Threshold uint32 `json:"threshold"`
	Finalized bool   `json:"finalized"`
}

type VetoRequest struct {
	Caller thor.Address `json:"caller"`
	Member thor.Address `json:"member"`
}
