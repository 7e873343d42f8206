// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegations

import (
	"github.com/vechain/stakecover/api/utils"
	"github.com/vechain/stakecover/builtin/delegation"
	"github.com/vechain/stakecover/thor"
)

type Entry struct {
	Candidate thor.Address  `json:"candidate"`
	Amount    *utils.Amount `json:"amount"`
}

type Request struct {
	ID            uint64        `json:"id"`
	Candidate     thor.Address  `json:"candidate"`
	Amount        *utils.Amount `json:"amount"`
	EraExecutable uint32        `json:"eraExecutable"`
	Revoke        bool          `json:"revoke"`
	Forced        bool          `json:"forced"`
}

func convertRequests(reqs []*delegation.Request) []*Request {
	res := make([]*Request, 0, len(reqs))
	for _, r := range reqs {
		res = append(res, &Request{
			ID:            r.ID,
			Candidate:     r.Candidate,
			Amount:        utils.NewAmount(r.Amount),
			EraExecutable: r.EraExecutable,
			Revoke:        r.Revoke,
			Forced:        r.Forced,
		})
	}
	return res
}

type AmountRequest struct {
	Caller thor.Address  `json:"caller"`
	Amount *utils.Amount `json:"amount"`
}

type CallerRequest struct {
	Caller thor.Address `json:"caller"`
}
