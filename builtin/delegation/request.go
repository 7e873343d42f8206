// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"math/big"

	"github.com/vechain/stakecover/thor"
)

// Request is a queued unbonding, its amount returns to the pool once EraExecutable is reached.
type Request struct {
	ID            uint64       `json:"id"`
	Candidate     thor.Address `json:"candidate"`
	Amount        *big.Int     `json:"amount"`
	EraExecutable uint32       `json:"eraExecutable"`
	Revoke        bool         `json:"revoke"`
	Forced        bool         `json:"forced"`
}

// Entry is the amount delegated to a candidate.
type Entry struct {
	Candidate thor.Address `json:"candidate"`
	Amount    *big.Int     `json:"amount"`
}
