// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cover

import (
	"math/big"

	"github.com/vechain/stakecover/builtin/cover/member"
	"github.com/vechain/stakecover/thor"
)

// Status is the outcome of an operation that degrades instead of failing on a liquidity shortfall.
type Status uint8

const (
	Applied Status = iota
	Deferred
	Skipped
)

func (s Status) String() string {
	switch s {
	case Applied:
		return "applied"
	case Deferred:
		return "deferred"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is a tagged result, Marked holds the failure marker after a deferral.
type Result struct {
	Status Status       `json:"status"`
	Marked thor.Address `json:"marked,omitzero"`
}

// Payout is the result of paying one delegator.
type Payout struct {
	Delegator thor.Address `json:"delegator"`
	Amount    *big.Int     `json:"amount"`
	Result
}

// Charge is the cover charged to a member for a reported era.
type Charge struct {
	Member    thor.Address   `json:"member"`
	Era       uint32         `json:"era"`
	Claims    []member.Claim `json:"claims"`
	Total     *big.Int       `json:"total"`
	Defaulted bool           `json:"defaulted"`
}

// Invoice is the outcome of a fee invoicing round.
type Invoice struct {
	Era       uint32         `json:"era"`
	Fee       *big.Int       `json:"fee"`
	Collected *big.Int       `json:"collected"`
	Share     *big.Int       `json:"share"`
	Charged   []thor.Address `json:"charged"`
	Rewarded  []thor.Address `json:"rewarded"`
}
