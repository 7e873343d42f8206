// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package report defines the era performance data agreed on by the oracle committee.
package report

import (
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakecover/thor"
)

// Delegation is one of the top delegations backing a collator.
type Delegation struct {
	Owner  thor.Address `json:"owner"`
	Amount *big.Int     `json:"amount"`
}

// Collator is the performance of one collator during the era.
type Collator struct {
	Address          thor.Address `json:"address"`
	Points           uint32       `json:"points"`
	Active           bool         `json:"active"`
	DelegationsTotal *big.Int     `json:"delegationsTotal"`
	TopDelegations   []Delegation `json:"topDelegations"`
}

// Report is one part of the data of an era.
// Finalize marks the part as complete, votes without it never trigger forwarding.
type Report struct {
	EraID     uint32     `json:"eraId"`
	Collators []Collator `json:"collators"`
	Finalize  bool       `json:"finalize"`
}

type content struct {
	EraID     uint32
	Collators []Collator
}

// ContentHash identifies the report content, the finalize flag excluded.
// Votes agree when their content hashes are equal.
func (r *Report) ContentHash() thor.Bytes32 {
	return thor.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, &content{r.EraID, r.Collators})
	})
}

// Validate checks the report is well formed.
func (r *Report) Validate() error {
	for _, c := range r.Collators {
		if c.DelegationsTotal != nil && c.DelegationsTotal.Sign() < 0 {
			return errNegative
		}
		for _, d := range c.TopDelegations {
			if d.Amount == nil || d.Amount.Sign() < 0 {
				return errNegative
			}
		}
	}
	return nil
}
