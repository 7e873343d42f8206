// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"encoding/json"

	"github.com/vechain/stakecover/thor"
)

type OrderType string

const (
	ASC  OrderType = "asc"
	DESC OrderType = "desc"
)

// Event is a journaled pool event. Data is the json encoded operation result.
type Event struct {
	Seq     uint64          `json:"seq"`
	Era     uint32          `json:"era"`
	Kind    string          `json:"kind"`
	Subject thor.Address    `json:"subject"`
	Time    uint64          `json:"time"`
	Data    json.RawMessage `json:"data"`
}

// Range bounds the era of events, To is ignored when lower than From.
type Range struct {
	From uint32 `json:"from"`
	To   uint32 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter selects events. Empty fields match everything.
type Filter struct {
	Kinds   []string      `json:"kinds"`
	Subject *thor.Address `json:"subject"`
	Range   *Range        `json:"range"`
	Order   OrderType     `json:"order"`
	Options *Options      `json:"options"`
}
