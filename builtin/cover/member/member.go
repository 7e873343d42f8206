// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package member

import (
	"math/big"

	"github.com/vechain/stakecover/thor"
)

// Settings are the cover options a member offers to its delegators.
type Settings struct {
	ZeroPointsCover      bool
	ActiveSetCover       bool
	MaxCoveredDelegation *big.Int // zero means no cap
}

// PendingSettings become effective at EffectiveEra.
type PendingSettings struct {
	Settings
	EffectiveEra uint32
}

// Decrease is a scheduled deposit decrease.
type Decrease struct {
	EraAvailable uint32
	Amount       *big.Int
}

// Member is a collator operator funding the cover pool.
type Member struct {
	Joined      bool // deposited at least once
	Whitelisted bool
	Active      bool
	Defaulted   bool
	Deposit     *big.Int
	Settings
	Pending          *PendingSettings `rlp:"nil"`
	Decrease         *Decrease        `rlp:"nil"`
	DelegationsTotal *big.Int
	Paid             bool // charged at least once, LastPaidEra is meaningful
	LastPaidEra      uint32
}

// IsEmpty returns whether the member was never seen.
func (m *Member) IsEmpty() bool {
	return !m.Joined && !m.Whitelisted && m.Pending == nil && m.Decrease == nil
}

// PaidFor returns whether the member was already charged for era.
func (m *Member) PaidFor(era uint32) bool {
	return m.Paid && m.LastPaidEra == era
}

// EffectiveSettings promotes pending settings due at era and returns whether they changed.
func (m *Member) EffectiveSettings(era uint32) bool {
	if m.Pending == nil || era < m.Pending.EffectiveEra {
		return false
	}
	m.Settings = m.Pending.Settings
	m.Pending = nil
	return true
}

// IsCovered tells whether the collator performance of an era triggers claims.
func (m *Member) IsCovered(points uint32, active bool) bool {
	return (!active && m.ActiveSetCover) || (points == 0 && m.ZeroPointsCover)
}

// CoveredAmount caps a delegation amount by MaxCoveredDelegation.
func (m *Member) CoveredAmount(amount *big.Int) *big.Int {
	if m.MaxCoveredDelegation != nil && m.MaxCoveredDelegation.Sign() > 0 && amount.Cmp(m.MaxCoveredDelegation) > 0 {
		return new(big.Int).Set(m.MaxCoveredDelegation)
	}
	return new(big.Int).Set(amount)
}

// Claim is the cover owed to a delegator.
type Claim struct {
	Delegator thor.Address `json:"delegator"`
	Owed      *big.Int     `json:"owed"`
}
