// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cover

import (
	"github.com/vechain/stakecover/api/utils"
	"github.com/vechain/stakecover/builtin/cover"
	"github.com/vechain/stakecover/builtin/cover/member"
	"github.com/vechain/stakecover/pool"
	"github.com/vechain/stakecover/thor"
)

type Settings struct {
	ZeroPointsCover      bool          `json:"zeroPointsCover"`
	ActiveSetCover       bool          `json:"activeSetCover"`
	MaxCoveredDelegation *utils.Amount `json:"maxCoveredDelegation"`
}

type PendingSettings struct {
	Settings
	EffectiveEra uint32 `json:"effectiveEra"`
}

type Decrease struct {
	EraAvailable uint32        `json:"eraAvailable"`
	Amount       *utils.Amount `json:"amount"`
}

type Member struct {
	Address          thor.Address     `json:"address"`
	Joined           bool             `json:"joined"`
	Whitelisted      bool             `json:"whitelisted"`
	Active           bool             `json:"active"`
	Defaulted        bool             `json:"defaulted"`
	Deposit          *utils.Amount    `json:"deposit"`
	Settings         Settings         `json:"settings"`
	Pending          *PendingSettings `json:"pending"`
	Decrease         *Decrease        `json:"decrease"`
	DelegationsTotal *utils.Amount    `json:"delegationsTotal"`
	LastPaidEra      *uint32          `json:"lastPaidEra"`
	ErasCovered      uint32           `json:"erasCovered"`
}

func convertSettings(s member.Settings) Settings {
	return Settings{
		ZeroPointsCover:      s.ZeroPointsCover,
		ActiveSetCover:       s.ActiveSetCover,
		MaxCoveredDelegation: utils.NewAmount(s.MaxCoveredDelegation),
	}
}

func convertPending(p *member.PendingSettings) *PendingSettings {
	if p == nil {
		return nil
	}
	return &PendingSettings{Settings: convertSettings(p.Settings), EffectiveEra: p.EffectiveEra}
}

func convertDecrease(d *member.Decrease) *Decrease {
	if d == nil {
		return nil
	}
	return &Decrease{EraAvailable: d.EraAvailable, Amount: utils.NewAmount(d.Amount)}
}

func convertMember(addr thor.Address, m *member.Member, erasCovered uint32) *Member {
	res := &Member{
		Address:          addr,
		Joined:           m.Joined,
		Whitelisted:      m.Whitelisted,
		Active:           m.Active,
		Defaulted:        m.Defaulted,
		Deposit:          utils.NewAmount(m.Deposit),
		Settings:         convertSettings(m.Settings),
		Pending:          convertPending(m.Pending),
		Decrease:         convertDecrease(m.Decrease),
		DelegationsTotal: utils.NewAmount(m.DelegationsTotal),
		ErasCovered:      erasCovered,
	}
	if m.Paid {
		era := m.LastPaidEra
		res.LastPaidEra = &era
	}
	return res
}

type Summary struct {
	Era              uint32        `json:"era"`
	LastInvoiceEra   uint32        `json:"lastInvoiceEra"`
	Spendable        *utils.Amount `json:"spendable"`
	DepositTotal     *utils.Amount `json:"depositTotal"`
	OwedTotal        *utils.Amount `json:"owedTotal"`
	StakedTotal      *utils.Amount `json:"stakedTotal"`
	DelegatorNotPaid *thor.Address `json:"delegatorNotPaid"`
	MemberNotPaid    *thor.Address `json:"memberNotPaid"`
}

func optionalAddress(addr thor.Address) *thor.Address {
	if addr.IsZero() {
		return nil
	}
	return &addr
}

func convertSummary(s *pool.Summary) *Summary {
	return &Summary{
		Era:              s.Era,
		LastInvoiceEra:   s.LastInvoiceEra,
		Spendable:        utils.NewAmount(s.Spendable),
		DepositTotal:     utils.NewAmount(s.DepositTotal),
		OwedTotal:        utils.NewAmount(s.OwedTotal),
		StakedTotal:      utils.NewAmount(s.StakedTotal),
		DelegatorNotPaid: optionalAddress(s.DelegatorNotPaid),
		MemberNotPaid:    optionalAddress(s.MemberNotPaid),
	}
}

type Result struct {
	Status cover.Status  `json:"status"`
	Marked *thor.Address `json:"marked"`
}

func convertResult(r cover.Result) Result {
	return Result{Status: r.Status, Marked: optionalAddress(r.Marked)}
}

type Payout struct {
	Delegator thor.Address  `json:"delegator"`
	Amount    *utils.Amount `json:"amount"`
	Result
}

type Invoice struct {
	Era       uint32         `json:"era"`
	Fee       *utils.Amount  `json:"fee"`
	Collected *utils.Amount  `json:"collected"`
	Share     *utils.Amount  `json:"share"`
	Charged   []thor.Address `json:"charged"`
	Rewarded  []thor.Address `json:"rewarded"`
}

type Owed struct {
	Delegator thor.Address  `json:"delegator"`
	Amount    *utils.Amount `json:"amount"`
}

// requests

type CallerRequest struct {
	Caller thor.Address `json:"caller"`
}

type AmountRequest struct {
	Caller thor.Address  `json:"caller"`
	Amount *utils.Amount `json:"amount"`
}

type WhitelistRequest struct {
	Caller      thor.Address `json:"caller"`
	Whitelisted bool         `json:"whitelisted"`
}

type CoverTypesRequest struct {
	Caller          thor.Address `json:"caller"`
	ZeroPointsCover bool         `json:"zeroPointsCover"`
	ActiveSetCover  bool         `json:"activeSetCover"`
}

type MaxCoveredRequest struct {
	Caller thor.Address  `json:"caller"`
	Limit  *utils.Amount `json:"limit"`
}

type PayoutRequest struct {
	Delegators []thor.Address `json:"delegators"`
}

type WithdrawRequest struct {
	Caller thor.Address  `json:"caller"`
	Amount *utils.Amount `json:"amount"`
	To     thor.Address  `json:"to"`
}
