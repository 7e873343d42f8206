// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package health tracks report ingestion and pool liquidity for the node health endpoint.
package health

import (
	"sync"
	"time"

	"github.com/vechain/stakecover/thor"
)

type ReportIngestion struct {
	Era       *uint32    `json:"era"`
	Timestamp *time.Time `json:"timestamp"`
}

// Liquidity reports the pool failure markers, zero when unset.
type Liquidity struct {
	DelegatorNotPaid thor.Address `json:"delegatorNotPaid"`
	MemberNotPaid    thor.Address `json:"memberNotPaid"`
	Deferred         bool         `json:"deferred"`
}

type Status struct {
	Healthy         bool             `json:"healthy"`
	ReportIngestion *ReportIngestion `json:"reportIngestion"`
	Liquidity       Liquidity        `json:"liquidity"`
}

// Health is healthy while reports keep arriving within the allowed interval.
// Deferred payments are surfaced but do not make the node unhealthy.
type Health struct {
	lock        sync.RWMutex
	started     time.Time
	maxInterval time.Duration
	lastReport  *time.Time
	era         *uint32
	liquidity   Liquidity
}

func New(maxInterval time.Duration) *Health {
	return &Health{
		started:     time.Now(),
		maxInterval: maxInterval,
	}
}

// NewReport records the ingestion of a report for era.
func (h *Health) NewReport(era uint32) {
	h.lock.Lock()
	defer h.lock.Unlock()

	now := time.Now()
	h.lastReport = &now
	h.era = &era
}

// SetMarkers records the pool failure markers.
func (h *Health) SetMarkers(delegator, member thor.Address) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.liquidity = Liquidity{
		DelegatorNotPaid: delegator,
		MemberNotPaid:    member,
		Deferred:         !delegator.IsZero() || !member.IsZero(),
	}
}

func (h *Health) Status() (*Status, error) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	since := h.started
	if h.lastReport != nil {
		since = *h.lastReport
	}
	healthy := h.maxInterval == 0 || time.Since(since) <= h.maxInterval

	return &Status{
		Healthy: healthy,
		ReportIngestion: &ReportIngestion{
			Era:       h.era,
			Timestamp: h.lastReport,
		},
		Liquidity: h.liquidity,
	}, nil
}
