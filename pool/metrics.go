// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakecover/metrics"
	"github.com/vechain/stakecover/thor"
)

var (
	metricOps         = metrics.LazyLoadCounterVec("pool_ops_count", []string{"op", "result"})
	metricOpDuration  = metrics.LazyLoadHistogram("pool_op_duration_ms", metrics.BucketHTTPReqs)
	metricReports     = metrics.LazyLoadCounter("reports_relayed_count")
	metricPayouts     = metrics.LazyLoadCounterVec("payouts_count", []string{"status"})
	metricForced      = metrics.LazyLoadCounter("forced_unwind_count")
	metricPayoutBatch = metrics.LazyLoadHistogram("payout_batch_size", metrics.BucketSize)
	metricTotals      = metrics.LazyLoadGaugeVec("totals_units", []string{"total"})
	metricMarkers     = metrics.LazyLoadGaugeVec("markers_set", []string{"marker"})
)

func (p *Pool) updateGauges(delegator, member thor.Address) {
	set := func(name string, v *big.Int, err error) {
		if err != nil {
			logger.Warn("failed to read total", "total", name, "err", err)
			return
		}
		// whole units keep the gauge within int64
		metricTotals().SetWithLabel(new(big.Int).Quo(v, thor.Unit).Int64(), map[string]string{"total": name})
	}
	deposits, err := p.cover.DepositTotal()
	set("deposits", deposits, err)
	owed, err := p.cover.OwedTotal()
	set("owed", owed, err)
	staked, err := p.ledger.StakedTotal()
	set("staked", staked, err)

	flag := func(addr thor.Address) int64 {
		if addr.IsZero() {
			return 0
		}
		return 1
	}
	metricMarkers().SetWithLabel(flag(delegator), map[string]string{"marker": "delegator"})
	metricMarkers().SetWithLabel(flag(member), map[string]string{"marker": "member"})
}
