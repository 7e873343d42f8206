// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math/big"
)

// Unit is the fixed point denominator of per-unit rates, one whole coin in the smallest unit.
var Unit = big.NewInt(1e18)

// Cover limits which are part of the protocol, not of the deployment config.
const (
	// MaxErasCovered caps the delay of a scheduled deposit decrease.
	MaxErasCovered uint32 = 1080

	// VetoStaleEras is the number of eras after which a silent veto reporter no longer blocks quorum.
	VetoStaleEras uint32 = 3

	// VoteWindow is the number of part nonces tracked by a member's vote ring.
	VoteWindow = 256
)

// Well known native addresses of the ledger accounts.
var (
	// CoverPoolAddress holds member deposits, owed claims and pool yield.
	CoverPoolAddress = BytesToAddress([]byte("CoverPool"))
	// OracleAddress owns the storage of the oracle registry and quorum aggregator.
	OracleAddress = BytesToAddress([]byte("Oracle"))
	// RelayAddress owns the storage of the report relay.
	RelayAddress = BytesToAddress([]byte("OracleRelay"))
	// DelegationAddress owns the storage of the delegation ledger.
	DelegationAddress = BytesToAddress([]byte("Delegation"))
	// AuthorityAddress owns the role and proxy registries.
	AuthorityAddress = BytesToAddress([]byte("Authority"))
)

// ParamsAddress owns the governance parameters.
var ParamsAddress = BytesToAddress([]byte("Params"))

// Keys of governance parameters.
var (
	KeyMinDeposit                    = BytesToBytes32([]byte("min-deposit"))
	KeyMaxDepositTotal               = BytesToBytes32([]byte("max-deposit-total"))
	KeyStakeUnitCover                = BytesToBytes32([]byte("stake-unit-cover"))
	KeyMaxEraMemberPayout            = BytesToBytes32([]byte("max-era-member-payout"))
	KeyMinPayout                     = BytesToBytes32([]byte("min-payout"))
	KeyMemberFee                     = BytesToBytes32([]byte("member-fee"))
	KeyInvoiceInterval               = BytesToBytes32([]byte("invoice-interval"))
	KeyErasBetweenForcedUndelegation = BytesToBytes32([]byte("eras-between-forced-undelegation"))
	KeyMaxPercentStaked              = BytesToBytes32([]byte("max-percent-staked"))
	KeyNoManualWhitelisting          = BytesToBytes32([]byte("no-manual-whitelisting"))
	KeyUnbondingDelay                = BytesToBytes32([]byte("unbonding-delay"))
)
