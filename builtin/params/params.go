// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakecover/builtin/solidity"
	"github.com/vechain/stakecover/thor"
)

var slotParams = thor.BytesToBytes32([]byte("params"))

// Params binder of governance parameters.
type Params struct {
	values *solidity.Mapping[thor.Bytes32, *big.Int]
}

func New(sctx *solidity.Context) *Params {
	return &Params{values: solidity.NewMapping[thor.Bytes32, *big.Int](sctx, slotParams)}
}

// Get native way to get param. Unset params are zero.
func (p *Params) Get(key thor.Bytes32) (*big.Int, error) {
	v, err := p.values.Get(key)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get param %v", string(trimKey(key)))
	}
	return v, nil
}

// Set native way to set param.
func (p *Params) Set(key thor.Bytes32, value *big.Int) error {
	if value.Sign() < 0 {
		return errors.New("negative param value")
	}
	return p.values.Set(key, value)
}

// Uint32 gets a param holding an era count or a percentage, saturating at MaxUint32.
func (p *Params) Uint32(key thor.Bytes32) (uint32, error) {
	v, err := p.Get(key)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() || v.Uint64() > math.MaxUint32 {
		return math.MaxUint32, nil
	}
	return uint32(v.Uint64()), nil
}

// Bool gets a flag param, any non-zero value is true.
func (p *Params) Bool(key thor.Bytes32) (bool, error) {
	v, err := p.Get(key)
	if err != nil {
		return false, err
	}
	return v.Sign() != 0, nil
}

func trimKey(key thor.Bytes32) []byte {
	b := key.Bytes()
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	return b
}

// KeyName returns the name a key was derived from.
func KeyName(key thor.Bytes32) string {
	return string(trimKey(key))
}

// Keys lists the governance parameters in documentation order.
var Keys = []thor.Bytes32{
	thor.KeyMinDeposit,
	thor.KeyMaxDepositTotal,
	thor.KeyStakeUnitCover,
	thor.KeyMaxEraMemberPayout,
	thor.KeyMinPayout,
	thor.KeyMemberFee,
	thor.KeyInvoiceInterval,
	thor.KeyErasBetweenForcedUndelegation,
	thor.KeyMaxPercentStaked,
	thor.KeyNoManualWhitelisting,
	thor.KeyUnbondingDelay,
}

// ParseKey resolves a known parameter by name.
func ParseKey(name string) (thor.Bytes32, bool) {
	for _, key := range Keys {
		if KeyName(key) == name {
			return key, true
		}
	}
	return thor.Bytes32{}, false
}
