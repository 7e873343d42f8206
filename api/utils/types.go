// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"math/big"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakecover/thor"
)

// Amount is a 256-bit unsigned amount, encoded as a decimal JSON string.
// Hex strings with a 0x prefix are accepted on input.
type Amount big.Int

// NewAmount converts v, nil gives nil.
func NewAmount(v *big.Int) *Amount {
	if v == nil {
		return nil
	}
	return (*Amount)(new(big.Int).Set(v))
}

// Big returns the amount as a big.Int, zero for nil.
func (a *Amount) Big() *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(a))
}

// MarshalText implements encoding.TextMarshaler.
func (a *Amount) MarshalText() ([]byte, error) {
	return []byte((*big.Int)(a).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	var (
		v   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = uint256.FromHex(s)
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return errors.Wrapf(err, "invalid amount %q", s)
	}
	*a = Amount(*v.ToBig())
	return nil
}

// Address reads the address path variable name.
func Address(req *http.Request, name string) (thor.Address, error) {
	addr, err := thor.ParseAddress(mux.Vars(req)[name])
	if err != nil {
		return thor.Address{}, BadRequest(errors.WithMessage(err, name))
	}
	return *addr, nil
}
