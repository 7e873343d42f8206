// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"
	"math/big"

	"github.com/vechain/stakecover/thor"
)

func RandAddress() (addr thor.Address) {
	rand.Read(addr[:])
	return
}

func RandAddresses(n int) []thor.Address {
	addrs := make([]thor.Address, n)
	for i := range addrs {
		addrs[i] = RandAddress()
	}
	return addrs
}

// Units returns n whole coins in the smallest currency unit.
func Units(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), thor.Unit)
}
