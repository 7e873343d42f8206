// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/vechain/stakecover/thor"
)

// Uint256 is a wrapper for storage and retrieval of an uint256. Similar to storing an uint256 in a smart contract.
// If the provided uint exceeds 256 bits, it will be truncated to fit into thor.Bytes32
type Uint256 struct {
	context *Context
	pos     thor.Bytes32
}

func NewUint256(context *Context, slot thor.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: slot}
}

func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

func (u *Uint256) Set(value *big.Int) {
	u.context.state.SetStorage(u.context.address, u.pos, thor.BytesToBytes32(value.Bytes()))
}

func (u *Uint256) Add(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	u.Set(storage.Add(storage, value))
	return nil
}

// Sub subtracts value, it fails rather than wrapping below zero.
func (u *Uint256) Sub(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	if storage.Cmp(value) < 0 {
		return ErrUnderflow
	}
	u.Set(storage.Sub(storage, value))
	return nil
}
