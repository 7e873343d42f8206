// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakecover/thor"
)

// Raw stores a single rlp encoded value at a fixed slot.
type Raw[V any] struct {
	context *Context
	pos     thor.Bytes32
}

func NewRaw[V any](context *Context, pos thor.Bytes32) *Raw[V] {
	return &Raw[V]{context: context, pos: pos}
}

func (r *Raw[V]) Get() (value V, err error) {
	err = r.context.state.DecodeStorage(r.context.address, r.pos, func(raw []byte) error {
		return decodeValue(raw, &value)
	})
	return
}

func (r *Raw[V]) Set(value V) error {
	return r.context.state.EncodeStorage(r.context.address, r.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}
