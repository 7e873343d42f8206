// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakecover/thor"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction for native services, similar to the mapping in Solidity.
// Values are rlp encoded, a missing key decodes to the zero value (or a new empty struct for pointer types).
type Mapping[K Key, V any] struct {
	context *Context
	basePos thor.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos thor.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) thor.Bytes32 {
	return thor.Blake2b(key.Bytes(), m.basePos.Bytes())
}

func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		return decodeValue(raw, &value)
	})
	return
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete clears the slot of the given key.
func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}

func decodeValue[V any](raw []byte, value *V) error {
	if t := reflect.TypeFor[V](); t.Kind() == reflect.Ptr {
		*value = reflect.New(t.Elem()).Interface().(V)
	}
	if len(raw) == 0 {
		return nil
	}
	return rlp.DecodeBytes(raw, value)
}
