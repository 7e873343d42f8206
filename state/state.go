// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"

	"github.com/vechain/stakecover/kv"
	"github.com/vechain/stakecover/stackedmap"
	"github.com/vechain/stakecover/thor"
)

const (
	balanceBucket = kv.Bucket("b")
	storageBucket = kv.Bucket("s")

	cacheSize = 8192
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Cause returns the underlying error.
func (e *Error) Cause() error { return e.cause }

// Unwrap supports errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

type balanceKey thor.Address

type storageKey struct {
	addr thor.Address
	key  thor.Bytes32
}

// State manages the ledger state.
// It's not concurrent safe, callers serialize access.
type State struct {
	store    kv.Store
	balances kv.Store
	storages kv.Store
	cache    *lru.Cache             // committed values
	sm       *stackedmap.StackedMap // uncommitted revisions
}

// New create state object over the kv store.
func New(store kv.Store) *State {
	cache, _ := lru.New(cacheSize)
	s := &State{
		store:    store,
		balances: balanceBucket.NewStore(store),
		storages: storageBucket.NewStore(store),
		cache:    cache,
	}
	s.sm = stackedmap.New(s.cacheGetter)
	return s
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key any) (any, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		return v, true, nil
	}

	var (
		v   any
		err error
	)
	switch k := key.(type) {
	case balanceKey:
		v, err = s.loadBalance(thor.Address(k))
	case storageKey:
		v, err = s.loadStorage(k)
	default:
		panic(fmt.Errorf("unexpected key type %T", k))
	}
	if err != nil {
		return nil, false, err
	}
	s.cache.Add(key, v)
	return v, true, nil
}

func (s *State) loadBalance(addr thor.Address) (*big.Int, error) {
	data, err := s.balances.Get(addr[:])
	if err != nil {
		if s.balances.IsNotFound(err) {
			return new(big.Int), nil
		}
		return nil, err
	}
	bal := new(big.Int)
	if err := rlp.DecodeBytes(data, bal); err != nil {
		return nil, err
	}
	return bal, nil
}

func (s *State) loadStorage(k storageKey) (rlp.RawValue, error) {
	data, err := s.storages.Get(storageDBKey(k))
	if err != nil {
		if s.storages.IsNotFound(err) {
			return rlp.RawValue(nil), nil
		}
		return nil, err
	}
	return rlp.RawValue(data), nil
}

func storageDBKey(k storageKey) []byte {
	return append(append(make([]byte, 0, 52), k.addr[:]...), k.key[:]...)
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr thor.Address) (*big.Int, error) {
	v, _, err := s.sm.Get(balanceKey(addr))
	if err != nil {
		return nil, &Error{err}
	}
	return new(big.Int).Set(v.(*big.Int)), nil
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr thor.Address, balance *big.Int) error {
	if balance.Sign() < 0 {
		return &Error{fmt.Errorf("negative balance %v for %v", balance, addr)}
	}
	s.sm.Put(balanceKey(addr), new(big.Int).Set(balance))
	return nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr thor.Address, key thor.Bytes32) (thor.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return thor.Bytes32{}, err
	}
	if len(raw) == 0 {
		return thor.Bytes32{}, nil
	}
	_, content, _, err := rlp.Split(raw)
	if err != nil {
		return thor.Bytes32{}, &Error{err}
	}
	return thor.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr thor.Address, key, value thor.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return v.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw. Empty value deletes the slot.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be passed through.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	return dec(raw)
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Commit writes all changes since the last commit into the underlying store.
func (s *State) Commit() error {
	bulk := s.store.Bulk()
	balances := balanceBucket.NewBulk(bulk)
	storages := storageBucket.NewBulk(bulk)

	var err error
	s.sm.Journal(func(k, v any) bool {
		switch key := k.(type) {
		case balanceKey:
			var data []byte
			if data, err = rlp.EncodeToBytes(v.(*big.Int)); err != nil {
				return false
			}
			err = balances.Put(key[:], data)
		case storageKey:
			if raw := v.(rlp.RawValue); len(raw) == 0 {
				err = storages.Delete(storageDBKey(key))
			} else {
				err = storages.Put(storageDBKey(key), raw)
			}
		}
		return err == nil
	})
	if err != nil {
		return &Error{err}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}

	s.sm.Journal(func(k, v any) bool {
		s.cache.Add(k, v)
		return true
	})
	s.sm = stackedmap.New(s.cacheGetter)
	return nil
}
