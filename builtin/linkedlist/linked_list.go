// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package linkedlist

import (
	"github.com/vechain/stakecover/builtin/solidity"
	"github.com/vechain/stakecover/thor"
)

// LinkedList is an insertion ordered set of addresses kept in storage.
type LinkedList struct {
	head  *solidity.Address
	tail  *solidity.Address
	count *solidity.Raw[uint64]
	next  *solidity.Mapping[thor.Address, thor.Address]
	prev  *solidity.Mapping[thor.Address, thor.Address]
}

// New creates a linked list, all slots are derived from name.
func New(sctx *solidity.Context, name string) *LinkedList {
	slot := func(suffix string) thor.Bytes32 {
		return thor.Blake2b([]byte(name), []byte(suffix))
	}
	return &LinkedList{
		head:  solidity.NewAddress(sctx, slot("head")),
		tail:  solidity.NewAddress(sctx, slot("tail")),
		count: solidity.NewRaw[uint64](sctx, slot("count")),
		next:  solidity.NewMapping[thor.Address, thor.Address](sctx, slot("next")),
		prev:  solidity.NewMapping[thor.Address, thor.Address](sctx, slot("prev")),
	}
}

// Contains reports whether address is linked.
func (l *LinkedList) Contains(address thor.Address) (bool, error) {
	if address.IsZero() {
		return false, nil
	}
	prev, err := l.prev.Get(address)
	if err != nil {
		return false, err
	}
	if !prev.IsZero() {
		return true, nil
	}
	head, err := l.head.Get()
	if err != nil {
		return false, err
	}
	return head == address, nil
}

// Add appends an address to the end of the list. Already linked addresses keep their position.
func (l *LinkedList) Add(address thor.Address) error {
	if ok, err := l.Contains(address); err != nil || ok {
		return err
	}

	oldTail, err := l.tail.Get()
	if err != nil {
		return err
	}

	if oldTail.IsZero() {
		// the list is currently empty, set this entry to head & tail
		l.head.Set(&address)
		l.tail.Set(&address)
		return l.addCount(1)
	}

	if err := l.next.Set(oldTail, address); err != nil {
		return err
	}
	if err := l.prev.Set(address, oldTail); err != nil {
		return err
	}
	l.tail.Set(&address)

	return l.addCount(1)
}

// Remove unlinks an address from anywhere in the list.
func (l *LinkedList) Remove(address thor.Address) error {
	if ok, err := l.Contains(address); err != nil || !ok {
		return err
	}

	prev, err := l.prev.Get(address)
	if err != nil {
		return err
	}
	next, err := l.next.Get(address)
	if err != nil {
		return err
	}

	if !prev.IsZero() {
		if err := l.next.Set(prev, next); err != nil {
			return err
		}
	} else {
		l.head.Set(&next)
	}

	if !next.IsZero() {
		if err := l.prev.Set(next, prev); err != nil {
			return err
		}
	} else {
		l.tail.Set(&prev)
	}

	l.next.Delete(address)
	l.prev.Delete(address)

	return l.addCount(-1)
}

func (l *LinkedList) addCount(delta int) error {
	n, err := l.count.Get()
	if err != nil {
		return err
	}
	return l.count.Set(uint64(int64(n) + int64(delta)))
}

// Len returns the number of linked addresses.
func (l *LinkedList) Len() (uint64, error) {
	return l.count.Get()
}

// Head returns the oldest address, zero if empty.
func (l *LinkedList) Head() (thor.Address, error) {
	return l.head.Get()
}

// Next returns the successor address in the list, or zero address if at the end.
func (l *LinkedList) Next(address thor.Address) (thor.Address, error) {
	return l.next.Get(address)
}

// Iter traverses the list in insertion order until completion or error.
// The callback may remove the visited address.
func (l *LinkedList) Iter(callback func(thor.Address) error) error {
	ptr, err := l.head.Get()
	if err != nil {
		return err
	}

	for !ptr.IsZero() {
		next, err := l.next.Get(ptr)
		if err != nil {
			return err
		}
		if err := callback(ptr); err != nil {
			return err
		}
		ptr = next
	}
	return nil
}

// All returns all linked addresses in insertion order.
func (l *LinkedList) All() ([]thor.Address, error) {
	var all []thor.Address
	err := l.Iter(func(a thor.Address) error {
		all = append(all, a)
		return nil
	})
	return all, err
}
