// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakecover/builtin/linkedlist"
	"github.com/vechain/stakecover/builtin/solidity"
	"github.com/vechain/stakecover/thor"
)

var (
	slotAmounts       = nameToSlot("delegation-amounts")
	slotStakedTotal   = nameToSlot("staked-total")
	slotRequests      = nameToSlot("unbonding-requests")
	slotRequestsHead  = nameToSlot("unbonding-requests-head")
	slotRequestsTail  = nameToSlot("unbonding-requests-tail")
	slotLastForcedEra = nameToSlot("last-forced-era")
	slotForced        = nameToSlot("forced")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

type requestID uint64

func (id requestID) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(id))
}

type requestBody struct {
	Candidate     thor.Address
	Amount        *big.Int
	EraExecutable uint32
	Revoke        bool
	Forced        bool
}

// storage holds the delegation entries and the unbonding queue.
type storage struct {
	candidates  *linkedlist.LinkedList
	amounts     *solidity.Mapping[thor.Address, *big.Int]
	stakedTotal *solidity.Uint256

	requests     *solidity.Mapping[requestID, *requestBody]
	requestsHead *solidity.Raw[uint64] // oldest request possibly pending
	requestsTail *solidity.Raw[uint64] // next request id

	lastForcedEra *solidity.Raw[uint32]
	forced        *solidity.Raw[bool]
}

func newStorage(sctx *solidity.Context) *storage {
	return &storage{
		candidates:    linkedlist.New(sctx, "delegation-candidates"),
		amounts:       solidity.NewMapping[thor.Address, *big.Int](sctx, slotAmounts),
		stakedTotal:   solidity.NewUint256(sctx, slotStakedTotal),
		requests:      solidity.NewMapping[requestID, *requestBody](sctx, slotRequests),
		requestsHead:  solidity.NewRaw[uint64](sctx, slotRequestsHead),
		requestsTail:  solidity.NewRaw[uint64](sctx, slotRequestsTail),
		lastForcedEra: solidity.NewRaw[uint32](sctx, slotLastForcedEra),
		forced:        solidity.NewRaw[bool](sctx, slotForced),
	}
}

func (s *storage) amount(candidate thor.Address) (*big.Int, error) {
	v, err := s.amounts.Get(candidate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get delegation")
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

// setAmount stores the entry, a zero amount unlinks it.
func (s *storage) setAmount(candidate thor.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		s.amounts.Delete(candidate)
		return s.candidates.Remove(candidate)
	}
	if err := s.amounts.Set(candidate, amount); err != nil {
		return errors.Wrap(err, "failed to set delegation")
	}
	return s.candidates.Add(candidate)
}

// entries returns the delegations in insertion order.
func (s *storage) entries() ([]Entry, error) {
	var entries []Entry
	err := s.candidates.Iter(func(candidate thor.Address) error {
		amount, err := s.amount(candidate)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Candidate: candidate, Amount: amount})
		return nil
	})
	return entries, err
}

func (s *storage) pushRequest(body *requestBody) (*Request, error) {
	id, err := s.requestsTail.Get()
	if err != nil {
		return nil, err
	}
	if err := s.requests.Set(requestID(id), body); err != nil {
		return nil, errors.Wrap(err, "failed to queue request")
	}
	if err := s.requestsTail.Set(id + 1); err != nil {
		return nil, err
	}
	return body.toRequest(id), nil
}

// pendingRequests returns the queued requests in queue order.
func (s *storage) pendingRequests() ([]*Request, error) {
	head, err := s.requestsHead.Get()
	if err != nil {
		return nil, err
	}
	tail, err := s.requestsTail.Get()
	if err != nil {
		return nil, err
	}
	var pending []*Request
	for id := head; id < tail; id++ {
		body, err := s.requests.Get(requestID(id))
		if err != nil {
			return nil, errors.Wrap(err, "failed to get request")
		}
		if body.Amount == nil {
			continue
		}
		pending = append(pending, body.toRequest(id))
	}
	return pending, nil
}

// removeRequest deletes a request and advances the head past executed ones.
func (s *storage) removeRequest(id uint64) error {
	s.requests.Delete(requestID(id))

	head, err := s.requestsHead.Get()
	if err != nil {
		return err
	}
	tail, err := s.requestsTail.Get()
	if err != nil {
		return err
	}
	for ; head < tail; head++ {
		body, err := s.requests.Get(requestID(head))
		if err != nil {
			return errors.Wrap(err, "failed to get request")
		}
		if body.Amount != nil {
			break
		}
	}
	return s.requestsHead.Set(head)
}

func (b *requestBody) toRequest(id uint64) *Request {
	return &Request{
		ID:            id,
		Candidate:     b.Candidate,
		Amount:        b.Amount,
		EraExecutable: b.EraExecutable,
		Revoke:        b.Revoke,
		Forced:        b.Forced,
	}
}
