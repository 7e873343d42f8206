// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/vechain/stakecover/builtin/oracle/report"
	"github.com/vechain/stakecover/builtin/roles"
	"github.com/vechain/stakecover/thor"
)

// Outcome describes the effect of an accepted vote.
type Outcome struct {
	Nonce     uint64       // nonce the vote was cast for
	Hash      thor.Bytes32 // content hash of the voted part
	Votes     uint32       // matching votes including this one
	Finalized bool
}

func groupKey(nonce uint64, hash thor.Bytes32) thor.Bytes32 {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce)
	return thor.Blake2b(n[:], hash[:])
}

// ReportEraPart records the vote of member for the pending part and finalizes it once quorum is reached.
func (o *Oracle) ReportEraPart(caller, member thor.Address, eraID uint32, nonce uint64, payload *report.Report) (*Outcome, error) {
	reporter, err := o.ReporterOf(member)
	if err != nil {
		return nil, err
	}
	if reporter.IsZero() || reporter != caller {
		return nil, errNotOracleMember
	}

	c, err := o.Consensus()
	if err != nil {
		return nil, err
	}
	if nonce != c.Nonce {
		return nil, errStaleNonce
	}
	ring, err := o.rings.Get(member)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get vote ring")
	}
	if ring.Voted(nonce) {
		return nil, errAlreadySubmitted
	}
	if eraID < c.EraID {
		return nil, errEraConcluded
	}
	if payload == nil || payload.EraID != eraID {
		return nil, errEraMismatch
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	ring.Mark(nonce)
	if err := o.rings.Set(member, ring); err != nil {
		return nil, errors.Wrap(err, "failed to set vote ring")
	}

	hash := payload.ContentHash()
	key := groupKey(nonce, hash)
	group, err := o.groups.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get vote group")
	}
	if group.Votes == 0 {
		group.Report = payload
		if err := o.addPending(key); err != nil {
			return nil, err
		}
	}
	group.Votes++
	group.Finalizable = group.Finalizable || payload.Finalize
	if !c.Veto.IsZero() && member == c.Veto {
		group.VetoVoted = true
		c.LastEraVetoVoted = eraID
		if err := o.consensus.Set(c); err != nil {
			return nil, errors.Wrap(err, "failed to set consensus")
		}
	}
	if err := o.groups.Set(key, group); err != nil {
		return nil, errors.Wrap(err, "failed to set vote group")
	}
	if err := o.ballots.Set(member, &ballot{Nonce: nonce, Group: key}); err != nil {
		return nil, errors.Wrap(err, "failed to set ballot")
	}

	logger.Debug("recorded vote", "member", member, "era", eraID, "nonce", nonce, "hash", hash.AbbrevString(), "votes", group.Votes)

	outcome := &Outcome{Nonce: nonce, Hash: hash, Votes: group.Votes}
	if o.quorumReached(c, group, eraID) {
		if err := o.finalize(c, group); err != nil {
			return nil, err
		}
		outcome.Finalized = true
	}
	return outcome, nil
}

func (o *Oracle) quorumReached(c *Consensus, group *voteGroup, eraID uint32) bool {
	if group.Votes < c.Threshold || !group.Finalizable {
		return false
	}
	if c.Veto.IsZero() || group.VetoVoted {
		return true
	}
	if c.LastEraVetoVoted+thor.VetoStaleEras < eraID {
		logger.Warn("finalizing without veto vote, veto reporter is stale",
			"veto", c.Veto, "lastEraVetoVoted", c.LastEraVetoVoted, "era", eraID)
		return true
	}
	return false
}

// finalize forwards the group's part and moves to the next nonce.
func (o *Oracle) finalize(c *Consensus, group *voteGroup) error {
	nonce := c.Nonce
	if err := o.forwarder.Push(nonce, group.Report); err != nil {
		return err
	}

	c.EraID = group.Report.EraID
	c.Nonce++
	if err := o.consensus.Set(c); err != nil {
		return errors.Wrap(err, "failed to set consensus")
	}

	keys, err := o.pending.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get pending groups")
	}
	for _, k := range keys {
		o.groups.Delete(k)
	}
	if err := o.pending.Set(nil); err != nil {
		return errors.Wrap(err, "failed to reset pending groups")
	}

	if err := o.list.Iter(func(member thor.Address) error {
		ring, err := o.rings.Get(member)
		if err != nil {
			return err
		}
		if !ring.Voted(c.Nonce) {
			return nil
		}
		ring.Clear(c.Nonce)
		return o.rings.Set(member, ring)
	}); err != nil {
		return errors.Wrap(err, "failed to clear vote rings")
	}

	logger.Info("finalized report part", "era", c.EraID, "nonce", nonce, "collators", len(group.Report.Collators))
	return nil
}

// retractVote takes the vote of member out of the pending part, if it cast one.
func (o *Oracle) retractVote(member thor.Address) error {
	b, err := o.ballots.Get(member)
	if err != nil {
		return errors.Wrap(err, "failed to get ballot")
	}
	o.ballots.Delete(member)
	if b.Group.IsZero() {
		return nil
	}
	c, err := o.Consensus()
	if err != nil {
		return err
	}
	if b.Nonce != c.Nonce {
		return nil
	}

	group, err := o.groups.Get(b.Group)
	if err != nil {
		return errors.Wrap(err, "failed to get vote group")
	}
	if group.Votes == 0 {
		return nil
	}
	group.Votes--
	if member == c.Veto {
		group.VetoVoted = false
	}
	if group.Votes > 0 {
		if err := o.groups.Set(b.Group, group); err != nil {
			return errors.Wrap(err, "failed to set vote group")
		}
	} else {
		o.groups.Delete(b.Group)
		if err := o.removePending(b.Group); err != nil {
			return err
		}
	}

	logger.Debug("retracted vote", "member", member, "nonce", b.Nonce, "votes", group.Votes)
	return nil
}

func (o *Oracle) removePending(key thor.Bytes32) error {
	keys, err := o.pending.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get pending groups")
	}
	kept := keys[:0]
	for _, k := range keys {
		if k != key {
			kept = append(kept, k)
		}
	}
	return o.pending.Set(kept)
}

func (o *Oracle) addPending(key thor.Bytes32) error {
	keys, err := o.pending.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get pending groups")
	}
	return o.pending.Set(append(keys, key))
}

// SetQuorum changes the threshold. Lowering it finalizes a pending part that already satisfies it.
func (o *Oracle) SetQuorum(caller thor.Address, threshold uint32) (bool, error) {
	if err := roles.Require(o.auth, roles.OracleManager, caller); err != nil {
		return false, err
	}
	if threshold == 0 {
		return false, errInvalidQuorum
	}
	c, err := o.Consensus()
	if err != nil {
		return false, err
	}
	lowered := threshold < c.Threshold
	c.Threshold = threshold
	if err := o.consensus.Set(c); err != nil {
		return false, errors.Wrap(err, "failed to set consensus")
	}
	if !lowered {
		return false, nil
	}

	keys, err := o.pending.Get()
	if err != nil {
		return false, errors.Wrap(err, "failed to get pending groups")
	}
	for _, k := range keys {
		group, err := o.groups.Get(k)
		if err != nil {
			return false, errors.Wrap(err, "failed to get vote group")
		}
		if o.quorumReached(c, group, group.Report.EraID) {
			logger.Info("quorum softened", "threshold", threshold, "votes", group.Votes)
			return true, o.finalize(c, group)
		}
	}
	return false, nil
}

// SetVeto designates the veto member, zero disables the veto.
func (o *Oracle) SetVeto(caller, member thor.Address) error {
	if err := roles.Require(o.auth, roles.OracleManager, caller); err != nil {
		return err
	}
	c, err := o.Consensus()
	if err != nil {
		return err
	}
	c.Veto = member
	return o.consensus.Set(c)
}
