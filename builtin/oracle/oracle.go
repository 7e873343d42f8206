// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakecover/builtin/linkedlist"
	"github.com/vechain/stakecover/builtin/oracle/report"
	"github.com/vechain/stakecover/builtin/roles"
	"github.com/vechain/stakecover/builtin/solidity"
	"github.com/vechain/stakecover/log"
	"github.com/vechain/stakecover/thor"
)

var logger = log.WithContext("pkg", "oracle")

var (
	slotConsensus = thor.BytesToBytes32([]byte("consensus"))
	slotGroups    = thor.BytesToBytes32([]byte("vote-groups"))
	slotPending   = thor.BytesToBytes32([]byte("pending-groups"))
	slotRings     = thor.BytesToBytes32([]byte("vote-rings"))
	slotBallots   = thor.BytesToBytes32([]byte("member-ballots"))
	slotReporter  = thor.BytesToBytes32([]byte("member-reporter"))
	slotMember    = thor.BytesToBytes32([]byte("reporter-member"))
)

// Forwarder receives finalized report parts.
type Forwarder interface {
	Push(nonce uint64, r *report.Report) error
}

// Members tells whether an address is a cover member.
type Members interface {
	IsMember(addr thor.Address) (bool, error)
}

// Config is the deployment configuration of the oracle.
type Config struct {
	// BootstrapEras is the number of eras during which the oracle manager adds members.
	BootstrapEras uint32
}

// Consensus is the era report state.
type Consensus struct {
	EraID            uint32       // last finalized era
	Nonce            uint64       // pending part nonce
	Threshold        uint32       // matching votes required
	Veto             thor.Address // zero disables the veto
	LastEraVetoVoted uint32
}

type voteGroup struct {
	Votes       uint32
	Finalizable bool
	VetoVoted   bool
	Report      *report.Report
}

// ballot is the vote group a member joined for the pending part.
type ballot struct {
	Nonce uint64
	Group thor.Bytes32 // zero when the member has not voted
}

// Oracle implements the oracle member registry and the quorum aggregator.
type Oracle struct {
	cfg       Config
	auth      roles.Authorizer
	operators roles.Operators
	members   Members
	forwarder Forwarder

	consensus *solidity.Raw[*Consensus]
	groups    *solidity.Mapping[thor.Bytes32, *voteGroup]
	pending   *solidity.Raw[[]thor.Bytes32]
	rings     *solidity.Mapping[thor.Address, Ring]
	ballots   *solidity.Mapping[thor.Address, *ballot]
	reporters *solidity.Mapping[thor.Address, thor.Address] // member => reporter
	owners    *solidity.Mapping[thor.Address, thor.Address] // reporter => member
	list      *linkedlist.LinkedList
}

func New(
	sctx *solidity.Context,
	cfg Config,
	auth roles.Authorizer,
	operators roles.Operators,
	members Members,
	forwarder Forwarder,
) *Oracle {
	return &Oracle{
		cfg:       cfg,
		auth:      auth,
		operators: operators,
		members:   members,
		forwarder: forwarder,

		consensus: solidity.NewRaw[*Consensus](sctx, slotConsensus),
		groups:    solidity.NewMapping[thor.Bytes32, *voteGroup](sctx, slotGroups),
		pending:   solidity.NewRaw[[]thor.Bytes32](sctx, slotPending),
		rings:     solidity.NewMapping[thor.Address, Ring](sctx, slotRings),
		ballots:   solidity.NewMapping[thor.Address, *ballot](sctx, slotBallots),
		reporters: solidity.NewMapping[thor.Address, thor.Address](sctx, slotReporter),
		owners:    solidity.NewMapping[thor.Address, thor.Address](sctx, slotMember),
		list:      linkedlist.New(sctx, "oracle-members"),
	}
}

// Init sets the initial quorum threshold. It's a no-op once a threshold is configured.
func (o *Oracle) Init(threshold uint32, veto thor.Address) error {
	c, err := o.Consensus()
	if err != nil {
		return err
	}
	if c.Threshold != 0 {
		return nil
	}
	if threshold == 0 {
		return errInvalidQuorum
	}
	c.Threshold = threshold
	c.Veto = veto
	return o.consensus.Set(c)
}

// Consensus returns the era report state.
func (o *Oracle) Consensus() (*Consensus, error) {
	c, err := o.consensus.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get consensus")
	}
	return c, nil
}

// Ring returns the vote ring of member.
func (o *Oracle) Ring(member thor.Address) (Ring, error) {
	return o.rings.Get(member)
}
