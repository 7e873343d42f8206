// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakecover/builtin/reverts"
	"github.com/vechain/stakecover/builtin/roles"
	"github.com/vechain/stakecover/thor"
)

// ReporterOf returns the reporter registered by member, zero if none.
func (o *Oracle) ReporterOf(member thor.Address) (thor.Address, error) {
	r, err := o.reporters.Get(member)
	if err != nil {
		return thor.Address{}, errors.Wrap(err, "failed to get reporter")
	}
	return r, nil
}

// MemberOf returns the member represented by reporter, zero if none.
func (o *Oracle) MemberOf(reporter thor.Address) (thor.Address, error) {
	m, err := o.owners.Get(reporter)
	if err != nil {
		return thor.Address{}, errors.Wrap(err, "failed to get member")
	}
	return m, nil
}

// OracleMembers returns registered members in registration order.
func (o *Oracle) OracleMembers() ([]thor.Address, error) {
	return o.list.All()
}

func (o *Oracle) bootstrapOpen() (bool, error) {
	c, err := o.Consensus()
	if err != nil {
		return false, err
	}
	return c.EraID < o.cfg.BootstrapEras, nil
}

// AddOracleMember registers a reporter for member during the bootstrap period.
func (o *Oracle) AddOracleMember(caller, member, reporter thor.Address) error {
	if err := roles.Require(o.auth, roles.OracleManager, caller); err != nil {
		return err
	}
	open, err := o.bootstrapOpen()
	if err != nil {
		return err
	}
	if !open {
		return errBootstrapClosed
	}
	return o.register(member, reporter)
}

// RegisterAsOracleMember is the self-service registration once the bootstrap period is over.
func (o *Oracle) RegisterAsOracleMember(caller, member, reporter thor.Address) error {
	open, err := o.bootstrapOpen()
	if err != nil {
		return err
	}
	if open {
		return errBootstrapOpen
	}
	if err := roles.RequireMemberOrOperator(o.operators, member, caller); err != nil {
		return err
	}
	ok, err := o.members.IsMember(member)
	if err != nil {
		return err
	}
	if !ok {
		return errNotCoverMember
	}
	return o.register(member, reporter)
}

func (o *Oracle) register(member, reporter thor.Address) error {
	if reporter.IsZero() || member.IsZero() {
		return errZeroReporter
	}
	existing, err := o.ReporterOf(member)
	if err != nil {
		return err
	}
	if !existing.IsZero() {
		return errMemberHasOracle
	}
	owner, err := o.MemberOf(reporter)
	if err != nil {
		return err
	}
	if !owner.IsZero() {
		return errReporterInUse
	}

	if err := o.reporters.Set(member, reporter); err != nil {
		return errors.Wrap(err, "failed to set reporter")
	}
	if err := o.owners.Set(reporter, member); err != nil {
		return errors.Wrap(err, "failed to set member")
	}
	if err := o.list.Add(member); err != nil {
		return errors.Wrap(err, "failed to link oracle member")
	}

	logger.Debug("registered oracle member", "member", member, "reporter", reporter)
	return nil
}

// RemoveOracleMember unregisters member. Allowed for the oracle manager, the member or its operator.
func (o *Oracle) RemoveOracleMember(caller, member thor.Address) error {
	reporter, err := o.ReporterOf(member)
	if err != nil {
		return err
	}
	if reporter.IsZero() {
		return errUnknownMember
	}

	isManager, err := o.auth.HasRole(roles.OracleManager, caller)
	if err != nil {
		return err
	}
	if !isManager {
		if err := roles.RequireMemberOrOperator(o.operators, member, caller); err != nil {
			if reverts.IsUnauthorized(err) {
				return errUnauthorizedRemove
			}
			return err
		}
	}

	if err := o.retractVote(member); err != nil {
		return err
	}
	o.reporters.Delete(member)
	o.owners.Delete(reporter)
	o.rings.Delete(member)
	if err := o.list.Remove(member); err != nil {
		return errors.Wrap(err, "failed to unlink oracle member")
	}

	logger.Debug("removed oracle member", "member", member, "reporter", reporter)
	return nil
}
