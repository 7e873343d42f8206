// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/vechain/stakecover/builtin/oracle"
	"github.com/vechain/stakecover/builtin/oracle/report"
	"github.com/vechain/stakecover/builtin/relay"
	"github.com/vechain/stakecover/thor"
)

// OracleMember is a member with its reporter.
type OracleMember struct {
	Member   thor.Address `json:"member" yaml:"member"`
	Reporter thor.Address `json:"reporter" yaml:"reporter"`
}

// AddOracleMember registers a reporter during the bootstrap period.
func (p *Pool) AddOracleMember(caller, member, reporter thor.Address) error {
	return p.exec("addOracleMember", func() error {
		if err := p.oracle.AddOracleMember(caller, member, reporter); err != nil {
			return err
		}
		p.emit(KindOracleMemberAdded, member, OracleMember{member, reporter})
		return nil
	})
}

// RegisterAsOracleMember registers a reporter for a cover member after the bootstrap period.
func (p *Pool) RegisterAsOracleMember(caller, member, reporter thor.Address) error {
	return p.exec("registerAsOracleMember", func() error {
		if err := p.oracle.RegisterAsOracleMember(caller, member, reporter); err != nil {
			return err
		}
		p.emit(KindOracleMemberAdded, member, OracleMember{member, reporter})
		return nil
	})
}

// RemoveOracleMember unregisters the reporter of member.
func (p *Pool) RemoveOracleMember(caller, member thor.Address) error {
	return p.exec("removeOracleMember", func() error {
		reporter, err := p.oracle.ReporterOf(member)
		if err != nil {
			return err
		}
		if err := p.oracle.RemoveOracleMember(caller, member); err != nil {
			return err
		}
		p.emit(KindOracleMemberRemoved, member, OracleMember{member, reporter})
		return nil
	})
}

// ReportEraPart submits the vote of member's reporter.
func (p *Pool) ReportEraPart(caller, member thor.Address, eraID uint32, nonce uint64, payload *report.Report) (out *oracle.Outcome, err error) {
	err = p.exec("reportEraPart", func() error {
		out, err = p.oracle.ReportEraPart(caller, member, eraID, nonce, payload)
		if err != nil {
			return err
		}
		p.emit(KindReportSubmitted, member, out)
		if out.Finalized {
			metricReports().Add(1)
			p.emit(KindReportFinalized, thor.Address{}, map[string]any{"nonce": out.Nonce, "eraId": eraID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetQuorum changes the threshold and reports whether a pending part finalized.
func (p *Pool) SetQuorum(caller thor.Address, threshold uint32) (finalized bool, err error) {
	err = p.exec("setQuorum", func() error {
		finalized, err = p.oracle.SetQuorum(caller, threshold)
		if err != nil {
			return err
		}
		p.emit(KindQuorumSet, caller, map[string]any{"threshold": threshold, "finalized": finalized})
		if finalized {
			metricReports().Add(1)
		}
		return nil
	})
	return
}

// SetVeto sets the veto member, the zero address disables the veto.
func (p *Pool) SetVeto(caller, member thor.Address) error {
	return p.exec("setVeto", func() error {
		if err := p.oracle.SetVeto(caller, member); err != nil {
			return err
		}
		p.emit(KindVetoSet, member, map[string]thor.Address{"veto": member})
		return nil
	})
}

// Consensus returns the era report state.
func (p *Pool) Consensus() (c *oracle.Consensus, err error) {
	err = p.view(func() error {
		c, err = p.oracle.Consensus()
		return err
	})
	return
}

// OracleMembers returns the registered members with their reporters.
func (p *Pool) OracleMembers() (members []OracleMember, err error) {
	err = p.view(func() error {
		list, err := p.oracle.OracleMembers()
		if err != nil {
			return err
		}
		for _, m := range list {
			reporter, err := p.oracle.ReporterOf(m)
			if err != nil {
				return err
			}
			members = append(members, OracleMember{m, reporter})
		}
		return nil
	})
	return
}

// RelayStatus returns the last relayed position.
func (p *Pool) RelayStatus() (s *relay.Status, err error) {
	err = p.view(func() error {
		s, err = p.relay.Status()
		return err
	})
	return
}
