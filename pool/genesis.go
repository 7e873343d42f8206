// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakecover/builtin/params"
	"github.com/vechain/stakecover/builtin/roles"
	"github.com/vechain/stakecover/thor"
)

// executor is granted the setup roles while the genesis is applied.
var executor = thor.BytesToAddress([]byte("GenesisExecutor"))

// Allocation is an initial balance.
type Allocation struct {
	Address thor.Address `yaml:"address"`
	Amount  *big.Int     `yaml:"amount"`
}

// OracleGenesis is the initial oracle setup.
type OracleGenesis struct {
	Threshold     uint32         `yaml:"threshold"`
	Veto          thor.Address   `yaml:"veto"`
	BootstrapEras uint32         `yaml:"bootstrapEras"`
	Members       []OracleMember `yaml:"members"`
}

// Genesis is the initial state of a pool.
type Genesis struct {
	Roles     map[string][]thor.Address `yaml:"roles"`
	Whitelist []thor.Address            `yaml:"whitelist"`
	Params    map[string]*big.Int       `yaml:"params"`
	Oracle    OracleGenesis             `yaml:"oracle"`
	Balances  []Allocation              `yaml:"balances"`
}

// DefaultGenesis returns a genesis with the default parameters and no accounts.
func DefaultGenesis() *Genesis {
	unit := func(n int64) *big.Int { return new(big.Int).Mul(big.NewInt(n), thor.Unit) }
	return &Genesis{
		Roles: map[string][]thor.Address{},
		Params: map[string]*big.Int{
			params.KeyName(thor.KeyMinDeposit):                    unit(1000),
			params.KeyName(thor.KeyMaxDepositTotal):               unit(10_000_000),
			params.KeyName(thor.KeyStakeUnitCover):                big.NewInt(2e13),
			params.KeyName(thor.KeyMaxEraMemberPayout):            unit(10_000),
			params.KeyName(thor.KeyMinPayout):                     unit(1),
			params.KeyName(thor.KeyMemberFee):                     unit(10),
			params.KeyName(thor.KeyInvoiceInterval):               big.NewInt(28),
			params.KeyName(thor.KeyErasBetweenForcedUndelegation): big.NewInt(3),
			params.KeyName(thor.KeyMaxPercentStaked):              big.NewInt(50),
			params.KeyName(thor.KeyNoManualWhitelisting):          big.NewInt(0),
			params.KeyName(thor.KeyUnbondingDelay):                big.NewInt(28),
		},
		Oracle: OracleGenesis{
			Threshold:     1,
			BootstrapEras: 10,
		},
	}
}

// LoadGenesis reads a YAML genesis file. Omitted params keep their default values.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	gen := DefaultGenesis()
	if err := yaml.Unmarshal(data, gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return gen, nil
}

// Initialized tells whether a genesis was applied to the pool store.
func (p *Pool) Initialized() (ok bool, err error) {
	err = p.view(func() error {
		c, err := p.oracle.Consensus()
		if err != nil {
			return err
		}
		ok = c.Threshold != 0
		return nil
	})
	return
}

// ApplyGenesis initializes an empty pool store. It's a no-op once a genesis was applied.
func (p *Pool) ApplyGenesis(gen *Genesis) error {
	ok, err := p.Initialized()
	if err != nil || ok {
		return err
	}
	return p.exec("genesis", func() error {
		for name, value := range gen.Params {
			key, ok := params.ParseKey(name)
			if !ok || value == nil {
				return errors.Errorf("genesis: invalid param %q", name)
			}
			if err := p.params.Set(key, value); err != nil {
				return errors.Wrapf(err, "genesis: param %q", name)
			}
		}
		for _, a := range gen.Balances {
			if a.Amount == nil || a.Amount.Sign() < 0 {
				return errors.Errorf("genesis: invalid balance of %v", a.Address)
			}
			if err := p.bank.Credit(a.Address, a.Amount); err != nil {
				return errors.Wrap(err, "genesis: balance")
			}
		}

		setup := []thor.Bytes32{roles.MemberManager, roles.OracleManager}
		for _, role := range setup {
			if err := p.registry.Grant(role, executor); err != nil {
				return err
			}
		}
		for _, addr := range gen.Whitelist {
			if err := p.cover.Whitelist(executor, addr, true); err != nil {
				return errors.Wrap(err, "genesis: whitelist")
			}
		}
		if err := p.oracle.Init(gen.Oracle.Threshold, gen.Oracle.Veto); err != nil {
			return errors.Wrap(err, "genesis: oracle")
		}
		for _, m := range gen.Oracle.Members {
			if err := p.oracle.AddOracleMember(executor, m.Member, m.Reporter); err != nil {
				return errors.Wrap(err, "genesis: oracle member")
			}
		}
		for _, role := range setup {
			p.registry.Revoke(role, executor)
		}

		for name, accounts := range gen.Roles {
			role, ok := roles.ParseRole(name)
			if !ok {
				return errors.Errorf("genesis: unknown role %q", name)
			}
			for _, acc := range accounts {
				if err := p.registry.Grant(role, acc); err != nil {
					return err
				}
				p.emit(KindRoleGranted, acc, roleChange{name, acc})
			}
		}
		logger.Info("genesis applied", "roles", len(gen.Roles), "whitelist", len(gen.Whitelist), "oracleMembers", len(gen.Oracle.Members))
		return nil
	})
}
