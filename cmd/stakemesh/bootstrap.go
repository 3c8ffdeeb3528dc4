// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/json"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/stakemesh/stakemesh/kv"
	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/staking"
	"github.com/stakemesh/stakemesh/staking/authority"
	"github.com/stakemesh/stakemesh/staking/treasury"
)

// genesisSpec is the on-disk shape of a genesis file. Amounts and rates are
// hex or decimal strings.
type genesisSpec struct {
	Operator    string `json:"operator"`
	NativeToken string `json:"nativeToken"`
	Roles       []struct {
		Role    string `json:"role"`
		Address string `json:"address"`
	} `json:"roles"`
	Validators []struct {
		ID         uint64                 `json:"id"`
		Commission *math.HexOrDecimal256 `json:"commission"`
		Admin      string                 `json:"admin"`
		Withdraw   string                 `json:"withdraw"`
		Capacity   *math.HexOrDecimal256 `json:"capacity"`
	} `json:"validators"`
	Tokens []struct {
		Address string                 `json:"address"`
		Rate    *math.HexOrDecimal256 `json:"rate"`
		MaxRate *math.HexOrDecimal256 `json:"maxRate"`
		Fund    *math.HexOrDecimal256 `json:"fund"`
	} `json:"tokens"`
}

func loadGenesis(path string) (*genesisSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	var gene genesisSpec
	if err := json.Unmarshal(data, &gene); err != nil {
		return nil, errors.Wrap(err, "parse genesis file")
	}
	return &gene, nil
}

var genesisAppliedKey = []byte("genesis-applied")

// applyGenesis seeds roles, validators and reward tokens on first start.
// A marker key makes it a no-op on restart.
func applyGenesis(
	store kv.GetPutter,
	gene *genesisSpec,
	registry *authority.Registry,
	funds *treasury.FundLedger,
	staker *staking.Staker,
) error {
	applied, err := store.Has(genesisAppliedKey)
	if err != nil {
		return err
	}
	if applied {
		logger.Info("genesis already applied, skipping")
		return nil
	}

	operator, err := mesh.ParseAddress(gene.Operator)
	if err != nil {
		return errors.Wrap(err, "genesis operator")
	}
	// the operator runs every bootstrap op, so it needs all three roles
	for _, role := range []string{authority.RoleAdmin, authority.RoleRewardOp, authority.RoleTreasurer} {
		if err := registry.Grant(role, operator); err != nil {
			return err
		}
	}
	for _, grant := range gene.Roles {
		addr, err := mesh.ParseAddress(grant.Address)
		if err != nil {
			return errors.Wrapf(err, "genesis role %s", grant.Role)
		}
		if err := registry.Grant(grant.Role, addr); err != nil {
			return err
		}
	}

	for _, v := range gene.Validators {
		admin, err := mesh.ParseAddress(v.Admin)
		if err != nil {
			return errors.Wrapf(err, "genesis validator %d admin", v.ID)
		}
		withdraw, err := mesh.ParseAddress(v.Withdraw)
		if err != nil {
			return errors.Wrapf(err, "genesis validator %d withdraw", v.ID)
		}
		if err := staker.AddValidator(
			operator,
			mesh.ValidatorID(v.ID),
			bigOrZero(v.Commission),
			admin,
			withdraw,
			bigOrZero(v.Capacity),
		); err != nil {
			return errors.Wrapf(err, "genesis validator %d", v.ID)
		}
		logger.Info("genesis validator added", "id", v.ID)
	}

	for _, tok := range gene.Tokens {
		addr, err := mesh.ParseAddress(tok.Address)
		if err != nil {
			return errors.Wrap(err, "genesis token address")
		}
		if err := staker.AddRewardToken(operator, addr, bigOrZero(tok.Rate), bigOrZero(tok.MaxRate)); err != nil {
			return errors.Wrapf(err, "genesis token %s", tok.Address)
		}
		if fund := bigOrZero(tok.Fund); fund.Sign() > 0 {
			if err := funds.Deposit(addr, fund); err != nil {
				return err
			}
			if err := staker.FundRewards(operator, addr, fund); err != nil {
				return errors.Wrapf(err, "genesis token %s fund", tok.Address)
			}
		}
		logger.Info("genesis reward token listed", "token", tok.Address)
	}

	return store.Put(genesisAppliedKey, []byte{1})
}

func bigOrZero(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return (*big.Int)(v)
}
