// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakingapi

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/staking"
	"github.com/stakemesh/stakemesh/staking/reward"
	"github.com/stakemesh/stakemesh/staking/stake"
	"github.com/stakemesh/stakemesh/staking/validator"
)

func dec(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(v)
}

// Validator for marshal validator
type Validator struct {
	ID           uint64                `json:"id"`
	Commission   *math.HexOrDecimal256 `json:"commission"`
	Admin        mesh.Address          `json:"admin"`
	Withdraw     mesh.Address          `json:"withdraw"`
	Capacity     *math.HexOrDecimal256 `json:"capacity"`
	Delegated    *math.HexOrDecimal256 `json:"delegated"`
	Active       bool                  `json:"active"`
	RegisteredAt uint64                `json:"registeredAt"`
}

func convertValidator(id mesh.ValidatorID, v *validator.Validator) *Validator {
	return &Validator{
		ID:           uint64(id),
		Commission:   dec(v.Commission),
		Admin:        v.Admin,
		Withdraw:     v.Withdraw,
		Capacity:     dec(v.Capacity),
		Delegated:    dec(v.Delegated),
		Active:       v.Active,
		RegisteredAt: v.RegisteredAt,
	}
}

// CommissionCheckpoint one historical commission rate change
type CommissionCheckpoint struct {
	Timestamp uint64                `json:"timestamp"`
	Rate      *math.HexOrDecimal256 `json:"rate"`
}

// Commission response of the commission endpoint
type Commission struct {
	History []CommissionCheckpoint  `json:"history"`
	Accrued []CommissionTokenAmount `json:"accrued"`
}

// CommissionTokenAmount accrued commission in one token
type CommissionTokenAmount struct {
	Token  mesh.Address          `json:"token"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// StakeEntry the user's stake with one validator
type StakeEntry struct {
	Validator uint64                `json:"validator"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	StakedAt  uint64                `json:"stakedAt"`
}

// Account aggregate balances of one user
type Account struct {
	Staked      *math.HexOrDecimal256 `json:"staked"`
	Cooling     *math.HexOrDecimal256 `json:"cooling"`
	Parked      *math.HexOrDecimal256 `json:"parked"`
	CooldownEnd uint64                `json:"cooldownEnd"`
	LastUpdated uint64                `json:"lastUpdated"`
	Entries     []StakeEntry          `json:"entries"`
}

func convertAccount(a *stake.Account, entries []StakeEntry) *Account {
	return &Account{
		Staked:      dec(a.Staked),
		Cooling:     dec(a.Cooling),
		Parked:      dec(a.Parked),
		CooldownEnd: a.CooldownEnd,
		LastUpdated: a.LastUpdated,
		Entries:     entries,
	}
}

// RewardPreview claimable reward of one (validator, token) leg
type RewardPreview struct {
	Validator uint64                `json:"validator"`
	Token     mesh.Address          `json:"token"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
}

func convertPreviews(previews []staking.RewardPreview) []RewardPreview {
	out := make([]RewardPreview, 0, len(previews))
	for _, p := range previews {
		out = append(out, RewardPreview{
			Validator: uint64(p.Validator),
			Token:     p.Token,
			Amount:    dec(p.Amount),
		})
	}
	return out
}

// Token reward token registry entry
type Token struct {
	Address    mesh.Address          `json:"address"`
	Rate       *math.HexOrDecimal256 `json:"rate"`
	MaxRate    *math.HexOrDecimal256 `json:"maxRate"`
	Available  *math.HexOrDecimal256 `json:"available"`
	LastUpdate uint64                `json:"lastUpdate"`
}

func convertToken(address mesh.Address, t *reward.Token) *Token {
	return &Token{
		Address:    address,
		Rate:       dec(t.Rate),
		MaxRate:    dec(t.MaxRate),
		Available:  dec(t.Available),
		LastUpdate: t.LastUpdate,
	}
}

// Totals ledger-wide stake amounts
type Totals struct {
	Staked    *math.HexOrDecimal256 `json:"staked"`
	Unbonding *math.HexOrDecimal256 `json:"unbonding"`
}
