// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"

	"github.com/stakemesh/stakemesh/mesh"
)

// Entry is the stake a user holds with one validator.
// Created on first stake, never deleted; the amount may return to zero.
type Entry struct {
	Amount   *big.Int
	StakedAt uint64 // timestamp of the first stake to this validator
}

func (e *Entry) normalize() *Entry {
	if e.Amount == nil {
		e.Amount = new(big.Int)
	}
	return e
}

// Account aggregates a user's balances across all validators.
//
// Funds move Staked -> Cooling -> Parked -> withdrawn; restake short-circuits
// Cooling/Parked back to Staked.
type Account struct {
	Staked      *big.Int // invariant: equals the sum of the user's entries
	Cooling     *big.Int
	Parked      *big.Int
	CooldownEnd uint64 // when the cooling bucket matures; zero when nothing cools
	LastUpdated uint64
}

func (a *Account) normalize() *Account {
	if a.Staked == nil {
		a.Staked = new(big.Int)
	}
	if a.Cooling == nil {
		a.Cooling = new(big.Int)
	}
	if a.Parked == nil {
		a.Parked = new(big.Int)
	}
	return a
}

// Withdrawable returns the amount a withdraw at the given time would pay out.
func (a *Account) Withdrawable(now uint64) *big.Int {
	total := new(big.Int).Set(a.Parked)
	if a.CooldownEnd != 0 && a.CooldownEnd <= now {
		total.Add(total, a.Cooling)
	}
	return total
}

type pairKey struct {
	user mesh.Address
	id   mesh.ValidatorID
}

func (k pairKey) Bytes() []byte {
	h := mesh.Blake2b(k.user.Bytes(), k.id.Bytes())
	return h.Bytes()
}
