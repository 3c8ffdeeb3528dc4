// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validator

import (
	"math/big"

	"github.com/stakemesh/stakemesh/mesh"
)

// Validator is a registry entry. Entries are never deleted, only deactivated.
type Validator struct {
	Commission   *big.Int     // fraction of delegator rewards, 1e18 fixed point
	Admin        mesh.Address // operational control of the validator
	Withdraw     mesh.Address // receives commission payouts
	Capacity     *big.Int     // max delegated stake, 0 = unlimited
	Delegated    *big.Int     // sum of all user stake delegated to this validator
	Active       bool
	RegisteredAt uint64
}

// IsEmpty returns whether the entry can be treated as unregistered.
func (v *Validator) IsEmpty() bool {
	return v.RegisteredAt == 0 && v.Admin.IsZero()
}

// HasCapacityFor returns whether adding amount keeps the delegated total
// within capacity. Zero capacity means unlimited.
func (v *Validator) HasCapacityFor(amount *big.Int) bool {
	if v.Capacity == nil || v.Capacity.Sign() == 0 {
		return true
	}
	next := new(big.Int).Add(v.Delegated, amount)
	return next.Cmp(v.Capacity) <= 0
}

func (v *Validator) normalize() *Validator {
	if v.Commission == nil {
		v.Commission = new(big.Int)
	}
	if v.Capacity == nil {
		v.Capacity = new(big.Int)
	}
	if v.Delegated == nil {
		v.Delegated = new(big.Int)
	}
	return v
}

// CommissionCheckpoint records a commission rate change.
type CommissionCheckpoint struct {
	Timestamp uint64
	Rate      *big.Int
}
