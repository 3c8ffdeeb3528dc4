// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reward implements checkpointed, multi-token reward accrual.
//
// Every listed token carries a global rate checkpoint log and one log per
// (validator, token) pair. A checkpoint stores the rate in force from its
// timestamp on and the cumulative reward-per-unit-stake index accrued up to
// it. Settlement never replays wall-clock time: it walks the checkpoints
// appended since the user's last settlement and charges each rate segment
// once.
package reward

import (
	"math/big"

	"github.com/stakemesh/stakemesh/mesh"
)

// Token is a reward token registry entry.
type Token struct {
	Rate       *big.Int // reward per second per unit of stake, 1e18 fixed point
	MaxRate    *big.Int // cap on Rate, fixed at listing time
	Available  *big.Int // externally funded balance claims draw from
	LastUpdate uint64
	Listed     bool
}

func (t *Token) normalize() *Token {
	if t.Rate == nil {
		t.Rate = new(big.Int)
	}
	if t.MaxRate == nil {
		t.MaxRate = new(big.Int)
	}
	if t.Available == nil {
		t.Available = new(big.Int)
	}
	return t
}

// Checkpoint is an immutable rate-change marker. Index is the cumulative
// reward-per-unit-stake accrued up to Timestamp; Rate applies from Timestamp
// until the next checkpoint.
type Checkpoint struct {
	Timestamp uint64
	Rate      *big.Int
	Index     *big.Int
}

func (c *Checkpoint) normalize() *Checkpoint {
	if c.Rate == nil {
		c.Rate = new(big.Int)
	}
	if c.Index == nil {
		c.Index = new(big.Int)
	}
	return c
}

// indexAt extrapolates the cumulative index from the checkpoint to now.
func (c *Checkpoint) indexAt(now uint64) *big.Int {
	if now <= c.Timestamp {
		return new(big.Int).Set(c.Index)
	}
	elapsed := new(big.Int).SetUint64(now - c.Timestamp)
	return new(big.Int).Add(c.Index, elapsed.Mul(elapsed, c.Rate))
}

// UserState tracks how far one (user, validator, token) triple has been
// settled.
type UserState struct {
	PaidIndex    *big.Int // cumulative index the user was last settled against
	PaidPos      uint64   // checkpoint position PaidIndex was taken at
	StoredReward *big.Int // settled, unclaimed net reward
}

func (u *UserState) normalize() *UserState {
	if u.PaidIndex == nil {
		u.PaidIndex = new(big.Int)
	}
	if u.StoredReward == nil {
		u.StoredReward = new(big.Int)
	}
	return u
}

// pairKey addresses a (validator, token) pair.
type pairKey struct {
	id    mesh.ValidatorID
	token mesh.Address
}

func (k pairKey) Bytes() []byte {
	return append(k.id.Bytes(), k.token.Bytes()...)
}

// tripleKey addresses a (user, validator, token) triple.
type tripleKey struct {
	user  mesh.Address
	id    mesh.ValidatorID
	token mesh.Address
}

func (k tripleKey) Bytes() []byte {
	b := append([]byte(nil), k.user.Bytes()...)
	b = append(b, k.id.Bytes()...)
	return append(b, k.token.Bytes()...)
}
