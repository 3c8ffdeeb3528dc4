// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package globalstats

import (
	"math/big"

	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/record"
)

var (
	slotTotalStaked    = mesh.BytesToBytes32([]byte("total-staked"))
	slotTotalUnbonding = mesh.BytesToBytes32([]byte("total-unbonding"))
)

// Service manages ledger-wide stake totals. Unbonding covers both the
// cooling and parked buckets; the split between the two depends on
// per-account cooldown clocks and is not tracked globally.
type Service struct {
	totalStaked    *record.BigInt
	totalUnbonding *record.BigInt
}

func New(rctx *record.Context) *Service {
	return &Service{
		totalStaked:    record.NewBigInt(rctx, slotTotalStaked),
		totalUnbonding: record.NewBigInt(rctx, slotTotalUnbonding),
	}
}

// Totals returns the ledger-wide staked and unbonding amounts.
func (s *Service) Totals() (staked, unbonding *big.Int, err error) {
	if staked, err = s.totalStaked.Get(); err != nil {
		return nil, nil, err
	}
	unbonding, err = s.totalUnbonding.Get()
	return
}

// OnStake increases the staked total when new funds enter the ledger.
func (s *Service) OnStake(amount *big.Int) error {
	return s.totalStaked.Add(amount)
}

// OnUnstake moves an amount from the staked total into unbonding.
func (s *Service) OnUnstake(amount *big.Int) error {
	if err := s.totalStaked.Sub(amount); err != nil {
		return err
	}
	return s.totalUnbonding.Add(amount)
}

// OnWithdraw removes a paid-out amount from the unbonding total.
func (s *Service) OnWithdraw(amount *big.Int) error {
	return s.totalUnbonding.Sub(amount)
}

// OnRestake moves an amount from unbonding back into the staked total.
func (s *Service) OnRestake(amount *big.Int) error {
	if err := s.totalUnbonding.Sub(amount); err != nil {
		return err
	}
	return s.totalStaked.Add(amount)
}
