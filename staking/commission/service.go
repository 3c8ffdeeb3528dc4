// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package commission tracks the reward cut owed to each validator, per
// reward token. Amounts are credited at settlement time and zeroed when the
// validator's withdraw address claims them.
package commission

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/record"
)

var slotAccrued = mesh.BytesToBytes32([]byte("accrued-commission"))

type pairKey struct {
	id    mesh.ValidatorID
	token mesh.Address
}

func (k pairKey) Bytes() []byte {
	return append(k.id.Bytes(), k.token.Bytes()...)
}

// Service manages accrued validator commission.
type Service struct {
	accrued *record.Mapping[pairKey, *big.Int]
}

// New creates the commission ledger service.
func New(ctx *record.Context) *Service {
	return &Service{
		accrued: record.NewMapping[pairKey, *big.Int](ctx, slotAccrued),
	}
}

// AccruedOf returns the commission owed to a validator for one token.
func (s *Service) AccruedOf(id mesh.ValidatorID, token mesh.Address) (*big.Int, error) {
	amount, err := s.accrued.Get(pairKey{id, token})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get accrued commission")
	}
	return amount, nil
}

// Credit adds a settlement's commission cut to the validator's balance.
// Zero amounts are skipped to avoid storage churn.
func (s *Service) Credit(id mesh.ValidatorID, token mesh.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	key := pairKey{id, token}
	accrued, err := s.accrued.Get(key)
	if err != nil {
		return errors.Wrap(err, "failed to get accrued commission")
	}
	if err := s.accrued.Set(key, new(big.Int).Add(accrued, amount)); err != nil {
		return errors.Wrap(err, "failed to set accrued commission")
	}
	return nil
}

// Take zeroes and returns the validator's accrued commission for one token.
// The caller pays it out to the validator's withdraw address.
func (s *Service) Take(id mesh.ValidatorID, token mesh.Address) (*big.Int, error) {
	key := pairKey{id, token}
	amount, err := s.accrued.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get accrued commission")
	}
	if amount.Sign() == 0 {
		return amount, nil
	}
	if err := s.accrued.Set(key, new(big.Int)); err != nil {
		return nil, errors.Wrap(err, "failed to clear accrued commission")
	}
	return amount, nil
}
