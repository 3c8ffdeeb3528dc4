// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/staking/reward"
	"github.com/stakemesh/stakemesh/staking/stake"
	"github.com/stakemesh/stakemesh/staking/validator"
)

// Queries hold the ledger lock, so they never observe a half-applied
// operation.

// ValidatorInfo pairs a validator id with its registry entry.
type ValidatorInfo struct {
	ID        mesh.ValidatorID
	Validator *validator.Validator
}

// GetValidator returns one validator's registry entry.
func (s *Staker) GetValidator(id mesh.ValidatorID) (*validator.Validator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgerOver(s.store).validators.GetExisting(id)
}

// Validators returns every registered validator in registration order.
func (s *Staker) Validators() ([]ValidatorInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.ledgerOver(s.store)
	ids, err := l.validators.IDs()
	if err != nil {
		return nil, err
	}
	infos := make([]ValidatorInfo, 0, len(ids))
	for _, id := range ids {
		v, err := l.validators.Get(id)
		if err != nil {
			return nil, err
		}
		infos = append(infos, ValidatorInfo{ID: id, Validator: v})
	}
	return infos, nil
}

// CommissionHistory returns a validator's commission checkpoints in
// chronological order.
func (s *Staker) CommissionHistory(id mesh.ValidatorID) ([]*validator.CommissionCheckpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgerOver(s.store).validators.CommissionHistory(id)
}

// AccruedCommission returns the commission currently owed to a validator
// for one token.
func (s *Staker) AccruedCommission(id mesh.ValidatorID, token mesh.Address) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgerOver(s.store).commissions.AccruedOf(id, token)
}

// GetAccount returns the user's aggregate balances.
func (s *Staker) GetAccount(user mesh.Address) (*stake.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgerOver(s.store).stakes.GetAccount(user)
}

// GetEntry returns the user's stake with one validator.
func (s *Staker) GetEntry(user mesh.Address, id mesh.ValidatorID) (*stake.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgerOver(s.store).stakes.GetEntry(user, id)
}

// ValidatorsOf returns every validator the user has ever staked with.
func (s *Staker) ValidatorsOf(user mesh.Address) ([]mesh.ValidatorID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgerOver(s.store).stakes.ValidatorsOf(user)
}

// Earned previews the user's claimable reward for one (validator, token)
// pair at the current time, without settling anything.
func (s *Staker) Earned(user mesh.Address, id mesh.ValidatorID, token mesh.Address) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.ledgerOver(s.store)
	v, err := l.validators.GetExisting(id)
	if err != nil {
		return nil, err
	}
	entry, err := l.stakes.GetEntry(user, id)
	if err != nil {
		return nil, err
	}
	return l.rewards.Earned(user, id, token, entry.Amount, v.Commission, s.now())
}

// RewardPreview is one (validator, token) leg of a user's claimable reward.
type RewardPreview struct {
	Validator mesh.ValidatorID
	Token     mesh.Address
	Amount    *big.Int
}

// EarnedAll previews the user's claimable reward across every validator the
// user has staked with and every listed token. Zero legs are skipped.
func (s *Staker) EarnedAll(user mesh.Address) ([]RewardPreview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.ledgerOver(s.store)
	now := s.now()
	ids, err := l.stakes.ValidatorsOf(user)
	if err != nil {
		return nil, err
	}
	tokens, err := l.rewards.Tokens()
	if err != nil {
		return nil, err
	}
	previews := []RewardPreview{}
	for _, id := range ids {
		v, err := l.validators.GetExisting(id)
		if err != nil {
			return nil, err
		}
		entry, err := l.stakes.GetEntry(user, id)
		if err != nil {
			return nil, err
		}
		for _, token := range tokens {
			earned, err := l.rewards.Earned(user, id, token, entry.Amount, v.Commission, now)
			if err != nil {
				return nil, err
			}
			if earned.Sign() == 0 {
				continue
			}
			previews = append(previews, RewardPreview{Validator: id, Token: token, Amount: earned})
		}
	}
	return previews, nil
}

// Totals returns the ledger-wide staked and unbonding amounts.
func (s *Staker) Totals() (staked, unbonding *big.Int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgerOver(s.store).stats.Totals()
}

// Tokens returns every listed reward token.
func (s *Staker) Tokens() ([]mesh.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgerOver(s.store).rewards.Tokens()
}

// GetToken returns a reward token's registry entry.
func (s *Staker) GetToken(token mesh.Address) (*reward.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgerOver(s.store).rewards.GetToken(token)
}

// VoteOf returns the expiry of one validator's slash vote against a target,
// zero if absent.
func (s *Staker) VoteOf(target, voter mesh.ValidatorID) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgerOver(s.store).slashes.VoteOf(target, voter)
}
