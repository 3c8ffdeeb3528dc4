// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"

	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/record"
	"github.com/stakemesh/stakemesh/staking/reverts"
)

// Service manages user stake balances and the unbonding cooldown.
type Service struct {
	repo *repository

	cooldown uint64 // seconds between unstake and withdrawability
}

// New creates the stake ledger service.
func New(ctx *record.Context, cooldown uint64) *Service {
	return &Service{
		repo:     newRepository(ctx),
		cooldown: cooldown,
	}
}

// GetEntry returns the user's stake with one validator, possibly empty.
func (s *Service) GetEntry(user mesh.Address, id mesh.ValidatorID) (*Entry, error) {
	return s.repo.getEntry(user, id)
}

// GetAccount returns the user's aggregate balances.
func (s *Service) GetAccount(user mesh.Address) (*Account, error) {
	return s.repo.getAccount(user)
}

// StakersOf returns every user that ever staked with the validator.
func (s *Service) StakersOf(id mesh.ValidatorID) ([]mesh.Address, error) {
	return s.repo.stakersOf.Get(id)
}

// ValidatorsOf returns every validator the user ever staked with.
func (s *Service) ValidatorsOf(user mesh.Address) ([]mesh.ValidatorID, error) {
	raw, err := s.repo.validatorsOf.Get(user)
	if err != nil {
		return nil, err
	}
	ids := make([]mesh.ValidatorID, 0, len(raw))
	for _, id := range raw {
		ids = append(ids, mesh.ValidatorID(id))
	}
	return ids, nil
}

// Stake adds amount to the user's stake with the validator.
// The caller settles rewards and checks validator state beforehand; this only
// moves balances.
func (s *Service) Stake(user mesh.Address, id mesh.ValidatorID, amount *big.Int, now uint64) (*big.Int, error) {
	entry, err := s.repo.getEntry(user, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.hasEntry(user, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := s.repo.indexPair(user, id); err != nil {
			return nil, err
		}
		entry.StakedAt = now
	}
	entry.Amount = new(big.Int).Add(entry.Amount, amount)
	if err := s.repo.setEntry(user, id, entry); err != nil {
		return nil, err
	}

	account, err := s.repo.getAccount(user)
	if err != nil {
		return nil, err
	}
	account.Staked = new(big.Int).Add(account.Staked, amount)
	account.LastUpdated = now
	if err := s.repo.setAccount(user, account); err != nil {
		return nil, err
	}
	return entry.Amount, nil
}

// Unstake moves amount from the staked balance into the cooling bucket.
//
// Cooldowns merge rather than stack: if a cooldown is already running, the
// whole cooling bucket restarts at now + cooldown.
func (s *Service) Unstake(user mesh.Address, id mesh.ValidatorID, amount *big.Int, now uint64) error {
	entry, err := s.repo.getEntry(user, id)
	if err != nil {
		return err
	}
	if entry.Amount.Sign() == 0 {
		return reverts.State("no active stake of %v with validator %v", user, id)
	}
	if amount.Sign() <= 0 || amount.Cmp(entry.Amount) > 0 {
		return reverts.Validation("invalid unstake amount %v, staked %v", amount, entry.Amount)
	}

	entry.Amount = new(big.Int).Sub(entry.Amount, amount)
	if err := s.repo.setEntry(user, id, entry); err != nil {
		return err
	}

	account, err := s.repo.getAccount(user)
	if err != nil {
		return err
	}
	// an already-matured bucket parks first; only unmatured cooling merges
	s.park(account, now)
	account.Staked = new(big.Int).Sub(account.Staked, amount)
	account.Cooling = new(big.Int).Add(account.Cooling, amount)
	account.CooldownEnd = now + s.cooldown
	account.LastUpdated = now
	return s.repo.setAccount(user, account)
}

// Withdraw matures the cooling bucket if due, then drains the parked
// balance. It returns the amount to pay out.
func (s *Service) Withdraw(user mesh.Address, now uint64) (*big.Int, error) {
	account, err := s.repo.getAccount(user)
	if err != nil {
		return nil, err
	}
	s.park(account, now)

	if account.Parked.Sign() == 0 {
		return nil, reverts.State("nothing to withdraw for %v", user)
	}
	amount := account.Parked
	account.Parked = new(big.Int)
	account.LastUpdated = now
	if err := s.repo.setAccount(user, account); err != nil {
		return nil, err
	}
	return amount, nil
}

// Drawn reports where restaked funds came from.
type Drawn struct {
	FromCooling *big.Int
	FromParked  *big.Int
}

// Total returns the sum of both sources.
func (d *Drawn) Total() *big.Int {
	return new(big.Int).Add(d.FromCooling, d.FromParked)
}

// Restake moves amount out of the cooling/parked buckets back into the
// stake with the given validator, cancelling that portion's unbonding.
// Cooling funds are drawn first, regardless of maturity. A zero amount
// means everything available.
func (s *Service) Restake(user mesh.Address, id mesh.ValidatorID, amount *big.Int, now uint64) (*Drawn, error) {
	account, err := s.repo.getAccount(user)
	if err != nil {
		return nil, err
	}
	s.park(account, now)

	available := new(big.Int).Add(account.Cooling, account.Parked)
	if amount.Sign() == 0 {
		amount = available
	}
	if amount.Sign() <= 0 || amount.Cmp(available) > 0 {
		return nil, reverts.State("invalid restake amount %v, available %v", amount, available)
	}

	drawn := &Drawn{FromCooling: new(big.Int), FromParked: new(big.Int)}
	remaining := new(big.Int).Set(amount)
	if account.Cooling.Sign() > 0 {
		drawn.FromCooling = bigMin(account.Cooling, remaining)
		account.Cooling = new(big.Int).Sub(account.Cooling, drawn.FromCooling)
		remaining.Sub(remaining, drawn.FromCooling)
	}
	if remaining.Sign() > 0 {
		drawn.FromParked = remaining
		account.Parked = new(big.Int).Sub(account.Parked, remaining)
	}
	if account.Cooling.Sign() == 0 {
		account.CooldownEnd = 0
	}
	account.LastUpdated = now
	if err := s.repo.setAccount(user, account); err != nil {
		return nil, err
	}

	if _, err := s.Stake(user, id, amount, now); err != nil {
		return nil, err
	}
	return drawn, nil
}

// park moves a matured cooling bucket into parked. In-memory only; the
// caller persists the account.
func (s *Service) park(account *Account, now uint64) {
	if account.CooldownEnd != 0 && account.CooldownEnd <= now && account.Cooling.Sign() > 0 {
		account.Parked = new(big.Int).Add(account.Parked, account.Cooling)
		account.Cooling = new(big.Int)
		account.CooldownEnd = 0
	}
}

func bigMin(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}
