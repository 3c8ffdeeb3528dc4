// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validator

import (
	"math/big"

	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/record"
	"github.com/stakemesh/stakemesh/staking/reverts"
)

// Service manages the validator registry.
type Service struct {
	repo *repository

	maxCommission *big.Int
}

// New creates the registry service.
func New(ctx *record.Context, maxCommission *big.Int) *Service {
	return &Service{
		repo:          newRepository(ctx),
		maxCommission: maxCommission,
	}
}

// Add registers a new validator.
func (s *Service) Add(
	id mesh.ValidatorID,
	commission *big.Int,
	admin mesh.Address,
	withdraw mesh.Address,
	capacity *big.Int,
	now uint64,
) error {
	existing, err := s.repo.getValidator(id)
	if err != nil {
		return err
	}
	if !existing.IsEmpty() {
		return reverts.Validation("validator %v already exists", id)
	}
	if admin.IsZero() {
		return reverts.Validation("zero admin address for validator %v", id)
	}
	if withdraw.IsZero() {
		return reverts.Validation("zero withdraw address for validator %v", id)
	}
	if commission.Sign() < 0 || commission.Cmp(s.maxCommission) > 0 {
		return reverts.Policy("commission %v of validator %v exceeds cap %v", commission, id, s.maxCommission)
	}
	if capacity == nil {
		capacity = new(big.Int)
	}
	if capacity.Sign() < 0 {
		return reverts.Validation("negative capacity for validator %v", id)
	}

	entry := &Validator{
		Commission:   new(big.Int).Set(commission),
		Admin:        admin,
		Withdraw:     withdraw,
		Capacity:     new(big.Int).Set(capacity),
		Delegated:    new(big.Int),
		Active:       true,
		RegisteredAt: now,
	}
	if err := s.repo.setValidator(id, entry); err != nil {
		return err
	}
	if err := s.repo.appendID(id); err != nil {
		return err
	}
	if err := s.repo.admins.Set(admin, uint64(id)); err != nil {
		return err
	}
	if _, err := s.repo.commissionLog(id).Append(&CommissionCheckpoint{Timestamp: now, Rate: entry.Commission}); err != nil {
		return err
	}
	return nil
}

// Get returns a validator entry, possibly empty.
func (s *Service) Get(id mesh.ValidatorID) (*Validator, error) {
	return s.repo.getValidator(id)
}

// GetExisting returns a validator entry, failing if it is not registered.
func (s *Service) GetExisting(id mesh.ValidatorID) (*Validator, error) {
	v, err := s.repo.getValidator(id)
	if err != nil {
		return nil, err
	}
	if v.IsEmpty() {
		return nil, reverts.Validation("unknown validator %v", id)
	}
	return v, nil
}

// IDs returns all registered validator ids in registration order.
func (s *Service) IDs() ([]mesh.ValidatorID, error) {
	return s.repo.allIDs()
}

// ActiveIDs returns ids of currently active validators.
func (s *Service) ActiveIDs() ([]mesh.ValidatorID, error) {
	ids, err := s.repo.allIDs()
	if err != nil {
		return nil, err
	}
	active := make([]mesh.ValidatorID, 0, len(ids))
	for _, id := range ids {
		v, err := s.repo.getValidator(id)
		if err != nil {
			return nil, err
		}
		if v.Active {
			active = append(active, id)
		}
	}
	return active, nil
}

// ByAdmin resolves an admin address to its validator id.
func (s *Service) ByAdmin(admin mesh.Address) (mesh.ValidatorID, bool, error) {
	has, err := s.repo.admins.Has(admin)
	if err != nil {
		return 0, false, err
	}
	if !has {
		return 0, false, nil
	}
	id, err := s.repo.admins.Get(admin)
	if err != nil {
		return 0, false, err
	}
	return mesh.ValidatorID(id), true, nil
}

// SetCommission updates the commission rate and records a checkpoint.
// The caller must settle all current stakers of the validator first.
func (s *Service) SetCommission(id mesh.ValidatorID, rate *big.Int, now uint64) error {
	v, err := s.GetExisting(id)
	if err != nil {
		return err
	}
	if rate.Sign() < 0 || rate.Cmp(s.maxCommission) > 0 {
		return reverts.Policy("commission %v of validator %v exceeds cap %v", rate, id, s.maxCommission)
	}
	v.Commission = new(big.Int).Set(rate)
	if err := s.repo.setValidator(id, v); err != nil {
		return err
	}
	_, err = s.repo.commissionLog(id).Append(&CommissionCheckpoint{Timestamp: now, Rate: v.Commission})
	return err
}

// SetCapacity updates the capacity limit. Zero means unlimited. Shrinking
// below the current delegated amount is allowed; it only blocks new stake.
func (s *Service) SetCapacity(id mesh.ValidatorID, capacity *big.Int) error {
	v, err := s.GetExisting(id)
	if err != nil {
		return err
	}
	if capacity.Sign() < 0 {
		return reverts.Validation("negative capacity for validator %v", id)
	}
	v.Capacity = new(big.Int).Set(capacity)
	return s.repo.setValidator(id, v)
}

// SetActive flips the active flag.
func (s *Service) SetActive(id mesh.ValidatorID, active bool) error {
	v, err := s.GetExisting(id)
	if err != nil {
		return err
	}
	if v.Active == active {
		return nil
	}
	v.Active = active
	return s.repo.setValidator(id, v)
}

// IncreaseDelegated adds stake to the validator's delegated total,
// enforcing the capacity limit.
func (s *Service) IncreaseDelegated(id mesh.ValidatorID, amount *big.Int) error {
	v, err := s.GetExisting(id)
	if err != nil {
		return err
	}
	if !v.HasCapacityFor(amount) {
		return reverts.Policy("capacity %v of validator %v exceeded", v.Capacity, id)
	}
	v.Delegated = new(big.Int).Add(v.Delegated, amount)
	return s.repo.setValidator(id, v)
}

// DecreaseDelegated removes stake from the validator's delegated total.
func (s *Service) DecreaseDelegated(id mesh.ValidatorID, amount *big.Int) error {
	v, err := s.GetExisting(id)
	if err != nil {
		return err
	}
	next := new(big.Int).Sub(v.Delegated, amount)
	if next.Sign() < 0 {
		return reverts.State("delegated underflow for validator %v", id)
	}
	v.Delegated = next
	return s.repo.setValidator(id, v)
}

// CommissionHistory returns all commission checkpoints of a validator in
// chronological order.
func (s *Service) CommissionHistory(id mesh.ValidatorID) ([]*CommissionCheckpoint, error) {
	if _, err := s.GetExisting(id); err != nil {
		return nil, err
	}
	clog := s.repo.commissionLog(id)
	n, err := clog.Len()
	if err != nil {
		return nil, err
	}
	history := make([]*CommissionCheckpoint, 0, n)
	for i := uint64(0); i < n; i++ {
		cp, err := clog.Get(i)
		if err != nil {
			return nil, err
		}
		history = append(history, cp)
	}
	return history, nil
}
