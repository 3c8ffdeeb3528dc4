// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"github.com/pkg/errors"

	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/record"
)

var (
	slotEntries        = mesh.BytesToBytes32([]byte("stake-entries"))
	slotAccounts       = mesh.BytesToBytes32([]byte("stake-accounts"))
	slotStakerLists    = mesh.BytesToBytes32([]byte("validator-stakers"))
	slotValidatorLists = mesh.BytesToBytes32([]byte("staker-validators"))
)

type repository struct {
	entries  *record.Mapping[pairKey, *Entry]
	accounts *record.Mapping[mesh.Address, *Account]

	// cross indexes, append-only on first stake
	stakersOf    *record.Mapping[mesh.ValidatorID, []mesh.Address]
	validatorsOf *record.Mapping[mesh.Address, []uint64]
}

func newRepository(ctx *record.Context) *repository {
	return &repository{
		entries:      record.NewMapping[pairKey, *Entry](ctx, slotEntries),
		accounts:     record.NewMapping[mesh.Address, *Account](ctx, slotAccounts),
		stakersOf:    record.NewMapping[mesh.ValidatorID, []mesh.Address](ctx, slotStakerLists),
		validatorsOf: record.NewMapping[mesh.Address, []uint64](ctx, slotValidatorLists),
	}
}

func (r *repository) getEntry(user mesh.Address, id mesh.ValidatorID) (*Entry, error) {
	e, err := r.entries.Get(pairKey{user, id})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake entry")
	}
	return e.normalize(), nil
}

// hasEntry reports whether the pair was ever staked. Entries are never
// deleted, so presence in the mapping is the source of truth; the amount may
// have returned to zero.
func (r *repository) hasEntry(user mesh.Address, id mesh.ValidatorID) (bool, error) {
	has, err := r.entries.Has(pairKey{user, id})
	if err != nil {
		return false, errors.Wrap(err, "failed to check stake entry")
	}
	return has, nil
}

func (r *repository) setEntry(user mesh.Address, id mesh.ValidatorID, entry *Entry) error {
	if err := r.entries.Set(pairKey{user, id}, entry); err != nil {
		return errors.Wrap(err, "failed to set stake entry")
	}
	return nil
}

func (r *repository) getAccount(user mesh.Address) (*Account, error) {
	a, err := r.accounts.Get(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake account")
	}
	return a.normalize(), nil
}

func (r *repository) setAccount(user mesh.Address, account *Account) error {
	if err := r.accounts.Set(user, account); err != nil {
		return errors.Wrap(err, "failed to set stake account")
	}
	return nil
}

func (r *repository) indexPair(user mesh.Address, id mesh.ValidatorID) error {
	stakers, err := r.stakersOf.Get(id)
	if err != nil {
		return err
	}
	if err := r.stakersOf.Set(id, append(stakers, user)); err != nil {
		return err
	}
	validators, err := r.validatorsOf.Get(user)
	if err != nil {
		return err
	}
	return r.validatorsOf.Set(user, append(validators, uint64(id)))
}
