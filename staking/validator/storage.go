// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validator

import (
	"github.com/pkg/errors"

	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/record"
)

var (
	slotValidators    = mesh.BytesToBytes32([]byte("validators"))
	slotValidatorIDs  = mesh.BytesToBytes32([]byte("validator-ids"))
	slotAdminIndex    = mesh.BytesToBytes32([]byte("validator-admins"))
	slotCommissionLog = mesh.BytesToBytes32([]byte("commission-history"))
)

type repository struct {
	ctx        *record.Context
	validators *record.Mapping[mesh.ValidatorID, *Validator]
	ids        *record.Value[[]uint64]
	admins     *record.Mapping[mesh.Address, uint64]
}

func newRepository(ctx *record.Context) *repository {
	return &repository{
		ctx:        ctx,
		validators: record.NewMapping[mesh.ValidatorID, *Validator](ctx, slotValidators),
		ids:        record.NewValue[[]uint64](ctx, slotValidatorIDs),
		admins:     record.NewMapping[mesh.Address, uint64](ctx, slotAdminIndex),
	}
}

func (r *repository) getValidator(id mesh.ValidatorID) (*Validator, error) {
	v, err := r.validators.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get validator")
	}
	return v.normalize(), nil
}

func (r *repository) setValidator(id mesh.ValidatorID, entry *Validator) error {
	if err := r.validators.Set(id, entry); err != nil {
		return errors.Wrap(err, "failed to set validator")
	}
	return nil
}

func (r *repository) appendID(id mesh.ValidatorID) error {
	ids, err := r.ids.Get()
	if err != nil {
		return err
	}
	return r.ids.Set(append(ids, uint64(id)))
}

func (r *repository) allIDs() ([]mesh.ValidatorID, error) {
	raw, err := r.ids.Get()
	if err != nil {
		return nil, err
	}
	ids := make([]mesh.ValidatorID, 0, len(raw))
	for _, id := range raw {
		ids = append(ids, mesh.ValidatorID(id))
	}
	return ids, nil
}

func (r *repository) commissionLog(id mesh.ValidatorID) *record.Log[*CommissionCheckpoint] {
	slot := mesh.Blake2b(slotCommissionLog.Bytes(), id.Bytes())
	return record.NewLog[*CommissionCheckpoint](r.ctx, slot)
}
