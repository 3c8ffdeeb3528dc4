// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"github.com/pkg/errors"

	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/record"
)

var (
	slotTokens        = mesh.BytesToBytes32([]byte("reward-tokens"))
	slotTokenList     = mesh.BytesToBytes32([]byte("reward-token-list"))
	slotGlobalLogs    = mesh.BytesToBytes32([]byte("reward-checkpoints"))
	slotValidatorLogs = mesh.BytesToBytes32([]byte("validator-checkpoints"))
	slotUserStates    = mesh.BytesToBytes32([]byte("reward-user-states"))
)

type repository struct {
	ctx    *record.Context
	tokens *record.Mapping[mesh.Address, *Token]
	list   *record.Value[[]mesh.Address]
	states *record.Mapping[tripleKey, *UserState]
}

func newRepository(ctx *record.Context) *repository {
	return &repository{
		ctx:    ctx,
		tokens: record.NewMapping[mesh.Address, *Token](ctx, slotTokens),
		list:   record.NewValue[[]mesh.Address](ctx, slotTokenList),
		states: record.NewMapping[tripleKey, *UserState](ctx, slotUserStates),
	}
}

func (r *repository) getToken(token mesh.Address) (*Token, error) {
	t, err := r.tokens.Get(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reward token")
	}
	return t.normalize(), nil
}

func (r *repository) setToken(token mesh.Address, entry *Token) error {
	if err := r.tokens.Set(token, entry); err != nil {
		return errors.Wrap(err, "failed to set reward token")
	}
	return nil
}

func (r *repository) getState(key tripleKey) (*UserState, error) {
	state, err := r.states.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user reward state")
	}
	return state.normalize(), nil
}

func (r *repository) setState(key tripleKey, state *UserState) error {
	if err := r.states.Set(key, state); err != nil {
		return errors.Wrap(err, "failed to set user reward state")
	}
	return nil
}

// globalLog is the rate checkpoint history a token accrues at ledger-wide.
func (r *repository) globalLog(token mesh.Address) *record.Log[*Checkpoint] {
	slot := mesh.Blake2b(slotGlobalLogs.Bytes(), token.Bytes())
	return record.NewLog[*Checkpoint](r.ctx, slot)
}

// validatorLog is the checkpoint history one (validator, token) pair accrues
// at. It mirrors the global rate while the validator is active and drops to
// zero when it is not.
func (r *repository) validatorLog(key pairKey) *record.Log[*Checkpoint] {
	slot := mesh.Blake2b(slotValidatorLogs.Bytes(), key.Bytes())
	return record.NewLog[*Checkpoint](r.ctx, slot)
}
