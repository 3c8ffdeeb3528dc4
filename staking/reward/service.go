// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math/big"

	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/record"
	"github.com/stakemesh/stakemesh/staking/reverts"
)

// Service manages the reward token registry, checkpoint logs and per-user
// settlement state. It is agnostic of validator metadata: the caller resolves
// stake amounts, commission rates and active flags before calling in.
type Service struct {
	repo *repository
}

// New creates the reward accrual service.
func New(ctx *record.Context) *Service {
	return &Service{repo: newRepository(ctx)}
}

// Tokens returns every listed reward token, in listing order.
func (s *Service) Tokens() ([]mesh.Address, error) {
	return s.repo.list.Get()
}

// GetToken returns the registry entry for a token, zero-valued if unlisted.
func (s *Service) GetToken(token mesh.Address) (*Token, error) {
	return s.repo.getToken(token)
}

// AddToken lists a reward token and starts its global checkpoint log. The
// caller seeds the per-validator logs via SeedPair for every known validator,
// so accrual has a defined starting point everywhere.
func (s *Service) AddToken(token mesh.Address, rate, maxRate *big.Int, now uint64) error {
	entry, err := s.repo.getToken(token)
	if err != nil {
		return err
	}
	if entry.Listed {
		return reverts.Validation("reward token %v already listed", token)
	}
	if rate.Sign() < 0 || maxRate.Sign() <= 0 {
		return reverts.Validation("invalid rate %v / max rate %v for token %v", rate, maxRate, token)
	}
	if rate.Cmp(maxRate) > 0 {
		return reverts.Policy("rate %v exceeds max %v for token %v", rate, maxRate, token)
	}

	entry.Rate = new(big.Int).Set(rate)
	entry.MaxRate = new(big.Int).Set(maxRate)
	entry.LastUpdate = now
	entry.Listed = true
	if err := s.repo.setToken(token, entry); err != nil {
		return err
	}

	list, err := s.repo.list.Get()
	if err != nil {
		return err
	}
	if err := s.repo.list.Set(append(list, token)); err != nil {
		return err
	}

	_, err = s.repo.globalLog(token).Append(&Checkpoint{
		Timestamp: now,
		Rate:      new(big.Int).Set(rate),
		Index:     new(big.Int),
	})
	return err
}

// SeedPair starts the checkpoint log for a (validator, token) pair. Inactive
// validators accrue at rate zero until reactivated. Seeding an already
// seeded pair is a no-op.
func (s *Service) SeedPair(id mesh.ValidatorID, token mesh.Address, active bool, now uint64) error {
	entry, err := s.repo.getToken(token)
	if err != nil {
		return err
	}
	if !entry.Listed {
		return reverts.Validation("unknown reward token %v", token)
	}

	log := s.repo.validatorLog(pairKey{id, token})
	n, err := log.Len()
	if err != nil || n > 0 {
		return err
	}
	rate := new(big.Int)
	if active {
		rate.Set(entry.Rate)
	}
	_, err = log.Append(&Checkpoint{Timestamp: now, Rate: rate, Index: new(big.Int)})
	return err
}

// SetRate changes a token's global rate. A checkpoint is appended to the
// global log and to every active validator's log; inactive validators stay
// at rate zero.
func (s *Service) SetRate(token mesh.Address, rate *big.Int, activeIDs []mesh.ValidatorID, now uint64) error {
	entry, err := s.repo.getToken(token)
	if err != nil {
		return err
	}
	if !entry.Listed {
		return reverts.Validation("unknown reward token %v", token)
	}
	if rate.Sign() < 0 {
		return reverts.Validation("invalid rate %v for token %v", rate, token)
	}
	if rate.Cmp(entry.MaxRate) > 0 {
		return reverts.Policy("rate %v exceeds max %v for token %v", rate, entry.MaxRate, token)
	}

	if err := s.appendCheckpoint(s.repo.globalLog(token), rate, now); err != nil {
		return err
	}
	for _, id := range activeIDs {
		if err := s.appendCheckpoint(s.repo.validatorLog(pairKey{id, token}), rate, now); err != nil {
			return err
		}
	}

	entry.Rate = new(big.Int).Set(rate)
	entry.LastUpdate = now
	return s.repo.setToken(token, entry)
}

// MarkPair records a validator's activity flip on one token log: a
// deactivated validator accrues at rate zero from now on, a reactivated one
// resumes at the token's current rate. Accrual up to now is preserved in the
// appended checkpoint's index.
func (s *Service) MarkPair(id mesh.ValidatorID, token mesh.Address, active bool, now uint64) error {
	entry, err := s.repo.getToken(token)
	if err != nil {
		return err
	}
	if !entry.Listed {
		return reverts.Validation("unknown reward token %v", token)
	}
	rate := new(big.Int)
	if active {
		rate.Set(entry.Rate)
	}
	return s.appendCheckpoint(s.repo.validatorLog(pairKey{id, token}), rate, now)
}

// TouchPair appends a same-rate checkpoint marking a stake boundary, so the
// checkpoint list reflects every point a user's balance may have changed at.
func (s *Service) TouchPair(id mesh.ValidatorID, token mesh.Address, now uint64) error {
	log := s.repo.validatorLog(pairKey{id, token})
	last, _, ok, err := log.Last()
	if err != nil || !ok {
		return err
	}
	return s.appendCheckpoint(log, last.normalize().Rate, now)
}

// appendCheckpoint extends a non-empty log with the accrued index up to now
// and the rate in force from now on.
func (s *Service) appendCheckpoint(log *record.Log[*Checkpoint], rate *big.Int, now uint64) error {
	last, _, ok, err := log.Last()
	if err != nil {
		return err
	}
	index := new(big.Int)
	if ok {
		index = last.normalize().indexAt(now)
	}
	_, err = log.Append(&Checkpoint{
		Timestamp: now,
		Rate:      new(big.Int).Set(rate),
		Index:     index,
	})
	return err
}

// Settle computes the reward accrued by (user, validator, token) since the
// last settlement, splits off the validator's commission, credits the net to
// the user's stored reward and advances the paid index. stake is the user's
// balance over the settled interval: callers settle before every stake
// mutation, so it is constant across the walked checkpoints.
//
// Settling twice at the same instant is a no-op the second time.
func (s *Service) Settle(user mesh.Address, id mesh.ValidatorID, token mesh.Address, stake, commission *big.Int, now uint64) (net, comm *big.Int, err error) {
	key := tripleKey{user, id, token}
	state, err := s.repo.getState(key)
	if err != nil {
		return nil, nil, err
	}

	raw, tailIndex, tailPos, err := s.accrued(pairKey{id, token}, state, stake, now)
	if err != nil {
		return nil, nil, err
	}

	comm = new(big.Int).Mul(raw, commission)
	comm.Div(comm, mesh.RatePrecision)
	net = new(big.Int).Sub(raw, comm)

	state.StoredReward = new(big.Int).Add(state.StoredReward, net)
	state.PaidIndex = tailIndex
	state.PaidPos = tailPos
	if err := s.repo.setState(key, state); err != nil {
		return nil, nil, err
	}
	return net, comm, nil
}

// Earned previews the user's claimable net reward at now without writing
// anything: stored reward plus the unsettled accrual net of commission.
func (s *Service) Earned(user mesh.Address, id mesh.ValidatorID, token mesh.Address, stake, commission *big.Int, now uint64) (*big.Int, error) {
	state, err := s.repo.getState(tripleKey{user, id, token})
	if err != nil {
		return nil, err
	}
	raw, _, _, err := s.accrued(pairKey{id, token}, state, stake, now)
	if err != nil {
		return nil, err
	}
	comm := new(big.Int).Mul(raw, commission)
	comm.Div(comm, mesh.RatePrecision)
	return raw.Sub(raw, comm).Add(raw, state.StoredReward), nil
}

// Stored returns the user's settled, unclaimed reward.
func (s *Service) Stored(user mesh.Address, id mesh.ValidatorID, token mesh.Address) (*big.Int, error) {
	state, err := s.repo.getState(tripleKey{user, id, token})
	if err != nil {
		return nil, err
	}
	return state.StoredReward, nil
}

// Take zeroes and returns the user's stored reward. The caller pays it out
// or restakes it.
func (s *Service) Take(user mesh.Address, id mesh.ValidatorID, token mesh.Address) (*big.Int, error) {
	key := tripleKey{user, id, token}
	state, err := s.repo.getState(key)
	if err != nil {
		return nil, err
	}
	amount := state.StoredReward
	if amount.Sign() == 0 {
		return amount, nil
	}
	state.StoredReward = new(big.Int)
	if err := s.repo.setState(key, state); err != nil {
		return nil, err
	}
	return amount, nil
}

// Fund increases a token's available reward balance.
func (s *Service) Fund(token mesh.Address, amount *big.Int) error {
	entry, err := s.repo.getToken(token)
	if err != nil {
		return err
	}
	if !entry.Listed {
		return reverts.Validation("unknown reward token %v", token)
	}
	if amount.Sign() <= 0 {
		return reverts.Validation("invalid funding amount %v for token %v", amount, token)
	}
	entry.Available = new(big.Int).Add(entry.Available, amount)
	return s.repo.setToken(token, entry)
}

// Deduct decreases a token's available balance ahead of a payout.
func (s *Service) Deduct(token mesh.Address, amount *big.Int) error {
	entry, err := s.repo.getToken(token)
	if err != nil {
		return err
	}
	if entry.Available.Cmp(amount) < 0 {
		return reverts.State("insufficient reward funds for token %v: need %v, have %v", token, amount, entry.Available)
	}
	entry.Available = new(big.Int).Sub(entry.Available, amount)
	return s.repo.setToken(token, entry)
}

// accrued walks the checkpoints appended since the user's last settlement
// and returns the raw (pre-commission) reward for a constant stake, plus the
// tail index and position to advance the user state to.
func (s *Service) accrued(key pairKey, state *UserState, stake *big.Int, now uint64) (raw, tailIndex *big.Int, tailPos uint64, err error) {
	log := s.repo.validatorLog(key)
	n, err := log.Len()
	if err != nil {
		return nil, nil, 0, err
	}
	if n == 0 {
		// pair never seeded, nothing accrues
		return new(big.Int), new(big.Int).Set(state.PaidIndex), state.PaidPos, nil
	}

	acc := new(big.Int)
	prev := state.PaidIndex
	for i := state.PaidPos + 1; i < n; i++ {
		cp, err := log.Get(i)
		if err != nil {
			return nil, nil, 0, err
		}
		cp.normalize()
		if delta := new(big.Int).Sub(cp.Index, prev); delta.Sign() > 0 {
			acc.Add(acc, delta.Mul(delta, stake))
		}
		prev = cp.Index
	}

	last, _, _, err := log.Last()
	if err != nil {
		return nil, nil, 0, err
	}
	tailIndex = last.normalize().indexAt(now)
	if delta := new(big.Int).Sub(tailIndex, prev); delta.Sign() > 0 {
		acc.Add(acc, delta.Mul(delta, stake))
	}
	return acc.Div(acc, mesh.RatePrecision), tailIndex, n - 1, nil
}
