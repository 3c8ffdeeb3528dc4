// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/staking/authority"
	"github.com/stakemesh/stakemesh/staking/reverts"
)

// AddValidator registers a validator and seeds its reward checkpoint logs
// for every listed token, so accrual starts cleanly from now.
func (s *Staker) AddValidator(
	caller mesh.Address,
	id mesh.ValidatorID,
	commission *big.Int,
	admin mesh.Address,
	withdraw mesh.Address,
	capacity *big.Int,
) error {
	err := s.runUpdate("add_validator", func(l *ledger, now uint64) error {
		if err := s.checkRole(authority.RoleAdmin, caller); err != nil {
			return err
		}
		if err := l.validators.Add(id, commission, admin, withdraw, capacity, now); err != nil {
			return err
		}
		tokens, err := l.rewards.Tokens()
		if err != nil {
			return err
		}
		for _, token := range tokens {
			if err := l.rewards.SeedPair(id, token, true, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		logger.Info("validator added", "validator", id, "admin", admin, "commission", commission)
	}
	return err
}

// SetCommission changes a validator's commission rate. Every current staker
// is settled at the old rate first, so the change never applies
// retroactively.
func (s *Staker) SetCommission(caller mesh.Address, id mesh.ValidatorID, rate *big.Int) error {
	err := s.runUpdate("set_commission", func(l *ledger, now uint64) error {
		if err := s.checkRole(authority.RoleAdmin, caller); err != nil {
			return err
		}
		v, err := l.validators.GetExisting(id)
		if err != nil {
			return err
		}
		if err := s.settleValidator(l, id, v, now); err != nil {
			return err
		}
		return l.validators.SetCommission(id, rate, now)
	})
	if err == nil {
		logger.Info("commission changed", "validator", id, "rate", rate)
	}
	return err
}

// SetCapacity changes a validator's delegation capacity. Shrinking below
// the current delegated amount only blocks new stake.
func (s *Staker) SetCapacity(caller mesh.Address, id mesh.ValidatorID, capacity *big.Int) error {
	return s.runUpdate("set_capacity", func(l *ledger, now uint64) error {
		if err := s.checkRole(authority.RoleAdmin, caller); err != nil {
			return err
		}
		v, err := l.validators.GetExisting(id)
		if err != nil {
			return err
		}
		if err := s.settleValidator(l, id, v, now); err != nil {
			return err
		}
		return l.validators.SetCapacity(id, capacity)
	})
}

// SetValidatorActive flips a validator's active flag. Deactivation stops
// reward accrual from now on without forfeiting anything already accrued;
// reactivation resumes at each token's current rate.
func (s *Staker) SetValidatorActive(caller mesh.Address, id mesh.ValidatorID, active bool) error {
	err := s.runUpdate("set_active", func(l *ledger, now uint64) error {
		if err := s.checkRole(authority.RoleAdmin, caller); err != nil {
			return err
		}
		return s.deactivate(l, id, active, now)
	})
	if err == nil {
		logger.Info("validator activity changed", "validator", id, "active", active)
	}
	return err
}

// deactivate settles all stakers, flips the flag and marks every token log.
// Shared by SetValidatorActive and Slash.
func (s *Staker) deactivate(l *ledger, id mesh.ValidatorID, active bool, now uint64) error {
	v, err := l.validators.GetExisting(id)
	if err != nil {
		return err
	}
	if v.Active == active {
		return nil
	}
	if err := s.settleValidator(l, id, v, now); err != nil {
		return err
	}
	if err := l.validators.SetActive(id, active); err != nil {
		return err
	}
	tokens, err := l.rewards.Tokens()
	if err != nil {
		return err
	}
	for _, token := range tokens {
		if err := l.rewards.MarkPair(id, token, active, now); err != nil {
			return err
		}
	}
	return nil
}

// AddRewardToken lists a reward token at the given rate and seeds a
// checkpoint log for every registered validator.
func (s *Staker) AddRewardToken(caller mesh.Address, token mesh.Address, rate, maxRate *big.Int) error {
	err := s.runUpdate("add_token", func(l *ledger, now uint64) error {
		if err := s.checkRole(authority.RoleRewardOp, caller); err != nil {
			return err
		}
		if err := l.rewards.AddToken(token, rate, maxRate, now); err != nil {
			return err
		}
		ids, err := l.validators.IDs()
		if err != nil {
			return err
		}
		for _, id := range ids {
			v, err := l.validators.Get(id)
			if err != nil {
				return err
			}
			if err := l.rewards.SeedPair(id, token, v.Active, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		logger.Info("reward token listed", "token", token, "rate", rate, "maxRate", maxRate)
	}
	return err
}

// SetRewardRates changes the global rate of several tokens at once. Each
// change is checkpointed on the global log and on every active validator's
// log, so past accrual is untouched.
func (s *Staker) SetRewardRates(caller mesh.Address, tokens []mesh.Address, rates []*big.Int) error {
	err := s.runUpdate("set_rates", func(l *ledger, now uint64) error {
		if err := s.checkRole(authority.RoleRewardOp, caller); err != nil {
			return err
		}
		if len(tokens) == 0 || len(tokens) != len(rates) {
			return reverts.Validation("got %d tokens and %d rates", len(tokens), len(rates))
		}
		activeIDs, err := l.validators.ActiveIDs()
		if err != nil {
			return err
		}
		for i, token := range tokens {
			if err := l.rewards.SetRate(token, rates[i], activeIDs, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		logger.Info("reward rates changed", "tokens", len(tokens))
	}
	return err
}

// FundRewards records a deposit into a token's claimable balance. The
// caller is expected to have placed the funds in the treasury's custody.
func (s *Staker) FundRewards(caller mesh.Address, token mesh.Address, amount *big.Int) error {
	return s.runUpdate("fund_rewards", func(l *ledger, now uint64) error {
		if err := s.checkRole(authority.RoleTreasurer, caller); err != nil {
			return err
		}
		return l.rewards.Fund(token, amount)
	})
}

// VoteToSlash records the caller's vote to deactivate the target validator.
// The caller is resolved to a validator through its admin address and must
// be active.
func (s *Staker) VoteToSlash(caller mesh.Address, target mesh.ValidatorID, expiry uint64) error {
	err := s.runUpdate("vote_to_slash", func(l *ledger, now uint64) error {
		voter, found, err := l.validators.ByAdmin(caller)
		if err != nil {
			return err
		}
		if !found {
			return reverts.Validation("caller %v does not administer a validator", caller)
		}
		voterEntry, err := l.validators.GetExisting(voter)
		if err != nil {
			return err
		}
		if !voterEntry.Active {
			return reverts.State("validator %v is not active", voter)
		}
		if _, err := l.validators.GetExisting(target); err != nil {
			return err
		}
		return l.slashes.Vote(target, voter, expiry, now)
	})
	if err == nil {
		logger.Info("slash vote recorded", "target", target, "voter", caller, "expiry", expiry)
	}
	return err
}

// Slash deactivates the target once every other active validator holds an
// unexpired vote against it. Anyone may trigger it; the votes are the
// authorization. Delegator funds stay under normal unbonding rules.
func (s *Staker) Slash(target mesh.ValidatorID) error {
	err := s.runUpdate("slash", func(l *ledger, now uint64) error {
		v, err := l.validators.GetExisting(target)
		if err != nil {
			return err
		}
		if !v.Active {
			return reverts.State("validator %v is already inactive", target)
		}
		activeIDs, err := l.validators.ActiveIDs()
		if err != nil {
			return err
		}
		voters := make([]mesh.ValidatorID, 0, len(activeIDs))
		for _, id := range activeIDs {
			if id != target {
				voters = append(voters, id)
			}
		}
		if len(voters) == 0 {
			return reverts.State("no peer validators to vote on slashing %v", target)
		}
		if err := l.slashes.CheckUnanimous(target, voters, now); err != nil {
			return err
		}
		if err := s.deactivate(l, target, false, now); err != nil {
			return err
		}
		return l.slashes.Clear(target, voters)
	})
	if err == nil {
		logger.Warn("validator slashed", "target", target)
	}
	return err
}
