// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/staking/reverts"
)

// Stake locks amount with the validator. Rewards of the pair are settled
// before the balance changes, so the new principal accrues from now only.
// Returns the user's new staked total with the validator.
func (s *Staker) Stake(user mesh.Address, id mesh.ValidatorID, amount *big.Int) (*big.Int, error) {
	var total *big.Int
	err := s.runUpdate("stake", func(l *ledger, now uint64) error {
		if user.IsZero() {
			return reverts.Validation("zero staker address")
		}
		if amount == nil || amount.Cmp(s.config.MinStake) < 0 {
			return reverts.Policy("stake amount %v below minimum %v", amount, s.config.MinStake)
		}
		v, err := l.validators.GetExisting(id)
		if err != nil {
			return err
		}
		if !v.Active {
			return reverts.State("validator %v is not active", id)
		}
		if err := s.settlePair(l, user, id, v, now); err != nil {
			return err
		}
		if total, err = l.stakes.Stake(user, id, amount, now); err != nil {
			return err
		}
		if err := l.validators.IncreaseDelegated(id, amount); err != nil {
			return err
		}
		if err := l.stats.OnStake(amount); err != nil {
			return err
		}
		return s.touchPair(l, id, now)
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("staked", "user", user, "validator", id, "amount", amount)
	return total, nil
}

// Unstake moves amount of the user's stake with the validator into the
// cooling bucket. Works against inactive validators too, so delegators can
// always leave.
func (s *Staker) Unstake(user mesh.Address, id mesh.ValidatorID, amount *big.Int) error {
	err := s.runUpdate("unstake", func(l *ledger, now uint64) error {
		if amount == nil {
			return reverts.Validation("invalid unstake amount %v", amount)
		}
		v, err := l.validators.GetExisting(id)
		if err != nil {
			return err
		}
		if err := s.settlePair(l, user, id, v, now); err != nil {
			return err
		}
		if err := l.stakes.Unstake(user, id, amount, now); err != nil {
			return err
		}
		if err := l.validators.DecreaseDelegated(id, amount); err != nil {
			return err
		}
		if err := l.stats.OnUnstake(amount); err != nil {
			return err
		}
		return s.touchPair(l, id, now)
	})
	if err == nil {
		logger.Debug("unstaked", "user", user, "validator", id, "amount", amount)
	}
	return err
}

// Withdraw pays out the user's entire withdrawable balance: the parked
// bucket plus any cooling funds whose cooldown has elapsed.
func (s *Staker) Withdraw(user mesh.Address) (*big.Int, error) {
	var amount *big.Int
	err := s.runUpdate("withdraw", func(l *ledger, now uint64) error {
		var err error
		if amount, err = l.stakes.Withdraw(user, now); err != nil {
			return err
		}
		if err := l.stats.OnWithdraw(amount); err != nil {
			return err
		}
		// ledger state is final; the transfer is the last step
		return s.payOut(s.config.NativeToken, amount, user)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("withdrawn", "user", user, "amount", amount)
	return amount, nil
}

// Restake cancels pending unbonding by moving funds from the cooling and
// parked buckets straight back into a stake with the validator. Cooling
// funds are drawn first, regardless of maturity. A zero amount restakes
// everything available.
func (s *Staker) Restake(user mesh.Address, id mesh.ValidatorID, amount *big.Int) (*big.Int, error) {
	var restaked *big.Int
	err := s.runUpdate("restake", func(l *ledger, now uint64) error {
		if amount == nil {
			return reverts.Validation("invalid restake amount %v", amount)
		}
		v, err := l.validators.GetExisting(id)
		if err != nil {
			return err
		}
		if !v.Active {
			return reverts.State("validator %v is not active", id)
		}
		if err := s.settlePair(l, user, id, v, now); err != nil {
			return err
		}
		drawn, err := l.stakes.Restake(user, id, amount, now)
		if err != nil {
			return err
		}
		restaked = drawn.Total()
		if restaked.Cmp(s.config.MinStake) < 0 {
			return reverts.Policy("restake amount %v below minimum %v", restaked, s.config.MinStake)
		}
		if err := l.validators.IncreaseDelegated(id, restaked); err != nil {
			return err
		}
		if err := l.stats.OnRestake(restaked); err != nil {
			return err
		}
		return s.touchPair(l, id, now)
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("restaked", "user", user, "validator", id, "amount", restaked)
	return restaked, nil
}

// Claim settles and pays out the user's reward in one token across every
// validator the user has staked with. Returns the amount paid; a claim with
// nothing owed returns zero without touching the treasury.
func (s *Staker) Claim(user mesh.Address, token mesh.Address) (*big.Int, error) {
	total := new(big.Int)
	err := s.runUpdate("claim", func(l *ledger, now uint64) error {
		if err := s.checkListed(l, token); err != nil {
			return err
		}
		ids, err := l.stakes.ValidatorsOf(user)
		if err != nil {
			return err
		}
		for _, id := range ids {
			amount, err := s.takeReward(l, user, id, token, now)
			if err != nil {
				return err
			}
			total.Add(total, amount)
		}
		return s.payReward(l, token, total, user)
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("claimed", "user", user, "token", token, "amount", total)
	return total, nil
}

// ClaimValidator is Claim narrowed to one validator.
func (s *Staker) ClaimValidator(user mesh.Address, token mesh.Address, id mesh.ValidatorID) (*big.Int, error) {
	var total *big.Int
	err := s.runUpdate("claim", func(l *ledger, now uint64) error {
		if err := s.checkListed(l, token); err != nil {
			return err
		}
		if _, err := l.validators.GetExisting(id); err != nil {
			return err
		}
		var err error
		if total, err = s.takeReward(l, user, id, token, now); err != nil {
			return err
		}
		return s.payReward(l, token, total, user)
	})
	if err != nil {
		return nil, err
	}
	return total, nil
}

// TokenAmount is one leg of a multi-token payout.
type TokenAmount struct {
	Token  mesh.Address
	Amount *big.Int
}

// ClaimAll settles and pays out every listed token across every validator
// the user has staked with. Tokens with nothing owed are skipped.
func (s *Staker) ClaimAll(user mesh.Address) ([]TokenAmount, error) {
	var paid []TokenAmount
	err := s.runUpdate("claim_all", func(l *ledger, now uint64) error {
		paid = paid[:0]
		tokens, err := l.rewards.Tokens()
		if err != nil {
			return err
		}
		ids, err := l.stakes.ValidatorsOf(user)
		if err != nil {
			return err
		}
		for _, token := range tokens {
			total := new(big.Int)
			for _, id := range ids {
				amount, err := s.takeReward(l, user, id, token, now)
				if err != nil {
					return err
				}
				total.Add(total, amount)
			}
			if total.Sign() == 0 {
				continue
			}
			if err := s.payReward(l, token, total, user); err != nil {
				return err
			}
			paid = append(paid, TokenAmount{Token: token, Amount: total})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("claimed all", "user", user, "tokens", len(paid))
	return paid, nil
}

// RestakeRewards compounds: it settles and zeroes the user's native-token
// reward across every validator the user has staked with and stakes the sum
// into the target validator as new principal accruing from now.
func (s *Staker) RestakeRewards(user mesh.Address, target mesh.ValidatorID) (*big.Int, error) {
	total := new(big.Int)
	err := s.runUpdate("restake_rewards", func(l *ledger, now uint64) error {
		native := s.config.NativeToken
		v, err := l.validators.GetExisting(target)
		if err != nil {
			return err
		}
		if !v.Active {
			return reverts.State("validator %v is not active", target)
		}
		// the target's stake is about to change; settle all its tokens first
		if err := s.settlePair(l, user, target, v, now); err != nil {
			return err
		}

		ids, err := l.stakes.ValidatorsOf(user)
		if err != nil {
			return err
		}
		for _, id := range ids {
			amount, err := s.takeReward(l, user, id, native, now)
			if err != nil {
				return err
			}
			total.Add(total, amount)
		}
		if total.Sign() == 0 {
			return nil
		}
		// the owed reward is realized as principal instead of paid out
		if err := l.rewards.Deduct(native, total); err != nil {
			return err
		}
		if _, err := l.stakes.Stake(user, target, total, now); err != nil {
			return err
		}
		if err := l.validators.IncreaseDelegated(target, total); err != nil {
			return err
		}
		if err := l.stats.OnStake(total); err != nil {
			return err
		}
		return s.touchPair(l, target, now)
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("restaked rewards", "user", user, "validator", target, "amount", total)
	return total, nil
}

// ClaimCommission settles every current staker of the validator, then pays
// the accrued commission in one token to the validator's withdraw address.
// Only the validator admin may trigger it.
func (s *Staker) ClaimCommission(caller mesh.Address, id mesh.ValidatorID, token mesh.Address) (*big.Int, error) {
	var total *big.Int
	err := s.runUpdate("claim_commission", func(l *ledger, now uint64) error {
		v, err := l.validators.GetExisting(id)
		if err != nil {
			return err
		}
		if caller != v.Admin {
			return reverts.Policy("caller %v is not the admin of validator %v", caller, id)
		}
		if err := s.settleValidator(l, id, v, now); err != nil {
			return err
		}
		if total, err = l.commissions.Take(id, token); err != nil {
			return err
		}
		return s.payReward(l, token, total, v.Withdraw)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("commission claimed", "validator", id, "token", token, "amount", total)
	return total, nil
}

// takeReward settles one (user, validator, token) triple, credits the
// commission and drains the user's stored reward.
func (s *Staker) takeReward(l *ledger, user mesh.Address, id mesh.ValidatorID, token mesh.Address, now uint64) (*big.Int, error) {
	v, err := l.validators.GetExisting(id)
	if err != nil {
		return nil, err
	}
	entry, err := l.stakes.GetEntry(user, id)
	if err != nil {
		return nil, err
	}
	_, comm, err := l.rewards.Settle(user, id, token, entry.Amount, v.Commission, now)
	if err != nil {
		return nil, err
	}
	if err := l.commissions.Credit(id, token, comm); err != nil {
		return nil, err
	}
	return l.rewards.Take(user, id, token)
}

func (s *Staker) checkListed(l *ledger, token mesh.Address) error {
	entry, err := l.rewards.GetToken(token)
	if err != nil {
		return err
	}
	if !entry.Listed {
		return reverts.Validation("unknown reward token %v", token)
	}
	return nil
}

// payReward deducts amount from the token's funded balance and pays it out.
// A zero amount is a no-op so empty claims succeed without a transfer.
func (s *Staker) payReward(l *ledger, token mesh.Address, amount *big.Int, recipient mesh.Address) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := l.rewards.Deduct(token, amount); err != nil {
		return err
	}
	return s.payOut(token, amount, recipient)
}
