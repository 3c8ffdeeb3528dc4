// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking is the public operation surface of the delegated-stake
// ledger. Every mutating operation runs as one atomic unit of work: all
// ledger writes are buffered in an overlay, the external treasury payout (if
// any) happens after the ledger state is final, and the overlay commits only
// when everything succeeded.
package staking

import (
	"math/big"
	"sync"
	"time"

	"github.com/stakemesh/stakemesh/kv"
	"github.com/stakemesh/stakemesh/log"
	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/metrics"
	"github.com/stakemesh/stakemesh/record"
	"github.com/stakemesh/stakemesh/staking/authority"
	"github.com/stakemesh/stakemesh/staking/commission"
	"github.com/stakemesh/stakemesh/staking/globalstats"
	"github.com/stakemesh/stakemesh/staking/reverts"
	"github.com/stakemesh/stakemesh/staking/reward"
	"github.com/stakemesh/stakemesh/staking/slashing"
	"github.com/stakemesh/stakemesh/staking/stake"
	"github.com/stakemesh/stakemesh/staking/treasury"
	"github.com/stakemesh/stakemesh/staking/validator"
)

var logger = log.WithContext("pkg", "staking")

func countOp(op, status string) {
	metrics.CounterVec("staking_op_count", []string{"op", "status"}).
		AddWithLabel(1, map[string]string{"op": op, "status": status})
}

func observeOpDuration(start time.Time) {
	metrics.Histogram("staking_op_duration_ms", metrics.Bucket10s).
		Observe(time.Since(start).Milliseconds())
}

// Config carries the ledger parameters fixed at construction time.
type Config struct {
	NativeToken     mesh.Address // token principal is denominated in; restakeRewards compounds it
	MinStake        *big.Int     // minimum amount per stake/restake
	CooldownPeriod  uint64       // seconds between unstake and withdrawability
	MaxCommission   *big.Int     // cap on validator commission, 1e18 fixed point
	MaxVoteDuration uint64       // cap on slash vote lifetime

	// Now overrides the clock, mainly for tests. Defaults to wall time.
	Now func() uint64
}

// Staker is the staking façade. All mutations take the ledger lock, so no
// two operations ever interleave mid-computation.
type Staker struct {
	mu    sync.Mutex
	store kv.GetPutter

	config    Config
	treasury  treasury.Treasury
	authority authority.Authority
	now       func() uint64
}

// New creates the staking façade over the given store and collaborators.
func New(store kv.GetPutter, config Config, treasury treasury.Treasury, authority authority.Authority) *Staker {
	now := config.Now
	if now == nil {
		now = func() uint64 { return uint64(time.Now().Unix()) }
	}
	if config.MinStake == nil {
		config.MinStake = new(big.Int)
	}
	if config.MaxCommission == nil {
		config.MaxCommission = new(big.Int).Set(mesh.RatePrecision)
	}
	return &Staker{
		store:     store,
		config:    config,
		treasury:  treasury,
		authority: authority,
		now:       now,
	}
}

// Config returns the ledger parameters.
func (s *Staker) Config() Config {
	return s.config
}

// ledger bundles the services over one storage view. Mutating operations
// build it over an overlay; queries build it over the base store.
type ledger struct {
	validators  *validator.Service
	stakes      *stake.Service
	rewards     *reward.Service
	commissions *commission.Service
	slashes     *slashing.Service
	stats       *globalstats.Service
}

func (s *Staker) ledgerOver(store kv.GetPutter) *ledger {
	ctx := record.NewContext(store)
	return &ledger{
		validators:  validator.New(ctx, s.config.MaxCommission),
		stakes:      stake.New(ctx, s.config.CooldownPeriod),
		rewards:     reward.New(ctx),
		commissions: commission.New(ctx),
		slashes:     slashing.New(ctx, s.config.MaxVoteDuration),
		stats:       globalstats.New(ctx),
	}
}

// runUpdate executes fn against an overlay and commits it only on success.
// External side effects belong at the very end of fn, after every ledger
// write.
func (s *Staker) runUpdate(op string, fn func(l *ledger, now uint64) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer observeOpDuration(time.Now())

	now := s.now()
	overlay := kv.NewOverlay(s.store)
	if err := fn(s.ledgerOver(overlay), now); err != nil {
		overlay.Revert()
		countOp(op, "reverted")
		return err
	}
	if err := overlay.Commit(); err != nil {
		countOp(op, "failed")
		return err
	}
	countOp(op, "ok")
	return nil
}

// settlePair settles every listed token for one (user, validator) pair and
// credits the commission cuts. Must run before any stake mutation of the
// pair.
func (s *Staker) settlePair(l *ledger, user mesh.Address, id mesh.ValidatorID, v *validator.Validator, now uint64) error {
	tokens, err := l.rewards.Tokens()
	if err != nil {
		return err
	}
	entry, err := l.stakes.GetEntry(user, id)
	if err != nil {
		return err
	}
	for _, token := range tokens {
		_, comm, err := l.rewards.Settle(user, id, token, entry.Amount, v.Commission, now)
		if err != nil {
			return err
		}
		if err := l.commissions.Credit(id, token, comm); err != nil {
			return err
		}
	}
	return nil
}

// settleValidator settles every current staker of the validator. Required
// before commission, capacity or activity changes so no staker is charged a
// retroactively different rate.
func (s *Staker) settleValidator(l *ledger, id mesh.ValidatorID, v *validator.Validator, now uint64) error {
	stakers, err := l.stakes.StakersOf(id)
	if err != nil {
		return err
	}
	for _, staker := range stakers {
		if err := s.settlePair(l, staker, id, v, now); err != nil {
			return err
		}
	}
	return nil
}

// touchPair appends a stake-boundary checkpoint to every token log of the
// validator.
func (s *Staker) touchPair(l *ledger, id mesh.ValidatorID, now uint64) error {
	tokens, err := l.rewards.Tokens()
	if err != nil {
		return err
	}
	for _, token := range tokens {
		if err := l.rewards.TouchPair(id, token, now); err != nil {
			return err
		}
	}
	return nil
}

// payOut finalizes a transfer through the treasury. Failures surface as
// external reverts, rolling back the whole operation.
func (s *Staker) payOut(token mesh.Address, amount *big.Int, recipient mesh.Address) error {
	if err := s.treasury.PayOut(token, amount, recipient); err != nil {
		return reverts.External("treasury payout of %v (token %v) to %v failed: %v", amount, token, recipient, err)
	}
	return nil
}

func (s *Staker) checkRole(role string, caller mesh.Address) error {
	ok, err := s.authority.Check(role, caller)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.Policy("caller %v does not hold role %q", caller, role)
	}
	return nil
}
