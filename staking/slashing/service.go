// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package slashing tracks peer-validator votes to deactivate a misbehaving
// validator. A vote is a (target, voter) pair with an expiry timestamp; a
// target can be slashed once every other active validator holds an unexpired
// vote against it.
package slashing

import (
	"github.com/pkg/errors"

	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/record"
	"github.com/stakemesh/stakemesh/staking/reverts"
)

var slotVotes = mesh.BytesToBytes32([]byte("slash-votes"))

type voteKey struct {
	target mesh.ValidatorID
	voter  mesh.ValidatorID
}

func (k voteKey) Bytes() []byte {
	return append(k.target.Bytes(), k.voter.Bytes()...)
}

// Service manages the slashing vote ledger.
type Service struct {
	votes *record.Mapping[voteKey, uint64]

	maxVoteDuration uint64 // cap on how far ahead a vote may expire
}

// New creates the slashing vote service.
func New(ctx *record.Context, maxVoteDuration uint64) *Service {
	return &Service{
		votes:           record.NewMapping[voteKey, uint64](ctx, slotVotes),
		maxVoteDuration: maxVoteDuration,
	}
}

// VoteOf returns the expiry of the voter's vote against target, zero if no
// vote was ever cast.
func (s *Service) VoteOf(target, voter mesh.ValidatorID) (uint64, error) {
	expiry, err := s.votes.Get(voteKey{target, voter})
	if err != nil {
		return 0, errors.Wrap(err, "failed to get slash vote")
	}
	return expiry, nil
}

// Vote records or overwrites the voter's vote against target. A validator
// cannot vote against itself and the expiry must fall within the allowed
// window.
func (s *Service) Vote(target, voter mesh.ValidatorID, expiry, now uint64) error {
	if target == voter {
		return reverts.Validation("validator %v cannot vote to slash itself", voter)
	}
	if expiry <= now {
		return reverts.Validation("vote expiry %d already passed at %d", expiry, now)
	}
	if expiry > now+s.maxVoteDuration {
		return reverts.Policy("vote expiry %d exceeds max duration %d from %d", expiry, s.maxVoteDuration, now)
	}
	if err := s.votes.Set(voteKey{target, voter}, expiry); err != nil {
		return errors.Wrap(err, "failed to set slash vote")
	}
	return nil
}

// CheckUnanimous verifies that every listed voter holds an unexpired vote
// against target. The caller passes the currently active validators minus
// the target itself.
func (s *Service) CheckUnanimous(target mesh.ValidatorID, voters []mesh.ValidatorID, now uint64) error {
	for _, voter := range voters {
		expiry, err := s.VoteOf(target, voter)
		if err != nil {
			return err
		}
		if expiry == 0 {
			return reverts.State("vote missing: validator %v has not voted to slash %v", voter, target)
		}
		if expiry <= now {
			return reverts.State("vote missing: validator %v's vote to slash %v expired at %d", voter, target, expiry)
		}
	}
	return nil
}

// Clear removes the listed voters' votes against target after a successful
// slash, so a reactivated validator starts from a clean slate.
func (s *Service) Clear(target mesh.ValidatorID, voters []mesh.ValidatorID) error {
	for _, voter := range voters {
		if err := s.votes.Set(voteKey{target, voter}, 0); err != nil {
			return errors.Wrap(err, "failed to clear slash vote")
		}
	}
	return nil
}
