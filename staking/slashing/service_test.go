// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slashing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakemesh/stakemesh/lvldb"
	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/record"
	"github.com/stakemesh/stakemesh/staking/reverts"
)

const maxVoteDuration = uint64(1000)

func newSvc(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(record.NewContext(db), maxVoteDuration)
}

func assertKind(t *testing.T, want reverts.Kind, err error) {
	t.Helper()
	kind, ok := reverts.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, want, kind)
}

func TestVoteValidation(t *testing.T) {
	svc := newSvc(t)

	err := svc.Vote(4, 4, 100, 0)
	assertKind(t, reverts.KindValidation, err)

	err = svc.Vote(4, 1, 50, 50)
	assertKind(t, reverts.KindValidation, err)

	err = svc.Vote(4, 1, 1100, 50)
	assertKind(t, reverts.KindPolicy, err)

	require.NoError(t, svc.Vote(4, 1, 500, 50))

	expiry, err := svc.VoteOf(4, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), expiry)

	// revoting overwrites the expiry
	require.NoError(t, svc.Vote(4, 1, 800, 100))
	expiry, err = svc.VoteOf(4, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(800), expiry)
}

func TestCheckUnanimous(t *testing.T) {
	svc := newSvc(t)
	voters := []mesh.ValidatorID{1, 2, 3}

	require.NoError(t, svc.Vote(4, 1, 500, 0))
	require.NoError(t, svc.Vote(4, 2, 500, 0))

	// one vote still missing
	err := svc.CheckUnanimous(4, voters, 100)
	assertKind(t, reverts.KindState, err)

	require.NoError(t, svc.Vote(4, 3, 300, 0))
	require.NoError(t, svc.CheckUnanimous(4, voters, 100))

	// one vote expired blocks the slash again
	err = svc.CheckUnanimous(4, voters, 400)
	assertKind(t, reverts.KindState, err)
}

func TestClear(t *testing.T) {
	svc := newSvc(t)
	voters := []mesh.ValidatorID{1, 2}

	require.NoError(t, svc.Vote(4, 1, 500, 0))
	require.NoError(t, svc.Vote(4, 2, 500, 0))
	require.NoError(t, svc.CheckUnanimous(4, voters, 100))

	require.NoError(t, svc.Clear(4, voters))

	err := svc.CheckUnanimous(4, voters, 100)
	assertKind(t, reverts.KindState, err)
}
