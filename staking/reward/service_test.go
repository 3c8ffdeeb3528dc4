// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakemesh/stakemesh/lvldb"
	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/record"
	"github.com/stakemesh/stakemesh/staking/reverts"
)

var (
	rateOne = new(big.Int).Set(mesh.RatePrecision)                   // 1 token/sec per staked unit
	rateTwo = new(big.Int).Mul(mesh.RatePrecision, big.NewInt(2))    // 2 tokens/sec
	rateMax = new(big.Int).Mul(mesh.RatePrecision, big.NewInt(1000))
)

func newSvc(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(record.NewContext(db))
}

func addr(s string) mesh.Address { return mesh.BytesToAddress([]byte(s)) }

func assertKind(t *testing.T, want reverts.Kind, err error) {
	t.Helper()
	kind, ok := reverts.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, want, kind)
}

// listAndSeed lists the token at rate and seeds validator 1 active, both at t=0.
func listAndSeed(t *testing.T, svc *Service, token mesh.Address, rate *big.Int) {
	require.NoError(t, svc.AddToken(token, rate, rateMax, 0))
	require.NoError(t, svc.SeedPair(1, token, true, 0))
}

func TestAddTokenValidation(t *testing.T) {
	svc := newSvc(t)
	token := addr("gold")

	require.NoError(t, svc.AddToken(token, rateOne, rateMax, 0))

	err := svc.AddToken(token, rateOne, rateMax, 5)
	assertKind(t, reverts.KindValidation, err)

	err = svc.AddToken(addr("silver"), rateTwo, rateOne, 0)
	assertKind(t, reverts.KindPolicy, err)

	tokens, err := svc.Tokens()
	require.NoError(t, err)
	assert.Equal(t, []mesh.Address{token}, tokens)
}

func TestSettleAcrossRateChanges(t *testing.T) {
	svc := newSvc(t)
	token := addr("gold")
	user := addr("alice")
	stake := big.NewInt(100)
	noCommission := new(big.Int)

	listAndSeed(t, svc, token, rateOne)

	// baseline settle at stake time, nothing owed yet
	net, comm, err := svc.Settle(user, 1, token, new(big.Int), noCommission, 0)
	require.NoError(t, err)
	assert.Equal(t, "0", net.String())
	assert.Equal(t, "0", comm.String())

	// rate doubles at t=10; settle at t=15
	require.NoError(t, svc.SetRate(token, rateTwo, []mesh.ValidatorID{1}, 10))

	// 100*1*10 + 100*2*5 = 2000
	net, comm, err = svc.Settle(user, 1, token, stake, noCommission, 15)
	require.NoError(t, err)
	assert.Equal(t, "2000", net.String())
	assert.Equal(t, "0", comm.String())

	stored, err := svc.Stored(user, 1, token)
	require.NoError(t, err)
	assert.Equal(t, "2000", stored.String())
}

func TestSettleIdempotent(t *testing.T) {
	svc := newSvc(t)
	token := addr("gold")
	user := addr("alice")
	stake := big.NewInt(100)
	noCommission := new(big.Int)

	listAndSeed(t, svc, token, rateOne)

	net, _, err := svc.Settle(user, 1, token, stake, noCommission, 10)
	require.NoError(t, err)
	assert.Equal(t, "1000", net.String())

	// same instant, no stake change: second settle is a no-op
	net, _, err = svc.Settle(user, 1, token, stake, noCommission, 10)
	require.NoError(t, err)
	assert.Equal(t, "0", net.String())

	stored, err := svc.Stored(user, 1, token)
	require.NoError(t, err)
	assert.Equal(t, "1000", stored.String())
}

func TestCommissionSplit(t *testing.T) {
	svc := newSvc(t)
	token := addr("gold")
	user := addr("alice")
	stake := big.NewInt(100)
	tenPercent := new(big.Int).Div(mesh.RatePrecision, big.NewInt(10))

	listAndSeed(t, svc, token, rateOne)
	require.NoError(t, svc.SetRate(token, rateTwo, []mesh.ValidatorID{1}, 10))

	// raw 2000 at ten percent: 200 to the validator, 1800 to the user
	net, comm, err := svc.Settle(user, 1, token, stake, tenPercent, 15)
	require.NoError(t, err)
	assert.Equal(t, "200", comm.String())
	assert.Equal(t, "1800", net.String())
}

func TestMarkPairStopsAccrual(t *testing.T) {
	svc := newSvc(t)
	token := addr("gold")
	user := addr("alice")
	stake := big.NewInt(100)
	noCommission := new(big.Int)

	listAndSeed(t, svc, token, rateOne)
	require.NoError(t, svc.MarkPair(1, token, false, 10))

	// accrual runs 0..10 only; 10..30 is at rate zero
	net, _, err := svc.Settle(user, 1, token, stake, noCommission, 30)
	require.NoError(t, err)
	assert.Equal(t, "1000", net.String())

	// reactivation resumes at the token's current rate
	require.NoError(t, svc.MarkPair(1, token, true, 30))
	net, _, err = svc.Settle(user, 1, token, stake, noCommission, 40)
	require.NoError(t, err)
	assert.Equal(t, "1000", net.String())
}

func TestSeedPairInactiveAndIdempotent(t *testing.T) {
	svc := newSvc(t)
	token := addr("gold")
	user := addr("alice")
	noCommission := new(big.Int)

	require.NoError(t, svc.AddToken(token, rateOne, rateMax, 0))
	require.NoError(t, svc.SeedPair(2, token, false, 0))
	require.NoError(t, svc.SeedPair(2, token, false, 5)) // no-op

	// inactive validators accrue nothing
	net, _, err := svc.Settle(user, 2, token, big.NewInt(100), noCommission, 50)
	require.NoError(t, err)
	assert.Equal(t, "0", net.String())

	err = svc.SeedPair(2, addr("unlisted"), true, 0)
	assertKind(t, reverts.KindValidation, err)
}

func TestEarnedPreviewAndTake(t *testing.T) {
	svc := newSvc(t)
	token := addr("gold")
	user := addr("alice")
	stake := big.NewInt(100)
	noCommission := new(big.Int)

	listAndSeed(t, svc, token, rateOne)

	earned, err := svc.Earned(user, 1, token, stake, noCommission, 10)
	require.NoError(t, err)
	assert.Equal(t, "1000", earned.String())

	// preview writes nothing
	stored, err := svc.Stored(user, 1, token)
	require.NoError(t, err)
	assert.Equal(t, "0", stored.String())

	_, _, err = svc.Settle(user, 1, token, stake, noCommission, 10)
	require.NoError(t, err)

	taken, err := svc.Take(user, 1, token)
	require.NoError(t, err)
	assert.Equal(t, "1000", taken.String())

	stored, err = svc.Stored(user, 1, token)
	require.NoError(t, err)
	assert.Equal(t, "0", stored.String())
}

func TestTouchPairKeepsTotals(t *testing.T) {
	svc := newSvc(t)
	token := addr("gold")
	user := addr("alice")
	stake := big.NewInt(100)
	noCommission := new(big.Int)

	listAndSeed(t, svc, token, rateOne)

	// stake boundaries add checkpoints without changing the accrual rate
	require.NoError(t, svc.TouchPair(1, token, 4))
	require.NoError(t, svc.TouchPair(1, token, 7))

	net, _, err := svc.Settle(user, 1, token, stake, noCommission, 10)
	require.NoError(t, err)
	assert.Equal(t, "1000", net.String())
}

func TestFundAndDeduct(t *testing.T) {
	svc := newSvc(t)
	token := addr("gold")

	require.NoError(t, svc.AddToken(token, rateOne, rateMax, 0))

	err := svc.Fund(addr("unlisted"), big.NewInt(10))
	assertKind(t, reverts.KindValidation, err)

	require.NoError(t, svc.Fund(token, big.NewInt(500)))

	err = svc.Deduct(token, big.NewInt(600))
	assertKind(t, reverts.KindState, err)

	require.NoError(t, svc.Deduct(token, big.NewInt(500)))

	entry, err := svc.GetToken(token)
	require.NoError(t, err)
	assert.Equal(t, "0", entry.Available.String())
}

func TestSetRateValidation(t *testing.T) {
	svc := newSvc(t)
	token := addr("gold")

	err := svc.SetRate(token, rateOne, nil, 0)
	assertKind(t, reverts.KindValidation, err)

	require.NoError(t, svc.AddToken(token, rateOne, rateTwo, 0))

	tooHigh := new(big.Int).Mul(mesh.RatePrecision, big.NewInt(3))
	err = svc.SetRate(token, tooHigh, nil, 5)
	assertKind(t, reverts.KindPolicy, err)
}
