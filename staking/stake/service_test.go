// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakemesh/stakemesh/lvldb"
	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/record"
)

const cooldown = uint64(100)

func newSvc(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(record.NewContext(db), cooldown)
}

func addr(s string) mesh.Address { return mesh.BytesToAddress([]byte(s)) }

func TestStakeAndIndexes(t *testing.T) {
	svc := newSvc(t)
	user := addr("alice")

	total, err := svc.Stake(user, 1, big.NewInt(100), 10)
	assert.NoError(t, err)
	assert.Equal(t, "100", total.String())

	total, err = svc.Stake(user, 1, big.NewInt(50), 20)
	assert.NoError(t, err)
	assert.Equal(t, "150", total.String())

	_, err = svc.Stake(user, 2, big.NewInt(30), 30)
	assert.NoError(t, err)

	entry, err := svc.GetEntry(user, 1)
	assert.NoError(t, err)
	assert.Equal(t, "150", entry.Amount.String())
	assert.Equal(t, uint64(10), entry.StakedAt)

	account, err := svc.GetAccount(user)
	assert.NoError(t, err)
	assert.Equal(t, "180", account.Staked.String())

	// indexed once per pair
	validators, err := svc.ValidatorsOf(user)
	assert.NoError(t, err)
	assert.Equal(t, []mesh.ValidatorID{1, 2}, validators)

	stakers, err := svc.StakersOf(1)
	assert.NoError(t, err)
	assert.Equal(t, []mesh.Address{user}, stakers)
}

func TestUnstakeErrors(t *testing.T) {
	svc := newSvc(t)
	user := addr("alice")

	// nothing staked yet
	assert.Error(t, svc.Unstake(user, 1, big.NewInt(10), 0))

	_, err := svc.Stake(user, 1, big.NewInt(100), 0)
	require.NoError(t, err)

	assert.Error(t, svc.Unstake(user, 1, big.NewInt(0), 0))
	assert.Error(t, svc.Unstake(user, 1, big.NewInt(101), 0))
	assert.NoError(t, svc.Unstake(user, 1, big.NewInt(100), 0))
}

func TestCooldownMergesNotStacks(t *testing.T) {
	svc := newSvc(t)
	user := addr("alice")
	_, err := svc.Stake(user, 1, big.NewInt(100), 0)
	require.NoError(t, err)

	// unstake 50 at t=0, then 30 at t=40 while still cooling
	require.NoError(t, svc.Unstake(user, 1, big.NewInt(50), 0))
	require.NoError(t, svc.Unstake(user, 1, big.NewInt(30), 40))

	account, err := svc.GetAccount(user)
	assert.NoError(t, err)
	assert.Equal(t, "80", account.Cooling.String())
	assert.Equal(t, uint64(140), account.CooldownEnd)
	assert.Equal(t, "20", account.Staked.String())
}

func TestWithdraw(t *testing.T) {
	svc := newSvc(t)
	user := addr("alice")
	_, err := svc.Stake(user, 1, big.NewInt(100), 0)
	require.NoError(t, err)
	require.NoError(t, svc.Unstake(user, 1, big.NewInt(60), 0))

	// not matured yet
	_, err = svc.Withdraw(user, 99)
	assert.Error(t, err)

	amount, err := svc.Withdraw(user, 100)
	assert.NoError(t, err)
	assert.Equal(t, "60", amount.String())

	account, err := svc.GetAccount(user)
	assert.NoError(t, err)
	assert.Equal(t, "0", account.Cooling.String())
	assert.Equal(t, "0", account.Parked.String())
	assert.Equal(t, uint64(0), account.CooldownEnd)

	// nothing left
	_, err = svc.Withdraw(user, 200)
	assert.Error(t, err)
}

func TestRestakeDrawsCoolingFirst(t *testing.T) {
	svc := newSvc(t)
	user := addr("alice")
	_, err := svc.Stake(user, 1, big.NewInt(100), 0)
	require.NoError(t, err)

	// 40 parked (matured), then 30 cooling
	require.NoError(t, svc.Unstake(user, 1, big.NewInt(40), 0))
	require.NoError(t, svc.Unstake(user, 1, big.NewInt(30), 150)) // first bucket matured at 100

	account, err := svc.GetAccount(user)
	require.NoError(t, err)
	// the matured 40 parked when the second unstake touched the account
	assert.Equal(t, "30", account.Cooling.String())
	assert.Equal(t, "40", account.Parked.String())
	assert.Equal(t, uint64(250), account.CooldownEnd)

	// restake before maturity bypasses withdrawal entirely, cooling first
	drawn, err := svc.Restake(user, 2, big.NewInt(50), 200)
	assert.NoError(t, err)
	assert.Equal(t, "30", drawn.FromCooling.String())
	assert.Equal(t, "20", drawn.FromParked.String())

	account, err = svc.GetAccount(user)
	assert.NoError(t, err)
	assert.Equal(t, "0", account.Cooling.String())
	assert.Equal(t, "20", account.Parked.String())
	assert.Equal(t, "80", account.Staked.String())
	// draining cooling cleared the cooldown clock
	assert.Equal(t, uint64(0), account.CooldownEnd)

	drawn, err = svc.Restake(user, 2, big.NewInt(0), 210)
	assert.NoError(t, err)
	assert.Equal(t, "20", drawn.Total().String())

	account, err = svc.GetAccount(user)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), account.CooldownEnd)
	assert.Equal(t, "100", account.Staked.String())
}

func TestRestakeFromParked(t *testing.T) {
	svc := newSvc(t)
	user := addr("alice")
	_, err := svc.Stake(user, 1, big.NewInt(100), 0)
	require.NoError(t, err)
	require.NoError(t, svc.Unstake(user, 1, big.NewInt(100), 0))

	// matured: parks on touch, then draws from parked
	drawn, err := svc.Restake(user, 1, big.NewInt(100), 120)
	assert.NoError(t, err)
	assert.Equal(t, "0", drawn.FromCooling.String())
	assert.Equal(t, "100", drawn.FromParked.String())

	// nothing available anymore
	_, err = svc.Restake(user, 1, big.NewInt(1), 130)
	assert.Error(t, err)
}

func TestWithdrawable(t *testing.T) {
	account := &Account{
		Staked:      big.NewInt(0),
		Cooling:     big.NewInt(30),
		Parked:      big.NewInt(20),
		CooldownEnd: 100,
	}
	assert.Equal(t, "20", account.Withdrawable(50).String())
	assert.Equal(t, "50", account.Withdrawable(100).String())
}

func TestReStakeAfterFullUnstakeIndexesOnce(t *testing.T) {
	svc := newSvc(t)
	user := addr("alice")

	// first stake at clock zero, drained back to nothing
	_, err := svc.Stake(user, 1, big.NewInt(100), 0)
	require.NoError(t, err)
	require.NoError(t, svc.Unstake(user, 1, big.NewInt(100), 0))

	entry, err := svc.GetEntry(user, 1)
	require.NoError(t, err)
	require.Equal(t, "0", entry.Amount.String())

	// staking again reuses the existing entry, no duplicate index rows
	_, err = svc.Stake(user, 1, big.NewInt(40), 5)
	require.NoError(t, err)

	stakers, err := svc.StakersOf(1)
	assert.NoError(t, err)
	assert.Equal(t, []mesh.Address{user}, stakers)

	validators, err := svc.ValidatorsOf(user)
	assert.NoError(t, err)
	assert.Equal(t, []mesh.ValidatorID{1}, validators)

	entry, err = svc.GetEntry(user, 1)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), entry.StakedAt)
}
