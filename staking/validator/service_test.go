// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validator

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

var maxCommission = new(big.Int).SetUint64(5e17) // 50%

func newSvc(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(record.NewContext(db), maxCommission)
}

func addr(s string) mesh.Address { return mesh.BytesToAddress([]byte(s)) }

func TestAddValidator(t *testing.T) {
	svc := newSvc(t)

	commission := big.NewInt(1e17) // 10%
	assert.NoError(t, svc.Add(1, commission, addr("admin1"), addr("withdraw1"), big.NewInt(0), 100))

	v, err := svc.GetExisting(1)
	assert.NoError(t, err)
	assert.True(t, v.Active)
	assert.Equal(t, commission.String(), v.Commission.String())
	assert.Equal(t, addr("withdraw1"), v.Withdraw)
	assert.Equal(t, uint64(100), v.RegisteredAt)
	assert.Equal(t, "0", v.Delegated.String())

	// duplicate id
	err = svc.Add(1, commission, addr("admin2"), addr("withdraw2"), big.NewInt(0), 100)
	kind, ok := reverts.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, reverts.KindValidation, kind)

	// zero addresses
	assert.Error(t, svc.Add(2, commission, mesh.Address{}, addr("w"), big.NewInt(0), 100))
	assert.Error(t, svc.Add(2, commission, addr("a"), mesh.Address{}, big.NewInt(0), 100))

	// commission above cap
	err = svc.Add(2, big.NewInt(6e17), addr("a"), addr("w"), big.NewInt(0), 100)
	kind, ok = reverts.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, reverts.KindPolicy, kind)
}

func TestGetUnknown(t *testing.T) {
	svc := newSvc(t)

	v, err := svc.Get(9)
	assert.NoError(t, err)
	assert.True(t, v.IsEmpty())

	_, err = svc.GetExisting(9)
	assert.Error(t, err)
}

func TestSetCommissionHistory(t *testing.T) {
	svc := newSvc(t)
	require.NoError(t, svc.Add(1, big.NewInt(1e17), addr("admin"), addr("w"), big.NewInt(0), 100))

	assert.NoError(t, svc.SetCommission(1, big.NewInt(2e17), 200))
	assert.Error(t, svc.SetCommission(1, big.NewInt(9e17), 300))

	history, err := svc.CommissionHistory(1)
	assert.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, uint64(100), history[0].Timestamp)
	assert.Equal(t, big.NewInt(1e17).String(), history[0].Rate.String())
	assert.Equal(t, uint64(200), history[1].Timestamp)
	assert.Equal(t, big.NewInt(2e17).String(), history[1].Rate.String())

	v, err := svc.GetExisting(1)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(2e17).String(), v.Commission.String())
}

func TestDelegatedAndCapacity(t *testing.T) {
	svc := newSvc(t)
	require.NoError(t, svc.Add(1, big.NewInt(0), addr("admin"), addr("w"), big.NewInt(1000), 100))

	assert.NoError(t, svc.IncreaseDelegated(1, big.NewInt(800)))

	// would exceed capacity
	err := svc.IncreaseDelegated(1, big.NewInt(300))
	kind, ok := reverts.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, reverts.KindPolicy, kind)

	assert.NoError(t, svc.DecreaseDelegated(1, big.NewInt(500)))
	v, err := svc.GetExisting(1)
	assert.NoError(t, err)
	assert.Equal(t, "300", v.Delegated.String())

	// underflow
	assert.Error(t, svc.DecreaseDelegated(1, big.NewInt(301)))

	// zero capacity means unlimited
	assert.NoError(t, svc.SetCapacity(1, big.NewInt(0)))
	assert.NoError(t, svc.IncreaseDelegated(1, big.NewInt(1_000_000)))
}

func TestActiveIDsAndByAdmin(t *testing.T) {
	svc := newSvc(t)
	require.NoError(t, svc.Add(1, big.NewInt(0), addr("admin1"), addr("w1"), big.NewInt(0), 1))
	require.NoError(t, svc.Add(2, big.NewInt(0), addr("admin2"), addr("w2"), big.NewInt(0), 2))
	require.NoError(t, svc.Add(3, big.NewInt(0), addr("admin3"), addr("w3"), big.NewInt(0), 3))

	require.NoError(t, svc.SetActive(2, false))

	active, err := svc.ActiveIDs()
	assert.NoError(t, err)
	assert.Equal(t, []mesh.ValidatorID{1, 3}, active)

	all, err := svc.IDs()
	assert.NoError(t, err)
	assert.Len(t, all, 3)

	id, ok, err := svc.ByAdmin(addr("admin2"))
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, mesh.ValidatorID(2), id)

	_, ok, err = svc.ByAdmin(addr("stranger"))
	assert.NoError(t, err)
	assert.False(t, ok)
}
