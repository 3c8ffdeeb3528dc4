// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package commission

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakemesh/stakemesh/lvldb"
	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/record"
)

func newSvc(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(record.NewContext(db))
}

func TestCreditAndTake(t *testing.T) {
	svc := newSvc(t)
	token := mesh.BytesToAddress([]byte("gold"))

	accrued, err := svc.AccruedOf(1, token)
	require.NoError(t, err)
	assert.Equal(t, "0", accrued.String())

	require.NoError(t, svc.Credit(1, token, big.NewInt(200)))
	require.NoError(t, svc.Credit(1, token, big.NewInt(50)))
	require.NoError(t, svc.Credit(2, token, big.NewInt(7)))

	accrued, err = svc.AccruedOf(1, token)
	require.NoError(t, err)
	assert.Equal(t, "250", accrued.String())

	taken, err := svc.Take(1, token)
	require.NoError(t, err)
	assert.Equal(t, "250", taken.String())

	// balance is zeroed, the other validator's untouched
	accrued, err = svc.AccruedOf(1, token)
	require.NoError(t, err)
	assert.Equal(t, "0", accrued.String())

	accrued, err = svc.AccruedOf(2, token)
	require.NoError(t, err)
	assert.Equal(t, "7", accrued.String())
}

func TestTokensTrackedSeparately(t *testing.T) {
	svc := newSvc(t)
	gold := mesh.BytesToAddress([]byte("gold"))
	iron := mesh.BytesToAddress([]byte("iron"))

	require.NoError(t, svc.Credit(1, gold, big.NewInt(10)))
	require.NoError(t, svc.Credit(1, iron, big.NewInt(20)))

	accrued, err := svc.AccruedOf(1, gold)
	require.NoError(t, err)
	assert.Equal(t, "10", accrued.String())

	accrued, err = svc.AccruedOf(1, iron)
	require.NoError(t, err)
	assert.Equal(t, "20", accrued.String())
}
