// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package treasury

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakemesh/stakemesh/lvldb"
	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/record"
)

func newLedger(t *testing.T) *FundLedger {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewFundLedger(record.NewContext(db))
}

func TestDepositAndPayOut(t *testing.T) {
	ledger := newLedger(t)
	token := mesh.BytesToAddress([]byte("gold"))
	alice := mesh.BytesToAddress([]byte("alice"))

	assert.Error(t, ledger.Deposit(token, big.NewInt(0)))
	require.NoError(t, ledger.Deposit(token, big.NewInt(1000)))

	ok, err := ledger.HasSufficientBalance(token, big.NewInt(1000))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.HasSufficientBalance(token, big.NewInt(1001))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ledger.PayOut(token, big.NewInt(400), alice))

	balance, err := ledger.BalanceOf(token)
	require.NoError(t, err)
	assert.Equal(t, "600", balance.String())

	assert.Error(t, ledger.PayOut(token, big.NewInt(601), alice))
}
