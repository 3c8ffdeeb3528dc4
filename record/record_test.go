// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakemesh/stakemesh/lvldb"
	"github.com/stakemesh/stakemesh/mesh"
)

type thing struct {
	Amount *big.Int
	Label  []byte
	When   uint64
}

func newCtx(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(db)
}

func TestMappingGetSet(t *testing.T) {
	ctx := newCtx(t)
	slot := mesh.BytesToBytes32([]byte("things"))
	m := NewMapping[mesh.Address, *thing](ctx, slot)

	key := mesh.BytesToAddress([]byte("k1"))

	// missing key decodes to a zero value, not nil deref
	got, err := m.Get(key)
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Nil(t, got.Amount)

	want := &thing{Amount: big.NewInt(42), Label: []byte("x"), When: 7}
	assert.NoError(t, m.Set(key, want))

	got, err = m.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, want.Amount.String(), got.Amount.String())
	assert.Equal(t, want.Label, got.Label)
	assert.Equal(t, want.When, got.When)

	has, err := m.Has(key)
	assert.NoError(t, err)
	assert.True(t, has)
	has, err = m.Has(mesh.BytesToAddress([]byte("other")))
	assert.NoError(t, err)
	assert.False(t, has)
}

func TestMappingSlotIsolation(t *testing.T) {
	ctx := newCtx(t)
	m1 := NewMapping[mesh.Address, uint64](ctx, mesh.BytesToBytes32([]byte("s1")))
	m2 := NewMapping[mesh.Address, uint64](ctx, mesh.BytesToBytes32([]byte("s2")))

	key := mesh.BytesToAddress([]byte("k"))
	assert.NoError(t, m1.Set(key, 1))

	got, err := m2.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), got)
}

func TestBigInt(t *testing.T) {
	ctx := newCtx(t)
	b := NewBigInt(ctx, mesh.BytesToBytes32([]byte("total")))

	got, err := b.Get()
	assert.NoError(t, err)
	assert.Equal(t, "0", got.String())

	assert.NoError(t, b.Add(big.NewInt(100)))
	assert.NoError(t, b.Sub(big.NewInt(40)))
	got, err = b.Get()
	assert.NoError(t, err)
	assert.Equal(t, "60", got.String())

	assert.Error(t, b.Sub(big.NewInt(100)))
	assert.Error(t, b.Set(big.NewInt(-1)))
}

func TestValue(t *testing.T) {
	ctx := newCtx(t)
	v := NewValue[[]uint64](ctx, mesh.BytesToBytes32([]byte("ids")))

	got, err := v.Get()
	assert.NoError(t, err)
	assert.Empty(t, got)

	assert.NoError(t, v.Set([]uint64{3, 1, 2}))
	got, err = v.Get()
	assert.NoError(t, err)
	assert.Equal(t, []uint64{3, 1, 2}, got)
}

func TestLog(t *testing.T) {
	ctx := newCtx(t)
	l := NewLog[*thing](ctx, mesh.BytesToBytes32([]byte("log")))

	n, err := l.Len()
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	_, _, ok, err := l.Last()
	assert.NoError(t, err)
	assert.False(t, ok)

	for i := range 3 {
		idx, err := l.Append(&thing{Amount: big.NewInt(int64(i)), When: uint64(i)})
		assert.NoError(t, err)
		assert.Equal(t, uint64(i), idx)
	}

	n, err = l.Len()
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	mid, err := l.Get(1)
	assert.NoError(t, err)
	assert.Equal(t, "1", mid.Amount.String())

	last, idx, ok, err := l.Last()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(2), idx)
	assert.Equal(t, "2", last.Amount.String())

	_, err = l.Get(3)
	assert.Error(t, err)
}
