// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemDB(t *testing.T) {
	db, err := NewMem()
	assert.NoError(t, err)
	defer db.Close()

	key := []byte("key")
	value := []byte("value")

	_, err = db.Get(key)
	assert.True(t, db.IsNotFound(err))

	assert.NoError(t, db.Put(key, value))

	got, err := db.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, value, got)

	has, err := db.Has(key)
	assert.NoError(t, err)
	assert.True(t, has)

	assert.NoError(t, db.Delete(key))
	has, err = db.Has(key)
	assert.NoError(t, err)
	assert.False(t, has)
}

func TestPersistentDB(t *testing.T) {
	dir := t.TempDir()

	db, err := New(dir, Options{})
	assert.NoError(t, err)
	assert.NoError(t, db.Put([]byte("k"), []byte("v")))
	assert.NoError(t, db.Close())

	db, err = New(dir, Options{})
	assert.NoError(t, err)
	defer db.Close()

	got, err := db.Get([]byte("k"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}
