// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type memStore struct {
	m map[string][]byte
}

var errMemNotFound = errors.New("not found")

func newMemStore() *memStore { return &memStore{m: make(map[string][]byte)} }

func (s *memStore) Get(key []byte) ([]byte, error) {
	if v, ok := s.m[string(key)]; ok {
		return v, nil
	}
	return nil, errMemNotFound
}
func (s *memStore) Has(key []byte) (bool, error) { _, ok := s.m[string(key)]; return ok, nil }
func (s *memStore) IsNotFound(err error) bool    { return errors.Is(err, errMemNotFound) }
func (s *memStore) Put(key, value []byte) error  { s.m[string(key)] = value; return nil }
func (s *memStore) Delete(key []byte) error      { delete(s.m, string(key)); return nil }

func TestOverlayBuffersWrites(t *testing.T) {
	src := newMemStore()
	ov := NewOverlay(src)

	assert.NoError(t, ov.Put([]byte("k"), []byte("v")))
	got, err := ov.Get([]byte("k"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	// source untouched until commit
	_, err = src.Get([]byte("k"))
	assert.True(t, src.IsNotFound(err))
	assert.Equal(t, 1, ov.Uncommitted())

	assert.NoError(t, ov.Commit())
	got, err = src.Get([]byte("k"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
	assert.Equal(t, 0, ov.Uncommitted())
}

func TestOverlayRevert(t *testing.T) {
	src := newMemStore()
	assert.NoError(t, src.Put([]byte("a"), []byte("1")))

	ov := NewOverlay(src)
	assert.NoError(t, ov.Put([]byte("a"), []byte("2")))
	assert.NoError(t, ov.Put([]byte("b"), []byte("3")))
	ov.Revert()

	got, err := ov.Get([]byte("a"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("1"), got)

	_, err = ov.Get([]byte("b"))
	assert.True(t, ov.IsNotFound(err))
}

func TestOverlayDelete(t *testing.T) {
	src := newMemStore()
	assert.NoError(t, src.Put([]byte("a"), []byte("1")))

	ov := NewOverlay(src)
	assert.NoError(t, ov.Delete([]byte("a")))

	_, err := ov.Get([]byte("a"))
	assert.True(t, ov.IsNotFound(err))
	has, err := ov.Has([]byte("a"))
	assert.NoError(t, err)
	assert.False(t, has)

	// still present in source until commit
	has, _ = src.Has([]byte("a"))
	assert.True(t, has)

	assert.NoError(t, ov.Commit())
	has, _ = src.Has([]byte("a"))
	assert.False(t, has)
}

func TestBucketStore(t *testing.T) {
	src := newMemStore()
	store := Bucket("b1-").NewStore(src)

	assert.NoError(t, store.Put([]byte("k"), []byte("v")))
	got, err := src.Get([]byte("b1-k"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	got, err = store.Get([]byte("k"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	assert.NoError(t, store.Delete([]byte("k")))
	has, err := store.Has([]byte("k"))
	assert.NoError(t, err)
	assert.False(t, has)
}
