// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package record provides typed storage primitives over a raw key/value
// store: keyed mappings, singleton slots and append-only logs. Entries are
// RLP encoded; slot keys are blake2b-derived so independent structures never
// collide.
package record

import (
	"github.com/stakemesh/stakemesh/kv"
	"github.com/stakemesh/stakemesh/mesh"
)

// Context carries the backing store shared by a set of storage structures.
type Context struct {
	store kv.GetPutter
}

// NewContext creates a storage context over the given store.
func NewContext(store kv.GetPutter) *Context {
	return &Context{store: store}
}

// Store returns the backing store.
func (c *Context) Store() kv.GetPutter {
	return c.store
}

func (c *Context) slotKey(slot mesh.Bytes32, key []byte) []byte {
	h := mesh.Blake2b(slot.Bytes(), key)
	return h.Bytes()
}
