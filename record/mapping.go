// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/stakemesh/stakemesh/mesh"
)

// Key is implemented by types usable as mapping keys.
type Key interface {
	Bytes() []byte
}

// Mapping is a keyed storage structure, similar to a mapping in Solidity.
// A missing key decodes to the zero value of V.
type Mapping[K Key, V any] struct {
	context *Context
	slot    mesh.Bytes32
}

// NewMapping creates a mapping rooted at the given slot.
func NewMapping[K Key, V any](context *Context, slot mesh.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, slot: slot}
}

// Get returns the value stored for key, or the zero value of V if absent.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	if reflect.ValueOf(&value).Elem().Kind() == reflect.Ptr {
		value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
	}
	raw, err := m.context.store.Get(m.context.slotKey(m.slot, key.Bytes()))
	if err != nil {
		if m.context.store.IsNotFound(err) {
			return value, nil
		}
		return value, errors.Wrap(err, "mapping get")
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, errors.Wrap(err, "mapping decode")
	}
	return value, nil
}

// Has returns whether an entry exists for key.
func (m *Mapping[K, V]) Has(key K) (bool, error) {
	return m.context.store.Has(m.context.slotKey(m.slot, key.Bytes()))
}

// Set stores the value for key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrap(err, "mapping encode")
	}
	if err := m.context.store.Put(m.context.slotKey(m.slot, key.Bytes()), raw); err != nil {
		return errors.Wrap(err, "mapping put")
	}
	return nil
}
