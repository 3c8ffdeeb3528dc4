// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/stakemesh/stakemesh/mesh"
)

// Value is a singleton slot holding one RLP-encoded value.
// A never-set slot decodes to the zero value of V.
type Value[V any] struct {
	context *Context
	slot    mesh.Bytes32
}

// NewValue creates a Value at the given slot.
func NewValue[V any](context *Context, slot mesh.Bytes32) *Value[V] {
	return &Value[V]{context: context, slot: slot}
}

// Get returns the stored value.
func (v *Value[V]) Get() (value V, err error) {
	raw, err := v.context.store.Get(v.slot.Bytes())
	if err != nil {
		if v.context.store.IsNotFound(err) {
			return value, nil
		}
		return value, errors.Wrap(err, "value get")
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, errors.Wrap(err, "value decode")
	}
	return value, nil
}

// Set stores the value.
func (v *Value[V]) Set(value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrap(err, "value encode")
	}
	if err := v.context.store.Put(v.slot.Bytes(), raw); err != nil {
		return errors.Wrap(err, "value put")
	}
	return nil
}
