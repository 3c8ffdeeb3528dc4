// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/stakemesh/stakemesh/mesh"
)

// Log is an append-only, index-addressable list of RLP-encoded entries.
// Both Append and Get are O(1): the length lives in one slot and each entry
// in its own slot derived from (root slot, index).
type Log[V any] struct {
	context *Context
	slot    mesh.Bytes32
}

// NewLog creates a log rooted at the given slot.
func NewLog[V any](context *Context, slot mesh.Bytes32) *Log[V] {
	return &Log[V]{context: context, slot: slot}
}

func (l *Log[V]) entryKey(index uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], index)
	return l.context.slotKey(l.slot, b[:])
}

// Len returns the number of entries.
func (l *Log[V]) Len() (uint64, error) {
	raw, err := l.context.store.Get(l.slot.Bytes())
	if err != nil {
		if l.context.store.IsNotFound(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "log len")
	}
	if len(raw) != 8 {
		return 0, errors.New("log len: corrupted length slot")
	}
	return binary.BigEndian.Uint64(raw), nil
}

// Append adds an entry at the tail and returns its index.
func (l *Log[V]) Append(value V) (uint64, error) {
	n, err := l.Len()
	if err != nil {
		return 0, err
	}
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return 0, errors.Wrap(err, "log encode")
	}
	if err := l.context.store.Put(l.entryKey(n), raw); err != nil {
		return 0, errors.Wrap(err, "log put")
	}
	var lenBytes [8]byte
	binary.BigEndian.PutUint64(lenBytes[:], n+1)
	if err := l.context.store.Put(l.slot.Bytes(), lenBytes[:]); err != nil {
		return 0, errors.Wrap(err, "log put len")
	}
	return n, nil
}

// Get returns the entry at the given index.
func (l *Log[V]) Get(index uint64) (value V, err error) {
	raw, err := l.context.store.Get(l.entryKey(index))
	if err != nil {
		if l.context.store.IsNotFound(err) {
			return value, errors.Errorf("log get: index %d out of range", index)
		}
		return value, errors.Wrap(err, "log get")
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, errors.Wrap(err, "log decode")
	}
	return value, nil
}

// Last returns the tail entry and its index.
// The boolean result is false when the log is empty.
func (l *Log[V]) Last() (value V, index uint64, ok bool, err error) {
	n, err := l.Len()
	if err != nil || n == 0 {
		return value, 0, false, err
	}
	value, err = l.Get(n - 1)
	if err != nil {
		return value, 0, false, err
	}
	return value, n - 1, true, nil
}
