// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/stakemesh/stakemesh/mesh"
)

// BigInt is a singleton non-negative big integer slot.
// Similar to storing an uint256 in a smart contract.
type BigInt struct {
	context *Context
	slot    mesh.Bytes32
}

// NewBigInt creates a BigInt at the given slot.
func NewBigInt(context *Context, slot mesh.Bytes32) *BigInt {
	return &BigInt{context: context, slot: slot}
}

// Get returns the stored value, zero if never set.
func (b *BigInt) Get() (*big.Int, error) {
	raw, err := b.context.store.Get(b.slot.Bytes())
	if err != nil {
		if b.context.store.IsNotFound(err) {
			return new(big.Int), nil
		}
		return nil, errors.Wrap(err, "bigint get")
	}
	return new(big.Int).SetBytes(raw), nil
}

// Set stores the value.
func (b *BigInt) Set(value *big.Int) error {
	if value.Sign() < 0 {
		return errors.New("bigint set: negative value")
	}
	return b.context.store.Put(b.slot.Bytes(), value.Bytes())
}

// Add increases the stored value.
func (b *BigInt) Add(value *big.Int) error {
	stored, err := b.Get()
	if err != nil {
		return err
	}
	return b.Set(stored.Add(stored, value))
}

// Sub decreases the stored value. It fails if the result would go negative.
func (b *BigInt) Sub(value *big.Int) error {
	stored, err := b.Get()
	if err != nil {
		return err
	}
	stored.Sub(stored, value)
	if stored.Sign() < 0 {
		return errors.New("bigint sub: underflow")
	}
	return b.Set(stored)
}
