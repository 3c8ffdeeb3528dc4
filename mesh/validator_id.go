// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mesh

import (
	"encoding/binary"
	"strconv"
)

// ValidatorID identifies a registered validator.
type ValidatorID uint64

// Bytes returns the big-endian byte form of the id.
func (id ValidatorID) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b[:]
}

// String implements stringer.
func (id ValidatorID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseValidatorID converts a decimal string into a ValidatorID.
func ParseValidatorID(s string) (ValidatorID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ValidatorID(n), nil
}
