// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the error type returned when a staking operation
// is rejected. Reverts carry a kind so callers can tell a malformed request
// from a ledger-state mismatch, a policy limit or a failed collaborator.
package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation was rejected.
type Kind uint8

const (
	// KindValidation - malformed input: zero address, invalid amount, unknown id.
	KindValidation Kind = iota
	// KindState - the caller's expectation doesn't match current ledger state.
	KindState
	// KindPolicy - a configured limit rejects the action outright.
	KindPolicy
	// KindExternal - an external collaborator failed; the operation was rolled back.
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindPolicy:
		return "policy"
	case KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// ErrRevert is the rejection error of a staking operation.
type ErrRevert struct {
	kind    Kind
	message string
}

// New creates a revert of the given kind.
func New(kind Kind, format string, args ...any) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: fmt.Sprintf(format, args...),
	}
}

// Validation creates a validation revert.
func Validation(format string, args ...any) *ErrRevert {
	return New(KindValidation, format, args...)
}

// State creates a state revert.
func State(format string, args ...any) *ErrRevert {
	return New(KindState, format, args...)
}

// Policy creates a policy revert.
func Policy(format string, args ...any) *ErrRevert {
	return New(KindPolicy, format, args...)
}

// External creates an external-collaborator revert.
func External(format string, args ...any) *ErrRevert {
	return New(KindExternal, format, args...)
}

func (e *ErrRevert) Error() string {
	return e.message
}

// Kind returns the revert classification.
func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// IsRevertErr returns whether the given value is (or wraps) a revert.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf extracts the revert kind from an error chain.
// The boolean result is false when err is not a revert.
func KindOf(err error) (Kind, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind, true
	}
	return 0, false
}
