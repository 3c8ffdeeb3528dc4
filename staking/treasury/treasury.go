// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package treasury custodies token balances and performs the actual payout
// transfers the staking ledger commands. The ledger never moves funds
// itself; it finalizes its own state first and calls out here last.
package treasury

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/record"
)

// Treasury is the collaborator the staking ledger pays out through.
type Treasury interface {
	// HasSufficientBalance reports whether a payout of amount in token
	// could succeed right now.
	HasSufficientBalance(token mesh.Address, amount *big.Int) (bool, error)

	// PayOut transfers amount of token to recipient. A returned error
	// fails the whole staking operation that commanded it.
	PayOut(token mesh.Address, amount *big.Int, recipient mesh.Address) error
}

var slotBalances = mesh.BytesToBytes32([]byte("treasury-balances"))

// FundLedger is the builtin Treasury: a per-token balance book funded by
// deposits and drained by payouts. Recipient balances are not modelled;
// a payout only proves custody was sufficient.
type FundLedger struct {
	balances *record.Mapping[mesh.Address, *big.Int]
}

// NewFundLedger creates a treasury over the given storage context.
func NewFundLedger(ctx *record.Context) *FundLedger {
	return &FundLedger{
		balances: record.NewMapping[mesh.Address, *big.Int](ctx, slotBalances),
	}
}

// BalanceOf returns the custodied balance of a token.
func (f *FundLedger) BalanceOf(token mesh.Address) (*big.Int, error) {
	balance, err := f.balances.Get(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get treasury balance")
	}
	return balance, nil
}

// Deposit adds amount to the token's custodied balance.
func (f *FundLedger) Deposit(token mesh.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return errors.Errorf("invalid deposit amount %v", amount)
	}
	balance, err := f.BalanceOf(token)
	if err != nil {
		return err
	}
	return f.balances.Set(token, balance.Add(balance, amount))
}

// HasSufficientBalance implements Treasury.
func (f *FundLedger) HasSufficientBalance(token mesh.Address, amount *big.Int) (bool, error) {
	balance, err := f.BalanceOf(token)
	if err != nil {
		return false, err
	}
	return balance.Cmp(amount) >= 0, nil
}

// PayOut implements Treasury.
func (f *FundLedger) PayOut(token mesh.Address, amount *big.Int, recipient mesh.Address) error {
	balance, err := f.BalanceOf(token)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return errors.Errorf("treasury balance %v of token %v cannot cover payout %v to %v", balance, token, amount, recipient)
	}
	return f.balances.Set(token, balance.Sub(balance, amount))
}
