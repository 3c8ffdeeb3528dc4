// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mesh

import "math/big"

// Constants of the ledger.
var (
	// RatePrecision is the fixed-point denominator shared by reward rates
	// (tokens per second per staked unit) and commission fractions.
	RatePrecision = big.NewInt(1e18)
)
