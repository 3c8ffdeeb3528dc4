// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the ledger database",
	}
	memFlag = cli.BoolFlag{
		Name:  "mem",
		Usage: "keep the ledger in memory, for test & dev",
	}
	genesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "path to a genesis file with initial validators, tokens and role grants",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-4: error, warn, info, debug)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "emit logs as JSON regardless of the output device",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "export prometheus metrics on /metrics",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "expose pprof endpoints under /debug/pprof",
	}
	nativeTokenFlag = cli.StringFlag{
		Name:  "native-token",
		Usage: "address of the token principal is denominated in",
	}
	minStakeFlag = cli.StringFlag{
		Name:  "min-stake",
		Value: "1",
		Usage: "minimum amount per stake",
	}
	cooldownFlag = cli.Uint64Flag{
		Name:  "cooldown",
		Value: 60 * 60 * 24 * 7,
		Usage: "seconds between unstake and withdrawability",
	}
	maxCommissionFlag = cli.StringFlag{
		Name:  "max-commission",
		Value: "200000000000000000", // 20%
		Usage: "cap on validator commission, 1e18 fixed point",
	}
	maxVoteDurationFlag = cli.Uint64Flag{
		Name:  "max-vote-duration",
		Value: 60 * 60 * 24,
		Usage: "cap on slash vote lifetime in seconds",
	}
)
