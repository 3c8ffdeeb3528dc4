// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/stakemesh/stakemesh/api"
	"github.com/stakemesh/stakemesh/log"
	"github.com/stakemesh/stakemesh/metrics"
	"github.com/stakemesh/stakemesh/record"
	"github.com/stakemesh/stakemesh/staking"
	"github.com/stakemesh/stakemesh/staking/authority"
	"github.com/stakemesh/stakemesh/staking/treasury"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "StakeMesh",
		Usage:     "Delegated-stake ledger with checkpointed reward accrual",
		Copyright: "2025 The StakeMesh developers",
		Flags: []cli.Flag{
			dataDirFlag,
			memFlag,
			genesisFlag,
			apiAddrFlag,
			apiCorsFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			pprofFlag,
			nativeTokenFlag,
			minStakeFlag,
			cooldownFlag,
			maxCommissionFlag,
			maxVoteDurationFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	var gene *genesisSpec
	if path := ctx.String(genesisFlag.Name); path != "" {
		var err error
		if gene, err = loadGenesis(path); err != nil {
			fatal(err)
		}
	}

	mainDB := openMainDB(ctx)
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	storageCtx := record.NewContext(mainDB)
	funds := treasury.NewFundLedger(storageCtx)
	registry := authority.NewRegistry(storageCtx)

	staker := staking.New(mainDB, staking.Config{
		NativeToken:     parseNativeToken(ctx, gene),
		MinStake:        parseBigFlag(ctx, minStakeFlag),
		CooldownPeriod:  ctx.Uint64(cooldownFlag.Name),
		MaxCommission:   parseBigFlag(ctx, maxCommissionFlag),
		MaxVoteDuration: ctx.Uint64(maxVoteDurationFlag.Name),
	}, funds, registry)

	if gene != nil {
		if err := applyGenesis(mainDB, gene, registry, funds, staker); err != nil {
			fatal("apply genesis:", err)
		}
	}

	apiSrv, apiURL := startAPIServer(ctx, api.New(staker, api.Options{
		AllowedOrigins: ctx.String(apiCorsFlag.Name),
		PprofOn:        ctx.Bool(pprofFlag.Name),
		EnableMetrics:  ctx.Bool(enableMetricsFlag.Name),
	}))
	defer func() { logger.Info("stopping API server..."); apiSrv.Shutdown(context.Background()) }()

	logger.Info("started", "version", fullVersion(), "api", apiURL)

	<-handleExitSignal()
	logger.Info("exit signal received")
	return nil
}

func startAPIServer(ctx *cli.Context, handler http.Handler) (*http.Server, string) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen API addr [%v]: %v", addr, err))
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			logger.Error("API server stopped", "err", err)
		}
	}()
	return srv, "http://" + listener.Addr().String() + "/"
}
