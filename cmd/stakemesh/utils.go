// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/stakemesh/stakemesh/log"
	"github.com/stakemesh/stakemesh/lvldb"
	"github.com/stakemesh/stakemesh/mesh"
)

func fatal(args ...interface{}) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func initLogger(ctx *cli.Context) {
	lvl := new(slog.LevelVar)
	switch ctx.Int(verbosityFlag.Name) {
	case 0:
		lvl.Set(slog.LevelError)
	case 1:
		lvl.Set(slog.LevelWarn)
	case 2, 3:
		lvl.Set(slog.LevelInfo)
	default:
		lvl.Set(slog.LevelDebug)
	}

	useJSON := ctx.Bool(jsonLogsFlag.Name) || !isatty.IsTerminal(os.Stderr.Fd())
	if useJSON {
		log.SetRootHandler(log.JSONHandlerWithLevel(os.Stderr, lvl))
	} else {
		log.SetRootHandler(log.LogfmtHandlerWithLevel(os.Stderr, lvl))
	}
}

func openMainDB(ctx *cli.Context) *lvldb.LevelDB {
	if ctx.Bool(memFlag.Name) {
		db, err := lvldb.NewMem()
		if err != nil {
			fatal("open in-memory database:", err)
		}
		return db
	}

	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal("unable to infer default data dir, use -data-dir to specify one")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fatal("create data dir:", err)
	}
	db, err := lvldb.New(filepath.Join(dataDir, "ledger.db"), lvldb.Options{})
	if err != nil {
		fatal("open database:", err)
	}
	return db
}

func parseBigFlag(ctx *cli.Context, flag cli.StringFlag) *big.Int {
	raw := ctx.String(flag.Name)
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok || v.Sign() < 0 {
		fatal(fmt.Sprintf("invalid -%s value %q", flag.Name, raw))
	}
	return v
}

func parseNativeToken(ctx *cli.Context, gene *genesisSpec) mesh.Address {
	if raw := ctx.String(nativeTokenFlag.Name); raw != "" {
		addr, err := mesh.ParseAddress(raw)
		if err != nil {
			fatal("invalid -native-token address:", err)
		}
		return addr
	}
	if gene != nil && gene.NativeToken != "" {
		addr, err := mesh.ParseAddress(gene.NativeToken)
		if err != nil {
			fatal("invalid nativeToken in genesis file:", err)
		}
		return addr
	}
	fatal("native token not specified, use -native-token or set nativeToken in the genesis file")
	return mesh.Address{}
}

func handleExitSignal() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		close(done)
	}()
	return done
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "StakeMesh")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "StakeMesh")
		default:
			return filepath.Join(home, ".stakemesh")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
