// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakecover/eventdb"
	"github.com/vechain/stakecover/log"
	"github.com/vechain/stakecover/lvldb"
	"github.com/vechain/stakecover/pool"
)

func initLogger(lvl int, jsonLogs bool) *slog.LevelVar {
	logLevel := log.FromLegacyLevel(lvl)
	output := os.Stderr

	var level slog.LevelVar
	level.Set(logLevel)

	var handler slog.Handler
	if jsonLogs {
		handler = log.JSONHandlerWithLevel(output, &level)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(output, &level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return &level
}

func readIntFromUInt64Flag(val uint64) (int, error) {
	if val > math.MaxInt {
		return 0, fmt.Errorf("invalid value %d, exceeds max int", val)
	}
	return int(val), nil
}

func loadGenesis(ctx *cli.Context) (*pool.Genesis, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return pool.DefaultGenesis(), nil
	}
	gen, err := pool.LoadGenesis(path)
	if err != nil {
		return nil, errors.Wrap(err, "load genesis")
	}
	return gen, nil
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

func openLedgerDB(ctx *cli.Context, dataDir string) (*lvldb.LevelDB, error) {
	cacheMB, err := readIntFromUInt64Flag(ctx.Uint64(cacheFlag.Name))
	if err != nil {
		return nil, errors.Wrap(err, "parse cache flag")
	}
	path := filepath.Join(dataDir, "ledger.db")
	db, err := lvldb.New(path, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: 500,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open ledger database [%v]", path)
	}
	return db, nil
}

func openEventDB(dataDir string) (*eventdb.EventDB, error) {
	path := filepath.Join(dataDir, "events.db")
	db, err := eventdb.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open event database [%v]", path)
	}
	return db, nil
}

// serve runs srv on addr until ctx is done.
func serve(ctx context.Context, name, addr string, handler http.Handler) (func() error, string, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", errors.Wrapf(err, "listen %s addr [%v]", name, addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}

	run := func() error {
		errCh := make(chan error, 1)
		go func() {
			if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
				return
			}
			errCh <- nil
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			log.Info("stopping "+name+" server...")
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("failed to stop "+name+" server", "err", err)
			}
			return <-errCh
		case err := <-errCh:
			return errors.Wrapf(err, "%s server", name)
		}
	}
	return run, "http://" + listener.Addr().String(), nil
}

func handleExitSignal() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(exitSignalCh)

		select {
		case sig := <-exitSignalCh:
			log.Info("exit signal received", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "org.vechain.stakecover")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "org.vechain.stakecover")
		default:
			return filepath.Join(home, ".org.vechain.stakecover")
		}
	}
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
