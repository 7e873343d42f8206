// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakecover/api"
	"github.com/vechain/stakecover/builtin/oracle"
	"github.com/vechain/stakecover/eventdb"
	"github.com/vechain/stakecover/health"
	"github.com/vechain/stakecover/kv"
	"github.com/vechain/stakecover/log"
	"github.com/vechain/stakecover/lvldb"
	"github.com/vechain/stakecover/metrics"
	"github.com/vechain/stakecover/pool"
)

var (
	version       string
	gitCommit     string
	gitTag        string
	copyrightYear string

	sharedFlags = []cli.Flag{
		genesisFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiEventsLimitFlag,
		apiSlowQueriesThresholdFlag,
		apiLog5xxErrorsFlag,
		enableAPILogsFlag,
		verbosityFlag,
		jsonLogsFlag,
		pprofFlag,
		enableMetricsFlag,
		metricsAddrFlag,
		enableAdminFlag,
		adminAddrFlag,
		healthIntervalFlag,
	}
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
		Name:      "Coverd",
		Usage:     "Cover pool ledger for staking delegators",
		Copyright: fmt.Sprintf("2025-%s VeChain Foundation <https://vechain.org/>", copyrightYear),
		Flags:     append([]cli.Flag{dataDirFlag, cacheFlag}, sharedFlags...),
		Action:    defaultAction,
		Commands: []cli.Command{
			{
				Name:   "dev",
				Usage:  "run an in-memory ledger for test & dev",
				Flags:  append([]cli.Flag{dataDirFlag, cacheFlag, persistFlag}, sharedFlags...),
				Action: devAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	lvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return errors.Wrap(err, "parse verbosity flag")
	}
	logLevel := initLogger(lvl, ctx.Bool(jsonLogsFlag.Name))

	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return err
	}
	ledgerDB, err := openLedgerDB(ctx, dataDir)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing ledger database..."); ledgerDB.Close() }()

	eventDB, err := openEventDB(dataDir)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing event database..."); eventDB.Close() }()

	return run(ctx, logLevel, ledgerDB, eventDB, dataDir)
}

func devAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	lvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return errors.Wrap(err, "parse verbosity flag")
	}
	logLevel := initLogger(lvl, ctx.Bool(jsonLogsFlag.Name))

	var (
		ledgerDB *lvldb.LevelDB
		eventDB  *eventdb.EventDB
		dataDir  = "Memory"
	)
	if ctx.Bool(persistFlag.Name) {
		if dataDir, err = makeDataDir(ctx); err != nil {
			return err
		}
		if ledgerDB, err = openLedgerDB(ctx, dataDir); err != nil {
			return err
		}
		if eventDB, err = openEventDB(dataDir); err != nil {
			ledgerDB.Close()
			return err
		}
	} else {
		if ledgerDB, err = lvldb.NewMem(); err != nil {
			return err
		}
		if eventDB, err = eventdb.NewMem(); err != nil {
			ledgerDB.Close()
			return err
		}
	}
	defer func() { log.Info("closing ledger database..."); ledgerDB.Close() }()
	defer func() { log.Info("closing event database..."); eventDB.Close() }()

	return run(ctx, logLevel, ledgerDB, eventDB, dataDir)
}

func run(ctx *cli.Context, logLevel *slog.LevelVar, store kv.Store, eventDB *eventdb.EventDB, dataDir string) error {
	gen, err := loadGenesis(ctx)
	if err != nil {
		return err
	}

	h := health.New(ctx.Duration(healthIntervalFlag.Name))
	p := pool.New(store, pool.Options{
		Oracle:   oracle.Config{BootstrapEras: gen.Oracle.BootstrapEras},
		Events:   eventDB,
		Observer: h,
	})
	if err := p.ApplyGenesis(gen); err != nil {
		return errors.Wrap(err, "apply genesis")
	}

	enableMetrics := ctx.Bool(enableMetricsFlag.Name)
	if enableMetrics {
		metrics.InitializePrometheusMetrics()
	}

	exitCtx, cancel := handleExitSignal()
	defer cancel()
	g, gctx := errgroup.WithContext(exitCtx)

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	apiHandler := api.New(p, eventDB, h, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EventsLimit:          ctx.Uint64(apiEventsLimitFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		EnableMetrics:        enableMetrics,
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
	})
	runAPI, apiURL, err := serve(gctx, "API", ctx.String(apiAddrFlag.Name), apiHandler)
	if err != nil {
		return err
	}
	g.Go(runAPI)

	if enableMetrics {
		router := mux.NewRouter()
		router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
		runMetrics, url, err := serve(gctx, "metrics", ctx.String(metricsAddrFlag.Name), handlers.CompressHandler(router))
		if err != nil {
			cancel()
			g.Wait()
			return err
		}
		log.Info("metrics server started", "url", url+"/metrics")
		g.Go(runMetrics)
	}

	if ctx.Bool(enableAdminFlag.Name) {
		url, stop, err := api.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel, apiLogs, h)
		if err != nil {
			cancel()
			g.Wait()
			return err
		}
		defer func() { log.Info("stopping admin server..."); stop() }()
		log.Info("admin server started", "url", url)
	}

	printStartupMessage(p, dataDir, apiURL)

	<-gctx.Done()
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printStartupMessage(p *pool.Pool, dataDir, apiURL string) {
	summary, err := p.Summary()
	if err != nil {
		log.Warn("failed to read pool summary", "err", err)
		return
	}
	fmt.Printf(`Starting %v
    Era         [ %v ]
    Spendable   [ %v ]
    Data dir    [ %v ]
    API portal  [ %v ]
`,
		fullVersion(),
		summary.Era,
		summary.Spendable,
		dataDir,
		apiURL)
}
