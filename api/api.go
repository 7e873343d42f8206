// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakecover/api/cover"
	"github.com/vechain/stakecover/api/delegations"
	"github.com/vechain/stakecover/api/events"
	"github.com/vechain/stakecover/api/middleware"
	"github.com/vechain/stakecover/api/oracle"
	"github.com/vechain/stakecover/api/params"
	"github.com/vechain/stakecover/eventdb"
	"github.com/vechain/stakecover/health"
	"github.com/vechain/stakecover/log"
	"github.com/vechain/stakecover/pool"

	healthAPI "github.com/vechain/stakecover/api/admin/health"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	EventsLimit          uint64
	PprofOn              bool
	EnableMetrics        bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
}

// New return api router
func New(p *pool.Pool, eventDB *eventdb.EventDB, h *health.Health, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	cover.New(p).
		Mount(router, "/cover")
	oracle.New(p).
		Mount(router, "/oracle")
	delegations.New(p).
		Mount(router, "/delegations")
	params.New(p).
		Mount(router)
	if eventDB != nil {
		events.New(eventDB, opts.EventsLimit).
			Mount(router, "/events")
	}
	healthAPI.New(h).
		Mount(router, "/health")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = &atomic.Bool{}
	}
	router.Use(middleware.RequestLoggerMiddleware(logger, enabled, opts.SlowQueriesThreshold, opts.Log5xxErrors))

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete}),
	)(handler)

	return handler.ServeHTTP
}
