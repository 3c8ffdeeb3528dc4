// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/stakemesh/stakemesh/api/stakingapi"
	"github.com/stakemesh/stakemesh/api/utils"
	"github.com/stakemesh/stakemesh/log"
	"github.com/stakemesh/stakemesh/metrics"
	"github.com/stakemesh/stakemesh/staking"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins string
	PprofOn        bool
	EnableMetrics  bool
}

// New returns the api handler.
func New(staker *staking.Staker, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	stakingapi.New(staker).Mount(router, "/staking")

	router.Path("/health").Methods(http.MethodGet).HandlerFunc(
		utils.WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
			return utils.WriteJSON(w, utils.M{"healthy": true})
		}))

	if opts.EnableMetrics {
		router.Path("/metrics").Handler(metrics.HTTPHandler())
	}

	if opts.PprofOn {
		router.PathPrefix("/debug/pprof/cmdline").HandlerFunc(pprof.Cmdline)
		router.PathPrefix("/debug/pprof/profile").HandlerFunc(pprof.Profile)
		router.PathPrefix("/debug/pprof/symbol").HandlerFunc(pprof.Symbol)
		router.PathPrefix("/debug/pprof/trace").HandlerFunc(pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)
	handler = logRequests(handler)

	logger.Debug("api handler assembled", "origins", opts.AllowedOrigins)
	return handler.ServeHTTP
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
