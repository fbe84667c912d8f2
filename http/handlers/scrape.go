/*
 * Copyright 2025 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/comcast/hpilo-exporter/exporter"
	"github.com/comcast/hpilo-exporter/middleware/logging"
	"github.com/comcast/hpilo-exporter/registry"
	"github.com/comcast/hpilo-exporter/scraper"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ScrapeHandler handles GET /scrape requests. It scrapes exactly one
// registered target and serves only that target's samples, so probe style
// prometheus jobs can fan out across targets themselves.
func ScrapeHandler(orch *scraper.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := zap.L()
		query := r.URL.Query()

		target := query.Get("target")
		if len(query["target"]) != 1 || target == "" {
			log.Error("'target' parameter not set correctly", zap.String("target", target), zap.Any("trace_id", ctx.Value(logging.TraceIDKey("traceID"))))
			http.Error(w, "'target' parameter not set correctly", http.StatusBadRequest)
			return
		}

		log.Info("started scrape",
			zap.String("target", target),
			zap.Any("trace_id", ctx.Value(logging.TraceIDKey("traceID"))))

		if proxyHost := query.Get("proxy_host"); proxyHost != "" {
			if !strings.Contains(proxyHost, "://") {
				proxyHost = "http://" + proxyHost
			}
			if _, err := url.Parse(proxyHost); err != nil {
				log.Error("invalid proxy_host parameter", zap.Error(err), zap.String("proxy_host", proxyHost),
					zap.Any("trace_id", ctx.Value(logging.TraceIDKey("traceID"))))
				http.Error(w, "invalid proxy_host parameter", http.StatusBadRequest)
				return
			}
			ctx = exporter.WithProxyURL(ctx, proxyHost)
		}

		if err := orch.Collect(ctx, target); err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				log.Error("target is not registered", zap.String("target", target), zap.Any("trace_id", ctx.Value(logging.TraceIDKey("traceID"))))
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			log.Error("scrape failed", zap.Error(err), zap.String("target", target), zap.Any("trace_id", ctx.Value(logging.TraceIDKey("traceID"))))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(orch.View(target))
		// Delegate http serving to Prometheus client library, which will call collector.Collect.
		h := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
		h.ServeHTTP(w, r)
	}
}
