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

package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// View returns a prometheus collector over the published snapshots plus the
// synthetic per target scrape health series, optionally narrowed to a subset
// of targets.
func (o *Orchestrator) View(names ...string) prometheus.Collector {
	var filter map[string]struct{}
	if len(names) > 0 {
		filter = make(map[string]struct{}, len(names))
		for _, name := range names {
			filter[name] = struct{}{}
		}
	}
	return &view{o: o, filter: filter}
}

type view struct {
	o      *Orchestrator
	filter map[string]struct{}
}

// Describe sends nothing, which registers the view as an unchecked
// collector. The snapshot set, and with it the exported families, changes
// from one scrape cycle to the next.
func (v *view) Describe(ch chan<- *prometheus.Desc) {}

// Collect emits every sample of every published snapshot in scope, then the
// synthetic series recording scrape health. Failed targets without a
// snapshot still get their hpilo_up and failure counter series so they never
// disappear from the exposition.
func (v *view) Collect(ch chan<- prometheus.Metric) {
	up := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hpilo_up",
		Help: "Scrape status of the target, 1 = all request kinds succeeded, 0 = some request kinds failed, 2 = controller unreachable or login rejected",
	}, []string{"target"})
	requestUp := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hpilo_request_up",
		Help: "Status of the last request of this kind against the target, 1 = success, 0 = failure",
	}, []string{"target", "kind"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hpilo_scrape_failures_total",
		Help: "Number of scrape cycles in which at least one request against the target failed",
	}, []string{"target"})
	duration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hpilo_scrape_duration_seconds",
		Help: "Duration of the last scrape of the target",
	}, []string{"target"})
	age := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hpilo_scrape_snapshot_age_seconds",
		Help: "Age of the published snapshot for the target, grows while scrapes keep failing",
	}, []string{"target"})

	v.o.mu.RLock()
	defer v.o.mu.RUnlock()

	for name, snap := range v.o.snapshots {
		if !v.keep(name) {
			continue
		}
		for _, group := range snap.Groups {
			for _, vec := range *group {
				vec.Collect(ch)
			}
		}
		age.WithLabelValues(name).Set(time.Since(snap.Taken).Seconds())
	}

	for name, stat := range v.o.stats {
		if !v.keep(name) {
			continue
		}
		up.WithLabelValues(name).Set(stat.up)
		for kind, val := range stat.kindUp {
			requestUp.WithLabelValues(name, string(kind)).Set(val)
		}
		failures.WithLabelValues(name).Add(stat.failures)
		duration.WithLabelValues(name).Set(stat.duration)
	}

	up.Collect(ch)
	requestUp.Collect(ch)
	failures.Collect(ch)
	duration.Collect(ch)
	age.Collect(ch)
}

func (v *view) keep(name string) bool {
	if v.filter == nil {
		return true
	}
	_, ok := v.filter[name]
	return ok
}
