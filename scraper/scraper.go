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
	"context"
	"errors"
	"sync"
	"time"

	"github.com/comcast/hpilo-exporter/common"
	"github.com/comcast/hpilo-exporter/config"
	"github.com/comcast/hpilo-exporter/exporter"
	"github.com/comcast/hpilo-exporter/middleware/logging"
	"github.com/comcast/hpilo-exporter/registry"
	"github.com/comcast/hpilo-exporter/ribcl"
	"go.uber.org/zap"
)

var (
	log *zap.Logger
)

// upOK, upPartial and upDown are the values of the hpilo_up gauge. A target
// counts as up when every request kind its firmware implements succeeded,
// partial when at least one kind failed, and down when the controller could
// not be reached or rejected the login outright.
const (
	upPartial = 0.0
	upOK      = 1.0
	upDown    = 2.0
)

// Snapshot is the published result of one target scrape cycle. Groups maps
// metric group names onto the gauges filled for that group, mixing fresh
// groups with retained ones from the previous snapshot for kinds that failed.
type Snapshot struct {
	Target      string
	ServerName  string
	ProductName string
	Taken       time.Time
	Groups      map[string]*exporter.Metrics
}

// targetStat carries the scrape health of one target across cycles. It
// exists for every target the orchestrator ever attempted, whether or not a
// snapshot was published.
type targetStat struct {
	up       float64
	kindUp   map[ribcl.Kind]float64
	failures float64
	duration float64
}

// Orchestrator fans one scrape cycle out across registry targets and owns
// the per target snapshot cache.
type Orchestrator struct {
	reg *registry.Registry

	mu        sync.RWMutex
	snapshots map[string]*Snapshot
	stats     map[string]*targetStat

	collectMu sync.Mutex
	lastRun   time.Time
}

// New returns an Orchestrator scraping targets from the given registry.
func New(reg *registry.Registry) *Orchestrator {
	log = zap.L()
	return &Orchestrator{
		reg:       reg,
		snapshots: make(map[string]*Snapshot),
		stats:     make(map[string]*targetStat),
	}
}

// Collect runs one scrape cycle. With no names it covers every enabled
// target and may be answered from the previous cycle when a collect cache
// ttl is configured. With names it scrapes exactly those targets and returns
// registry.ErrNotFound when one of them is not registered.
//
// Each target runs in its own goroutine under its own timeout, bounded by
// the process wide ceiling so one misconfigured target cannot stall the
// whole cycle. Collect returns once every target finished or timed out.
func (o *Orchestrator) Collect(ctx context.Context, names ...string) error {
	var targets []registry.Target
	if len(names) == 0 {
		targets = o.reg.Enabled()
	} else {
		for _, name := range names {
			target, err := o.reg.Get(name)
			if err != nil {
				return err
			}
			targets = append(targets, target)
		}
	}

	o.collectMu.Lock()
	defer o.collectMu.Unlock()

	ttl := config.GetConfig().CollectCacheTTL
	if len(names) == 0 && ttl > 0 && time.Since(o.lastRun) < ttl {
		return nil
	}

	if ceiling := config.GetConfig().ScrapeCeiling; ceiling > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ceiling)
		defer cancel()
	}

	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(target registry.Target) {
			defer wg.Done()
			o.scrapeTarget(ctx, target)
		}(target)
	}
	wg.Wait()

	if len(names) == 0 {
		o.lastRun = time.Now()
		o.prune()
	}

	return nil
}

// scrapeTarget runs the full request sequence against one target and
// publishes the outcome.
func (o *Orchestrator) scrapeTarget(ctx context.Context, target registry.Target) {
	tctx := ctx
	if target.Timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, target.Timeout)
		defer cancel()
	}

	// check if the credentials hashmap contains this target otherwise get
	// them from vault before the first request goes out
	if common.IloCreds.Vault != nil && target.CredentialProfile != "" {
		if _, ok := common.IloCreds.Get(target.Name); !ok {
			credential, err := common.IloCreds.GetCredentials(tctx, target.CredentialProfile, target.Name)
			if err != nil {
				log.Error("issue retrieving credentials from vault using target "+target.Name, zap.Error(err), zap.Any("trace_id", ctx.Value(logging.TraceIDKey("traceID"))))
			} else {
				common.IloCreds.Set(target.Name, credential)
			}
		}
	}

	start := time.Now()
	exp, err := exporter.NewExporter(tctx, target)
	if err != nil {
		o.publishFailure(target, err, time.Since(start))
		return
	}
	exp.Scrape()
	o.publish(target, exp, time.Since(start))
}

// publish swaps in a fresh snapshot for the target, keeping the previous
// cycle's group for every request kind that failed this cycle. Results for
// targets removed from the registry mid flight are discarded.
func (o *Orchestrator) publish(target registry.Target, exp *exporter.Exporter, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, err := o.reg.Get(target.Name); errors.Is(err, registry.ErrNotFound) {
		log.Info("discarding scrape result for removed target " + target.Name)
		return
	}

	prev := o.snapshots[target.Name]
	groups := make(map[string]*exporter.Metrics)
	stat := &targetStat{
		up:       upOK,
		kindUp:   make(map[ribcl.Kind]float64),
		duration: elapsed.Seconds(),
	}
	if old, ok := o.stats[target.Name]; ok {
		stat.failures = old.failures
	}

	failed := 0
	for kind, result := range exp.Results() {
		group := exporter.GroupForKind(kind)
		if result == nil {
			stat.kindUp[kind] = 1
			groups[group] = (*exp.DeviceMetrics())[group]
			continue
		}
		failed++
		stat.kindUp[kind] = 0
		if prev != nil {
			if retained, ok := prev.Groups[group]; ok {
				groups[group] = retained
			}
		}
	}
	if failed > 0 {
		stat.up = upPartial
		stat.failures++
	}

	o.snapshots[target.Name] = &Snapshot{
		Target:      target.Name,
		ServerName:  exp.ServerName(),
		ProductName: exp.ProductName(),
		Taken:       time.Now(),
		Groups:      groups,
	}
	o.stats[target.Name] = stat
}

// publishFailure records a cycle in which the controller never got past the
// identity stage. The previous snapshot, if any, stays published so its
// samples remain visible while the staleness age grows.
func (o *Orchestrator) publishFailure(target registry.Target, err error, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, rerr := o.reg.Get(target.Name); errors.Is(rerr, registry.ErrNotFound) {
		log.Info("discarding scrape result for removed target " + target.Name)
		return
	}

	stat := &targetStat{
		up:       upDown,
		kindUp:   make(map[ribcl.Kind]float64),
		duration: elapsed.Seconds(),
	}
	if old, ok := o.stats[target.Name]; ok {
		stat.failures = old.failures
	}
	stat.failures++
	for _, kind := range ribcl.Kinds() {
		stat.kindUp[kind] = 0
	}
	o.stats[target.Name] = stat
}

// prune drops snapshots and stats for targets no longer registered.
func (o *Orchestrator) prune() {
	known := make(map[string]struct{})
	for _, target := range o.reg.List() {
		known[target.Name] = struct{}{}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	for name := range o.snapshots {
		if _, ok := known[name]; !ok {
			delete(o.snapshots, name)
		}
	}
	for name := range o.stats {
		if _, ok := known[name]; !ok {
			delete(o.stats, name)
		}
	}
}

// Snapshot returns the published snapshot for a target, if one exists.
func (o *Orchestrator) Snapshot(name string) (*Snapshot, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	snap, ok := o.snapshots[name]
	return snap, ok
}
