/*
 * Copyright 2024 Comcast Cable Communications Management, LLC
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

package exporter

import (
	"context"
	"errors"
	"sync"

	"github.com/comcast/hpilo-exporter/middleware/logging"
	"github.com/comcast/hpilo-exporter/pool"
	"github.com/comcast/hpilo-exporter/registry"
	"github.com/comcast/hpilo-exporter/ribcl"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	log *zap.Logger
)

// kindGroups maps each request kind onto the metric group its handler fills.
var kindGroups = map[ribcl.Kind]string{
	ribcl.KindFirmware:      "firmwareMetrics",
	ribcl.KindPower:         "powerMetrics",
	ribcl.KindThermal:       "thermalMetrics",
	ribcl.KindHealthSummary: "healthSummaryMetrics",
	ribcl.KindVRM:           "vrmMetrics",
	ribcl.KindFans:          "fanMetrics",
	ribcl.KindPowerSupplies: "powerSupplyMetrics",
	ribcl.KindMemory:        "memoryMetrics",
	ribcl.KindProcessor:     "processorMetrics",
	ribcl.KindNetwork:       "networkMetrics",
	ribcl.KindStorage:       "storageMetrics",
	ribcl.KindBattery:       "batteryMetrics",
}

// GroupForKind returns the metric group name a request kind's handler fills.
func GroupForKind(kind ribcl.Kind) string {
	return kindGroups[kind]
}

// Exporter collects hp ilo stats from a single controller over RIBCL and
// exports them using the prometheus metrics package.
type Exporter struct {
	ctx           context.Context
	mutex         sync.RWMutex
	pool          *pool.Pool
	kinds         []ribcl.Kind
	client        *ribcl.Client
	host          string
	target        string
	credProfile   string
	serverName    string
	productName   string
	results       map[ribcl.Kind]error
	deviceMetrics *map[string]*Metrics
}

// NewExporter returns an initialized Exporter for a RIBCL capable hp ilo
// controller. The identity lookups double as a reachability and login check,
// transport and auth failures surface here instead of once per request kind.
func NewExporter(ctx context.Context, target registry.Target) (*Exporter, error) {
	var tasks []*pool.Task
	var exp = Exporter{
		ctx:           ctx,
		target:        target.Name,
		credProfile:   target.CredentialProfile,
		results:       make(map[ribcl.Kind]error),
		deviceMetrics: NewDeviceMetrics(),
	}

	log = zap.L()

	retryClient := NewHTTPClient(ctx, target)

	exp.host = target.URL()
	exp.client = ribcl.NewClient(exp.host, target.Name, target.CredentialProfile, target.User, target.Pass, retryClient)

	serverName, err := exp.client.ServerName(ctx)
	if err != nil {
		if fatalIdentity(err) {
			log.Error("error getting server name from "+exp.target, zap.Error(err), zap.Any("trace_id", ctx.Value(logging.TraceIDKey("traceID"))))
			return nil, err
		}
		serverName = ""
	}
	// controllers without an administrator assigned name answer with an
	// empty value, fall back to the registry name so every sample still
	// groups by server_name
	if serverName == "" {
		serverName = target.Name
	}
	exp.serverName = serverName

	productName, err := exp.client.ProductName(ctx)
	if err != nil {
		if fatalIdentity(err) {
			log.Error("error getting product name from "+exp.target, zap.Error(err), zap.Any("trace_id", ctx.Value(logging.TraceIDKey("traceID"))))
			return nil, err
		}
		productName = ""
	}
	exp.productName = orUnknown(productName)

	for _, kind := range ribcl.Kinds() {
		exp.kinds = append(exp.kinds, kind)
		tasks = append(tasks, pool.NewTask(exp.client.Fetch(ctx, kind), handle(&exp, kind)))
	}

	// request kinds run sequentially, ilo firmware rejects concurrent
	// sessions past a small limit
	exp.pool = pool.NewPool(tasks, 1)

	return &exp, nil
}

// fatalIdentity reports whether an identity lookup error means the whole
// target is unusable this cycle. Older firmware that does not implement the
// name commands still serves health data, so those errors are survivable.
func fatalIdentity(err error) bool {
	return !errors.Is(err, ribcl.ErrUnsupportedRequest) && !errors.Is(err, ribcl.ErrMalformedResponse)
}

// Host returns the base url the exporter talks to.
func (e *Exporter) Host() string {
	return e.host
}

// ServerName returns the resolved server name label value.
func (e *Exporter) ServerName() string {
	return e.serverName
}

// ProductName returns the resolved product name label value.
func (e *Exporter) ProductName() string {
	return e.productName
}

// DeviceMetrics returns the metric groups filled by the last Scrape.
func (e *Exporter) DeviceMetrics() *map[string]*Metrics {
	return e.deviceMetrics
}

// Results returns the per request kind outcome of the last Scrape. A nil
// entry means the kind succeeded or the firmware does not implement it.
func (e *Exporter) Results() map[ribcl.Kind]error {
	return e.results
}

// Describe describes all the metrics ever exported by the hpilo exporter. It
// implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range *e.deviceMetrics {
		for _, n := range *m {
			n.Describe(ch)
		}
	}
}

// Collect fetches the stats from the configured hp ilo location and delivers them
// as Prometheus metrics. It implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	e.mutex.Lock() // To protect metrics from concurrent collects.
	defer e.mutex.Unlock()

	e.resetMetrics()
	e.Scrape()
	e.collectMetrics(ch)
}

func (e *Exporter) resetMetrics() {
	for _, m := range *e.deviceMetrics {
		for _, n := range *m {
			n.Reset()
		}
	}
}

func (e *Exporter) collectMetrics(metrics chan<- prometheus.Metric) {
	for _, m := range *e.deviceMetrics {
		for _, n := range *m {
			n.Collect(metrics)
		}
	}
}

// Scrape runs every request kind against the controller and feeds the bodies
// through their normalize handlers. Failures are recorded per kind so one
// broken section does not discard the rest of the controller's data.
func (e *Exporter) Scrape() {
	e.pool.Run()
	for i, task := range e.pool.Tasks {
		kind := e.kinds[i]
		if task.Err != nil {
			// older firmware reports unimplemented commands inline,
			// treat the section as absent rather than failed
			if errors.Is(task.Err, ribcl.ErrUnsupportedRequest) {
				e.results[kind] = nil
				continue
			}
			e.results[kind] = task.Err
			log.Error("error calling ilo api for "+string(kind)+" from "+e.target, zap.Error(task.Err), zap.Any("trace_id", e.ctx.Value(logging.TraceIDKey("traceID"))))
			continue
		}

		var err error
		for _, handler := range task.MetricHandlers {
			err = handler(task.Body)
		}
		if err != nil {
			e.results[kind] = err
			log.Error("error exporting metrics for "+string(kind)+" from "+e.target, zap.Error(err), zap.Any("trace_id", e.ctx.Value(logging.TraceIDKey("traceID"))))
			continue
		}
		e.results[kind] = nil
	}
}
