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

package registry

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/comcast/hpilo-exporter/config"
)

var (
	ErrNotFound = errors.New("target not found")
	ErrExists   = errors.New("target already registered")
)

// Target is one configured iLO controller. A Target handed out by the
// registry is a value copy; mutating it does not affect the registry.
type Target struct {
	Name              string
	Address           string
	Scheme            string
	CredentialProfile string
	User              string
	Pass              string
	SSLVerify         bool
	Timeout           time.Duration
	Enabled           bool
}

// URL returns the base url of the controller, prefixing the configured
// scheme when the address does not already carry one.
func (t Target) URL() string {
	u, err := url.ParseRequestURI(t.Address)
	if err != nil || u.Host == "" {
		scheme := t.Scheme
		if scheme == "" {
			scheme = config.GetConfig().IloScheme
		}
		u = &url.URL{
			Scheme: scheme,
			Host:   t.Address,
		}
	}
	return u.String()
}

func (t Target) validate() error {
	if t.Name == "" {
		return fmt.Errorf("target is missing a name")
	}
	if t.Address == "" {
		return fmt.Errorf("target %s is missing an address", t.Name)
	}
	return nil
}

// Registry holds the set of configured targets. Add and Remove are safe
// while collect cycles are in flight; a cycle works on the List snapshot
// it was dispatched with.
type Registry struct {
	mu      sync.RWMutex
	targets map[string]Target
}

func New() *Registry {
	return &Registry{
		targets: make(map[string]Target),
	}
}

func (r *Registry) Add(t Target) error {
	if err := t.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.targets[t.Name]; ok {
		return fmt.Errorf("%w: %s", ErrExists, t.Name)
	}
	if t.Timeout <= 0 {
		t.Timeout = config.GetConfig().IloTimeout
	}
	r.targets[t.Name] = t
	return nil
}

func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.targets[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(r.targets, name)
	return nil
}

func (r *Registry) Get(name string) (Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.targets[name]
	if !ok {
		return Target{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return t, nil
}

// List returns a sorted copy of every registered target, enabled or not.
func (r *Registry) List() []Target {
	r.mu.RLock()
	defer r.mu.RUnlock()
	targets := make([]Target, 0, len(r.targets))
	for _, t := range r.targets {
		targets = append(targets, t)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Name < targets[j].Name })
	return targets
}

// Enabled returns the sorted subset of targets eligible for a full
// collect cycle.
func (r *Registry) Enabled() []Target {
	var targets []Target
	for _, t := range r.List() {
		if t.Enabled {
			targets = append(targets, t)
		}
	}
	return targets
}
