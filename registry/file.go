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
	"fmt"
	"os"
	"time"

	"github.com/comcast/hpilo-exporter/config"
	"gopkg.in/yaml.v3"
)

type fileDuration struct {
	time.Duration
}

func (d *fileDuration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

type fileTarget struct {
	Name              string       `yaml:"name"`
	Address           string       `yaml:"address"`
	Scheme            string       `yaml:"scheme"`
	CredentialProfile string       `yaml:"credential_profile"`
	User              string       `yaml:"username"`
	Pass              string       `yaml:"password"`
	SSLVerify         *bool        `yaml:"ssl_verify"`
	Timeout           fileDuration `yaml:"timeout"`
	Enabled           *bool        `yaml:"enabled"`
}

type targetsFile struct {
	Targets []fileTarget `yaml:"targets"`
}

// LoadFile reads a targets file and returns the targets it declares,
// filling unset fields from process-level defaults. Targets default to
// enabled; a file entry has to opt out explicitly.
func LoadFile(path string) ([]Target, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading targets file %s - %w", path, err)
	}

	var f targetsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("error parsing targets file %s - %w", path, err)
	}

	cfg := config.GetConfig()
	targets := make([]Target, 0, len(f.Targets))
	for i, ft := range f.Targets {
		t := Target{
			Name:              ft.Name,
			Address:           ft.Address,
			Scheme:            ft.Scheme,
			CredentialProfile: ft.CredentialProfile,
			User:              ft.User,
			Pass:              ft.Pass,
			SSLVerify:         cfg.SSLVerify,
			Timeout:           ft.Timeout.Duration,
			Enabled:           true,
		}
		if t.Name == "" {
			t.Name = t.Address
		}
		if ft.SSLVerify != nil {
			t.SSLVerify = *ft.SSLVerify
		}
		if ft.Enabled != nil {
			t.Enabled = *ft.Enabled
		}
		if err := t.validate(); err != nil {
			return nil, fmt.Errorf("targets file %s entry %d - %w", path, i, err)
		}
		targets = append(targets, t)
	}
	return targets, nil
}
