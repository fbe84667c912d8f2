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
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/comcast/hpilo-exporter/config"
	"github.com/comcast/hpilo-exporter/registry"
	"go.uber.org/zap"
)

// targetEntry is the wire form of a registry target. Credentials are
// accepted on add but never echoed back.
type targetEntry struct {
	Name              string `json:"name"`
	Address           string `json:"address"`
	Scheme            string `json:"scheme,omitempty"`
	CredentialProfile string `json:"credential_profile,omitempty"`
	User              string `json:"user,omitempty"`
	Password          string `json:"password,omitempty"`
	SSLVerify         *bool  `json:"ssl_verify,omitempty"`
	Timeout           string `json:"timeout,omitempty"`
	Enabled           *bool  `json:"enabled,omitempty"`
}

// ListTargets handles GET /targets/list requests.
func ListTargets(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zap.L()
		response := make(map[string]interface{})

		entries := make([]targetEntry, 0)
		for _, t := range reg.List() {
			entries = append(entries, targetEntry{
				Name:              t.Name,
				Address:           t.Address,
				Scheme:            t.Scheme,
				CredentialProfile: t.CredentialProfile,
				SSLVerify:         &t.SSLVerify,
				Timeout:           t.Timeout.String(),
				Enabled:           &t.Enabled,
			})
		}
		response["targets"] = entries

		resp, err := marshalResponse(&response, r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(resp)

		log.Info("listed targets", zap.Int("count", len(entries)), zap.String("path", r.URL.Path))
	}
}

// AddTarget handles POST /targets/add requests.
func AddTarget(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var entry targetEntry
		log := zap.L()
		response := make(map[string]interface{})
		response["added"] = false

		body, err := getBody(r)
		if err != nil {
			response["error"] = err.Error()
			resp, _ := marshalResponse(&response, r)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write(resp)
			return
		}

		if err := json.Unmarshal(body, &entry); err != nil {
			log.Error("could not unmarshal target entry", zap.Error(err), zap.String("path", r.URL.Path))
			response["error"] = err.Error()
			resp, _ := marshalResponse(&response, r)
			w.WriteHeader(http.StatusBadRequest)
			w.Write(resp)
			return
		}

		target, err := entry.target()
		if err != nil {
			response["error"] = err.Error()
			resp, _ := marshalResponse(&response, r)
			w.WriteHeader(http.StatusBadRequest)
			w.Write(resp)
			return
		}

		if err := reg.Add(target); err != nil {
			log.Error("could not add target", zap.Error(err), zap.String("path", r.URL.Path))
			response["error"] = err.Error()
			resp, _ := marshalResponse(&response, r)
			status := http.StatusBadRequest
			if errors.Is(err, registry.ErrExists) {
				status = http.StatusConflict
			}
			w.WriteHeader(status)
			w.Write(resp)
			return
		}

		log.Info("added target " + target.Name + " to registry")
		response["added"] = true
		resp, _ := marshalResponse(&response, r)
		w.WriteHeader(http.StatusOK)
		w.Write(resp)
	}
}

// RemoveTarget handles POST /targets/remove requests. Scrapes in flight
// against the removed target finish but their results are discarded.
func RemoveTarget(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var entry targetEntry
		log := zap.L()

		body, err := getBody(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if err := json.Unmarshal(body, &entry); err != nil {
			log.Error("could not unmarshal target entry", zap.Error(err), zap.String("path", r.URL.Path))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := reg.Remove(entry.Name); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, registry.ErrNotFound) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}

		log.Info("removed target " + entry.Name + " from registry")
		w.WriteHeader(http.StatusOK)
	}
}

// target converts the wire form into a registry target, applying the same
// defaults as the targets file loader.
func (e *targetEntry) target() (registry.Target, error) {
	target := registry.Target{
		Name:              e.Name,
		Address:           e.Address,
		Scheme:            e.Scheme,
		CredentialProfile: e.CredentialProfile,
		User:              e.User,
		Pass:              e.Password,
		SSLVerify:         config.GetConfig().SSLVerify,
		Enabled:           true,
	}
	if target.Name == "" {
		target.Name = target.Address
	}
	if e.SSLVerify != nil {
		target.SSLVerify = *e.SSLVerify
	}
	if e.Enabled != nil {
		target.Enabled = *e.Enabled
	}
	if e.Timeout != "" {
		timeout, err := time.ParseDuration(e.Timeout)
		if err != nil {
			return registry.Target{}, err
		}
		target.Timeout = timeout
	}
	return target, nil
}

func getBody(r *http.Request) ([]byte, error) {
	var body []byte
	log := zap.L()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("could not parse request body", zap.Error(err), zap.String("path", r.URL.Path))
		return body, err
	}
	return body, nil
}

func marshalResponse(p *map[string]interface{}, r *http.Request) ([]byte, error) {
	var resp []byte
	log := zap.L()

	resp, err := json.Marshal(p)
	if err != nil {
		log.Error("could not marshal response", zap.Error(err), zap.String("path", r.URL.Path))
		return resp, err
	}
	return resp, nil
}
